package config_test

import (
	"context"
	"testing"

	"github.com/jhoekx/ovcup/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "ovcup.db")
			convey.So(cfg.DefaultEventsCount, convey.ShouldEqual, 4)
			convey.So(cfg.MaxEventsCount, convey.ShouldEqual, 20)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 1024)
			convey.So(cfg.Cups, convey.ShouldContain, "forest-cup")
			convey.So(cfg.Clubs, convey.ShouldContain, "Omega")
			convey.So(cfg.OverridesPath, convey.ShouldBeEmpty)
		})
	})
}
