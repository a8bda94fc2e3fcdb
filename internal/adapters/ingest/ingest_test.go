package ingest_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	ingest "github.com/jhoekx/ovcup/internal/adapters/ingest"
	repository "github.com/jhoekx/ovcup/internal/adapters/repository"
	"github.com/jhoekx/ovcup/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var dbSeq atomic.Int64

func openTestStore(ctx context.Context) (*repository.SQLiteStore, error) {
	name := fmt.Sprintf("file:ingest_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	return repository.Open(ctx, name)
}

func TestIngestor_Ingest(t *testing.T) {
	ctx := context.Background()

	Convey("Given an ingestor over a fresh store", t, func() {
		store, err := openTestStore(ctx)
		So(err, ShouldBeNil)
		defer store.Close()

		ing := ingest.New(store,
			ingest.WithClubs([]string{"Omega", "Trol", "hamok"}),
		)

		feed, err := ingest.ParseFeed([]byte(sampleFeed))
		So(err, ShouldBeNil)

		Convey("When ingesting a feed", func() {
			summary, err := ing.Ingest(ctx, "forest-cup", 2026, feed)
			So(err, ShouldBeNil)

			Convey("Then OK results are stored and the rest skipped", func() {
				So(summary.Stored, ShouldEqual, 2)
				So(summary.Skipped, ShouldEqual, 1)
			})

			Convey("And club spellings are normalized by prefix", func() {
				perfs, err := store.ListPerformances(ctx, "forest-cup", 2026, "H21")
				So(err, ShouldBeNil)
				So(perfs, ShouldHaveLength, 1)
				So(perfs[0].Name, ShouldEqual, "Bert Claes")
				So(perfs[0].Club, ShouldEqual, "Trol")
			})

			Convey("And ingesting the same feed again replaces, not duplicates", func() {
				again, err := ing.Ingest(ctx, "forest-cup", 2026, feed)
				So(err, ShouldBeNil)
				So(again.EventID, ShouldEqual, summary.EventID)

				counts, err := store.Counts(ctx)
				So(err, ShouldBeNil)
				So(counts.Events, ShouldEqual, 1)
				So(counts.Results, ShouldEqual, 2)
			})
		})

		Convey("When an override reassigns an athlete's age class", func() {
			overridden := ingest.New(store,
				ingest.WithOverrides([]ingest.AgeClassOverride{
					{Cup: "forest-cup", Season: 2026, Name: "An Peeters", AgeClass: "D35"},
				}),
			)

			_, err := overridden.Ingest(ctx, "forest-cup", 2026, feed)
			So(err, ShouldBeNil)

			Convey("Then the stored result carries the override", func() {
				classes, err := store.ListAgeClasses(ctx, "forest-cup", 2026)
				So(err, ShouldBeNil)
				So(classes, ShouldResemble, []string{"D35", "H21"})
			})
		})

		Convey("When the feed misses required fields", func() {
			_, err := ing.Ingest(ctx, "forest-cup", 2026, ingest.Feed{})

			Convey("Then ingestion fails with the feed kind", func() {
				So(err, ShouldWrap, ingest.ErrBadFeed)
			})
		})
	})
}
