package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/jhoekx/ovcup/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new in-memory deduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it starts empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording feed keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, "Sprint Kalmthout@2026-03-01T00:00:00Z")

				Convey("Then it is recorded as unseen", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, "Sprint Kalmthout@2026-03-01T00:00:00Z")
				seen := d.SeenAndRecord(ctx, "Sprint Kalmthout@2026-03-01T00:00:00Z")

				Convey("Then the duplicate is reported", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And several distinct keys are recorded", func() {
				keys := []string{"a@1", "b@1", "c@1", "d@1"}
				for _, key := range keys {
					So(d.SeenAndRecord(ctx, key), ShouldBeFalse)
				}

				Convey("Then all of them are remembered", func() {
					So(d.Size(), ShouldEqual, int64(len(keys)))
					for _, key := range keys {
						So(d.SeenAndRecord(ctx, key), ShouldBeTrue)
					}
				})
			})
		})

		Convey("When unrecording a key", func() {
			d := dedupe.NewInMemoryDeduper()
			d.SeenAndRecord(ctx, "a@1")
			d.SeenAndRecord(ctx, "b@1")

			d.Unrecord(ctx, "a@1")

			Convey("Then the key can be recorded again", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "a@1"), ShouldBeFalse)
			})

			Convey("And unrecording an unknown key changes nothing", func() {
				d.Unrecord(ctx, "missing@1")
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the deduper is bounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

			for i := 0; i < 3; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i))
			}
			d.SeenAndRecord(ctx, "key-3")

			Convey("Then the oldest key is evicted at capacity", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "key-0"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "key-3"), ShouldBeTrue)
			})
		})

		Convey("When the deduper is unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

			for i := 0; i < 500; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 500)
				So(d.SeenAndRecord(ctx, "key-0"), ShouldBeTrue)
			})
		})

		Convey("When accessed concurrently", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

			var wg sync.WaitGroup
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						d.SeenAndRecord(ctx, fmt.Sprintf("worker-%d-key-%d", g, i))
					}
				}(g)
			}
			wg.Wait()

			Convey("Then every distinct key is recorded exactly once", func() {
				So(d.Size(), ShouldEqual, 800)
			})
		})
	})
}
