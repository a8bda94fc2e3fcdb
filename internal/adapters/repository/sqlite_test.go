package repository_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	repository "github.com/jhoekx/ovcup/internal/adapters/repository"
	"github.com/jhoekx/ovcup/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var dbSeq atomic.Int64

// openTestStore opens a fresh shared in-memory database per test.
func openTestStore(ctx context.Context) (*repository.SQLiteStore, error) {
	name := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	return repository.Open(ctx, name)
}

func seedEvent(ctx context.Context, s *repository.SQLiteStore, name string, day int) (int64, error) {
	return s.ReplaceEvent(ctx, model.Event{
		Cup:      "forest-cup",
		Season:   2026,
		Name:     name,
		Location: "Kalmthout",
		Date:     time.Date(2026, 3, day, 10, 0, 0, 0, time.UTC),
	})
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an open store", t, func() {
		store, err := openTestStore(ctx)
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("When replacing an event twice", func() {
			first, err := seedEvent(ctx, store, "Sprint", 1)
			So(err, ShouldBeNil)
			second, err := seedEvent(ctx, store, "Sprint", 1)
			So(err, ShouldBeNil)

			Convey("Then the event keeps its identity", func() {
				So(second, ShouldEqual, first)
			})

			Convey("And re-ingesting clears previous results", func() {
				runnerID, err := store.UpsertRunner(ctx, "An Peeters", "Omega")
				So(err, ShouldBeNil)
				So(store.InsertResult(ctx, repository.Result{
					EventID: first, RunnerID: runnerID,
					CategoryName: "H:01", AgeClass: "H21", Position: 1, Seconds: 3600,
				}), ShouldBeNil)

				_, err = seedEvent(ctx, store, "Sprint", 1)
				So(err, ShouldBeNil)

				perfs, err := store.ListPerformances(ctx, "forest-cup", 2026)
				So(err, ShouldBeNil)
				So(perfs, ShouldBeEmpty)
			})
		})

		Convey("When listing events", func() {
			_, err := seedEvent(ctx, store, "Long", 20)
			So(err, ShouldBeNil)
			_, err = seedEvent(ctx, store, "Middle", 5)
			So(err, ShouldBeNil)

			events, err := store.ListEvents(ctx, "forest-cup", 2026)
			So(err, ShouldBeNil)

			Convey("Then they come back ordered by date", func() {
				So(events, ShouldHaveLength, 2)
				So(events[0].Name, ShouldEqual, "Middle")
				So(events[1].Name, ShouldEqual, "Long")
			})

			Convey("And other seasons stay out of scope", func() {
				none, err := store.ListEvents(ctx, "forest-cup", 2024)
				So(err, ShouldBeNil)
				So(none, ShouldBeEmpty)
			})
		})

		Convey("When upserting the same runner twice", func() {
			first, err := store.UpsertRunner(ctx, "An Peeters", "Omega")
			So(err, ShouldBeNil)
			second, err := store.UpsertRunner(ctx, "An Peeters", "Trol")
			So(err, ShouldBeNil)

			Convey("Then the runner keeps their id and the club is refreshed", func() {
				So(second, ShouldEqual, first)
			})
		})

		Convey("When performances exist across age classes", func() {
			eventID, err := seedEvent(ctx, store, "Middle", 5)
			So(err, ShouldBeNil)

			an, err := store.UpsertRunner(ctx, "An Peeters", "Omega")
			So(err, ShouldBeNil)
			bert, err := store.UpsertRunner(ctx, "Bert Claes", "Trol")
			So(err, ShouldBeNil)

			So(store.InsertResult(ctx, repository.Result{
				EventID: eventID, RunnerID: an,
				CategoryName: "D:02", AgeClass: "D21", Position: 1, Seconds: 3600,
			}), ShouldBeNil)
			So(store.InsertResult(ctx, repository.Result{
				EventID: eventID, RunnerID: bert,
				CategoryName: "H:01", AgeClass: "H21", Position: 1, Seconds: 3300,
			}), ShouldBeNil)

			Convey("Then ListPerformances returns the season field ordered by runner", func() {
				perfs, err := store.ListPerformances(ctx, "forest-cup", 2026)
				So(err, ShouldBeNil)
				So(perfs, ShouldHaveLength, 2)
				So(perfs[0].Name, ShouldEqual, "An Peeters")
				So(perfs[0].CategoryName, ShouldEqual, "D:02")
				So(perfs[0].Seconds, ShouldEqual, 3600)
				So(perfs[1].Name, ShouldEqual, "Bert Claes")
				So(perfs[1].AgeClass, ShouldEqual, "H21")
			})

			Convey("And ListAgeClasses reports the distinct classes sorted", func() {
				classes, err := store.ListAgeClasses(ctx, "forest-cup", 2026)
				So(err, ShouldBeNil)
				So(classes, ShouldResemble, []string{"D21", "H21"})
			})

			Convey("And Counts reflects the stored rows", func() {
				counts, err := store.Counts(ctx)
				So(err, ShouldBeNil)
				So(counts.Events, ShouldEqual, 1)
				So(counts.Runners, ShouldEqual, 2)
				So(counts.Results, ShouldEqual, 2)
			})
		})
	})

	Convey("Given an empty database path", t, func() {
		_, err := repository.Open(ctx, "  ")

		Convey("Then Open fails with the sentinel kind", func() {
			So(err, ShouldWrap, repository.ErrEmptyPath)
		})
	})
}
