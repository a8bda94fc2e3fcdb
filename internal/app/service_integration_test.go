package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
	"github.com/jhoekx/ovcup/internal/adapters/mq/queue"
	repository "github.com/jhoekx/ovcup/internal/adapters/repository"
	service "github.com/jhoekx/ovcup/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

// sampleFeed is a small but realistic feed document.
const sampleFeed = `{
	"date": "2026-03-01T00:00:00Z",
	"name": "Sprint Kalmthout",
	"location": "Kalmthout",
	"categories": {
		"D:01": {
			"name": "D:01",
			"distance": 4200,
			"climb": 30,
			"results": [
				{"name": "An Peeters", "club": "Omega", "ageclass": "D21", "position": 1, "time": "01:00:00", "status": "OK"},
				{"name": "Els Jacobs", "club": "Trol", "ageclass": "D21", "position": 2, "time": "01:06:40", "status": "OK"},
				{"name": "Mia Smets", "club": "hamok", "ageclass": "D21", "position": "", "time": "", "status": "DNF"}
			]
		}
	}
}`

// waitForResults polls the store until it holds want results or the deadline
// passes.
func waitForResults(ctx context.Context, store *repository.SQLiteStore, want int) error {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		counts, err := store.Counts(ctx)
		if err != nil {
			return err
		}
		if counts.Results >= want {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("store never reached %d results", want)
}

func TestService_FeedIngestionFlow(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc, store := newStartedService(ctx, t)

		feed, err := ingest.ParseFeed([]byte(sampleFeed))
		So(err, ShouldBeNil)

		Convey("When submitting a feed through the queue", func() {
			So(svc.SeenAndRecord(ctx, feed.Key()), ShouldBeFalse)
			ok := svc.Enqueue(ctx, queue.Job{Cup: "forest-cup", Season: 2026, Feed: feed})
			So(ok, ShouldBeTrue)

			So(waitForResults(ctx, store, 2), ShouldBeNil)

			Convey("Then the standing reflects the ingested results", func() {
				result, err := svc.Standing(ctx, service.Query{
					Cup: "forest-cup", Season: 2026, AgeClass: "D21", EventsCount: 1,
				})
				So(err, ShouldBeNil)

				So(result, ShouldHaveLength, 2)
				So(result[0].Name, ShouldEqual, "An Peeters")
				So(result[0].TotalScore, ShouldEqual, 1000)
				So(result[0].Place, ShouldEqual, "1.")
				So(result[1].Name, ShouldEqual, "Els Jacobs")
				So(result[1].TotalScore, ShouldEqual, 900)
				So(result[1].Place, ShouldEqual, "2.")
			})

			Convey("And the non-finisher is skipped", func() {
				counts, err := store.Counts(ctx)
				So(err, ShouldBeNil)
				So(counts.Results, ShouldEqual, 2)
				So(counts.Runners, ShouldEqual, 2)
			})

			Convey("And submitting the same feed again is a duplicate", func() {
				So(svc.SeenAndRecord(ctx, feed.Key()), ShouldBeTrue)
			})
		})
	})
}
