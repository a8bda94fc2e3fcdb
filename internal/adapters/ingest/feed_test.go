package ingest_test

import (
	"testing"
	"time"

	ingest "github.com/jhoekx/ovcup/internal/adapters/ingest"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleFeed = `{
	"date": "2026-03-05T10:00:00Z",
	"name": "Sprintcross",
	"location": "Kalmthout",
	"categories": {
		"H:01": {
			"name": "H:01",
			"distance": "5300",
			"climb": 120,
			"results": [
				{"name": "An Peeters", "club": "Omega", "ageclass": "D21", "position": "1", "time": "00:52:13", "status": "OK"},
				{"name": "Bert Claes", "club": "Trol vzw", "ageclass": "H21", "position": 2, "time": "01:02:40", "status": "OK"},
				{"name": "Cas Maes", "club": "hamok", "ageclass": "H21", "position": 0, "time": null, "status": "DNF"}
			]
		}
	}
}`

func TestParseFeed(t *testing.T) {
	Convey("Given a feed document from the timing software", t, func() {
		feed, err := ingest.ParseFeed([]byte(sampleFeed))
		So(err, ShouldBeNil)

		Convey("Then event fields are decoded", func() {
			So(feed.Name, ShouldEqual, "Sprintcross")
			So(feed.Location, ShouldEqual, "Kalmthout")
			So(feed.Date.Equal(time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("Then numeric fields decode from strings and numbers alike", func() {
			category := feed.Categories["H:01"]
			So(category.Distance, ShouldEqual, 5300)
			So(category.Climb, ShouldEqual, 120)
			So(category.Results[0].Position, ShouldEqual, 1)
			So(category.Results[1].Position, ShouldEqual, 2)
		})

		Convey("Then finish times decode to seconds", func() {
			category := feed.Categories["H:01"]
			So(category.Results[0].Time.Seconds(), ShouldEqual, 52*60+13)
			So(category.Results[1].Time.Seconds(), ShouldEqual, 3600+2*60+40)
		})

		Convey("Then a null time decodes to zero", func() {
			So(feed.Categories["H:01"].Results[2].Time.Seconds(), ShouldEqual, 0)
		})

		Convey("Then the feed key combines name and date", func() {
			So(feed.Key(), ShouldEqual, "Sprintcross@2026-03-05T10:00:00Z")
		})
	})

	Convey("Given malformed documents", t, func() {
		Convey("Then broken JSON fails with the feed kind", func() {
			_, err := ingest.ParseFeed([]byte(`{"name":`))
			So(err, ShouldWrap, ingest.ErrBadFeed)
		})

		Convey("Then a non-numeric position fails with the number kind", func() {
			_, err := ingest.ParseFeed([]byte(`{
				"date": "2026-03-05T10:00:00Z", "name": "X", "location": "Y",
				"categories": {"H:01": {"name": "H:01", "results": [
					{"name": "A", "club": "B", "position": "first", "time": "00:30:00", "status": "OK"}
				]}}
			}`))
			So(err, ShouldWrap, ingest.ErrBadNumber)
		})

		Convey("Then a malformed time fails with the time kind", func() {
			_, err := ingest.ParseFeed([]byte(`{
				"date": "2026-03-05T10:00:00Z", "name": "X", "location": "Y",
				"categories": {"H:01": {"name": "H:01", "results": [
					{"name": "A", "club": "B", "position": 1, "time": "52:13", "status": "OK"}
				]}}
			}`))
			So(err, ShouldWrap, ingest.ErrBadTime)
		})
	})
}
