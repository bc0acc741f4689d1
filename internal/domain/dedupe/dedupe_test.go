package dedupe_test

import (
	"context"
	"strconv"
	"testing"

	dedupe "github.com/consultly/expertrank/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When an id is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "ev-1")

			Convey("Then it reports not seen", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And the second time it reports seen", func() {
				So(d.SeenAndRecord(ctx, "ev-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When distinct ids are recorded", func() {
			So(d.SeenAndRecord(ctx, "ev-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "ev-2"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 2)
		})
	})
}

func TestUnrecord(t *testing.T) {
	Convey("Given a deduper with a recorded id", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()
		So(d.SeenAndRecord(ctx, "ev-1"), ShouldBeFalse)

		Convey("When the id is unrecorded", func() {
			d.Unrecord(ctx, "ev-1")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "ev-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown id", func() {
			d.Unrecord(ctx, "ev-unknown")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

func TestEviction(t *testing.T) {
	Convey("Given a deduper bounded to three ids", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		for i := 0; i < 3; i++ {
			So(d.SeenAndRecord(ctx, "ev-"+strconv.Itoa(i)), ShouldBeFalse)
		}

		Convey("When a fourth id arrives", func() {
			So(d.SeenAndRecord(ctx, "ev-3"), ShouldBeFalse)

			Convey("Then the oldest id is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "ev-0"), ShouldBeFalse) // forgotten
			})

			Convey("And newer ids are still deduplicated", func() {
				So(d.SeenAndRecord(ctx, "ev-2"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "ev-3"), ShouldBeTrue)
			})
		})

		Convey("When an id was unrecorded before eviction", func() {
			d.Unrecord(ctx, "ev-0")
			So(d.SeenAndRecord(ctx, "ev-3"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "ev-4"), ShouldBeFalse)

			Convey("Then eviction skips the stale slot", func() {
				So(d.SeenAndRecord(ctx, "ev-2"), ShouldBeTrue)
			})
		})
	})
}
