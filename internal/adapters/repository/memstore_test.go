package repository_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	repository "github.com/consultly/expertrank/internal/adapters/repository"
	"github.com/consultly/expertrank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sessionEvent(expertID string, repeat bool) model.StatEvent {
	return model.StatEvent{
		EventID:   "ev-" + expertID + "-" + strconv.FormatInt(time.Now().UnixNano(), 10),
		ExpertID:  expertID,
		Kind:      model.KindSessionCompleted,
		Repeat:    repeat,
		Specialty: "legal",
		TS:        time.Now(),
	}
}

func TestApply(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx)

		Convey("When a session event arrives for a new expert", func() {
			stats, err := store.Apply(ctx, sessionEvent("exp-1", false))

			Convey("Then the record is created with one session", func() {
				So(err, ShouldBeNil)
				So(stats.TotalSessions, ShouldEqual, 1)
				So(stats.RepeatClients, ShouldEqual, 0)
				So(stats.Specialty, ShouldEqual, "legal")
			})
		})

		Convey("When a repeat session arrives", func() {
			_, err := store.Apply(ctx, sessionEvent("exp-1", false))
			So(err, ShouldBeNil)
			stats, err := store.Apply(ctx, sessionEvent("exp-1", true))

			Convey("Then both counters advance", func() {
				So(err, ShouldBeNil)
				So(stats.TotalSessions, ShouldEqual, 2)
				So(stats.RepeatClients, ShouldEqual, 1)
			})
		})

		Convey("When reviews arrive", func() {
			ev := model.StatEvent{EventID: "r1", ExpertID: "exp-2", Kind: model.KindReviewPosted, Rating: 4.0}
			_, err := store.Apply(ctx, ev)
			So(err, ShouldBeNil)

			ev.EventID = "r2"
			ev.Rating = 5.0
			stats, err := store.Apply(ctx, ev)

			Convey("Then the average rating is a running mean", func() {
				So(err, ShouldBeNil)
				So(stats.ReviewCount, ShouldEqual, 2)
				So(stats.AvgRating, ShouldEqual, 4.5)
			})
		})

		Convey("When a review rating is out of range", func() {
			ev := model.StatEvent{EventID: "r3", ExpertID: "exp-3", Kind: model.KindReviewPosted, Rating: 9.0}
			stats, err := store.Apply(ctx, ev)

			Convey("Then the rating is clamped to 5", func() {
				So(err, ShouldBeNil)
				So(stats.AvgRating, ShouldEqual, 5.0)
			})
		})

		Convey("When a like arrives", func() {
			ev := model.StatEvent{EventID: "l1", ExpertID: "exp-4", Kind: model.KindLike}
			stats, err := store.Apply(ctx, ev)

			So(err, ShouldBeNil)
			So(stats.LikeCount, ShouldEqual, 1)
		})

		Convey("When the event kind is unknown", func() {
			ev := model.StatEvent{EventID: "x1", ExpertID: "exp-5", Kind: "promoted"}
			_, err := store.Apply(ctx, ev)

			So(err, ShouldEqual, repository.ErrUnknownEventKind)
		})
	})
}

func TestScoresAndNames(t *testing.T) {
	Convey("Given a store with one expert", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx)
		_, err := store.Apply(ctx, sessionEvent("exp-1", false))
		So(err, ShouldBeNil)

		Convey("When setting a score", func() {
			So(store.SetScore(ctx, "exp-1", 123.45), ShouldBeNil)

			rec, err := store.Get(ctx, "exp-1")
			So(err, ShouldBeNil)
			So(rec.Score, ShouldEqual, 123.45)
		})

		Convey("When setting a score for an unknown expert", func() {
			err := store.SetScore(ctx, "ghost", 1)
			So(err, ShouldEqual, repository.ErrNotFound)
		})

		Convey("When setting a name before any event", func() {
			So(store.SetName(ctx, "exp-new", "Dana Reyes"), ShouldBeNil)

			rec, err := store.Get(ctx, "exp-new")
			So(err, ShouldBeNil)
			So(rec.Name, ShouldEqual, "Dana Reyes")
		})

		Convey("When replacing stats wholesale", func() {
			stats := model.ExpertStats{TotalSessions: 40, AvgRating: 4.5, ReviewCount: 10}
			So(store.SetStats(ctx, "exp-1", stats), ShouldBeNil)

			rec, err := store.Get(ctx, "exp-1")
			So(err, ShouldBeNil)
			So(rec.Stats.TotalSessions, ShouldEqual, 40)

			Convey("Then later reviews continue the mean from the import", func() {
				ev := model.StatEvent{EventID: "r9", ExpertID: "exp-1", Kind: model.KindReviewPosted, Rating: 1.0}
				updated, err := store.Apply(ctx, ev)
				So(err, ShouldBeNil)
				// 10 reviews at 4.5 plus one at 1.0
				So(updated.AvgRating, ShouldAlmostEqual, 46.0/11.0, 0.0001)
			})
		})

		Convey("When fetching an unknown expert", func() {
			_, err := store.Get(ctx, "ghost")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}

func TestRankAndTopN(t *testing.T) {
	Convey("Given a store with three scored experts", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx, repository.WithShardCount(4))

		for i, score := range []float64{300, 100, 200} {
			id := "exp-" + strconv.Itoa(i)
			_, err := store.Apply(ctx, sessionEvent(id, false))
			So(err, ShouldBeNil)
			So(store.SetScore(ctx, id, score), ShouldBeNil)
		}

		Convey("When asking for the top two", func() {
			entries, err := store.TopN(ctx, 2)

			Convey("Then entries come back score-descending with ranks", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
				So(entries[0].ExpertID, ShouldEqual, "exp-0")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].ExpertID, ShouldEqual, "exp-2")
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When asking for more than exist", func() {
			entries, err := store.TopN(ctx, 50)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 3)
		})

		Convey("When the limit is invalid", func() {
			_, err := store.TopN(ctx, 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})

		Convey("When asking for one expert's rank", func() {
			entry, err := store.Rank(ctx, "exp-2")

			So(err, ShouldBeNil)
			So(entry.Rank, ShouldEqual, 2)
			So(entry.Score, ShouldEqual, 200)
		})

		Convey("When two experts tie", func() {
			So(store.SetScore(ctx, "exp-1", 200), ShouldBeNil)

			Convey("Then the lower id wins the tie", func() {
				first, err := store.Rank(ctx, "exp-1")
				So(err, ShouldBeNil)
				second, err := store.Rank(ctx, "exp-2")
				So(err, ShouldBeNil)
				So(first.Rank, ShouldEqual, 2)
				So(second.Rank, ShouldEqual, 3)
			})
		})

		Convey("When counting and snapshotting", func() {
			So(store.Count(ctx), ShouldEqual, 3)
			So(store.Snapshot(ctx), ShouldHaveLength, 3)
		})

		Convey("When ranking an unknown expert", func() {
			_, err := store.Rank(ctx, "ghost")
			So(err, ShouldEqual, repository.ErrNotFound)
		})
	})
}
