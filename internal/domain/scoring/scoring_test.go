package scoring_test

import (
	"testing"

	"github.com/consultly/expertrank/internal/domain/model"
	scoring "github.com/consultly/expertrank/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculatorScore(t *testing.T) {
	Convey("Given a calculator with default weights", t, func() {
		calc := scoring.New()

		Convey("When scoring an expert with no activity", func() {
			score := calc.Score(model.ExpertStats{})

			Convey("Then the score should be zero, not NaN", func() {
				So(score, ShouldEqual, 0)
			})
		})

		Convey("When scoring an expert at every cap", func() {
			score := calc.Score(model.ExpertStats{
				TotalSessions: 100,
				AvgRating:     5.0,
				ReviewCount:   50,
				RepeatClients: 50,
				LikeCount:     100,
			})

			Convey("Then components sum to 400+300+150+50+50", func() {
				So(score, ShouldEqual, 950)
			})
		})

		Convey("When volumes exceed their caps", func() {
			capped := calc.Score(model.ExpertStats{TotalSessions: 100})
			beyond := calc.Score(model.ExpertStats{TotalSessions: 500})

			Convey("Then the session component stops growing", func() {
				So(beyond, ShouldEqual, capped)
				So(capped, ShouldEqual, 400)
			})
		})

		Convey("When sessions increase below the cap", func() {
			low := calc.Score(model.ExpertStats{TotalSessions: 10})
			high := calc.Score(model.ExpertStats{TotalSessions: 60})

			Convey("Then the score is monotonically non-decreasing", func() {
				So(high, ShouldBeGreaterThan, low)
			})
		})

		Convey("When an expert has reviews but no sessions", func() {
			score := calc.Score(model.ExpertStats{
				AvgRating:     4.0,
				ReviewCount:   10,
				RepeatClients: 3,
			})

			Convey("Then the repeat component contributes nothing", func() {
				// rating 4/5*300 = 240, review 10/50*150 = 30
				So(score, ShouldEqual, 270)
			})
		})
	})
}

func TestCalculatorBreakdown(t *testing.T) {
	Convey("Given a calculator with default weights", t, func() {
		calc := scoring.New()

		Convey("When breaking down a mid-activity expert", func() {
			b := calc.Breakdown(model.ExpertStats{
				TotalSessions: 50,
				AvgRating:     4.5,
				ReviewCount:   25,
				RepeatClients: 20,
				LikeCount:     40,
			})

			Convey("Then each component carries its weighted share", func() {
				So(b.Session, ShouldEqual, 200) // 50/100 * 400
				So(b.Rating, ShouldEqual, 270)  // 4.5/5 * 300
				So(b.Review, ShouldEqual, 75)   // 25/50 * 150
				So(b.Repeat, ShouldEqual, 40)   // 20/50 * 100
				So(b.Like, ShouldEqual, 20)     // 40/100 * 50
				So(b.Total, ShouldEqual, 605)
			})
		})

		Convey("When components produce a fractional total", func() {
			b := calc.Breakdown(model.ExpertStats{
				TotalSessions: 3,
				RepeatClients: 1,
			})

			Convey("Then the total is rounded to two decimals", func() {
				// session 3/100*400 = 12, repeat 1/3*100 = 33.333...
				So(b.Total, ShouldEqual, 45.33)
			})
		})
	})
}

func TestCalculatorOptions(t *testing.T) {
	Convey("Given custom weights and caps", t, func() {
		calc := scoring.New(
			scoring.WithWeights(scoring.Weights{Session: 500}),
			scoring.WithCaps(scoring.Caps{Sessions: 10}),
		)

		Convey("When the session cap is reached", func() {
			score := calc.Score(model.ExpertStats{TotalSessions: 10})

			Convey("Then the custom weight applies in full", func() {
				So(score, ShouldEqual, 500)
			})
		})

		Convey("When overriding with non-positive fields", func() {
			unchanged := scoring.New(scoring.WithWeights(scoring.Weights{Session: -1}))
			score := unchanged.Score(model.ExpertStats{TotalSessions: 100})

			Convey("Then the defaults are kept", func() {
				So(score, ShouldEqual, 400)
			})
		})
	})
}
