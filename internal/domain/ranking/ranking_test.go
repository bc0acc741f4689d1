package ranking_test

import (
	"testing"

	level "github.com/consultly/expertrank/internal/domain/level"
	"github.com/consultly/expertrank/internal/domain/model"
	ranking "github.com/consultly/expertrank/internal/domain/ranking"
	scoring "github.com/consultly/expertrank/internal/domain/scoring"
	"github.com/consultly/expertrank/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func newAggregator() *ranking.Aggregator {
	table := tier.Default()
	return ranking.NewAggregator(scoring.New(), level.NewResolver(table))
}

func TestRankOverall(t *testing.T) {
	Convey("Given an aggregator and two experts with different activity", t, func() {
		agg := newAggregator()
		experts := []ranking.Expert{
			{ID: "expert-a", Name: "Alice Mora", Stats: model.ExpertStats{TotalSessions: 10}},
			{ID: "expert-b", Name: "Ben Oduya", Stats: model.ExpertStats{TotalSessions: 90}},
		}

		Convey("When ranking in overall mode", func() {
			entries := agg.Rank(experts, ranking.ModeOverall, "")

			Convey("Then the busier expert ranks first", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].ExpertID, ShouldEqual, "expert-b")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].ExpertID, ShouldEqual, "expert-a")
				So(entries[1].Rank, ShouldEqual, 2)
			})

			Convey("Then each entry carries score, level and tier", func() {
				So(entries[0].RankingScore, ShouldEqual, 360) // 90/100 * 400
				So(entries[0].Level, ShouldBeGreaterThanOrEqualTo, 1)
				So(entries[0].Tier.Name, ShouldEqual, "Iron")
			})
		})

		Convey("When the input is empty", func() {
			entries := agg.Rank(nil, ranking.ModeOverall, "")

			Convey("Then the result is an empty, non-nil slice", func() {
				So(entries, ShouldNotBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestRankModes(t *testing.T) {
	Convey("Given experts where score, rating and session orders differ", t, func() {
		agg := newAggregator()
		experts := []ranking.Expert{
			{ID: "a", Name: "A", Stats: model.ExpertStats{TotalSessions: 80, AvgRating: 3.0, ReviewCount: 20}},
			{ID: "b", Name: "B", Stats: model.ExpertStats{TotalSessions: 20, AvgRating: 4.9, ReviewCount: 40}},
			{ID: "c", Name: "C", Stats: model.ExpertStats{TotalSessions: 50, AvgRating: 4.0, ReviewCount: 10}},
		}

		Convey("When ranking by rating", func() {
			entries := agg.Rank(experts, ranking.ModeRating, "")

			Convey("Then order follows average rating", func() {
				So(entries[0].ExpertID, ShouldEqual, "b")
				So(entries[1].ExpertID, ShouldEqual, "c")
				So(entries[2].ExpertID, ShouldEqual, "a")
			})
		})

		Convey("When ranking by sessions", func() {
			entries := agg.Rank(experts, ranking.ModeSessions, "")

			Convey("Then order follows session count", func() {
				So(entries[0].ExpertID, ShouldEqual, "a")
				So(entries[1].ExpertID, ShouldEqual, "c")
				So(entries[2].ExpertID, ShouldEqual, "b")
			})
		})

		Convey("When two experts tie exactly", func() {
			tied := []ranking.Expert{
				{ID: "first", Stats: model.ExpertStats{TotalSessions: 30}},
				{ID: "second", Stats: model.ExpertStats{TotalSessions: 30}},
			}
			entries := agg.Rank(tied, ranking.ModeOverall, "")

			Convey("Then input order is preserved", func() {
				So(entries[0].ExpertID, ShouldEqual, "first")
				So(entries[1].ExpertID, ShouldEqual, "second")
			})
		})
	})
}

func TestRankSpecialty(t *testing.T) {
	Convey("Given experts across two specialties", t, func() {
		agg := newAggregator()
		experts := []ranking.Expert{
			{ID: "law-1", Name: "L1", Stats: model.ExpertStats{TotalSessions: 60, Specialty: "legal"}},
			{ID: "fin-1", Name: "F1", Stats: model.ExpertStats{TotalSessions: 90, Specialty: "finance"}},
			{ID: "law-2", Name: "L2", Stats: model.ExpertStats{TotalSessions: 30, Specialty: "legal"}},
		}

		Convey("When ranking the legal specialty", func() {
			entries := agg.Rank(experts, ranking.ModeSpecialty, "legal")

			Convey("Then only legal experts appear", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].ExpertID, ShouldEqual, "law-1")
				So(entries[1].ExpertID, ShouldEqual, "law-2")
			})

			Convey("Then specialty rank fields are populated", func() {
				So(entries[0].SpecialtyRank, ShouldEqual, 1)
				So(entries[0].SpecialtyTotal, ShouldEqual, 2)
				So(entries[1].SpecialtyRank, ShouldEqual, 2)
			})
		})

		Convey("When the specialty matches nobody", func() {
			entries := agg.Rank(experts, ranking.ModeSpecialty, "astrology")

			So(entries, ShouldNotBeNil)
			So(entries, ShouldBeEmpty)
		})
	})
}

func TestRankPlaceholderNames(t *testing.T) {
	Convey("Given an expert with no profile name", t, func() {
		agg := newAggregator()
		experts := []ranking.Expert{
			{ID: "3f8a2c91-0000-0000-0000-000000000000", Stats: model.ExpertStats{TotalSessions: 5}},
		}

		Convey("When ranking", func() {
			entries := agg.Rank(experts, ranking.ModeOverall, "")

			Convey("Then a deterministic placeholder is substituted", func() {
				So(entries[0].Name, ShouldEqual, "expert-3f8a2c91")
			})
		})
	})
}
