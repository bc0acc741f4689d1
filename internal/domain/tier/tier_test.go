package tier_test

import (
	"testing"

	tier "github.com/consultly/expertrank/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultTable(t *testing.T) {
	Convey("Given the default tier catalog", t, func() {
		table := tier.Default()

		Convey("Then it should contain exactly ten tiers", func() {
			So(table.Len(), ShouldEqual, 10)
		})

		Convey("Then the top tier should be Challenger at level 999", func() {
			top := table.Top()
			So(top.Name, ShouldEqual, "Challenger")
			So(top.Level.Min, ShouldEqual, 999)
			So(top.Level.Max, ShouldEqual, 999)
			So(top.Score.Max, ShouldEqual, 999.00)
		})

		Convey("Then the lowest tier should be Iron starting at level 1", func() {
			lowest := table.Lowest()
			So(lowest.Name, ShouldEqual, "Iron")
			So(lowest.Level.Min, ShouldEqual, 1)
			So(lowest.Score.Min, ShouldEqual, 0.0)
		})

		Convey("Then level bands should cover 1-999 without overlap", func() {
			tiers := table.All()
			for i := 1; i < len(tiers); i++ {
				So(tiers[i].Level.Max+1, ShouldEqual, tiers[i-1].Level.Min)
			}
		})

		Convey("Then prices should strictly increase with tier", func() {
			tiers := table.All()
			for i := 1; i < len(tiers); i++ {
				So(tiers[i-1].PricePerMinute, ShouldBeGreaterThan, tiers[i].PricePerMinute)
			}
		})

		Convey("Then All should return a copy", func() {
			tiers := table.All()
			tiers[0].Name = "mutated"
			So(table.Top().Name, ShouldEqual, "Challenger")
		})
	})
}

func TestFindByScore(t *testing.T) {
	Convey("Given the default tier catalog", t, func() {
		table := tier.Default()

		Convey("When a score sits inside a band", func() {
			So(table.FindByScore(975).Name, ShouldEqual, "Challenger")
			So(table.FindByScore(920).Name, ShouldEqual, "Grandmaster")
			So(table.FindByScore(625).Name, ShouldEqual, "Silver")
			So(table.FindByScore(0).Name, ShouldEqual, "Iron")
		})

		Convey("When a score exceeds the top band ceiling", func() {
			So(table.FindByScore(1500).Name, ShouldEqual, "Challenger")
		})

		Convey("When a score falls into a seam gap", func() {
			d, ok := table.MatchScore(549.995)
			So(ok, ShouldBeFalse)
			So(d.Name, ShouldBeEmpty)
			So(table.FindByScore(549.995).Name, ShouldEqual, "Iron")
		})

		Convey("When a score is negative", func() {
			So(table.FindByScore(-5).Name, ShouldEqual, "Iron")
		})

		Convey("When scores pin the band seams", func() {
			So(table.FindByScore(899.99).Name, ShouldEqual, "Master")
			So(table.FindByScore(900.00).Name, ShouldEqual, "Grandmaster")
			So(table.FindByScore(549.99).Name, ShouldEqual, "Iron")
			So(table.FindByScore(550.00).Name, ShouldEqual, "Bronze")
		})
	})
}

func TestFindByLevelAndName(t *testing.T) {
	Convey("Given the default tier catalog", t, func() {
		table := tier.Default()

		Convey("When looking up by level", func() {
			So(table.FindByLevel(999).Name, ShouldEqual, "Challenger")
			So(table.FindByLevel(950).Name, ShouldEqual, "Grandmaster")
			So(table.FindByLevel(1).Name, ShouldEqual, "Iron")

			Convey("Then out-of-range levels fall to the lowest tier", func() {
				So(table.FindByLevel(0).Name, ShouldEqual, "Iron")
				So(table.FindByLevel(1000).Name, ShouldEqual, "Iron")
			})
		})

		Convey("When looking up by name", func() {
			So(table.FindByName("Gold").Name, ShouldEqual, "Gold")

			Convey("Then matching is case-insensitive", func() {
				So(table.FindByName("gOLd").Name, ShouldEqual, "Gold")
			})

			Convey("Then unknown names fall to the lowest tier", func() {
				So(table.FindByName("Obsidian").Name, ShouldEqual, "Iron")
			})
		})
	})
}

func TestNextUp(t *testing.T) {
	Convey("Given the default tier catalog", t, func() {
		table := tier.Default()

		Convey("When asking for the tier above Gold", func() {
			next, ok := table.NextUp("Gold")
			So(ok, ShouldBeTrue)
			So(next.Name, ShouldEqual, "Platinum")
		})

		Convey("When asking for the tier above the top", func() {
			_, ok := table.NextUp("Challenger")
			So(ok, ShouldBeFalse)
		})

		Convey("When asking with an unknown name", func() {
			_, ok := table.NextUp("Obsidian")
			So(ok, ShouldBeFalse)
		})

		Convey("When checking IsTop", func() {
			So(table.IsTop(table.Top()), ShouldBeTrue)
			So(table.IsTop(table.Lowest()), ShouldBeFalse)
		})
	})
}
