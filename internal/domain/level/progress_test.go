package level_test

import (
	"testing"

	level "github.com/consultly/expertrank/internal/domain/level"
	"github.com/consultly/expertrank/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func TestToNextTier(t *testing.T) {
	Convey("Given a progress calculator over the default catalog", t, func() {
		p := level.NewProgress(tier.Default())

		Convey("When the expert sits at the top tier", func() {
			prog := p.ToNextTier(999)

			Convey("Then progress reports max tier at 100 percent", func() {
				So(prog.IsMaxTier, ShouldBeTrue)
				So(prog.Progress, ShouldEqual, 100)
				So(prog.CurrentTier.Name, ShouldEqual, "Challenger")
				So(prog.NextTier, ShouldBeNil)
			})
		})

		Convey("When the expert is mid-way through Grandmaster", func() {
			prog := p.ToNextTier(950)

			Convey("Then the next tier and distance are reported", func() {
				So(prog.IsMaxTier, ShouldBeFalse)
				So(prog.CurrentTier.Name, ShouldEqual, "Grandmaster")
				So(prog.NextTier.Name, ShouldEqual, "Challenger")
				So(prog.LevelsNeeded, ShouldEqual, 49)
				So(prog.Progress, ShouldEqual, 51) // (950-900)/(998-900)
			})
		})

		Convey("When the expert sits at a tier floor", func() {
			prog := p.ToNextTier(400)

			Convey("Then progress is zero", func() {
				So(prog.Progress, ShouldEqual, 0)
				So(prog.CurrentTier.Name, ShouldEqual, "Gold")
				So(prog.NextTier.Name, ShouldEqual, "Platinum")
				So(prog.LevelsNeeded, ShouldEqual, 100)
			})
		})

		Convey("When the expert sits at a tier ceiling", func() {
			prog := p.ToNextTier(499)

			Convey("Then progress is 100 with one level to go", func() {
				So(prog.Progress, ShouldEqual, 100)
				So(prog.LevelsNeeded, ShouldEqual, 1)
			})
		})
	})
}

func TestToNextTierByScore(t *testing.T) {
	Convey("Given a progress calculator over the default catalog", t, func() {
		p := level.NewProgress(tier.Default())

		Convey("When the score sits inside the top band", func() {
			prog := p.ToNextTierByScore(980)

			Convey("Then it reports max tier without overflow", func() {
				So(prog.IsMaxTier, ShouldBeTrue)
				So(prog.Progress, ShouldEqual, 100)
				So(prog.AdditionalScore, ShouldEqual, 0)
				So(prog.TotalScore, ShouldEqual, 0)
			})
		})

		Convey("When the score exceeds the top band ceiling", func() {
			prog := p.ToNextTierByScore(1050)

			Convey("Then the overflow is reported separately", func() {
				So(prog.IsMaxTier, ShouldBeTrue)
				So(prog.AdditionalScore, ShouldEqual, 51)
				So(prog.TotalScore, ShouldEqual, 1050)
			})
		})

		Convey("When the score is mid-band", func() {
			prog := p.ToNextTierByScore(625)

			Convey("Then percent and score distance are derived from the band", func() {
				So(prog.CurrentTier.Name, ShouldEqual, "Silver")
				So(prog.NextTier.Name, ShouldEqual, "Gold")
				So(prog.Progress, ShouldEqual, 50)
				So(prog.ScoreNeeded, ShouldEqual, 25)
			})
		})

		Convey("When the score sits at a band floor", func() {
			prog := p.ToNextTierByScore(550)

			Convey("Then progress is zero with a full band to cross", func() {
				So(prog.CurrentTier.Name, ShouldEqual, "Bronze")
				So(prog.Progress, ShouldEqual, 0)
				So(prog.ScoreNeeded, ShouldEqual, 50)
			})
		})
	})
}
