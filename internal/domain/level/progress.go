package level

import (
	"math"

	"github.com/consultly/expertrank/internal/domain/tier"
)

const fullProgress = 100

// Progress describes how far an expert has climbed through their
// current tier toward the next one, measured on the level scale.
type Progress struct {
	IsMaxTier    bool             `json:"isMaxTier"`
	Progress     int              `json:"progress"` // 0-100 percent
	CurrentTier  tier.Definition  `json:"currentTier"`
	NextTier     *tier.Definition `json:"nextTier,omitempty"`
	LevelsNeeded int              `json:"levelsNeeded"`
}

// ScoreProgress is the score-based counterpart of Progress. When an
// expert sits in the top tier with a score past the nominal cap, the
// overflow is reported separately so callers can display banked score
// distinctly from the capped level.
type ScoreProgress struct {
	IsMaxTier       bool             `json:"isMaxTier"`
	Progress        int              `json:"progress"` // 0-100 percent
	CurrentTier     tier.Definition  `json:"currentTier"`
	NextTier        *tier.Definition `json:"nextTier,omitempty"`
	ScoreNeeded     float64          `json:"scoreNeeded"`
	AdditionalScore float64          `json:"additionalScore,omitempty"`
	TotalScore      float64          `json:"totalScore,omitempty"`
}

// ProgressCalculator derives progress metrics from the tier catalog.
type ProgressCalculator struct {
	table *tier.Table
}

// NewProgress creates a ProgressCalculator backed by the given catalog.
func NewProgress(t *tier.Table) *ProgressCalculator {
	return &ProgressCalculator{table: t}
}

// ToNextTier reports percent progress from the current tier's floor
// toward the next tier, based on level.
func (p *ProgressCalculator) ToNextTier(lvl int) Progress {
	cur := p.table.FindByLevel(lvl)
	if p.table.IsTop(cur) {
		return Progress{IsMaxTier: true, Progress: fullProgress, CurrentTier: cur}
	}

	next, _ := p.table.NextUp(cur.Name)
	pct := percent(float64(lvl-cur.Level.Min), float64(cur.Level.Max-cur.Level.Min))

	needed := next.Level.Min - lvl
	if needed < 0 {
		needed = 0
	}

	return Progress{
		Progress:     pct,
		CurrentTier:  cur,
		NextTier:     &next,
		LevelsNeeded: needed,
	}
}

// ToNextTierByScore reports percent progress through the current tier's
// score band. In the top tier the result carries the overflow past 999
// when present.
func (p *ProgressCalculator) ToNextTierByScore(score float64) ScoreProgress {
	cur := p.table.FindByScore(score)
	if p.table.IsTop(cur) {
		sp := ScoreProgress{IsMaxTier: true, Progress: fullProgress, CurrentTier: cur}
		if score > cur.Score.Max {
			sp.AdditionalScore = round2(score - cur.Score.Max)
			sp.TotalScore = score
		}
		return sp
	}

	next, _ := p.table.NextUp(cur.Name)
	pct := percent(score-cur.Score.Min, cur.Score.Max-cur.Score.Min)

	needed := next.Score.Min - score
	if needed < 0 {
		needed = 0
	}

	return ScoreProgress{
		Progress:    pct,
		CurrentTier: cur,
		NextTier:    &next,
		ScoreNeeded: round2(needed),
	}
}

// percent returns part/whole as an integer percentage clamped to
// [0, 100], rounded to nearest.
func percent(part, whole float64) int {
	if whole <= 0 {
		return fullProgress
	}
	pct := int(math.Round(part / whole * fullProgress))
	if pct < 0 {
		pct = 0
	}
	if pct > fullProgress {
		pct = fullProgress
	}
	return pct
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
