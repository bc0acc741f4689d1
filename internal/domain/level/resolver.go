// Package level maps ranking scores onto the 1-999 level scale and
// derives tier progress metrics.
package level

import (
	"math"

	"github.com/consultly/expertrank/internal/domain/tier"
)

// fallbackDivisor drives the level fallback for scores no tier band
// contains: max(1, floor(score/5)).
const fallbackDivisor = 5

// Resolver converts between scores, levels and prices using an injected
// tier catalog. It holds no mutable state and is safe for concurrent
// use.
type Resolver struct {
	table *tier.Table
}

// NewResolver creates a Resolver backed by the given tier catalog.
func NewResolver(t *tier.Table) *Resolver {
	return &Resolver{table: t}
}

// ScoreToLevel maps a ranking score to a level in [1, 999].
//
// The mapping is monotonic and tier-wise linear: within a tier the level
// interpolates with floor semantics across the tier's level band; at a
// tier boundary it jumps to the next tier's minimum. Scores above 999
// clamp to level 999 while the score itself keeps accumulating. The
// floor (not round) and the inclusive clamp are load-bearing: off-by-one
// here changes which price tier an expert is billed at.
func (r *Resolver) ScoreToLevel(score float64) int {
	if score > float64(tier.MaxLevel) {
		return tier.MaxLevel
	}

	d, ok := r.table.MatchScore(score)
	if !ok {
		// No band contains the score (seam gap or negative input).
		lvl := int(math.Floor(score / fallbackDivisor))
		if lvl < tier.MinLevel {
			lvl = tier.MinLevel
		}
		return lvl
	}

	// Single-point top tier: no interpolation.
	if d.Score.Max == d.Score.Min {
		return d.Level.Min
	}

	fraction := (score - d.Score.Min) / (d.Score.Max - d.Score.Min)
	span := d.Level.Max - d.Level.Min + 1
	lvl := d.Level.Min + int(math.Floor(fraction*float64(span)))

	if lvl < d.Level.Min {
		lvl = d.Level.Min
	}
	if lvl > d.Level.Max {
		lvl = d.Level.Max
	}
	return lvl
}

// PriceForLevel returns the credits-per-minute rate of the tier owning
// level.
func (r *Resolver) PriceForLevel(lvl int) int {
	return r.table.FindByLevel(lvl).PricePerMinute
}

// TierForLevel returns the tier owning level.
func (r *Resolver) TierForLevel(lvl int) tier.Definition {
	return r.table.FindByLevel(lvl)
}

// TierForScore returns the tier owning score, including the top-tier
// carve-out for scores past the nominal cap.
func (r *Resolver) TierForScore(score float64) tier.Definition {
	return r.table.FindByScore(score)
}
