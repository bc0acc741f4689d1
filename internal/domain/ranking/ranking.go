// Package ranking produces sorted, ranked leaderboard views over expert
// stat snapshots.
package ranking

import (
	"sort"

	"github.com/consultly/expertrank/internal/domain/level"
	"github.com/consultly/expertrank/internal/domain/model"
	"github.com/consultly/expertrank/internal/domain/scoring"
	"github.com/consultly/expertrank/internal/domain/tier"
)

// Mode selects the ordering of a ranked view.
type Mode string

// Supported ranking modes. Each is a total order over the same entry
// set; specialty additionally filters to one specialty value.
const (
	ModeOverall   Mode = "overall"
	ModeRating    Mode = "rating"
	ModeSessions  Mode = "sessions"
	ModeSpecialty Mode = "specialty"
)

// Valid reports whether m names a supported ranking mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeOverall, ModeRating, ModeSessions, ModeSpecialty:
		return true
	}
	return false
}

// Expert is one input snapshot: identity plus the raw counters owned by
// the calling service. Name may be empty when the profile lookup failed
// upstream; a placeholder is substituted rather than failing the view.
type Expert struct {
	ID    string
	Name  string
	Stats model.ExpertStats
}

// Entry is one row of a ranked view. Entries are recomputed on every
// query and never persisted.
type Entry struct {
	Rank           int             `json:"rank"`
	ExpertID       string          `json:"expertId"`
	Name           string          `json:"name"`
	Specialty      string          `json:"specialty,omitempty"`
	RankingScore   float64         `json:"rankingScore"`
	Level          int             `json:"level"`
	Tier           tier.Definition `json:"tierInfo"`
	TotalSessions  int             `json:"totalSessions"`
	AvgRating      float64         `json:"avgRating"`
	SpecialtyRank  int             `json:"specialtyRank,omitempty"`
	SpecialtyTotal int             `json:"specialtyTotal,omitempty"`
}

// Aggregator builds ranked views. It is pure: deterministic in its
// inputs, no I/O, safe for concurrent use.
type Aggregator struct {
	calc     *scoring.Calculator
	resolver *level.Resolver
}

// NewAggregator creates an Aggregator over the given calculator and
// resolver.
func NewAggregator(calc *scoring.Calculator, resolver *level.Resolver) *Aggregator {
	return &Aggregator{calc: calc, resolver: resolver}
}

// Rank computes the requested view over experts. The specialty argument
// is only consulted in ModeSpecialty. A nil or empty input yields an
// empty, non-nil slice. Ties keep input order (stable sort); no
// secondary sort key is applied.
func (a *Aggregator) Rank(experts []Expert, mode Mode, specialty string) []Entry {
	entries := make([]Entry, 0, len(experts))
	for _, e := range experts {
		if mode == ModeSpecialty && e.Stats.Specialty != specialty {
			continue
		}
		score := a.calc.Score(e.Stats)
		lvl := a.resolver.ScoreToLevel(score)
		entries = append(entries, Entry{
			ExpertID:      e.ID,
			Name:          displayName(e),
			Specialty:     e.Stats.Specialty,
			RankingScore:  score,
			Level:         lvl,
			Tier:          a.resolver.TierForLevel(lvl),
			TotalSessions: e.Stats.TotalSessions,
			AvgRating:     e.Stats.AvgRating,
		})
	}

	switch mode {
	case ModeRating:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].AvgRating > entries[j].AvgRating
		})
	case ModeSessions:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].TotalSessions > entries[j].TotalSessions
		})
	default: // overall and specialty order by ranking score
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].RankingScore > entries[j].RankingScore
		})
	}

	for i := range entries {
		entries[i].Rank = i + 1
		if mode == ModeSpecialty {
			entries[i].SpecialtyRank = i + 1
			entries[i].SpecialtyTotal = len(entries)
		}
	}

	return entries
}

// displayName returns the expert's profile name, or a deterministic
// placeholder when the profile is missing.
func displayName(e Expert) string {
	if e.Name != "" {
		return e.Name
	}
	id := e.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "expert-" + id
}
