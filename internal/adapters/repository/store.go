// Package repository defines the roster store interface and errors.
//
// The roster is the in-memory stand-in for the platform's persistence
// layer: it owns each expert's raw performance counters plus the most
// recently computed ranking score. The ranking engine itself stays
// stateless; every ranked view is recomputed from a roster snapshot.
package repository

import (
	"context"
	"time"

	"github.com/consultly/expertrank/internal/domain/model"
)

// Record is one expert's stored state.
type Record struct {
	ExpertID  string
	Name      string
	Stats     model.ExpertStats
	Score     float64
	UpdatedAt time.Time
}

// Entry is a leaderboard row derived from stored scores.
type Entry struct {
	Rank     int
	ExpertID string
	Score    float64
}

// Store provides read/write access to the expert roster.
type Store interface {
	// Apply folds a stat event into the expert's counters, creating
	// the record when the expert is new. Returns the updated stats.
	Apply(ctx context.Context, ev model.StatEvent) (model.ExpertStats, error)

	// SetScore stores a freshly computed ranking score for an expert.
	// Returns ErrNotFound for an unknown expert.
	SetScore(ctx context.Context, expertID string, score float64) error

	// SetName attaches a display name to an expert's record.
	SetName(ctx context.Context, expertID, name string) error

	// SetStats replaces an expert's counters wholesale, creating the
	// record when the expert is new. Bulk imports use this.
	SetStats(ctx context.Context, expertID string, stats model.ExpertStats) error

	// Get returns one expert's record. Returns ErrNotFound when the
	// expert is unknown.
	Get(ctx context.Context, expertID string) (Record, error)

	// Snapshot returns every record, in no particular order.
	Snapshot(ctx context.Context) []Record

	// Rank returns the expert's current overall rank and stored score.
	// Ordering is score desc, expert id asc on ties.
	Rank(ctx context.Context, expertID string) (Entry, error)

	// TopN returns the top-N entries by stored score.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of experts tracked.
	Count(ctx context.Context) int
}
