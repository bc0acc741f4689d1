package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/consultly/expertrank/internal/domain/model"
	"github.com/consultly/expertrank/pkg/metrics"
)

const (
	defaultShardCount = 8
	maxRating         = 5.0
)

// MemStore is a sharded, in-memory Store implementation. Shard
// selection hashes the expert id; each shard carries its own RWMutex so
// writes to different experts rarely contend.
type MemStore struct {
	shards     []*shard
	shardCount int
}

type shard struct {
	mu      sync.RWMutex
	records map[string]*record
}

// record keeps the mutable per-expert state. ratingSum backs the
// running mean so AvgRating never drifts under repeated updates.
type record struct {
	name      string
	stats     model.ExpertStats
	ratingSum float64
	score     float64
	updatedAt time.Time
}

// NewMemStore creates a sharded roster store.
func NewMemStore(_ context.Context, opts ...Option) *MemStore {
	s := &MemStore{shardCount: defaultShardCount}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{records: make(map[string]*record)}
	}

	metrics.UpdateRosterShardCount(s.shardCount)

	return s
}

func (s *MemStore) shardFor(expertID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(expertID))
	return s.shards[int(h.Sum32())%s.shardCount]
}

// Apply folds a stat event into the expert's counters.
func (s *MemStore) Apply(_ context.Context, ev model.StatEvent) (model.ExpertStats, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRosterUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(ev.ExpertID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[ev.ExpertID]
	if !ok {
		rec = &record{}
		sh.records[ev.ExpertID] = rec
	}

	switch ev.Kind {
	case model.KindSessionCompleted:
		rec.stats.TotalSessions++
		if ev.Repeat {
			rec.stats.RepeatClients++
		}
	case model.KindReviewPosted:
		rating := ev.Rating
		if rating < 0 {
			rating = 0
		}
		if rating > maxRating {
			rating = maxRating
		}
		rec.stats.ReviewCount++
		rec.ratingSum += rating
		rec.stats.AvgRating = rec.ratingSum / float64(rec.stats.ReviewCount)
	case model.KindLike:
		rec.stats.LikeCount++
	default:
		return model.ExpertStats{}, ErrUnknownEventKind
	}

	if rec.stats.Specialty == "" && ev.Specialty != "" {
		rec.stats.Specialty = ev.Specialty
	}
	rec.updatedAt = time.Now()

	return rec.stats, nil
}

// SetScore stores a freshly computed ranking score.
func (s *MemStore) SetScore(_ context.Context, expertID string, score float64) error {
	sh := s.shardFor(expertID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[expertID]
	if !ok {
		return ErrNotFound
	}
	rec.score = score
	rec.updatedAt = time.Now()
	return nil
}

// SetName attaches a display name to an expert, creating the record if
// needed so profile data can arrive before the first stat event.
func (s *MemStore) SetName(_ context.Context, expertID, name string) error {
	sh := s.shardFor(expertID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[expertID]
	if !ok {
		rec = &record{}
		sh.records[expertID] = rec
	}
	rec.name = name
	return nil
}

// SetStats replaces an expert's counters wholesale. The rating sum is
// rebuilt from the supplied average so later reviews keep a consistent
// running mean.
func (s *MemStore) SetStats(_ context.Context, expertID string, stats model.ExpertStats) error {
	sh := s.shardFor(expertID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.records[expertID]
	if !ok {
		rec = &record{}
		sh.records[expertID] = rec
	}
	rec.stats = stats
	rec.ratingSum = stats.AvgRating * float64(stats.ReviewCount)
	rec.updatedAt = time.Now()
	return nil
}

// Get returns one expert's record.
func (s *MemStore) Get(_ context.Context, expertID string) (Record, error) {
	sh := s.shardFor(expertID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.records[expertID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{
		ExpertID:  expertID,
		Name:      rec.name,
		Stats:     rec.stats,
		Score:     rec.score,
		UpdatedAt: rec.updatedAt,
	}, nil
}

// Snapshot returns every record across all shards.
func (s *MemStore) Snapshot(_ context.Context) []Record {
	start := time.Now()
	defer func() {
		metrics.RecordRosterQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	out := make([]Record, 0, 64)
	for i, sh := range s.shards {
		sh.mu.RLock()
		for id, rec := range sh.records {
			out = append(out, Record{
				ExpertID:  id,
				Name:      rec.name,
				Stats:     rec.stats,
				Score:     rec.score,
				UpdatedAt: rec.updatedAt,
			})
		}
		n := len(sh.records)
		sh.mu.RUnlock()
		metrics.UpdateRosterRecordsPerShard(strconv.Itoa(i), n)
	}
	metrics.UpdateRosterRecordsTotal(len(out))
	return out
}

// Rank returns the expert's overall position by stored score, ties
// broken by expert id ascending for determinism.
func (s *MemStore) Rank(ctx context.Context, expertID string) (Entry, error) {
	rec, err := s.Get(ctx, expertID)
	if err != nil {
		return Entry{}, err
	}

	rank := 1
	for _, sh := range s.shards {
		sh.mu.RLock()
		for id, other := range sh.records {
			if id == expertID {
				continue
			}
			if other.score > rec.Score || (other.score == rec.Score && id < expertID) {
				rank++
			}
		}
		sh.mu.RUnlock()
	}

	return Entry{Rank: rank, ExpertID: expertID, Score: rec.Score}, nil
}

// TopN returns the best n entries by stored score.
func (s *MemStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	records := s.Snapshot(ctx)
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].ExpertID < records[j].ExpertID
	})

	if n > len(records) {
		n = len(records)
	}
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = Entry{Rank: i + 1, ExpertID: records[i].ExpertID, Score: records[i].Score}
	}
	return entries, nil
}

// Count returns the number of experts tracked.
func (s *MemStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.records)
		sh.mu.RUnlock()
	}
	return total
}
