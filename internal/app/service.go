// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	eventqueue "github.com/consultly/expertrank/internal/adapters/mq/queue"
	workerpool "github.com/consultly/expertrank/internal/adapters/mq/worker"
	"github.com/consultly/expertrank/internal/adapters/repository"
	"github.com/consultly/expertrank/internal/domain/dedupe"
	"github.com/consultly/expertrank/internal/domain/level"
	"github.com/consultly/expertrank/internal/domain/model"
	"github.com/consultly/expertrank/internal/domain/ranking"
	"github.com/consultly/expertrank/internal/domain/scoring"
	"github.com/consultly/expertrank/internal/domain/tier"
	"github.com/consultly/expertrank/internal/domain/types"
	"github.com/consultly/expertrank/pkg/logger"
	"github.com/consultly/expertrank/pkg/metrics"
)

// scoringAdapter adapts the pure scoring.Calculator to worker.Scorer.
type scoringAdapter struct {
	calc *scoring.Calculator
}

func (a *scoringAdapter) Score(_ context.Context, stats model.ExpertStats) (float64, error) {
	return a.calc.Score(stats), nil
}

// Service implements the API dependencies for the ranking system.
type Service struct {
	mu sync.RWMutex

	// Core components
	roster     repository.Store
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	calc       *scoring.Calculator
	resolver   *level.Resolver
	progress   *level.ProgressCalculator
	aggregator *ranking.Aggregator
	tiers      *tier.Table
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	shardCount  int
	weights     scoring.Weights
	caps        scoring.Caps

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the roster store shard count.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScoringWeights overrides the scoring component weights.
func WithScoringWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithScoringCaps overrides the scoring volume caps.
func WithScoringCaps(c scoring.Caps) Option {
	return func(s *Service) {
		s.caps = c
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		shardCount:  8,
		stopCh:      make(chan struct{}),
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting expert ranking service...")

	s.tiers = tier.Default()
	s.calc = scoring.New(
		scoring.WithWeights(s.weights),
		scoring.WithCaps(s.caps),
	)
	s.resolver = level.NewResolver(s.tiers)
	s.progress = level.NewProgress(s.tiers)
	s.aggregator = ranking.NewAggregator(s.calc, s.resolver)

	s.roster = repository.NewMemStore(ctx,
		repository.WithShardCount(s.shardCount),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	scorer := &scoringAdapter{calc: s.calc}
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, scorer, s.roster)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "expert ranking service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping expert ranking service...")

	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "expert ranking service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it
// if not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event id from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a stat event for asynchronous processing. Returns
// false when the queue rejects the event.
func (s *Service) Enqueue(ctx context.Context, ev model.StatEvent) bool {
	ok := s.eventQueue.Enqueue(ctx, ev)
	if ok {
		metrics.UpdateQueueSize(s.eventQueue.Len(ctx))
	} else {
		s.logger.Warn(ctx, "event rejected by queue",
			logger.String("eventID", ev.EventID),
			logger.String("expertID", ev.ExpertID),
		)
	}
	return ok
}

// TopN returns the top N leaderboard entries enriched with level and
// tier.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	entries, err := s.roster.TopN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}

	apiEntries := make([]types.Entry, len(entries))
	for i, entry := range entries {
		apiEntries[i] = s.toEntry(entry)
	}
	return apiEntries, nil
}

// Rank returns the rank, score, level and tier for a given expert id.
func (s *Service) Rank(ctx context.Context, expertID string) (types.Entry, error) {
	entry, err := s.roster.Rank(ctx, expertID)
	if err != nil {
		return types.Entry{}, fmt.Errorf("rank query for %s: %w", expertID, err)
	}
	return s.toEntry(entry), nil
}

func (s *Service) toEntry(e repository.Entry) types.Entry {
	lvl := s.resolver.ScoreToLevel(e.Score)
	return types.Entry{
		Rank:     e.Rank,
		ExpertID: e.ExpertID,
		Score:    e.Score,
		Level:    lvl,
		Tier:     s.resolver.TierForScore(e.Score).Name,
	}
}

// Rankings returns the ranked view for a mode, recomputed from a roster
// snapshot, truncated to limit.
func (s *Service) Rankings(ctx context.Context, mode ranking.Mode, specialty string, limit int) ([]ranking.Entry, error) {
	records := s.roster.Snapshot(ctx)

	experts := make([]ranking.Expert, len(records))
	for i, rec := range records {
		experts[i] = ranking.Expert{
			ID:    rec.ExpertID,
			Name:  rec.Name,
			Stats: rec.Stats,
		}
	}

	metrics.RecordRankingQuery(string(mode))
	entries := s.aggregator.Rank(experts, mode, specialty)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Tiers returns the full tier catalog, highest tier first.
func (s *Service) Tiers(_ context.Context) []tier.Definition {
	return s.tiers.All()
}

// TierForLevel returns the tier owning level. It reports false for
// levels outside [1, 999].
func (s *Service) TierForLevel(_ context.Context, lvl int) (tier.Definition, bool) {
	if lvl < tier.MinLevel || lvl > tier.MaxLevel {
		return tier.Definition{}, false
	}
	return s.resolver.TierForLevel(lvl), true
}

// TierForName returns the named tier, case-insensitive. It reports
// false for unknown names.
func (s *Service) TierForName(_ context.Context, name string) (tier.Definition, bool) {
	d := s.tiers.FindByName(name)
	if !strings.EqualFold(d.Name, name) {
		return tier.Definition{}, false
	}
	return d, true
}

// TierForScore returns the tier owning score.
func (s *Service) TierForScore(_ context.Context, score float64) tier.Definition {
	return s.resolver.TierForScore(score)
}

// PriceForLevel returns the credits-per-minute rate for a level.
func (s *Service) PriceForLevel(_ context.Context, lvl int) int {
	return s.resolver.PriceForLevel(lvl)
}

// ScoreToLevel maps a ranking score to a level.
func (s *Service) ScoreToLevel(_ context.Context, score float64) int {
	return s.resolver.ScoreToLevel(score)
}

// ScoreBreakdown computes the weighted score with per-component
// contributions.
func (s *Service) ScoreBreakdown(_ context.Context, stats model.ExpertStats) scoring.Breakdown {
	return s.calc.Breakdown(stats)
}

// ProgressForLevel reports progress through the current tier toward the
// next one.
func (s *Service) ProgressForLevel(_ context.Context, lvl int) level.Progress {
	return s.progress.ToNextTier(lvl)
}

// ProgressForScore reports score-based progress toward the next tier.
func (s *Service) ProgressForScore(_ context.Context, score float64) level.ScoreProgress {
	return s.progress.ToNextTierByScore(score)
}

// UpdateExpert replaces an expert's counters and score synchronously,
// bypassing the event queue. Bulk imports use this.
func (s *Service) UpdateExpert(ctx context.Context, expertID, name string, stats model.ExpertStats, score float64) error {
	if err := s.roster.SetStats(ctx, expertID, stats); err != nil {
		return fmt.Errorf("set stats for %s: %w", expertID, err)
	}
	if name != "" {
		if err := s.roster.SetName(ctx, expertID, name); err != nil {
			return fmt.Errorf("set name for %s: %w", expertID, err)
		}
	}
	if err := s.roster.SetScore(ctx, expertID, score); err != nil {
		return fmt.Errorf("set score for %s: %w", expertID, err)
	}
	metrics.RecordScoreUpdate()
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		totalExperts := s.roster.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalExperts"] = totalExperts

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalExperts(totalExperts)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
