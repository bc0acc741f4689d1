// Package worker runs the asynchronous ingestion loop: stat events are
// folded into the roster and the affected expert's ranking score is
// recomputed.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/consultly/expertrank/internal/adapters/mq/queue"
	"github.com/consultly/expertrank/internal/domain/model"
	"github.com/consultly/expertrank/pkg/logger"
	"github.com/consultly/expertrank/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Event is what workers read off the queue.
type Event = model.StatEvent

// Updater folds events into the roster and stores refreshed scores.
type Updater interface {
	Apply(ctx context.Context, ev model.StatEvent) (model.ExpertStats, error)
	SetScore(ctx context.Context, expertID string, score float64) error
}

// Scorer recomputes a ranking score from an expert's updated counters.
type Scorer interface {
	Score(ctx context.Context, stats model.ExpertStats) (float64, error)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is cancelled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	scorer  Scorer
	updater Updater
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	// processed, when set, counts successfully handled events for the
	// owning pool's throughput gauge.
	processed *atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with the given options.
func NewInMemoryWorker(q Queue, scorer Scorer, updater Updater, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		scorer:   scorer,
		updater:  updater,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing stat event", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent applies one event to the roster and refreshes the
// expert's score from the updated counters.
func (w *InMemoryWorker) processEvent(ctx context.Context, event queue.Event) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	stats, err := w.updater.Apply(ctx, event)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "apply_error")
		metrics.RecordErrorByType("apply_error", "high")
		w.logger.Error(ctx, "roster update failed for event",
			logger.String("eventID", event.EventID),
			logger.Error(err),
		)
		return fmt.Errorf("apply event %s: %w", event.EventID, err)
	}

	scoreStart := time.Now()
	score, err := w.scorer.Score(ctx, stats)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Milliseconds()))
	if err != nil {
		metrics.RecordScoringError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		metrics.RecordErrorByType("scoring_error", "high")
		w.logger.Error(ctx, "scoring failed for event",
			logger.String("eventID", event.EventID),
			logger.Error(err),
		)
		return fmt.Errorf("score event %s: %w", event.EventID, err)
	}

	if err := w.updater.SetScore(ctx, event.ExpertID, score); err != nil {
		metrics.RecordRankingError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "score_write_error")
		metrics.RecordErrorByType("score_write_error", "high")
		return fmt.Errorf("store score for %s: %w", event.ExpertID, err)
	}

	metrics.RecordScoreUpdate()
	metrics.RecordEventProcessed()
	if w.processed != nil {
		w.processed.Add(1)
	}
	return nil
}

// Pool manages a fixed set of workers draining the same queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	scorer  Scorer
	updater Updater

	shutdown     chan struct{}
	shutdownOnce sync.Once

	processedCount    atomic.Int64
	lastProcessedTime time.Time

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive workerCount falls back
// to a CPU-derived default.
func NewPool(workerCount int, q Queue, scorer Scorer, updater Updater) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             q,
		scorer:            scorer,
		updater:           updater,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(q, scorer, updater,
			WithName("worker-"+strconv.Itoa(i)),
			withProcessedCounter(&p.processedCount),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0)

	return p
}

// Start launches all workers plus the pool metrics updater.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	now := time.Now()
	elapsed := now.Sub(p.lastProcessedTime).Seconds()
	count := p.processedCount.Swap(0)
	if elapsed > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(count) / elapsed)
	}
	p.lastProcessedTime = now
}

// Processed reports events handled since the last throughput sample.
func (p *Pool) Processed() int64 {
	return p.processedCount.Load()
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop in time", logger.Error(err))
		}
	}
}

// Shutdown closes the queue and drains all workers, bounded by the
// pool shutdown timeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	p.shutdownOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
