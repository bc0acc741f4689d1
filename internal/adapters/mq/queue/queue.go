// Package queue defines the contract for enqueuing and consuming stat
// events.
//
// The in-memory implementation is a bounded channel: enqueue never
// blocks, consumers drain through Dequeue.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/consultly/expertrank/internal/domain/model"
	"github.com/consultly/expertrank/pkg/metrics"
)

const defaultCapacity = 100000

// Event is the payload type flowing through the queue.
type Event = model.StatEvent

// Queue provides non-blocking enqueue and channel-based dequeue
// semantics.
type Queue interface {
	// Enqueue adds an event to the queue. Returns false when the queue
	// is full or closed; the event was not enqueued.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns a channel receiving events as they become
	// available. The channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close shuts the queue down; no further enqueues succeed.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	events   chan Event
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates an in-memory queue with the given options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}

	for _, opt := range opts {
		opt(q)
	}

	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds an event to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.events <- e:
		metrics.RecordQueueEnqueue()
		q.updateSizeMetrics()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel receiving events until the queue closes or
// ctx is cancelled.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for event := range q.events {
			select {
			case out <- event:
				metrics.RecordQueueDequeue()
				q.updateSizeMetrics()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued events.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.updateSizeMetrics()
	return len(q.events)
}

// Close shuts down the queue. Safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateSizeMetrics() {
	size := len(q.events)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
