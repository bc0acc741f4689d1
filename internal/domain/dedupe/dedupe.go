// Package dedupe tracks already-seen stat event IDs so the ingestion
// pipeline processes each event at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Deduper records seen event IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records
	// it if not. Returns true if id was already seen, false if it was
	// newly recorded. This is the only deduplication primitive.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set so the event can be
	// retried. Intended for the backpressure path, where an event was
	// marked seen but never made it onto the queue.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded map plus a FIFO ring
// of insertion order. When the bound is reached the oldest recorded ID
// is evicted. A non-positive bound disables eviction entirely.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string // insertion order ring, bounded mode only
	oldest  int      // ring read position
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper with the given options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.order = make([]string, 0, d.maxSize)
	}

	return d
}

// SeenAndRecord atomically checks and records id.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	d.seen[id] = struct{}{}
	if d.maxSize > 0 {
		d.order = append(d.order, id)
	}
	d.size.Add(1)
	return false
}

// Unrecord removes id from the seen set. The order ring keeps a stale
// slot; evictOldest skips entries no longer present in the map.
func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
}

// evictOldest drops the oldest still-recorded ID. Must be called with
// d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	for d.oldest < len(d.order) {
		id := d.order[d.oldest]
		d.oldest++
		if _, ok := d.seen[id]; ok {
			delete(d.seen, id)
			d.size.Add(-1)
			break
		}
	}

	// Compact once the consumed prefix dominates the ring.
	if d.oldest > 0 && d.oldest*2 >= len(d.order) {
		d.order = append(d.order[:0], d.order[d.oldest:]...)
		d.oldest = 0
	}
}

// Size returns the current number of recorded IDs.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
