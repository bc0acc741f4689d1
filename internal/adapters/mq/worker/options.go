package worker

import "sync/atomic"

// Option configures an InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker's name, used for logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// withProcessedCounter points the worker at the pool's shared counter
// of successfully handled events.
func withProcessedCounter(counter *atomic.Int64) Option {
	return func(w *InMemoryWorker) {
		w.processed = counter
	}
}
