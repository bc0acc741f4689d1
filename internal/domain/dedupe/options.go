package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of IDs kept in memory. The oldest
// recorded ID is evicted once the bound is reached. A non-positive size
// means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
