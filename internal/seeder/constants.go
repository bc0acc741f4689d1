package seeder

import "time"

// HTTP status code constants.
const (
	StatusOK              = 200
	StatusAccepted        = 202
	StatusTooManyRequests = 429
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Run pacing constants.
const (
	DrainTimeout         = 2 * time.Minute
	drainPollInterval    = 500 * time.Millisecond
	backpressureDelay    = 100 * time.Millisecond
	PercentageMultiplier = 100
)
