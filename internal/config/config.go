// Package config defines service configuration structures and loading.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Layer overrides via Load: defaults -> optional YAML file -> env vars.
// - External errors are wrapped via this package's error kinds.
package config

import (
	"runtime"
)

// Scoring holds the score formula knobs. Zero-valued fields fall back
// to the calculator defaults.
type Scoring struct {
	// Component weights on the 1000-point scale.
	SessionWeight float64 `koanf:"session_weight"`
	RatingWeight  float64 `koanf:"rating_weight"`
	ReviewWeight  float64 `koanf:"review_weight"`
	RepeatWeight  float64 `koanf:"repeat_weight"`
	LikeWeight    float64 `koanf:"like_weight"`

	// Volume caps after which the capped components stop growing.
	SessionCap int `koanf:"session_cap"`
	ReviewCap  int `koanf:"review_cap"`
	LikeCap    int `koanf:"like_cap"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory stat event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of roster store shards.
	ShardCount int `koanf:"shard_count"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit and the optional
	// limit on ranking views.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// Scoring configures the ranking score formula.
	Scoring Scoring `koanf:"scoring"`
}

// New returns a Config populated with production defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		EventQueueSize:      100_000,
		WorkerCount:         runtime.NumCPU() * 4,
		DedupeSize:          500_000,
		ShardCount:          8,
		MaxLeaderboardLimit: 100,
		Scoring: Scoring{
			SessionWeight: 400,
			RatingWeight:  300,
			ReviewWeight:  150,
			RepeatWeight:  100,
			LikeWeight:    50,
			SessionCap:    100,
			ReviewCap:     50,
			LikeCap:       100,
		},
	}
}
