package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env
// vars. Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if EXPERTRANK_CONFIG is set
//  3. env (prefix EXPERTRANK_, e.g. EXPERTRANK_ADDR, EXPERTRANK_QUEUE_SIZE)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("EXPERTRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys map flat: EXPERTRANK_QUEUE_SIZE -> queue_size. Nested
	// scoring keys use a double underscore: EXPERTRANK_SCORING__LIKE_CAP.
	envProvider := env.Provider("EXPERTRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "expertrank_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.MaxLeaderboardLimit < 1 {
		return nil, fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
