package logger

import (
	"context"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initialization must be safe
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	logger := Get()
	logger.Info(ctx, "test message", String("k", "v"), Int("n", 1), Float64("f", 1.5))
	logger.Warn(ctx, "test warning", Any("payload", map[string]int{"a": 1}))
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}

	namedLogger.Info(context.Background(), "test message")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("SetLevelString(%q) failed: %v", lvl, err)
		}
	}

	if err := SetLevelString("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
