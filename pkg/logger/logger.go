// Package logger provides the structured logging interface used across
// the service.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// callerSkipFrames skips getCaller and the logging method itself.
const callerSkipFrames = 2

// Logger defines the logging interface. All methods take a context
// first, matching the project-wide convention.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field is a key-value pair attached to a log record.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, val string) Field          { return Field{Key: key, Value: val} }
func Int(key string, val int) Field         { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }
func Any(key string, val any) Field         { return Field{Key: key, Value: val} }
func Error(err error) Field                 { return Field{Key: "error", Value: err} }

// slogLogger implements Logger on top of log/slog.
type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Named(name string) Logger {
	return &slogLogger{l: s.l.WithGroup(name)}
}

func (s *slogLogger) log(ctx context.Context, lvl slog.Level, msg string, fields []Field) {
	fields = append(fields, String("source", getCaller()))
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	s.l.LogAttrs(ctx, lvl, msg, attrs...)
}

func (s *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelDebug, msg, fields)
}

func (s *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelInfo, msg, fields)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelWarn, msg, fields)
}

func (s *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
}

func (s *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	s.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

var global Logger
var levelVar slog.LevelVar

// Init initializes the global logger at info level.
func Init() error {
	levelVar.Set(slog.LevelInfo)
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &levelVar})
	global = &slogLogger{l: slog.New(h)}
	return nil
}

// Get returns the global logger. It panics when Init was never called;
// the application must initialize logging explicitly.
func Get() Logger {
	if global == nil {
		panic("logger not initialized; call logger.Init first")
	}
	return global
}

// Named creates a named logger off the global one.
func Named(name string) Logger {
	return Get().Named(name)
}

// SetLevel updates the level of the global handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and applies a level name. Accepts debug, info,
// warn/warning, error (case-insensitive); empty means info.
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}

// getCaller returns the caller location as relative/path/file.go:line.
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames + 1)
	if !ok {
		return "unknown:0"
	}
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, file); err == nil {
			return fmt.Sprintf("%s:%d", rel, line)
		}
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
