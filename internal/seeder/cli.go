package seeder

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/consultly/expertrank/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`Expert Rank Seeder
==================

Seeds the ranking service with fake experts and stat events, then
verifies leaderboard and level consistency.

Usage:
  go run cmd/seed-experts/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -experts int
        Number of experts to create (default 500)
  -top int
        Number of top entries to fetch from leaderboard (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for run output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-experts/main.go

  # Seed a larger roster
  go run cmd/seed-experts/main.go -experts 5000 -workers 16

  # Seed against a remote instance with verbose output
  go run cmd/seed-experts/main.go -url http://ranking.internal:9080 -verbose
`)
}
