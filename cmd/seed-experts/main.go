package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/consultly/expertrank/internal/seeder"
)

// Default configuration constants.
const (
	defaultNumExperts = 500
	defaultTopN       = 50
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numExperts = flag.Int("experts", defaultNumExperts, "Number of experts to create")
		topN       = flag.Int("top", defaultTopN, "Number of top entries to fetch from leaderboard")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile    = flag.String("log", "", "Log file for run output (default: seed_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seeder.ShowHelp()
		return
	}

	if err := seeder.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &seeder.Config{
		BaseURL:    *baseURL,
		NumExperts: *numExperts,
		TopN:       *topN,
		Workers:    *workers,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := seeder.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		return
	}
}
