package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/consultly/expertrank/pkg/logger"
)

// Run executes the complete seeding and verification flow.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting expert seeding run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("experts", config.NumExperts),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("topN", config.TopN),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate experts and their events
	experts := generateExperts(ctx, config, stats)
	events := generateEvents(ctx, experts, stats)

	// Step 3: Register profiles so rankings show names
	client := newHTTPClient(config.Timeout)
	if err := registerProfiles(ctx, config, client, experts); err != nil {
		return fmt.Errorf("profile registration failed: %w", err)
	}

	// Step 4: Submit events concurrently
	if err := submitEvents(ctx, config, events, stats); err != nil {
		return fmt.Errorf("event submission failed: %w", err)
	}

	// Step 5: Wait for the queue to drain
	logger.Get().Info(ctx, "waiting for events to be processed")
	if err := waitForDrain(ctx, config); err != nil {
		return fmt.Errorf("drain wait failed: %w", err)
	}

	// Step 6: Retrieve per-expert ranks concurrently
	ranks, err := retrieveRanks(ctx, config, experts, stats)
	if err != nil {
		return fmt.Errorf("rank retrieval failed: %w", err)
	}

	// Step 7: Get the leaderboard
	leaderboard, err := getLeaderboard(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("leaderboard retrieval failed: %w", err)
	}

	// Step 8: Verify results
	if err := verifyResults(ctx, config, ranks, leaderboard); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seeding run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Any 200 counts as healthy; the endpoint serves Prometheus metrics.
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, eventsPerSecond float64

	if stats.EventsSubmitted > 0 {
		successRate = float64(stats.EventsSuccessful) / float64(stats.EventsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("expertsGenerated", stats.ExpertsGenerated),
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsSuccessful", stats.EventsSuccessful),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("ranksRetrieved", stats.RanksRetrieved),
		logger.Int("leaderboardEntries", stats.LeaderboardEntries),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
