package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/consultly/expertrank/internal/adapters/http/api"
	"github.com/consultly/expertrank/internal/adapters/http/swagger"
	app "github.com/consultly/expertrank/internal/app"
	"github.com/consultly/expertrank/internal/config"
	"github.com/consultly/expertrank/internal/domain/scoring"
	"github.com/consultly/expertrank/pkg/logger"
	"github.com/consultly/expertrank/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicates; the
	// service exports its own system metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithShardCount(cfg.ShardCount),
		app.WithScoringWeights(scoring.Weights{
			Session: cfg.Scoring.SessionWeight,
			Rating:  cfg.Scoring.RatingWeight,
			Review:  cfg.Scoring.ReviewWeight,
			Repeat:  cfg.Scoring.RepeatWeight,
			Like:    cfg.Scoring.LikeWeight,
		}),
		app.WithScoringCaps(scoring.Caps{
			Sessions: cfg.Scoring.SessionCap,
			Reviews:  cfg.Scoring.ReviewCap,
			Likes:    cfg.Scoring.LikeCap,
		}),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// API reference under /api-docs
	swagger.Register(ctx, mux)

	// Business API routes backed by the service.
	apiServer := api.NewServer(svc, svc, cfg.MaxLeaderboardLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater periodically refreshes system-level metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater periodically refreshes service-level metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

func updateServiceMetrics(svc *app.Service) {
	// GetStats already pushes the gauges it derives.
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if totalExperts, ok := stats["totalExperts"].(int); ok {
		metrics.UpdateTotalExperts(totalExperts)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}
