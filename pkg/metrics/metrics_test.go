package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given a manager", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the package-level recorders", t, func() {
		Convey("Event metrics should not panic", func() {
			So(func() {
				RecordEventProcessed()
				RecordEventDuplicate()
				RecordScoringLatency(1.5)
				RecordScoreUpdate()
			}, ShouldNotPanic)
		})

		Convey("Ranking metrics should not panic", func() {
			So(func() {
				RecordRankingQuery("overall")
				RecordRankingLatency(2.5)
				RecordRankingError()
				RecordScoringError()
			}, ShouldNotPanic)
		})

		Convey("Gauge updates should not panic", func() {
			So(func() {
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.1)
				UpdateWorkerCount(4)
				UpdateTotalExperts(42)
				UpdateRosterShardCount(8)
				UpdateRosterRecordsTotal(42)
				UpdateRosterRecordsPerShard("0", 6)
			}, ShouldNotPanic)
		})

		Convey("HTTP metrics should not panic", func() {
			So(func() {
				RecordHTTPRequest("leaderboard", "GET", "200")
				RecordHTTPRequestDuration("leaderboard", "GET", "200", 1.2)
			}, ShouldNotPanic)
		})

		Convey("Worker metrics should not panic", func() {
			So(func() {
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.5)
				UpdateWorkerActiveCount(3)
				UpdateWorkerIdleCount(1)
				UpdateWorkerMessagesPerSecond(100)
				RecordWorkerProcessingLatency(0.7)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("Error metrics should not panic", func() {
			So(func() {
				RecordErrorByComponent("worker", "apply")
				RecordErrorByType("apply", "error")
				RecordErrorByEndpoint("events", "POST", "client_error")
				RecordErrorLatency("http", "client_error", 3.1)
			}, ShouldNotPanic)
		})

		Convey("System metrics should not panic", func() {
			So(func() {
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global registry", t, func() {
		So(GetRegistry(), ShouldNotBeNil)

		Convey("It should gather without errors", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
