package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/consultly/expertrank/internal/adapters/mq/queue"
	worker "github.com/consultly/expertrank/internal/adapters/mq/worker"
	"github.com/consultly/expertrank/internal/domain/model"
	"github.com/consultly/expertrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeUpdater records applied events and stored scores.
type fakeUpdater struct {
	mu       sync.Mutex
	applied  []model.StatEvent
	scores   map[string]float64
	applyErr error
}

func newFakeUpdater() *fakeUpdater {
	return &fakeUpdater{scores: make(map[string]float64)}
}

func (u *fakeUpdater) Apply(_ context.Context, ev model.StatEvent) (model.ExpertStats, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.applyErr != nil {
		return model.ExpertStats{}, u.applyErr
	}
	u.applied = append(u.applied, ev)
	return model.ExpertStats{TotalSessions: len(u.applied)}, nil
}

func (u *fakeUpdater) SetScore(_ context.Context, expertID string, score float64) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.scores[expertID] = score
	return nil
}

func (u *fakeUpdater) scoreFor(expertID string) (float64, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.scores[expertID]
	return s, ok
}

func (u *fakeUpdater) appliedCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.applied)
}

// fakeScorer multiplies the session count for easy assertions.
type fakeScorer struct{}

func (fakeScorer) Score(_ context.Context, stats model.ExpertStats) (float64, error) {
	return float64(stats.TotalSessions) * 10, nil
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestWorkerProcessesEvents(t *testing.T) {
	Convey("Given a running worker over a queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		updater := newFakeUpdater()
		w := worker.NewInMemoryWorker(q, fakeScorer{}, updater, worker.WithName("test-worker"))
		go w.Run(ctx)

		Convey("When an event is enqueued", func() {
			ev := model.StatEvent{EventID: "ev-1", ExpertID: "exp-1", Kind: model.KindSessionCompleted}
			So(q.Enqueue(ctx, ev), ShouldBeTrue)

			Convey("Then the event is applied and the score stored", func() {
				So(waitFor(func() bool {
					_, ok := updater.scoreFor("exp-1")
					return ok
				}), ShouldBeTrue)

				score, _ := updater.scoreFor("exp-1")
				So(score, ShouldEqual, 10)
				So(updater.appliedCount(), ShouldEqual, 1)
			})
		})

		Convey("When the worker is shut down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			So(w.Shutdown(shutdownCtx), ShouldBeNil)
		})
	})
}

func TestWorkerApplyFailure(t *testing.T) {
	Convey("Given a worker whose updater rejects events", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		updater := newFakeUpdater()
		updater.applyErr = errors.New("boom")
		w := worker.NewInMemoryWorker(q, fakeScorer{}, updater)
		go w.Run(ctx)

		Convey("When an event is enqueued", func() {
			So(q.Enqueue(ctx, model.StatEvent{EventID: "ev-1", ExpertID: "exp-1"}), ShouldBeTrue)

			Convey("Then no score is stored and the worker keeps running", func() {
				So(waitFor(func() bool { return q.Len(ctx) == 0 }), ShouldBeTrue)
				time.Sleep(20 * time.Millisecond)
				_, ok := updater.scoreFor("exp-1")
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		updater := newFakeUpdater()
		pool := worker.NewPool(4, q, fakeScorer{}, updater)
		pool.Start(ctx)

		Convey("When many events are enqueued", func() {
			for i := 0; i < 20; i++ {
				ev := model.StatEvent{EventID: "ev", ExpertID: "exp-1", Kind: model.KindSessionCompleted}
				So(q.Enqueue(ctx, ev), ShouldBeTrue)
			}

			Convey("Then all of them get processed", func() {
				So(waitFor(func() bool { return updater.appliedCount() == 20 }), ShouldBeTrue)
			})

			Convey("Then the pool counts them toward its throughput gauge", func() {
				So(waitFor(func() bool { return pool.Processed() == 20 }), ShouldBeTrue)
			})
		})

		Convey("When the pool shuts down", func() {
			So(pool.Shutdown(ctx), ShouldBeNil)
		})
	})
}
