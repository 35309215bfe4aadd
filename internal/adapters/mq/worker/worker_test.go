package worker_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/hitsim/hitsim/internal/adapters/mq/queue"
	"github.com/hitsim/hitsim/internal/adapters/mq/worker"
	"github.com/hitsim/hitsim/internal/domain/judgement"
	"github.com/hitsim/hitsim/internal/domain/model"
	"github.com/hitsim/hitsim/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// stubSimulator returns a fixed distribution, or an error for a marked job.
type stubSimulator struct {
	failJob string
}

func (s *stubSimulator) Simulate(_ context.Context, p worker.Play) (model.Result, error) {
	if p.JobID == s.failJob {
		return model.Result{}, errors.New("boom")
	}
	return model.Result{
		JobID:        p.JobID,
		Distribution: judgement.Distribution{Perfect: p.Objects - p.Misses, Miss: p.Misses},
		Accuracy:     1,
		ComputedAt:   time.Now(),
	}, nil
}

// memorySink collects results under a lock.
type memorySink struct {
	mu      sync.Mutex
	results map[string]model.Result
}

func newMemorySink() *memorySink {
	return &memorySink{results: make(map[string]model.Result)}
}

func (s *memorySink) Put(_ context.Context, r model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.JobID] = r
	return nil
}

func (s *memorySink) get(jobID string) (model.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[jobID]
	return r, ok
}

func (s *memorySink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestWorkerProcessesPlays(t *testing.T) {
	Convey("Given a worker attached to a queue and sink", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		sink := newMemorySink()
		w := worker.NewInMemoryWorker(q, &stubSimulator{}, sink, worker.WithName("worker-test"))
		go w.Run(ctx)

		Convey("When a play is enqueued", func() {
			So(q.Enqueue(ctx, model.Play{JobID: "j1", Objects: 10, Misses: 1}), ShouldBeTrue)

			Convey("Then its result should reach the sink", func() {
				So(waitFor(func() bool { _, ok := sink.get("j1"); return ok }), ShouldBeTrue)

				r, _ := sink.get("j1")
				So(r.Distribution.Perfect, ShouldEqual, 9)
				So(r.Distribution.Miss, ShouldEqual, 1)
			})
		})

		Convey("When the simulator fails for a play", func() {
			sim := &stubSimulator{failJob: "bad"}
			q2 := queue.NewInMemoryQueue(queue.WithCapacity(16))
			w2 := worker.NewInMemoryWorker(q2, sim, sink, worker.WithName("worker-fail"))
			go w2.Run(ctx)

			So(q2.Enqueue(ctx, model.Play{JobID: "bad"}), ShouldBeTrue)
			So(q2.Enqueue(ctx, model.Play{JobID: "ok"}), ShouldBeTrue)

			Convey("Then the failure should not stop later plays", func() {
				So(waitFor(func() bool { _, ok := sink.get("ok"); return ok }), ShouldBeTrue)
				_, badStored := sink.get("bad")
				So(badStored, ShouldBeFalse)
			})
		})

		Convey("When the worker is shut down", func() {
			err := w.Shutdown(ctx)

			Convey("Then it should stop cleanly", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(256))
		sink := newMemorySink()
		pool := worker.NewPool(4, q, &stubSimulator{}, sink)
		pool.Start(ctx)

		Convey("Then the pool should carry the requested size", func() {
			So(pool.Size(), ShouldEqual, 4)
		})

		Convey("When many plays are enqueued", func() {
			const plays = 100
			for i := 0; i < plays; i++ {
				So(q.Enqueue(ctx, model.Play{JobID: jobID(i), Objects: i + 1}), ShouldBeTrue)
			}

			Convey("Then all results should be stored", func() {
				So(waitFor(func() bool { return sink.len() == plays }), ShouldBeTrue)
			})
		})

		Convey("When the pool is shut down", func() {
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then the queue should be closed", func() {
				So(q.IsClosed(), ShouldBeTrue)
			})
		})
	})
}

func jobID(i int) string {
	return "job-" + strconv.Itoa(i)
}
