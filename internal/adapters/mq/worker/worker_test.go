package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/edulytics/screener/internal/adapters/mq/queue"
	"github.com/edulytics/screener/internal/adapters/mq/worker"
	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type stubLabeler struct {
	err error
}

func (l *stubLabeler) LabelSession(ctx context.Context, s worker.Session) (worker.Session, error) {
	if l.err != nil {
		return s, l.err
	}
	for i := range s.Scores {
		s.Scores[i].Risk = model.RiskBenchmark
	}
	return s, nil
}

type captureWriter struct {
	mu       sync.Mutex
	sessions []worker.Session
	err      error
}

func (w *captureWriter) AddSession(ctx context.Context, s worker.Session) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sessions = append(w.sessions, s)
	return nil
}

func (w *captureWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.sessions)
}

func submitted(id string) worker.Session {
	return worker.Session{
		SessionID: id,
		StudentID: "stu-1",
		Subtest:   "NLM_READING",
		Scores: []model.Observation{
			{Subtest: "NLM_READING", Target: "DECODING_FLUENCY", RawScore: model.Float64(82)},
		},
	}
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

func TestWorkerProcessing(t *testing.T) {
	Convey("Given a worker over a live queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100), queue.WithBufferSize(100))
		writer := &captureWriter{}
		w := worker.NewInMemoryWorker(q, &stubLabeler{}, writer, worker.WithName("test-worker"))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When a session is enqueued", func() {
			So(q.Enqueue(ctx, submitted("s1")), ShouldBeTrue)

			Convey("Then it is labeled and stored", func() {
				So(waitFor(func() bool { return writer.count() == 1 }), ShouldBeTrue)
				writer.mu.Lock()
				stored := writer.sessions[0]
				writer.mu.Unlock()
				So(stored.SessionID, ShouldEqual, "s1")
				So(stored.Scores[0].Risk, ShouldEqual, model.RiskBenchmark)
			})
		})

		Convey("When the worker is shut down", func() {
			err := w.Shutdown(ctx)
			So(err, ShouldBeNil)
		})
	})
}

func TestWorkerErrors(t *testing.T) {
	Convey("Given a labeler that fails", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithBufferSize(10))
		writer := &captureWriter{}
		w := worker.NewInMemoryWorker(q, &stubLabeler{err: errors.New("boom")}, writer)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("When a session is enqueued", func() {
			So(q.Enqueue(ctx, submitted("s1")), ShouldBeTrue)

			Convey("Then nothing reaches the store and the worker survives", func() {
				So(q.Enqueue(ctx, submitted("s2")), ShouldBeTrue)
				So(waitFor(func() bool { return q.Len(ctx) == 0 }), ShouldBeTrue)
				So(writer.count(), ShouldEqual, 0)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(1000), queue.WithBufferSize(1000))
		writer := &captureWriter{}
		p := worker.NewPool(4, q, &stubLabeler{}, writer)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		Convey("Then the pool reports its size", func() {
			So(p.Size(), ShouldEqual, 4)
		})

		Convey("When many sessions are enqueued", func() {
			const n = 50
			for i := 0; i < n; i++ {
				So(q.Enqueue(ctx, submitted(fmt.Sprintf("s%d", i))), ShouldBeTrue)
			}

			Convey("Then every session is processed exactly once", func() {
				So(waitFor(func() bool { return writer.count() == n }), ShouldBeTrue)
			})
		})

		Convey("When the pool is stopped without draining", func() {
			start := time.Now()
			p.Stop()

			Convey("Then workers exit promptly and the queue stays open", func() {
				So(time.Since(start), ShouldBeLessThan, time.Second)
				So(q.IsClosed(), ShouldBeFalse)

				So(q.Enqueue(ctx, submitted("parked")), ShouldBeTrue)
				time.Sleep(50 * time.Millisecond)
				So(writer.count(), ShouldEqual, 0)
			})
		})

		Convey("When the pool shuts down", func() {
			So(q.Enqueue(ctx, submitted("tail")), ShouldBeTrue)
			err := p.Shutdown(ctx)

			Convey("Then the queue is drained first", func() {
				So(err, ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
				So(waitFor(func() bool { return writer.count() == 1 }), ShouldBeTrue)
			})
		})
	})
}
