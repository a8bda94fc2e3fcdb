package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	ingest "github.com/jhoekx/ovcup/internal/adapters/ingest"
	queue "github.com/jhoekx/ovcup/internal/adapters/mq/queue"
	worker "github.com/jhoekx/ovcup/internal/adapters/mq/worker"
	logging "github.com/jhoekx/ovcup/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing.
type mockQueue struct {
	jobChan chan queue.Job
}

func newMockQueue() *mockQueue {
	return &mockQueue{jobChan: make(chan queue.Job, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job {
	return mq.jobChan
}

func (mq *mockQueue) addJob(j queue.Job) {
	mq.jobChan <- j
}

type mockIngestor struct {
	mu       sync.Mutex
	ingested []string
	failOn   map[string]error
}

func newMockIngestor() *mockIngestor {
	return &mockIngestor{failOn: make(map[string]error)}
}

func (mi *mockIngestor) Ingest(ctx context.Context, cup string, season int, feed ingest.Feed) (ingest.Summary, error) {
	mi.mu.Lock()
	defer mi.mu.Unlock()

	if err, exists := mi.failOn[feed.Name]; exists {
		return ingest.Summary{}, err
	}
	mi.ingested = append(mi.ingested, feed.Name)
	return ingest.Summary{Stored: 1}, nil
}

func (mi *mockIngestor) names() []string {
	mi.mu.Lock()
	defer mi.mu.Unlock()
	return append([]string(nil), mi.ingested...)
}

func feedJob(name string) queue.Job {
	return queue.Job{
		Cup:    "forest-cup",
		Season: 2026,
		Feed:   ingest.Feed{Name: name, Date: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)},
	}
}

func waitFor(check func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestIngestWorker(t *testing.T) {
	Convey("Given a worker over a mock queue and ingestor", t, func() {
		mq := newMockQueue()
		mi := newMockIngestor()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		w := worker.NewIngestWorker(mq, mi, worker.WithName("test-worker"))
		go w.Run(ctx)

		Convey("When a job arrives", func() {
			mq.addJob(feedJob("Sprint"))

			Convey("Then it is ingested", func() {
				So(waitFor(func() bool { return len(mi.names()) == 1 }), ShouldBeTrue)
				So(mi.names(), ShouldResemble, []string{"Sprint"})
			})
		})

		Convey("When one feed fails to ingest", func() {
			mi.failOn["Broken"] = errors.New("boom")
			mq.addJob(feedJob("Broken"))
			mq.addJob(feedJob("Middle"))

			Convey("Then the worker keeps processing later jobs", func() {
				So(waitFor(func() bool { return len(mi.names()) == 1 }), ShouldBeTrue)
				So(mi.names(), ShouldResemble, []string{"Middle"})
			})
		})

		Convey("When the worker is shut down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			Convey("Then shutdown completes in time", func() {
				So(w.Shutdown(shutdownCtx), ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers on a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		mi := newMockIngestor()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool := worker.NewPool(3, q, mi)
		So(pool.Size(), ShouldEqual, 3)
		pool.Start(ctx)

		Convey("When several jobs are enqueued", func() {
			for _, name := range []string{"one", "two", "three", "four"} {
				So(q.Enqueue(ctx, feedJob(name)), ShouldBeTrue)
			}

			Convey("Then every job is ingested exactly once", func() {
				So(waitFor(func() bool { return len(mi.names()) == 4 }), ShouldBeTrue)
				So(len(mi.names()), ShouldEqual, 4)
			})
		})

		Convey("When the pool is stopped", func() {
			pool.Stop()

			Convey("Then stopping is idempotent for in-flight work", func() {
				So(pool.Size(), ShouldEqual, 3)
			})
		})
	})
}

func TestNewPool_DefaultsWorkerCount(t *testing.T) {
	Convey("Given an invalid worker count", t, func() {
		pool := worker.NewPool(0, newMockQueue(), newMockIngestor())

		Convey("Then the pool falls back to a sane default", func() {
			So(pool.Size(), ShouldBeGreaterThan, 0)
		})
	})
}
