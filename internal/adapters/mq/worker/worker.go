// Package worker drains queued result feeds into the store.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
	"github.com/jhoekx/ovcup/internal/adapters/mq/queue"
	"github.com/jhoekx/ovcup/pkg/logger"
	"github.com/jhoekx/ovcup/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = queue.Job

// Ingestor stores a submitted feed.
type Ingestor interface {
	Ingest(ctx context.Context, cup string, season int, feed ingest.Feed) (ingest.Summary, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes queued feeds until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// IngestWorker implements Worker over an Ingestor.
type IngestWorker struct {
	queue    Queue
	ingestor Ingestor
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewIngestWorker creates a new worker with configuration options.
func NewIngestWorker(queue Queue, ingestor Ingestor, opts ...Option) *IngestWorker {
	w := &IngestWorker{
		queue:    queue,
		ingestor: ingestor,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *IngestWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error ingesting feed", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *IngestWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob ingests a single queued feed.
func (w *IngestWorker) processJob(ctx context.Context, job Job) error {
	start := time.Now()
	summary, err := w.ingestor.Ingest(ctx, job.Cup, job.Season, job.Feed)
	metrics.RecordIngestLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordIngestError()
		w.logger.Error(ctx, "feed ingestion failed",
			logger.String("feed", job.Feed.Key()),
			logger.Error(err),
		)
		return fmt.Errorf("ingest feed %s: %w", job.Feed.Key(), err)
	}

	w.logger.Debug(ctx, "feed processed",
		logger.String("feed", job.Feed.Key()),
		logger.Int("stored", summary.Stored),
		logger.Int("skipped", summary.Skipped),
	)
	return nil
}

// Pool manages multiple workers draining the same queue.
type Pool struct {
	workers  []*IngestWorker
	queue    Queue
	ingestor Ingestor

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, ingestor Ingestor) *Pool {
	if workerCount < 1 {
		workerCount = min(runtime.NumCPU(), defaultWorkerCount)
	}

	pool := &Pool{
		workers:  make([]*IngestWorker, workerCount),
		queue:    queue,
		ingestor: ingestor,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewIngestWorker(
			queue,
			ingestor,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop gracefully stops all workers, waiting for in-flight jobs.
func (p *Pool) Stop() {
	close(p.shutdown)

	for _, worker := range p.workers {
		close(worker.shutdown)
	}
	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
			p.logger.Warn(context.Background(), "worker stop timed out",
				logger.String("worker", worker.name))
		}
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}
