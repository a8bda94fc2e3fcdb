package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jhoekx/ovcup/internal/adapters/ingest"
)

func job(name string) Job {
	return Job{
		Cup:    "forest-cup",
		Season: 2026,
		Feed:   ingest.Feed{Name: name, Date: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, job("Sprint")) {
		t.Error("expected enqueue to succeed")
	}

	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	jobChan := q.Dequeue(ctx)
	got := <-jobChan
	if got.Feed.Name != "Sprint" {
		t.Errorf("expected Sprint, got %v", got.Feed.Name)
	}

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("one")) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, job("two")) {
		t.Error("expected enqueue to succeed")
	}

	// Enqueue when full signals backpressure.
	if q.Enqueue(ctx, job("three")) {
		t.Error("expected enqueue to fail when full")
	}

	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()
	numGoroutines := 10
	numJobs := 50

	done := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < numJobs; j++ {
				for !q.Enqueue(ctx, job(fmt.Sprintf("feed%d_%d", id, j))) {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}(i)
	}

	consumed := make(chan string, numGoroutines*numJobs)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := range q.Dequeue(ctx) {
				consumed <- j.Feed.Name
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	time.Sleep(100 * time.Millisecond)

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, job("pending")) {
		t.Error("expected enqueue to succeed")
	}

	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}

	// Closing twice is a no-op.
	if err := q.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}

	// Enqueue after close fails.
	if q.Enqueue(ctx, job("late")) {
		t.Error("expected enqueue to fail after close")
	}

	// Pending jobs drain before the channel closes.
	jobChan := q.Dequeue(ctx)
	got, ok := <-jobChan
	if !ok || got.Feed.Name != "pending" {
		t.Errorf("expected pending job, got %v (ok=%v)", got.Feed.Name, ok)
	}
	if _, ok := <-jobChan; ok {
		t.Error("expected channel to close after drain")
	}
}
