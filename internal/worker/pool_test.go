package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	counter *atomic.Int64
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	return &countResult{}
}

func TestPool_RunsAllJobs(t *testing.T) {
	var counter atomic.Int64

	pool := NewPool(4)
	pool.Start()

	const n = 50
	for i := 0; i < n; i++ {
		pool.Submit(&countJob{counter: &counter})
	}

	results := pool.Wait()
	if len(results) != n {
		t.Errorf("Expected %d results, got %d", n, len(results))
	}
	if counter.Load() != n {
		t.Errorf("Expected %d executions, got %d", n, counter.Load())
	}
}

func TestPool_SubmitBeyondBuffersCompletes(t *testing.T) {
	var counter atomic.Int64

	// One worker, ten queued jobs: well past the channel buffers. All jobs
	// are submitted before Wait is called, matching how the batch runner
	// drives the pool.
	pool := NewPool(1)
	pool.Start()

	const n = 10
	done := make(chan []Result, 1)
	go func() {
		for i := 0; i < n; i++ {
			pool.Submit(&countJob{counter: &counter})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != n {
			t.Errorf("Expected %d results, got %d", n, len(results))
		}
		if counter.Load() != n {
			t.Errorf("Expected %d executions, got %d", n, counter.Load())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Submit/Wait blocked with jobs outnumbering the channel buffers")
	}
}

func TestPool_ZeroWorkersClampedToOne(t *testing.T) {
	var counter atomic.Int64

	pool := NewPool(0)
	pool.Start()
	pool.Submit(&countJob{counter: &counter})

	if results := pool.Wait(); len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

type slowJob struct {
	started chan struct{}
}

func (j *slowJob) Execute(ctx context.Context) Result {
	close(j.started)
	select {
	case <-ctx.Done():
		return &countResult{err: ctx.Err()}
	case <-time.After(5 * time.Second):
		return &countResult{}
	}
}

func TestPool_ShutdownCancelsWork(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	job := &slowJob{started: make(chan struct{})}
	pool.Submit(job)
	<-job.started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not cancel the running job")
	}
}
