package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mockOutcome struct {
	err error
}

func (o *mockOutcome) Err() error {
	return o.err
}

type mockTask struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32
}

func (j *mockTask) Run(ctx context.Context) Outcome {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockOutcome{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockOutcome{err: errors.New("task error")}
	}
	return &mockOutcome{}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(context.Background(), 5)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(context.Background(), 0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	p3 := NewPool(context.Background(), -1)
	if p3.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p3.workers)
	}
}

func TestPool_Execution(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	count := 10

	for i := 0; i < count; i++ {
		pool.Submit(&mockTask{executed: &executed})
	}

	outcomes := pool.Wait()

	if len(outcomes) != count {
		t.Errorf("expected %d outcomes, got %d", count, len(outcomes))
	}
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed tasks, got %d", count, executed)
	}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var current, maxConcurrent, completed int32
	var mu sync.Mutex

	total := 50
	for i := 0; i < total; i++ {
		pool.Submit(TaskFunc(func(ctx context.Context) Outcome {
			curr := atomic.AddInt32(&current, 1)
			mu.Lock()
			if curr > maxConcurrent {
				maxConcurrent = curr
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			atomic.AddInt32(&current, -1)
			atomic.AddInt32(&completed, 1)
			return &mockOutcome{}
		}))
	}

	pool.Wait()

	if atomic.LoadInt32(&completed) != int32(total) {
		t.Errorf("expected %d completed tasks, got %d", total, completed)
	}

	mu.Lock()
	peak := maxConcurrent
	mu.Unlock()

	if peak > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", peak, workers)
	}
}

func TestPool_ErrorHandling(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	pool.Submit(&mockTask{shouldErr: true})
	pool.Submit(&mockTask{shouldErr: false})

	outcomes := pool.Wait()
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}

	failures := 0
	for _, o := range outcomes {
		if o.Err() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 error, got %d", failures)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() {
		done <- pool.Submit(&mockTask{})
	}()

	select {
	case accepted := <-done:
		if accepted {
			t.Error("expected Submit to report rejection after shutdown")
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(TaskFunc(func(ctx context.Context) Outcome {
		close(started)
		<-ctx.Done()
		return &mockOutcome{err: ctx.Err()}
	}))
	<-started
	cancel()

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Wait did not return after parent cancel")
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(TaskFunc(func(ctx context.Context) Outcome {
		close(started)
		time.Sleep(200 * time.Millisecond)
		return &mockOutcome{}
	}))

	<-started
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		for range pool.Outcomes() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Shutdown timed out")
	}
}
