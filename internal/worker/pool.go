package worker

import (
	"context"
	"sync"
)

// Task is a unit of work run by the pool
type Task interface {
	Run(ctx context.Context) Outcome
}

// Outcome is what a task produced
type Outcome interface {
	Err() error
}

// TaskFunc adapts a function to the Task interface
type TaskFunc func(ctx context.Context) Outcome

// Run calls f(ctx)
func (f TaskFunc) Run(ctx context.Context) Outcome {
	return f(ctx)
}

// Pool runs tasks on a fixed number of goroutines
type Pool struct {
	workers   int
	tasks     chan Task
	outcomes  chan Outcome
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewPool creates a pool bound to parent; cancelling parent stops the workers
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:  workers,
		tasks:    make(chan Task, workers*2),
		outcomes: make(chan Outcome, workers*2),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			outcome := task.Run(p.ctx)
			select {
			case p.outcomes <- outcome:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a task. It returns false if the pool was cancelled first.
func (p *Pool) Submit(task Task) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.tasks <- task:
		return true
	}
}

// Outcomes exposes results as they arrive. Use either Outcomes or Wait, not both.
func (p *Pool) Outcomes() <-chan Outcome {
	return p.outcomes
}

// Close stops accepting tasks and closes Outcomes once every worker exits
func (p *Pool) Close() {
	close(p.tasks)
	go func() {
		p.wg.Wait()
		p.closeOutcomes()
	}()
}

// Wait closes the pool and collects every outcome. Tasks submitted before
// Wait must fit the buffers; larger jobs should read Outcomes while submitting.
func (p *Pool) Wait() []Outcome {
	p.Close()

	var outcomes []Outcome
	for outcome := range p.outcomes {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Shutdown cancels in-flight work and waits for the workers to exit
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.closeOutcomes()
}

func (p *Pool) closeOutcomes() {
	p.closeOnce.Do(func() {
		close(p.outcomes)
		p.cancel()
	})
}
