package worker

import (
	"context"
	"sync"
)

// Op is a single independent mutation, such as adding one label to a card
type Op struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result is the outcome of one Op
type Result struct {
	Index int
	Name  string
	Err   error
}

type job struct {
	index int
	op    Op
}

// Pool runs ops on a fixed number of workers
type Pool struct {
	workers    int
	jobQueue   chan job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a pool with the given number of workers (at least one)
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan job, workers*2),
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j, ok := <-p.jobQueue:
			if !ok {
				return
			}
			res := Result{Index: j.index, Name: j.op.Name, Err: j.op.Run(p.ctx)}
			select {
			case p.results <- res:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues an op. It returns false when the pool has been shut down.
func (p *Pool) Submit(index int, op Op) bool {
	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- job{index: index, op: op}:
		return true
	}
}

// Close stops accepting ops; workers exit once the queue drains
func (p *Pool) Close() {
	close(p.jobQueue)
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()
}

// Results streams results until every worker has exited
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Shutdown cancels in-flight work and waits for the workers
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
