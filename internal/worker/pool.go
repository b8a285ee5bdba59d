// internal/worker/pool.go
package worker

import (
	"sync"
)

// Pool limits the number of concurrently running upload attempts
type Pool struct {
	wg      sync.WaitGroup
	workers chan struct{}
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		workers: make(chan struct{}, size),
	}
}

// Submit submits a task to the worker pool, blocking until a worker is free
func (p *Pool) Submit(task func()) {
	p.workers <- struct{}{} // Acquire a worker
	p.wg.Add(1)

	go func() {
		defer func() {
			p.wg.Done()
			<-p.workers // Release the worker
		}()

		task()
	}()
}

// Wait waits for all submitted tasks to complete
func (p *Pool) Wait() {
	p.wg.Wait()
}
