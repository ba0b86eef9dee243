// Package parallel fans batch work out to a fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Pool runs submitted tasks on a fixed number of workers. A pool
// started with one worker runs every task inline on the caller, so
// small batches pay no goroutine tax. Submitting after Wait panics.
type Pool struct {
	wg    sync.WaitGroup
	tasks chan func()
	stop  func()
}

// Start spins up n workers; n < 1 means one per CPU.
func Start(n int) *Pool {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &Pool{stop: func() {}}
	if n == 1 {
		return p
	}

	p.tasks = make(chan func(), n)
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for f := range p.tasks {
				f()
			}
		}()
	}
	p.stop = sync.OnceFunc(func() { close(p.tasks) })

	return p
}

// Submit hands f to a worker, or runs it inline on a serial pool.
func (p *Pool) Submit(f func()) {
	if p.tasks == nil {
		f()
		return
	}
	p.tasks <- f
}

// Wait stops intake and blocks until the queue is empty and every
// worker has returned. Safe to call more than once.
func (p *Pool) Wait() {
	p.stop()
	p.wg.Wait()
}
