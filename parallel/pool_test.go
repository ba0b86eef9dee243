package parallel

import (
	"sync/atomic"
	"testing"
)

func TestSerialRunsInline(t *testing.T) {
	p := Start(1)
	ran := false
	p.Submit(func() { ran = true })
	if !ran {
		t.Fatal("serial pool deferred the task")
	}
	p.Wait()
}

func TestRunsEverything(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		p := Start(workers)
		var n atomic.Int64
		for i := 0; i < 100; i++ {
			p.Submit(func() { n.Add(1) })
		}
		p.Wait()
		if got := n.Load(); got != 100 {
			t.Fatalf("workers=%d: ran %d of 100 tasks", workers, got)
		}
	}
}

func TestTasksOverlap(t *testing.T) {
	p := Start(2)
	gate := make(chan struct{})
	p.Submit(func() { gate <- struct{}{} })
	p.Submit(func() { <-gate })
	p.Wait()
}

func TestWaitTwice(t *testing.T) {
	p := Start(4)
	p.Submit(func() {})
	p.Wait()
	p.Wait()
}

func TestDefaultWorkerCount(t *testing.T) {
	p := Start(0)
	var n atomic.Int64
	p.Submit(func() { n.Add(1) })
	p.Wait()
	if n.Load() != 1 {
		t.Fatal("task did not run")
	}
}
