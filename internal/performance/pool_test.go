package performance

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()

	var counter atomic.Int64
	const tasks = 100
	for i := 0; i < tasks; i++ {
		if !pool.Submit(func() { counter.Add(1) }) {
			t.Fatalf("Submit returned false for task %d", i)
		}
	}
	pool.Stop()

	if counter.Load() != tasks {
		t.Errorf("ran %d tasks, want %d", counter.Load(), tasks)
	}
	if pool.TasksDone() != tasks {
		t.Errorf("TasksDone = %d, want %d", pool.TasksDone(), tasks)
	}
}

func TestWorkerPoolSingleWorkerIsSequential(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		pool.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	pool.Stop()

	if len(order) != 10 {
		t.Fatalf("ran %d tasks, want 10", len(order))
	}
	for i, got := range order {
		if got != i {
			t.Errorf("task %d ran out of order (position %d)", got, i)
		}
	}
}

func TestWorkerPoolSubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Stop()

	if pool.Submit(func() {}) {
		t.Error("Submit should fail after Stop")
	}
}

func TestWorkerPoolDefaultWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.workers <= 0 {
		t.Errorf("expected positive default worker count, got %d", pool.workers)
	}
}
