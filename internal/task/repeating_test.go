package task

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRepeatingTask(t *testing.T) {
	var executions atomic.Int32
	task := NewRepeating(func() {
		executions.Add(1)
	}, 5*time.Millisecond)

	task.Start()
	task.Start()
	if !task.Running() {
		t.Fatal("task not running after Start")
	}
	deadline := time.Now().Add(2 * time.Second)
	for executions.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("task was not executed repeatedly")
		}
		time.Sleep(time.Millisecond)
	}

	task.Stop(false)
	if task.Running() {
		t.Fatal("task still running after Stop")
	}
	stopped := executions.Load()
	time.Sleep(20 * time.Millisecond)
	if executions.Load() != stopped {
		t.Fatal("task was executed after Stop returned")
	}
	task.Stop(true)
	if executions.Load() != stopped {
		t.Fatal("Stop on a stopped task executed it")
	}
}

func TestRepeatingTask_ForceExec(t *testing.T) {
	var executions atomic.Int32
	task := NewRepeating(func() {
		executions.Add(1)
	}, time.Hour)
	task.Start()
	task.Stop(true)
	if executions.Load() != 1 {
		t.Fatalf("task executed %d times, want 1", executions.Load())
	}

	// a stopped task can be started again
	task.Start()
	task.Stop(true)
	if executions.Load() != 2 {
		t.Fatalf("task executed %d times, want 2", executions.Load())
	}
}

func TestRepeatingTask_NonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		var executions atomic.Int32
		task := NewRepeating(func() {
			executions.Add(1)
		}, interval)
		task.Start()
		if task.Running() {
			t.Fatalf("task with interval %s was started", interval)
		}
		task.Stop(true)
		if executions.Load() != 0 {
			t.Fatalf("task with interval %s was executed", interval)
		}
	}
}
