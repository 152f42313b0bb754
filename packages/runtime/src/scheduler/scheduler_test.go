package scheduler_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"wick-go/packages/runtime/src/scheduler"
)

func TestScheduler(t *testing.T) {
	t.Run("should run tasks in due order", func(t *testing.T) {
		s := scheduler.New()
		var order []string
		s.After(20*time.Millisecond, func() { order = append(order, "c") })
		s.After(10*time.Millisecond, func() { order = append(order, "a") })
		s.After(10*time.Millisecond, func() { order = append(order, "b") })

		if n := s.Advance(15 * time.Millisecond); n != 2 {
			t.Errorf("Expected 2 tasks, got %d", n)
		}
		if s.Now() != 15*time.Millisecond {
			t.Errorf("Expected 15ms, got %v", s.Now())
		}
		s.RunAll()
		if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
			t.Errorf("Order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should not run cancelled tasks", func(t *testing.T) {
		s := scheduler.New()
		ran := false
		task := s.After(time.Millisecond, func() { ran = true })
		if !task.Pending() {
			t.Error("Expected a pending task")
		}
		if !task.Cancel() {
			t.Error("Expected cancel to report a pending task")
		}
		if task.Cancel() {
			t.Error("Expected a second cancel to report nothing")
		}
		s.RunAll()
		if ran {
			t.Error("Expected the task not to run")
		}
	})

	t.Run("should run tasks scheduled by tasks", func(t *testing.T) {
		s := scheduler.New()
		count := 0
		s.After(0, func() {
			count++
			s.After(0, func() { count++ })
		})
		if n := s.Advance(0); n != 2 || count != 2 {
			t.Errorf("Expected 2 tasks, got %d", n)
		}
	})

	t.Run("should report completed tasks as not pending", func(t *testing.T) {
		s := scheduler.New()
		task := s.After(0, func() {})
		s.RunAll()
		if task.Pending() || task.Cancel() {
			t.Error("Expected a completed task")
		}
		if s.Len() != 0 {
			t.Errorf("Expected an empty queue, got %d", s.Len())
		}
	})
}
