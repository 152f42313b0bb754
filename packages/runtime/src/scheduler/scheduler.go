// Package scheduler runs deferred tasks on a virtual clock. The runtime is
// single threaded: tasks only run from Advance or RunAll, in due-time order
// and in scheduling order among tasks due at the same time.
package scheduler

import (
	"container/heap"
	"time"
)

// Task is a deferred call that can be cancelled until it runs.
type Task struct {
	at    time.Duration
	seq   uint64
	fn    func()
	index int
	s     *Scheduler
}

// Cancel prevents the task from running. It reports whether the task was
// still pending.
func (t *Task) Cancel() bool {
	if t == nil || t.index < 0 {
		return false
	}
	heap.Remove(&t.s.queue, t.index)
	return true
}

// Pending reports whether the task is waiting to run.
func (t *Task) Pending() bool {
	return t != nil && t.index >= 0
}

// Due returns the virtual time the task runs at.
func (t *Task) Due() time.Duration {
	return t.at
}

// Scheduler owns the virtual clock and the queue of pending tasks.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	queue taskQueue
}

// New creates a scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// After schedules fn to run once d has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	t := &Task{at: s.now + d, seq: s.seq, fn: fn, s: s}
	s.seq++
	heap.Push(&s.queue, t)
	return t
}

// Advance moves the clock forward by d, running every task that becomes
// due. Tasks scheduled by running tasks run in the same call when they fall
// inside the window. It returns the number of tasks run.
func (s *Scheduler) Advance(d time.Duration) int {
	end := s.now + d
	n := 0
	for len(s.queue) > 0 && s.queue[0].at <= end {
		t := heap.Pop(&s.queue).(*Task)
		if t.at > s.now {
			s.now = t.at
		}
		t.fn()
		n++
	}
	s.now = end
	return n
}

// RunAll runs tasks until the queue is empty and returns how many ran.
func (s *Scheduler) RunAll() int {
	n := 0
	for len(s.queue) > 0 {
		n += s.Advance(s.queue[0].at - s.now)
	}
	return n
}

type taskQueue []*Task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	t := x.(*Task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
