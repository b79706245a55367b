// Package sched provides a virtual-time task scheduler for frame-driven
// simulations.
//
// Three kinds of task are supported, mirroring what a browser offers a game
// loop:
//
//   - [Scheduler.RequestFrame]: one-shot, fires on the next [Scheduler.Frame] pulse
//   - [Scheduler.After]: one-shot, fires once virtual time reaches its deadline
//   - [Scheduler.Every]: periodic, fires at every multiple of its period
//
// Time only moves when the host calls [Scheduler.Advance]. Callbacks run to
// completion on the caller's goroutine and may arm or stop other timers.
//
// # Thread Safety
//
// A Scheduler is NOT safe for concurrent use. Hosts that receive input on other
// goroutines must funnel it onto the goroutine that calls Advance.
package sched

import (
	"container/heap"
	"time"
)

// Func is a task callback. now is the virtual time at which it fires.
type Func func(now time.Duration)

// Timer is a handle to a scheduled task.
type Timer struct {
	s      *Scheduler
	fn     Func
	due    time.Duration
	period time.Duration
	seq    uint64
	index  int
	frame  bool
	active bool
}

// Stop cancels the timer. It reports whether the timer was still pending and
// is safe to call on a nil or already stopped timer.
func (t *Timer) Stop() bool {
	if t == nil || !t.active {
		return false
	}
	t.active = false
	if !t.frame && t.index >= 0 {
		heap.Remove(&t.s.queue, t.index)
	}
	return true
}

// Active reports whether the timer will still fire.
func (t *Timer) Active() bool {
	return t != nil && t.active
}

type Scheduler struct {
	now    time.Duration
	seq    uint64
	queue  timerHeap
	frames []*Timer
}

func New() *Scheduler {
	return &Scheduler{}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration { return s.now }

// After arms a one-shot timer firing d from now.
func (s *Scheduler) After(d time.Duration, fn Func) *Timer {
	if d < 0 {
		d = 0
	}
	return s.push(s.now+d, 0, fn)
}

// Every arms a periodic timer firing every d, first at now+d. Non-positive
// periods are raised to one nanosecond.
func (s *Scheduler) Every(d time.Duration, fn Func) *Timer {
	if d <= 0 {
		d = time.Nanosecond
	}
	return s.push(s.now+d, d, fn)
}

// RequestFrame arms fn for the next Frame pulse.
func (s *Scheduler) RequestFrame(fn Func) *Timer {
	s.seq++
	t := &Timer{s: s, fn: fn, seq: s.seq, index: -1, frame: true, active: true}
	s.frames = append(s.frames, t)
	return t
}

// Frame runs every frame callback requested before the call. Frames requested
// from inside a callback wait for the next pulse.
func (s *Scheduler) Frame() int {
	pending := s.frames
	s.frames = nil
	fired := 0
	for _, t := range pending {
		if !t.active {
			continue
		}
		t.active = false
		t.fn(s.now)
		fired++
	}
	return fired
}

// Advance moves virtual time forward by d, firing due timers in deadline
// order. Timers with equal deadlines fire in the order they were armed.
func (s *Scheduler) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := s.now + d
	fired := 0
	for len(s.queue) > 0 {
		t := s.queue[0]
		if t.due > target {
			break
		}
		heap.Pop(&s.queue)
		s.now = t.due
		if t.period > 0 {
			t.due += t.period
			heap.Push(&s.queue, t)
		} else {
			t.active = false
		}
		t.fn(s.now)
		fired++
	}
	s.now = target
	return fired
}

// Pending returns the number of armed timers, frame requests included.
func (s *Scheduler) Pending() int {
	n := len(s.queue)
	for _, t := range s.frames {
		if t.active {
			n++
		}
	}
	return n
}

func (s *Scheduler) push(due, period time.Duration, fn Func) *Timer {
	s.seq++
	t := &Timer{s: s, fn: fn, due: due, period: period, seq: s.seq, index: -1, active: true}
	heap.Push(&s.queue, t)
	return t
}

type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
