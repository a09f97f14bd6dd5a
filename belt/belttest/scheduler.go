// Package belttest provides a manually stepped Scheduler for tests.
package belttest

import (
	"sync"
	"time"

	"github.com/matt-g-everett/ledbelt/belt"
)

// Scheduler queues frame requests until Fire is called.
type Scheduler struct {
	queue *belt.FrameQueue

	mu       sync.Mutex
	requests int
	cancels  int
	now      time.Duration
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{queue: belt.NewFrameQueue()}
}

// RequestFrame implements belt.Scheduler.
func (s *Scheduler) RequestFrame(fn belt.FrameFunc) belt.FrameHandle {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()
	return s.queue.RequestFrame(fn)
}

// CancelFrame implements belt.Scheduler.
func (s *Scheduler) CancelFrame(h belt.FrameHandle) {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
	s.queue.CancelFrame(h)
}

// Fire runs the pending frames at timestamp and returns how many ran.
func (s *Scheduler) Fire(timestamp time.Duration) int {
	s.mu.Lock()
	s.now = timestamp
	s.mu.Unlock()
	return s.queue.Flush(timestamp)
}

// Advance fires frames every step until the queue drains or limit frames
// have been fired, starting one step after the last timestamp.
func (s *Scheduler) Advance(step time.Duration, limit int) int {
	fired := 0
	for fired < limit && s.Pending() > 0 {
		s.mu.Lock()
		next := s.now + step
		s.mu.Unlock()
		s.Fire(next)
		fired++
	}
	return fired
}

// Pending returns the number of queued requests.
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

// Requests returns how many frames have been requested.
func (s *Scheduler) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Cancels returns how many cancellations have been requested.
func (s *Scheduler) Cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

// Recorder collects emitted values.
type Recorder struct {
	mu     sync.Mutex
	values []float64
}

// Listen records v.
func (r *Recorder) Listen(v float64) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

// Values returns a copy of the recorded values.
func (r *Recorder) Values() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.values))
	copy(out, r.values)
	return out
}

// Last returns the most recent value and whether there was one.
func (r *Recorder) Last() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0, false
	}
	return r.values[len(r.values)-1], true
}
