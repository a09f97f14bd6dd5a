package belt

import (
	"context"
	"sync"
	"time"
)

// FrameFunc is invoked once with the scheduler's current timestamp.
type FrameFunc func(timestamp time.Duration)

// FrameHandle identifies a pending frame request. Zero means none.
type FrameHandle uint64

// Scheduler requests a callback on the next display refresh. Implementations
// must invoke callbacks asynchronously, never from inside RequestFrame, with
// non-decreasing timestamps.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameHandle
	CancelFrame(h FrameHandle)
}

type pendingFrame struct {
	handle FrameHandle
	fn     FrameFunc
}

// FrameQueue holds pending frame requests in request order. Flush hands the
// current batch to the caller; frames requested during a flush wait for the
// next one.
type FrameQueue struct {
	mu      sync.Mutex
	last    FrameHandle
	pending []pendingFrame
}

// NewFrameQueue creates an empty FrameQueue.
func NewFrameQueue() *FrameQueue {
	return new(FrameQueue)
}

// RequestFrame queues fn for the next flush.
func (q *FrameQueue) RequestFrame(fn FrameFunc) FrameHandle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.last++
	q.pending = append(q.pending, pendingFrame{handle: q.last, fn: fn})
	return q.last
}

// CancelFrame drops a pending request. Unknown handles are ignored.
func (q *FrameQueue) CancelFrame(h FrameHandle) {
	if h == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, p := range q.pending {
		if p.handle == h {
			q.pending = append(q.pending[:i:i], q.pending[i+1:]...)
			return
		}
	}
}

// Len returns the number of pending requests.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush invokes every pending request with timestamp and returns how many ran.
func (q *FrameQueue) Flush(timestamp time.Duration) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, p := range batch {
		p.fn(timestamp)
	}
	return len(batch)
}

// Clock provides the current time to a FrameTicker.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// FrameTicker is a Scheduler that flushes its queue at a fixed frame rate.
// Timestamps are measured from the moment the ticker was created.
type FrameTicker struct {
	*FrameQueue
	interval time.Duration
	clock    Clock
	epoch    time.Time
}

// NewFrameTicker creates a FrameTicker running at frameRate frames per second.
func NewFrameTicker(frameRate float64, clock Clock) *FrameTicker {
	if clock == nil {
		clock = SystemClock
	}
	if frameRate <= 0 {
		frameRate = 30
	}
	t := new(FrameTicker)
	t.FrameQueue = NewFrameQueue()
	t.interval = time.Duration(float64(time.Second) / frameRate)
	t.clock = clock
	t.epoch = clock.Now()
	return t
}

// Interval returns the time between frames.
func (t *FrameTicker) Interval() time.Duration {
	return t.interval
}

// Tick flushes pending requests with the current timestamp.
func (t *FrameTicker) Tick() int {
	return t.Flush(t.clock.Now().Sub(t.epoch))
}

// Run ticks until ctx is done.
func (t *FrameTicker) Run(ctx context.Context) error {
	frameTimer := time.NewTicker(t.interval)
	defer frameTimer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-frameTimer.C:
			t.Tick()
		}
	}
}
