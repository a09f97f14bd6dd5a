// Package belt converts elapsed frame time into an eased, optionally
// reversed or reflected progress value and publishes it once per frame.
//
// A Belt is either idle or running:
//
//	        Run()
//	Idle ───────────► Running ──┐ pass complete with Loop,
//	 ▲                   │  ▲   │ or Round on the outbound pass
//	 │  pass complete    │  └───┘
//	 └───────────────────┘
//
// While running, every frame emits EventUpdate with the blended progress.
package belt

import (
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventUpdate is emitted with the blended progress on every frame.
const EventUpdate = "update"

// Belt drives one animation from a Scheduler.
type Belt struct {
	mu        sync.Mutex
	scheduler Scheduler
	emitter   *Emitter

	options Options
	blend   BlendFunc

	turn      bool
	timestamp time.Duration
	startTime time.Duration
	pastTime  time.Duration
	// anchored is false until the first frame of a run fixes startTime.
	anchored bool
	running  bool
	handle   FrameHandle
	// generation invalidates frame chains superseded by a restart.
	generation uint64
}

// New creates an idle Belt that requests frames from scheduler.
func New(scheduler Scheduler, options Options) *Belt {
	b := new(Belt)
	b.scheduler = scheduler
	b.emitter = NewEmitter()
	b.options = options.withDefaults()
	b.blend = MakeBlend(b.options.Easing, b.options.Reverse)
	return b
}

// Run starts the animation from the beginning of a pass. A pending frame
// from an earlier run is cancelled first, and a frame of the earlier run
// that is already computing drops its value unless it is past the final
// generation check in emit.
func (b *Belt) Run() *Belt {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handle != 0 {
		b.scheduler.CancelFrame(b.handle)
		log.Debug().Str("context", "belt").Msg("restart")
	}
	b.generation++
	b.pastTime = 0
	b.startTime = 0
	b.anchored = false
	b.running = true
	b.handle = b.scheduler.RequestFrame(b.stepper(b.generation))
	log.Debug().Str("context", "belt").Dur("duration", b.options.Duration).Msg("run")
	return b
}

func (b *Belt) stepper(generation uint64) FrameFunc {
	return func(timestamp time.Duration) {
		b.step(generation, timestamp)
	}
}

func (b *Belt) step(generation uint64, timestamp time.Duration) {
	value, ok := b.advance(generation, timestamp)
	if ok {
		b.emit(generation, value)
	}
}

// advance moves the clock to timestamp and returns the value to emit, or
// false when the frame belongs to a superseded run.
func (b *Belt) advance(generation uint64, timestamp time.Duration) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if generation != b.generation || !b.running {
		return 0, false
	}
	b.handle = 0

	if !b.anchored {
		b.startTime = timestamp - b.pastTime
		b.anchored = true
	}
	b.timestamp = timestamp
	b.pastTime = timestamp - b.startTime

	var value float64
	switch {
	case b.options.Duration <= 0:
		value = b.blend(1, b.turn)
		b.finish()
	case b.pastTime >= b.options.Duration:
		value = b.blend(1, b.turn)
		if b.options.Loop || (b.options.Round && !b.turn) {
			b.startTime = timestamp
			b.pastTime = 0
			if b.options.Round {
				b.turn = !b.turn
			}
		} else {
			b.finish()
		}
	default:
		progress := float64(b.pastTime) / float64(b.options.Duration)
		value = b.blend(progress, b.turn)
	}

	if b.running {
		b.handle = b.scheduler.RequestFrame(b.stepper(generation))
	}
	return value, true
}

// emit delivers value unless a Run has started a new generation since it was
// computed. Listeners run without b.mu held so they may call back in; a Run
// that lands after this check can still see one value from the old run.
func (b *Belt) emit(generation uint64, value float64) {
	b.mu.Lock()
	stale := generation != b.generation
	b.mu.Unlock()
	if stale {
		return
	}
	b.emitter.Emit(EventUpdate, value)
}

// finish moves to idle. Callers hold b.mu.
func (b *Belt) finish() {
	b.pastTime = 0
	b.anchored = false
	b.running = false
	b.handle = 0
	b.turn = false
	log.Debug().Str("context", "belt").Msg("done")
}

// Running reports whether a frame chain is active.
func (b *Belt) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Turn reports whether the current pass is the reflected return pass.
func (b *Belt) Turn() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.turn
}

// Elapsed returns the time spent in the current pass.
func (b *Belt) Elapsed() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pastTime
}

// Blend evaluates the current blend function.
func (b *Belt) Blend(progress float64, turn bool) float64 {
	b.mu.Lock()
	blend := b.blend
	b.mu.Unlock()
	return blend(progress, turn)
}

// On subscribes fn to event.
func (b *Belt) On(event string, fn Listener) Subscription {
	return b.emitter.On(event, fn)
}

// Once subscribes fn to the next occurrence of event.
func (b *Belt) Once(event string, fn Listener) Subscription {
	return b.emitter.Once(event, fn)
}

// Off removes a subscription.
func (b *Belt) Off(event string, id Subscription) bool {
	return b.emitter.Off(event, id)
}

// ListenerCount returns the number of listeners subscribed to event.
// OnAll subscribes several listeners at once, keyed by event name.
func (b *Belt) OnAll(listeners map[string]Listener) map[string]Subscription {
	return b.emitter.OnAll(listeners)
}

// OffAll removes subscriptions returned by OnAll.
func (b *Belt) OffAll(subs map[string]Subscription) int {
	return b.emitter.OffAll(subs)
}

func (b *Belt) ListenerCount(event string) int {
	return b.emitter.ListenerCount(event)
}

// Options returns a snapshot of the configuration.
func (b *Belt) Options() Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.options
}

// Get returns the value of a single option.
func (b *Belt) Get(key string) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.options.get(key)
}

// Set changes a single option. Durations must be time.Duration, flags bool,
// and the easing an EasingFunc, a func(float64) float64 or a curve name.
func (b *Belt) Set(key string, value any) error {
	p, err := partialOf(key, value)
	if err != nil {
		return err
	}
	b.SetAll(p)
	return nil
}

// SetAll applies a batch of changes. Every change is compared against the
// configuration as it was before the call, and applied in Keys order. While
// running, a duration change keeps the fractional position of the pass and
// a reverse toggle mirrors it, so the emitted value does not jump.
func (b *Belt) SetAll(p Partial) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.options
	next := current
	next.apply(p)

	if next.Delay != current.Delay {
		b.options.Delay = next.Delay
	}
	if next.Duration != current.Duration {
		b.options.Duration = next.Duration
		if b.running {
			if current.Duration > 0 {
				fraction := float64(b.pastTime) / float64(current.Duration)
				b.pastTime = time.Duration(math.Round(float64(b.options.Duration) * fraction))
			} else {
				b.pastTime = 0
			}
			b.reanchor()
		}
	}
	if next.Loop != current.Loop {
		b.options.Loop = next.Loop
	}
	if next.Reverse != current.Reverse {
		b.options.Reverse = next.Reverse
		if b.running {
			if b.options.Duration > 0 {
				fraction := float64(b.pastTime) / float64(b.options.Duration)
				b.pastTime = time.Duration(math.Round(float64(b.options.Duration) * (1 - fraction)))
			} else {
				b.pastTime = 0
			}
			b.reanchor()
		}
		b.blend = MakeBlend(b.options.Easing, b.options.Reverse)
	}
	if next.Round != current.Round {
		b.options.Round = next.Round
	}
	// Functions are not comparable; any supplied easing counts as a change.
	if p.Easing != nil {
		b.options.Easing = next.Easing
		b.options.EasingName = next.EasingName
		b.blend = MakeBlend(b.options.Easing, b.options.Reverse)
	}
}

// reanchor keeps pastTime = timestamp - startTime once the run has seen a
// frame. Before that the first frame anchors from the carried pastTime.
func (b *Belt) reanchor() {
	if b.anchored {
		b.startTime = b.timestamp - b.pastTime
	}
}
