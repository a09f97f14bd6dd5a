package stream

import (
	"context"
	"sync"
	"time"

	"github.com/matt-g-everett/ledbelt/belt"
	"github.com/rs/zerolog/log"
)

// Controller is an Animation that cross-fades between animations. The
// cross-fade position comes from its own transition Belt.
type Controller struct {
	mu            sync.Mutex
	animation     Animation
	nextAnimation Animation
	transition    float64
	fader         *belt.Belt
	playlist      []Animation
	current       int
}

// NewController creates an instance of a Controller. The transition belt is
// driven by scheduler and lasts transitionTime.
func NewController(scheduler belt.Scheduler, transitionTime time.Duration, easing belt.EasingFunc,
	playlist ...Animation) *Controller {

	c := new(Controller)
	c.playlist = playlist
	if len(playlist) > 0 {
		c.animation = playlist[0]
	}
	c.fader = belt.New(scheduler, belt.Options{Duration: transitionTime, Easing: easing})
	c.fader.On(belt.EventUpdate, c.handleTransition)

	return c
}

func (c *Controller) handleTransition(value float64) {
	done := !c.fader.Running()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition = value
	if done && c.nextAnimation != nil {
		c.animation = c.nextAnimation
		c.nextAnimation = nil
		c.transition = 0
	}
}

// CalculateFrame renders the current animation, blended with the incoming
// one while a transition runs.
func (c *Controller) CalculateFrame(progress float64) *Frame {
	c.mu.Lock()
	animation, next, transition := c.animation, c.nextAnimation, c.transition
	c.mu.Unlock()

	if animation == nil {
		return NewFrame()
	}
	f := animation.CalculateFrame(progress)
	if next != nil {
		f = f.InterpolateFrame(next.CalculateFrame(progress), transition)
	}
	return f
}

// crossFade is a frozen mid-transition blend of two animations.
type crossFade struct {
	from, to   Animation
	transition float64
}

func (x crossFade) CalculateFrame(progress float64) *Frame {
	return x.from.CalculateFrame(progress).InterpolateFrame(x.to.CalculateFrame(progress), x.transition)
}

// Cycle starts a transition to next. A transition already in flight is
// frozen at its current blend, which then fades towards next.
func (c *Controller) Cycle(next Animation) {
	c.mu.Lock()
	if c.animation == nil {
		c.animation = next
		c.mu.Unlock()
		return
	}
	if c.nextAnimation != nil {
		c.animation = crossFade{from: c.animation, to: c.nextAnimation, transition: c.transition}
	}
	c.nextAnimation = next
	c.transition = 0
	c.mu.Unlock()

	c.fader.Run()
}

// Transitioning reports whether a cross-fade is in progress.
func (c *Controller) Transitioning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextAnimation != nil
}

// Advance cycles to the next animation in the playlist.
func (c *Controller) Advance() {
	c.mu.Lock()
	if len(c.playlist) < 2 {
		c.mu.Unlock()
		return
	}
	c.current = (c.current + 1) % len(c.playlist)
	next := c.playlist[c.current]
	c.mu.Unlock()

	log.Info().Str("context", "controller").Int("animation", c.current).Msg("cycle")
	c.Cycle(next)
}

// Run cycles through the playlist every animationTime until ctx is done.
func (c *Controller) Run(ctx context.Context, animationTime time.Duration) error {
	if animationTime <= 0 || len(c.playlist) < 2 {
		<-ctx.Done()
		return ctx.Err()
	}
	cycleTimer := time.NewTicker(animationTime)
	defer cycleTimer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-cycleTimer.C:
			c.Advance()
		}
	}
}
