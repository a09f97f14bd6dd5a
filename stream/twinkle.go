package stream

import (
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// A Twinkle is an Animation that brightens a fixed set of random particles
// as progress rises.
type Twinkle struct {
	foreColour colorful.Color
	backColour colorful.Color
	particles  map[int]bool
}

// NewTwinkle creates an instance of a Twinkle object. The particle positions
// are drawn from rng.
func NewTwinkle(numParticles int, foreColour, backColour colorful.Color, rng *rand.Rand) *Twinkle {
	t := new(Twinkle)
	t.foreColour = foreColour
	t.backColour = backColour
	t.particles = make(map[int]bool)
	for i := 0; i < numParticles; i++ {
		t.particles[rng.Intn(numPixels)] = true
	}

	return t
}

// CalculateFrame creates a new Frame instance.
func (t *Twinkle) CalculateFrame(progress float64) *Frame {
	f := NewFrame()
	lit := t.backColour.BlendHcl(t.foreColour, progress).Clamped()
	for i := 0; i < len(f.pixels); i++ {
		if t.particles[i] {
			f.pixels[i] = lit
		} else {
			f.pixels[i] = t.backColour
		}
	}

	return f
}
