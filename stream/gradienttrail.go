package stream

import (
	"math"
)

// A GradientTrail is an Animation that scrolls a gradient along an led strip.
// One pass moves the gradient by one full trail length.
type GradientTrail struct {
	gradient    GradientTable
	trailLength int
	saturation  float64
	luminance   float64
}

// NewGradientTrail creates an instance of a GradientTrail object.
func NewGradientTrail(gradient GradientTable, trailLength int) *GradientTrail {
	g := new(GradientTrail)
	g.gradient = gradient
	g.trailLength = trailLength
	if g.trailLength <= 0 {
		g.trailLength = numPixels
	}
	g.saturation = 1.0
	g.luminance = 0.05

	return g
}

// CalculateFrame creates a new Frame instance.
func (g *GradientTrail) CalculateFrame(progress float64) *Frame {
	f := NewFrame()
	trail := float64(g.trailLength)
	offset := progress * trail
	for i := 0; i < len(f.pixels); i++ {
		t := math.Mod(float64(i)-offset, trail)
		if t < 0 {
			t += trail
		}
		f.pixels[i] = g.gradient.GetColor(t/trail, g.saturation, g.luminance)
	}

	return f
}
