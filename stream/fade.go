package stream

import (
	"github.com/lucasb-eyer/go-colorful"
)

// A Fade is an Animation that blends the whole strip from one colour to another.
type Fade struct {
	from colorful.Color
	to   colorful.Color
}

// NewFade creates an instance of a Fade object.
func NewFade(from, to colorful.Color) *Fade {
	f := new(Fade)
	f.from = from
	f.to = to
	return f
}

// CalculateFrame creates a new Frame instance.
func (f *Fade) CalculateFrame(progress float64) *Frame {
	return NewFrame().Fill(f.from.BlendHcl(f.to, progress).Clamped())
}
