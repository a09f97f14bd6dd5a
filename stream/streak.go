package stream

import (
	"math"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
)

// A Streak is an Animation that sweeps a bright streak along the strip. The
// streak enters at progress 0 and has fully left at progress 1, fading in and
// out as it goes.
type Streak struct {
	colour     colorful.Color
	backColour colorful.Color
	length     float64
}

// NewStreak creates an instance of a Streak object.
func NewStreak(length int, colour, backColour colorful.Color) *Streak {
	s := new(Streak)
	s.colour = colour
	s.backColour = backColour
	s.length = float64(length)
	if s.length <= 0 {
		s.length = 10
	}

	return s
}

// overallGain rises over the first half of the sweep and falls over the
// second. Progress outside [0, 1], NaN included, gives no gain.
func (s *Streak) overallGain(progress float64) float64 {
	if math.IsNaN(progress) {
		return 0
	}
	distance := progress * 2
	if distance > 2 || distance < 0 {
		return 0
	} else if distance > 1 {
		distance = 1 - (distance - 1)
	}

	return ease.InOutQuad(distance)
}

// CalculateFrame creates a new Frame instance.
func (s *Streak) CalculateFrame(progress float64) *Frame {
	f := NewFrame().Fill(s.backColour)
	gain := s.overallGain(progress)
	if gain <= 0 {
		return f
	}
	numPixels := float64(len(f.pixels))

	head := progress*(numPixels+s.length) - s.length
	lit := s.backColour.BlendHcl(s.colour, gain).Clamped()
	start := int(math.Max(0, math.Ceil(head)))
	end := int(math.Min(numPixels-1, math.Floor(head+s.length)))
	for i := start; i <= end; i++ {
		f.pixels[i] = lit
	}

	return f
}
