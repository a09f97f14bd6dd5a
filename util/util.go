package util

import (
	"math"
)

// EasingFunc matches the signature of the curves in github.com/fogleman/ease.
type EasingFunc func(t float64) float64

// Clamp limits v to the range [min, max].
func Clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// GenerateLut builds a look-up table that rises along fn for the first half
// and mirrors it back down for the second half.
func GenerateLut(length int, fn EasingFunc) []float64 {
	increment := 1.0 / float64(length/2)
	lut := make([]float64, length)
	for i, j := 0, length-1; i < length/2; i, j = i+1, j-1 {
		value := float64(i) * increment
		lut[i] = fn(value)
		lut[j] = fn(value)
	}
	return lut
}

// SampleLut reads the table at position t in [0, 1], interpolating linearly
// between neighbouring entries.
func SampleLut(lut []float64, t float64) float64 {
	if len(lut) == 0 {
		return 0
	}
	if len(lut) == 1 {
		return lut[0]
	}

	pos := Clamp(t, 0, 1) * float64(len(lut)-1)
	i := int(math.Floor(pos))
	if i >= len(lut)-1 {
		return lut[len(lut)-1]
	}
	frac := pos - float64(i)
	return lut[i] + (lut[i+1]-lut[i])*frac
}
