package stream

// An Animation renders the frame for a progress value, nominally in [0, 1].
type Animation interface {
	CalculateFrame(progress float64) *Frame
}
