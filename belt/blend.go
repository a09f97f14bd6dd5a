package belt

// EasingFunc maps linear progress in [0, 1] to eased progress. No
// normalisation is applied; out of range results are passed through.
type EasingFunc func(t float64) float64

// BlendFunc maps linear progress and the turn flag to the value delivered to
// listeners.
type BlendFunc func(progress float64, turn bool) float64

// Identity is the default easing.
func Identity(t float64) float64 {
	return t
}

// MakeBlend closes over an easing and a base direction. The turn flag flips
// the direction again, so a reversed return pass is the plain easing.
func MakeBlend(easing EasingFunc, reverse bool) BlendFunc {
	if easing == nil {
		easing = Identity
	}
	return func(progress float64, turn bool) float64 {
		if turn != reverse {
			return 1 - easing(progress)
		}
		return easing(progress)
	}
}
