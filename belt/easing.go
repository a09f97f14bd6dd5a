package belt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
	"github.com/matt-g-everett/ledbelt/util"
)

const pulseLutLength = 64

var easings = map[string]EasingFunc{
	"linear":       ease.Linear,
	"inquad":       ease.InQuad,
	"outquad":      ease.OutQuad,
	"inoutquad":    ease.InOutQuad,
	"incubic":      ease.InCubic,
	"outcubic":     ease.OutCubic,
	"inoutcubic":   ease.InOutCubic,
	"inquart":      ease.InQuart,
	"outquart":     ease.OutQuart,
	"inoutquart":   ease.InOutQuart,
	"inquint":      ease.InQuint,
	"outquint":     ease.OutQuint,
	"inoutquint":   ease.InOutQuint,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"inexpo":       ease.InExpo,
	"outexpo":      ease.OutExpo,
	"inoutexpo":    ease.InOutExpo,
	"incirc":       ease.InCirc,
	"outcirc":      ease.OutCirc,
	"inoutcirc":    ease.InOutCirc,
	"inback":       ease.InBack,
	"outback":      ease.OutBack,
	"inoutback":    ease.InOutBack,
	"inbounce":     ease.InBounce,
	"outbounce":    ease.OutBounce,
	"inoutbounce":  ease.InOutBounce,
	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
	"pulse":        pulse(),
}

// pulse rises and falls back to zero over one pass.
func pulse() EasingFunc {
	lut := util.GenerateLut(pulseLutLength, ease.InOutQuad)
	return func(t float64) float64 {
		return util.SampleLut(lut, t)
	}
}

// EasingByName looks up a named curve. Names are case-insensitive and may
// use dashes or underscores, e.g. "in-out-quad".
func EasingByName(name string) (EasingFunc, error) {
	fn, _, err := ResolveEasing(name)
	return fn, err
}

// ResolveEasing looks up a named curve and also returns its canonical name.
// The empty name resolves to the identity curve, named "linear".
func ResolveEasing(name string) (EasingFunc, string, error) {
	key := strings.ToLower(name)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if key == "" || key == "identity" {
		return Identity, "linear", nil
	}
	fn, ok := easings[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: easing %q", ErrUnknownOption, name)
	}
	return fn, key, nil
}

// EasingNames lists the recognised curve names.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
