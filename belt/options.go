package belt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Option keys, in the order a batch change is applied.
const (
	KeyDelay    = "delay"
	KeyDuration = "duration"
	KeyLoop     = "loop"
	KeyReverse  = "reverse"
	KeyRound    = "round"
	KeyEasing   = "easing"
)

// Keys lists every recognised option key in application order.
var Keys = []string{KeyDelay, KeyDuration, KeyLoop, KeyReverse, KeyRound, KeyEasing}

var (
	// ErrUnknownOption is returned for keys outside Keys.
	ErrUnknownOption = errors.New("unknown option")
	// ErrOptionType is returned when a value has the wrong type for its key.
	ErrOptionType = errors.New("wrong option type")
)

// Options is the playback configuration of a Belt.
type Options struct {
	// Delay is carried but not used by the timing algorithm.
	Delay    time.Duration
	Duration time.Duration
	Loop     bool
	Reverse  bool
	// Round alternates direction after each pass.
	Round  bool
	Easing EasingFunc
	// EasingName is the catalogue name of Easing, empty for custom curves.
	EasingName string
}

// Partial is a batch of option changes. Nil fields are left untouched.
type Partial struct {
	Delay    *time.Duration
	Duration *time.Duration
	Loop     *bool
	Reverse  *bool
	Round    *bool
	Easing   EasingFunc
	// EasingName goes with Easing; empty for custom curves.
	EasingName string
}

func (o Options) withDefaults() Options {
	if o.Easing == nil {
		o.Easing = Identity
		o.EasingName = "linear"
	}
	return o
}

// get returns the value stored under key.
func (o Options) get(key string) (any, error) {
	switch key {
	case KeyDelay:
		return o.Delay, nil
	case KeyDuration:
		return o.Duration, nil
	case KeyLoop:
		return o.Loop, nil
	case KeyReverse:
		return o.Reverse, nil
	case KeyRound:
		return o.Round, nil
	case KeyEasing:
		return o.Easing, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOption, key)
}

// partialOf converts a single key/value assignment into a Partial.
func partialOf(key string, value any) (Partial, error) {
	var p Partial
	typeErr := func() error {
		return fmt.Errorf("%w: %s cannot be %T", ErrOptionType, key, value)
	}

	switch key {
	case KeyDelay, KeyDuration:
		d, ok := value.(time.Duration)
		if !ok {
			return p, typeErr()
		}
		if key == KeyDelay {
			p.Delay = &d
		} else {
			p.Duration = &d
		}
	case KeyLoop, KeyReverse, KeyRound:
		b, ok := value.(bool)
		if !ok {
			return p, typeErr()
		}
		switch key {
		case KeyLoop:
			p.Loop = &b
		case KeyReverse:
			p.Reverse = &b
		default:
			p.Round = &b
		}
	case KeyEasing:
		switch fn := value.(type) {
		case EasingFunc:
			p.Easing = fn
		case func(float64) float64:
			p.Easing = fn
		case string:
			named, key, err := ResolveEasing(fn)
			if err != nil {
				return p, err
			}
			p.Easing = named
			p.EasingName = key
		default:
			return p, typeErr()
		}
		if p.Easing == nil {
			return p, typeErr()
		}
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}
	return p, nil
}

// Settings is the serialised form of options used by config files and
// remote control messages. Durations are in milliseconds.
type Settings struct {
	DelayMs    *int64  `yaml:"delayMs,omitempty" json:"delayMs,omitempty"`
	DurationMs *int64  `yaml:"durationMs,omitempty" json:"durationMs,omitempty"`
	Loop       *bool   `yaml:"loop,omitempty" json:"loop,omitempty"`
	Reverse    *bool   `yaml:"reverse,omitempty" json:"reverse,omitempty"`
	Round      *bool   `yaml:"round,omitempty" json:"round,omitempty"`
	Easing     *string `yaml:"easing,omitempty" json:"easing,omitempty"`
}

// DecodeStrict decodes one JSON value from r into v, rejecting fields v does
// not declare with ErrUnknownOption.
func DecodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return fmt.Errorf("%w: %v", ErrUnknownOption, err)
		}
		return err
	}
	return nil
}

// Partial resolves the settings into a batch of changes.
func (s Settings) Partial() (Partial, error) {
	var p Partial
	if s.DelayMs != nil {
		d := time.Duration(*s.DelayMs) * time.Millisecond
		p.Delay = &d
	}
	if s.DurationMs != nil {
		d := time.Duration(*s.DurationMs) * time.Millisecond
		p.Duration = &d
	}
	p.Loop = s.Loop
	p.Reverse = s.Reverse
	p.Round = s.Round
	if s.Easing != nil {
		fn, key, err := ResolveEasing(*s.Easing)
		if err != nil {
			return p, err
		}
		p.Easing = fn
		p.EasingName = key
	}
	return p, nil
}

// Options applies the settings on top of the zero configuration.
func (s Settings) Options() (Options, error) {
	p, err := s.Partial()
	if err != nil {
		return Options{}, err
	}
	var o Options
	o.apply(p)
	return o.withDefaults(), nil
}

// SettingsOf serialises o. A custom easing has no name and is omitted.
func SettingsOf(o Options) Settings {
	delay := o.Delay.Milliseconds()
	duration := o.Duration.Milliseconds()
	loop, reverse, round := o.Loop, o.Reverse, o.Round
	s := Settings{
		DelayMs:    &delay,
		DurationMs: &duration,
		Loop:       &loop,
		Reverse:    &reverse,
		Round:      &round,
	}
	if o.EasingName != "" {
		name := o.EasingName
		s.Easing = &name
	}
	return s
}

// apply merges p into o without any timing bookkeeping.
func (o *Options) apply(p Partial) {
	if p.Delay != nil {
		o.Delay = *p.Delay
	}
	if p.Duration != nil {
		o.Duration = *p.Duration
	}
	if p.Loop != nil {
		o.Loop = *p.Loop
	}
	if p.Reverse != nil {
		o.Reverse = *p.Reverse
	}
	if p.Round != nil {
		o.Round = *p.Round
	}
	if p.Easing != nil {
		o.Easing = p.Easing
		o.EasingName = p.EasingName
	}
}
