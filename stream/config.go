package stream

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/ledbelt/belt"
	"gopkg.in/yaml.v2"
)

// Animation kinds.
const (
	KindFade     = "fade"
	KindGradient = "gradient"
	KindTwinkle  = "twinkle"
	KindStreak   = "streak"
)

// AnimationConfig describes one animation in the playlist.
type AnimationConfig struct {
	Kind        string        `yaml:"kind"`
	From        string        `yaml:"from"`
	To          string        `yaml:"to"`
	Gradient    GradientTable `yaml:"gradient"`
	TrailLength int           `yaml:"trailLength"`
	Particles   int           `yaml:"particles"`
	Length      int           `yaml:"length"`
}

type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		ClientID string `yaml:"clientId"`
		Qos      byte   `yaml:"qos"`
		Topics   struct {
			Stream  string `yaml:"stream"`
			Control string `yaml:"control"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Http struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	LogLevel   string            `yaml:"logLevel"`
	FrameRate  float64           `yaml:"frameRate"`
	Belt       belt.Settings     `yaml:"belt"`
	Animations []AnimationConfig `yaml:"animations"`
	Transition struct {
		DurationMs int64  `yaml:"durationMs"`
		CycleMs    int64  `yaml:"cycleMs"`
		Easing     string `yaml:"easing"`
	} `yaml:"transition"`
}

// DefaultConfig returns the configuration used for anything a file leaves out.
func DefaultConfig() Config {
	var c Config
	c.Mqtt.URL = "tcp://localhost:1883"
	c.Mqtt.Topics.Stream = "home/xmastree/stream"
	c.Mqtt.Topics.Control = "home/xmastree/control"
	c.Http.Addr = ":3000"
	c.LogLevel = "info"
	c.FrameRate = 30
	duration := int64(10000)
	loop := true
	c.Belt.DurationMs = &duration
	c.Belt.Loop = &loop
	c.Transition.DurationMs = 5000
	return c
}

// ReadConfig decodes a YAML file on top of DefaultConfig.
func ReadConfig(configPath string) (Config, error) {
	config := DefaultConfig()
	f, err := os.Open(configPath)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.SetStrict(true)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("decode %s: %w", configPath, err)
	}
	return config, nil
}

// ApplyEnv overrides connection settings from LEDBELT_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	override := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	override(&c.Mqtt.URL, "LEDBELT_MQTT_URL")
	override(&c.Mqtt.Username, "LEDBELT_MQTT_USERNAME")
	override(&c.Mqtt.Password, "LEDBELT_MQTT_PASSWORD")
	override(&c.Http.Addr, "LEDBELT_HTTP_ADDR")
	override(&c.LogLevel, "LEDBELT_LOG_LEVEL")
}

// Build creates the animation described by a.
func (a AnimationConfig) Build(rng *rand.Rand) (Animation, error) {
	switch strings.ToLower(a.Kind) {
	case KindFade, "":
		from, to, err := a.colours("#000005", "#808080")
		if err != nil {
			return nil, err
		}
		return NewFade(from, to), nil
	case KindGradient:
		gradient := a.Gradient
		if len(gradient) == 0 {
			gradient = DefaultGradient
		}
		return NewGradientTrail(gradient, a.TrailLength), nil
	case KindTwinkle:
		back, fore, err := a.colours("#100505", "#404040")
		if err != nil {
			return nil, err
		}
		particles := a.Particles
		if particles <= 0 {
			particles = 60
		}
		return NewTwinkle(particles, fore, back, rng), nil
	case KindStreak:
		back, fore, err := a.colours("#000005", "#808080")
		if err != nil {
			return nil, err
		}
		return NewStreak(a.Length, fore, back), nil
	}
	return nil, fmt.Errorf("unknown animation kind %q", a.Kind)
}

func (a AnimationConfig) colours(defaultFrom, defaultTo string) (colorful.Color, colorful.Color, error) {
	from, to := a.From, a.To
	if from == "" {
		from = defaultFrom
	}
	if to == "" {
		to = defaultTo
	}
	c1, err := colorful.Hex(from)
	if err != nil {
		return c1, c1, fmt.Errorf("colour %q: %w", from, err)
	}
	c2, err := colorful.Hex(to)
	if err != nil {
		return c1, c2, fmt.Errorf("colour %q: %w", to, err)
	}
	return c1, c2, nil
}

// BuildPlaylist creates every configured animation, or a default fade.
func (c Config) BuildPlaylist(rng *rand.Rand) ([]Animation, error) {
	configs := c.Animations
	if len(configs) == 0 {
		configs = []AnimationConfig{{Kind: KindFade}}
	}
	playlist := make([]Animation, 0, len(configs))
	for i, ac := range configs {
		a, err := ac.Build(rng)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		playlist = append(playlist, a)
	}
	return playlist, nil
}
