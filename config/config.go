// Package config holds the player's tunables. Values come from defaults, an
// optional YAML file and GGP_* environment variables, in increasing priority.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"ggp/meta"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`

	Search     Search     `yaml:"search" mapstructure:"search"`
	Heuristics Heuristics `yaml:"heuristics" mapstructure:"heuristics"`
	Solver     Solver     `yaml:"solver" mapstructure:"solver"`
	Match      Match      `yaml:"match" mapstructure:"match"`
}

type Search struct {
	Goroutines  int     `yaml:"goroutines" mapstructure:"goroutines"`
	Charges     int     `yaml:"charges" mapstructure:"charges"`
	Cutoff      int     `yaml:"cutoff" mapstructure:"cutoff"`
	Exploration float64 `yaml:"exploration" mapstructure:"exploration"`
	DecayFloor  float64 `yaml:"decay_floor" mapstructure:"decay_floor"`
	DecayRate   float64 `yaml:"decay_rate" mapstructure:"decay_rate"`
	// Seed of the depth charge RNGs; 0 seeds from the clock.
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
}

type Heuristics struct {
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	MinCorrelation float64 `yaml:"min_correlation" mapstructure:"min_correlation"`
	MinSamples     int     `yaml:"min_samples" mapstructure:"min_samples"`
	Share          float64 `yaml:"share" mapstructure:"share"`
}

type Solver struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Path    string        `yaml:"path" mapstructure:"path"`
	Margin  time.Duration `yaml:"margin" mapstructure:"margin"`
}

type Match struct {
	SafetyBuffer time.Duration `yaml:"safety_buffer" mapstructure:"safety_buffer"`
	StartClock   time.Duration `yaml:"start_clock" mapstructure:"start_clock"`
	PlayClock    time.Duration `yaml:"play_clock" mapstructure:"play_clock"`
	MaxTurns     int           `yaml:"max_turns" mapstructure:"max_turns"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Search: Search{
			Goroutines:  meta.GO_ROUTINES,
			Charges:     meta.CHARGES,
			Cutoff:      meta.WITH_CUTOFF,
			Exploration: meta.EXPLORATION,
			DecayFloor:  meta.DECAY_FLOOR,
			DecayRate:   meta.DECAY_RATE,
		},
		Heuristics: Heuristics{
			Enabled:        true,
			MinCorrelation: meta.MIN_CORRELATION,
			MinSamples:     meta.MIN_SAMPLES,
			Share:          meta.CALIBRATION_SHARE,
		},
		Solver: Solver{
			Path:   meta.SOLVER_PATH,
			Margin: meta.SOLVER_MARGIN,
		},
		Match: Match{
			SafetyBuffer: meta.SAFETY_BUFFER,
			StartClock:   meta.START_CLOCK,
			PlayClock:    meta.PLAY_CLOCK,
			MaxTurns:     meta.MAX_TURNS,
		},
	}
}

// Load reads path, if given, over the defaults, then applies the
// environment. A missing file or an unknown key in it is an error.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// envKeys maps each environment variable to its config key.
var envKeys = map[string]string{
	"GGP_LOG_LEVEL":         "log_level",
	"GGP_METRICS_ADDR":      "metrics_addr",
	"GGP_GOROUTINES":        "search.goroutines",
	"GGP_CHARGES":           "search.charges",
	"GGP_CUTOFF":            "search.cutoff",
	"GGP_EXPLORATION":       "search.exploration",
	"GGP_DECAY_FLOOR":       "search.decay_floor",
	"GGP_DECAY_RATE":        "search.decay_rate",
	"GGP_SEED":              "search.seed",
	"GGP_HEURISTICS":        "heuristics.enabled",
	"GGP_MIN_CORRELATION":   "heuristics.min_correlation",
	"GGP_MIN_SAMPLES":       "heuristics.min_samples",
	"GGP_CALIBRATION_SHARE": "heuristics.share",
	"GGP_SOLVER":            "solver.enabled",
	"GGP_SOLVER_PATH":       "solver.path",
	"GGP_SOLVER_MARGIN":     "solver.margin",
	"GGP_SAFETY_BUFFER":     "match.safety_buffer",
	"GGP_START_CLOCK":       "match.start_clock",
	"GGP_PLAY_CLOCK":        "match.play_clock",
	"GGP_MAX_TURNS":         "match.max_turns",
}

// applyEnv overlays the GGP_* variables that are set. Unset ones leave the
// field alone.
func (c *Config) applyEnv() error {
	v := viper.New()
	for env, key := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch {
	case c.Search.Goroutines < 1:
		return fmt.Errorf("goroutines must be >= 1: %w", ErrInvalid)
	case c.Search.Charges < 1:
		return fmt.Errorf("charges must be >= 1: %w", ErrInvalid)
	case c.Search.Cutoff < 1:
		return fmt.Errorf("cutoff must be >= 1: %w", ErrInvalid)
	case c.Search.Exploration < 0:
		return fmt.Errorf("exploration must be >= 0: %w", ErrInvalid)
	case c.Search.DecayFloor <= 0 || c.Search.DecayFloor > 1:
		return fmt.Errorf("decay_floor must be in (0, 1]: %w", ErrInvalid)
	case c.Search.DecayRate < 0:
		return fmt.Errorf("decay_rate must be >= 0: %w", ErrInvalid)
	case c.Heuristics.MinCorrelation < -1 || c.Heuristics.MinCorrelation > 1:
		return fmt.Errorf("min_correlation must be in [-1, 1]: %w", ErrInvalid)
	case c.Heuristics.MinSamples < 2:
		return fmt.Errorf("min_samples must be >= 2: %w", ErrInvalid)
	case c.Heuristics.Share < 0 || c.Heuristics.Share >= 1:
		return fmt.Errorf("calibration share must be in [0, 1): %w", ErrInvalid)
	case c.Solver.Enabled && c.Solver.Path == "":
		return fmt.Errorf("solver path is empty: %w", ErrInvalid)
	case c.Solver.Margin < 0 || c.Match.SafetyBuffer < 0:
		return fmt.Errorf("margins must be >= 0: %w", ErrInvalid)
	case c.Match.StartClock <= 0 || c.Match.PlayClock <= 0:
		return fmt.Errorf("clocks must be > 0: %w", ErrInvalid)
	case c.Match.MaxTurns < 1:
		return fmt.Errorf("max_turns must be >= 1: %w", ErrInvalid)
	}
	return nil
}
