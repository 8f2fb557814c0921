package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ggp/meta"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, 12.5, c.Search.Exploration)
	require.Equal(t, 0.16, c.Search.DecayFloor)
	require.Equal(t, 0.30, c.Heuristics.MinCorrelation)
	require.Equal(t, 2500*time.Millisecond, c.Match.SafetyBuffer)
	require.False(t, c.Solver.Enabled)
}

func TestLoad(t *testing.T) {
	t.Run("file over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ggp.yaml")
		data := "search:\n  goroutines: 4\n  exploration: 20\nsolver:\n  enabled: true\n  margin: 2s\nmatch:\n  play_clock: 15s\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		c, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, 4, c.Search.Goroutines)
		require.Equal(t, 20.0, c.Search.Exploration)
		require.True(t, c.Solver.Enabled)
		require.Equal(t, 2*time.Second, c.Solver.Margin)
		require.Equal(t, 15*time.Second, c.Match.PlayClock)
		require.Equal(t, "clingo", c.Solver.Path, "Unset fields keep their defaults")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ggp.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search:\n  goroutine: 4\n"), 0o644))

		_, err := Load(path)
		require.ErrorContains(t, err, "goroutine")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ggp.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search:\n  goroutines: 0\n"), 0o644))

		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("GGP_GOROUTINES", "8")
		t.Setenv("GGP_SAFETY_BUFFER", "1s")

		c, err := Load("")
		require.NoError(t, err)
		require.Equal(t, 8, c.Search.Goroutines)
		require.Equal(t, time.Second, c.Match.SafetyBuffer)
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("every kind of value", func(t *testing.T) {
		for k, v := range map[string]string{
			"GGP_LOG_LEVEL":       "debug",
			"GGP_CUTOFF":          "50",
			"GGP_MIN_CORRELATION": "0.5",
			"GGP_HEURISTICS":      "false",
			"GGP_SOLVER_MARGIN":   "3s",
			"GGP_SEED":            "42",
		} {
			t.Setenv(k, v)
		}

		c := Default()
		require.NoError(t, c.applyEnv())
		require.Equal(t, "debug", c.LogLevel)
		require.Equal(t, 50, c.Search.Cutoff)
		require.Equal(t, 0.5, c.Heuristics.MinCorrelation)
		require.False(t, c.Heuristics.Enabled)
		require.Equal(t, 3*time.Second, c.Solver.Margin)
		require.Equal(t, uint64(42), c.Search.Seed)
		require.Equal(t, meta.EXPLORATION, c.Search.Exploration, "Unset variables keep the current value")
		require.Equal(t, meta.PLAY_CLOCK, c.Match.PlayClock)
	})

	t.Run("malformed value", func(t *testing.T) {
		t.Setenv("GGP_CHARGES", "many")

		c := Default()
		require.ErrorContains(t, c.applyEnv(), "charges")
	})
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"decay floor":       func(c *Config) { c.Search.DecayFloor = 0 },
		"negative rate":     func(c *Config) { c.Search.DecayRate = -1 },
		"share":             func(c *Config) { c.Heuristics.Share = 1 },
		"samples":           func(c *Config) { c.Heuristics.MinSamples = 1 },
		"solver path":       func(c *Config) { c.Solver.Enabled, c.Solver.Path = true, "" },
		"play clock":        func(c *Config) { c.Match.PlayClock = 0 },
		"correlation range": func(c *Config) { c.Heuristics.MinCorrelation = 2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}
