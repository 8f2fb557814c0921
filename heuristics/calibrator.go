// Package heuristics measures, before search starts, which cheap positional
// signals predict the outcome of random play, and weights them accordingly.
package heuristics

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"ggp/circuit"
	"ggp/game"
)

const (
	DefaultMinCorrelation = 0.30
	DefaultMinSamples     = 10
	DefaultCutoff         = 1000
)

// Weights are the per-match signal weights. They sum to 1 unless every
// signal was rejected.
type Weights struct {
	Goal     float64
	Mobility float64
	Focus    float64

	// Baseline is our legal move count at the initial state.
	Baseline float64
	Samples  int
}

func (w Weights) Enabled() bool {
	return w.Goal != 0 || w.Mobility != 0 || w.Focus != 0
}

// Scorer binds weights to a machine. It must only be used from one goroutine.
func (w Weights) Scorer(sm game.StateMachine, role game.Role) *Scorer {
	return &Scorer{w: w, sm: sm, role: role}
}

type Scorer struct {
	w    Weights
	sm   game.StateMachine
	role game.Role
}

func (s *Scorer) Evaluate(state game.State) float64 {
	if !s.w.Enabled() {
		return 0
	}
	goal, mobility, focus := signals(s.sm, s.role, state, s.w.Baseline)
	return s.w.Goal*goal + s.w.Mobility*mobility + s.w.Focus*focus
}

// signals returns goal proximity, mobility relative to the baseline and its
// complement, all on the 0..100 goal scale.
func signals(sm game.StateMachine, role game.Role, state game.State, baseline float64) (goal, mobility, focus float64) {
	goal = float64(sm.Goal(state, role))
	mobility = float64(len(sm.LegalMoves(state, role))) / baseline * 100
	return goal, mobility, 100 - mobility
}

type Option func(c *Calibrator)

func WithMinCorrelation(r float64) Option {
	return func(c *Calibrator) {
		c.minCorrelation = r
	}
}

func WithMinSamples(n int) Option {
	return func(c *Calibrator) {
		if n > 1 {
			c.minSamples = n
		}
	}
}

func WithCutoff(depth int) Option {
	return func(c *Calibrator) {
		if depth > 0 {
			c.cutoff = depth
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(c *Calibrator) {
		c.rng = rand.New(rand.NewSource(seed))
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Calibrator) {
		c.logger = logger
	}
}

type Calibrator struct {
	sm             game.StateMachine
	role           game.Role
	minCorrelation float64
	minSamples     int
	cutoff         int
	rng            *rand.Rand
	logger         zerolog.Logger
}

func NewCalibrator(sm game.StateMachine, role game.Role, options ...Option) *Calibrator {
	c := &Calibrator{
		sm:             sm,
		role:           role,
		minCorrelation: DefaultMinCorrelation,
		minSamples:     DefaultMinSamples,
		cutoff:         DefaultCutoff,
		rng:            rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		logger:         log.Logger,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// baseline is our legal move count at the initial state, falling back to the
// number of legal propositions when that is zero.
func (c *Calibrator) baseline() float64 {
	n := len(c.sm.LegalMoves(c.sm.InitialState(), c.role))
	if n == 0 {
		if g, ok := c.sm.(interface{ Graph() *circuit.Graph }); ok {
			if r := g.Graph().RoleIndex(c.role); r >= 0 {
				n = len(g.Graph().Legals(r))
			}
		}
	}
	if n == 0 {
		n = 1
	}
	return float64(n)
}

// Calibrate plays random games until the deadline and correlates each signal,
// averaged over the non-terminal states of a game, with that game's outcome.
func (c *Calibrator) Calibrate(deadline time.Time) Weights {
	baseline := c.baseline()
	var goals, mobilities, focuses, outcomes []float64

	for time.Now().Before(deadline) {
		g, m, f, outcome, ok := c.playout(baseline, deadline)
		if !ok {
			continue
		}
		goals = append(goals, g)
		mobilities = append(mobilities, m)
		focuses = append(focuses, f)
		outcomes = append(outcomes, outcome)
	}

	w := Weights{Baseline: baseline, Samples: len(outcomes)}
	if len(outcomes) < c.minSamples {
		c.logger.Info().Int("samples", len(outcomes)).Msg("too few playouts to calibrate heuristics")
		return w
	}

	w.Goal = c.validate(stat.Correlation(goals, outcomes, nil))
	w.Mobility = c.validate(stat.Correlation(mobilities, outcomes, nil))
	w.Focus = c.validate(stat.Correlation(focuses, outcomes, nil))
	if total := w.Goal + w.Mobility + w.Focus; total > 0 {
		w.Goal /= total
		w.Mobility /= total
		w.Focus /= total
	}

	c.logger.Info().
		Int("samples", w.Samples).
		Float64("goal", w.Goal).
		Float64("mobility", w.Mobility).
		Float64("focus", w.Focus).
		Bool("enabled", w.Enabled()).
		Msg("heuristics calibrated")
	return w
}

func (c *Calibrator) validate(r float64) float64 {
	if math.IsNaN(r) || math.IsInf(r, 0) || r < c.minCorrelation {
		return 0
	}
	return r
}

// playout returns the mean signals over the non-terminal states of one random
// game and its outcome. ok is false when the game could not be sampled.
func (c *Calibrator) playout(baseline float64, deadline time.Time) (goal, mobility, focus, outcome float64, ok bool) {
	state := c.sm.InitialState()
	steps := 0
	for !c.sm.IsTerminal(state) {
		if steps >= c.cutoff || time.Now().After(deadline) {
			return 0, 0, 0, 0, false
		}
		g, m, f := signals(c.sm, c.role, state, baseline)
		goal, mobility, focus = goal+g, mobility+m, focus+f
		steps++

		var err error
		state, err = game.RandomNextState(c.sm, state, c.rng)
		if err != nil {
			c.logger.Debug().Err(err).Msg("calibration playout failed")
			return 0, 0, 0, 0, false
		}
	}
	if steps == 0 {
		return 0, 0, 0, 0, false
	}
	n := float64(steps)
	return goal / n, mobility / n, focus / n, float64(c.sm.Goal(state, c.role)), true
}
