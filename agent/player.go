package agent

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ggp/circuit"
	"ggp/config"
	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/heuristics"
	"ggp/propnet"
	"ggp/searcher"
	"ggp/solver"
)

// Planner finds a complete winning plan for a role, or fails.
type Planner interface {
	Solve(ctx context.Context, g *circuit.Graph, role game.Role, sentences []string, deadline time.Time) ([]game.Move, error)
}

type Option func(p *Player)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Player) {
		p.logger = logger
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(p *Player) {
		p.collector = collector
	}
}

// WithPlanner replaces the configured solver.
func WithPlanner(planner Planner) Option {
	return func(p *Player) {
		p.planner = planner
	}
}

// Player searches with MCTS, following a solver plan when one is found at the
// start of the match.
type Player struct {
	cfg       config.Config
	logger    zerolog.Logger
	collector metrics.Collector
	planner   Planner

	match   Match
	log     zerolog.Logger
	machine *propnet.Machine
	mcts    *searcher.MCTS
	weights heuristics.Weights
	plan    []game.Move
	last    metrics.SearchMetric
}

func NewPlayer(cfg config.Config, options ...Option) *Player {
	p := &Player{
		cfg:       cfg,
		logger:    log.Logger,
		collector: metrics.NewCollector(),
	}
	for _, option := range options {
		option(p)
	}
	if p.planner == nil && cfg.Solver.Enabled {
		p.planner = solver.NewBridge(cfg.Solver.Path, cfg.Solver.Margin, p.logger)
	}
	return p
}

func (p *Player) OnMatchStart(match Match, deadline time.Time) error {
	if err := match.validate(); err != nil {
		return err
	}
	deadline = deadline.Add(-p.cfg.Match.SafetyBuffer)
	p.match = match
	p.plan = nil
	p.log = p.logger.With().Str("match", match.ID).Str("role", string(match.Role)).Logger()

	g, trimmed := circuit.Optimize(match.Graph)
	p.machine = propnet.New(g)
	p.describe(g, trimmed)

	if p.planner != nil && len(match.Rules) > 0 && solver.Applicable(g, match.Role) {
		plan, err := p.planner.Solve(context.Background(), g, match.Role, match.Rules, deadline)
		if err != nil {
			p.log.Warn().Err(err).Msg("no solver plan, falling back to search")
		} else {
			p.plan = plan
			p.log.Info().Int("steps", len(plan)).Msg("following solver plan")
		}
	}

	p.weights = heuristics.Weights{}
	if p.cfg.Heuristics.Enabled && p.plan == nil {
		share := time.Duration(float64(time.Until(deadline)) * p.cfg.Heuristics.Share)
		options := []heuristics.Option{
			heuristics.WithMinCorrelation(p.cfg.Heuristics.MinCorrelation),
			heuristics.WithMinSamples(p.cfg.Heuristics.MinSamples),
			heuristics.WithCutoff(p.cfg.Search.Cutoff),
			heuristics.WithLogger(p.log),
		}
		if p.cfg.Search.Seed != 0 {
			options = append(options, heuristics.WithSeed(p.cfg.Search.Seed))
		}
		p.weights = heuristics.NewCalibrator(p.machine.Fork(), match.Role, options...).Calibrate(time.Now().Add(share))
	}

	p.mcts = searcher.NewMCTS(p.machine, match.Role, p.searchOptions()...)
	if p.plan == nil && time.Now().Before(deadline) {
		p.last = p.mcts.Search(p.machine.InitialState(), deadline)
	}
	return nil
}

// describe logs what the circuit reveals about the game.
func (p *Player) describe(g *circuit.Graph, trimmed int) {
	r := g.RoleIndex(p.match.Role)
	e := p.log.Info().
		Int("gates", g.Len()).
		Int("trimmed", trimmed).
		Int("roles", len(g.Roles())).
		Bool("zero_sum", g.IsZeroSum()).
		Int("useless_roles", g.UselessRoles(r)).
		Bool("terminal_reachable", g.TerminalSatisfiable()).
		Bool("win_reachable", g.GoalSatisfiable(r, 100))
	if steps, ok := g.StepCounter(); ok {
		e = e.Int("step_counter", steps)
	}
	e.Msg("match started")
	if !g.TerminalSatisfiable() {
		p.log.Warn().Msg("terminal can never hold")
	}
}

func (p *Player) searchOptions() []searcher.Option {
	s := p.cfg.Search
	options := []searcher.Option{
		searcher.WithGoroutines(s.Goroutines),
		searcher.WithCharges(s.Charges),
		searcher.WithCutoff(s.Cutoff),
		searcher.WithExploration(s.Exploration),
		searcher.WithDecay(s.DecayFloor, s.DecayRate),
		searcher.WithMetrics(p.collector),
		searcher.WithLogger(p.log),
	}
	if s.Seed != 0 {
		options = append(options, searcher.WithSeed(s.Seed))
	}
	if p.weights.Enabled() {
		options = append(options, searcher.WithHeuristics(p.weights.Scorer(p.machine.Fork(), p.match.Role)))
	}
	return options
}

func (p *Player) OnRequestMove(state game.State, deadline time.Time) game.Move {
	if p.mcts == nil {
		p.logger.Error().Msg("move requested before the match started")
		return ""
	}
	deadline = deadline.Add(-p.cfg.Match.SafetyBuffer)
	role := p.match.Role

	if len(p.plan) > 0 {
		move := p.plan[0]
		p.plan = p.plan[1:]
		if isLegal(p.machine, state, role, move) {
			p.last = metrics.SearchMetric{}
			return move
		}
		p.log.Warn().Str("move", string(move)).Msg("solver plan left the game, switching to search")
		p.plan = nil
	}

	p.last = p.mcts.Search(state, deadline)
	move, err := p.mcts.BestMove(state)
	if err != nil || !isLegal(p.machine, state, role, move) {
		fallback := firstLegal(p.machine, state, role)
		p.log.Warn().Err(err).Str("move", string(move)).Str("fallback", string(fallback)).Msg("search gave no legal move")
		return fallback
	}
	root := p.mcts.Root()
	p.log.Debug().
		Str("move", string(move)).
		Int("visits", root.Visits).
		Float64("utility", root.Utility).
		Bool("solved", root.Solved).
		Msg("move chosen")
	return move
}

func (p *Player) OnMatchEnd(state game.State) {
	if p.machine != nil {
		p.log.Info().Int("goal", p.machine.Goal(state, p.match.Role)).Msg("match over")
	}
	p.machine = nil
	p.mcts = nil
	p.plan = nil
}

func (p *Player) LastSearch() metrics.SearchMetric {
	return p.last
}

// Weights returns the heuristic weights calibrated for the current match.
func (p *Player) Weights() heuristics.Weights {
	return p.weights
}
