package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ggp/agent"
	"ggp/circuit"
	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/meta"
	"ggp/propnet"
	"ggp/utils"
)

type Option func(e *LocalEngine)

func WithClocks(start, play time.Duration) Option {
	return func(e *LocalEngine) {
		if start > 0 {
			e.startClock = start
		}
		if play > 0 {
			e.playClock = play
		}
	}
}

func WithMaxTurns(turns int) Option {
	return func(e *LocalEngine) {
		if turns > 0 {
			e.maxTurns = turns
		}
	}
}

// WithRules passes the game's answer set sentences to the agents.
func WithRules(rules []string) Option {
	return func(e *LocalEngine) {
		e.rules = rules
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *LocalEngine) {
		e.logger = logger
	}
}

// LocalEngine referees a match between in-process agents. Every role moves
// every turn; roles without a choice play their only legal move.
type LocalEngine struct {
	name       string
	graph      *circuit.Graph
	machine    *propnet.Machine
	agents     []agent.Agent
	rules      []string
	startClock time.Duration
	playClock  time.Duration
	maxTurns   int
	logger     zerolog.Logger
}

var _ Engine = (*LocalEngine)(nil)

// NewLocalEngine seats agents in role order. It panics if the number of agents
// does not match the number of roles.
func NewLocalEngine(name string, g *circuit.Graph, agents []agent.Agent, options ...Option) *LocalEngine {
	if len(agents) != len(g.Roles()) {
		panic(fmt.Sprintf("%d agents for %d roles", len(agents), len(g.Roles())))
	}
	e := &LocalEngine{
		name:       name,
		graph:      g,
		machine:    propnet.New(g),
		agents:     agents,
		startClock: meta.START_CLOCK,
		playClock:  meta.PLAY_CLOCK,
		maxTurns:   meta.MAX_TURNS,
		logger:     log.Logger,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run executes the entire match loop. Illegal or missing moves are replaced
// by the role's first legal move.
func (e *LocalEngine) Run() (metrics.GameMetric, []metrics.MoveMetric, error) {
	id := uuid.NewString()
	logger := e.logger.With().Str("match", id).Str("game", e.name).Logger()
	roles := e.graph.Roles()
	gameMetric := metrics.GameMetric{Game: e.name, StartTime: time.Now()}

	deadline := time.Now().Add(e.startClock)
	var g errgroup.Group
	for i, a := range e.agents {
		match := agent.Match{ID: id, Graph: e.graph, Role: roles[i], Rules: e.rules}
		g.Go(func() error {
			if err := a.OnMatchStart(match, deadline); err != nil {
				return fmt.Errorf("starting %s: %w", match.Role, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return gameMetric, nil, err
	}
	logger.Info().Int("roles", len(roles)).Msg("match started")

	state := e.machine.InitialState()
	var moveMetrics []metrics.MoveMetric
	turn := 0
	for !e.machine.IsTerminal(state) && turn < e.maxTurns {
		turn++
		joint, err := e.requestMoves(state, logger)
		if err != nil {
			return gameMetric, moveMetrics, err
		}
		for i, a := range e.agents {
			mm := metrics.MoveMetric{Step: turn, Role: string(roles[i]), Move: string(joint[i])}
			if r, ok := a.(agent.Reporter); ok {
				mm.SearchMetric = r.LastSearch()
			}
			moveMetrics = append(moveMetrics, mm)
		}

		state, err = e.machine.NextState(state, joint)
		if err != nil {
			return gameMetric, moveMetrics, fmt.Errorf("turn %d: %w", turn, err)
		}
		logger.Debug().Int("turn", turn).Strs("moves", moveStrings(joint)).Msg("turn played")
	}

	for _, a := range e.agents {
		a.OnMatchEnd(state)
	}

	gameMetric.Goals = make([]int, len(roles))
	for i, r := range roles {
		gameMetric.Goals[i] = e.machine.Goal(state, r)
	}
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Turns = turn

	if e.machine.IsTerminal(state) {
		logger.Info().Ints("goals", gameMetric.Goals).Int("turns", turn).Msg("match over")
	} else {
		logger.Warn().Int("turns", turn).Msg("stopped at the turn limit")
	}
	return gameMetric, moveMetrics, nil
}

// requestMoves asks every agent for its move in parallel.
func (e *LocalEngine) requestMoves(state game.State, logger zerolog.Logger) (game.JointMove, error) {
	roles := e.graph.Roles()
	joint := make(game.JointMove, len(roles))
	deadline := time.Now().Add(e.playClock)

	var g errgroup.Group
	for i, a := range e.agents {
		g.Go(func() error {
			joint[i] = a.OnRequestMove(state, deadline)
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range roles {
		legal := e.machine.LegalMoves(state, r)
		if len(legal) == 0 {
			return nil, fmt.Errorf("role %s: %w", r, game.ErrNoLegalMoves)
		}
		if !utils.Contains(legal, joint[i]) {
			logger.Warn().Str("role", string(r)).Str("move", string(joint[i])).Msg("illegal move replaced")
			joint[i] = legal[0]
		}
	}
	return joint, nil
}

func moveStrings(joint game.JointMove) []string {
	out := make([]string, len(joint))
	for i, m := range joint {
		out[i] = string(m)
	}
	return out
}
