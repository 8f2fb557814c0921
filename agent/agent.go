// Package agent is the side of the player that the match harness talks to.
package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"ggp/circuit"
	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/propnet"
	"ggp/utils"
)

var ErrNoGame = errors.New("match has no game")

// Match describes a match as announced by the harness.
type Match struct {
	// ID is assigned by the agent when empty.
	ID    string
	Graph *circuit.Graph
	Role  game.Role
	// Rules are the game's answer set sentences, if known.
	Rules []string
}

type Agent interface {
	// OnMatchStart prepares for the match, using at most the time until deadline.
	OnMatchStart(match Match, deadline time.Time) error
	// OnRequestMove returns a move for state, which is legal whenever the
	// role has one.
	OnRequestMove(state game.State, deadline time.Time) game.Move
	OnMatchEnd(state game.State)
}

// Reporter is implemented by agents that search, returning the metrics of
// their last move.
type Reporter interface {
	LastSearch() metrics.SearchMetric
}

func (m *Match) validate() error {
	if m.Graph == nil {
		return ErrNoGame
	}
	if m.Graph.RoleIndex(m.Role) < 0 {
		return fmt.Errorf("role %s: %w", m.Role, game.ErrUnknownRole)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// firstLegal returns the first legal move of role, or "" if there is none.
func firstLegal(sm game.StateMachine, state game.State, role game.Role) game.Move {
	moves := sm.LegalMoves(state, role)
	if len(moves) == 0 {
		return ""
	}
	return moves[0]
}

func isLegal(sm game.StateMachine, state game.State, role game.Role, move game.Move) bool {
	return utils.Contains(sm.LegalMoves(state, role), move)
}

// RandomAgent plays uniformly random legal moves.
type RandomAgent struct {
	rng     *rand.Rand
	logger  zerolog.Logger
	role    game.Role
	machine *propnet.Machine
}

func NewRandomAgent(seed uint64) *RandomAgent {
	return &RandomAgent{rng: rand.New(rand.NewSource(seed)), logger: log.Logger}
}

func (a *RandomAgent) OnMatchStart(match Match, _ time.Time) error {
	if err := match.validate(); err != nil {
		return err
	}
	a.role = match.Role
	a.machine = propnet.New(match.Graph)
	a.logger = log.With().Str("match", match.ID).Str("role", string(match.Role)).Logger()
	return nil
}

func (a *RandomAgent) OnRequestMove(state game.State, _ time.Time) game.Move {
	if a.machine == nil {
		a.logger.Error().Msg("move requested before the match started")
		return ""
	}
	moves := a.machine.LegalMoves(state, a.role)
	if len(moves) == 0 {
		return ""
	}
	return moves[a.rng.Intn(len(moves))]
}

func (a *RandomAgent) OnMatchEnd(state game.State) {
	if a.machine != nil {
		a.logger.Info().Int("goal", a.machine.Goal(state, a.role)).Msg("match over")
	}
	a.machine = nil
}
