package searcher

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"ggp/game"
	"ggp/propnet"
)

var errChargePanic = errors.New("depth charge panicked")

// worker owns the machine and RNG one goroutine uses for depth charges.
type worker struct {
	machine *propnet.Machine
	rng     *rand.Rand
}

// charge plays uniformly random joint moves from state until the game ends,
// the deadline passes or cutoff moves were made, and returns role's goal at
// the final state. full reports whether a terminal state was reached.
func charge(sm game.StateMachine, role game.Role, state game.State, rng *rand.Rand, deadline time.Time, cutoff int) (score int, full bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, full, err = 0, false, fmt.Errorf("%w: %v", errChargePanic, r)
		}
	}()

	for depth := 0; !sm.IsTerminal(state); depth++ {
		if depth >= cutoff || time.Now().After(deadline) {
			return sm.Goal(state, role), false, nil
		}
		state, err = game.RandomNextState(sm, state, rng)
		if err != nil {
			return 0, false, err
		}
	}
	return sm.Goal(state, role), true, nil
}

// simulate averages depth charges from state. With several workers every
// worker runs its share concurrently and the driver waits for all of them.
// A failed charge counts as 0.
func (m *MCTS) simulate(state game.State, deadline time.Time) float64 {
	if len(m.workers) == 1 {
		return m.simulateWith(m.workers[0], state, deadline, m.charges)
	}

	scores := make([]float64, len(m.workers))
	var g errgroup.Group
	for i, w := range m.workers {
		g.Go(func() error {
			scores[i] = m.simulateWith(w, state, deadline, m.charges)
			return nil
		})
	}
	_ = g.Wait()

	total := 0.0
	for _, s := range scores {
		total += s
	}
	return total / float64(len(scores))
}

func (m *MCTS) simulateWith(w *worker, state game.State, deadline time.Time, count int) float64 {
	total, runs := 0.0, 0
	for ; runs < count; runs++ {
		if runs > 0 && time.Now().After(deadline) {
			break
		}
		score, full, err := charge(w.machine, m.role, state, w.rng, deadline, m.cutoff)
		if err != nil {
			m.metrics.AddFailedCharge()
			m.logger.Warn().Err(err).Str("role", string(m.role)).Msg("depth charge failed")
			continue
		}
		m.metrics.AddCharge(full)
		total += float64(score)
	}
	return total / float64(runs)
}
