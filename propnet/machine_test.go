package propnet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ggp/circuit"
	"ggp/game"
	"ggp/games"
)

// reachable enumerates every state reachable from the initial state.
func reachable(t *testing.T, m *Machine) []game.State {
	t.Helper()
	start := m.InitialState()
	seen := map[game.StateHash][]game.State{start.Hash(): {start}}
	queue := []game.State{start}
	states := []game.State{start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		if m.IsTerminal(s) {
			continue
		}
		role := m.Roles()[0]
		for _, move := range m.LegalMoves(s, role) {
			joints, err := game.LegalJointMoves(m, s, role, move)
			require.NoError(t, err)
			for _, joint := range joints {
				next, err := m.NextState(s, joint)
				require.NoError(t, err)
				known := false
				for _, other := range seen[next.Hash()] {
					if other.Equal(next) {
						known = true
						break
					}
				}
				if known {
					continue
				}
				seen[next.Hash()] = append(seen[next.Hash()], next)
				queue = append(queue, next)
				states = append(states, next)
			}
		}
	}
	return states
}

func TestInitialState(t *testing.T) {
	m := New(games.Must(games.Nim(4)))
	s := m.InitialState()

	require.Equal(t, 7, s.Len(), "Five piles and two control bits")
	require.Equal(t, 2, s.Count(), "Full pile and white in control")
	require.True(t, s.Test(4), "pile(4) should hold")
	require.True(t, s.Test(5), "control(white) should hold")
	require.False(t, m.IsTerminal(s))
	require.Equal(t, []game.Move{"take(1)", "take(2)", "take(3)"}, m.LegalMoves(s, "white"))
	require.Equal(t, []game.Move{"noop"}, m.LegalMoves(s, "black"))
}

func TestNextState(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		m := New(games.Must(games.Nim(12)))
		for _, s := range reachable(t, m) {
			if m.IsTerminal(s) {
				continue
			}
			for _, w := range m.LegalMoves(s, "white") {
				for _, b := range m.LegalMoves(s, "black") {
					first, err := m.NextState(s, game.JointMove{w, b})
					require.NoError(t, err)
					// Disturb the cached values in between.
					_ = m.IsTerminal(m.InitialState())
					second, err := m.NextState(s, game.JointMove{w, b})
					require.NoError(t, err)
					require.True(t, first.Equal(second), "NextState should be bit-identical")
					require.Equal(t, first.String(), second.String())
				}
			}
		}
	})

	t.Run("plays out a line", func(t *testing.T) {
		m := New(games.Must(games.Nim(4)))
		s := m.InitialState()
		s, err := m.NextState(s, game.JointMove{"take(3)", "noop"})
		require.NoError(t, err)
		require.True(t, s.Test(1), "One stone should remain")
		require.Equal(t, []game.Move{"take(1)"}, m.LegalMoves(s, "black"))
		s, err = m.NextState(s, game.JointMove{"noop", "take(1)"})
		require.NoError(t, err)
		require.True(t, m.IsTerminal(s))
		require.Equal(t, 0, m.Goal(s, "white"))
		require.Equal(t, 100, m.Goal(s, "black"))
	})

	t.Run("unknown move", func(t *testing.T) {
		m := New(games.Must(games.Nim(4)))
		_, err := m.NextState(m.InitialState(), game.JointMove{"take(9)", "noop"})
		require.ErrorIs(t, err, game.ErrUnknownMove)
	})

	t.Run("wrong arity", func(t *testing.T) {
		m := New(games.Must(games.Nim(4)))
		_, err := m.NextState(m.InitialState(), game.JointMove{"take(1)"})
		require.ErrorIs(t, err, game.ErrUnknownMove)
	})
}

func TestIdempotentQueries(t *testing.T) {
	m := New(games.Must(games.Duel()))
	for _, s := range reachable(t, m) {
		terminal := m.IsTerminal(s)
		white := m.Goal(s, "white")
		black := m.Goal(s, "black")
		require.Equal(t, terminal, m.IsTerminal(s))
		require.Equal(t, white, m.Goal(s, "white"))
		require.Equal(t, black, m.Goal(s, "black"))
		if terminal {
			require.Equal(t, 100, white+black, "Terminal duel states are zero-sum")
		}
	}
}

func TestOptimizedEquivalence(t *testing.T) {
	for _, name := range []string{"nim", "duel", "choice", "parity"} {
		t.Run(name, func(t *testing.T) {
			def, err := games.Lookup(name)
			require.NoError(t, err)
			g, err := def.Build()
			require.NoError(t, err)
			opt, _ := circuit.Optimize(g)
			plain, fast := New(g), New(opt)

			states := reachable(t, plain)
			if name == "nim" {
				require.GreaterOrEqual(t, len(states), 20)
			}
			require.True(t, plain.InitialState().Equal(fast.InitialState()))
			for _, s := range states {
				require.Equal(t, plain.IsTerminal(s), fast.IsTerminal(s), s.String())
				for _, role := range plain.Roles() {
					require.Equal(t, plain.Goal(s, role), fast.Goal(s, role), s.String())
					require.Equal(t, plain.LegalMoves(s, role), fast.LegalMoves(s, role), s.String())
				}
			}
		})
	}

	t.Run("nim views are spliced", func(t *testing.T) {
		_, trimmed := circuit.Optimize(games.Must(games.Nim(12)))
		require.Equal(t, 3, trimmed, "Both waiting views and the control hand-off")
	})
}

func TestFork(t *testing.T) {
	m := New(games.Must(games.Nim(6)))
	f := m.Fork()
	s, err := m.NextState(m.InitialState(), game.JointMove{"take(2)", "noop"})
	require.NoError(t, err)

	require.Equal(t, []game.Move{"take(1)", "take(2)", "take(3)"}, f.LegalMoves(f.InitialState(), "white"), "Fork should not see the parent's writes")
	require.Equal(t, m.LegalMoves(s, "black"), f.LegalMoves(s, "black"))
	require.Same(t, m.Graph(), f.Graph(), "Topology should be shared")
}

func TestUnknownRole(t *testing.T) {
	m := New(games.Must(games.Choice()))
	s := m.InitialState()
	require.Nil(t, m.LegalMoves(s, "nobody"))
	require.Equal(t, 0, m.Goal(s, "nobody"))
	require.Equal(t, 0, m.LegalCount(s, "nobody"))
	require.Equal(t, 2, m.LegalCount(s, "robot"))
}
