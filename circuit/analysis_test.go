package circuit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ggp/circuit"
	"ggp/games"
)

func TestIsZeroSum(t *testing.T) {
	require.True(t, games.Must(games.Nim(5)).IsZeroSum(), "Nim goals are 0 and 100")

	b := circuit.NewBuilder("a")
	b.Goal("a", 30, b.Const(true))
	g, err := b.Build()
	require.NoError(t, err)
	require.False(t, g.IsZeroSum(), "A goal of 30 is not zero-sum")
}

func TestStepCounter(t *testing.T) {
	tests := []struct {
		name  string
		graph *circuit.Graph
		steps int
		found bool
	}{
		{"parity", games.Must(games.Parity(4)), 4, true},
		{"duel", games.Must(games.Duel()), 3, true},
		{"nim terminal is not an OR", games.Must(games.Nim(5)), 0, false},
		{"choice terminal is a base", games.Must(games.Choice()), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps, found := tt.graph.StepCounter()
			require.Equal(t, tt.found, found)
			require.Equal(t, tt.steps, steps)
		})
	}

	t.Run("survives optimization", func(t *testing.T) {
		opt, _ := circuit.Optimize(games.Must(games.Parity(6)))
		steps, found := opt.StepCounter()
		require.True(t, found)
		require.Equal(t, 6, steps)
	})
}

func TestUselessRoles(t *testing.T) {
	t.Run("single role", func(t *testing.T) {
		require.Equal(t, 0, games.Must(games.Choice()).UselessRoles(0))
	})

	t.Run("interacting roles", func(t *testing.T) {
		g := games.Must(games.Nim(5))
		require.Equal(t, 0, g.UselessRoles(0))
		require.Equal(t, 0, g.UselessRoles(1))
	})

	t.Run("bystander", func(t *testing.T) {
		b := circuit.NewBuilder("player", "bystander")
		mine := b.Base("mine")
		theirs := b.Base("theirs")
		b.Next(mine, b.Input("player", "go"))
		b.Next(theirs, b.Input("bystander", "wave"))
		g, err := b.Build()
		require.NoError(t, err)

		require.Equal(t, 1, g.UselessRoles(0), "Bystander never touches our bases")
		require.Equal(t, uint(1), g.Influence(0).Count())
	})
}

func TestSatisfiable(t *testing.T) {
	t.Run("reachable terminal and goals", func(t *testing.T) {
		g := games.Must(games.Duel())
		require.True(t, g.TerminalSatisfiable())
		require.True(t, g.GoalSatisfiable(0, 100))
		require.True(t, g.GoalSatisfiable(1, 100))
		require.False(t, g.GoalSatisfiable(0, 50), "No goal proposition carries 50")
	})

	t.Run("disconnected terminal", func(t *testing.T) {
		b := circuit.NewBuilder("a")
		p := b.Base("p")
		b.Terminal(b.And(p, b.Not(p)))
		g, err := b.Build()
		require.NoError(t, err)
		require.False(t, g.TerminalSatisfiable(), "p and not p never holds")
	})

	t.Run("goal only outside terminal states", func(t *testing.T) {
		b := circuit.NewBuilder("a")
		p := b.Base("p")
		b.Terminal(p)
		b.Goal("a", 100, b.Not(p))
		g, err := b.Build()
		require.NoError(t, err)
		require.True(t, g.TerminalSatisfiable())
		require.False(t, g.GoalSatisfiable(0, 100))
	})
}
