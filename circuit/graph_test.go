package circuit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ggp/game"
)

func TestBuild(t *testing.T) {
	t.Run("valid circuit", func(t *testing.T) {
		b := NewBuilder("a")
		p := b.Base("p")
		in := b.Input("a", "go")
		b.Legal("a", "go", b.Not(p))
		b.Next(p, in)
		b.Terminal(p)
		g, err := b.Build()

		require.NoError(t, err)
		require.Equal(t, []int{p}, g.Bases(), "Base slots should follow construction order")
		id, ok := g.InputFor(0, "go")
		require.True(t, ok, "Input should be indexed by move")
		require.Equal(t, in, id, "Input should be indexed by move")
		paired, ok := g.LegalInput(g.Legals(0)[0])
		require.True(t, ok, "Legal should pair with its input")
		require.Equal(t, in, paired, "Legal should pair with its input")
		require.Equal(t, g.Len(), len(g.Order()), "Every gate should be ordered")
	})

	t.Run("combinational cycle", func(t *testing.T) {
		b := NewBuilder("a")
		b.Base("p")
		g, err := b.Build()
		require.NoError(t, err)

		// Close a loop by hand: AND feeding a NOT feeding the AND.
		gates := append([]Gate(nil), g.gates...)
		gates = append(gates, Gate{ID: 1, Kind: KindAnd, Inputs: []int{2}, Outputs: []int{2}})
		gates = append(gates, Gate{ID: 2, Kind: KindNot, Inputs: []int{1}, Outputs: []int{1}})
		_, err = topoOrder(gates)
		require.ErrorIs(t, err, ErrCombinationalCycle)
	})

	t.Run("loop through a transition is not a cycle", func(t *testing.T) {
		b := NewBuilder("a")
		p := b.Base("p")
		b.Next(p, b.Not(p))
		_, err := b.Build()
		require.NoError(t, err)
	})

	t.Run("legal without input", func(t *testing.T) {
		b := NewBuilder("a")
		b.Legal("a", "jump", b.Const(true))
		_, err := b.Build()
		require.ErrorIs(t, err, ErrMalformedGate)
	})

	t.Run("unknown role", func(t *testing.T) {
		b := NewBuilder("a")
		b.Input("b", "go")
		_, err := b.Build()
		require.ErrorIs(t, err, game.ErrUnknownRole)
	})

	t.Run("unknown input gate", func(t *testing.T) {
		b := NewBuilder("a")
		b.And(7)
		_, err := b.Build()
		require.ErrorIs(t, err, ErrUnknownGate)
	})

	t.Run("second transition into a base", func(t *testing.T) {
		b := NewBuilder("a")
		p := b.Base("p")
		b.Next(p, b.Const(true))
		b.Next(p, b.Const(false))
		_, err := b.Build()
		require.ErrorIs(t, err, ErrMalformedGate)
	})

	t.Run("goal out of range", func(t *testing.T) {
		b := NewBuilder("a")
		b.Goal("a", 101, b.Const(true))
		_, err := b.Build()
		require.ErrorIs(t, err, ErrMalformedGate)
	})
}

func TestOptimize(t *testing.T) {
	t.Run("splices untagged single-input single-output propositions", func(t *testing.T) {
		b := NewBuilder("a")
		p := b.Base("p")
		in := b.Input("a", "go")
		v := b.View("v", in)
		b.Next(p, v)
		b.Legal("a", "go", b.View("w", b.Not(p)))
		b.Terminal(p)
		g, err := b.Build()
		require.NoError(t, err)

		opt, trimmed := Optimize(g)

		require.Equal(t, 2, trimmed, "Both views should be spliced")
		require.Equal(t, g.Len()-2, opt.Len(), "Compacted graph should drop the views")
		for id := 0; id < opt.Len(); id++ {
			gate := opt.Gate(id)
			require.Equal(t, id, gate.ID, "Gate IDs should be dense")
			require.NotEqual(t, "v", gate.Name, "View should be gone")
			require.NotEqual(t, "w", gate.Name, "View should be gone")
			for _, o := range gate.Outputs {
				require.Contains(t, opt.Gate(o).Inputs, id, "Edges should stay symmetric")
			}
		}
		newIn, ok := opt.InputFor(0, "go")
		require.True(t, ok)
		require.Equal(t, KindTransition, opt.Gate(opt.Gate(newIn).Outputs[0]).Kind, "Input should feed the transition directly")
		require.Equal(t, "v", g.Gate(v).Name, "Source graph should be untouched")
	})

	t.Run("views with fan-out are kept", func(t *testing.T) {
		b := NewBuilder("a")
		p := b.Base("p")
		v := b.View("v", p)
		b.Next(p, b.And(v, b.Not(v)))
		g, err := b.Build()
		require.NoError(t, err)

		opt, trimmed := Optimize(g)

		require.Equal(t, 0, trimmed)
		require.Same(t, g, opt, "Nothing to trim should return the same graph")
	})
}
