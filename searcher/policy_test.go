package searcher

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func testMCTS(singleRole bool) *MCTS {
	return &MCTS{
		singleRole:  singleRole,
		exploration: Exploration,
		decayFloor:  DecayFloor,
		decayRate:   DecayRate,
	}
}

func TestDecay(t *testing.T) {
	m := testMCTS(false)
	require.Equal(t, 1.0, m.decay(0))
	require.InDelta(t, 0.5, m.decay(100), 1e-12)
	require.Equal(t, DecayFloor, m.decay(168), "Decay should never drop below the floor")
	require.Equal(t, DecayFloor, m.decay(10000))
}

func TestScore(t *testing.T) {
	t.Run("max nodes count against us with several roles", func(t *testing.T) {
		root := newRoot(10)
		child := addMin(root, "a", 10, 50)
		grandChild := addMax(child, 10, 40)
		grandChild.heuristic = 5

		explore := Exploration * 1 * math.Sqrt(math.Log(10)/10)
		require.InDelta(t, -45+explore*testMCTS(false).decay(grandChild.level), testMCTS(false).score(grandChild), 1e-9)
		require.InDelta(t, 45+explore*testMCTS(true).decay(grandChild.level), testMCTS(true).score(grandChild), 1e-9)
	})

	t.Run("min nodes count for us", func(t *testing.T) {
		root := newRoot(10)
		child := addMin(root, "a", 10, 50)

		explore := Exploration * testMCTS(false).decay(child.level) * math.Sqrt(math.Log(10)/10)
		require.InDelta(t, 50+explore, testMCTS(false).score(child), 1e-9)
	})

	t.Run("proven loss is excluded", func(t *testing.T) {
		root := newRoot(10)
		child := addMin(root, "a", 5, 0)
		child.solve(Loss)
		require.Equal(t, math.Inf(-1), testMCTS(false).score(child))
	})
}

func TestSelectNode(t *testing.T) {
	t.Run("root without children", func(t *testing.T) {
		m := testMCTS(false)
		m.root = newRoot(5)
		require.Same(t, m.root, m.selectNode())
	})

	t.Run("root visited once", func(t *testing.T) {
		m := testMCTS(false)
		m.root = newRoot(1)
		addMin(m.root, "a", 0, 0)
		require.Same(t, m.root, m.selectNode())
	})

	t.Run("unvisited grandchild first", func(t *testing.T) {
		m := testMCTS(false)
		m.root = newRoot(5)
		a := addMin(m.root, "a", 5, 50)
		addMax(a, 5, 50)
		b := addMin(m.root, "b", 0, 0)
		first := addMax(b, 0, 0)
		addMax(b, 0, 0)

		require.Same(t, first, m.selectNode(), "Unvisited min node should lead to its first grandchild")
	})

	t.Run("never picks a proven loss", func(t *testing.T) {
		m := testMCTS(true)
		m.root = newRoot(20)
		lost := addMin(m.root, "lost", 10, 0)
		lostLeaf := addMax(lost, 10, 0)
		open := addMin(m.root, "open", 10, 1)
		openLeaf := addMax(open, 10, 1)
		lostLeaf.solve(Loss)
		settle(lostLeaf)

		for i := 0; i < 5; i++ {
			got := m.selectNode()
			require.NotSame(t, lost, got)
			require.NotSame(t, lostLeaf, got)
			require.Same(t, openLeaf, got)
		}
	})

	t.Run("ties go to the first child", func(t *testing.T) {
		m := testMCTS(true)
		m.root = newRoot(20)
		a := addMin(m.root, "a", 10, 50)
		aLeaf := addMax(a, 10, 50)
		b := addMin(m.root, "b", 10, 50)
		addMax(b, 10, 50)

		require.Same(t, aLeaf, m.selectNode())
	})

	t.Run("all children solved falls back to a stateful node", func(t *testing.T) {
		m := testMCTS(true)
		m.root = newRoot(20)
		a := addMin(m.root, "a", 10, 50)
		leaf := addMax(a, 10, 50)
		leaf.solved = true

		require.Same(t, m.root, m.selectNode())
	})
}
