package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBackup(t *testing.T) {
	t.Run("accumulating a score up to the root", func(t *testing.T) {
		root := newRoot(1)
		root.total = 40
		child := addMin(root, "a", 0, 0)
		grandChild := addMax(child, 0, 0)

		backup(grandChild, 60)

		require.Equal(t, 1, grandChild.visits)
		require.Equal(t, 60.0, grandChild.utility)
		require.Equal(t, 1, child.visits)
		require.Equal(t, 60.0, child.utility)
		require.Equal(t, 2, root.visits)
		require.Equal(t, 50.0, root.utility, "Utility should be the mean score")
	})

	t.Run("solved utility is frozen", func(t *testing.T) {
		root := newRoot(3)
		child := addMin(root, "a", 0, 0)
		leaf := addMax(child, 2, 20)
		addMax(child, 0, 0)
		leaf.solve(80)

		backup(leaf, 0)

		require.Equal(t, 80.0, leaf.utility, "Solved node should keep its value")
		require.Equal(t, 3, leaf.visits, "Visits are still counted")
		require.Equal(t, 40.0, leaf.total, "Total is still accumulated")
	})
}

func TestSettle(t *testing.T) {
	t.Run("max node takes the max of solved children", func(t *testing.T) {
		root := newRoot(4)
		a := addMin(root, "a", 2, 30)
		b := addMin(root, "b", 2, 70)
		a.solve(30)
		b.solve(70)

		settle(root)

		require.True(t, root.solved)
		require.Equal(t, 70.0, root.utility)
	})

	t.Run("min node takes the min of solved children", func(t *testing.T) {
		root := newRoot(4)
		child := addMin(root, "a", 4, 50)
		x := addMax(child, 2, 30)
		y := addMax(child, 2, 70)
		x.solve(30)
		y.solve(70)

		settle(child)

		require.True(t, child.solved)
		require.Equal(t, 30.0, child.utility)
		require.Equal(t, 50.0, child.backup, "Pre-proof utility should be kept")
		require.True(t, root.solvedChildren.Test(0), "Parent should see the solved child")
		require.False(t, root.solved, "A min node solved at 30 says nothing for the parent")
	})

	t.Run("partially solved node stays open", func(t *testing.T) {
		root := newRoot(4)
		a := addMin(root, "a", 2, 30)
		addMin(root, "b", 2, 70)
		a.solve(30)

		settle(root)

		require.False(t, root.solved)
	})

	t.Run("proven loss below a min node", func(t *testing.T) {
		root := newRoot(4)
		child := addMin(root, "a", 4, 50)
		lost := addMax(child, 2, 0)
		addMax(child, 2, 90)
		lost.solve(Loss)

		settle(lost)

		require.True(t, child.solved, "Opponents can force the loss")
		require.Equal(t, Loss, child.utility)
		require.True(t, root.solvedChildren.Test(0))
	})

	t.Run("proven win below a max node", func(t *testing.T) {
		root := newRoot(4)
		won := addMin(root, "a", 2, 100)
		addMin(root, "b", 2, 10)
		won.solve(Win)

		settle(won)

		require.True(t, root.solved, "We can force the win")
		require.Equal(t, Win, root.utility)
	})

	t.Run("solved bit is set once", func(t *testing.T) {
		root := newRoot(4)
		child := addMin(root, "a", 2, 100)
		addMin(root, "b", 2, 10)
		addMax(child, 2, 100).solve(Win)

		settle(child)
		settle(child)
		backup(child, 100)

		require.Equal(t, uint(1), root.solvedChildren.Count())
	})
}
