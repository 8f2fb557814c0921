package searcher

import (
	"github.com/bits-and-blooms/bitset"

	"ggp/circuit"
	"ggp/game"
	"ggp/games"
)

// Hand-built trees. Children must be attached before any of them is solved.

func newRoot(visits int) *node {
	n := newMax(nil, -1, nil, game.StateOf(1))
	n.visits = visits
	return n
}

func attach(parent, c *node, visits int, utility float64) *node {
	c.visits = visits
	c.total = utility * float64(visits)
	c.utility = utility
	parent.children = append(parent.children, c)
	if parent.solvedChildren == nil {
		parent.solvedChildren = bitset.New(0)
	}
	return c
}

func addMin(parent *node, move game.Move, visits int, utility float64) *node {
	return attach(parent, newMin(parent, len(parent.children), move), visits, utility)
}

func addMax(parent *node, visits int, utility float64) *node {
	return attach(parent, newMax(parent, len(parent.children), nil, game.StateOf(1)), visits, utility)
}

func nim(pile int) func() (*circuit.Graph, error) {
	return func() (*circuit.Graph, error) { return games.Nim(pile) }
}

func parity(flips int) func() (*circuit.Graph, error) {
	return func() (*circuit.Graph, error) { return games.Parity(flips) }
}

func trap(steps int) func() (*circuit.Graph, error) {
	return func() (*circuit.Graph, error) { return games.Trap(steps) }
}
