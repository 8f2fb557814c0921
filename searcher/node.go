package searcher

import (
	"github.com/bits-and-blooms/bitset"

	"ggp/game"
)

// node is a vertex of the search tree. Max nodes carry a state and stand for
// our decision points; min nodes form the layer between our move and the
// joint moves consistent with it, and inherit the state of their parent.
type node struct {
	parent *node
	index  int // Position in parent.children

	move  game.Move      // Our move, on min nodes
	joint game.JointMove // The joint move that produced the state, on max nodes
	state game.State     // Zero on min nodes

	max   bool
	level int

	visits    int
	total     float64
	utility   float64
	backup    float64 // Utility before the node was solved
	heuristic float64

	solved   bool
	terminal bool

	children       []*node
	solvedChildren *bitset.BitSet
}

func newMax(parent *node, index int, joint game.JointMove, state game.State) *node {
	n := &node{
		parent: parent,
		index:  index,
		joint:  joint,
		state:  state,
		max:    true,
	}
	if parent != nil {
		n.level = parent.level + 1
	}
	return n
}

func newMin(parent *node, index int, move game.Move) *node {
	return &node{
		parent: parent,
		index:  index,
		move:   move,
		level:  parent.level + 1,
	}
}

func (n *node) setChildren(children []*node) {
	n.children = children
	n.solvedChildren = bitset.New(uint(len(children)))
}

func (n *node) stateless() bool {
	return n.state.IsZero()
}

// solve freezes the node at utility and marks it in its parent.
func (n *node) solve(utility float64) {
	n.backup = n.utility
	n.utility = utility
	n.solved = true
	if n.parent != nil {
		n.parent.solvedChildren.Set(uint(n.index))
	}
}

func (n *node) allChildrenSolved() bool {
	return len(n.children) > 0 && n.solvedChildren.Count() == uint(len(n.children))
}

// extreme returns the max (max node) or min (min node) of the children's
// utilities.
func (n *node) extreme() float64 {
	best := n.children[0].utility
	for _, c := range n.children[1:] {
		if n.max && c.utility > best || !n.max && c.utility < best {
			best = c.utility
		}
	}
	return best
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.total / float64(n.visits)
}

// stateful returns the nearest ancestor-or-self that carries a state.
func (n *node) stateful() *node {
	for n != nil && n.stateless() {
		n = n.parent
	}
	return n
}
