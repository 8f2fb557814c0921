package searcher

import (
	"fmt"

	"ggp/game"
)

// Stats is a read-only snapshot of a node.
type Stats struct {
	Move      game.Move
	Visits    int
	Utility   float64
	Mean      float64
	Heuristic float64
	Solved    bool
	Terminal  bool
	Children  []Stats
}

func (m *MCTS) Root() Stats {
	if m.root == nil {
		return Stats{}
	}
	return snapshot(m.root, 2)
}

func snapshot(n *node, depth int) Stats {
	s := Stats{
		Move:      n.move,
		Visits:    n.visits,
		Utility:   n.utility,
		Mean:      n.mean(),
		Heuristic: n.heuristic,
		Solved:    n.solved,
		Terminal:  n.terminal,
	}
	if depth > 0 {
		s.Children = make([]Stats, len(n.children))
		for i, c := range n.children {
			s.Children[i] = snapshot(c, depth-1)
		}
	}
	return s
}

// BestMove picks our move at state: a proven win if there is one, otherwise
// the highest utility. When no child shows any utility the raw mean of the
// depth charges decides, and without children the first legal move is played.
func (m *MCTS) BestMove(state game.State) (game.Move, error) {
	if m.root != nil && m.root.state.Equal(state) {
		if move, ok := pickChild(m.root.children); ok {
			return move, nil
		}
	}

	moves := m.machine.LegalMoves(state, m.role)
	if len(moves) == 0 {
		return "", fmt.Errorf("role %s: %w", m.role, game.ErrNoLegalMoves)
	}
	return moves[0], nil
}

func pickChild(children []*node) (game.Move, bool) {
	best := -1
	bestUtility := 0.0
	for i, c := range children {
		if c.solved && c.utility == Win {
			return c.move, true
		}
		if best < 0 || c.utility > bestUtility {
			best, bestUtility = i, c.utility
		}
	}
	if best < 0 {
		return "", false
	}
	if bestUtility > NoSignal {
		return children[best].move, true
	}

	best = -1
	bestMean := 0.0
	for i, c := range children {
		if best < 0 || c.mean() > bestMean {
			best, bestMean = i, c.mean()
		}
	}
	return children[best].move, true
}
