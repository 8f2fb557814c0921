package searcher

import "math"

// decay shrinks the exploration bonus with depth, never below the floor.
func (m *MCTS) decay(level int) float64 {
	return math.Max(m.decayFloor, (100-float64(level)*m.decayRate)/100)
}

// score is the selection value of a visited child. Max nodes are ranked from
// the opponents' side in multi-role games, so their value counts against us.
func (m *MCTS) score(n *node) float64 {
	if n.solved && n.utility == Loss {
		return math.Inf(-1)
	}
	sign := 1.0
	if n.max && !m.singleRole {
		sign = -1
	}
	explore := m.exploration * m.decay(n.level) * math.Sqrt(math.Log(float64(n.parent.visits))/float64(n.visits))
	return sign*(n.utility+n.heuristic) + explore
}

// selectNode walks down from the root to the node to expand and simulate.
func (m *MCTS) selectNode() *node {
	n := m.root
	for {
		if !n.stateless() && (len(n.children) == 0 || n.terminal || n.visits <= 1) {
			return n
		}

		if next, ok := firstUnvisited(n); ok {
			if !next.stateless() {
				return next
			}
			n = next
			continue
		}

		var best *node
		bestScore := math.Inf(-1)
		for _, c := range n.children {
			if c.solved {
				continue
			}
			if s := m.score(c); best == nil || s > bestScore {
				best, bestScore = c, s
			}
		}
		if best == nil {
			return n.stateful()
		}
		n = best
	}
}

func firstUnvisited(n *node) (*node, bool) {
	for _, c := range n.children {
		if c.visits == 0 && !c.solved {
			return c, true
		}
	}
	return nil, false
}
