package circuit

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// formula encodes the combinational layer as a circuit over free base, input
// and init variables.
func (g *Graph) formula() (*logic.C, []z.Lit) {
	c := logic.NewC()
	lits := make([]z.Lit, len(g.gates))
	for _, id := range g.order {
		gate := &g.gates[id]
		switch gate.Kind {
		case KindConstant:
			if gate.Value {
				lits[id] = c.T
			} else {
				lits[id] = c.F
			}
		case KindAnd:
			lits[id] = c.Ands(g.litsOf(gate.Inputs, lits)...)
		case KindOr:
			lits[id] = c.Ors(g.litsOf(gate.Inputs, lits)...)
		case KindNot:
			lits[id] = lits[gate.Inputs[0]].Not()
		case KindTransition:
			lits[id] = lits[gate.Inputs[0]]
		case KindProposition:
			if gate.Tags.Has(TagBase) || len(gate.Inputs) == 0 {
				lits[id] = c.Lit()
				continue
			}
			lits[id] = lits[gate.Inputs[0]]
		}
	}
	return c, lits
}

func (g *Graph) litsOf(ids []int, lits []z.Lit) []z.Lit {
	out := make([]z.Lit, len(ids))
	for i, id := range ids {
		out[i] = lits[id]
	}
	return out
}

func (g *Graph) satisfiable(target func(c *logic.C, lits []z.Lit) z.Lit) bool {
	c, lits := g.formula()
	goal := target(c, lits)
	s := gini.New()
	c.ToCnf(s)
	s.Assume(goal)
	return s.Solve() == 1
}

// TerminalSatisfiable reports whether some assignment of bases and inputs
// makes the terminal proposition true. A graph without a terminal, or with
// one that can never hold, is never terminal.
func (g *Graph) TerminalSatisfiable() bool {
	if g.terminal < 0 {
		return false
	}
	return g.satisfiable(func(_ *logic.C, lits []z.Lit) z.Lit {
		return lits[g.terminal]
	})
}

// GoalSatisfiable reports whether role can reach a terminal state scoring
// value, ignoring which bases are actually reachable.
func (g *Graph) GoalSatisfiable(role, value int) bool {
	if g.terminal < 0 {
		return false
	}
	var goals []int
	for _, id := range g.goals[role] {
		if g.gates[id].Goal == value {
			goals = append(goals, id)
		}
	}
	if len(goals) == 0 {
		return false
	}
	return g.satisfiable(func(c *logic.C, lits []z.Lit) z.Lit {
		return c.And(lits[g.terminal], c.Ors(g.litsOf(goals, lits)...))
	})
}
