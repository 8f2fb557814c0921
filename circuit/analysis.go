package circuit

import "github.com/bits-and-blooms/bitset"

// IsZeroSum reports whether every goal value of every role is 0, 50 or 100.
// The result is advisory.
func (g *Graph) IsZeroSum() bool {
	for r := range g.roles {
		for _, id := range g.goals[r] {
			switch g.gates[id].Goal {
			case 0, 50, 100:
			default:
				return false
			}
		}
	}
	return true
}

// StepCounter detects a counter that forces termination: the terminal
// proposition is fed by an OR, one of whose inputs is a chain of single-input
// gates ending at init or at an input-less base. It returns the number of
// bases on that chain.
func (g *Graph) StepCounter() (int, bool) {
	if g.terminal < 0 {
		return 0, false
	}
	or := g.gates[g.terminal].single()
	if or < 0 || g.gates[or].Kind != KindOr {
		return 0, false
	}
	for _, in := range g.gates[or].Inputs {
		if steps, ok := g.chain(in); ok && steps > 0 {
			return steps, true
		}
	}
	return 0, false
}

func (g *Graph) chain(id int) (int, bool) {
	steps := 0
	for hops := 0; hops <= len(g.gates); hops++ {
		gate := &g.gates[id]
		if gate.Tags.Has(TagBase) {
			steps++
		}
		switch len(gate.Inputs) {
		case 0:
			return steps, gate.Tags.Has(TagBase) || id == g.init
		case 1:
			id = gate.Inputs[0]
		default:
			return 0, false
		}
	}
	return 0, false
}

// Influence returns the bases reachable from role's inputs within two state
// transitions.
func (g *Graph) Influence(role int) *bitset.BitSet {
	reached := bitset.New(uint(len(g.gates)))
	g.reach(g.inputs[role], reached)
	first := g.basesIn(reached)

	seen := bitset.New(uint(len(g.gates)))
	g.reach(first, seen)
	reached.InPlaceUnion(seen)

	out := bitset.New(uint(len(g.gates)))
	for _, id := range g.bases {
		if reached.Test(uint(id)) {
			out.Set(uint(id))
		}
	}
	return out
}

// UselessRoles counts the other roles whose influence shares no base with
// role's influence. Single-role games have none.
func (g *Graph) UselessRoles(role int) int {
	if len(g.roles) < 2 {
		return 0
	}
	mine := g.Influence(role)
	useless := 0
	for r := range g.roles {
		if r == role {
			continue
		}
		if mine.IntersectionCardinality(g.Influence(r)) == 0 {
			useless++
		}
	}
	return useless
}

// reach marks every gate downstream of from, stopping at bases other than
// the starting ones.
func (g *Graph) reach(from []int, seen *bitset.BitSet) {
	stack := make([]int, 0, len(from))
	for _, id := range from {
		if seen.Test(uint(id)) {
			continue
		}
		seen.Set(uint(id))
		stack = append(stack, id)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, o := range g.gates[id].Outputs {
			if seen.Test(uint(o)) {
				continue
			}
			seen.Set(uint(o))
			if g.gates[o].Tags.Has(TagBase) {
				continue
			}
			stack = append(stack, o)
		}
	}
}

func (g *Graph) basesIn(set *bitset.BitSet) []int {
	var out []int
	for _, id := range g.bases {
		if set.Test(uint(id)) {
			out = append(out, id)
		}
	}
	return out
}
