package circuit

import "ggp/game"

// Optimize splices out every untagged proposition that has exactly one input
// and one output, wiring the input straight to the output. It returns a new
// compacted graph and the number of propositions removed; g is left intact.
func Optimize(g *Graph) (*Graph, int) {
	gates := make([]Gate, len(g.gates))
	for i, gate := range g.gates {
		gate.Inputs = append([]int(nil), gate.Inputs...)
		gate.Outputs = append([]int(nil), gate.Outputs...)
		gates[i] = gate
	}

	removed := make([]bool, len(gates))
	trimmed := 0
	for id := range gates {
		p := &gates[id]
		if p.Kind != KindProposition || p.Tags != 0 {
			continue
		}
		if len(p.Inputs) != 1 || len(p.Outputs) != 1 {
			continue
		}
		in, out := p.Inputs[0], p.Outputs[0]
		replace(gates[in].Outputs, id, out)
		replace(gates[out].Inputs, id, in)
		p.Inputs, p.Outputs = nil, nil
		removed[id] = true
		trimmed++
	}
	if trimmed == 0 {
		return g, 0
	}

	remap := make([]int, len(gates))
	next := 0
	for id := range gates {
		if removed[id] {
			remap[id] = -1
			continue
		}
		remap[id] = next
		next++
	}

	out := &Graph{
		gates:      make([]Gate, 0, next),
		roles:      g.roles,
		bases:      remapAll(g.bases, remap),
		inputs:     make([][]int, len(g.roles)),
		legals:     make([][]int, len(g.roles)),
		goals:      make([][]int, len(g.roles)),
		legalInput: make(map[int]int, len(g.legalInput)),
		init:       remapOne(g.init, remap),
		terminal:   remapOne(g.terminal, remap),
	}
	for id := range gates {
		if removed[id] {
			continue
		}
		gate := gates[id]
		gate.ID = remap[id]
		gate.Inputs = remapAll(gate.Inputs, remap)
		gate.Outputs = remapAll(gate.Outputs, remap)
		out.gates = append(out.gates, gate)
	}
	for r := range g.roles {
		out.inputs[r] = remapAll(g.inputs[r], remap)
		out.legals[r] = remapAll(g.legals[r], remap)
		out.goals[r] = remapAll(g.goals[r], remap)
	}
	out.inputByKey = make([]map[game.Move]int, len(g.roles))
	for r, byMove := range g.inputByKey {
		out.inputByKey[r] = make(map[game.Move]int, len(byMove))
		for move, id := range byMove {
			out.inputByKey[r][move] = remap[id]
		}
	}
	for legal, in := range g.legalInput {
		out.legalInput[remap[legal]] = remap[in]
	}
	// Splicing never introduces a cycle, so the order is always recomputable.
	out.order, _ = topoOrder(out.gates)
	return out, trimmed
}

func replace(ids []int, old, new int) {
	for i, id := range ids {
		if id == old {
			ids[i] = new
			return
		}
	}
}

func remapOne(id int, remap []int) int {
	if id < 0 {
		return id
	}
	return remap[id]
}

func remapAll(ids []int, remap []int) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = remap[id]
	}
	return out
}
