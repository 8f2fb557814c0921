package circuit

import (
	"errors"
	"fmt"

	"ggp/game"
)

var (
	ErrCombinationalCycle = errors.New("combinational cycle")
	ErrMalformedGate      = errors.New("malformed gate")
	ErrUnknownGate        = errors.New("unknown gate")
)

// Graph is the compiled logic network of a game. Its topology never changes
// after Build; cached values live in the evaluators built on top of it.
type Graph struct {
	gates []Gate
	roles []game.Role

	bases      []int
	inputs     [][]int
	inputByKey []map[game.Move]int
	legals     [][]int
	goals      [][]int
	legalInput map[int]int

	init     int
	terminal int
	order    []int
}

func (g *Graph) Len() int {
	return len(g.gates)
}

// Gate returns the gate with the given ID. The result must not be modified.
func (g *Graph) Gate(id int) *Gate {
	return &g.gates[id]
}

func (g *Graph) Roles() []game.Role {
	return g.roles
}

func (g *Graph) RoleIndex(role game.Role) int {
	return game.RoleIndex(g.roles, role)
}

// Bases returns base proposition IDs in state slot order.
func (g *Graph) Bases() []int {
	return g.bases
}

// Inputs returns the input proposition IDs of a role in construction order.
func (g *Graph) Inputs(role int) []int {
	return g.inputs[role]
}

func (g *Graph) InputFor(role int, move game.Move) (int, bool) {
	id, ok := g.inputByKey[role][move]
	return id, ok
}

// Legals returns the legal proposition IDs of a role in construction order.
func (g *Graph) Legals(role int) []int {
	return g.legals[role]
}

func (g *Graph) Goals(role int) []int {
	return g.goals[role]
}

// LegalInput maps a legal proposition to the input proposition of the same move.
func (g *Graph) LegalInput(legal int) (int, bool) {
	id, ok := g.legalInput[legal]
	return id, ok
}

// Init returns the init proposition, or -1.
func (g *Graph) Init() int {
	return g.init
}

// Terminal returns the terminal proposition, or -1.
func (g *Graph) Terminal() int {
	return g.terminal
}

// Order is a topological order of the combinational layer: every gate comes
// after its inputs, ignoring edges that leave transitions.
func (g *Graph) Order() []int {
	return g.order
}

// Builder assembles a Graph. The first construction error is kept and
// reported by Build.
type Builder struct {
	g   *Graph
	err error
}

func NewBuilder(roles ...game.Role) *Builder {
	g := &Graph{
		roles:      append([]game.Role(nil), roles...),
		inputs:     make([][]int, len(roles)),
		inputByKey: make([]map[game.Move]int, len(roles)),
		legals:     make([][]int, len(roles)),
		goals:      make([][]int, len(roles)),
		legalInput: map[int]int{},
		init:       -1,
		terminal:   -1,
	}
	for i := range roles {
		g.inputByKey[i] = map[game.Move]int{}
	}
	return &Builder{g: g}
}

func (b *Builder) fail(err error) int {
	if b.err == nil {
		b.err = err
	}
	return -1
}

func (b *Builder) add(gate Gate, inputs ...int) int {
	if b.err != nil {
		return -1
	}
	id := len(b.g.gates)
	gate.ID = id
	gate.Role = -1
	for _, in := range inputs {
		if in < 0 || in >= id {
			return b.fail(fmt.Errorf("%s input %d: %w", gate.Kind, in, ErrUnknownGate))
		}
	}
	b.g.gates = append(b.g.gates, gate)
	for _, in := range inputs {
		b.connect(in, id)
	}
	return id
}

func (b *Builder) connect(from, to int) {
	b.g.gates[from].Outputs = append(b.g.gates[from].Outputs, to)
	b.g.gates[to].Inputs = append(b.g.gates[to].Inputs, from)
}

func (b *Builder) role(role game.Role) int {
	r := b.g.RoleIndex(role)
	if r < 0 {
		b.fail(fmt.Errorf("role %q: %w", role, game.ErrUnknownRole))
	}
	return r
}

func (b *Builder) And(inputs ...int) int {
	return b.add(Gate{Kind: KindAnd}, inputs...)
}

func (b *Builder) Or(inputs ...int) int {
	return b.add(Gate{Kind: KindOr}, inputs...)
}

func (b *Builder) Not(input int) int {
	return b.add(Gate{Kind: KindNot}, input)
}

func (b *Builder) Const(value bool) int {
	return b.add(Gate{Kind: KindConstant, Value: value})
}

// View adds an untagged proposition fed by input.
func (b *Builder) View(name string, input int) int {
	return b.add(Gate{Kind: KindProposition, Name: name}, input)
}

// Base adds a base proposition; its slot in the state is its creation order.
func (b *Builder) Base(name string) int {
	id := b.add(Gate{Kind: KindProposition, Tags: TagBase, Name: name})
	if id >= 0 {
		b.g.bases = append(b.g.bases, id)
	}
	return id
}

// Next feeds base from the value of from in the previous state.
func (b *Builder) Next(base, from int) int {
	if base < 0 || base >= len(b.g.gates) || !b.g.gates[base].Tags.Has(TagBase) {
		return b.fail(fmt.Errorf("next of gate %d: not a base: %w", base, ErrMalformedGate))
	}
	if len(b.g.gates[base].Inputs) > 0 {
		return b.fail(fmt.Errorf("base %s already has a transition: %w", b.g.gates[base].Name, ErrMalformedGate))
	}
	t := b.add(Gate{Kind: KindTransition}, from)
	if t >= 0 {
		b.connect(t, base)
	}
	return t
}

func (b *Builder) Input(role game.Role, move game.Move) int {
	r := b.role(role)
	if r < 0 {
		return -1
	}
	if _, ok := b.g.inputByKey[r][move]; ok {
		return b.fail(fmt.Errorf("duplicate input %s/%s: %w", role, move, ErrMalformedGate))
	}
	id := b.add(Gate{Kind: KindProposition, Tags: TagInput, Name: fmt.Sprintf("does(%s,%s)", role, move), Move: move})
	if id >= 0 {
		b.g.gates[id].Role = r
		b.g.inputs[r] = append(b.g.inputs[r], id)
		b.g.inputByKey[r][move] = id
	}
	return id
}

func (b *Builder) Legal(role game.Role, move game.Move, from int) int {
	r := b.role(role)
	if r < 0 {
		return -1
	}
	id := b.add(Gate{Kind: KindProposition, Tags: TagLegal, Name: fmt.Sprintf("legal(%s,%s)", role, move), Move: move}, from)
	if id >= 0 {
		b.g.gates[id].Role = r
		b.g.legals[r] = append(b.g.legals[r], id)
	}
	return id
}

func (b *Builder) Goal(role game.Role, value int, from int) int {
	r := b.role(role)
	if r < 0 {
		return -1
	}
	if value < 0 || value > 100 {
		return b.fail(fmt.Errorf("goal value %d out of range: %w", value, ErrMalformedGate))
	}
	id := b.add(Gate{Kind: KindProposition, Tags: TagGoal, Name: fmt.Sprintf("goal(%s,%d)", role, value), Goal: value}, from)
	if id >= 0 {
		b.g.gates[id].Role = r
		b.g.goals[r] = append(b.g.goals[r], id)
	}
	return id
}

func (b *Builder) Terminal(from int) int {
	if b.g.terminal >= 0 {
		return b.fail(fmt.Errorf("duplicate terminal: %w", ErrMalformedGate))
	}
	id := b.add(Gate{Kind: KindProposition, Tags: TagTerminal, Name: "terminal"}, from)
	b.g.terminal = id
	return id
}

func (b *Builder) Init() int {
	if b.g.init >= 0 {
		return b.g.init
	}
	id := b.add(Gate{Kind: KindProposition, Tags: TagInit, Name: "init"})
	b.g.init = id
	return id
}

// Build validates the circuit and returns the finished graph. The builder
// must not be used afterwards.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	g := b.g
	b.g = nil
	for i := range g.gates {
		if err := validate(&g.gates[i], g); err != nil {
			return nil, err
		}
	}
	for r := range g.roles {
		for _, legal := range g.legals[r] {
			in, ok := g.inputByKey[r][g.gates[legal].Move]
			if !ok {
				return nil, fmt.Errorf("%s has no input: %w", g.gates[legal].Name, ErrMalformedGate)
			}
			g.legalInput[legal] = in
		}
	}
	order, err := topoOrder(g.gates)
	if err != nil {
		return nil, err
	}
	g.order = order
	return g, nil
}

func validate(gate *Gate, g *Graph) error {
	n := len(gate.Inputs)
	switch gate.Kind {
	case KindNot:
		if n != 1 {
			return fmt.Errorf("%s has %d inputs: %w", gate, n, ErrMalformedGate)
		}
	case KindTransition:
		if n != 1 {
			return fmt.Errorf("%s has %d inputs: %w", gate, n, ErrMalformedGate)
		}
		for _, o := range gate.Outputs {
			if !g.gates[o].Tags.Has(TagBase) {
				return fmt.Errorf("%s feeds non-base %s: %w", gate, &g.gates[o], ErrMalformedGate)
			}
		}
	case KindConstant:
		if n != 0 {
			return fmt.Errorf("%s has %d inputs: %w", gate, n, ErrMalformedGate)
		}
	case KindProposition:
		switch {
		case gate.Tags.Has(TagInput), gate.Tags.Has(TagInit):
			if n != 0 {
				return fmt.Errorf("%s has %d inputs: %w", gate, n, ErrMalformedGate)
			}
		case gate.Tags.Has(TagBase):
			if n > 1 || (n == 1 && g.gates[gate.Inputs[0]].Kind != KindTransition) {
				return fmt.Errorf("%s must be fed by one transition: %w", gate, ErrMalformedGate)
			}
		default:
			if n != 1 {
				return fmt.Errorf("%s has %d inputs: %w", gate, n, ErrMalformedGate)
			}
		}
	}
	return nil
}

// topoOrder runs Kahn's algorithm over the combinational edges.
func topoOrder(gates []Gate) ([]int, error) {
	indegree := make([]int, len(gates))
	for i := range gates {
		if gates[i].Kind == KindTransition {
			continue
		}
		for _, o := range gates[i].Outputs {
			indegree[o]++
		}
	}
	queue := make([]int, 0, len(gates))
	for i, d := range indegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	order := make([]int, 0, len(gates))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		if gates[id].Kind == KindTransition {
			continue
		}
		for _, o := range gates[id].Outputs {
			indegree[o]--
			if indegree[o] == 0 {
				queue = append(queue, o)
			}
		}
	}
	if len(order) != len(gates) {
		return nil, fmt.Errorf("%d gates unordered: %w", len(gates)-len(order), ErrCombinationalCycle)
	}
	return order, nil
}
