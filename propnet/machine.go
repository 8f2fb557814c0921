// Package propnet evaluates a compiled circuit incrementally. A Machine owns
// the mutable gate values; the graph is shared read-only, so concurrent users
// each Fork their own Machine.
package propnet

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"ggp/circuit"
	"ggp/game"
)

// Machine implements game.StateMachine over a circuit.Graph. It is not safe
// for concurrent use.
type Machine struct {
	g *circuit.Graph

	// val is the current value of every gate, prev the value last pushed to
	// its outputs, count the number of inputs whose pushed value is true.
	val   []bool
	prev  []bool
	count []int
	stack []int

	initial game.State
	zeroSum bool
}

var _ game.StateMachine = (*Machine)(nil)

// New settles the circuit from all-false and computes the initial state.
func New(g *circuit.Graph) *Machine {
	m := &Machine{
		g:       g,
		val:     make([]bool, g.Len()),
		prev:    make([]bool, g.Len()),
		count:   make([]int, g.Len()),
		stack:   make([]int, 0, g.Len()),
		zeroSum: g.IsZeroSum(),
	}
	for _, id := range g.Order() {
		m.refresh(id)
	}
	m.propagate()
	m.initial = m.computeInitial()
	return m
}

// Fork returns an independent Machine in the same settled condition.
func (m *Machine) Fork() *Machine {
	return &Machine{
		g:       m.g,
		val:     append([]bool(nil), m.val...),
		prev:    append([]bool(nil), m.prev...),
		count:   append([]int(nil), m.count...),
		stack:   make([]int, 0, cap(m.stack)),
		initial: m.initial,
		zeroSum: m.zeroSum,
	}
}

func (m *Machine) Graph() *circuit.Graph {
	return m.g
}

func (m *Machine) Roles() []game.Role {
	return m.g.Roles()
}

// IsZeroSum reports whether all goal values are drawn from {0, 50, 100}.
func (m *Machine) IsZeroSum() bool {
	return m.zeroSum
}

func (m *Machine) InitialState() game.State {
	return m.initial
}

func (m *Machine) IsTerminal(state game.State) bool {
	t := m.g.Terminal()
	if t < 0 {
		return false
	}
	m.load(state)
	return m.val[t]
}

func (m *Machine) LegalMoves(state game.State, role game.Role) []game.Move {
	r := m.g.RoleIndex(role)
	if r < 0 {
		return nil
	}
	m.load(state)
	var moves []game.Move
	for _, id := range m.g.Legals(r) {
		if m.val[id] {
			moves = append(moves, m.g.Gate(id).Move)
		}
	}
	return moves
}

// LegalCount is LegalMoves without the allocation.
func (m *Machine) LegalCount(state game.State, role game.Role) int {
	r := m.g.RoleIndex(role)
	if r < 0 {
		return 0
	}
	m.load(state)
	n := 0
	for _, id := range m.g.Legals(r) {
		if m.val[id] {
			n++
		}
	}
	return n
}

func (m *Machine) Goal(state game.State, role game.Role) int {
	r := m.g.RoleIndex(role)
	if r < 0 {
		return 0
	}
	m.load(state)
	for _, id := range m.g.Goals(r) {
		if m.val[id] {
			return m.g.Gate(id).Goal
		}
	}
	return 0
}

func (m *Machine) NextState(state game.State, moves game.JointMove) (game.State, error) {
	roles := m.g.Roles()
	if len(moves) != len(roles) {
		return game.State{}, fmt.Errorf("joint move has %d moves for %d roles: %w", len(moves), len(roles), game.ErrUnknownMove)
	}
	m.markBases(state)
	if err := m.markInputs(moves); err != nil {
		return game.State{}, err
	}
	m.propagate()
	return m.next(), nil
}

func (m *Machine) computeInitial() game.State {
	init := m.g.Init()
	m.markBases(game.State{})
	m.clearInputs()
	if init >= 0 {
		m.set(init, true)
	}
	m.propagate()
	s := m.next()
	if init >= 0 {
		m.set(init, false)
		m.propagate()
	}
	return s
}

// load marks the bases of state with every input cleared.
func (m *Machine) load(state game.State) {
	m.markBases(state)
	m.clearInputs()
	m.propagate()
}

func (m *Machine) markBases(state game.State) {
	for slot, id := range m.g.Bases() {
		m.set(id, state.Test(slot))
	}
}

func (m *Machine) clearInputs() {
	for r := range m.g.Roles() {
		for _, id := range m.g.Inputs(r) {
			m.set(id, false)
		}
	}
}

func (m *Machine) markInputs(moves game.JointMove) error {
	chosen := make([]int, len(moves))
	for r, move := range moves {
		id, ok := m.g.InputFor(r, move)
		if !ok {
			return fmt.Errorf("%s plays %q: %w", m.g.Roles()[r], move, game.ErrUnknownMove)
		}
		chosen[r] = id
	}
	for r := range m.g.Roles() {
		for _, id := range m.g.Inputs(r) {
			m.set(id, id == chosen[r])
		}
	}
	return nil
}

// next reads the successor state from the transitions feeding each base.
func (m *Machine) next() game.State {
	bases := m.g.Bases()
	bits := bitset.New(uint(len(bases)))
	for slot, id := range bases {
		inputs := m.g.Gate(id).Inputs
		if len(inputs) == 1 && m.val[inputs[0]] {
			bits.Set(uint(slot))
		}
	}
	return game.NewState(len(bases), bits)
}

func (m *Machine) set(id int, v bool) {
	if m.val[id] == v {
		return
	}
	m.val[id] = v
	m.stack = append(m.stack, id)
}

// refresh recomputes a gate from the pushed values of its inputs.
func (m *Machine) refresh(id int) {
	gate := m.g.Gate(id)
	var v bool
	switch gate.Kind {
	case circuit.KindConstant:
		v = gate.Value
	case circuit.KindAnd:
		v = m.count[id] == len(gate.Inputs)
	case circuit.KindOr:
		v = m.count[id] > 0
	case circuit.KindNot:
		v = !m.prev[gate.Inputs[0]]
	case circuit.KindTransition:
		m.val[id] = m.prev[gate.Inputs[0]]
		return
	case circuit.KindProposition:
		if gate.Tags.Has(circuit.TagBase) || len(gate.Inputs) == 0 {
			return
		}
		v = m.prev[gate.Inputs[0]]
	}
	m.set(id, v)
}

// propagate drains the work stack. A popped gate whose value equals the value
// it last pushed is a no-op; otherwise its outputs see the change. Transitions
// take the new value but stop there.
func (m *Machine) propagate() {
	for len(m.stack) > 0 {
		id := m.stack[len(m.stack)-1]
		m.stack = m.stack[:len(m.stack)-1]
		v := m.val[id]
		if v == m.prev[id] {
			continue
		}
		m.prev[id] = v
		for _, o := range m.g.Gate(id).Outputs {
			switch m.g.Gate(o).Kind {
			case circuit.KindAnd, circuit.KindOr:
				if v {
					m.count[o]++
				} else {
					m.count[o]--
				}
			}
			m.refresh(o)
		}
	}
}
