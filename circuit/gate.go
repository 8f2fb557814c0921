package circuit

import (
	"fmt"

	"ggp/game"
)

type Kind uint8

const (
	KindProposition Kind = iota
	KindAnd
	KindOr
	KindNot
	KindTransition
	KindConstant
)

func (k Kind) String() string {
	switch k {
	case KindProposition:
		return "prop"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	case KindTransition:
		return "transition"
	case KindConstant:
		return "const"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Tag marks the semantic roles a proposition plays.
type Tag uint8

const (
	TagBase Tag = 1 << iota
	TagInput
	TagLegal
	TagGoal
	TagInit
	TagTerminal
)

func (t Tag) Has(flag Tag) bool {
	return t&flag != 0
}

// Gate is a node of the circuit. Only the payload relevant to Kind and Tags
// is populated: Role and Move for input and legal propositions, Goal for goal
// propositions, Value for constants.
type Gate struct {
	ID      int
	Kind    Kind
	Tags    Tag
	Name    string
	Inputs  []int
	Outputs []int

	Role  int
	Move  game.Move
	Goal  int
	Value bool
}

func (g *Gate) String() string {
	if g.Name != "" {
		return fmt.Sprintf("%s#%d(%s)", g.Kind, g.ID, g.Name)
	}
	return fmt.Sprintf("%s#%d", g.Kind, g.ID)
}

func (g *Gate) single() int {
	if len(g.Inputs) != 1 {
		return -1
	}
	return g.Inputs[0]
}
