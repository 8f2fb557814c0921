package game

import (
	"errors"

	"ggp/utils"
)

// Role is one of the fixed participants of a match.
type Role string

// Move is an opaque action scoped to the role that plays it.
type Move string

// JointMove holds one move per role, indexed in role order.
type JointMove []Move

var (
	ErrNoLegalMoves = errors.New("role has no legal moves")
	ErrUnknownMove  = errors.New("move has no input proposition")
	ErrUnknownRole  = errors.New("unknown role")
)

// StateMachine answers rule queries for a game. Implementations are not
// required to be safe for concurrent use.
type StateMachine interface {
	Roles() []Role
	InitialState() State
	IsTerminal(state State) bool
	LegalMoves(state State, role Role) []Move
	// Goal returns the role's score in [0, 100]; 0 when no goal holds.
	Goal(state State, role Role) int
	NextState(state State, moves JointMove) (State, error)
}

// RoleIndex returns the position of role in roles, or -1.
func RoleIndex(roles []Role, role Role) int {
	return utils.FindIndex(roles, role)
}
