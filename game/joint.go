package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// LegalJointMoves enumerates every joint move in which role plays move and
// every other role plays one of its legal moves. Enumeration order is the
// odometer order over roles, last role varying fastest.
func LegalJointMoves(sm StateMachine, state State, role Role, move Move) ([]JointMove, error) {
	roles := sm.Roles()
	options := make([][]Move, len(roles))
	for i, r := range roles {
		if r == role {
			options[i] = []Move{move}
			continue
		}
		options[i] = sm.LegalMoves(state, r)
		if len(options[i]) == 0 {
			return nil, fmt.Errorf("role %s: %w", r, ErrNoLegalMoves)
		}
	}

	total := 1
	for _, o := range options {
		total *= len(o)
	}
	joints := make([]JointMove, 0, total)
	counter := make([]int, len(roles))
	for n := 0; n < total; n++ {
		joint := make(JointMove, len(roles))
		for i, o := range options {
			joint[i] = o[counter[i]]
		}
		joints = append(joints, joint)
		for i := len(counter) - 1; i >= 0; i-- {
			counter[i]++
			if counter[i] < len(options[i]) {
				break
			}
			counter[i] = 0
		}
	}
	return joints, nil
}

// RandomJointMove picks a uniformly random legal move for every role.
func RandomJointMove(sm StateMachine, state State, rng *rand.Rand) (JointMove, error) {
	roles := sm.Roles()
	joint := make(JointMove, len(roles))
	for i, r := range roles {
		moves := sm.LegalMoves(state, r)
		if len(moves) == 0 {
			return nil, fmt.Errorf("role %s: %w", r, ErrNoLegalMoves)
		}
		joint[i] = moves[rng.Intn(len(moves))]
	}
	return joint, nil
}

func RandomNextState(sm StateMachine, state State, rng *rand.Rand) (State, error) {
	joint, err := RandomJointMove(sm, state, rng)
	if err != nil {
		return State{}, err
	}
	return sm.NextState(state, joint)
}
