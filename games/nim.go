package games

import (
	"fmt"

	"ggp/circuit"
	"ggp/game"
)

const maxTake = 3

// Nim is single-pile nim for two roles. The player to move takes one to
// three stones; whoever takes the last stone wins. The pile is one-hot
// encoded, so the game has 2*(pile+1) reachable states at most.
func Nim(pile int) (*circuit.Graph, error) {
	const (
		white game.Role = "white"
		black game.Role = "black"
	)
	roles := []game.Role{white, black}
	b := circuit.NewBuilder(roles...)
	init := b.Init()

	piles := make([]int, pile+1)
	for i := range piles {
		piles[i] = b.Base(fmt.Sprintf("pile(%d)", i))
	}
	control := []int{b.Base("control(white)"), b.Base("control(black)")}

	takes := make([][]int, len(roles))
	for r, role := range roles {
		takes[r] = make([]int, maxTake+1)
		for k := 1; k <= maxTake; k++ {
			takes[r][k] = b.Input(role, takeMove(k))
		}
		b.Input(role, "noop")
	}

	for r, role := range roles {
		for k := 1; k <= maxTake && k <= pile; k++ {
			b.Legal(role, takeMove(k), b.And(control[r], b.Or(piles[k:]...)))
		}
		b.Legal(role, "noop", b.View(fmt.Sprintf("waiting(%s)", role), control[1-r]))
	}

	took := make([]int, maxTake+1)
	for k := 1; k <= maxTake; k++ {
		took[k] = b.View(fmt.Sprintf("took(%d)", k), b.Or(takes[0][k], takes[1][k]))
	}
	for j := range piles {
		var from []int
		for k := 1; k <= maxTake && j+k <= pile; k++ {
			from = append(from, b.And(piles[j+k], took[k]))
		}
		if j == pile {
			from = append(from, init)
		}
		b.Next(piles[j], b.Or(from...))
	}
	b.Next(control[0], b.Or(init, control[1]))
	b.Next(control[1], b.View("passes(white)", control[0]))

	over := b.View("empty", piles[0])
	b.Terminal(over)
	for r, role := range roles {
		// The role to move at an empty pile did not take the last stone.
		won := b.And(over, control[1-r])
		b.Goal(role, 100, won)
		b.Goal(role, 0, b.Not(won))
	}
	return b.Build()
}

func takeMove(k int) game.Move {
	return game.Move(fmt.Sprintf("take(%d)", k))
}
