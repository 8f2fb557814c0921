package games

import (
	"ggp/circuit"
	"ggp/game"
)

// Duel is a two-ply zero-sum game. White picks left or right, then black
// picks up or down. Right wins for white outright; after left, black wins
// by playing up.
func Duel() (*circuit.Graph, error) {
	const (
		white game.Role = "white"
		black game.Role = "black"
	)
	b := circuit.NewBuilder(white, black)
	steps := stepChain(b, 3)
	first, second, third := steps[0], steps[1], steps[2]

	wentLeft := b.Base("left")
	wentRight := b.Base("right")
	wentUp := b.Base("up")

	wLeft := b.Input(white, "left")
	wRight := b.Input(white, "right")
	b.Input(white, "noop")
	bUp := b.Input(black, "up")
	b.Input(black, "down")
	b.Input(black, "noop")

	b.Legal(white, "left", first)
	b.Legal(white, "right", first)
	b.Legal(white, "noop", second)
	b.Legal(black, "up", second)
	b.Legal(black, "down", second)
	b.Legal(black, "noop", first)

	b.Next(wentLeft, b.Or(wLeft, wentLeft))
	b.Next(wentRight, b.Or(wRight, wentRight))
	b.Next(wentUp, b.View("black_up", bUp))

	b.Terminal(b.Or(third))

	whiteWins := b.Or(wentRight, b.And(wentLeft, b.Not(wentUp)))
	whiteLoses := b.Not(whiteWins)
	b.Goal(white, 100, whiteWins)
	b.Goal(white, 0, whiteLoses)
	b.Goal(black, 100, whiteLoses)
	b.Goal(black, 0, whiteWins)
	return b.Build()
}
