package games

import (
	"ggp/circuit"
	"ggp/game"
)

// Parity is a single-role game of n coin flips. The role scores 100 when an
// odd number of flips came up heads. Random play wins half the time whatever
// the position, and every non-terminal state offers exactly two moves.
func Parity(n int) (*circuit.Graph, error) {
	const flipper game.Role = "flipper"
	b := circuit.NewBuilder(flipper)
	steps := stepChain(b, n)
	last := steps[len(steps)-1]

	odd := b.Base("odd")
	heads := b.Input(flipper, "heads")
	tails := b.Input(flipper, "tails")

	open := b.Not(last)
	b.Legal(flipper, "heads", open)
	b.Legal(flipper, "tails", open)

	stay := b.And(odd, tails)
	flip := b.And(b.Not(odd), heads)
	b.Next(odd, b.Or(stay, flip))

	b.Terminal(b.Or(last))
	b.Goal(flipper, 100, b.And(last, odd))
	b.Goal(flipper, 0, b.And(last, b.Not(odd)))
	return b.Build()
}
