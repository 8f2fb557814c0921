package games

import (
	"ggp/circuit"
	"ggp/game"
)

// Trap is a two-role game where one of white's moves lets black end the game
// at once. White opens with risky or safe. Safe ends the game in a draw.
// After risky, black either plays win, which ends the game in black's favour,
// or passes, and the game then runs to the last step with white winning.
func Trap(steps int) (*circuit.Graph, error) {
	const (
		white game.Role = "white"
		black game.Role = "black"
	)
	b := circuit.NewBuilder(white, black)
	chain := stepChain(b, steps)
	first, second, last := chain[0], chain[1], chain[len(chain)-1]

	wentRisky := b.Base("risky")
	wentSafe := b.Base("safe")
	won := b.Base("won")

	wRisky := b.Input(white, "risky")
	wSafe := b.Input(white, "safe")
	b.Input(white, "noop")
	bWin := b.Input(black, "win")
	b.Input(black, "pass")
	b.Input(black, "pass2")
	b.Input(black, "noop")

	blackTurn := b.And(second, wentRisky)
	b.Legal(white, "risky", first)
	b.Legal(white, "safe", first)
	b.Legal(white, "noop", b.Not(first))
	b.Legal(black, "win", blackTurn)
	b.Legal(black, "pass", blackTurn)
	b.Legal(black, "pass2", blackTurn)
	b.Legal(black, "noop", b.Not(blackTurn))

	b.Next(wentRisky, b.Or(wRisky, wentRisky))
	b.Next(wentSafe, b.Or(wSafe, wentSafe))
	b.Next(won, b.Or(bWin, won))

	b.Terminal(b.Or(won, wentSafe, last))

	whiteWins := b.And(wentRisky, b.Not(won))
	b.Goal(white, 100, whiteWins)
	b.Goal(white, 50, wentSafe)
	b.Goal(white, 0, won)
	b.Goal(black, 100, won)
	b.Goal(black, 50, wentSafe)
	b.Goal(black, 0, whiteWins)
	return b.Build()
}
