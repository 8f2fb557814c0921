package games

import (
	"ggp/circuit"
	"ggp/game"
)

// Choice is a single-role, single-step game: "left" scores 0 and "right"
// scores 100.
func Choice() (*circuit.Graph, error) {
	const robot game.Role = "robot"
	b := circuit.NewBuilder(robot)
	b.Init()

	done := b.Base("done")
	won := b.Base("won")
	left := b.Input(robot, "left")
	right := b.Input(robot, "right")

	open := b.Not(done)
	b.Legal(robot, "left", open)
	b.Legal(robot, "right", open)

	b.Next(done, b.Or(left, right))
	b.Next(won, b.View("chose_right", right))

	b.Terminal(done)
	b.Goal(robot, 100, won)
	b.Goal(robot, 0, b.Not(won))
	return b.Build()
}

// ChoiceRules is Choice written as answer set sentences indexed by time.
var ChoiceRules = []string{
	"role(robot)",
	"input(robot,left)",
	"input(robot,right)",
	"legal(?r,left,T) :- role(?r), not done(T)",
	"legal(?r,right,T) :- role(?r), not done(T)",
	"done(T+1) :- does(?r,?m,T)",
	"won(T+1) :- does(robot,right,T)",
	"terminal(T) :- done(T)",
	"goal(robot,100,T) :- won(T)",
	"goal(robot,0,T) :- not won(T)",
}
