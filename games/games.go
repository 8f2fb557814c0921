// Package games holds hand-compiled circuits for a few small games. They
// stand in for the output of a rule compiler in tests and on the command line.
package games

import (
	"errors"
	"fmt"
	"sort"

	"ggp/circuit"
)

var ErrUnknownGame = errors.New("unknown game")

// Game is a compiled circuit plus, where available, its rules as answer set
// sentences for the exact solver.
type Game struct {
	Name  string
	Build func() (*circuit.Graph, error)
	Rules []string
}

var registry = map[string]Game{
	"choice": {Name: "choice", Build: Choice, Rules: ChoiceRules},
	"duel":   {Name: "duel", Build: Duel},
	"nim":    {Name: "nim", Build: func() (*circuit.Graph, error) { return Nim(12) }},
	"parity": {Name: "parity", Build: func() (*circuit.Graph, error) { return Parity(4) }},
	"trap":   {Name: "trap", Build: func() (*circuit.Graph, error) { return Trap(20) }},
}

func Lookup(name string) (Game, error) {
	g, ok := registry[name]
	if !ok {
		return Game{}, fmt.Errorf("%q: %w", name, ErrUnknownGame)
	}
	return g, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Must panics if building the circuit failed. For fixtures only.
func Must(g *circuit.Graph, err error) *circuit.Graph {
	if err != nil {
		panic(err)
	}
	return g
}

// stepChain adds n bases where step(1) follows init and step(k) follows
// step(k-1). It returns them in order.
func stepChain(b *circuit.Builder, n int) []int {
	init := b.Init()
	steps := make([]int, n)
	for k := range steps {
		steps[k] = b.Base(fmt.Sprintf("step(%d)", k+1))
		if k == 0 {
			b.Next(steps[k], init)
		} else {
			b.Next(steps[k], steps[k-1])
		}
	}
	return steps
}
