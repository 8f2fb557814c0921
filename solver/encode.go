// Package solver hands single-player games to an external answer set solver
// and turns the model it prints back into a move plan.
package solver

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultHorizon bounds the plan when the game has no detectable step counter.
const DefaultHorizon = 100

// auxiliary clauses make every role pick one legal move per step until the
// game terminates, and require termination with a goal of 100.
var auxiliary = []string{
	"1 { does(R,M,T) : input(R,M) } 1 :- role(R), not terminated(T), time(T).",
	"terminated(T) :- terminal(T), time(T).",
	"terminated(T+1) :- terminated(T), time(T).",
	":- does(R,M,T), not legal(R,M,T).",
	":- 0 { terminated(T) : time(T) } 0.",
	":- terminated(T), not terminated(T-1), role(R), not goal(R,100,T).",
}

// Encode writes the time-indexed rule sentences as an answer set program.
// Sentences use ?X variables and T as the step variable, without the final
// period.
func Encode(w io.Writer, sentences []string, horizon int) error {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	bw := bufio.NewWriter(w)
	for _, s := range sentences {
		if _, err := bw.WriteString(rewrite(s) + "\n"); err != nil {
			return err
		}
	}
	for _, clause := range auxiliary {
		if _, err := bw.WriteString(clause + "\n"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "time(1..%d).\n", horizon); err != nil {
		return err
	}
	return bw.Flush()
}

// rewrite renames variables and guards sentences that mention the step.
func rewrite(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "?", "Var")
	if strings.Contains(s, ",T)") || strings.Contains(s, "(T)") {
		if strings.Contains(s, ":-") {
			s += ", time(T)"
		} else {
			s += " :- time(T)"
		}
	}
	return s + "."
}
