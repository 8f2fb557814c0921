package solver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ggp/circuit"
	"ggp/game"
)

const (
	DefaultPath   = "clingo"
	DefaultMargin = 1500 * time.Millisecond
)

var (
	ErrIncompletePlan = errors.New("solver plan has gaps")
	ErrUnsatisfiable  = errors.New("no winning plan within the horizon")
	ErrNotApplicable  = errors.New("game has more than one relevant role")
	ErrNoTime         = errors.New("deadline leaves no time for the solver")
)

// Bridge runs an answer set solver binary on an encoded game.
type Bridge struct {
	// Path of the solver binary, looked up in PATH when not absolute.
	Path string
	// Margin is kept free before the deadline.
	Margin time.Duration
	Logger zerolog.Logger
}

func NewBridge(path string, margin time.Duration, logger zerolog.Logger) *Bridge {
	if path == "" {
		path = DefaultPath
	}
	return &Bridge{Path: path, Margin: margin, Logger: logger}
}

// Applicable reports whether role is the only role that matters, which is the
// only case the solver can plan for.
func Applicable(g *circuit.Graph, role game.Role) bool {
	r := g.RoleIndex(role)
	return r >= 0 && len(g.Roles())-g.UselessRoles(r) == 1
}

// Solve encodes sentences, runs the solver until deadline minus the margin and
// returns the role's moves in step order.
func (b *Bridge) Solve(ctx context.Context, g *circuit.Graph, role game.Role, sentences []string, deadline time.Time) ([]game.Move, error) {
	r := g.RoleIndex(role)
	if r < 0 {
		return nil, fmt.Errorf("role %s: %w", role, game.ErrUnknownRole)
	}
	if !Applicable(g, role) {
		return nil, ErrNotApplicable
	}
	stop := deadline.Add(-b.Margin)
	if !time.Now().Before(stop) {
		return nil, ErrNoTime
	}

	horizon, ok := g.StepCounter()
	if !ok {
		horizon = DefaultHorizon
	}

	f, err := os.CreateTemp("", "ggp-*.lp")
	if err != nil {
		return nil, fmt.Errorf("creating solver input: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)
	if err := Encode(f, sentences, horizon); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing solver input: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("writing solver input: %w", err)
	}

	ctx, cancel := context.WithDeadline(ctx, stop)
	defer cancel()

	b.Logger.Info().Str("role", string(role)).Int("horizon", horizon).Str("solver", b.Path).Msg("running solver")
	cmd := exec.CommandContext(ctx, b.Path, path)
	out, err := cmd.Output()
	// clingo reports satisfiability through its exit code, so the output is
	// parsed whatever the status unless the process could not run at all.
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("running %s: %w", b.Path, err)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("running %s: %w", b.Path, ctx.Err())
	}

	plan, err := Parse(strings.NewReader(string(out)), moveNames(g, r), role, len(g.Roles()) > 1)
	if err != nil {
		return nil, err
	}
	b.Logger.Info().Str("role", string(role)).Int("steps", len(plan)).Msg("solver found a plan")
	return plan, nil
}

// moveNames maps input proposition names to moves.
func moveNames(g *circuit.Graph, role int) map[string]game.Move {
	names := make(map[string]game.Move, len(g.Inputs(role)))
	for _, id := range g.Inputs(role) {
		gate := g.Gate(id)
		names[gate.Name] = gate.Move
	}
	return names
}

// Parse reads solver output and returns the plan of the last model printed.
// Atoms look like does(role,move,step), steps counting from 1. When several
// roles play only the given role's atoms are kept.
func Parse(r io.Reader, moves map[string]game.Move, role game.Role, multiRole bool) ([]game.Move, error) {
	var atoms []string
	satisfiable := false
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "Answer:"):
			atoms = atoms[:0]
			continue
		case line == "UNSATISFIABLE":
			return nil, ErrUnsatisfiable
		case line == "SATISFIABLE" || line == "OPTIMUM FOUND":
			satisfiable = true
			continue
		}
		for _, tok := range strings.Fields(line) {
			if !strings.HasPrefix(tok, "does(") {
				continue
			}
			if multiRole && !strings.HasPrefix(tok, "does("+string(role)+",") {
				continue
			}
			atoms = append(atoms, tok)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading solver output: %w", err)
	}
	if len(atoms) == 0 {
		if satisfiable {
			return nil, ErrIncompletePlan
		}
		return nil, ErrUnsatisfiable
	}

	plan := make([]game.Move, len(atoms))
	for _, atom := range atoms {
		cut := strings.LastIndexByte(atom, ',')
		if cut < 0 || !strings.HasSuffix(atom, ")") {
			return nil, fmt.Errorf("atom %s: %w", atom, ErrIncompletePlan)
		}
		step, err := strconv.Atoi(atom[cut+1 : len(atom)-1])
		if err != nil || step < 1 || step > len(plan) {
			return nil, fmt.Errorf("atom %s: %w", atom, ErrIncompletePlan)
		}
		move, ok := moves[atom[:cut]+")"]
		if !ok {
			return nil, fmt.Errorf("atom %s has no input: %w", atom, ErrIncompletePlan)
		}
		plan[step-1] = move
	}
	for i, m := range plan {
		if m == "" {
			return nil, fmt.Errorf("step %d: %w", i+1, ErrIncompletePlan)
		}
	}
	return plan, nil
}
