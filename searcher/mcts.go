package searcher

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"ggp/experiments/metrics"
	"ggp/game"
	"ggp/propnet"
)

// Evaluator scores a state for the searching role. It is only called from
// the goroutine driving the search.
type Evaluator interface {
	Evaluate(state game.State) float64
}

type Option func(mcts *MCTS)

// MCTS is a Monte Carlo tree search with an embedded minimax prover. The tree
// is owned by the goroutine calling Search; only depth charges fan out.
type MCTS struct {
	machine    *propnet.Machine
	role       game.Role
	singleRole bool

	goroutines  int
	charges     int
	cutoff      int
	cycles      int
	exploration float64
	decayFloor  float64
	decayRate   float64
	seed        uint64

	heuristic Evaluator
	workers   []*worker
	root      *node
	metrics   metrics.Collector
	logger    zerolog.Logger
}

func WithGoroutines(goroutines int) Option {
	return func(m *MCTS) {
		if goroutines > 0 {
			m.goroutines = goroutines
		}
	}
}

// WithCharges sets the number of depth charges each worker runs per cycle.
func WithCharges(charges int) Option {
	return func(m *MCTS) {
		if charges > 0 {
			m.charges = charges
		}
	}
}

// WithCutoff bounds depth charges in games without a detectable step counter.
func WithCutoff(depth int) Option {
	return func(m *MCTS) {
		if depth > 0 {
			m.cutoff = depth
		}
	}
}

// WithCycles stops each search after the given number of cycles.
func WithCycles(cycles int) Option {
	return func(m *MCTS) {
		if cycles > 0 {
			m.cycles = cycles
		}
	}
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c >= 0 {
			m.exploration = c
		}
	}
}

func WithDecay(floor, rate float64) Option {
	return func(m *MCTS) {
		m.decayFloor = floor
		m.decayRate = rate
	}
}

func WithHeuristics(h Evaluator) Option {
	return func(m *MCTS) {
		m.heuristic = h
	}
}

func WithMetrics(collector metrics.Collector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *MCTS) {
		m.logger = logger
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.seed = seed
	}
}

// NewMCTS builds a searcher playing role. Every worker gets its own fork of
// machine. It panics on an unknown role or an invalid configuration.
func NewMCTS(machine *propnet.Machine, role game.Role, options ...Option) *MCTS {
	m := &MCTS{ // Default values
		machine:     machine,
		role:        role,
		singleRole:  len(machine.Roles()) == 1,
		goroutines:  1,
		charges:     1,
		cutoff:      DefaultCutoff,
		exploration: Exploration,
		decayFloor:  DecayFloor,
		decayRate:   DecayRate,
		seed:        uint64(time.Now().UnixNano()),
		metrics:     metrics.NewDummyCollector(),
		logger:      log.Logger,
	}
	for _, option := range options {
		option(m)
	}
	if game.RoleIndex(machine.Roles(), role) < 0 {
		panic(fmt.Sprintf("role %q does not play this game", role))
	}
	if m.decayFloor <= 0 || m.decayFloor > 1 || m.decayRate < 0 {
		panic("decay floor must be in (0, 1] and decay rate non-negative")
	}
	if steps, ok := machine.Graph().StepCounter(); ok {
		m.cutoff = steps + 1
	}

	m.workers = make([]*worker, m.goroutines)
	for i := range m.workers {
		w := &worker{rng: rand.New(rand.NewSource(m.seed + uint64(i)))}
		if i == 0 {
			w.machine = machine
		} else {
			w.machine = machine.Fork()
		}
		m.workers[i] = w
	}
	return m
}

func (m *MCTS) Cutoff() int {
	return m.cutoff
}

// Search grows the tree at state until the deadline passes, the cycle limit
// is hit or the root is solved.
func (m *MCTS) Search(state game.State, deadline time.Time) metrics.SearchMetric {
	m.findRoot(state)
	m.metrics.Start(m.goroutines, m.cutoff)

	cycles := 0
	for !m.root.solved && time.Now().Before(deadline) {
		if m.cycles > 0 && cycles >= m.cycles {
			break
		}
		m.cycle(deadline)
		m.metrics.AddCycle()
		cycles++
	}

	metric := m.metrics.Complete(m.root.solved)
	m.logger.Info().
		Str("role", string(m.role)).
		Int("cycles", cycles).
		Int("visits", m.root.visits).
		Float64("utility", m.root.utility).
		Bool("solved", m.root.solved).
		Msg("search complete")
	return metric
}

func (m *MCTS) cycle(deadline time.Time) {
	n := m.selectNode()
	if time.Now().After(deadline) {
		return
	}
	m.expand(n)
	if time.Now().After(deadline) {
		return
	}
	score := m.simulate(n.state, deadline)
	if time.Now().After(deadline) {
		return
	}
	backup(n, score)
}

// findRoot keeps the root if it already stands at state, promotes a
// grandchild at state, or starts a new tree.
func (m *MCTS) findRoot(state game.State) {
	if m.root != nil && m.root.state.Equal(state) {
		m.metrics.SetTreeReset(false)
		return
	}
	if root := m.traverse(state); root != nil {
		root.parent = nil
		root.index = -1
		m.root = root
		m.metrics.SetTreeReset(false)
		return
	}
	m.root = m.newNode(nil, 0, nil, state)
	m.metrics.SetTreeReset(true)
}

func (m *MCTS) traverse(state game.State) *node {
	if m.root == nil {
		return nil
	}
	for _, child := range m.root.children {
		for _, grandChild := range child.children {
			if grandChild.state.Equal(state) {
				return grandChild
			}
		}
	}
	return nil
}

func (m *MCTS) newNode(parent *node, index int, joint game.JointMove, state game.State) *node {
	return m.finalize(newMax(parent, index, joint, state))
}

// expand adds a min child per legal move and, below each, a max grandchild
// per joint move consistent with it.
func (m *MCTS) expand(n *node) {
	if n.solved || n.terminal || len(n.children) > 0 {
		return
	}

	moves := m.machine.LegalMoves(n.state, m.role)
	children := make([]*node, 0, len(moves))
	for _, move := range moves {
		joints, err := game.LegalJointMoves(m.machine, n.state, m.role, move)
		if err != nil {
			m.logger.Warn().Err(err).Str("move", string(move)).Msg("skipping move without joint moves")
			continue
		}
		child := newMin(n, len(children), move)
		grandChildren := make([]*node, len(joints))
		for j, joint := range joints {
			next, err := m.machine.NextState(n.state, joint)
			if err != nil {
				m.logger.Warn().Err(err).Msg("skipping move without a successor")
				grandChildren = nil
				break
			}
			grandChildren[j] = newMax(child, j, joint, next)
		}
		if grandChildren == nil {
			continue
		}
		children = append(children, child)
		child.setChildren(grandChildren)
		for _, g := range grandChildren {
			m.finalize(g)
			child.heuristic += g.heuristic / float64(len(grandChildren))
		}
	}
	n.setChildren(children)
	for _, child := range children {
		// A terminal loss among the replies proves the move lost, whatever
		// its siblings do.
		for _, g := range child.children {
			settle(g)
		}
		settle(child)
	}
	settle(n)
}

// finalize solves a freshly created max node at a terminal state and scores
// it with the heuristic otherwise.
func (m *MCTS) finalize(n *node) *node {
	if m.machine.IsTerminal(n.state) {
		n.terminal = true
		n.solve(float64(m.machine.Goal(n.state, m.role)))
		return n
	}
	if m.heuristic != nil {
		n.heuristic = m.heuristic.Evaluate(n.state)
	}
	return n
}
