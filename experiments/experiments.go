// Package experiments pits differently configured players against each other
// on the built-in games and stores the results as CSV.
package experiments

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ggp/agent"
	"ggp/config"
	"ggp/engine"
	"ggp/experiments/metrics"
	"ggp/games"
)

const (
	NumGames   = 10 // Per match up
	TimeBudget = 200 * time.Millisecond
)

// Settings are shared by every experiment.
type Settings struct {
	Game   string
	Games  int           // Per match up
	Budget time.Duration // Search time per move
	Root   string        // Output directory
	Base   config.Config
	Logger zerolog.Logger
}

func DefaultSettings(game, root string) Settings {
	return Settings{
		Game:   game,
		Games:  NumGames,
		Budget: TimeBudget,
		Root:   root,
		Base:   config.Default(),
		Logger: log.Logger,
	}
}

var registry = map[string]func(s Settings) (string, error){
	"parallelization": RunParallelizationExperiment,
	"cutoff":          RunCutoffExperiment,
	"heuristics":      RunHeuristicsExperiment,
	"throughput":      RunThroughputExperiment,
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run runs the named experiment and returns the directory holding its results.
func Run(name string, s Settings) (string, error) {
	run, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("unknown experiment %q", name)
	}
	return run(s)
}

// RunParallelizationExperiment pairs agents with more workers against the
// sequential baseline.
func RunParallelizationExperiment(s Settings) (string, error) {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: s.Budget, Charges: 1}
	configs := []metrics.AgentConfig{
		{ID: 1, Goroutines: 2, Duration: s.Budget, Charges: 1},
		{ID: 2, Goroutines: 4, Duration: s.Budget, Charges: 1},
		{ID: 3, Goroutines: 8, Duration: s.Budget, Charges: 1},
	}
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}
	return runExperiment(s, "parallelization", append(configs, baseline), matchUps)
}

// RunCutoffExperiment pairs the full playout agent against agents whose depth
// charges stop early.
func RunCutoffExperiment(s Settings) (string, error) {
	baseline := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: s.Budget, Charges: 1} // Full playouts
	configs := []metrics.AgentConfig{
		{ID: 1, Goroutines: 1, Duration: s.Budget, Charges: 1, Cutoff: 2},
		{ID: 2, Goroutines: 1, Duration: s.Budget, Charges: 1, Cutoff: 5},
		{ID: 3, Goroutines: 1, Duration: s.Budget, Charges: 1, Cutoff: 10},
	}
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, []metrics.AgentConfig{baseline, config})
	}
	return runExperiment(s, "cutoff", append(configs, baseline), matchUps)
}

// RunHeuristicsExperiment pairs a calibrated agent against a plain one, each
// seat in turn.
func RunHeuristicsExperiment(s Settings) (string, error) {
	plain := metrics.AgentConfig{ID: 0, Goroutines: 1, Duration: s.Budget, Charges: 1}
	calibrated := metrics.AgentConfig{ID: 1, Goroutines: 1, Duration: s.Budget, Charges: 1, Heuristics: true}
	matchUps := [][]metrics.AgentConfig{{plain, calibrated}, {calibrated, plain}}
	return runExperiment(s, "heuristics", []metrics.AgentConfig{plain, calibrated}, matchUps)
}

func runExperiment(s Settings, name string, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) (string, error) {
	def, err := games.Lookup(s.Game)
	if err != nil {
		return "", err
	}
	graph, err := def.Build()
	if err != nil {
		return "", fmt.Errorf("building %s: %w", s.Game, err)
	}

	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}
	s.Logger.Info().Str("experiment", name).Str("game", s.Game).Msg("starting experiment")

	for mi, matchUp := range matchUps {
		// Single role games only seat the first agent.
		seats := matchUp
		if n := len(graph.Roles()); n < len(seats) {
			seats = seats[:n]
		}
		for i := 0; i < s.Games; i++ {
			agents := make([]agent.Agent, len(graph.Roles()))
			for r := range agents {
				agents[r] = createPlayer(s, seats[r%len(seats)])
			}
			e := engine.NewLocalEngine(s.Game, graph, agents,
				engine.WithRules(def.Rules),
				engine.WithClocks(s.Base.Match.StartClock, s.Budget+s.Base.Match.SafetyBuffer),
				engine.WithMaxTurns(s.Base.Match.MaxTurns),
				engine.WithLogger(s.Logger),
			)
			gameMetric, moveMetrics, err := e.Run()
			if err != nil {
				return "", fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}

			count++
			record := metrics.GameRecord{ID: count, Agent1: matchUp[0].ID, GameMetric: gameMetric}
			if len(matchUp) > 1 {
				record.Agent2 = matchUp[1].ID
			}
			gameRecords = append(gameRecords, record)
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{Game: count, MoveMetric: mm})
			}
			s.Logger.Info().
				Int("matchup", mi+1).
				Int("game", i+1).
				Ints("goals", gameMetric.Goals).
				Float64("charges_per_second", meanThroughput(moveMetrics)).
				Msg("completed game")
		}
	}
	s.Logger.Info().Str("experiment", name).Int("games", count).Msg("completed experiment")

	writer, err := metrics.NewWriter(s.Root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	return writer.Dir(), nil
}

func createPlayer(s Settings, config metrics.AgentConfig) *agent.Player {
	c := s.Base
	if config.Goroutines > 0 {
		c.Search.Goroutines = config.Goroutines
	}
	if config.Charges > 0 {
		c.Search.Charges = config.Charges
	}
	if config.Cutoff > 0 {
		c.Search.Cutoff = config.Cutoff
	}
	c.Heuristics.Enabled = config.Heuristics
	c.Solver.Enabled = false
	return agent.NewPlayer(c, agent.WithLogger(s.Logger))
}
