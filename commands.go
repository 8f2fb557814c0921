package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ggp/agent"
	"ggp/circuit"
	"ggp/engine"
	"ggp/experiments"
	"ggp/games"
	"ggp/propnet"
)

var (
	gameName   string
	opponents  string
	matches    int
	useSolver  bool
	goroutines int
	outDir     string
	numGames   int
	budget     time.Duration

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play local matches on a built-in game",
		RunE:  runPlay,
	}

	experimentCmd = &cobra.Command{
		Use:       "experiment [name]",
		Short:     "Run a self-play experiment and write CSV results",
		Args:      cobra.ExactArgs(1),
		ValidArgs: experiments.Names(),
		RunE:      runExperiment,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Print what the circuit of a built-in game reveals",
		RunE:  runAnalyze,
	}
)

func init() {
	gameUsage := "Game to play (" + strings.Join(games.Names(), ", ") + ")"
	for _, cmd := range []*cobra.Command{playCmd, experimentCmd, analyzeCmd} {
		cmd.Flags().StringVar(&gameName, "game", "nim", gameUsage)
	}

	playCmd.Flags().StringVar(&opponents, "agents", "player,player", "Comma separated agent per role: player or random")
	playCmd.Flags().IntVar(&matches, "matches", 1, "Number of matches")
	playCmd.Flags().BoolVar(&useSolver, "solver", false, "Try the answer set solver at match start")
	playCmd.Flags().IntVar(&goroutines, "goroutines", 0, "Depth charge workers per player (0 keeps the config)")

	experimentCmd.Flags().StringVar(&outDir, "out", "experiments/results", "Output directory")
	experimentCmd.Flags().IntVar(&numGames, "games", experiments.NumGames, "Games per matchup")
	experimentCmd.Flags().DurationVar(&budget, "budget", experiments.TimeBudget, "Search time per move")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	def, err := games.Lookup(gameName)
	if err != nil {
		return err
	}
	graph, err := def.Build()
	if err != nil {
		return err
	}
	if useSolver {
		cfg.Solver.Enabled = true
	}
	if goroutines > 0 {
		cfg.Search.Goroutines = goroutines
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	kinds := strings.Split(opponents, ",")
	roles := graph.Roles()
	for i := 0; i < matches; i++ {
		agents := make([]agent.Agent, len(roles))
		for r, role := range roles {
			kind := kinds[r%len(kinds)]
			switch kind {
			case "player":
				agents[r] = agent.NewPlayer(cfg, agent.WithMetrics(collectorFor(string(role))))
			case "random":
				agents[r] = agent.NewRandomAgent(uint64(time.Now().UnixNano()) + uint64(r))
			default:
				return fmt.Errorf("unknown agent %q", kind)
			}
		}

		e := engine.NewLocalEngine(def.Name, graph, agents,
			engine.WithRules(def.Rules),
			engine.WithClocks(cfg.Match.StartClock, cfg.Match.PlayClock),
			engine.WithMaxTurns(cfg.Match.MaxTurns),
		)
		gm, _, err := e.Run()
		if err != nil {
			return err
		}
		parts := make([]string, len(roles))
		for r, role := range roles {
			parts[r] = fmt.Sprintf("%s=%d", role, gm.Goals[r])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "match %d: %s after %d turns (%s)\n", i+1, strings.Join(parts, " "), gm.Turns, gm.Duration.Round(time.Millisecond))
	}
	return nil
}

func runExperiment(cmd *cobra.Command, args []string) error {
	s := experiments.DefaultSettings(gameName, outDir)
	s.Games = numGames
	s.Budget = budget
	s.Base = cfg
	s.Logger = log.Logger

	dir, err := experiments.Run(args[0], s)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "results written to %s\n", dir)
	return nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	def, err := games.Lookup(gameName)
	if err != nil {
		return err
	}
	graph, err := def.Build()
	if err != nil {
		return err
	}
	opt, trimmed := circuit.Optimize(graph)
	machine := propnet.New(opt)
	initial := machine.InitialState()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "game:        %s\n", def.Name)
	fmt.Fprintf(out, "gates:       %d (%d trimmed)\n", opt.Len(), trimmed)
	fmt.Fprintf(out, "bases:       %d\n", len(opt.Bases()))
	fmt.Fprintf(out, "zero-sum:    %t\n", opt.IsZeroSum())
	if steps, ok := opt.StepCounter(); ok {
		fmt.Fprintf(out, "steps:       %d\n", steps)
	} else {
		fmt.Fprintf(out, "steps:       unknown\n")
	}
	fmt.Fprintf(out, "terminal:    satisfiable=%t\n", opt.TerminalSatisfiable())
	for r, role := range opt.Roles() {
		moves := machine.LegalMoves(initial, role)
		fmt.Fprintf(out, "role %-8s useless-others=%d win-satisfiable=%t opening=%v\n",
			role, opt.UselessRoles(r), opt.GoalSatisfiable(r, 100), moves)
	}
	return nil
}
