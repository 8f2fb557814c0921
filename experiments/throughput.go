package experiments

import (
	"ggp/experiments/metrics"
)

// RunThroughputExperiment plays each worker count against itself, for the
// same playing strength and similar game length, to measure depth charges per
// second.
func RunThroughputExperiment(s Settings) (string, error) {
	configs := []metrics.AgentConfig{
		{ID: 1, Goroutines: 1, Duration: s.Budget, Charges: 1},
		{ID: 2, Goroutines: 2, Duration: s.Budget, Charges: 1},
		{ID: 3, Goroutines: 4, Duration: s.Budget, Charges: 1},
		{ID: 4, Goroutines: 4, Duration: s.Budget, Charges: 4},
	}
	matchUps := [][]metrics.AgentConfig{}
	for _, config := range configs {
		matchUps = append(matchUps, []metrics.AgentConfig{config, config})
	}
	return runExperiment(s, "throughput", configs, matchUps)
}

// Throughput is the depth charge rate of one move.
func Throughput(m metrics.MoveMetric) float64 {
	if m.Duration <= 0 {
		return 0
	}
	return float64(m.Charges+m.FailedCharges) / m.Duration.Seconds()
}

// meanThroughput averages over the moves that ran a search.
func meanThroughput(moves []metrics.MoveMetric) float64 {
	total, n := 0.0, 0
	for _, m := range moves {
		if m.Duration > 0 {
			total += Throughput(m)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}
