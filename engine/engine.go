package engine

import "ggp/experiments/metrics"

const MaxTurns = 10000

type Engine interface {
	// Run plays a match until a terminal state or the turn limit is reached
	Run() (metrics.GameMetric, []metrics.MoveMetric, error)
}
