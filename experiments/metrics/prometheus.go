package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromMetrics is the set of search metrics registered with one registry.
// Collectors for different roles share it.
type PromMetrics struct {
	cycles     *prometheus.CounterVec
	charges    *prometheus.CounterVec
	treeResets *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	solved     *prometheus.GaugeVec
}

func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	factory := promauto.With(reg)
	return &PromMetrics{
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ggp",
			Subsystem: "search",
			Name:      "cycles_total",
			Help:      "Select-expand-charge-backpropagate cycles completed",
		}, []string{"role"}),
		charges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ggp",
			Subsystem: "search",
			Name:      "depth_charges_total",
			Help:      "Depth charges by outcome (terminal, cutoff, failed)",
		}, []string{"role", "outcome"}),
		treeResets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ggp",
			Subsystem: "search",
			Name:      "tree_resets_total",
			Help:      "Searches that discarded the tree instead of re-rooting",
		}, []string{"role"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ggp",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Wall time spent per search",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"role"}),
		solved: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ggp",
			Subsystem: "search",
			Name:      "root_solved",
			Help:      "1 when the last search proved the root",
		}, []string{"role"}),
	}
}

// promCollector mirrors every event into Prometheus on top of the atomic
// counters.
type promCollector struct {
	collector
	role string
	m    *PromMetrics
}

func NewPrometheusCollector(m *PromMetrics, role string) Collector {
	return &promCollector{role: role, m: m}
}

func (p *promCollector) SetTreeReset(value bool) {
	p.collector.SetTreeReset(value)
	if value {
		p.m.treeResets.WithLabelValues(p.role).Inc()
	}
}

func (p *promCollector) AddCycle() {
	p.collector.AddCycle()
	p.m.cycles.WithLabelValues(p.role).Inc()
}

func (p *promCollector) AddCharge(full bool) {
	p.collector.AddCharge(full)
	outcome := "cutoff"
	if full {
		outcome = "terminal"
	}
	p.m.charges.WithLabelValues(p.role, outcome).Inc()
}

func (p *promCollector) AddFailedCharge() {
	p.collector.AddFailedCharge()
	p.m.charges.WithLabelValues(p.role, "failed").Inc()
}

func (p *promCollector) Complete(rootSolved bool) SearchMetric {
	metric := p.collector.Complete(rootSolved)
	p.m.duration.WithLabelValues(p.role).Observe(metric.Duration.Seconds())
	solved := 0.0
	if rootSolved {
		solved = 1
	}
	p.m.solved.WithLabelValues(p.role).Set(solved)
	return metric
}
