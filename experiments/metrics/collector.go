package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines    int
	Duration      time.Duration
	Cycles        int
	Charges       int
	FullPlayouts  int // Charges that reached a terminal state
	FailedCharges int
	Cutoff        int
	IsTreeReset   bool
	RootSolved    bool
}

type MoveMetric struct {
	Step int
	Role string
	Move string
	SearchMetric
}

type GameMetric struct {
	Game      string
	Goals     []int // Per role, in role order
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Turns     int
}

// Collector counts search events. AddCharge, AddFailedCharge and AddCycle
// may be called from several goroutines.
type Collector interface {
	Start(goroutines, cutoff int)
	SetTreeReset(value bool)
	AddCycle()
	AddCharge(full bool)
	AddFailedCharge()
	Complete(rootSolved bool) SearchMetric
}

type collector struct {
	goroutines    int
	cutoff        int
	startTime     time.Time
	cycles        atomic.Int64
	charges       atomic.Int64
	fullPlayouts  atomic.Int64
	failedCharges atomic.Int64
	isTreeReset   atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

// Start resets the counters for a new search.
func (m *collector) Start(goroutines, cutoff int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.cutoff = cutoff
	m.cycles.Store(0)
	m.charges.Store(0)
	m.fullPlayouts.Store(0)
	m.failedCharges.Store(0)
}

func (m *collector) AddCycle() {
	m.cycles.Add(1)
}

func (m *collector) AddCharge(full bool) {
	m.charges.Add(1)
	if full {
		m.fullPlayouts.Add(1)
	}
}

func (m *collector) AddFailedCharge() {
	m.failedCharges.Add(1)
}

func (m *collector) Complete(rootSolved bool) SearchMetric {
	return SearchMetric{
		Goroutines:    m.goroutines,
		Duration:      time.Since(m.startTime),
		Cycles:        int(m.cycles.Load()),
		Charges:       int(m.charges.Load()),
		FullPlayouts:  int(m.fullPlayouts.Load()),
		FailedCharges: int(m.failedCharges.Load()),
		Cutoff:        m.cutoff,
		IsTreeReset:   m.isTreeReset.Load(),
		RootSolved:    rootSolved,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, cutoff int)          {}
func (m *dummyCollector) SetTreeReset(value bool)               {}
func (m *dummyCollector) AddCycle()                             {}
func (m *dummyCollector) AddCharge(full bool)                   {}
func (m *dummyCollector) AddFailedCharge()                      {}
func (m *dummyCollector) Complete(rootSolved bool) SearchMetric { return SearchMetric{} }
