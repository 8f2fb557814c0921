package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts concurrent events", func(t *testing.T) {
		c := NewCollector()
		c.Start(4, 20)
		c.SetTreeReset(true)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					c.AddCharge(j%5 == 0)
				}
				c.AddFailedCharge()
			}()
		}
		wg.Wait()
		c.AddCycle()

		got := c.Complete(true)
		require.Equal(t, 4, got.Goroutines)
		require.Equal(t, 20, got.Cutoff)
		require.Equal(t, 100, got.Charges)
		require.Equal(t, 20, got.FullPlayouts)
		require.Equal(t, 4, got.FailedCharges)
		require.Equal(t, 1, got.Cycles)
		require.True(t, got.IsTreeReset)
		require.True(t, got.RootSolved)
	})

	t.Run("start resets counters", func(t *testing.T) {
		c := NewCollector()
		c.Start(1, 10)
		c.AddCycle()
		c.Start(1, 10)
		require.Equal(t, 0, c.Complete(false).Cycles)
	})

	t.Run("dummy collector records nothing", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(1, 10)
		c.AddCycle()
		require.Equal(t, SearchMetric{}, c.Complete(true))
	})
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPromMetrics(reg)
	white := NewPrometheusCollector(m, "white")
	black := NewPrometheusCollector(m, "black")

	white.Start(1, 10)
	white.SetTreeReset(true)
	white.AddCycle()
	white.AddCycle()
	white.AddCharge(true)
	white.AddCharge(false)
	white.AddFailedCharge()
	black.Start(1, 10)
	black.AddCycle()
	got := white.Complete(true)

	require.Equal(t, 2, got.Cycles, "Atomic counters should still be kept")
	require.Equal(t, 2.0, testutil.ToFloat64(m.cycles.WithLabelValues("white")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("black")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.charges.WithLabelValues("white", "terminal")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.charges.WithLabelValues("white", "cutoff")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.charges.WithLabelValues("white", "failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.treeResets.WithLabelValues("white")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.solved.WithLabelValues("white")))
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "selfplay")
	require.NoError(t, err)

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	err = w.WriteGameRecords([]GameRecord{{
		ID: 1, Agent1: 1, Agent2: 2,
		GameMetric: GameMetric{Game: "nim", Goals: []int{100, 0}, StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second, Turns: 5},
	}})
	require.NoError(t, err)
	err = w.WriteMoveRecords([]MoveRecord{{
		Game:       1,
		MoveMetric: MoveMetric{Step: 0, Role: "white", Move: "take(1)", SearchMetric: SearchMetric{Cycles: 7, Charges: 7}},
	}})
	require.NoError(t, err)

	games := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
	require.Len(t, games, 2, "Header and one row")
	require.Equal(t, []string{"1", "1", "2", "nim", "100;0", "5", "2024-01-02T03:04:05Z", "2024-01-02T03:04:06Z", "1s"}, games[1])

	moves := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
	require.Len(t, moves, 2)
	require.Equal(t, "take(1)", moves[1][3])
	require.Equal(t, "7", moves[1][5])
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}
