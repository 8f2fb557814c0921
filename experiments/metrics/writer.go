package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type AgentConfig struct {
	ID         int
	Goroutines int
	Duration   time.Duration // Per move
	Charges    int           // Depth charges per cycle
	Cutoff     int
	Heuristics bool
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates <root>/<name>/<timestamp> and writes records there.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) write(file string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", file, err)
	}
	return nil
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			strconv.Itoa(config.Goroutines),
			config.Duration.String(),
			strconv.Itoa(config.Charges),
			strconv.Itoa(config.Cutoff),
			strconv.FormatBool(config.Heuristics),
		})
	}
	return w.write("agent_configs.csv", []string{"id", "goroutines", "duration", "charges", "cutoff", "heuristics"}, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		goals := make([]string, len(record.Goals))
		for i, g := range record.Goals {
			goals[i] = strconv.Itoa(g)
		}
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			record.Game,
			strings.Join(goals, ";"),
			strconv.Itoa(record.Turns),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.write("game_records.csv", []string{"id", "agent1", "agent2", "game", "goals", "turns", "start_time", "end_time", "duration"}, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Role,
			record.Move,
			record.Duration.String(),
			strconv.Itoa(record.Cycles),
			strconv.Itoa(record.Charges),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.FailedCharges),
			strconv.FormatBool(record.IsTreeReset),
			strconv.FormatBool(record.RootSolved),
		})
	}
	header := []string{"game", "step", "role", "move", "duration", "cycles", "charges", "full_playouts", "failed_charges", "is_tree_reset", "root_solved"}
	return w.write("move_records.csv", header, rows)
}
