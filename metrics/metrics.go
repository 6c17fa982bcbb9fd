package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/TFMV/randcsv/pkg/generator"
)

// -----------------------------
// Report Types
// -----------------------------

// RunMetadata captures high-level context for a generation run.
type RunMetadata struct {
	RunID      string        `json:"run_id"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	Output     string        `json:"output,omitempty"`
	Format     string        `json:"format,omitempty"`
	Strategy   string        `json:"strategy"`
	Workers    int           `json:"workers"`
	MaxWorkers int           `json:"max_workers"`
	Seed       uint64        `json:"seed"`
}

// ShapeResult holds the realized table shape.
type ShapeResult struct {
	Rows     int  `json:"rows"`
	Cols     int  `json:"cols"`
	DataRows int  `json:"data_rows"`
	Header   bool `json:"header"`
	Index    bool `json:"index"`
}

// CellCounts counts generated cells by kind. Header labels and index
// values are not generated cells.
type CellCounts struct {
	Total   int64 `json:"total"`
	Regular int64 `json:"regular"`
	NaN     int64 `json:"nan"`
	Empty   int64 `json:"empty"`
	String  int64 `json:"string"`
	Integer int64 `json:"integer"`
	Float   int64 `json:"float"`
}

// FrequencyResult compares configured and realized missing-value frequencies.
type FrequencyResult struct {
	TargetNaN     float64 `json:"target_nan"`
	TargetEmpty   float64 `json:"target_empty"`
	RealizedNaN   float64 `json:"realized_nan"`
	RealizedEmpty float64 `json:"realized_empty"`
}

// GenerationReport aggregates the results of one run.
type GenerationReport struct {
	Metadata    RunMetadata     `json:"metadata"`
	Shape       ShapeResult     `json:"shape"`
	Cells       CellCounts      `json:"cells"`
	Frequencies FrequencyResult `json:"frequencies"`
	DataTypes   []string        `json:"data_types"`
	ValueLength int             `json:"value_length"`
}

// Summarize builds the report of a run that produced table from cfg.
func Summarize(table *core.Table, cfg *config.GenerationConfig, start, end time.Time) GenerationReport {
	workers := generator.Workers(cfg)
	strategy := "sequential"
	if workers > 0 {
		strategy = "parallel"
	}

	counts := CountCells(table)
	report := GenerationReport{
		Metadata: RunMetadata{
			RunID:      uuid.NewString(),
			StartTime:  start,
			EndTime:    end,
			Duration:   end.Sub(start),
			Strategy:   strategy,
			Workers:    workers,
			MaxWorkers: cfg.MaxWorkers,
			Seed:       table.Seed,
		},
		Shape: ShapeResult{
			Rows:     table.NumRows(),
			Cols:     table.Cols,
			DataRows: len(table.DataRows()),
			Header:   table.Header,
			Index:    table.Index,
		},
		Cells: counts,
		Frequencies: FrequencyResult{
			TargetNaN:   cfg.NaNFreq,
			TargetEmpty: cfg.EmptyFreq,
		},
		ValueLength: cfg.ValueLength,
	}
	if counts.Total > 0 {
		report.Frequencies.RealizedNaN = float64(counts.NaN) / float64(counts.Total)
		report.Frequencies.RealizedEmpty = float64(counts.Empty) / float64(counts.Total)
	}
	for _, dt := range cfg.DataTypes {
		report.DataTypes = append(report.DataTypes, dt.String())
	}
	return report
}

// CountCells counts the generated cells of table by kind.
func CountCells(table *core.Table) CellCounts {
	var c CellCounts
	for _, row := range table.DataRows() {
		for _, cell := range row {
			switch cell.Kind {
			case core.KindLabel:
				continue
			case core.KindNaN:
				c.NaN++
			case core.KindEmpty:
				c.Empty++
			case core.KindString:
				c.String++
				c.Regular++
			case core.KindInteger:
				c.Integer++
				c.Regular++
			case core.KindFloat:
				c.Float++
				c.Regular++
			}
			c.Total++
		}
	}
	return c
}

// -----------------------------
// Metrics Storage
// -----------------------------

// MetricsStore abstracts report storage.
type MetricsStore interface {
	Save(run GenerationReport) error
	SaveWithContext(ctx context.Context, run GenerationReport) error
}

// JSONMetricsStore stores reports as JSON. An empty FilePath prints to stdout.
type JSONMetricsStore struct {
	FilePath string
}

func (j *JSONMetricsStore) Save(run GenerationReport) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if j.FilePath != "" {
		return os.WriteFile(j.FilePath, data, 0o644)
	}
	fmt.Println(string(data))
	return nil
}

func (j *JSONMetricsStore) SaveWithContext(ctx context.Context, run GenerationReport) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return j.Save(run)
	}
}

// Load reads a report previously written by a JSONMetricsStore.
func Load(path string) (GenerationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GenerationReport{}, err
	}
	var report GenerationReport
	if err := json.Unmarshal(data, &report); err != nil {
		return GenerationReport{}, fmt.Errorf("decoding report %s: %w", path, err)
	}
	return report, nil
}
