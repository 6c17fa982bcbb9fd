package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/TFMV/randcsv/pkg/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfig() *config.GenerationConfig {
	return &config.GenerationConfig{
		Rows:        500,
		Cols:        6,
		ValueLength: 5,
		DataTypes:   core.AllDataTypes,
		NaNFreq:     0.2,
		EmptyFreq:   0.1,
		IndexCol:    true,
		TitleRow:    true,
		MaxWorkers:  4,
		Seed:        11,
	}
}

func TestCountCellsSkipsLabels(t *testing.T) {
	table := &core.Table{
		Cols:   3,
		Header: true,
		Index:  true,
		Rows: []core.Row{
			{core.LabelCell("0"), core.LabelCell("1"), core.LabelCell("2")},
			{core.LabelCell("1"), core.NaNCell(), core.EmptyCell()},
			{core.LabelCell("2"), {Kind: core.KindInteger, Text: "42"}, {Kind: core.KindFloat, Text: "0.5"}},
		},
	}

	c := CountCells(table)
	assert.Equal(t, CellCounts{Total: 4, Regular: 2, NaN: 1, Empty: 1, Integer: 1, Float: 1}, c)
}

func TestSummarize(t *testing.T) {
	cfg := sampleConfig()
	start := time.Now()
	table, err := generator.Generate(context.Background(), cfg)
	require.NoError(t, err)
	end := time.Now()

	report := Summarize(table, cfg, start, end)
	assert.NotEmpty(t, report.Metadata.RunID)
	assert.Equal(t, "parallel", report.Metadata.Strategy)
	assert.Equal(t, 4, report.Metadata.Workers)
	assert.Equal(t, end.Sub(start), report.Metadata.Duration)
	assert.Equal(t, uint64(11), report.Metadata.Seed)

	assert.Equal(t, 500, report.Shape.Rows)
	assert.Equal(t, 499, report.Shape.DataRows)
	assert.True(t, report.Shape.Header)

	assert.EqualValues(t, 499*5, report.Cells.Total)
	assert.Equal(t, report.Cells.Total, report.Cells.Regular+report.Cells.NaN+report.Cells.Empty)
	assert.Equal(t, report.Cells.Regular, report.Cells.String+report.Cells.Integer+report.Cells.Float)
	assert.InDelta(t, 0.2, report.Frequencies.RealizedNaN, 0.05)
	assert.InDelta(t, 0.1, report.Frequencies.RealizedEmpty, 0.05)
	assert.Equal(t, []string{"str", "int", "float"}, report.DataTypes)
}

func TestSummarizeEmptyTable(t *testing.T) {
	cfg := sampleConfig()
	cfg.Rows = 0
	cfg.MaxWorkers = 1
	report := Summarize(&core.Table{}, cfg, time.Now(), time.Now())
	assert.Equal(t, "sequential", report.Metadata.Strategy)
	assert.Zero(t, report.Cells.Total)
	assert.Zero(t, report.Frequencies.RealizedNaN)
}

// TestJSONMetricsStore ensures that reports are correctly written to and read from a file.
func TestJSONMetricsStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	store := &JSONMetricsStore{FilePath: path}

	report := GenerationReport{
		Metadata: RunMetadata{RunID: "run-1", Strategy: "sequential"},
		Shape:    ShapeResult{Rows: 3, Cols: 2, DataRows: 3},
		Cells:    CellCounts{Total: 6, Regular: 6, Integer: 6},
	}
	require.NoError(t, store.Save(report))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, report.Metadata.RunID, loaded.Metadata.RunID)
	assert.Equal(t, report.Shape, loaded.Shape)
	assert.Equal(t, report.Cells, loaded.Cells)
}

func TestJSONMetricsStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &JSONMetricsStore{FilePath: filepath.Join(t.TempDir(), "stats.json")}
	assert.ErrorIs(t, store.SaveWithContext(ctx, GenerationReport{}), context.Canceled)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
