package generator

import (
	"testing"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowConfig(cols int, index, title bool) *config.GenerationConfig {
	return &config.GenerationConfig{
		Rows:        5,
		Cols:        cols,
		ValueLength: 4,
		DataTypes:   []core.DataType{core.Integer},
		IndexCol:    index,
		TitleRow:    title,
		MaxWorkers:  1,
	}
}

func mustSelector(t *testing.T, nan, empty float64) *Selector {
	t.Helper()
	sel, err := NewSelector(nan, empty)
	require.NoError(t, err)
	return sel
}

func TestBuildRowHeader(t *testing.T) {
	cfg := rowConfig(3, true, true)
	row, err := BuildRow(newTestRand(), 0, cfg, mustSelector(t, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, row.Strings())
	for _, c := range row {
		assert.Equal(t, core.KindLabel, c.Kind)
	}
}

func TestBuildRowHeaderOnlyAtIndexZero(t *testing.T) {
	cfg := rowConfig(3, false, true)
	row, err := BuildRow(newTestRand(), 1, cfg, mustSelector(t, 0, 0))
	require.NoError(t, err)
	assert.Len(t, row, 3)
	for _, c := range row {
		assert.Equal(t, core.KindInteger, c.Kind)
	}
}

func TestBuildRowIndexColumn(t *testing.T) {
	cfg := rowConfig(4, true, false)
	row, err := BuildRow(newTestRand(), 7, cfg, mustSelector(t, 0, 0))
	require.NoError(t, err)
	require.Len(t, row, 4)
	assert.Equal(t, core.LabelCell("7"), row[0])
	for _, c := range row[1:] {
		assert.Equal(t, core.KindInteger, c.Kind)
		assert.Len(t, c.Text, 4)
	}
}

func TestBuildRowWithoutIndex(t *testing.T) {
	cfg := rowConfig(4, false, false)
	row, err := BuildRow(newTestRand(), 0, cfg, mustSelector(t, 1, 0))
	require.NoError(t, err)
	require.Len(t, row, 4)
	for _, c := range row {
		assert.Equal(t, core.KindNaN, c.Kind)
	}
}

func TestBuildRowZeroColumns(t *testing.T) {
	for _, index := range []bool{false, true} {
		row, err := BuildRow(newTestRand(), 2, rowConfig(0, index, false), mustSelector(t, 0, 0))
		require.NoError(t, err)
		assert.Empty(t, row)
	}
}

func TestBuildRowSingleIndexColumn(t *testing.T) {
	row, err := BuildRow(newTestRand(), 3, rowConfig(1, true, false), mustSelector(t, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, core.Row{core.LabelCell("3")}, row)
}

func TestBuildRowPropagatesGeneratorErrors(t *testing.T) {
	cfg := rowConfig(2, false, false)
	cfg.ValueLength = 0
	_, err := BuildRow(newTestRand(), 1, cfg, mustSelector(t, 0, 0))
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
