package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validGeneration() GenerationConfig {
	return GenerationConfig{
		Rows:        3,
		Cols:        2,
		ValueLength: 4,
		DataTypes:   []core.DataType{core.Integer},
		MaxWorkers:  1,
	}
}

func TestValidateGenerationConfig(t *testing.T) {
	cfg := validGeneration()
	assert.NoError(t, cfg.Validate())

	cfg.NaNFreq, cfg.EmptyFreq = 0.7, 0.3
	assert.NoError(t, cfg.Validate(), "sum of exactly one is allowed")
}

func TestValidateGenerationConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationConfig)
		want   string
	}{
		{"negative rows", func(c *GenerationConfig) { c.Rows = -1 }, "rows"},
		{"negative cols", func(c *GenerationConfig) { c.Cols = -1 }, "cols"},
		{"zero value length", func(c *GenerationConfig) { c.ValueLength = 0 }, "value length"},
		{"zero workers", func(c *GenerationConfig) { c.MaxWorkers = 0 }, "max workers"},
		{"no data types", func(c *GenerationConfig) { c.DataTypes = nil }, "data type"},
		{"bad data type", func(c *GenerationConfig) { c.DataTypes = []core.DataType{core.DataType(9)} }, "unrecognized"},
		{"nan above one", func(c *GenerationConfig) { c.NaNFreq = 1.5 }, "nan frequency"},
		{"empty below zero", func(c *GenerationConfig) { c.EmptyFreq = -0.1 }, "empty frequency"},
		{"sum above one", func(c *GenerationConfig) { c.NaNFreq, c.EmptyFreq = 0.6, 0.6 }, "nan frequency + empty frequency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validGeneration()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateOutputConfig(t *testing.T) {
	out := OutputConfig{Path: "rand.csv", Format: "csv"}
	assert.NoError(t, out.Validate())

	out.Format = "xlsx"
	assert.ErrorIs(t, out.Validate(), core.ErrInvalidArgument)

	out = OutputConfig{Format: "csv"}
	assert.ErrorIs(t, out.Validate(), core.ErrInvalidArgument)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "rand.csv", OutputPath("", "csv"))
	assert.Equal(t, "data.csv", OutputPath("data", "csv"))
	assert.Equal(t, "data.csv", OutputPath("data.csv", "csv"))
	assert.Equal(t, "data.parquet", OutputPath("data.csv", "parquet"))
	assert.Equal(t, "data.v1.json", OutputPath("data.v1", "json"))
}

func TestLoadRequiresRowsAndCols(t *testing.T) {
	v := NewViper()
	_, err := Load(v)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "rows")

	v.Set(KeyRows, 10)
	_, err = Load(v)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "cols")
}

func TestLoadDefaults(t *testing.T) {
	v := NewViper()
	v.Set(KeyRows, 10)
	v.Set(KeyCols, 4)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Generation.Rows)
	assert.Equal(t, 4, cfg.Generation.Cols)
	assert.Equal(t, DefaultValueLength, cfg.Generation.ValueLength)
	assert.Equal(t, []core.DataType{core.Integer}, cfg.Generation.DataTypes)
	assert.Positive(t, cfg.Generation.MaxWorkers)
	assert.Equal(t, "rand.csv", cfg.Output.Path)
	assert.Equal(t, "csv", cfg.Output.Format)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "randcsv.yaml")
	data := []byte(`
rows: 100
cols: 5
data_types: [str, float]
nan_freq: 0.1
empty_freq: 0.2
index_col: true
title_row: true
value_length: 8
max_procs: 4
seed: 42
format: parquet
output: out/data
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	v := NewViper()
	require.NoError(t, LoadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	g := cfg.Generation
	assert.Equal(t, 100, g.Rows)
	assert.Equal(t, 5, g.Cols)
	assert.Equal(t, []core.DataType{core.String, core.Float}, g.DataTypes)
	assert.InDelta(t, 0.1, g.NaNFreq, 1e-12)
	assert.InDelta(t, 0.2, g.EmptyFreq, 1e-12)
	assert.True(t, g.IndexCol)
	assert.True(t, g.TitleRow)
	assert.Equal(t, 8, g.ValueLength)
	assert.Equal(t, 4, g.MaxWorkers)
	assert.Equal(t, uint64(42), g.Seed)
	assert.Equal(t, "out/data.parquet", cfg.Output.Path)
}

func TestLoadFileMissing(t *testing.T) {
	v := NewViper()
	err := LoadFile(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RANDCSV_ROWS", "7")
	t.Setenv("RANDCSV_COLS", "3")
	t.Setenv("RANDCSV_DATA_TYPES", "int,str")
	t.Setenv("RANDCSV_NAN_FREQ", "0.25")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Generation.Rows)
	assert.Equal(t, 3, cfg.Generation.Cols)
	assert.Equal(t, []core.DataType{core.Integer, core.String}, cfg.Generation.DataTypes)
	assert.InDelta(t, 0.25, cfg.Generation.NaNFreq, 1e-12)
}

func TestLoadRejectsInvalidFrequencies(t *testing.T) {
	v := NewViper()
	v.Set(KeyRows, 1)
	v.Set(KeyCols, 1)
	v.Set(KeyNaNFreq, 0.6)
	v.Set(KeyEmptyFreq, 0.6)

	_, err := Load(v)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}
