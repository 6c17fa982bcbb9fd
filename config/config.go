package config

import (
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/TFMV/randcsv/pkg/core"
	"github.com/spf13/viper"
)

// --- Configuration Structs ---

// GenerationConfig describes the table to generate. It is read-only once
// validated and is shared by every generation worker.
type GenerationConfig struct {
	Rows        int
	Cols        int
	ValueLength int
	DataTypes   []core.DataType
	NaNFreq     float64
	EmptyFreq   float64
	IndexCol    bool
	TitleRow    bool
	MaxWorkers  int
	// Seed fixes the random streams. Zero picks a fresh seed per run.
	Seed uint64
}

// OutputConfig describes where and how the generated table is written.
type OutputConfig struct {
	Path      string
	Format    string
	StatsPath string
}

// Config is the complete configuration of one randcsv run.
type Config struct {
	Generation GenerationConfig
	Output     OutputConfig
}

// Keys used in config files, environment variables and bound flags.
const (
	KeyRows        = "rows"
	KeyCols        = "cols"
	KeyOutput      = "output"
	KeyFormat      = "format"
	KeyStats       = "stats"
	KeyDataTypes   = "data_types"
	KeyNaNFreq     = "nan_freq"
	KeyEmptyFreq   = "empty_freq"
	KeyIndexCol    = "index_col"
	KeyTitleRow    = "title_row"
	KeyValueLength = "value_length"
	KeyMaxProcs    = "max_procs"
	KeySeed        = "seed"
)

// EnvPrefix prefixes environment overrides, e.g. RANDCSV_ROWS.
const EnvPrefix = "RANDCSV"

// Defaults.
const (
	DefaultOutput      = "rand.csv"
	DefaultFormat      = "csv"
	DefaultValueLength = 6
)

// Formats lists the supported output formats.
var Formats = []string{"csv", "parquet", "arrow", "json"}

// Default returns a configuration with every optional field at its default.
func Default() Config {
	return Config{
		Generation: GenerationConfig{
			ValueLength: DefaultValueLength,
			DataTypes:   []core.DataType{core.Integer},
			MaxWorkers:  runtime.NumCPU(),
		},
		Output: OutputConfig{
			Path:   DefaultOutput,
			Format: DefaultFormat,
		},
	}
}

// SetDefaults registers the defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyOutput, d.Output.Path)
	v.SetDefault(KeyFormat, d.Output.Format)
	v.SetDefault(KeyDataTypes, []string{core.Integer.String()})
	v.SetDefault(KeyNaNFreq, 0.0)
	v.SetDefault(KeyEmptyFreq, 0.0)
	v.SetDefault(KeyValueLength, d.Generation.ValueLength)
	v.SetDefault(KeyMaxProcs, d.Generation.MaxWorkers)
	v.SetDefault(KeySeed, 0)
}

// NewViper returns a viper instance with defaults and RANDCSV_* environment
// overrides enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// --- Load Configuration ---

// LoadFile merges a YAML config file into v.
func LoadFile(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", configPath, err)
	}
	return nil
}

// Load builds a Config from v and validates it. rows and cols have no
// default and must be set by a flag, the environment or a config file.
func Load(v *viper.Viper) (*Config, error) {
	for _, key := range []string{KeyRows, KeyCols} {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("%w: %s is required", core.ErrInvalidArgument, key)
		}
	}

	types, err := core.ParseDataTypes(splitList(v.GetStringSlice(KeyDataTypes)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Generation: GenerationConfig{
			Rows:        v.GetInt(KeyRows),
			Cols:        v.GetInt(KeyCols),
			ValueLength: v.GetInt(KeyValueLength),
			DataTypes:   types,
			NaNFreq:     v.GetFloat64(KeyNaNFreq),
			EmptyFreq:   v.GetFloat64(KeyEmptyFreq),
			IndexCol:    v.GetBool(KeyIndexCol),
			TitleRow:    v.GetBool(KeyTitleRow),
			MaxWorkers:  v.GetInt(KeyMaxProcs),
			Seed:        v.GetUint64(KeySeed),
		},
		Output: OutputConfig{
			Format:    strings.ToLower(v.GetString(KeyFormat)),
			StatsPath: v.GetString(KeyStats),
		},
	}
	cfg.Output.Path = OutputPath(v.GetString(KeyOutput), cfg.Output.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OutputPath makes path end with the extension of format. A known format
// extension of another format is replaced, anything else is kept and the
// extension appended.
func OutputPath(path, format string) string {
	if path == "" {
		path = DefaultOutput
	}
	want := "." + format
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, want) {
		return path
	}
	for _, f := range Formats {
		if strings.EqualFold(ext, "."+f) {
			return strings.TrimSuffix(path, ext) + want
		}
	}
	return path + want
}

// splitList accepts both repeated values and comma separated values from
// environment variables or YAML strings.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, part)
		}
	}
	return out
}

// --- Validation Functions ---

// validate is a helper function to reduce repetition.
func validate(condition bool, format string, a ...any) error {
	if !condition {
		return fmt.Errorf("%w: "+format, append([]any{core.ErrInvalidArgument}, a...)...)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	return c.Output.Validate()
}

// sumTolerance absorbs rounding in frequency sums such as 0.7+0.3.
const sumTolerance = 1e-9

func (g *GenerationConfig) Validate() error {
	if err := validate(g.Rows >= 0, "rows must be >= 0, got %d", g.Rows); err != nil {
		return err
	}
	if err := validate(g.Cols >= 0, "cols must be >= 0, got %d", g.Cols); err != nil {
		return err
	}
	if err := validate(g.ValueLength > 0, "value length must be positive, got %d", g.ValueLength); err != nil {
		return err
	}
	if err := validate(g.MaxWorkers > 0, "max workers must be positive, got %d", g.MaxWorkers); err != nil {
		return err
	}
	if err := validate(len(g.DataTypes) > 0, "at least one data type is required"); err != nil {
		return err
	}
	for _, dt := range g.DataTypes {
		if err := validate(dt.Valid(), "unrecognized data type %s", dt); err != nil {
			return err
		}
	}
	if err := validateFreq("nan frequency", g.NaNFreq); err != nil {
		return err
	}
	if err := validateFreq("empty frequency", g.EmptyFreq); err != nil {
		return err
	}
	return validate(g.NaNFreq+g.EmptyFreq <= 1+sumTolerance,
		"nan frequency + empty frequency must be in [0, 1], got %v", g.NaNFreq+g.EmptyFreq)
}

func validateFreq(name string, f float64) error {
	return validate(!math.IsNaN(f) && f >= 0 && f <= 1, "%s must be in [0, 1], got %v", name, f)
}

func (o *OutputConfig) Validate() error {
	if err := validate(o.Path != "", "output path is required"); err != nil {
		return err
	}
	for _, f := range Formats {
		if o.Format == f {
			return nil
		}
	}
	return validate(false, "unsupported format %q, must be one of: %s", o.Format, strings.Join(Formats, ", "))
}
