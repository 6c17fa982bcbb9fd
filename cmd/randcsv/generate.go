package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/logger"
	"github.com/TFMV/randcsv/metrics"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/TFMV/randcsv/pkg/generator"
	"github.com/TFMV/randcsv/pkg/writers"
	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// flagAliases maps hidden alternative flags to their canonical flags.
var flagAliases = map[string]string{
	"byte-size": "value-length",
}

// applyAliases copies a changed alias flag onto its canonical flag. The
// canonical flag wins when both are given.
func applyAliases(flags *pflag.FlagSet) error {
	for alias, canonical := range flagAliases {
		f := flags.Lookup(alias)
		if f == nil || !f.Changed || flags.Changed(canonical) {
			continue
		}
		if err := flags.Set(canonical, f.Value.String()); err != nil {
			return fmt.Errorf("%w: --%s: %v", core.ErrInvalidArgument, alias, err)
		}
	}
	return nil
}

// tableFlagKeys maps config keys to the flags describing the table layout,
// shared by generate and inspect.
var tableFlagKeys = map[string]string{
	config.KeyRows:        "rows",
	config.KeyCols:        "cols",
	config.KeyDataTypes:   "data-types",
	config.KeyNaNFreq:     "nan-freq",
	config.KeyEmptyFreq:   "empty-freq",
	config.KeyIndexCol:    "index-col",
	config.KeyTitleRow:    "title-row",
	config.KeyValueLength: "value-length",
}

var generateFlagKeys = map[string]string{
	config.KeyOutput:   "output",
	config.KeyFormat:   "format",
	config.KeyMaxProcs: "max-procs",
	config.KeySeed:     "seed",
	config.KeyStats:    "stats",
}

// addTableFlags defines the table layout flags.
func addTableFlags(flags *pflag.FlagSet) {
	flags.IntP("rows", "m", 0, "Number of rows, including the title row (required)")
	flags.IntP("cols", "n", 0, "Number of columns, including the index column (required)")
	flags.StringSliceP("data-types", "d", []string{core.Integer.String()}, "Data types to draw values from (str, int, float)")
	flags.Float64P("nan-freq", "a", 0, "Probability that a cell is NaN")
	flags.Float64P("empty-freq", "e", 0, "Probability that a cell is empty")
	flags.BoolP("index-col", "i", false, "Make the first column a row index")
	flags.BoolP("title-row", "t", false, "Make the first row a header of column labels")
	flags.IntP("value-length", "l", config.DefaultValueLength, "Length of each value (alias --byte-size, -b)")
	flags.IntP("byte-size", "b", config.DefaultValueLength, "Alias of --value-length")
	_ = flags.MarkHidden("byte-size")
}

// bindFlags binds flags to their config keys. Commands bind when they run,
// since every command shares one viper instance.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	if err := applyAliases(flags); err != nil {
		return err
	}
	for key, name := range keys {
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
	return nil
}

// newGenerateCommand creates the generate command.
func newGenerateCommand(v *viper.Viper) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random table",
		Long: `Generate a table of random values and write it to --output.

Each cell is NaN with probability --nan-freq, empty with probability
--empty-freq, and otherwise a value of one of --data-types chosen
uniformly. Values are --value-length characters long. A fixed --seed
reproduces the same table for any --max-procs.`,
		Example: `  randcsv generate -m 1000 -n 8 -d str,int,float -a 0.05 -e 0.05 -t -i
  randcsv generate --rows 10 --cols 3 --format parquet -o data/sample`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(v, cmd.Flags(), tableFlagKeys); err != nil {
				return err
			}
			if err := bindFlags(v, cmd.Flags(), generateFlagKeys); err != nil {
				return err
			}
			return runGenerate(cmd, v, quiet)
		},
	}

	flags := cmd.Flags()
	addTableFlags(flags)
	flags.StringP("output", "o", config.DefaultOutput, "Output file; the format extension is added when missing")
	flags.StringP("format", "f", config.DefaultFormat, "Output format (csv, parquet, arrow, json)")
	flags.IntP("max-procs", "p", runtime.NumCPU(), "Maximum number of generation workers")
	flags.Uint64("seed", 0, "Random seed; 0 picks a new seed for each run")
	flags.String("stats", "", "Write a JSON run report to this file")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Do not show progress or a summary")

	return cmd
}

// runGenerate generates the configured table and writes it. Configuration
// errors are reported before any file is created.
func runGenerate(cmd *cobra.Command, v *viper.Viper, quiet bool) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	// Set up context with signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var spin *spinner.Spinner
	if !quiet {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
		spin.Suffix = fmt.Sprintf(" generating %d x %d table", cfg.Generation.Rows, cfg.Generation.Cols)
		spin.Start()
	}

	start := time.Now()
	table, err := generateAndWrite(ctx, log, cfg)
	end := time.Now()
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}

	if cfg.Output.StatsPath != "" {
		report := metrics.Summarize(table, &cfg.Generation, start, end)
		report.Metadata.Output = cfg.Output.Path
		report.Metadata.Format = cfg.Output.Format
		store := &metrics.JSONMetricsStore{FilePath: cfg.Output.StatsPath}
		if err := store.SaveWithContext(ctx, report); err != nil {
			return fmt.Errorf("failed to write run report: %w", err)
		}
	}

	if !quiet {
		cmd.Printf("Wrote %d rows x %d cols to %s in %s (seed %d)\n",
			table.NumRows(), table.Cols, cfg.Output.Path, end.Sub(start).Round(time.Millisecond), table.Seed)
	}
	return nil
}

func generateAndWrite(ctx context.Context, log *zap.Logger, cfg *config.Config) (*core.Table, error) {
	table, err := generator.NewGenerator(log).Generate(ctx, &cfg.Generation)
	if err != nil {
		return nil, err
	}

	w, err := writers.DefaultFactory.Create(core.WriterConfig{
		Type: cfg.Output.Format,
		Path: cfg.Output.Path,
	})
	if err != nil {
		return nil, err
	}
	if err := w.Write(ctx, table); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", cfg.Output.Path, err)
	}

	log.Info("Output written",
		zap.String("path", cfg.Output.Path),
		zap.String("format", cfg.Output.Format))
	return table, nil
}
