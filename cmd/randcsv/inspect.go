package main

import (
	"fmt"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/logger"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/TFMV/randcsv/pkg/readers"
	"github.com/TFMV/randcsv/report"
	"github.com/TFMV/randcsv/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// InspectOptions represents the options for the inspect command.
type InspectOptions struct {
	Path         string
	Type         string
	ReportPath   string
	ReportFormat string
	BatchSize    int64
}

// newInspectCommand creates the inspect command.
func newInspectCommand(v *viper.Viper) *cobra.Command {
	options := &InspectOptions{
		ReportFormat: "text",
		BatchSize:    10000,
	}

	cmd := &cobra.Command{
		Use:   "inspect [flags] FILE",
		Short: "Check a generated file against its generation settings",
		Long: `Read a generated file back and check it against the settings it was
generated with: the shape, the title row, the index column, the format of
every value and the share of NaN and empty cells.

Pass the same table flags used with generate. --rows and --cols default
to the size of the file. Parquet and Arrow files record whether they have
a title row and an index column.`,
		Example: `  randcsv inspect rand.csv -t -i -d str,int -a 0.1
  randcsv inspect data/sample.parquet --report report.html --report-format html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Path = args[0]
			if err := bindFlags(v, cmd.Flags(), tableFlagKeys); err != nil {
				return err
			}
			return runInspect(cmd, v, options)
		},
	}

	flags := cmd.Flags()
	addTableFlags(flags)
	flags.StringVar(&options.Type, "type", "", "Input format (csv, parquet, arrow, json); detected from the extension by default")
	flags.StringVar(&options.ReportPath, "report", "", "Write the report to this file instead of stdout")
	flags.StringVar(&options.ReportFormat, "report-format", options.ReportFormat, "Report format (text, json, html)")
	flags.Int64Var(&options.BatchSize, "batch-size", options.BatchSize, "Rows decoded at a time")

	return cmd
}

// runInspect executes the inspect command with the given options.
func runInspect(cmd *cobra.Command, v *viper.Viper, options *InspectOptions) error {
	gen, err := report.ForFormat(options.ReportFormat)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	typ := options.Type
	if typ == "" {
		typ = readers.DetectType(options.Path)
	}
	reader, err := readers.DefaultFactory.Create(core.ReaderConfig{
		Type:      typ,
		Path:      options.Path,
		Header:    v.GetBool(config.KeyTitleRow),
		Index:     v.GetBool(config.KeyIndexCol),
		BatchSize: options.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Close()

	table, err := reader.Read(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", options.Path, err)
	}

	// The file's own size and recorded layout are the default expectation.
	if !v.IsSet(config.KeyTitleRow) {
		v.Set(config.KeyTitleRow, table.Header)
	}
	if !v.IsSet(config.KeyIndexCol) {
		v.Set(config.KeyIndexCol, table.Index)
	}
	if !v.IsSet(config.KeyRows) {
		v.Set(config.KeyRows, table.NumRows())
	}
	if !v.IsSet(config.KeyCols) {
		v.Set(config.KeyCols, table.Cols)
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	res, err := validation.NewValidator(&cfg.Generation, log).Validate(cmd.Context(), table)
	if err != nil {
		return err
	}
	run := report.NewInspection(options.Path, typ, table, res, cfg.Generation.DataTypes)

	if options.ReportPath != "" {
		if err := gen.SaveReportToFile(run, options.ReportPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		data, err := gen.GenerateInspectionReport(run)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
	}

	if !res.Passed {
		alert, err := (&report.TextReportGenerator{}).GenerateAlertNotification(run)
		if err == nil {
			fmt.Fprint(cmd.ErrOrStderr(), string(alert))
		}
		return fmt.Errorf("%s: %w", options.Path, validation.ErrValidationFailed)
	}
	return nil
}
