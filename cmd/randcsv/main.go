// Package main is the entry point for the randcsv CLI.
package main

import (
	"fmt"
	"os"

	"github.com/TFMV/randcsv/config"
	"github.com/TFMV/randcsv/logger"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/TFMV/randcsv/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Keys of the persistent flags.
const (
	keyConfig   = "config"
	keyLogLevel = "log_level"
	keyLogFile  = "log_file"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "randcsv",
		Short: "randcsv generates random CSV files",
		Long: `randcsv generates tables of random values for testing parsers,
loaders and pipelines. Rows are generated in parallel; the column data
types, the share of NaN and empty cells, an index column and a title row
are configurable. Output is CSV by default, or Parquet, Arrow IPC or JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(v)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-file", "", "Also write JSON logs to this file")
	_ = v.BindPFlag(keyConfig, flags.Lookup("config"))
	_ = v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(keyLogFile, flags.Lookup("log-file"))

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version of randcsv",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version.String())
		},
	})

	rootCmd.AddCommand(newGenerateCommand(v))
	rootCmd.AddCommand(newInspectCommand(v))
	rootCmd.AddCommand(newServeCommand(v))

	return rootCmd
}

// setup merges the config file, if any, and configures the process logger.
func setup(v *viper.Viper) error {
	if path := v.GetString(keyConfig); path != "" {
		if err := config.LoadFile(v, path); err != nil {
			return err
		}
	}
	if err := logger.SetLevel(v.GetString(keyLogLevel)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrInvalidArgument, err)
	}
	logger.SetLogPath(v.GetString(keyLogFile))
	logger.InitLogger()
	return nil
}
