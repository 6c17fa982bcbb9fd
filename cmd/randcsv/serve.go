package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TFMV/randcsv/api"
	"github.com/TFMV/randcsv/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyPort     = "port"
	keyPrefork  = "prefork"
	keyMaxCells = "max_cells"
	keyMaxBytes = "max_bytes"
)

// newServeCommand creates the serve command.
func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the randcsv API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String("port", "3000", "Port to listen on")
	flags.Bool("prefork", false, "Use multiple OS processes")
	flags.Int("max-cells", api.DefaultMaxCells, "Maximum rows*cols of a single request")
	flags.Int("max-bytes", api.DefaultMaxBytes, "Maximum rows*cols*value-length of a single request")
	_ = v.BindPFlag(keyPort, flags.Lookup("port"))
	_ = v.BindPFlag(keyPrefork, flags.Lookup("prefork"))
	_ = v.BindPFlag(keyMaxCells, flags.Lookup("max-cells"))
	_ = v.BindPFlag(keyMaxBytes, flags.Lookup("max-bytes"))

	return cmd
}

// runServe runs the server until the command context is canceled or an
// interrupt is received, then shuts it down gracefully.
func runServe(cmd *cobra.Command, v *viper.Viper) error {
	log := logger.GetLogger()
	server := api.NewServer(api.ServerOptions{
		Port:     v.GetString(keyPort),
		Prefork:  v.GetBool(keyPrefork),
		MaxCells: v.GetInt(keyMaxCells),
		MaxBytes: v.GetInt(keyMaxBytes),
		Logger:   log,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start the server in a separate goroutine.
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("Received shutdown signal, stopping server")

	// Perform graceful shutdown.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("Server shutdown successfully")
	return nil
}
