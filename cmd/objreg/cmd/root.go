// Package cmd implements the objreg command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/objectregistry/internal/service"
	"github.com/objectregistry/pkg/config"
	"github.com/objectregistry/pkg/telemetry"
	"github.com/objectregistry/pkg/utils"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg      *config.Config
	logger   utils.Logger
	shutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "objreg",
	Short: "Identity registry workload and maintenance tool",
	Long: `objreg drives an identity registry that maps 64-bit object ids to live
objects and back, without keeping those objects alive.

It runs concurrent registration workloads against the registry, sweeps
collected entries, reports on table shape and population, and stores run
history in a database and exported reports in object storage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger = utils.NewLogger(level, cfg.Log.Format, os.Stderr)
		utils.SetGlobalLogger(logger)

		shutdown, err = telemetry.Init(cmd.Context(), telemetry.FromSettings(cfg.Telemetry, Version))
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if shutdown != nil {
			if err := shutdown(context.Background()); err != nil {
				logger.Warn("Failed to flush traces: %v", err)
			}
		}
		if syncer, ok := logger.(interface{ Sync() error }); ok {
			_ = syncer.Sync()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it until it
// returns or the process is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./objreg.yaml, ./configs/objreg.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	binName := BinName()
	rootCmd.Example = `  # Run one workload with the default configuration
  ` + binName + ` simulate

  # Race 8 producers over 100000 objects and keep a tenth of them
  ` + binName + ` simulate --producers 8 --objects 100000 --retain 0.1

  # Persist the run and export its reports
  ` + binName + ` simulate -c ./objreg.yaml --save --export

  # Keep the registry alive with periodic maintenance and a workload every minute
  ` + binName + ` serve -c ./objreg.yaml --every 1m

  # Show an exported report
  ` + binName + ` report 5f0c7a8e-2b1d-4c39-9a57-0b3f6f1d2e4a`
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}

// newService creates and initializes the service from the loaded config.
func newService(ctx context.Context) (*service.Service, error) {
	svc, err := service.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	if err := svc.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize service: %w", err)
	}
	return svc, nil
}
