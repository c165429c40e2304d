package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/objectregistry/internal/debug"
	"github.com/objectregistry/internal/service"
	"github.com/objectregistry/pkg/utils"
)

var (
	// Serve command flags
	every      time.Duration
	serveSave  bool
	serveStats time.Duration
	debugAddr  string
	debugToken string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Keep a registry alive under periodic maintenance",
	Long: `Keep one registry alive until interrupted.

Periodic maintenance runs when maintenance.enabled is set. With --every a
workload runs on the same registry at that interval, releasing the objects
the previous workload retained. With --debug-addr, runtime profiles are served
under /debug/pprof/ and live registry state under /debug/registry/.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().DurationVar(&every, "every", 0, "Run a workload at this interval (0 disables)")
	serveCmd.Flags().BoolVar(&serveSave, "save", false, "Persist every workload run")
	serveCmd.Flags().DurationVar(&serveStats, "stats-every", time.Minute, "Log registry statistics at this interval")
	serveCmd.Flags().StringVar(&debugAddr, "debug-addr", "", "Serve pprof and registry state on this address, e.g. localhost:6060")
	serveCmd.Flags().StringVar(&debugToken, "debug-token", "", "Bearer token required by the debug server")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, err := newService(ctx)
	if err != nil {
		return err
	}

	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	if debugAddr != "" {
		srv := debug.NewServer(&debug.Config{Addr: debugAddr, Token: debugToken}, svc, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop()
	}

	clock := utils.NewRealClock()
	var workC, statsC <-chan time.Time
	if every > 0 {
		t := clock.NewTicker(every)
		defer t.Stop()
		workC = t.C()
	}
	if serveStats > 0 {
		t := clock.NewTicker(serveStats)
		defer t.Stop()
		statsC = t.C()
	}

	logger.Info("Service started, waiting for signal...")
	for {
		select {
		case <-ctx.Done():
			logger.Info("Received shutdown signal, stopping...")
			return nil
		case <-workC:
			result, err := svc.Simulate(ctx, service.SimulateOptions{Save: serveSave && cfg.Database.Enabled})
			if err != nil {
				logger.Error("Workload failed: %v", err)
				continue
			}
			logger.Info("Run %s finished: size %d, %d suggestions",
				result.Run.RunUUID, result.Report.Size, len(result.Report.Suggestions))
		case <-statsC:
			stats := svc.Stats()
			logger.Info("Registry size %d of %d (%d slots), %d maintenance passes swept %d",
				stats.Registry.Size, stats.Registry.Capacity, stats.Registry.SlotLength,
				stats.Maintenance.Passes, stats.Maintenance.Swept)
		}
	}
}
