package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/objectregistry/internal/service"
	"github.com/objectregistry/pkg/writer"
)

var (
	// Simulate command flags
	producers int
	objects   int
	types     int
	retain    float64
	save      bool
	exportRun bool
	noCollect bool
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one registration workload and report on the registry",
	Long: `Run one workload against a fresh registry.

Producers race to bind the same ids, reserved ids are bound after their
objects arrive, and a share of the objects is kept reachable. Afterwards a
maintenance pass sweeps collected entries and the population report is
printed as JSON.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVar(&producers, "producers", 0, "Concurrent producers (overrides workload.producers)")
	simulateCmd.Flags().IntVar(&objects, "objects", 0, "Objects to register (overrides workload.objects)")
	simulateCmd.Flags().IntVar(&types, "types", 0, "Type dictionary entries (overrides workload.types)")
	simulateCmd.Flags().Float64Var(&retain, "retain", 0, "Share of objects kept reachable (overrides workload.retain_ratio)")
	simulateCmd.Flags().BoolVar(&save, "save", false, "Persist the run, snapshot and suggestions")
	simulateCmd.Flags().BoolVar(&exportRun, "export", false, "Upload the reports to storage")
	simulateCmd.Flags().BoolVar(&noCollect, "no-collect", false, "Skip the collection after the workload")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("producers") {
		cfg.Workload.Producers = producers
	}
	if flags.Changed("objects") {
		cfg.Workload.Objects = objects
	}
	if flags.Changed("types") {
		cfg.Workload.Types = types
	}
	if flags.Changed("retain") {
		cfg.Workload.RetainRatio = retain
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if save && !cfg.Database.Enabled {
		return fmt.Errorf("--save requires database.enabled")
	}

	ctx := cmd.Context()
	svc, err := newService(ctx)
	if err != nil {
		return err
	}
	defer svc.Stop()

	result, err := svc.Simulate(ctx, service.SimulateOptions{
		Save:      save,
		Export:    exportRun,
		NoCollect: noCollect,
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	for _, s := range result.Report.Suggestions {
		logger.Warn("[%s] %s", s.Severity, s.Suggestion)
	}
	return writer.NewPrettyJSONWriter[*service.SimulationResult]().Write(result, os.Stdout)
}
