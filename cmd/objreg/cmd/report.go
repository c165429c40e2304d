package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/objectregistry/pkg/model"
	"github.com/objectregistry/pkg/writer"
)

var runsLimit int

// reportCmd prints an exported population report.
var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Print the exported population report of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := newService(ctx)
		if err != nil {
			return err
		}
		defer svc.Stop()

		report, err := svc.LoadReport(ctx, args[0])
		if err != nil {
			return err
		}
		return writer.NewPrettyJSONWriter[*model.PopulationReport]().Write(report, os.Stdout)
	},
}

// runsCmd lists persisted runs.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List the most recent persisted runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := newService(ctx)
		if err != nil {
			return err
		}
		defer svc.Stop()

		runs, err := svc.Runs(ctx, runsLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTATUS\tOBJECTS\tPRODUCERS\tDURATION\tCREATED")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%s\n",
				run.RunUUID, run.Status, run.Params.Objects, run.Params.Producers,
				run.Duration().Round(time.Millisecond), run.CreateTime.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Number of runs to list")
}
