package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyOpts struct {
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded ranking runs, or show one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20, "number of runs to list")
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "table", "run output format: table, csv, json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	rec := openRecorder(cfg)
	defer rec.Close()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		run, err := rec.GetRun(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		return writeRun(out, run, historyOpts.format, 0)
	}

	runs, err := rec.ListRuns(ctx, historyOpts.limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no recorded runs")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tstarted\tsource\tscored\ttop\ttotal")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%.2f\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04"), r.Source, r.Scored, r.Requested, r.TopTicker, r.TopTotal)
	}
	return tw.Flush()
}
