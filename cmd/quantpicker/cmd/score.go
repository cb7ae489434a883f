package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"QuantPicker/internal/calculator"
	"QuantPicker/internal/exporter"
	"QuantPicker/internal/model"

	"github.com/spf13/cobra"
)

var scoreOpts struct {
	days   int
	source string
	json   bool
	chart  string
}

var scoreCmd = &cobra.Command{
	Use:   "score <ticker>",
	Short: "Score one ticker and show which rules fired",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	f := scoreCmd.Flags()
	f.IntVar(&scoreOpts.days, "days", 0, "calendar days of history (default from config)")
	f.StringVar(&scoreOpts.source, "source", "", "data provider: yahoo, alpaca, csv, mock")
	f.BoolVar(&scoreOpts.json, "json", false, "print JSON instead of text")
	f.StringVar(&scoreOpts.chart, "chart", "", "also write the close/MA20/MA60 series as CSV to this file")
}

func runScore(cmd *cobra.Command, args []string) error {
	if err := applyDataFlags(scoreOpts.source, scoreOpts.days, 0); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ctx, cancel := signalContext()
	defer cancel()

	col, err := newCollector(cfg)
	if err != nil {
		return err
	}
	h, err := col.Collect(ctx, args[0], cfg.DataSource.Days)
	if err != nil {
		return err
	}
	res, err := col.Scorer.Score(h)
	if err != nil {
		return fmt.Errorf("score %s: %w", args[0], err)
	}

	if scoreOpts.chart != "" {
		if err := writeChartFile(scoreOpts.chart, h); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if scoreOpts.json {
		return exporter.WriteJSON(out, res, true)
	}
	return writeScore(out, res)
}

func writeScore(w io.Writer, res model.ScoreResult) error {
	fmt.Fprintf(w, "%s  close %.2f\n\n", res.Ticker, res.LastClose)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "rule\tkind\tpoints\tnote")
	for _, r := range res.Rules {
		fmt.Fprintf(tw, "%s\t%s\t%+.0f\t%s\n", r.Name, r.Kind, r.Contribution, r.Commentary)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nS=%g  delta=%g  P=%g  total=%.2f\n", res.BaseScore, res.ThematicDelta, res.Penalty, res.Total)
	return nil
}

func writeChartFile(path string, h model.History) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	if err := exporter.WriteChartCSV(f, calculator.ChartSeries(h.Bars)); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
