package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"QuantPicker/internal/exporter"
	"QuantPicker/internal/model"
	"QuantPicker/internal/ranking"

	"github.com/spf13/cobra"
)

var rankOpts struct {
	tickers string
	limit   int
	days    int
	source  string
	out     string
	format  string
	top     int
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score a ticker universe and print the ranking",
	Args:  cobra.NoArgs,
	RunE:  runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
	f := rankCmd.Flags()
	f.StringVar(&rankOpts.tickers, "tickers", "", "comma-separated tickers (default: configured universe)")
	f.IntVar(&rankOpts.limit, "limit", 0, "max tickers to rank (default from config)")
	f.IntVar(&rankOpts.days, "days", 0, "calendar days of history, 60..250 (default from config)")
	f.StringVar(&rankOpts.source, "source", "", "data provider: yahoo, alpaca, csv, mock")
	f.StringVarP(&rankOpts.out, "out", "o", "", "write output to file instead of stdout")
	f.StringVarP(&rankOpts.format, "format", "f", "table", "output format: table, csv, json")
	f.IntVar(&rankOpts.top, "top", 0, "bars shown in the table chart (default rank.top_n)")
}

// applyDataFlags overrides config with command flags and validates the result.
func applyDataFlags(source string, days, limit int) error {
	if source != "" {
		cfg.DataSource.Provider = source
	}
	if days > 0 {
		cfg.DataSource.Days = days
	}
	if limit > 0 {
		cfg.Universe.Limit = limit
	}
	return cfg.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runRank(cmd *cobra.Command, args []string) error {
	switch rankOpts.format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("unknown format %q", rankOpts.format)
	}
	if err := applyDataFlags(rankOpts.source, rankOpts.days, rankOpts.limit); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	col, err := newCollector(cfg)
	if err != nil {
		return err
	}
	tickers, err := newUniverse(cfg, rankOpts.tickers).Tickers(ctx, cfg.Universe.Limit)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}
	stderr := cmd.ErrOrStderr()
	col.OnProgress = func(done, total int, ticker string) {
		fmt.Fprintf(stderr, "\r[%d/%d] %-8s", done, total, ticker)
		if done == total {
			fmt.Fprintln(stderr)
		}
	}

	run, err := col.RankAll(ctx, tickers, cfg.DataSource.Days)
	if err != nil {
		return err
	}

	rec := openRecorder(cfg)
	defer rec.Close()
	if err := rec.RecordRun(ctx, run); err != nil {
		fmt.Fprintf(stderr, "warning: run not recorded: %v\n", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if rankOpts.out != "" {
		file, err := os.Create(rankOpts.out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer file.Close()
		w = file
	}
	if err := writeRun(w, run, rankOpts.format, rankOpts.top); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if rankOpts.out != "" {
		fmt.Fprintf(stderr, "wrote %d rows to %s\n", len(run.Results), rankOpts.out)
	}
	return nil
}

func writeRun(w io.Writer, run *model.RankingRun, format string, top int) error {
	switch format {
	case "csv":
		return exporter.WriteCSV(w, run.Results)
	case "json":
		return exporter.WriteJSON(w, run, true)
	}

	fmt.Fprintf(w, "run %s  source=%s  scored=%d/%d\n\n", run.ID, run.Source, len(run.Results), run.Requested)
	if err := exporter.WriteTable(w, run.Results); err != nil {
		return err
	}
	if top <= 0 {
		top = cfg.Rank.TopN
	}
	if len(run.Results) > 0 {
		fmt.Fprintf(w, "\nTop %d\n", len(ranking.TopN(run.Results, top)))
		if err := exporter.WriteBars(w, ranking.TopN(run.Results, top), 40); err != nil {
			return err
		}
	}
	if len(run.Skipped) > 0 {
		fmt.Fprintf(w, "\nskipped %d:\n", len(run.Skipped))
		for _, s := range run.Skipped {
			fmt.Fprintf(w, "  %s: %s\n", s.Ticker, s.Reason)
		}
	}
	return nil
}
