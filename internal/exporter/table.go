package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"QuantPicker/internal/model"
)

// WriteTable prints ranked results as an aligned text table.
func WriteTable(w io.Writer, ranked []model.RankedResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(ResultHeader, "\t")+"\t")
	for _, r := range ranked {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Rank, r.Ticker, money(r.LastClose),
			num(r.BaseScore), num(r.ThematicDelta), num(r.Penalty), num(r.Total))
	}
	return tw.Flush()
}

// WriteBars prints a horizontal bar chart of totals, widest bar = width cells.
func WriteBars(w io.Writer, ranked []model.RankedResult, width int) error {
	if len(ranked) == 0 {
		return nil
	}
	maxAbs := 0.0
	for _, r := range ranked {
		if a := abs(r.Total); a > maxAbs {
			maxAbs = a
		}
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, r := range ranked {
		n := 0
		if maxAbs > 0 {
			n = int(abs(r.Total) / maxAbs * float64(width))
		}
		ch := "█"
		if r.Total < 0 {
			ch = "░"
		}
		fmt.Fprintf(tw, "%s\t%s %s\n", r.Ticker, strings.Repeat(ch, n), num(r.Total))
	}
	return tw.Flush()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
