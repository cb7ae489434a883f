package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"QuantPicker/internal/model"

	"github.com/shopspring/decimal"
	"github.com/tidwall/pretty"
)

// utf8BOM lets spreadsheet tools detect UTF-8 in exported files.
const utf8BOM = "\ufeff"

// ResultHeader is the column order of ranking exports.
var ResultHeader = []string{"rank", "code", "close", "score_S", "delta", "penalty_P", "total"}

// ChartHeader is the column order of chart series exports.
var ChartHeader = []string{"date", "close", "ma20", "ma60"}

// WriteCSV writes ranked results as CSV, BOM-prefixed.
func WriteCSV(w io.Writer, ranked []model.RankedResult) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultHeader); err != nil {
		return err
	}
	for _, r := range ranked {
		if err := cw.Write([]string{
			strconv.Itoa(r.Rank),
			r.Ticker,
			money(r.LastClose),
			num(r.BaseScore),
			num(r.ThematicDelta),
			num(r.Penalty),
			num(r.Total),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteChartCSV writes a close / MA series. Undefined MAs are left blank.
func WriteChartCSV(w io.Writer, points []model.ChartPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ChartHeader); err != nil {
		return err
	}
	opt := func(v *float64) string {
		if v == nil {
			return ""
		}
		return money(*v)
	}
	for _, p := range points {
		if err := cw.Write([]string{
			p.Time.Format("2006-01-02"),
			money(p.Close),
			opt(p.MA20),
			opt(p.MA60),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalJSON encodes v, optionally pretty-printed, newline-terminated.
func MarshalJSON(v any, indent bool) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	if indent {
		return pretty.Pretty(data), nil
	}
	return append(data, '\n'), nil
}

// WriteJSON encodes v, optionally pretty-printed.
func WriteJSON(w io.Writer, v any, indent bool) error {
	data, err := MarshalJSON(v, indent)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// money renders prices with the 2-decimal precision shown to users.
func money(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// num renders scores, dropping trailing zeros (15, 91.2, -10).
func num(v float64) string {
	if !finite(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).Round(4).String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
