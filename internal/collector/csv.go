package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"QuantPicker/internal/model"
)

// columnAliases maps accepted header names onto canonical columns.
var columnAliases = map[string]string{
	"date":   "date",
	"日期":     "date",
	"open":   "open",
	"开盘":     "open",
	"high":   "high",
	"最高":     "high",
	"low":    "low",
	"最低":     "low",
	"close":  "close",
	"收盘":     "close",
	"volume": "volume",
	"成交量":    "volume",
}

var requiredColumns = []string{"date", "open", "high", "low", "close", "volume"}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"20060102",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ErrMissingColumn is returned when an uploaded CSV lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// ErrNonFinite is returned for NaN or infinite prices and volumes.
var ErrNonFinite = errors.New("non-finite value")

// ParseCSV reads daily bars from CSV with a header row. Column order is free
// and unknown columns are ignored. Rows are returned oldest first.
func ParseCSV(r io.Reader) ([]model.OHLCV, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int)
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if canon, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			idx[canon] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var bars []model.OHLCV
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(rec) == 0 || (len(rec) == 1 && strings.TrimSpace(rec[0]) == "") {
			continue
		}
		bar, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	sortBars(bars)
	return bars, nil
}

func parseRow(rec []string, idx map[string]int) (model.OHLCV, error) {
	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(rec) {
			return "", fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
		return strings.TrimSpace(rec[i]), nil
	}
	num := func(col string) (float64, error) {
		s, err := field(col)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s %q: %w", col, s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s %q", ErrNonFinite, col, s)
		}
		return v, nil
	}

	ds, err := field("date")
	if err != nil {
		return model.OHLCV{}, err
	}
	ts, err := parseDate(ds)
	if err != nil {
		return model.OHLCV{}, err
	}
	bar := model.OHLCV{Time: ts}
	for _, p := range []struct {
		col string
		dst *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
		{"volume", &bar.Volume},
	} {
		if *p.dst, err = num(p.col); err != nil {
			return model.OHLCV{}, err
		}
	}
	return bar, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// CSVFetcher serves one uploaded history for every requested ticker.
type CSVFetcher struct {
	Bars []model.OHLCV
}

// NewCSVFetcher parses r into a fetcher.
func NewCSVFetcher(r io.Reader) (*CSVFetcher, error) {
	bars, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return &CSVFetcher{Bars: bars}, nil
}

// NewCSVFetcherFromFile parses the CSV file at path into a fetcher.
func NewCSVFetcherFromFile(path string) (*CSVFetcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return NewCSVFetcher(f)
}

func (f *CSVFetcher) Name() string { return "csv" }

// FetchDailyBars returns a copy of the uploaded bars regardless of ticker and days.
func (f *CSVFetcher) FetchDailyBars(_ context.Context, _ string, _ int) ([]model.OHLCV, error) {
	out := make([]model.OHLCV, len(f.Bars))
	copy(out, f.Bars)
	return out, nil
}
