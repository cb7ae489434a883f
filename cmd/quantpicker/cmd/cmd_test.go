package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"QuantPicker/internal/collector"
	"QuantPicker/internal/config"
	"QuantPicker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("DB_DRIVER", "none")
	c, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	return c
}

func TestNewUniverse_Precedence(t *testing.T) {
	c := testConfig(t)

	assert.Equal(t, collector.CustomUniverse{"A", "B"}, newUniverse(c, "A, B,A"))
	assert.Equal(t, collector.StaticUniverse(collector.DemoTickers), newUniverse(c, ""))

	c.Universe.HTMLURL = "http://example.invalid/list"
	_, ok := newUniverse(c, "").(*collector.HTMLTableUniverse)
	assert.True(t, ok)

	c.Universe.Tickers = []string{"X"}
	assert.Equal(t, collector.CustomUniverse{"X"}, newUniverse(c, ""))
}

func TestNewUniverse_ExplicitListIgnoresLimit(t *testing.T) {
	c := testConfig(t)
	c.Universe.Limit = 2

	got, err := newUniverse(c, "A,B,C,D").Tickers(context.Background(), c.Universe.Limit)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, got)

	c.Universe.Tickers = []string{"X", "Y", "Z"}
	got, err = newUniverse(c, "").Tickers(context.Background(), c.Universe.Limit)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, got)

	c.Universe.Tickers = nil
	got, err = newUniverse(c, "").Tickers(context.Background(), c.Universe.Limit)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestNewFetcher(t *testing.T) {
	c := testConfig(t)

	c.DataSource.Provider = config.ProviderMock
	f, err := newFetcher(c)
	require.NoError(t, err)
	assert.Equal(t, "mock", f.Name())
	_, cached := f.(*collector.CachingFetcher)
	assert.True(t, cached)

	c.DataSource.Provider = config.ProviderCSV
	c.DataSource.CSVPath = filepath.Join(t.TempDir(), "nope.csv")
	_, err = newFetcher(c)
	assert.Error(t, err)

	c.DataSource.Provider = "carrier-pigeon"
	_, err = newFetcher(c)
	assert.Error(t, err)
}

func TestWriteRun(t *testing.T) {
	run := &model.RankingRun{
		ID: "r1", Source: "mock", Requested: 3,
		Results: []model.RankedResult{
			{Rank: 1, ScoreResult: model.ScoreResult{Ticker: "AAA", LastClose: 10, BaseScore: 15, Total: 15}},
			{Rank: 2, ScoreResult: model.ScoreResult{Ticker: "BBB", LastClose: 5, Penalty: 10, Total: -10}},
		},
		Skipped: []model.SkippedTicker{{Ticker: "CCC", Reason: "no data"}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeRun(&buf, run, "table", 1))
	out := buf.String()
	assert.Contains(t, out, "scored=2/3")
	assert.Contains(t, out, "Top 1")
	assert.Contains(t, out, "CCC: no data")

	buf.Reset()
	require.NoError(t, writeRun(&buf, run, "csv", 0))
	assert.Contains(t, buf.String(), "2,BBB,5.00,0,0,10,-10")
}

func TestWriteScore(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScore(&buf, model.ScoreResult{
		Ticker: "AAA", LastClose: 12.5, BaseScore: 15, Total: 15,
		Rules: []model.RuleHit{{Name: "站上MA60", Kind: model.KindBase, Contribution: 15, Commentary: "close>MA60"}},
	}))
	assert.Contains(t, buf.String(), "AAA  close 12.50")
	assert.Contains(t, buf.String(), "+15")
	assert.Contains(t, buf.String(), "total=15.00")
}

func TestRankCommand_MockCSV(t *testing.T) {
	t.Setenv("DB_DRIVER", "none")
	t.Setenv("CONFIG_PATH", "")
	out := filepath.Join(t.TempDir(), "ranking.csv")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"rank", "--source", "mock", "--tickers", "600519,000001", "--format", "csv", "--out", out,
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, stderr.String(), "wrote 2 rows")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
}
