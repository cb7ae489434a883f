package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"QuantPicker/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DATA_PROVIDER", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderYahoo, cfg.DataSource.Provider)
	assert.Equal(t, 120, cfg.DataSource.Days)
	assert.Equal(t, 80, cfg.Universe.Limit)
	assert.Equal(t, 8, cfg.Rank.Concurrency)
	assert.Equal(t, 15, cfg.Rank.TopN)
	assert.Equal(t, time.Hour, cfg.Rank.CacheTTL)
	assert.Equal(t, strategy.DefaultWeights(), cfg.Rank.Weights)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/quantpicker.db", cfg.Database.DSN)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
data_source:
  provider: mock
  days: 200
universe:
  limit: 30
  tickers: ["600519", "000001"]
rank:
  concurrency: 2
  cache_ttl: 10m
  weights:
    delta_multiplier: 3
    long_ma: 50
telegram:
  bot_token: abc
  chat_id: "42"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("DAYS_BACK", "90")
	t.Setenv("TICKERS", " AAPL, MSFT ,,")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderMock, cfg.DataSource.Provider)
	assert.Equal(t, 90, cfg.DataSource.Days)
	assert.Equal(t, 30, cfg.Universe.Limit)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Universe.Tickers)
	assert.Equal(t, 2, cfg.Rank.Concurrency)
	assert.Equal(t, 10*time.Minute, cfg.Rank.CacheTTL)
	assert.Equal(t, 3.0, cfg.Rank.Weights.DeltaMultiplier)
	assert.Equal(t, 50, cfg.Rank.Weights.LongMA)
	assert.Equal(t, 20, cfg.Rank.Weights.MidMA)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitZeroWeightsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
rank:
  weights:
    ma_order_other_points: 0
    breakout_points: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	want := strategy.DefaultWeights()
	want.MAOrderOtherPoints = 0
	want.BreakoutPoints = 0
	assert.Equal(t, want, cfg.Rank.Weights)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_source: [unterminated"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.DataSource.Provider = ProviderMock
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "akshare" }},
		{"alpaca without keys", func(c *Config) { c.DataSource.Provider = ProviderAlpaca }},
		{"csv without path", func(c *Config) { c.DataSource.Provider = ProviderCSV }},
		{"days too small", func(c *Config) { c.DataSource.Days = 10 }},
		{"days too large", func(c *Config) { c.DataSource.Days = 400 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres"; c.Database.DSN = "" }},
		{"bad weights", func(c *Config) { c.Rank.Weights.VolumeStrongRatio = 0.95 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			require.NoError(t, c.Validate())
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
