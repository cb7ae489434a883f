package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"QuantPicker/internal/strategy"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported data providers.
const (
	ProviderYahoo  = "yahoo"
	ProviderAlpaca = "alpaca"
	ProviderCSV    = "csv"
	ProviderMock   = "mock"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider     string `yaml:"provider"`
		Days         int    `yaml:"days"`
		CSVPath      string `yaml:"csv_path"`
		AlpacaKey    string `yaml:"alpaca_api_key"`
		AlpacaSecret string `yaml:"alpaca_api_secret"`
		AlpacaFeed   string `yaml:"alpaca_feed"`
	} `yaml:"data_source"`
	Universe struct {
		Limit        int      `yaml:"limit"`
		Tickers      []string `yaml:"tickers"`
		HTMLURL      string   `yaml:"html_url"`
		HTMLSelector string   `yaml:"html_selector"`
		HTMLColumn   int      `yaml:"html_column"`
	} `yaml:"universe"`
	Rank struct {
		Concurrency int              `yaml:"concurrency"`
		TopN        int              `yaml:"top_n"`
		CacheTTL    time.Duration    `yaml:"cache_ttl"`
		Weights     strategy.Weights `yaml:"weights"`
	} `yaml:"rank"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RankCron string `yaml:"rank_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := &Config{}
	// Weight keys absent from the file keep their defaults; explicit zeros stay.
	cfg.Rank.Weights = strategy.DefaultWeights()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("CSV_PATH"); v != "" {
		c.DataSource.CSVPath = v
	}
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		c.DataSource.AlpacaKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		c.DataSource.AlpacaSecret = v
	}
	if v := os.Getenv("DAYS_BACK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DataSource.Days = n
		}
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.Universe.Tickers = splitList(v)
	}
	if v := os.Getenv("UNIVERSE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Universe.Limit = n
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("CRON_RANK"); v != "" {
		c.Schedule.RankCron = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.DataSource.Days == 0 {
		c.DataSource.Days = 120
	}
	if c.DataSource.AlpacaFeed == "" {
		c.DataSource.AlpacaFeed = "iex"
	}
	if c.Universe.Limit == 0 {
		c.Universe.Limit = 80
	}
	if c.Universe.HTMLSelector == "" {
		c.Universe.HTMLSelector = "table"
	}
	if c.Rank.Concurrency == 0 {
		c.Rank.Concurrency = 8
	}
	if c.Rank.TopN == 0 {
		c.Rank.TopN = 15
	}
	if c.Rank.CacheTTL == 0 {
		c.Rank.CacheTTL = time.Hour
	}
	if c.Rank.Weights == (strategy.Weights{}) {
		c.Rank.Weights = strategy.DefaultWeights()
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "data/quantpicker.db"
	}
	if c.Schedule.RankCron == "" {
		c.Schedule.RankCron = "0 30 15 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderAlpaca:
		if c.DataSource.AlpacaKey == "" || c.DataSource.AlpacaSecret == "" {
			return fmt.Errorf("data_source.alpaca_api_key and alpaca_api_secret are required for provider %q", ProviderAlpaca)
		}
	case ProviderCSV:
		if c.DataSource.CSVPath == "" {
			return fmt.Errorf("data_source.csv_path is required for provider %q", ProviderCSV)
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.Days < 60 || c.DataSource.Days > 250 {
		return fmt.Errorf("data_source.days must be within 60..250")
	}
	if c.Universe.Limit < 1 {
		return fmt.Errorf("universe.limit must be positive")
	}
	if c.Rank.Concurrency < 1 {
		return fmt.Errorf("rank.concurrency must be positive")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for postgres")
	}
	if err := c.Rank.Weights.Validate(); err != nil {
		return fmt.Errorf("rank: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
