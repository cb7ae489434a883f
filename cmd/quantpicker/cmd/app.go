package cmd

import (
	"fmt"

	"QuantPicker/internal/collector"
	"QuantPicker/internal/config"
	"QuantPicker/internal/recorder"
	"QuantPicker/internal/strategy"

	"go.uber.org/zap"
)

// newFetcher builds the configured data source, cached for cfg.Rank.CacheTTL.
func newFetcher(c *config.Config) (collector.Fetcher, error) {
	var f collector.Fetcher
	switch c.DataSource.Provider {
	case config.ProviderYahoo:
		f = collector.NewYahooFetcher(c.Proxy)
	case config.ProviderAlpaca:
		f = collector.NewAlpacaFetcher(c.DataSource.AlpacaKey, c.DataSource.AlpacaSecret, c.DataSource.AlpacaFeed)
	case config.ProviderCSV:
		cf, err := collector.NewCSVFetcherFromFile(c.DataSource.CSVPath)
		if err != nil {
			return nil, err
		}
		return cf, nil
	case config.ProviderMock:
		f = &collector.MockFetcher{}
	default:
		return nil, fmt.Errorf("unknown provider %q", c.DataSource.Provider)
	}
	zap.S().Infof("data source: %s", f.Name())
	return collector.NewCachingFetcher(f, c.Rank.CacheTTL), nil
}

// newUniverse picks, in order: an explicit list, the configured list, an HTML
// constituents page, and finally the demo tickers. Only the last two are
// capped by universe.limit.
func newUniverse(c *config.Config, custom string) collector.UniverseProvider {
	if tickers := collector.ParseTickers(custom); len(tickers) > 0 {
		return collector.CustomUniverse(tickers)
	}
	if len(c.Universe.Tickers) > 0 {
		return collector.CustomUniverse(c.Universe.Tickers)
	}
	if c.Universe.HTMLURL != "" {
		return collector.NewHTMLTableUniverse(c.Universe.HTMLURL, c.Universe.HTMLSelector, c.Universe.HTMLColumn, c.Proxy)
	}
	return collector.StaticUniverse(collector.DemoTickers)
}

func newCollector(c *config.Config) (*collector.Collector, error) {
	f, err := newFetcher(c)
	if err != nil {
		return nil, fmt.Errorf("init fetcher: %w", err)
	}
	return collector.NewCollector(f, strategy.NewScorer(c.Rank.Weights), c.Rank.Concurrency), nil
}

// openRecorder falls back to the noop recorder so a broken database never blocks ranking.
func openRecorder(c *config.Config) recorder.Recorder {
	rec, err := recorder.Open(c.Database.Driver, c.Database.DSN)
	if err != nil {
		zap.S().Warnf("init %s recorder failed, using noop: %v", c.Database.Driver, err)
		return recorder.NewNoopRecorder()
	}
	return rec
}
