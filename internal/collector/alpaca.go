package collector

import (
	"context"
	"fmt"
	"time"

	"QuantPicker/internal/model"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
)

// alpacaBars is the subset of the Alpaca market data client used here.
type alpacaBars interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaFetcher implements Fetcher using Alpaca's market data v2 API.
type AlpacaFetcher struct {
	Client alpacaBars
	Feed   string
	Now    func() time.Time
}

// NewAlpacaFetcher creates a fetcher authenticated with the given key pair.
func NewAlpacaFetcher(apiKey, apiSecret, feed string) *AlpacaFetcher {
	return &AlpacaFetcher{
		Client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		}),
		Feed: feed,
		Now:  time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

// FetchDailyBars returns fully adjusted daily bars covering the last days calendar days.
func (f *AlpacaFetcher) FetchDailyBars(ctx context.Context, ticker string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start, end := lookback(f.Now(), days)
	raw, err := f.Client.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		End:        end,
		Feed:       marketdata.Feed(f.Feed),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", ticker, err)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, model.OHLCV{
			Time:   b.Timestamp.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	sortBars(bars)
	return bars, nil
}
