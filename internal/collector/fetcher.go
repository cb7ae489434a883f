package collector

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"QuantPicker/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, ticker string, days int) ([]model.OHLCV, error)
	Name() string
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// lookback returns the [start, end] calendar window for a days-back request.
func lookback(now time.Time, days int) (start, end time.Time) {
	return now.AddDate(0, 0, -days), now
}

func sortBars(bars []model.OHLCV) {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
}
