package collector

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"QuantPicker/internal/model"
)

// MockFetcher returns deterministic synthetic data for development and testing.
// Each ticker gets its own reproducible random walk unless Data overrides it.
type MockFetcher struct {
	Price float64
	Data  map[string][]model.OHLCV
	Err   map[string]error
	Now   func() time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, ticker string, days int) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Err[ticker]; ok {
		return nil, err
	}
	if bars, ok := m.Data[ticker]; ok {
		return bars, nil
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	price := m.Price
	if price == 0 {
		price = 100
	}
	return generateMockBars(ticker, price, now(), days), nil
}

func generateMockBars(ticker string, basePrice float64, end time.Time, days int) []model.OHLCV {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	start, _ := lookback(end, days)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	var bars []model.OHLCV
	p := basePrice
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		open := p
		p *= 1 + (rng.Float64()-0.48)*0.04
		hi, lo := open, p
		if p > open {
			hi, lo = p, open
		}
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   open,
			High:   hi * (1 + rng.Float64()*0.01),
			Low:    lo * (1 - rng.Float64()*0.01),
			Close:  p,
			Volume: 500000 + rng.Float64()*1000000,
		})
	}
	return bars
}
