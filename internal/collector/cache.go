package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"QuantPicker/internal/model"
)

type cacheEntry struct {
	bars    []model.OHLCV
	fetched time.Time
}

// CachingFetcher memoizes another Fetcher's results for a fixed TTL.
type CachingFetcher struct {
	Fetcher Fetcher
	TTL     time.Duration
	Now     func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCachingFetcher wraps f with a TTL cache.
func NewCachingFetcher(f Fetcher, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		Fetcher: f,
		TTL:     ttl,
		Now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachingFetcher) Name() string { return c.Fetcher.Name() }

func (c *CachingFetcher) FetchDailyBars(ctx context.Context, ticker string, days int) ([]model.OHLCV, error) {
	key := fmt.Sprintf("%s|%d", ticker, days)

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.Now().Sub(e.fetched) < c.TTL {
		return e.bars, nil
	}

	bars, err := c.Fetcher.FetchDailyBars(ctx, ticker, days)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{bars: bars, fetched: c.Now()}
	c.mu.Unlock()
	return bars, nil
}

// Purge drops every expired entry.
func (c *CachingFetcher) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.Now()
	for k, e := range c.entries {
		if now.Sub(e.fetched) >= c.TTL {
			delete(c.entries, k)
		}
	}
}
