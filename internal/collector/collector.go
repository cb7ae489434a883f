package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"QuantPicker/internal/model"
	"QuantPicker/internal/ranking"
	"QuantPicker/internal/strategy"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called after each ticker of a batch finishes.
type ProgressFunc func(done, total int, ticker string)

// Collector orchestrates data fetching and scoring for a batch of tickers.
type Collector struct {
	Fetcher     Fetcher
	Scorer      *strategy.Scorer
	Concurrency int
	OnProgress  ProgressFunc
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, scorer *strategy.Scorer, concurrency int) *Collector {
	if scorer == nil {
		scorer = strategy.NewScorer(strategy.DefaultWeights())
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Collector{Fetcher: fetcher, Scorer: scorer, Concurrency: concurrency}
}

// Collect fetches the history of one ticker.
func (c *Collector) Collect(ctx context.Context, ticker string, days int) (model.History, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, ticker, days)
	if err != nil {
		return model.History{}, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	return model.History{Ticker: ticker, Bars: bars}, nil
}

// ScoreOne fetches and scores one ticker.
func (c *Collector) ScoreOne(ctx context.Context, ticker string, days int) (model.ScoreResult, error) {
	h, err := c.Collect(ctx, ticker, days)
	if err != nil {
		return model.ScoreResult{}, err
	}
	res, err := c.Scorer.Score(h)
	if err != nil {
		return model.ScoreResult{}, fmt.Errorf("score %s: %w", ticker, err)
	}
	return res, nil
}

// RankAll scores every ticker concurrently and returns the ranked run.
// Tickers that cannot be fetched or have no history are skipped, not fatal.
// Only cancellation of ctx aborts the batch.
func (c *Collector) RankAll(ctx context.Context, tickers []string, days int) (*model.RankingRun, error) {
	run := &model.RankingRun{
		ID:        uuid.NewString(),
		Source:    c.Fetcher.Name(),
		StartedAt: time.Now().UTC(),
		Requested: len(tickers),
	}

	results := make([]*model.ScoreResult, len(tickers))
	failures := make([]error, len(tickers))

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			res, err := c.ScoreOne(gctx, ticker, days)
			if err != nil {
				failures[i] = err
				if errors.Is(err, strategy.ErrEmptyHistory) {
					zap.S().Debugf("rank: %s has no history, skipped", ticker)
				} else if gctx.Err() == nil {
					zap.S().Warnf("rank: %s skipped: %v", ticker, err)
				}
			} else {
				results[i] = &res
			}

			mu.Lock()
			done++
			if c.OnProgress != nil {
				c.OnProgress(done, len(tickers), ticker)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rank cancelled: %w", err)
	}

	scored := make([]model.ScoreResult, 0, len(tickers))
	for i, ticker := range tickers {
		if results[i] != nil {
			scored = append(scored, *results[i])
			continue
		}
		run.Skipped = append(run.Skipped, model.SkippedTicker{Ticker: ticker, Reason: failures[i].Error()})
	}
	run.Results = ranking.Rank(scored)
	run.FinishedAt = time.Now().UTC()

	zap.S().Infof("rank: run %s scored %d/%d tickers via %s in %s",
		run.ID, len(run.Results), run.Requested, run.Source, run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	return run, nil
}

// RankHistories ranks histories that are already in memory, e.g. from an upload.
func (c *Collector) RankHistories(histories []model.History, source string) *model.RankingRun {
	run := &model.RankingRun{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
		Requested: len(histories),
	}
	scored := make([]model.ScoreResult, 0, len(histories))
	for _, h := range histories {
		res, err := c.Scorer.Score(h)
		if err != nil {
			run.Skipped = append(run.Skipped, model.SkippedTicker{Ticker: h.Ticker, Reason: err.Error()})
			continue
		}
		scored = append(scored, res)
	}
	run.Results = ranking.Rank(scored)
	run.FinishedAt = time.Now().UTC()
	return run
}
