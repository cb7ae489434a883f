package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"QuantPicker/internal/collector"
	"QuantPicker/internal/model"
	"QuantPicker/internal/recorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

type memRecorder struct {
	recorder.NoopRecorder
	runs []*model.RankingRun
}

func (m *memRecorder) RecordRun(_ context.Context, run *model.RankingRun) error {
	m.runs = append(m.runs, run)
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *captureNotifier, *memRecorder) {
	t.Helper()
	fetcher := &collector.MockFetcher{
		Now: func() time.Time { return time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC) },
		Err: map[string]error{"BAD": errors.New("no data")},
	}
	col := collector.NewCollector(fetcher, nil, 2)
	n := &captureNotifier{}
	rec := &memRecorder{}
	s := NewScheduler(context.Background(), col, collector.StaticUniverse{"600519", "000001", "BAD"}, n, rec,
		Options{Days: 120, Limit: 10, TopN: 2})
	return s, n, rec
}

func TestRunNow(t *testing.T) {
	s, n, rec := newTestScheduler(t)

	run, err := s.RunNow()
	require.NoError(t, err)
	assert.Len(t, run.Results, 2)
	require.Len(t, run.Skipped, 1)
	assert.Equal(t, "BAD", run.Skipped[0].Ticker)

	assert.Same(t, run, s.Last())
	require.Len(t, rec.runs, 1)
	assert.Equal(t, run.ID, rec.runs[0].ID)
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "评分 2/3")
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	require.NoError(t, s.RegisterAll("0 30 15 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterAll("not a cron"))
}

func TestHandleCommand(t *testing.T) {
	s, n, _ := newTestScheduler(t)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/help"), "/score")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/top")

	top := s.HandleCommand(ctx, "/top 1")
	assert.Contains(t, top, " 1. ")
	assert.NotContains(t, top, " 2. ")
	assert.NotNil(t, s.Last())
	assert.Len(t, n.sent, 1)

	assert.Contains(t, s.HandleCommand(ctx, "/score"), "用法")
	assert.Contains(t, s.HandleCommand(ctx, "/score 600519"), "600519")
	assert.Contains(t, s.HandleCommand(ctx, "/score bad"), "BAD 评分失败")
}

func TestTrySendWithoutNotifier(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.Notifier = nil
	_, err := s.RunNow()
	assert.NoError(t, err)
}
