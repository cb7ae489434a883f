package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"QuantPicker/internal/collector"
	"QuantPicker/internal/model"
	"QuantPicker/internal/notifier"
	"QuantPicker/internal/ranking"
	"QuantPicker/internal/recorder"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Options tunes a scheduled ranking run.
type Options struct {
	Days  int
	Limit int
	TopN  int
}

// Scheduler manages the periodic ranking task and bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Universe  collector.UniverseProvider
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Ctx       context.Context
	Opts      Options

	mu   sync.Mutex
	last *model.RankingRun
}

// NewScheduler creates a new Scheduler. n may be nil when notifications are disabled.
func NewScheduler(ctx context.Context, col *collector.Collector, uni collector.UniverseProvider, n notifier.Notifier, rec recorder.Recorder, opts Options) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Universe:  uni,
		Notifier:  n,
		Recorder:  rec,
		Ctx:       ctx,
		Opts:      opts,
	}
}

// RegisterAll registers the ranking task.
func (s *Scheduler) RegisterAll(rankCron string) error {
	if _, err := s.Cron.AddFunc(rankCron, s.rankTask); err != nil {
		return fmt.Errorf("register rank task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zap.S().Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	zap.S().Info("scheduler stopped")
}

// RunNow executes one ranking run immediately: universe, rank, record, notify.
func (s *Scheduler) RunNow() (*model.RankingRun, error) {
	tickers, err := s.Universe.Tickers(s.Ctx, s.Opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	run, err := s.Collector.RankAll(s.Ctx, tickers, s.Opts.Days)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.last = run
	s.mu.Unlock()

	if err := s.Recorder.RecordRun(s.Ctx, run); err != nil {
		zap.S().Errorf("record run %s: %v", run.ID, err)
	}
	s.trySend(notifier.FormatRankingReport(run, s.Opts.TopN))
	return run, nil
}

// Last returns the most recent run, or nil before the first one.
func (s *Scheduler) Last() *model.RankingRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) rankTask() {
	zap.S().Info("running scheduled ranking")
	// Drop expired cache entries before each run.
	if p, ok := s.Collector.Fetcher.(interface{ Purge() }); ok {
		p.Purge()
	}
	if _, err := s.RunNow(); err != nil {
		zap.S().Errorf("scheduled ranking: %v", err)
		s.trySend(notifier.FormatError("排行任务失败", err))
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	switch fields[0] {
	case "/top", "排行":
		n := s.Opts.TopN
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		run := s.Last()
		if run == nil {
			var err error
			if run, err = s.RunNow(); err != nil {
				return notifier.FormatError("排行失败", err)
			}
		}
		return notifier.FormatRankingReport(run, n)
	case "/score", "评分":
		if len(fields) < 2 {
			return "用法: /score 代码"
		}
		ticker := strings.ToUpper(fields[1])
		if run := s.Last(); run != nil {
			if r, ok := ranking.Find(run.Results, ticker); ok && len(r.Rules) > 0 {
				return notifier.FormatScoreDetail(r.ScoreResult)
			}
		}
		res, err := s.Collector.ScoreOne(ctx, ticker, s.Opts.Days)
		if err != nil {
			return notifier.FormatError(ticker+" 评分失败", err)
		}
		return notifier.FormatScoreDetail(res)
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		zap.S().Errorf("send notification: %v", err)
	}
}
