package recorder

import (
	"context"

	"QuantPicker/internal/model"
)

// NoopRecorder is a no-op implementation used when persistence is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ context.Context, _ *model.RankingRun) error { return nil }
func (n *NoopRecorder) ListRuns(_ context.Context, _ int) ([]model.RunSummary, error) {
	return nil, nil
}
func (n *NoopRecorder) GetRun(_ context.Context, _ string) (*model.RankingRun, error) {
	return nil, ErrRunNotFound
}
func (n *NoopRecorder) Close() error { return nil }
