package recorder

import (
	"context"
	"errors"
	"fmt"

	"QuantPicker/internal/model"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// Recorder persists ranking runs for later review and export.
type Recorder interface {
	RecordRun(ctx context.Context, run *model.RankingRun) error
	ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error)
	GetRun(ctx context.Context, id string) (*model.RankingRun, error)
	Close() error
}

// Open returns the recorder for driver: "sqlite", "postgres" or "none".
func Open(driver, dsn string) (Recorder, error) {
	switch driver {
	case "none", "":
		return NewNoopRecorder(), nil
	case DialectSQLite, DialectPostgres:
		return NewSQLRecorder(driver, dsn)
	default:
		return nil, fmt.Errorf("unsupported recorder driver %q", driver)
	}
}
