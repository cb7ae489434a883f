package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"QuantPicker/internal/model"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Supported SQL dialects, named after their database/sql drivers.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// SQLRecorder persists ranking runs to SQLite or PostgreSQL.
type SQLRecorder struct {
	db      *sql.DB
	dialect string
	mu      sync.Mutex
}

// NewSQLRecorder opens (or creates) the database and runs migrations.
func NewSQLRecorder(dialect, dsn string) (*SQLRecorder, error) {
	if dialect == DialectSQLite && dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// one connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	r := &SQLRecorder{db: db, dialect: dialect}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.S().Infof("%s recorder opened", dialect)
	return r, nil
}

func (r *SQLRecorder) migrate() error {
	floatType, intType := "REAL", "INTEGER"
	if r.dialect == DialectPostgres {
		floatType, intType = "DOUBLE PRECISION", "BIGINT"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ranking_runs (
			id          TEXT PRIMARY KEY,
			source      TEXT NOT NULL,
			started_at  ` + intType + ` NOT NULL,
			finished_at ` + intType + ` NOT NULL,
			requested   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON ranking_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS run_results (
			run_id     TEXT NOT NULL REFERENCES ranking_runs(id),
			rank       INTEGER NOT NULL,
			code       TEXT NOT NULL,
			last_close ` + floatType + `,
			score_s    ` + floatType + `,
			delta      ` + floatType + `,
			penalty_p  ` + floatType + `,
			total      ` + floatType + `,
			PRIMARY KEY (run_id, rank)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_code ON run_results(code)`,

		`CREATE TABLE IF NOT EXISTS run_skipped (
			run_id TEXT NOT NULL REFERENCES ranking_runs(id),
			code   TEXT NOT NULL,
			reason TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (r *SQLRecorder) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *SQLRecorder) RecordRun(ctx context.Context, run *model.RankingRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.rebind(`INSERT INTO ranking_runs
		(id, source, started_at, finished_at, requested) VALUES (?,?,?,?,?)`),
		run.ID, run.Source, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.Requested,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	resStmt, err := tx.PrepareContext(ctx, r.rebind(`INSERT INTO run_results
		(run_id, rank, code, last_close, score_s, delta, penalty_p, total)
		VALUES (?,?,?,?,?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer resStmt.Close()
	for _, res := range run.Results {
		if _, err := resStmt.ExecContext(ctx, run.ID, res.Rank, res.Ticker, res.LastClose,
			res.BaseScore, res.ThematicDelta, res.Penalty, res.Total); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Ticker, err)
		}
	}

	for _, s := range run.Skipped {
		if _, err := tx.ExecContext(ctx, r.rebind(`INSERT INTO run_skipped (run_id, code, reason) VALUES (?,?,?)`),
			run.ID, s.Ticker, s.Reason); err != nil {
			return fmt.Errorf("insert skipped %s: %w", s.Ticker, err)
		}
	}

	return tx.Commit()
}

func (r *SQLRecorder) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT r.id, r.source, r.started_at, r.finished_at, r.requested,
		       (SELECT COUNT(*) FROM run_results x WHERE x.run_id = r.id),
		       COALESCE(t.code, ''), COALESCE(t.total, 0)
		FROM ranking_runs r
		LEFT JOIN run_results t ON t.run_id = r.id AND t.rank = 1
		ORDER BY r.started_at DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		var s model.RunSummary
		var started, finished int64
		if err := rows.Scan(&s.ID, &s.Source, &started, &finished, &s.Requested,
			&s.Scored, &s.TopTicker, &s.TopTotal); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.UnixMilli(started).UTC()
		s.FinishedAt = time.UnixMilli(finished).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLRecorder) GetRun(ctx context.Context, id string) (*model.RankingRun, error) {
	run := &model.RankingRun{ID: id}
	var started, finished int64
	err := r.db.QueryRowContext(ctx, r.rebind(
		`SELECT source, started_at, finished_at, requested FROM ranking_runs WHERE id = ?`), id,
	).Scan(&run.Source, &started, &finished, &run.Requested)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	run.FinishedAt = time.UnixMilli(finished).UTC()

	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT rank, code, last_close, score_s, delta, penalty_p, total
		FROM run_results WHERE run_id = ? ORDER BY rank`), id)
	if err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var res model.RankedResult
		if err := rows.Scan(&res.Rank, &res.Ticker, &res.LastClose, &res.BaseScore,
			&res.ThematicDelta, &res.Penalty, &res.Total); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		run.Results = append(run.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skipped, err := r.db.QueryContext(ctx, r.rebind(
		`SELECT code, reason FROM run_skipped WHERE run_id = ? ORDER BY code`), id)
	if err != nil {
		return nil, fmt.Errorf("get skipped: %w", err)
	}
	defer skipped.Close()
	for skipped.Next() {
		var s model.SkippedTicker
		if err := skipped.Scan(&s.Ticker, &s.Reason); err != nil {
			return nil, fmt.Errorf("scan skipped: %w", err)
		}
		run.Skipped = append(run.Skipped, s)
	}
	return run, skipped.Err()
}

func (r *SQLRecorder) Close() error {
	zap.S().Infof("closing %s recorder", r.dialect)
	return r.db.Close()
}
