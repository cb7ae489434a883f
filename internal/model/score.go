package model

import "time"

// RuleKind tells which bucket of the score a rule contributes to.
type RuleKind string

const (
	KindBase    RuleKind = "BASE"
	KindDelta   RuleKind = "DELTA"
	KindPenalty RuleKind = "PENALTY"
)

// RuleHit records a single rule that fired during scoring.
type RuleHit struct {
	Name         string   `json:"name"`
	Kind         RuleKind `json:"kind"`
	Contribution float64  `json:"contribution"`
	Commentary   string   `json:"commentary"`
}

// ScoreResult is the output of the window scorer for one instrument.
type ScoreResult struct {
	Ticker        string    `json:"code"`
	LastClose     float64   `json:"close"`
	BaseScore     float64   `json:"score_S"`
	ThematicDelta float64   `json:"delta"`
	Penalty       float64   `json:"penalty_P"`
	Total         float64   `json:"total"`
	Rules         []RuleHit `json:"rules,omitempty"`
}

// RankedResult is a ScoreResult with its 1-based position in a batch.
type RankedResult struct {
	Rank int `json:"rank"`
	ScoreResult
}

// SkippedTicker is an instrument that could not be scored in a batch.
type SkippedTicker struct {
	Ticker string `json:"code"`
	Reason string `json:"reason"`
}

// RankingRun is one batch execution over a ticker list.
type RankingRun struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Requested  int             `json:"requested"`
	Results    []RankedResult  `json:"results"`
	Skipped    []SkippedTicker `json:"skipped,omitempty"`
}

// RunSummary is a persisted run without its per-ticker rows.
type RunSummary struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Requested  int       `json:"requested"`
	Scored     int       `json:"scored"`
	TopTicker  string    `json:"top_code"`
	TopTotal   float64   `json:"top_total"`
}
