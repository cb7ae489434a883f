package ranking

import (
	"sort"

	"QuantPicker/internal/model"
)

// Rank orders results by Total descending and numbers them from 1.
// Equal totals are ordered by ticker so output is deterministic.
func Rank(results []model.ScoreResult) []model.RankedResult {
	sorted := make([]model.ScoreResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})

	ranked := make([]model.RankedResult, len(sorted))
	for i, r := range sorted {
		ranked[i] = model.RankedResult{Rank: i + 1, ScoreResult: r}
	}
	return ranked
}

// TopN returns at most n leading entries. n <= 0 returns everything.
func TopN(ranked []model.RankedResult, n int) []model.RankedResult {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// Find returns the ranked entry for ticker.
func Find(ranked []model.RankedResult, ticker string) (model.RankedResult, bool) {
	for _, r := range ranked {
		if r.Ticker == ticker {
			return r, true
		}
	}
	return model.RankedResult{}, false
}
