package ranking

import (
	"testing"

	"QuantPicker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func results() []model.ScoreResult {
	return []model.ScoreResult{
		{Ticker: "600000", Total: 15},
		{Ticker: "000001", Total: 91.2},
		{Ticker: "600519", Total: -10},
		{Ticker: "000651", Total: 15},
	}
}

func TestRank_OrdersByTotalDescending(t *testing.T) {
	in := results()
	ranked := Rank(in)
	require.Len(t, ranked, 4)

	var got []string
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Rank)
		got = append(got, r.Ticker)
	}
	assert.Equal(t, []string{"000001", "000651", "600000", "600519"}, got)

	// input untouched
	assert.Equal(t, "600000", in[0].Ticker)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}

func TestTopN(t *testing.T) {
	ranked := Rank(results())
	assert.Len(t, TopN(ranked, 2), 2)
	assert.Len(t, TopN(ranked, 10), 4)
	assert.Len(t, TopN(ranked, 0), 4)
}

func TestFind(t *testing.T) {
	ranked := Rank(results())
	r, ok := Find(ranked, "600519")
	require.True(t, ok)
	assert.Equal(t, 4, r.Rank)

	_, ok = Find(ranked, "AAPL")
	assert.False(t, ok)
}
