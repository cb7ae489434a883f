package strategy

import (
	"testing"
	"time"

	"QuantPicker/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBars(closes []float64, volume float64) []model.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volume,
		}
	}
	return bars
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ruleContribution(res model.ScoreResult, name string) float64 {
	for _, r := range res.Rules {
		if r.Name == name {
			return r.Contribution
		}
	}
	return 0
}

func TestScore_EmptyHistory(t *testing.T) {
	_, err := Score(model.History{Ticker: "000001"})
	require.ErrorIs(t, err, ErrEmptyHistory)
}

func TestScore_SingleBar(t *testing.T) {
	res, err := Score(model.History{Ticker: "X", Bars: makeBars([]float64{42}, 1000)})
	require.NoError(t, err)
	assert.Equal(t, "X", res.Ticker)
	assert.Equal(t, 42.0, res.LastClose)
	assert.Zero(t, res.BaseScore)
	assert.Zero(t, res.ThematicDelta)
	assert.Zero(t, res.Penalty)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Rules)
}

func TestScore_ConstantSixtySessions(t *testing.T) {
	res, err := Score(model.History{Ticker: "FLAT", Bars: makeBars(constant(60, 100), 1000)})
	require.NoError(t, err)

	assert.Equal(t, 15.0, res.BaseScore)
	assert.Zero(t, res.ThematicDelta)
	assert.Zero(t, res.Penalty)
	assert.Equal(t, 15.0, res.Total)

	assert.Equal(t, 5.0, ruleContribution(res, RuleMAOrder))
	assert.Equal(t, 10.0, ruleContribution(res, RuleAboveLongMA))
	assert.Zero(t, ruleContribution(res, RuleBullishStack))
	assert.Zero(t, ruleContribution(res, RuleBreakout))
	assert.Zero(t, ruleContribution(res, RuleVolumeContraction))
}

func TestScore_TenSessionsOnlyMomentum(t *testing.T) {
	closes := []float64{100, 102, 104, 106, 108, 110, 112, 114, 116, 120}
	res, err := Score(model.History{Ticker: "MOM", Bars: makeBars(closes, 1000)})
	require.NoError(t, err)

	// 120/100 - 1 = 20%: both momentum tiers fire.
	assert.Equal(t, 10.0, res.ThematicDelta)
	assert.Zero(t, res.BaseScore)
	assert.Zero(t, res.Penalty)
	assert.InDelta(t, 27.0, res.Total, 1e-9)
	assert.Zero(t, ruleContribution(res, RuleBreakout))
	assert.Zero(t, ruleContribution(res, RuleDrawdown))
}

func TestScore_NineSessionsNoMomentum(t *testing.T) {
	closes := []float64{100, 102, 104, 106, 108, 110, 112, 114, 130}
	res, err := Score(model.History{Ticker: "SHORT", Bars: makeBars(closes, 1000)})
	require.NoError(t, err)
	assert.Zero(t, res.ThematicDelta)
}

// bullishFixture: 50 flat sessions at 100, then 101..110; last volume drops to 300.
func bullishFixture() []model.OHLCV {
	closes := constant(50, 100)
	for i := 0; i < 10; i++ {
		closes = append(closes, 101+float64(i))
	}
	bars := makeBars(closes, 1000)
	for i := range bars {
		bars[i].High = bars[i].Close + 0.5
	}
	bars[len(bars)-1].Volume = 300
	return bars
}

func TestScore_HandComputedBullish(t *testing.T) {
	res, err := Score(model.History{Ticker: "BULL", Bars: bullishFixture()})
	require.NoError(t, err)

	// volume ratio 300/860 < 0.5
	assert.Equal(t, 20.0, ruleContribution(res, RuleVolumeContraction))
	// MA20 102.75 > MA60 100.92
	assert.Equal(t, 15.0, ruleContribution(res, RuleMAOrder))
	// 110 > 109.5
	assert.Equal(t, 15.0, ruleContribution(res, RuleBreakout))
	assert.Equal(t, 10.0, ruleContribution(res, RuleAboveLongMA))
	// MA10 105.5 > 102.75 > 100.92
	assert.Equal(t, 15.0, ruleContribution(res, RuleBullishStack))
	// 110/101 - 1 = 8.9%
	assert.Equal(t, 6.0, ruleContribution(res, RuleMomentum))
	assert.Zero(t, res.Penalty)

	assert.Equal(t, 75.0, res.BaseScore)
	assert.Equal(t, 6.0, res.ThematicDelta)
	assert.InDelta(t, 75+6*2.7, res.Total, 1e-9)
}

func TestScore_DrawdownPenalty(t *testing.T) {
	tests := []struct {
		name    string
		last    float64
		penalty float64
		total   float64
	}{
		{"mild drawdown", 92, 5, 0},
		{"deep drawdown", 85, 15, -10},
		{"near high", 98, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closes := append(constant(59, 100), tt.last)
			res, err := Score(model.History{Ticker: "DD", Bars: makeBars(closes, 1000)})
			require.NoError(t, err)
			assert.Equal(t, tt.penalty, res.Penalty)
			assert.InDelta(t, tt.total, res.Total, 1e-9)
		})
	}
}

func TestScore_VolumeContractionTiers(t *testing.T) {
	tests := []struct {
		last float64
		want float64
	}{
		{100, 20},  // 100/820
		{700, 10},  // 700/940 = 0.745
		{1000, 0},  // 1.0
		{5000, 0},
	}
	for _, tt := range tests {
		bars := makeBars(constant(5, 10), 1000)
		bars[4].Volume = tt.last
		res, err := Score(model.History{Bars: bars})
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.BaseScore, "last volume %.0f", tt.last)
	}
}

func TestScore_WindowGating(t *testing.T) {
	tests := []struct {
		name string
		n    int
		last float64
		rule string
		want float64
	}{
		{"breakout needs 20 sessions", 19, 110, RuleBreakout, 0},
		{"breakout at 20 sessions", 20, 110, RuleBreakout, 15},
		{"drawdown needs 60 sessions", 59, 85, RuleDrawdown, 0},
		{"drawdown at 60 sessions", 60, 85, RuleDrawdown, 15},
		{"above MA60 needs 60 sessions", 59, 110, RuleAboveLongMA, 0},
		{"above MA60 at 60 sessions", 60, 110, RuleAboveLongMA, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closes := append(constant(tt.n-1, 100), tt.last)
			res, err := Score(model.History{Bars: makeBars(closes, 1000)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ruleContribution(res, tt.rule))
		})
	}
}

func TestScore_ThresholdEdges(t *testing.T) {
	t.Run("volume ratio", func(t *testing.T) {
		tests := []struct {
			prior, last float64
			want        float64
		}{
			{900, 400, 10},  // exactly 0.5: mild tier
			{900, 399, 20},  // just under 0.5
			{1050, 800, 0},  // exactly 0.8: no bonus
			{1050, 799, 10}, // just under 0.8
		}
		for _, tt := range tests {
			bars := makeBars(constant(5, 10), tt.prior)
			bars[4].Volume = tt.last
			res, err := Score(model.History{Bars: bars})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ruleContribution(res, RuleVolumeContraction), "%v/%v", tt.last, tt.prior)
		}
	})

	t.Run("drawdown ratio", func(t *testing.T) {
		tests := []struct {
			last float64
			want float64
		}{
			{97, 0},    // exactly 0.97: no penalty
			{96.9, 5},  // just under 0.97
			{90, 5},    // exactly 0.9: mild penalty
			{89.9, 15}, // just under 0.9
		}
		for _, tt := range tests {
			closes := append(constant(59, 100), tt.last)
			res, err := Score(model.History{Bars: makeBars(closes, 1000)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Penalty, "close %v", tt.last)
		}
	})

	t.Run("momentum tiers", func(t *testing.T) {
		tests := []struct {
			last float64
			want float64
		}{
			{107.9, 0},
			{108.5, 6},
			{114.9, 6},
			{115.5, 10},
		}
		for _, tt := range tests {
			closes := append(constant(9, 100), tt.last)
			res, err := Score(model.History{Bars: makeBars(closes, 1000)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.ThematicDelta, "close %v", tt.last)
		}
	})
}

func TestScore_ZeroVolumeSkipsContraction(t *testing.T) {
	res, err := Score(model.History{Bars: makeBars(constant(5, 10), 0)})
	require.NoError(t, err)
	assert.Zero(t, res.BaseScore)
}

func TestScore_Idempotent(t *testing.T) {
	h := model.History{Ticker: "BULL", Bars: bullishFixture()}
	first, err := Score(h)
	require.NoError(t, err)
	second, err := Score(h)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScore_MonotonicInLastClose(t *testing.T) {
	base := bullishFixture()
	rules := []string{RuleBreakout, RuleAboveLongMA, RuleMomentum}
	prev := map[string]float64{}
	for last := 80.0; last <= 140; last += 0.5 {
		bars := make([]model.OHLCV, len(base))
		copy(bars, base)
		bars[len(bars)-1].Close = last
		res, err := Score(model.History{Bars: bars})
		require.NoError(t, err)
		for _, r := range rules {
			got := ruleContribution(res, r)
			assert.GreaterOrEqual(t, got, prev[r], "rule %s decreased at close %.1f", r, last)
			prev[r] = got
		}
	}
}

func TestScorer_CustomWeights(t *testing.T) {
	w := DefaultWeights()
	w.DeltaMultiplier = 1
	w.AboveLongMAPoints = 40
	s := NewScorer(w)

	res, err := s.Score(model.History{Bars: makeBars(constant(60, 100), 1000)})
	require.NoError(t, err)
	assert.Equal(t, 45.0, res.Total)
	assert.Equal(t, 1.0, s.Weights().DeltaMultiplier)
}

func TestScorer_ZeroWeightsFallBackToDefaults(t *testing.T) {
	s := NewScorer(Weights{})
	assert.Equal(t, DefaultWeights(), s.Weights())
}

func TestScorer_ZeroPointsDisableRule(t *testing.T) {
	w := DefaultWeights()
	w.MAOrderOtherPoints = 0
	w.DrawdownMildPenalty = 0
	s := NewScorer(w)
	assert.Zero(t, s.Weights().MAOrderOtherPoints)

	closes := append(constant(59, 100), 92)
	res, err := s.Score(model.History{Bars: makeBars(closes, 1000)})
	require.NoError(t, err)
	assert.Zero(t, res.Penalty)
	for _, r := range res.Rules {
		assert.NotEqual(t, RuleMAOrder, r.Name)
		assert.NotEqual(t, RuleDrawdown, r.Name)
	}
	assert.Equal(t, 0.0, res.Total)
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	w := DefaultWeights()
	w.LongMA = -1
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.DrawdownDeepRatio = 0.99
	assert.Error(t, w.Validate())

	// Several bad windows always report the first in declaration order.
	w = DefaultWeights()
	w.DrawdownLookback = 0
	w.LongMA = 0
	w.VolumeWindow = 0
	for i := 0; i < 20; i++ {
		assert.EqualError(t, w.Validate(), "weights.volume_window must be positive")
	}
}
