package calculator

import (
	"math"

	"QuantPicker/internal/model"
)

// TrailingHigh returns the highest High of the lookback bars that precede the
// most recent bar. The most recent bar itself is excluded. ok is false when
// fewer than lookback+1 bars are available.
func TrailingHigh(bars []model.OHLCV, lookback int) (high float64, ok bool) {
	n := len(bars)
	if lookback <= 0 || n < lookback+1 {
		return 0, false
	}
	high = math.Inf(-1)
	for i := n - 1 - lookback; i < n-1; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
	}
	return high, true
}

// PeriodReturn returns close[n-1]/close[n-period] - 1, the return measured
// from the bar period-1 sessions before the most recent one. ok is false when
// fewer than period bars exist or the reference close is not positive.
func PeriodReturn(bars []model.OHLCV, period int) (ret float64, ok bool) {
	n := len(bars)
	if period <= 0 || n < period {
		return 0, false
	}
	ref := bars[n-period].Close
	if ref <= 0 {
		return 0, false
	}
	return bars[n-1].Close/ref - 1, true
}
