package calculator

import (
	"errors"

	"QuantPicker/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// MovingAverage returns the mean close of the last period bars, including the
// most recent one. ok is false until period bars are available.
func MovingAverage(bars []model.OHLCV, period int) (ma float64, ok bool) {
	v, err := CalculateSMA(extractCloses(bars), period)
	if err != nil {
		return 0, false
	}
	return v, true
}

// MeanVolume returns the mean volume of the last period bars, including the
// most recent one.
func MeanVolume(bars []model.OHLCV, period int) (float64, bool) {
	v, err := CalculateSMA(extractVolumes(bars), period)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RollingSMA returns the SMA of closes at every bar. Entries are nil until
// the window is filled.
func RollingSMA(bars []model.OHLCV, period int) []*float64 {
	out := make([]*float64, len(bars))
	if period <= 0 {
		return out
	}
	sum := 0.0
	for i, b := range bars {
		sum += b.Close
		if i >= period {
			sum -= bars[i-period].Close
		}
		if i >= period-1 {
			v := sum / float64(period)
			out[i] = &v
		}
	}
	return out
}

// ChartSeries builds the close / MA20 / MA60 series used by the detail chart.
func ChartSeries(bars []model.OHLCV) []model.ChartPoint {
	ma20 := RollingSMA(bars, 20)
	ma60 := RollingSMA(bars, 60)
	points := make([]model.ChartPoint, len(bars))
	for i, b := range bars {
		points[i] = model.ChartPoint{
			Time:  b.Time,
			Close: b.Close,
			MA20:  ma20[i],
			MA60:  ma60[i],
		}
	}
	return points
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func extractVolumes(bars []model.OHLCV) []float64 {
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return vols
}
