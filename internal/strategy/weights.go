package strategy

import "fmt"

// Weights holds every window, threshold and point value used by the scorer.
// Every field is taken as given, so a zero point value disables its rule.
// Config loading starts from DefaultWeights and overlays the keys present.
type Weights struct {
	// Volume contraction: last volume vs trailing mean volume.
	VolumeWindow       int     `yaml:"volume_window"`
	VolumeStrongRatio  float64 `yaml:"volume_strong_ratio"`
	VolumeStrongPoints float64 `yaml:"volume_strong_points"`
	VolumeMildRatio    float64 `yaml:"volume_mild_ratio"`
	VolumeMildPoints   float64 `yaml:"volume_mild_points"`

	// Moving averages of close.
	ShortMA int `yaml:"short_ma"`
	MidMA   int `yaml:"mid_ma"`
	LongMA  int `yaml:"long_ma"`

	MAOrderBullPoints  float64 `yaml:"ma_order_bull_points"`
	MAOrderOtherPoints float64 `yaml:"ma_order_other_points"`
	AboveLongMAPoints  float64 `yaml:"above_long_ma_points"`
	BullishStackPoints float64 `yaml:"bullish_stack_points"`

	BreakoutLookback int     `yaml:"breakout_lookback"`
	BreakoutPoints   float64 `yaml:"breakout_points"`

	// Momentum delta (placeholder for theme/event catalysts).
	MomentumPeriod       int     `yaml:"momentum_period"`
	MomentumMildReturn   float64 `yaml:"momentum_mild_return"`
	MomentumMildDelta    float64 `yaml:"momentum_mild_delta"`
	MomentumStrongReturn float64 `yaml:"momentum_strong_return"`
	MomentumStrongDelta  float64 `yaml:"momentum_strong_delta"`

	// Drawdown penalty (placeholder negative factor).
	DrawdownLookback    int     `yaml:"drawdown_lookback"`
	DrawdownDeepRatio   float64 `yaml:"drawdown_deep_ratio"`
	DrawdownDeepPenalty float64 `yaml:"drawdown_deep_penalty"`
	DrawdownMildRatio   float64 `yaml:"drawdown_mild_ratio"`
	DrawdownMildPenalty float64 `yaml:"drawdown_mild_penalty"`

	DeltaMultiplier float64 `yaml:"delta_multiplier"`
}

// DefaultWeights returns the stock scoring model.
func DefaultWeights() Weights {
	return Weights{
		VolumeWindow:       5,
		VolumeStrongRatio:  0.5,
		VolumeStrongPoints: 20,
		VolumeMildRatio:    0.8,
		VolumeMildPoints:   10,

		ShortMA: 10,
		MidMA:   20,
		LongMA:  60,

		MAOrderBullPoints:  15,
		MAOrderOtherPoints: 5,
		AboveLongMAPoints:  10,
		BullishStackPoints: 15,

		BreakoutLookback: 19,
		BreakoutPoints:   15,

		MomentumPeriod:       10,
		MomentumMildReturn:   0.08,
		MomentumMildDelta:    6,
		MomentumStrongReturn: 0.15,
		MomentumStrongDelta:  4,

		DrawdownLookback:    59,
		DrawdownDeepRatio:   0.9,
		DrawdownDeepPenalty: 15,
		DrawdownMildRatio:   0.97,
		DrawdownMildPenalty: 5,

		DeltaMultiplier: 2.7,
	}
}

// Validate checks window sizes and threshold ordering.
func (w Weights) Validate() error {
	windows := []struct {
		name string
		v    int
	}{
		{"volume_window", w.VolumeWindow},
		{"short_ma", w.ShortMA},
		{"mid_ma", w.MidMA},
		{"long_ma", w.LongMA},
		{"breakout_lookback", w.BreakoutLookback},
		{"momentum_period", w.MomentumPeriod},
		{"drawdown_lookback", w.DrawdownLookback},
	}
	for _, f := range windows {
		if f.v <= 0 {
			return fmt.Errorf("weights.%s must be positive", f.name)
		}
	}
	if w.VolumeStrongRatio > w.VolumeMildRatio {
		return fmt.Errorf("weights.volume_strong_ratio must not exceed volume_mild_ratio")
	}
	if w.DrawdownDeepRatio > w.DrawdownMildRatio {
		return fmt.Errorf("weights.drawdown_deep_ratio must not exceed drawdown_mild_ratio")
	}
	if w.MomentumMildReturn > w.MomentumStrongReturn {
		return fmt.Errorf("weights.momentum_mild_return must not exceed momentum_strong_return")
	}
	return nil
}
