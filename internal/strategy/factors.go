package strategy

import (
	"fmt"

	"QuantPicker/internal/calculator"
	"QuantPicker/internal/model"
)

// Rule names as they appear in score breakdowns.
const (
	RuleVolumeContraction = "成交量缩放"
	RuleMAOrder           = "均线形态"
	RuleBreakout          = "20日新高突破"
	RuleAboveLongMA       = "站上MA60"
	RuleBullishStack      = "多头排列"
	RuleMomentum          = "事件/题材"
	RuleDrawdown          = "距60日高点"
)

// movingAverages holds the MAs every rule reads. A nil pointer means the
// window is not filled yet.
type movingAverages struct {
	short, mid, long *float64
}

func computeMAs(bars []model.OHLCV, w Weights) movingAverages {
	get := func(period int) *float64 {
		if v, ok := calculator.MovingAverage(bars, period); ok {
			return &v
		}
		return nil
	}
	return movingAverages{short: get(w.ShortMA), mid: get(w.MidMA), long: get(w.LongMA)}
}

// scoreVolumeContraction compares the last session's volume with the trailing mean.
func scoreVolumeContraction(bars []model.OHLCV, w Weights) (model.RuleHit, bool) {
	mean, ok := calculator.MeanVolume(bars, w.VolumeWindow)
	if !ok || mean <= 0 {
		return model.RuleHit{}, false
	}
	ratio := bars[len(bars)-1].Volume / mean

	var pts float64
	switch {
	case ratio < w.VolumeStrongRatio:
		pts = w.VolumeStrongPoints
	case ratio < w.VolumeMildRatio:
		pts = w.VolumeMildPoints
	default:
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:         RuleVolumeContraction,
		Kind:         model.KindBase,
		Contribution: pts,
		Commentary:   fmt.Sprintf("量比=%.2f", ratio),
	}, true
}

// scoreMAOrder rewards MA20 above MA60; any defined pair earns the floor points.
func scoreMAOrder(ma movingAverages, w Weights) (model.RuleHit, bool) {
	if ma.mid == nil || ma.long == nil {
		return model.RuleHit{}, false
	}
	if *ma.mid > *ma.long {
		return model.RuleHit{
			Name:         RuleMAOrder,
			Kind:         model.KindBase,
			Contribution: w.MAOrderBullPoints,
			Commentary:   fmt.Sprintf("MA%d>MA%d", w.MidMA, w.LongMA),
		}, true
	}
	return model.RuleHit{
		Name:         RuleMAOrder,
		Kind:         model.KindBase,
		Contribution: w.MAOrderOtherPoints,
		Commentary:   fmt.Sprintf("MA%d<=MA%d", w.MidMA, w.LongMA),
	}, true
}

// scoreBreakout fires when the close clears the prior sessions' highest high.
func scoreBreakout(bars []model.OHLCV, w Weights) (model.RuleHit, bool) {
	high, ok := calculator.TrailingHigh(bars, w.BreakoutLookback)
	if !ok {
		return model.RuleHit{}, false
	}
	last := bars[len(bars)-1].Close
	if last <= high {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:         RuleBreakout,
		Kind:         model.KindBase,
		Contribution: w.BreakoutPoints,
		Commentary:   fmt.Sprintf("收盘%.2f>前高%.2f", last, high),
	}, true
}

// scoreAboveLongMA fires when the close is at or above the long MA.
func scoreAboveLongMA(bars []model.OHLCV, ma movingAverages, w Weights) (model.RuleHit, bool) {
	if ma.long == nil {
		return model.RuleHit{}, false
	}
	last := bars[len(bars)-1].Close
	if last < *ma.long {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:         RuleAboveLongMA,
		Kind:         model.KindBase,
		Contribution: w.AboveLongMAPoints,
		Commentary:   fmt.Sprintf("收盘%.2f>=MA%d %.2f", last, w.LongMA, *ma.long),
	}, true
}

// scoreBullishStack requires a strict short > mid > long ordering.
func scoreBullishStack(ma movingAverages, w Weights) (model.RuleHit, bool) {
	if ma.short == nil || ma.mid == nil || ma.long == nil {
		return model.RuleHit{}, false
	}
	if !(*ma.short > *ma.mid && *ma.mid > *ma.long) {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:         RuleBullishStack,
		Kind:         model.KindBase,
		Contribution: w.BullishStackPoints,
		Commentary:   fmt.Sprintf("MA%d>MA%d>MA%d", w.ShortMA, w.MidMA, w.LongMA),
	}, true
}

// scoreMomentum is a return-based stand-in for theme/event catalysts.
// The two tiers are cumulative.
func scoreMomentum(bars []model.OHLCV, w Weights) (model.RuleHit, bool) {
	ret, ok := calculator.PeriodReturn(bars, w.MomentumPeriod)
	if !ok {
		return model.RuleHit{}, false
	}
	var delta float64
	if ret > w.MomentumMildReturn {
		delta += w.MomentumMildDelta
	}
	if ret > w.MomentumStrongReturn {
		delta += w.MomentumStrongDelta
	}
	if delta == 0 {
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:         RuleMomentum,
		Kind:         model.KindDelta,
		Contribution: delta,
		Commentary:   fmt.Sprintf("%d日涨幅%+.1f%%", w.MomentumPeriod, ret*100),
	}, true
}

// scoreDrawdown penalizes a close far below the prior sessions' highest high.
func scoreDrawdown(bars []model.OHLCV, w Weights) (model.RuleHit, bool) {
	high, ok := calculator.TrailingHigh(bars, w.DrawdownLookback)
	if !ok || high <= 0 {
		return model.RuleHit{}, false
	}
	ratio := bars[len(bars)-1].Close / high

	var pts float64
	switch {
	case ratio < w.DrawdownDeepRatio:
		pts = w.DrawdownDeepPenalty
	case ratio < w.DrawdownMildRatio:
		pts = w.DrawdownMildPenalty
	default:
		return model.RuleHit{}, false
	}
	return model.RuleHit{
		Name:         RuleDrawdown,
		Kind:         model.KindPenalty,
		Contribution: pts,
		Commentary:   fmt.Sprintf("收盘/前高=%.2f", ratio),
	}, true
}
