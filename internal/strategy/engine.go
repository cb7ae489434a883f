package strategy

import (
	"errors"

	"QuantPicker/internal/model"
)

// ErrEmptyHistory is returned when an instrument has no bars to score.
var ErrEmptyHistory = errors.New("empty history")

// Scorer evaluates an instrument history against a fixed set of weights.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	w Weights
}

// NewScorer creates a Scorer. The zero Weights value selects DefaultWeights.
func NewScorer(w Weights) *Scorer {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	return &Scorer{w: w}
}

// Weights returns the weights in effect.
func (s *Scorer) Weights() Weights {
	return s.w
}

var defaultScorer = NewScorer(DefaultWeights())

// Score evaluates h with DefaultWeights.
func Score(h model.History) (model.ScoreResult, error) {
	return defaultScorer.Score(h)
}

// Score computes base score, delta, penalty and total for h.
//
// Rules whose window exceeds the available history contribute nothing.
// total = base + delta*DeltaMultiplier - penalty, unclamped.
func (s *Scorer) Score(h model.History) (model.ScoreResult, error) {
	if h.Len() == 0 {
		return model.ScoreResult{}, ErrEmptyHistory
	}
	bars := h.Bars
	ma := computeMAs(bars, s.w)

	var hits []model.RuleHit
	add := func(hit model.RuleHit, ok bool) {
		if ok && hit.Contribution != 0 {
			hits = append(hits, hit)
		}
	}
	add(scoreVolumeContraction(bars, s.w))
	add(scoreMAOrder(ma, s.w))
	add(scoreBreakout(bars, s.w))
	add(scoreAboveLongMA(bars, ma, s.w))
	add(scoreBullishStack(ma, s.w))
	add(scoreMomentum(bars, s.w))
	add(scoreDrawdown(bars, s.w))

	res := model.ScoreResult{
		Ticker:    h.Ticker,
		LastClose: h.Last().Close,
		Rules:     hits,
	}
	for _, hit := range hits {
		switch hit.Kind {
		case model.KindBase:
			res.BaseScore += hit.Contribution
		case model.KindDelta:
			res.ThematicDelta += hit.Contribution
		case model.KindPenalty:
			res.Penalty += hit.Contribution
		}
	}
	res.Total = res.BaseScore + res.ThematicDelta*s.w.DeltaMultiplier - res.Penalty
	return res, nil
}
