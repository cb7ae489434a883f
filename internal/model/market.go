package model

import "time"

// OHLCV represents a single daily trading session.
type OHLCV struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// History is the ordered daily bars of one instrument, oldest first.
type History struct {
	Ticker string
	Bars   []OHLCV
}

// Last returns the most recent bar. Callers must check Len first.
func (h History) Last() OHLCV {
	return h.Bars[len(h.Bars)-1]
}

// Len returns the number of sessions in the history.
func (h History) Len() int {
	return len(h.Bars)
}

// ChartPoint is one row of the close / moving-average line chart.
// MA fields are nil while the window is not yet filled.
type ChartPoint struct {
	Time  time.Time `json:"date"`
	Close float64   `json:"close"`
	MA20  *float64  `json:"ma20"`
	MA60  *float64  `json:"ma60"`
}
