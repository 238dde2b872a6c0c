package models

import "time"

// Bar: one trading day of OHLCV data in integer currency units.
type Bar struct {
	Date   time.Time
	Open   int64
	High   int64
	Low    int64
	Close  int64
	Volume int64
}

// Valid reports whether the bar can take part in rolling computations.
func (b Bar) Valid() bool {
	return b.Open > 0 && b.High > 0 && b.Low > 0 && b.Close > 0 &&
		b.Volume >= 0 && b.Low <= b.High
}

// Turnover is close × volume, the traded value proxy used for ranking.
func (b Bar) Turnover() int64 { return b.Close * b.Volume }

// Range is the high-low spread of the day.
func (b Bar) Range() int64 { return b.High - b.Low }

// Chronological returns an oldest-first copy of a most-recent-first gateway slice.
func Chronological(recentFirst []Bar) []Bar {
	out := make([]Bar, len(recentFirst))
	for i, b := range recentFirst {
		out[len(recentFirst)-1-i] = b
	}
	return out
}

// Closes extracts close prices as float64 for the statistics helpers.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Close)
	}
	return out
}
