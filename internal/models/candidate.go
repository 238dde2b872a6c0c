package models

// Candidate: one row of the turnover ranking, produced per selection cycle.
type Candidate struct {
	Code          string
	Name          string
	Price         int64
	TradedValue   int64 // turnover
	ChangeRatePct float64
}
