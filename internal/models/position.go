package models

import "time"

type LifecycleState string

const (
	StateNone     LifecycleState = "NONE"
	StateOpen     LifecycleState = "OPEN"
	StateHalfSold LifecycleState = "HALF_SOLD"
	StateClosed   LifecycleState = "CLOSED"
)

// Position is an open holding owned by the position book.
// Quantity is always the remaining amount (after a partial exit when HalfSold).
type Position struct {
	Code     string
	Name     string
	BuyPrice int64
	Quantity int64
	HalfSold bool

	// PeakProfit is the best profit rate seen so far, used by the trailing stop.
	PeakProfit float64
	OpenedAt   time.Time
}

func (p *Position) State() LifecycleState {
	if p == nil || p.Quantity <= 0 {
		return StateNone
	}
	if p.HalfSold {
		return StateHalfSold
	}
	return StateOpen
}
