package models

import "time"

// OrderIntent is what the engine asks the gateway to do.
// Market orders carry Price 0.
type OrderIntent struct {
	ID       string
	Side     Side
	Code     string
	Quantity int64
	Price    int64
	Kind     OrderKind
	Reason   string
}

// PendingOrder is an unfilled order reported by the gateway.
type PendingOrder struct {
	OrderID   string
	Code      string
	Side      Side
	Quantity  int64
	Remaining int64
	Price     int64
}

// Fill is one execution notice pushed by the broker.
type Fill struct {
	OrderID  string
	Code     string
	Side     Side
	Quantity int64
	Price    int64
	Status   string
	At       time.Time
}
