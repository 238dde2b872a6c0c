package models

type StrategyType string

const (
	StrategyBollinger StrategyType = "bollinger"
	StrategyRSI       StrategyType = "rsi"
	StrategyScalping  StrategyType = "scalping"
	StrategyBreakout  StrategyType = "breakout"
)

// Valid reports whether t names one of the supported strategy variants.
func (t StrategyType) Valid() bool {
	switch t {
	case StrategyBollinger, StrategyRSI, StrategyScalping, StrategyBreakout:
		return true
	}
	return false
}

// Side of an order intent.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderKind: limit or market ("00"/"03" at the broker).
type OrderKind string

const (
	OrderLimit  OrderKind = "limit"
	OrderMarket OrderKind = "market"
)
