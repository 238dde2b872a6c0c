package service

import (
	"stock_bot/internal/helper"
	"stock_bot/internal/models"
)

// Traits are per-strategy capabilities consulted by the selector and the position book.
type Traits struct {
	// TrailingStop включает трейлинг-стоп после того как позиция ушла в плюс.
	TrailingStop bool
	// ConfirmSignalPrice: кандидат проходит отбор только если цена >= SignalPrice.
	ConfirmSignalPrice bool
	// SelectionBars: минимальная история для отбора кандидата.
	SelectionBars int
}

// Engine is a pure function of an oldest-first bar history.
// Every method fails closed: short or malformed history yields false / (0, false).
type Engine interface {
	Name() models.StrategyType
	MinBars() int
	HasBuySignal(bars []models.Bar) bool
	SignalPrice(bars []models.Bar) (int64, bool)
	ProfitRate(buyPrice, currentPrice int64) float64
	Traits() Traits
}

type profitRater struct{}

func (profitRater) ProfitRate(buyPrice, currentPrice int64) float64 {
	return helper.ProfitRate(buyPrice, currentPrice)
}

// usable reports whether the tail of bars has n well-formed entries.
func usable(bars []models.Bar, n int) bool {
	if n <= 0 || len(bars) < n {
		return false
	}
	for _, b := range bars[len(bars)-n:] {
		if !b.Valid() {
			return false
		}
	}
	return true
}
