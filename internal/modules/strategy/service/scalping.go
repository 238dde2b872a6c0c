package service

import (
	"stock_bot/internal/helper"
	"stock_bot/internal/models"
)

const scalpingBars = 3

type ScalpingConfig struct {
	MinTurnover  int64   // today close*volume must exceed this
	MinChangePct float64 // day-over-day close change, %
	PriceRatio   float64
}

type Scalping struct {
	profitRater
	cfg ScalpingConfig
}

func NewScalping(cfg ScalpingConfig) *Scalping {
	if cfg.PriceRatio <= 0 {
		cfg.PriceRatio = 1.01
	}
	return &Scalping{cfg: cfg}
}

func (e *Scalping) Name() models.StrategyType { return models.StrategyScalping }
func (e *Scalping) MinBars() int              { return scalpingBars }
func (e *Scalping) Traits() Traits            { return Traits{SelectionBars: scalpingBars} }

func (e *Scalping) HasBuySignal(bars []models.Bar) bool {
	if !usable(bars, scalpingBars) {
		return false
	}
	today, yesterday := bars[len(bars)-1], bars[len(bars)-2]

	turnover := float64(today.Close) * float64(today.Volume)
	if turnover <= float64(e.cfg.MinTurnover) {
		return false
	}
	return helper.ProfitRate(yesterday.Close, today.Close) >= e.cfg.MinChangePct
}

func (e *Scalping) SignalPrice(bars []models.Bar) (int64, bool) {
	if !usable(bars, scalpingBars) {
		return 0, false
	}
	return helper.ScalePrice(bars[len(bars)-1].Close, e.cfg.PriceRatio), true
}
