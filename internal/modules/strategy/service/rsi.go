package service

import (
	"stock_bot/internal/helper"
	"stock_bot/internal/models"
)

type RSIConfig struct {
	Period   int
	Oversold float64

	// цена сигнала: DeepRatio*close если RSI <= DeepCutoff, иначе ShallowRatio*close
	DeepCutoff   float64
	DeepRatio    float64
	ShallowRatio float64
}

// RSIReversal fires on the bar where RSI crosses up through the oversold level.
type RSIReversal struct {
	profitRater
	cfg RSIConfig
}

func NewRSI(cfg RSIConfig) *RSIReversal {
	if cfg.Period <= 0 {
		cfg.Period = 14
	}
	if cfg.Oversold <= 0 {
		cfg.Oversold = 30
	}
	if cfg.DeepCutoff <= 0 {
		cfg.DeepCutoff = 35
	}
	if cfg.DeepRatio <= 0 {
		cfg.DeepRatio = 0.98
	}
	if cfg.ShallowRatio <= 0 {
		cfg.ShallowRatio = 0.95
	}
	return &RSIReversal{cfg: cfg}
}

func (e *RSIReversal) Name() models.StrategyType { return models.StrategyRSI }

// MinBars: current and previous RSI both need a full window of deltas.
func (e *RSIReversal) MinBars() int { return e.cfg.Period + 2 }

func (e *RSIReversal) Traits() Traits {
	return Traits{ConfirmSignalPrice: true, SelectionBars: 20}
}

func (e *RSIReversal) pair(bars []models.Bar) (prev, cur float64, ok bool) {
	if !usable(bars, e.MinBars()) {
		return 0, 0, false
	}
	closes := models.Closes(bars)
	if prev, ok = RSI(closes[:len(closes)-1], e.cfg.Period); !ok {
		return 0, 0, false
	}
	if cur, ok = RSI(closes, e.cfg.Period); !ok {
		return 0, 0, false
	}
	return prev, cur, true
}

func (e *RSIReversal) HasBuySignal(bars []models.Bar) bool {
	prev, cur, ok := e.pair(bars)
	if !ok {
		return false
	}
	return prev <= e.cfg.Oversold && cur > e.cfg.Oversold
}

func (e *RSIReversal) SignalPrice(bars []models.Bar) (int64, bool) {
	_, cur, ok := e.pair(bars)
	if !ok {
		return 0, false
	}
	ratio := e.cfg.ShallowRatio
	if cur <= e.cfg.DeepCutoff {
		ratio = e.cfg.DeepRatio
	}
	return helper.ScalePrice(bars[len(bars)-1].Close, ratio), true
}
