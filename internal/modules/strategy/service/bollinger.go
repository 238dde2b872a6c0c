package service

import (
	"math"

	"stock_bot/internal/models"
)

type BollingerConfig struct {
	Period int
	K      float64
}

// Bollinger: сигнал когда close внутри [middle, upper].
type Bollinger struct {
	profitRater
	cfg BollingerConfig
}

func NewBollinger(cfg BollingerConfig) *Bollinger {
	if cfg.Period <= 0 {
		cfg.Period = 20
	}
	if cfg.K <= 0 {
		cfg.K = 2
	}
	return &Bollinger{cfg: cfg}
}

func (e *Bollinger) Name() models.StrategyType { return models.StrategyBollinger }
func (e *Bollinger) MinBars() int              { return e.cfg.Period }

func (e *Bollinger) Traits() Traits {
	return Traits{ConfirmSignalPrice: true, SelectionBars: e.cfg.Period}
}

func (e *Bollinger) bands(bars []models.Bar) (upper, middle float64, ok bool) {
	if !usable(bars, e.cfg.Period) {
		return 0, 0, false
	}
	upper, middle, _, ok = BollingerBands(models.Closes(bars), e.cfg.Period, e.cfg.K)
	return upper, middle, ok
}

func (e *Bollinger) HasBuySignal(bars []models.Bar) bool {
	upper, middle, ok := e.bands(bars)
	if !ok {
		return false
	}
	last := float64(bars[len(bars)-1].Close)
	return middle <= last && last <= upper
}

// SignalPrice is the middle band rounded down.
func (e *Bollinger) SignalPrice(bars []models.Bar) (int64, bool) {
	_, middle, ok := e.bands(bars)
	if !ok {
		return 0, false
	}
	return int64(math.Floor(middle)), true
}
