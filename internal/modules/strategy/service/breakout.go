package service

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"stock_bot/internal/models"
)

const (
	breakoutBars   = 3
	adaptiveWindow = 10
)

type BreakoutConfig struct {
	BaseK            float64
	VolumeMultiplier float64
	Adaptive         bool
}

// Breakout: volatility breakout: today.open + yesterday's range × K.
type Breakout struct {
	profitRater
	cfg BreakoutConfig
}

func NewBreakout(cfg BreakoutConfig) *Breakout {
	if cfg.BaseK <= 0 {
		cfg.BaseK = 0.5
	}
	if cfg.VolumeMultiplier <= 0 {
		cfg.VolumeMultiplier = 1.5
	}
	return &Breakout{cfg: cfg}
}

func (e *Breakout) Name() models.StrategyType { return models.StrategyBreakout }
func (e *Breakout) MinBars() int              { return breakoutBars }

func (e *Breakout) Traits() Traits {
	return Traits{TrailingStop: true, SelectionBars: breakoutBars}
}

// AdaptiveK scales baseK by how yesterday's range compares to the average range of
// the last 10 bars (today included). With fewer than 10 bars baseK is returned.
func AdaptiveK(bars []models.Bar, baseK float64) float64 {
	if len(bars) < adaptiveWindow || len(bars) < 2 {
		return baseK
	}
	window := bars[len(bars)-adaptiveWindow:]
	ranges := make([]float64, len(window))
	for i, b := range window {
		ranges[i] = float64(b.Range())
	}
	avg := stat.Mean(ranges, nil)
	if avg <= 0 || !finite(avg) {
		return baseK
	}

	yRange := float64(bars[len(bars)-2].Range())
	switch {
	case yRange > 1.2*avg:
		return math.Min(baseK*0.7, 0.4)
	case yRange < 0.8*avg:
		return math.Min(baseK*1.3, 0.8)
	default:
		return baseK
	}
}

func (e *Breakout) level(bars []models.Bar) (int64, bool) {
	if !usable(bars, breakoutBars) {
		return 0, false
	}
	k := e.cfg.BaseK
	if e.cfg.Adaptive && usable(bars, adaptiveWindow) {
		k = AdaptiveK(bars, e.cfg.BaseK)
	}
	today, yesterday := bars[len(bars)-1], bars[len(bars)-2]
	return today.Open + int64(math.Floor(float64(yesterday.Range())*k)), true
}

func (e *Breakout) HasBuySignal(bars []models.Bar) bool {
	breakout, ok := e.level(bars)
	if !ok {
		return false
	}
	today, yesterday := bars[len(bars)-1], bars[len(bars)-2]
	if today.High < breakout {
		return false
	}
	return float64(today.Volume) >= float64(yesterday.Volume)*e.cfg.VolumeMultiplier
}

// SignalPrice is the breakout level itself.
func (e *Breakout) SignalPrice(bars []models.Bar) (int64, bool) {
	return e.level(bars)
}
