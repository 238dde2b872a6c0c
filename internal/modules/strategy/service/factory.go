package service

import (
	"fmt"

	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
)

func NewEngine(cfg *config.Config) (Engine, error) {
	s := cfg.Strategy
	switch s.Variant {
	case models.StrategyBollinger:
		return NewBollinger(BollingerConfig{Period: s.Bollinger.Period, K: s.Bollinger.K}), nil
	case models.StrategyRSI:
		return NewRSI(RSIConfig{
			Period:       s.RSI.Period,
			Oversold:     s.RSI.Oversold,
			DeepCutoff:   s.RSI.DeepCutoff,
			DeepRatio:    s.RSI.DeepRatio,
			ShallowRatio: s.RSI.ShallowRatio,
		}), nil
	case models.StrategyScalping:
		return NewScalping(ScalpingConfig{
			MinTurnover:  s.Scalping.MinTurnover,
			MinChangePct: s.Scalping.MinChangePct,
			PriceRatio:   s.Scalping.PriceRatio,
		}), nil
	case models.StrategyBreakout:
		return NewBreakout(BreakoutConfig{
			BaseK:            s.Breakout.BaseK,
			VolumeMultiplier: s.Breakout.VolumeMultiplier,
			Adaptive:         s.Breakout.Adaptive,
		}), nil
	default:
		return nil, fmt.Errorf("unknown strategy variant %q", s.Variant)
	}
}
