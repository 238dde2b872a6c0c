package service

import (
	"context"

	"go.uber.org/zap"

	"stock_bot/internal/models"
	strategy "stock_bot/internal/modules/strategy/service"
)

// BarSource returns daily bars most-recent-first.
type BarSource interface {
	DailyBars(ctx context.Context, code string) ([]models.Bar, error)
}

type SelectorConfig struct {
	TargetCount int
	ScanDepth   int
}

// Selector filters the turnover ranking down to the session watch-list.
type Selector struct {
	engine strategy.Engine
	bars   BarSource
	cfg    SelectorConfig
	log    *zap.Logger
}

func NewSelector(engine strategy.Engine, bars BarSource, cfg SelectorConfig, log *zap.Logger) *Selector {
	if cfg.ScanDepth <= 0 {
		cfg.ScanDepth = 50
	}
	return &Selector{engine: engine, bars: bars, cfg: cfg, log: log}
}

// Select keeps ranking order; held and pending-buy codes never pass.
func (s *Selector) Select(ctx context.Context, ranking []models.Candidate, held, pendingBuy map[string]struct{}) []models.Candidate {
	traits := s.engine.Traits()
	out := make([]models.Candidate, 0, s.cfg.TargetCount)

	depth := min(len(ranking), s.cfg.ScanDepth)
	for _, c := range ranking[:depth] {
		if len(out) >= s.cfg.TargetCount {
			break
		}
		if _, ok := held[c.Code]; ok {
			continue
		}
		if _, ok := pendingBuy[c.Code]; ok {
			continue
		}

		recent, err := s.bars.DailyBars(ctx, c.Code)
		if err != nil {
			s.log.Warn("selection: bars unavailable", zap.String("code", c.Code), zap.Error(err))
			continue
		}
		bars := models.Chronological(recent)
		if len(bars) < traits.SelectionBars {
			continue
		}

		if traits.ConfirmSignalPrice {
			sp, ok := s.engine.SignalPrice(bars)
			if !ok {
				continue
			}
			price := c.Price
			if price <= 0 {
				price = bars[len(bars)-1].Close
			}
			if price < sp {
				continue
			}
		}

		s.log.Info("candidate selected",
			zap.String("code", c.Code),
			zap.String("name", c.Name),
			zap.Int64("price", c.Price),
			zap.Int64("turnover", c.TradedValue),
			zap.Float64("change_pct", c.ChangeRatePct))
		out = append(out, c)
	}
	return out
}
