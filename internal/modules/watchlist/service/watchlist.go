package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
	gateway "stock_bot/internal/modules/gateway/service"
	strategy "stock_bot/internal/modules/strategy/service"
)

// Watchlist holds the candidates chosen once at session start.
type Watchlist struct {
	gw       gateway.Gateway
	selector *Selector
	market   string
	log      *zap.Logger

	mu         sync.RWMutex
	candidates []models.Candidate
}

func NewWatchlist(cfg *config.Config, gw gateway.Gateway, engine strategy.Engine, log *zap.Logger) *Watchlist {
	sel := NewSelector(engine, gw, SelectorConfig{
		TargetCount: cfg.Trading.TargetCount,
		ScanDepth:   cfg.Trading.ScanDepth,
	}, log)
	return &Watchlist{gw: gw, selector: sel, market: cfg.Trading.Market, log: log}
}

// Refresh pulls the ranking and the account's exclusions and reruns selection.
func (w *Watchlist) Refresh(ctx context.Context) error {
	ranking, err := w.gw.TurnoverRanking(ctx, w.market)
	if err != nil {
		return fmt.Errorf("turnover ranking: %w", err)
	}
	acc, err := w.gw.Balance(ctx)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	pending, err := w.gw.PendingOrders(ctx, models.SideBuy)
	if err != nil {
		return fmt.Errorf("pending buys: %w", err)
	}

	pendingCodes := make(map[string]struct{}, len(pending))
	for _, o := range pending {
		pendingCodes[o.Code] = struct{}{}
	}

	selected := w.selector.Select(ctx, ranking, acc.HeldCodes(), pendingCodes)

	w.mu.Lock()
	w.candidates = selected
	w.mu.Unlock()

	w.log.Info("watch-list ready",
		zap.String("market", w.market),
		zap.Int("ranked", len(ranking)),
		zap.Int("selected", len(selected)))
	return nil
}

// Candidates returns a copy of the current watch-list.
func (w *Watchlist) Candidates() []models.Candidate {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]models.Candidate(nil), w.candidates...)
}
