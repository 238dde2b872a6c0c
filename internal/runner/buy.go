package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stock_bot/internal/helper"
	"stock_bot/internal/models"
	gateway "stock_bot/internal/modules/gateway/service"
)

// buyScan walks the watch-list in selection order.
func (r *Runner) buyScan(ctx context.Context, snap snapshot, now time.Time) {
	held := snap.account.HeldCodes()

	for _, c := range r.watch.Candidates() {
		if r.book.Len() >= r.cfg.MaxStocks {
			r.log.Debug("max stocks reached", zap.Int("max_stocks", r.cfg.MaxStocks))
			return
		}
		if _, ok := held[c.Code]; ok {
			continue
		}
		if _, ok := snap.pendingBuy[c.Code]; ok {
			continue
		}
		if r.book.Has(c.Code) {
			continue
		}

		r.guard("buy", c.Code, func() error {
			return r.tryBuy(ctx, c, now)
		})
	}
}

func (r *Runner) tryBuy(ctx context.Context, c models.Candidate, now time.Time) error {
	recent, err := r.gw.DailyBars(ctx, c.Code)
	if err != nil {
		return err
	}
	bars := models.Chronological(recent)
	if len(bars) < r.engine.MinBars() || !r.engine.HasBuySignal(bars) {
		return nil
	}

	quote, err := r.gw.CurrentPrice(ctx, c.Code)
	if err != nil {
		return err
	}
	price := helper.QuantizePrice(quote)
	qty := helper.OrderQuantity(r.cfg.InvestmentPerStock, price)
	if qty <= 0 {
		r.log.Info("buy skipped: budget below one share",
			zap.String("code", c.Code), zap.Int64("price", price), zap.Int64("budget", r.cfg.InvestmentPerStock))
		return nil
	}

	name := c.Name
	if name == "" {
		if n, err := r.gw.StockName(ctx, c.Code); err == nil {
			name = n
		}
	}

	intent := models.OrderIntent{
		ID:       uuid.NewString(),
		Side:     models.SideBuy,
		Code:     c.Code,
		Quantity: qty,
		Price:    price,
		Kind:     models.OrderLimit,
		Reason:   fmt.Sprintf("%s signal", r.engine.Name()),
	}
	res, err := r.submit(ctx, intent, now)
	if err != nil {
		return fmt.Errorf("place buy: %w", err)
	}
	if res != gateway.ResultAccepted {
		r.log.Warn("buy not placed", zap.String("code", c.Code), zap.Error(rejected(res)))
		r.n.Sendf("❌ BUY rejected %s %s x%d @ %d (code %d)", c.Code, name, qty, price, res)
		return nil
	}

	r.book.Open(c.Code, name, price, qty, now)
	r.log.Info("buy placed",
		zap.String("code", c.Code),
		zap.String("name", name),
		zap.Int64("qty", qty),
		zap.Int64("price", price),
		zap.String("intent", intent.ID))
	r.n.Sendf("🟢 BUY %s %s x%d @ %d (%s)", c.Code, name, qty, price, intent.Reason)
	return nil
}
