package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stock_bot/internal/models"
	gateway "stock_bot/internal/modules/gateway/service"
)

// sellScan evaluates exits for every holding in the broker snapshot,
// including holdings with a take-profit limit still resting.
func (r *Runner) sellScan(ctx context.Context, snap snapshot, now time.Time) {
	for _, h := range snap.account.Holdings {
		r.guard("sell", h.Code, func() error {
			return r.trySell(ctx, snap, h, now)
		})
	}
}

func (r *Runner) trySell(ctx context.Context, snap snapshot, h models.Holding, now time.Time) error {
	price, err := r.gw.CurrentPrice(ctx, h.Code)
	if err != nil {
		r.log.Debug("quote failed, using snapshot price", zap.String("code", h.Code), zap.Error(err))
		price = h.CurrentPrice
	}

	d := r.book.Decide(h.Code, price, now)
	if d.None() {
		return nil
	}
	if _, resting := snap.pendingSell[h.Code]; resting {
		if !d.Action.Protective() {
			return nil
		}
		// снять висящий тейк-профит, иначе его объём не продать по рынку
		if err := r.cancelSells(ctx, snap, h.Code); err != nil {
			return err
		}
	}

	intent := d.Intent()
	res, err := r.submit(ctx, intent, now)
	if err != nil {
		return fmt.Errorf("place sell: %w", err)
	}
	if res != gateway.ResultAccepted {
		r.log.Warn("sell not placed",
			zap.String("code", h.Code), zap.String("action", d.Action.String()), zap.Error(rejected(res)))
		r.n.Sendf("❌ SELL rejected %s %s x%d (%s, code %d)", h.Code, h.Name, d.Quantity, d.Action, res)
		return nil
	}

	r.book.Apply(d)
	r.log.Info("sell placed",
		zap.String("code", h.Code),
		zap.String("action", d.Action.String()),
		zap.Int64("qty", d.Quantity),
		zap.Int64("price", d.Price),
		zap.Float64("rate", d.Rate),
		zap.String("reason", d.Reason))
	r.n.Sendf("🔴 SELL %s %s x%d %s (%.2f%%) %s", h.Code, h.Name, d.Quantity, priceLabel(d.Price), d.Rate, d.Action)
	return nil
}

func rejected(res int) error {
	return fmt.Errorf("%w: result %d", gateway.ErrOrderRejected, res)
}

func priceLabel(px int64) string {
	if px == 0 {
		return "@ market"
	}
	return fmt.Sprintf("@ %d", px)
}

func (r *Runner) cancelSells(ctx context.Context, snap snapshot, code string) error {
	for _, o := range snap.sellOrders {
		if o.Code != code {
			continue
		}
		if err := r.gw.CancelOrder(ctx, o.OrderID); err != nil {
			return fmt.Errorf("cancel %s: %w", o.OrderID, err)
		}
		r.log.Info("resting sell cancelled", zap.String("code", code), zap.String("order_no", o.OrderID))
	}
	delete(snap.pendingSell, code)
	return nil
}

// closeSession cancels every resting order so the sell scan can flatten the account at market.
func (r *Runner) closeSession(ctx context.Context, snap snapshot) {
	for _, o := range append(snap.buyOrders, snap.sellOrders...) {
		r.guard("session_close", o.Code, func() error {
			if err := r.gw.CancelOrder(ctx, o.OrderID); err != nil {
				return fmt.Errorf("cancel %s: %w", o.OrderID, err)
			}
			r.log.Info("order cancelled at session close",
				zap.String("code", o.Code), zap.String("order_no", o.OrderID), zap.String("side", string(o.Side)))
			if o.Side == models.SideSell {
				delete(snap.pendingSell, o.Code)
			}
			return nil
		})
	}
}
