package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"

	"stock_bot/internal/journal"
	"stock_bot/internal/models"
	"stock_bot/pkg/tracing"
)

type snapshot struct {
	account     models.Account
	pendingBuy  map[string]struct{}
	pendingSell map[string]struct{}
	buyOrders   []models.PendingOrder
	sellOrders  []models.PendingOrder
}

// Cycle runs one decision pass. Panics are recovered and returned as errors.
func (r *Runner) Cycle(ctx context.Context) (err error) {
	r.cycles++
	now := r.now()

	span, ctx := tracing.StartSpan(ctx, "cycle", opentracing.Tag{Key: "cycle", Value: r.cycles})
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("cycle panic: %v", p)
		}
		tracing.Finish(span, err)
		r.state.CycleDone(now, r.book.Len(), err)
		r.state.SetPositions(r.book.Positions())
		if err == nil {
			r.state.SetReady(true)
		}
	}()

	if !r.selected {
		if err := r.watch.Refresh(ctx); err != nil {
			r.log.Warn("watch-list selection failed, retrying next cycle", zap.Error(err))
		} else {
			r.selected = true
			r.reportWatchlist()
		}
	}

	snap, err := r.snapshot(ctx)
	if err != nil {
		return err
	}

	res := r.book.Reconcile(snap.account.Holdings, snap.pendingBuy, now)
	if len(res.Adopted)+len(res.Dropped)+len(res.Resized) > 0 {
		r.log.Info("book reconciled",
			zap.Strings("adopted", res.Adopted),
			zap.Strings("dropped", res.Dropped),
			zap.Strings("resized", res.Resized))
	}
	r.reportAccount(snap.account)

	if r.book.SessionClosed(now) {
		r.closeSession(ctx, snap)
	} else {
		r.buyScan(ctx, snap, now)
	}
	r.sellScan(ctx, snap, now)
	return nil
}

func (r *Runner) snapshot(ctx context.Context) (snapshot, error) {
	var (
		s   snapshot
		err error
	)
	if s.account, err = r.gw.Balance(ctx); err != nil {
		return s, fmt.Errorf("balance: %w", err)
	}
	if s.buyOrders, err = r.gw.PendingOrders(ctx, models.SideBuy); err != nil {
		return s, fmt.Errorf("pending buys: %w", err)
	}
	if s.sellOrders, err = r.gw.PendingOrders(ctx, models.SideSell); err != nil {
		return s, fmt.Errorf("pending sells: %w", err)
	}
	s.pendingBuy = codesOf(s.buyOrders)
	s.pendingSell = codesOf(s.sellOrders)
	return s, nil
}

func codesOf(orders []models.PendingOrder) map[string]struct{} {
	out := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		out[o.Code] = struct{}{}
	}
	return out
}

// guard isolates one code: errors and panics are logged, never propagated.
func (r *Runner) guard(stage, code string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("code panicked", zap.String("stage", stage), zap.String("code", code), zap.Any("panic", p))
		}
	}()
	if err := fn(); err != nil {
		r.log.Warn("code skipped", zap.String("stage", stage), zap.String("code", code), zap.Error(err))
	}
}

func (r *Runner) reportAccount(acc models.Account) {
	r.log.Info("account",
		zap.Int64("deposit", acc.Cash),
		zap.Int64("total_buy", acc.TotalBuy),
		zap.Int64("total_eval", acc.TotalEval),
		zap.Int64("total_profit", acc.TotalProfit),
		zap.Float64("total_profit_rate", acc.TotalProfitRate),
		zap.Int("holdings", len(acc.Holdings)),
		zap.Int("book", r.book.Len()))
	for _, h := range acc.Holdings {
		r.log.Info("holding",
			zap.String("code", h.Code),
			zap.String("name", h.Name),
			zap.Int64("qty", h.Quantity),
			zap.Int64("buy_price", h.BuyPrice),
			zap.Int64("current_price", h.CurrentPrice),
			zap.Float64("profit_rate", h.ProfitRate))
	}
}

func (r *Runner) reportWatchlist() {
	cands := r.watch.Candidates()
	codes := make([]string, len(cands))
	for i, c := range cands {
		codes[i] = c.Code
	}
	r.n.Sendf("📋 %s watch-list: %d codes %v", r.engine.Name(), len(codes), codes)
}

// submit places the intent and journals the outcome.
func (r *Runner) submit(ctx context.Context, intent models.OrderIntent, now time.Time) (int, error) {
	span, ctx := tracing.StartSpan(ctx, "place_order",
		opentracing.Tag{Key: "code", Value: intent.Code},
		opentracing.Tag{Key: "side", Value: string(intent.Side)})

	res, err := r.gw.PlaceOrder(ctx, intent)
	span.SetTag("result", res)
	tracing.Finish(span, err)

	if jerr := r.journal.Record(ctx, journal.NewEntry(intent, now, res, err)); jerr != nil {
		r.log.Warn("journal write failed", zap.String("intent", intent.ID), zap.Error(jerr))
	}
	return res, err
}
