package sessions

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"stock_bot/internal/helper"
	"stock_bot/internal/models"
)

type Action int

const (
	ActionNone Action = iota
	ActionHalfTakeProfit
	ActionFullTakeProfit
	ActionStopLoss
	ActionTrailingStop
	ActionSessionClose
)

func (a Action) String() string {
	switch a {
	case ActionHalfTakeProfit:
		return "half_take_profit"
	case ActionFullTakeProfit:
		return "full_take_profit"
	case ActionStopLoss:
		return "stop_loss"
	case ActionTrailingStop:
		return "trailing_stop"
	case ActionSessionClose:
		return "session_close"
	default:
		return "none"
	}
}

// Protective exits go out at market and override a resting take-profit.
func (a Action) Protective() bool {
	return a == ActionStopLoss || a == ActionTrailingStop || a == ActionSessionClose
}

// Decision: максимум одно действие на код за цикл.
type Decision struct {
	Code     string
	Action   Action
	Quantity int64
	Price    int64 // 0 for market
	Kind     models.OrderKind
	Rate     float64
	Reason   string
}

func (d Decision) None() bool { return d.Action == ActionNone }

// Intent builds the sell order for the decision with a fresh client id.
func (d Decision) Intent() models.OrderIntent {
	return models.OrderIntent{
		ID:       uuid.NewString(),
		Side:     models.SideSell,
		Code:     d.Code,
		Quantity: d.Quantity,
		Price:    d.Price,
		Kind:     d.Kind,
		Reason:   d.Action.String(),
	}
}

// Decide evaluates exits for code at price: session close, trailing stop,
// fixed stop, full take-profit, half take-profit. The peak profit ratchets here;
// everything else changes only in Apply.
func (b *Book) Decide(code string, price int64, now time.Time) Decision {
	p, ok := b.positions[code]
	if !ok || p.Quantity <= 0 || price <= 0 {
		return Decision{Code: code}
	}

	rate := helper.ProfitRate(p.BuyPrice, price)
	if rate > p.PeakProfit {
		p.PeakProfit = rate
	}
	d := Decision{Code: code, Rate: rate}

	if b.SessionClosed(now) {
		return b.closeAll(d, p, ActionSessionClose, "session close reached")
	}

	if b.cfg.Trailing && p.PeakProfit > 0 {
		stop := math.Max(b.cfg.StopLoss, p.PeakProfit-b.cfg.TrailingMargin)
		if rate <= stop {
			return b.closeAll(d, p, ActionTrailingStop,
				fmt.Sprintf("rate %.2f%% <= trailing stop %.2f%% (peak %.2f%%)", rate, stop, p.PeakProfit))
		}
	}

	if rate <= b.cfg.StopLoss {
		return b.closeAll(d, p, ActionStopLoss, fmt.Sprintf("rate %.2f%% <= stop %.2f%%", rate, b.cfg.StopLoss))
	}

	if rate >= b.cfg.FullTarget {
		d.Action = ActionFullTakeProfit
		d.Quantity = p.Quantity
		d.Kind = models.OrderLimit
		d.Price = helper.QuantizePrice(price)
		d.Reason = fmt.Sprintf("rate %.2f%% >= full target %.2f%%", rate, b.cfg.FullTarget)
		return d
	}

	if rate >= b.cfg.HalfTarget && !p.HalfSold {
		half := p.Quantity / 2
		if half > 0 {
			d.Action = ActionHalfTakeProfit
			d.Quantity = half
			d.Kind = models.OrderLimit
			d.Price = helper.QuantizePrice(price)
			d.Reason = fmt.Sprintf("rate %.2f%% >= half target %.2f%%", rate, b.cfg.HalfTarget)
			return d
		}
	}
	return d
}

func (b *Book) closeAll(d Decision, p *models.Position, a Action, reason string) Decision {
	d.Action = a
	d.Quantity = p.Quantity
	d.Kind = models.OrderMarket
	d.Reason = reason
	return d
}

// Apply advances the position after the broker accepted d's order.
func (b *Book) Apply(d Decision) {
	p, ok := b.positions[d.Code]
	if !ok {
		return
	}
	switch d.Action {
	case ActionHalfTakeProfit:
		p.HalfSold = true
		p.Quantity -= d.Quantity
		if p.Quantity <= 0 {
			delete(b.positions, d.Code)
		}
	case ActionFullTakeProfit, ActionStopLoss, ActionTrailingStop, ActionSessionClose:
		delete(b.positions, d.Code)
	}
}

func sessionCloseAt(cfg RiskConfig, now time.Time) (time.Time, error) {
	if cfg.SessionClose == "" {
		return time.Time{}, fmt.Errorf("session close not configured")
	}
	return helper.ParseClock(cfg.SessionClose, now, cfg.Location)
}
