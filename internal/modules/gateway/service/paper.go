package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"stock_bot/internal/helper"
	"stock_bot/internal/models"
)

// Paper rejection codes, negative like the broker's.
const (
	RejectInvalid  = -100
	RejectFunds    = -101
	RejectQuantity = -102
	RejectPrice    = -103
)

type paperHolding struct {
	name     string
	quantity int64
	buyPrice int64 // average
}

// Paper: симулятор счёта поверх живого или статического фида.
// Market orders fill at the feed price, marketable limits fill at the feed price,
// the rest wait until a later Balance call finds them marketable or they get cancelled.
type Paper struct {
	feed Feed

	mu       sync.Mutex
	cash     int64
	holdings map[string]*paperHolding
	pending  []models.PendingOrder
	seq      int
	onFill   FillHandler
	queued   []models.Fill // filled under mu, delivered after unlock
}

func NewPaper(feed Feed, cash int64) *Paper {
	return &Paper{
		feed:     feed,
		cash:     cash,
		holdings: make(map[string]*paperHolding),
	}
}

// OnFill routes simulated executions to h, the same handler the live notice stream feeds.
func (p *Paper) OnFill(h FillHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onFill = h
}

func (p *Paper) DailyBars(ctx context.Context, code string) ([]models.Bar, error) {
	return p.feed.DailyBars(ctx, code)
}

func (p *Paper) CurrentPrice(ctx context.Context, code string) (int64, error) {
	return p.feed.CurrentPrice(ctx, code)
}

func (p *Paper) TurnoverRanking(ctx context.Context, market string) ([]models.Candidate, error) {
	return p.feed.TurnoverRanking(ctx, market)
}

func (p *Paper) StockName(ctx context.Context, code string) (string, error) {
	return p.feed.StockName(ctx, code)
}

func (p *Paper) Balance(ctx context.Context) (models.Account, error) {
	defer p.flush(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sweep(ctx)

	acc := models.Account{Cash: p.cash}
	codes := make([]string, 0, len(p.holdings))
	for code := range p.holdings {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		h := p.holdings[code]
		cur, err := p.feed.CurrentPrice(ctx, code)
		if err != nil {
			cur = h.buyPrice
		}
		buy := h.buyPrice * h.quantity
		eval := cur * h.quantity
		acc.Holdings = append(acc.Holdings, models.Holding{
			Code:         code,
			Name:         h.name,
			Quantity:     h.quantity,
			BuyPrice:     h.buyPrice,
			CurrentPrice: cur,
			Profit:       eval - buy,
			ProfitRate:   helper.ProfitRate(h.buyPrice, cur),
		})
		acc.TotalBuy += buy
		acc.TotalEval += eval
	}
	acc.TotalProfit = acc.TotalEval - acc.TotalBuy
	acc.TotalProfitRate = helper.ProfitRate(acc.TotalBuy, acc.TotalEval)
	return acc, nil
}

func (p *Paper) PendingOrders(_ context.Context, side models.Side) ([]models.PendingOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []models.PendingOrder
	for _, o := range p.pending {
		if o.Side == side {
			out = append(out, o)
		}
	}
	return out, nil
}

func (p *Paper) PlaceOrder(ctx context.Context, intent models.OrderIntent) (int, error) {
	if intent.Code == "" || intent.Quantity <= 0 {
		return RejectInvalid, nil
	}
	if intent.Kind == models.OrderLimit && intent.Price <= 0 {
		return RejectPrice, nil
	}

	px, err := p.feed.CurrentPrice(ctx, intent.Code)
	if err != nil {
		return 0, errors.Wrap(err, "paper: quote for order")
	}

	defer p.flush(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()

	switch intent.Side {
	case models.SideBuy:
		reserve := px
		if intent.Kind == models.OrderLimit {
			reserve = intent.Price
		}
		if reserve*intent.Quantity > p.cash {
			return RejectFunds, nil
		}
	case models.SideSell:
		if intent.Quantity > p.sellable(intent.Code) {
			return RejectQuantity, nil
		}
	default:
		return RejectInvalid, nil
	}

	p.seq++
	order := models.PendingOrder{
		OrderID:   strconv.Itoa(p.seq),
		Code:      intent.Code,
		Side:      intent.Side,
		Quantity:  intent.Quantity,
		Remaining: intent.Quantity,
		Price:     intent.Price,
	}
	if intent.Kind == models.OrderMarket {
		order.Price = 0
	}

	if marketable(order, px) {
		p.fill(ctx, order, px)
		return ResultAccepted, nil
	}

	if order.Side == models.SideBuy {
		p.cash -= order.Price * order.Quantity
	}
	p.pending = append(p.pending, order)
	return ResultAccepted, nil
}

func (p *Paper) CancelOrder(_ context.Context, orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, o := range p.pending {
		if o.OrderID != orderID {
			continue
		}
		if o.Side == models.SideBuy {
			p.cash += o.Price * o.Remaining
		}
		p.pending = append(p.pending[:i], p.pending[i+1:]...)
		return nil
	}
	return errors.Errorf("paper: order %s not pending", orderID)
}

// flush hands queued fills to the handler; must be called without mu.
func (p *Paper) flush(ctx context.Context) {
	p.mu.Lock()
	fills, handle := p.queued, p.onFill
	p.queued = nil
	p.mu.Unlock()

	if handle == nil {
		return
	}
	for _, f := range fills {
		handle(ctx, f)
	}
}

func marketable(o models.PendingOrder, px int64) bool {
	if o.Price == 0 {
		return true
	}
	if o.Side == models.SideBuy {
		return o.Price >= px
	}
	return o.Price <= px
}

func (p *Paper) sellable(code string) int64 {
	h, ok := p.holdings[code]
	if !ok {
		return 0
	}
	q := h.quantity
	for _, o := range p.pending {
		if o.Side == models.SideSell && o.Code == code {
			q -= o.Remaining
		}
	}
	return q
}

// fill must be called with mu held.
func (p *Paper) fill(ctx context.Context, o models.PendingOrder, px int64) {
	switch o.Side {
	case models.SideBuy:
		p.cash -= px * o.Remaining
		h, ok := p.holdings[o.Code]
		if !ok {
			name, _ := p.feed.StockName(ctx, o.Code)
			h = &paperHolding{name: name}
			p.holdings[o.Code] = h
		}
		total := h.buyPrice*h.quantity + px*o.Remaining
		h.quantity += o.Remaining
		h.buyPrice = total / h.quantity
	case models.SideSell:
		p.cash += px * o.Remaining
		h := p.holdings[o.Code]
		h.quantity -= o.Remaining
		if h.quantity <= 0 {
			delete(p.holdings, o.Code)
		}
	}
	p.queued = append(p.queued, models.Fill{
		OrderID:  o.OrderID,
		Code:     o.Code,
		Side:     o.Side,
		Quantity: o.Remaining,
		Price:    px,
		Status:   "filled",
		At:       time.Now(),
	})
}

// sweep fills pending orders that became marketable; mu held.
func (p *Paper) sweep(ctx context.Context) {
	kept := p.pending[:0]
	for _, o := range p.pending {
		px, err := p.feed.CurrentPrice(ctx, o.Code)
		if err != nil || !marketable(o, px) {
			kept = append(kept, o)
			continue
		}
		if o.Side == models.SideBuy {
			// release the reservation, fill charges the execution price
			p.cash += o.Price * o.Remaining
		}
		p.fill(ctx, o, px)
	}
	p.pending = kept
}

// StaticFeed is an in-memory Feed with settable quotes and bars.
type StaticFeed struct {
	mu      sync.RWMutex
	bars    map[string][]models.Bar // most-recent-first
	prices  map[string]int64
	names   map[string]string
	ranking []models.Candidate
}

func NewStaticFeed() *StaticFeed {
	return &StaticFeed{
		bars:   make(map[string][]models.Bar),
		prices: make(map[string]int64),
		names:  make(map[string]string),
	}
}

func (f *StaticFeed) SetBars(code string, recentFirst []models.Bar) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bars[code] = recentFirst
}

func (f *StaticFeed) SetPrice(code string, px int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[code] = px
}

func (f *StaticFeed) SetRanking(r []models.Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranking = r
	for _, c := range r {
		f.names[c.Code] = c.Name
	}
}

func (f *StaticFeed) DailyBars(_ context.Context, code string) ([]models.Bar, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	b, ok := f.bars[code]
	if !ok || len(b) == 0 {
		return nil, errors.Wrap(ErrDataUnavailable, code)
	}
	return append([]models.Bar(nil), b...), nil
}

func (f *StaticFeed) CurrentPrice(_ context.Context, code string) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	px, ok := f.prices[code]
	if !ok || px <= 0 {
		return 0, errors.Wrap(ErrQuoteUnavailable, code)
	}
	return px, nil
}

func (f *StaticFeed) TurnoverRanking(context.Context, string) ([]models.Candidate, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Candidate(nil), f.ranking...), nil
}

func (f *StaticFeed) StockName(_ context.Context, code string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.names[code], nil
}
