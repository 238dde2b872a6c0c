package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"stock_bot/internal/models"
)

// Broker fields arrive as padded strings with sign and thousands separators: " +12,340".
func clean(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimPrefix(s, "+")
}

func parseInt(raw string) (int64, error) {
	s := clean(raw)
	if s == "" {
		return 0, errors.Errorf("empty integer field")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse int %q", raw)
	}
	return v, nil
}

// parseAbsInt drops the sign: price fields carry the day's direction, not a negative price.
func parseAbsInt(raw string) (int64, error) {
	v, err := parseInt(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = -v
	}
	return v, nil
}

func parseFloat(raw string) (float64, error) {
	s := clean(raw)
	if s == "" {
		return 0, errors.Errorf("empty float field")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse float %q", raw)
	}
	return v, nil
}

// normalizeCode strips the "A" prefix the balance screen puts in front of codes.
func normalizeCode(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) == 7 && (s[0] == 'A' || s[0] == 'J') {
		return s[1:]
	}
	return s
}

type rawBar struct {
	Date   string `json:"date"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

func (r rawBar) toBar() (models.Bar, error) {
	var (
		b   models.Bar
		err error
	)
	if b.Date, err = time.Parse("20060102", strings.TrimSpace(r.Date)); err != nil {
		return b, errors.Wrapf(err, "bar date %q", r.Date)
	}
	if b.Open, err = parseAbsInt(r.Open); err != nil {
		return b, err
	}
	if b.High, err = parseAbsInt(r.High); err != nil {
		return b, err
	}
	if b.Low, err = parseAbsInt(r.Low); err != nil {
		return b, err
	}
	if b.Close, err = parseAbsInt(r.Close); err != nil {
		return b, err
	}
	if b.Volume, err = parseAbsInt(r.Volume); err != nil {
		return b, err
	}
	if !b.Valid() {
		return b, errors.Errorf("inconsistent bar %s", r.Date)
	}
	return b, nil
}

type rawHolding struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Quantity     string `json:"quantity"`
	BuyPrice     string `json:"buy_price"`
	CurrentPrice string `json:"current_price"`
	Profit       string `json:"profit"`
	ProfitRate   string `json:"profit_rate"`
}

func (r rawHolding) toHolding() (models.Holding, error) {
	var (
		h   = models.Holding{Code: normalizeCode(r.Code), Name: strings.TrimSpace(r.Name)}
		err error
	)
	if h.Code == "" {
		return h, errors.New("holding without code")
	}
	if h.Quantity, err = parseInt(r.Quantity); err != nil {
		return h, err
	}
	if h.BuyPrice, err = parseAbsInt(r.BuyPrice); err != nil {
		return h, err
	}
	if h.CurrentPrice, err = parseAbsInt(r.CurrentPrice); err != nil {
		return h, err
	}
	// profit fields are informational; blanks are tolerated
	h.Profit, _ = parseInt(r.Profit)
	h.ProfitRate, _ = parseFloat(r.ProfitRate)
	return h, nil
}

type rawBalance struct {
	Deposit         string       `json:"deposit"`
	TotalBuy        string       `json:"total_buy"`
	TotalEval       string       `json:"total_eval"`
	TotalProfit     string       `json:"total_profit"`
	TotalProfitRate string       `json:"total_profit_rate"`
	Stocks          []rawHolding `json:"stocks"`
}

func (r rawBalance) toAccount() (models.Account, error) {
	var (
		a   models.Account
		err error
	)
	if a.Cash, err = parseInt(r.Deposit); err != nil {
		return a, errors.Wrap(err, "deposit")
	}
	a.TotalBuy, _ = parseInt(r.TotalBuy)
	a.TotalEval, _ = parseInt(r.TotalEval)
	a.TotalProfit, _ = parseInt(r.TotalProfit)
	a.TotalProfitRate, _ = parseFloat(r.TotalProfitRate)

	a.Holdings = make([]models.Holding, 0, len(r.Stocks))
	for _, s := range r.Stocks {
		h, err := s.toHolding()
		if err != nil {
			return a, errors.Wrapf(err, "holding %q", s.Code)
		}
		if h.Quantity <= 0 {
			continue
		}
		a.Holdings = append(a.Holdings, h)
	}
	return a, nil
}

type rawRank struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	TradeAmount string `json:"trade_amount"`
	ChangeRate  string `json:"change_rate"`
}

func (r rawRank) toCandidate() (models.Candidate, error) {
	var (
		c   = models.Candidate{Code: normalizeCode(r.Code), Name: strings.TrimSpace(r.Name)}
		err error
	)
	if c.Code == "" {
		return c, errors.New("ranking row without code")
	}
	if c.Price, err = parseAbsInt(r.Price); err != nil {
		return c, err
	}
	if c.TradedValue, err = parseAbsInt(r.TradeAmount); err != nil {
		return c, err
	}
	if c.ChangeRatePct, err = parseFloat(r.ChangeRate); err != nil {
		return c, err
	}
	return c, nil
}

type rawPending struct {
	OrderNo   string `json:"order_no"`
	Code      string `json:"code"`
	Side      string `json:"side"` // "1" buy, "2" sell
	Quantity  string `json:"quantity"`
	Remaining string `json:"remaining"`
	Price     string `json:"price"`
}

func (r rawPending) toPending() (models.PendingOrder, error) {
	var (
		p   = models.PendingOrder{OrderID: strings.TrimSpace(r.OrderNo), Code: normalizeCode(r.Code)}
		err error
	)
	switch strings.TrimSpace(r.Side) {
	case "1":
		p.Side = models.SideBuy
	case "2":
		p.Side = models.SideSell
	default:
		return p, errors.Errorf("unknown order side %q", r.Side)
	}
	if p.Quantity, err = parseInt(r.Quantity); err != nil {
		return p, err
	}
	if p.Remaining, err = parseInt(r.Remaining); err != nil {
		p.Remaining = p.Quantity
	}
	p.Price, _ = parseAbsInt(r.Price)
	return p, nil
}

func sideCode(s models.Side) string {
	if s == models.SideSell {
		return "2"
	}
	return "1"
}

// hoga: "00" limit, "03" market
func kindCode(k models.OrderKind) string {
	if k == models.OrderMarket {
		return "03"
	}
	return "00"
}
