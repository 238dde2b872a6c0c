package sessions_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_bot/internal/helper"
	"stock_bot/internal/models"
	"stock_bot/internal/runner/sessions"
)

var (
	kst     = time.FixedZone("KST", 9*3600)
	morning = time.Date(2024, 3, 4, 10, 0, 0, 0, kst)
)

func newBook(trailing bool) *sessions.Book {
	return sessions.NewBook(sessions.RiskConfig{
		HalfTarget:     1.0,
		FullTarget:     1.5,
		StopLoss:       -1.5,
		TrailingMargin: 2.0,
		Trailing:       trailing,
		SessionClose:   "15:15",
		Location:       kst,
	})
}

// priceAt returns the price giving rate% over a 10,000 buy.
func priceAt(rate float64) int64 { return 10_000 + int64(rate*100) }

func TestDecide_HalfThenFullSequence(t *testing.T) {
	b := newBook(false)
	b.Open("005930", "Samsung", 10_000, 10, morning)

	var actions []sessions.Action
	var qtys []int64
	for _, rate := range []float64{0.5, 1.2, 1.6} {
		d := b.Decide("005930", priceAt(rate), morning)
		actions = append(actions, d.Action)
		qtys = append(qtys, d.Quantity)
		if !d.None() {
			b.Apply(d)
		}
	}

	assert.Equal(t, []sessions.Action{sessions.ActionNone, sessions.ActionHalfTakeProfit, sessions.ActionFullTakeProfit}, actions)
	assert.Equal(t, []int64{0, 5, 5}, qtys)
	assert.False(t, b.Has("005930"), "closed positions leave the book")
}

func TestDecide_HalfExitDetails(t *testing.T) {
	b := newBook(false)
	b.Open("005930", "", 10_000, 7, morning)

	d := b.Decide("005930", 10_120, morning)
	require.Equal(t, sessions.ActionHalfTakeProfit, d.Action)
	assert.Equal(t, int64(3), d.Quantity)
	assert.Equal(t, models.OrderLimit, d.Kind)
	assert.Equal(t, int64(10_100), d.Price, "limit price rounded down to the 50 tick")

	b.Apply(d)
	p, ok := b.Get("005930")
	require.True(t, ok)
	assert.True(t, p.HalfSold)
	assert.Equal(t, int64(4), p.Quantity)
	assert.Equal(t, models.StateHalfSold, p.State())

	// half exit is one-shot
	assert.True(t, b.Decide("005930", 10_120, morning).None())
}

func TestDecide_SingleShareSkipsHalf(t *testing.T) {
	b := newBook(false)
	b.Open("005930", "", 10_000, 1, morning)
	assert.True(t, b.Decide("005930", 10_120, morning).None())

	d := b.Decide("005930", 10_150, morning)
	assert.Equal(t, sessions.ActionFullTakeProfit, d.Action)
	assert.Equal(t, int64(1), d.Quantity)
}

func TestDecide_StopLossIsMarket(t *testing.T) {
	b := newBook(false)
	b.Open("005930", "", 10_000, 10, morning)

	d := b.Decide("005930", 9_850, morning)
	assert.Equal(t, sessions.ActionStopLoss, d.Action)
	assert.Equal(t, models.OrderMarket, d.Kind)
	assert.Equal(t, int64(0), d.Price)
	assert.Equal(t, int64(10), d.Quantity)

	intent := d.Intent()
	assert.Equal(t, models.SideSell, intent.Side)
	assert.NotEmpty(t, intent.ID)
	assert.Equal(t, "stop_loss", intent.Reason)
}

func TestDecide_TrailingStopPriority(t *testing.T) {
	b := sessions.NewBook(sessions.RiskConfig{
		HalfTarget:     10,
		FullTarget:     20,
		StopLoss:       -1.5,
		TrailingMargin: 2.0,
		Trailing:       true,
		SessionClose:   "15:15",
		Location:       kst,
	})
	b.Open("005930", "", 10_000, 10, morning)

	assert.True(t, b.Decide("005930", priceAt(3), morning).None())
	d := b.Decide("005930", priceAt(0.9), morning)
	assert.Equal(t, sessions.ActionTrailingStop, d.Action)
	assert.Equal(t, models.OrderMarket, d.Kind)

	// same path without the capability stays open
	nb := sessions.NewBook(sessions.RiskConfig{HalfTarget: 10, FullTarget: 20, StopLoss: -1.5, TrailingMargin: 2.0, SessionClose: "15:15", Location: kst})
	nb.Open("005930", "", 10_000, 10, morning)
	nb.Decide("005930", priceAt(3), morning)
	assert.True(t, nb.Decide("005930", priceAt(0.9), morning).None())
}

func TestDecide_TrailingNeedsPositivePeak(t *testing.T) {
	b := newBook(true)
	b.Open("005930", "", 10_000, 10, morning)

	assert.True(t, b.Decide("005930", priceAt(-0.5), morning).None())
	assert.True(t, b.Decide("005930", priceAt(-1.0), morning).None())
	assert.Equal(t, sessions.ActionStopLoss, b.Decide("005930", priceAt(-1.6), morning).Action)
}

func TestDecide_SessionCloseWins(t *testing.T) {
	b := newBook(true)
	b.Open("005930", "", 10_000, 10, morning)

	late := time.Date(2024, 3, 4, 15, 15, 0, 0, kst)
	d := b.Decide("005930", priceAt(1.6), late)
	assert.Equal(t, sessions.ActionSessionClose, d.Action)
	assert.Equal(t, models.OrderMarket, d.Kind)
	assert.Equal(t, int64(10), d.Quantity)

	assert.False(t, b.SessionClosed(late.Add(-time.Second)))
	assert.True(t, b.SessionClosed(late))
}

func TestDecide_IdempotentWithoutApply(t *testing.T) {
	b := newBook(false)
	b.Open("005930", "", 10_000, 10, morning)

	first := b.Decide("005930", 10_120, morning)
	second := b.Decide("005930", 10_120, morning)
	assert.Equal(t, first.Action, second.Action)
	assert.Equal(t, first.Quantity, second.Quantity)

	p, _ := b.Get("005930")
	assert.False(t, p.HalfSold, "deciding alone never advances state")
	assert.Equal(t, int64(10), p.Quantity)

	b.Apply(first)
	assert.True(t, b.Decide("005930", 10_120, morning).None())
}

func TestDecide_UnknownCode(t *testing.T) {
	assert.True(t, newBook(false).Decide("000000", 10_000, morning).None())
}

func TestAction_Protective(t *testing.T) {
	for a, want := range map[sessions.Action]bool{
		sessions.ActionNone:           false,
		sessions.ActionHalfTakeProfit: false,
		sessions.ActionFullTakeProfit: false,
		sessions.ActionStopLoss:       true,
		sessions.ActionTrailingStop:   true,
		sessions.ActionSessionClose:   true,
	} {
		assert.Equal(t, want, a.Protective(), a.String())
	}
}

func TestReconcile(t *testing.T) {
	b := newBook(false)
	b.Open("KEEP", "", 10_000, 10, morning)
	b.Open("PENDING", "", 5_000, 20, morning)
	b.Open("GONE", "", 7_000, 3, morning)

	res := b.Reconcile([]models.Holding{
		{Code: "KEEP", Quantity: 5, BuyPrice: 10_010},
		{Code: "NEW", Name: "adopted", Quantity: 12, BuyPrice: 3_000},
		{Code: "ZERO", Quantity: 0, BuyPrice: 1_000},
	}, helper.SetOf("PENDING"), morning)

	assert.Equal(t, []string{"NEW"}, res.Adopted)
	assert.Equal(t, []string{"GONE"}, res.Dropped)
	assert.Equal(t, []string{"KEEP"}, res.Resized)

	keep, _ := b.Get("KEEP")
	assert.Equal(t, int64(5), keep.Quantity)
	assert.Equal(t, int64(10_010), keep.BuyPrice)

	adopted, ok := b.Get("NEW")
	require.True(t, ok)
	assert.Equal(t, int64(3_000), adopted.BuyPrice)
	assert.Equal(t, models.StateOpen, adopted.State())

	assert.True(t, b.Has("PENDING"))
	assert.False(t, b.Has("ZERO"))
	assert.Equal(t, 3, b.Len())
}
