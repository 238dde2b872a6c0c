package service_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stock_bot/internal/helper"
	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
	gateway "stock_bot/internal/modules/gateway/service"
	strategy "stock_bot/internal/modules/strategy/service"
	"stock_bot/internal/modules/watchlist/service"
)

// MockEngine accepts everything; SignalPrice is fixed.
type MockEngine struct {
	traits strategy.Traits
	signal int64
}

func (m *MockEngine) Name() models.StrategyType              { return "mock" }
func (m *MockEngine) MinBars() int                           { return m.traits.SelectionBars }
func (m *MockEngine) HasBuySignal([]models.Bar) bool         { return true }
func (m *MockEngine) SignalPrice([]models.Bar) (int64, bool) { return m.signal, m.signal > 0 }
func (m *MockEngine) ProfitRate(buy, cur int64) float64      { return helper.ProfitRate(buy, cur) }
func (m *MockEngine) Traits() strategy.Traits                { return m.traits }

// MockBars serves n flat bars per code and records fetches.
type MockBars struct {
	n       map[string]int
	fail    map[string]bool
	fetched []string
}

func (m *MockBars) DailyBars(_ context.Context, code string) ([]models.Bar, error) {
	m.fetched = append(m.fetched, code)
	if m.fail[code] {
		return nil, errors.Wrap(gateway.ErrDataUnavailable, code)
	}
	n, ok := m.n[code]
	if !ok {
		n = 30
	}
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{Open: 1_000, High: 1_000, Low: 1_000, Close: 1_000, Volume: 10}
	}
	return bars, nil
}

func ranking(codes ...string) []models.Candidate {
	out := make([]models.Candidate, len(codes))
	for i, c := range codes {
		out[i] = models.Candidate{Code: c, Name: "n" + c, Price: 1_000}
	}
	return out
}

func codes(cs []models.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Code
	}
	return out
}

func TestSelect_ExcludesHeldAndPending(t *testing.T) {
	bars := &MockBars{}
	sel := service.NewSelector(&MockEngine{traits: strategy.Traits{SelectionBars: 3}}, bars,
		service.SelectorConfig{TargetCount: 10, ScanDepth: 50}, zap.NewNop())

	got := sel.Select(context.Background(), ranking("A", "B", "C", "D", "E"),
		helper.SetOf("B"), helper.SetOf("D"))

	assert.Equal(t, []string{"A", "C", "E"}, codes(got))
	assert.NotContains(t, bars.fetched, "B")
	assert.NotContains(t, bars.fetched, "D")
}

func TestSelect_IsolatesFailuresAndShortHistory(t *testing.T) {
	bars := &MockBars{
		n:    map[string]int{"C": 19},
		fail: map[string]bool{"B": true},
	}
	sel := service.NewSelector(&MockEngine{traits: strategy.Traits{SelectionBars: 20}}, bars,
		service.SelectorConfig{TargetCount: 10, ScanDepth: 50}, zap.NewNop())

	got := sel.Select(context.Background(), ranking("A", "B", "C", "D"), nil, nil)
	assert.Equal(t, []string{"A", "D"}, codes(got))
}

func TestSelect_TargetCountAndScanDepth(t *testing.T) {
	bars := &MockBars{}
	eng := &MockEngine{traits: strategy.Traits{SelectionBars: 3}}

	sel := service.NewSelector(eng, bars, service.SelectorConfig{TargetCount: 2, ScanDepth: 50}, zap.NewNop())
	got := sel.Select(context.Background(), ranking("A", "B", "C", "D"), nil, nil)
	assert.Equal(t, []string{"A", "B"}, codes(got))
	assert.Equal(t, []string{"A", "B"}, bars.fetched, "stops fetching once the target is reached")

	sel = service.NewSelector(eng, &MockBars{}, service.SelectorConfig{TargetCount: 10, ScanDepth: 3}, zap.NewNop())
	got = sel.Select(context.Background(), ranking("A", "B", "C", "D"), nil, nil)
	assert.Equal(t, []string{"A", "B", "C"}, codes(got))
}

func TestSelect_ConfirmSignalPrice(t *testing.T) {
	r := ranking("A", "B")
	r[1].Price = 900

	sel := service.NewSelector(&MockEngine{traits: strategy.Traits{SelectionBars: 3, ConfirmSignalPrice: true}, signal: 950},
		&MockBars{}, service.SelectorConfig{TargetCount: 10, ScanDepth: 50}, zap.NewNop())
	got := sel.Select(context.Background(), r, nil, nil)
	assert.Equal(t, []string{"A"}, codes(got))
}

func TestWatchlist_Refresh(t *testing.T) {
	ctx := context.Background()
	feed := gateway.NewStaticFeed()
	feed.SetRanking(ranking("A", "B", "C"))
	for _, c := range []string{"A", "B", "C"} {
		feed.SetPrice(c, 1_000)
		feed.SetBars(c, []models.Bar{
			{Open: 1_000, High: 1_000, Low: 1_000, Close: 1_000, Volume: 10},
			{Open: 1_000, High: 1_000, Low: 1_000, Close: 1_000, Volume: 10},
			{Open: 1_000, High: 1_000, Low: 1_000, Close: 1_000, Volume: 10},
		})
	}
	paper := gateway.NewPaper(feed, 10_000_000)
	res, err := paper.PlaceOrder(ctx, models.OrderIntent{Side: models.SideBuy, Code: "A", Quantity: 1, Kind: models.OrderMarket})
	require.NoError(t, err)
	require.Equal(t, gateway.ResultAccepted, res)

	cfg := config.Default()
	cfg.Trading.TargetCount = 5
	eng := &MockEngine{traits: strategy.Traits{SelectionBars: 3}}
	wl := service.NewWatchlist(&cfg, paper, eng, zap.NewNop())

	require.NoError(t, wl.Refresh(ctx))
	assert.Equal(t, []string{"B", "C"}, codes(wl.Candidates()))
}
