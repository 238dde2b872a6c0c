package service

import (
	"context"

	"github.com/pkg/errors"

	"stock_bot/internal/models"
)

var (
	ErrDataUnavailable  = errors.New("daily bars unavailable")
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrOrderRejected    = errors.New("order rejected")
)

// ResultAccepted is the place-order result code for an accepted order; anything else is a rejection.
const ResultAccepted = 0

// Gateway: всё, что ядро знает о брокере. Все вызовы блокирующие.
type Gateway interface {
	// DailyBars returns bars most-recent-first.
	DailyBars(ctx context.Context, code string) ([]models.Bar, error)
	CurrentPrice(ctx context.Context, code string) (int64, error)
	Balance(ctx context.Context) (models.Account, error)
	PendingOrders(ctx context.Context, side models.Side) ([]models.PendingOrder, error)
	PlaceOrder(ctx context.Context, intent models.OrderIntent) (int, error)
	CancelOrder(ctx context.Context, orderID string) error

	// TurnoverRanking is the market's universe sorted by traded value, descending.
	TurnoverRanking(ctx context.Context, market string) ([]models.Candidate, error)
	StockName(ctx context.Context, code string) (string, error)
}

// Feed is the market-data half of the gateway.
type Feed interface {
	DailyBars(ctx context.Context, code string) ([]models.Bar, error)
	CurrentPrice(ctx context.Context, code string) (int64, error)
	TurnoverRanking(ctx context.Context, market string) ([]models.Candidate, error)
	StockName(ctx context.Context, code string) (string, error)
}
