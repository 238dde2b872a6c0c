package watchlist

import (
	"go.uber.org/fx"

	"stock_bot/internal/modules/watchlist/service"
)

// Module: Refresh вызывает runner при старте сессии.
func Module() fx.Option {
	return fx.Module("watchlist",
		fx.Provide(
			service.NewWatchlist,
		),
	)
}
