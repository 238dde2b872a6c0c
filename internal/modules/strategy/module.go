package strategy

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stock_bot/internal/modules/strategy/service"
)

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			service.NewEngine, // service.Engine по strategy.variant
		),
		fx.Invoke(func(e service.Engine, log *zap.Logger) {
			t := e.Traits()
			log.Info("strategy selected",
				zap.String("variant", string(e.Name())),
				zap.Int("min_bars", e.MinBars()),
				zap.Bool("trailing_stop", t.TrailingStop))
		}),
	)
}
