package runner

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"stock_bot/internal/journal"
	"stock_bot/internal/modules/config"
	gateway "stock_bot/internal/modules/gateway/service"
	health "stock_bot/internal/modules/health/service"
	strategy "stock_bot/internal/modules/strategy/service"
	watchlist "stock_bot/internal/modules/watchlist/service"
	"stock_bot/internal/notify"
)

func provideRunner(
	cfg *config.Config,
	gw gateway.Gateway,
	engine strategy.Engine,
	watch *watchlist.Watchlist,
	j journal.Journal,
	n notify.Notifier,
	state *health.State,
	log *zap.Logger,
) *Runner {
	return New(cfg, gw, engine, watch, j, n, state, log.Named("runner"))
}

// start: OnStop ждёт окончания текущего цикла.
func start(lc fx.Lifecycle, r *Runner, n notify.Notifier) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			n.Sendf("🚀 bot started: %s", r.engine.Name())
			go func() {
				defer close(done)
				r.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			n.Sendf("🛑 bot stopped, %d open positions", r.book.Len())
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(provideRunner),
		fx.Invoke(start),
	)
}
