package gateway

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"stock_bot/internal/models"
	"stock_bot/internal/modules/config"
	"stock_bot/internal/modules/gateway/service"
	health "stock_bot/internal/modules/health/service"
	"stock_bot/internal/notify"
)

// NewGateway: live: REST bridge; paper: симулятор поверх котировок того же моста,
// его исполнения идут в тот же handler, что и поток уведомлений.
func NewGateway(cfg *config.Config, client *service.Client, handle service.FillHandler, log *zap.Logger) service.Gateway {
	if cfg.Gateway.Mode == "paper" {
		log.Info("paper gateway", zap.Int64("cash", cfg.Gateway.PaperCash))
		paper := service.NewPaper(client, cfg.Gateway.PaperCash)
		paper.OnFill(handle)
		return paper
	}
	return client
}

// FillReporter logs and reports execution notices.
func FillReporter(n notify.Notifier, state *health.State, log *zap.Logger) service.FillHandler {
	return func(_ context.Context, f models.Fill) {
		state.TouchFill(f.At)
		log.Info("execution notice",
			zap.String("order_no", f.OrderID),
			zap.String("code", f.Code),
			zap.String("side", string(f.Side)),
			zap.Int64("qty", f.Quantity),
			zap.Int64("price", f.Price),
			zap.String("status", f.Status))
		n.Sendf("📨 %s %s %d @ %d (%s)", f.Side, f.Code, f.Quantity, f.Price, f.Status)
	}
}

func runStream(lc fx.Lifecycle, cfg *config.Config, state *health.State, handle service.FillHandler, log *zap.Logger) {
	if cfg.Gateway.Mode == "paper" || cfg.Gateway.WSURL == "" {
		return
	}
	s := service.NewStream(cfg.Gateway.WSURL, log)
	s.OnConnect(state.SetStreamConnected)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				s.Run(ctx, handle)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("gateway",
		fx.Provide(
			service.NewClient,
			NewGateway,
			FillReporter,
		),
		fx.Invoke(runStream),
	)
}
