package main

import (
	"context"
	_ "time/tzdata"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"stock_bot/internal/journal"
	"stock_bot/internal/modules/config"
	"stock_bot/internal/modules/gateway"
	"stock_bot/internal/modules/health"
	"stock_bot/internal/modules/postgres"
	"stock_bot/internal/modules/strategy"
	"stock_bot/internal/modules/watchlist"
	"stock_bot/internal/notify"
	"stock_bot/internal/runner"
	"stock_bot/pkg/logger"
	"stock_bot/pkg/tracing"
)

const serviceName = "stock_bot"

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(serviceName)
	return logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

func newTracer(lc fx.Lifecycle, cfg *config.Config) (opentracing.Tracer, error) {
	tracing.SetServiceName(serviceName)
	tracer, closer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Tracing.Host,
		Port: cfg.Tracing.Port,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return closer.Close() },
	})
	return tracer, nil
}

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			newLogger,
			newTracer,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		config.Module(),
		postgres.Module(),
		journal.Module(),
		notify.Module(),
		health.Module(),
		gateway.Module(),
		strategy.Module(),
		watchlist.Module(),
		runner.Module(),
		// трейсер нужен до первого цикла
		fx.Invoke(func(_ opentracing.Tracer, cfg *config.Config) {
			logger.Info("starting %s: strategy=%s mode=%s", serviceName, cfg.Strategy.Variant, cfg.Gateway.Mode)
		}),
	)
	app.Run()
}
