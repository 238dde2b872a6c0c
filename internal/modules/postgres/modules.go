package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"stock_bot/internal/modules/config"
	"stock_bot/pkg/db"
)

// NewTxManager поднимает пул только если задан db_dsn; иначе nil и журнал уходит в sqlite/nop.
func NewTxManager(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*db.PgTxManager, error) {
	if cfg.DB == "" {
		return nil, nil
	}
	pool, err := db.NewPool(ctx, db.PoolConfig{
		DSN:             cfg.DB,
		MaxConns:        4,
		MaxConnLifetime: time.Hour,
		ConnectTimeout:  5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	log.Info("postgres connected", zap.Int32("max_conns", pool.Config().MaxConns))

	m := db.NewPgTxManager(pool)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.Close()
			return nil
		},
	})
	return m, nil
}

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(NewTxManager),
	)
}
