package journal

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"stock_bot/internal/modules/config"
	"stock_bot/pkg/db"
)

// New выбирает хранилище: postgres, если поднят пул, иначе sqlite, иначе ничего.
func New(ctx context.Context, lc fx.Lifecycle, cfg *config.Config, pg *db.PgTxManager, log *zap.Logger) (Journal, error) {
	var (
		j   Journal
		err error
	)
	switch {
	case pg != nil:
		j, err = NewPostgres(ctx, pg)
		log.Info("order journal: postgres")
	case cfg.SQLitePath != "":
		j, err = NewSQLite(cfg.SQLitePath)
		log.Info("order journal: sqlite", zap.String("path", cfg.SQLitePath))
	default:
		j = Nop{}
		log.Info("order journal disabled")
	}
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return j.Close() },
	})
	return j, nil
}

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(New),
	)
}
