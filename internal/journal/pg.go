package journal

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"stock_bot/pkg/db"
)

const pgSchema = `CREATE TABLE IF NOT EXISTS order_journal (
	id        BIGSERIAL PRIMARY KEY,
	intent_id TEXT NOT NULL,
	at        TIMESTAMPTZ NOT NULL,
	side      TEXT NOT NULL,
	code      TEXT NOT NULL,
	result    INTEGER NOT NULL,
	payload   JSONB NOT NULL
)`

const pgInsert = `INSERT INTO order_journal (intent_id, at, side, code, result, payload)
VALUES ($1, $2, $3, $4, $5, $6)`

// Postgres пишет журнал через PgTxManager; payload: полный Entry в jsonb.
type Postgres struct {
	tx db.TxManager
}

func NewPostgres(ctx context.Context, tx db.TxManager) (*Postgres, error) {
	if _, err := tx.Conn().Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("journal.NewPostgres: %w", err)
	}
	return &Postgres{tx: tx}, nil
}

func (p *Postgres) Record(ctx context.Context, e Entry) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("journal.Postgres.Record: %w", err)
		}
	}()

	payload, err := sonic.Marshal(e)
	if err != nil {
		return err
	}
	return p.tx.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctxTx, pgInsert, e.IntentID, e.At, string(e.Side), e.Code, e.Result, payload)
		return err
	})
}

// Close is a no-op: the pool belongs to the postgres module.
func (p *Postgres) Close() error { return nil }
