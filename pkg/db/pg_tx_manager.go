package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stock_bot/pkg/logger"
)

// PoolConfig: нулевые поля оставляют значения pgxpool по умолчанию.
type PoolConfig struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	ConnectTimeout  time.Duration
}

type PgTxManager struct {
	pool *pgxpool.Pool
}

func NewPgTxManager(pool *pgxpool.Pool) *PgTxManager {
	return &PgTxManager{pool: pool}
}

func (m *PgTxManager) Close() {
	m.pool.Close()
}

// NewPool parses the DSN, applies the overrides and checks the connection.
func NewPool(ctx context.Context, conf PoolConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(conf.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if conf.MaxConns > 0 {
		pc.MaxConns = conf.MaxConns
	}
	if conf.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = conf.MaxConnLifetime
	}
	if conf.ConnectTimeout > 0 {
		pc.ConnConfig.ConnectTimeout = conf.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// RunMaster runs fn in a read-committed transaction; fn's error or panic rolls it back.
func (m *PgTxManager) RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx Transaction) error) error {
	return m.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (m *PgTxManager) Conn() Transaction {
	return m.pool
}

func (m *PgTxManager) inTx(
	ctx context.Context,
	options pgx.TxOptions,
	f func(ctxTx context.Context, tx Transaction) error,
) (err error) {
	tx, err := m.pool.BeginTx(ctx, options)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		switch p := recover(); {
		case p != nil:
			logger.Error("tx panic: %v", p)
			_ = tx.Rollback(ctx)
			panic(p)
		case err != nil:
			_ = tx.Rollback(ctx)
		default:
			if err = tx.Commit(ctx); err != nil {
				err = fmt.Errorf("commit: %w", err)
			}
		}
	}()

	if err = f(ctx, tx); err != nil {
		return fmt.Errorf("tx fn: %w", err)
	}
	return nil
}
