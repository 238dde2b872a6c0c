package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stock_bot/internal/models"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS order_journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			intent_id TEXT NOT NULL,
			at DATETIME NOT NULL,
			side TEXT NOT NULL,
			code TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			price INTEGER NOT NULL,
			kind TEXT NOT NULL,
			reason TEXT NOT NULL,
			result INTEGER NOT NULL,
			error TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_order_journal_code ON order_journal(code);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLite) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_journal (intent_id, at, side, code, quantity, price, kind, reason, result, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.IntentID, e.At.UTC(), string(e.Side), e.Code, e.Quantity, e.Price, string(e.Kind), e.Reason, e.Result, e.Error,
	)
	if err != nil {
		return fmt.Errorf("journal.SQLite.Record: %w", err)
	}
	return nil
}

// ByCode returns entries for code in insertion order.
func (s *SQLite) ByCode(ctx context.Context, code string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT intent_id, at, side, code, quantity, price, kind, reason, result, COALESCE(error, '')
		 FROM order_journal WHERE code = ? ORDER BY id`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			at         time.Time
			side, kind string
		)
		if err := rows.Scan(&e.IntentID, &at, &side, &e.Code, &e.Quantity, &e.Price, &kind, &e.Reason, &e.Result, &e.Error); err != nil {
			return nil, err
		}
		e.At = at
		e.Side = models.Side(side)
		e.Kind = models.OrderKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
