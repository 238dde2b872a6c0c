package sessions

import (
	"sort"
	"time"

	"stock_bot/internal/models"
)

type RiskConfig struct {
	HalfTarget     float64 // %
	FullTarget     float64 // %
	StopLoss       float64 // %, negative
	TrailingMargin float64 // %-points below the best profit seen
	Trailing       bool    // strategy capability

	SessionClose string // "15:15"
	Location     *time.Location
}

// Book: позиции текущей сессии. Один писатель: цикл раннера.
type Book struct {
	cfg       RiskConfig
	positions map[string]*models.Position
}

func NewBook(cfg RiskConfig) *Book {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Book{cfg: cfg, positions: make(map[string]*models.Position)}
}

// Open registers an accepted buy.
func (b *Book) Open(code, name string, price, qty int64, now time.Time) {
	b.positions[code] = &models.Position{
		Code:     code,
		Name:     name,
		BuyPrice: price,
		Quantity: qty,
		OpenedAt: now,
	}
}

func (b *Book) Has(code string) bool {
	_, ok := b.positions[code]
	return ok
}

func (b *Book) Get(code string) (models.Position, bool) {
	p, ok := b.positions[code]
	if !ok {
		return models.Position{}, false
	}
	return *p, true
}

func (b *Book) Len() int { return len(b.positions) }

// Positions returns copies sorted by code.
func (b *Book) Positions() []models.Position {
	out := make([]models.Position, 0, len(b.positions))
	for _, p := range b.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// SessionClosed reports whether now is at or past the configured close.
func (b *Book) SessionClosed(now time.Time) bool {
	at, err := sessionCloseAt(b.cfg, now)
	if err != nil {
		return false
	}
	return !now.Before(at)
}
