package journal

import (
	"context"
	"time"

	"stock_bot/internal/models"
)

// Entry is one submitted order intent and the broker's answer to it.
type Entry struct {
	IntentID string           `json:"intent_id"`
	At       time.Time        `json:"at"`
	Side     models.Side      `json:"side"`
	Code     string           `json:"code"`
	Quantity int64            `json:"quantity"`
	Price    int64            `json:"price"`
	Kind     models.OrderKind `json:"kind"`
	Reason   string           `json:"reason"`
	Result   int              `json:"result"`
	Error    string           `json:"error,omitempty"`
}

func NewEntry(intent models.OrderIntent, at time.Time, result int, err error) Entry {
	e := Entry{
		IntentID: intent.ID,
		At:       at,
		Side:     intent.Side,
		Code:     intent.Code,
		Quantity: intent.Quantity,
		Price:    intent.Price,
		Kind:     intent.Kind,
		Reason:   intent.Reason,
		Result:   result,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

type Journal interface {
	Record(ctx context.Context, e Entry) error
	Close() error
}

// Nop drops everything.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
func (Nop) Close() error                        { return nil }
