package sessions

import (
	"time"

	"stock_bot/internal/models"
)

type ReconcileResult struct {
	Adopted []string
	Dropped []string
	Resized []string
}

// Reconcile makes the book agree with the broker snapshot: unknown holdings are adopted,
// quantities re-synced, and entries neither held nor awaiting a buy fill are dropped.
func (b *Book) Reconcile(holdings []models.Holding, pendingBuys map[string]struct{}, now time.Time) ReconcileResult {
	var res ReconcileResult

	held := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if h.Quantity <= 0 {
			continue
		}
		held[h.Code] = struct{}{}

		p, ok := b.positions[h.Code]
		if !ok {
			b.positions[h.Code] = &models.Position{
				Code:     h.Code,
				Name:     h.Name,
				BuyPrice: h.BuyPrice,
				Quantity: h.Quantity,
				OpenedAt: now,
			}
			res.Adopted = append(res.Adopted, h.Code)
			continue
		}
		if p.Quantity != h.Quantity {
			p.Quantity = h.Quantity
			res.Resized = append(res.Resized, h.Code)
		}
		if h.BuyPrice > 0 {
			p.BuyPrice = h.BuyPrice
		}
		if p.Name == "" {
			p.Name = h.Name
		}
	}

	for code := range b.positions {
		if _, ok := held[code]; ok {
			continue
		}
		if _, ok := pendingBuys[code]; ok {
			continue
		}
		delete(b.positions, code)
		res.Dropped = append(res.Dropped, code)
	}
	return res
}
