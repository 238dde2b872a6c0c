package models

// Holding is one row of the broker balance snapshot.
type Holding struct {
	Code         string
	Name         string
	Quantity     int64
	BuyPrice     int64
	CurrentPrice int64
	Profit       int64
	ProfitRate   float64
}

// Account is a point-in-time balance snapshot from the gateway.
type Account struct {
	Cash            int64
	TotalBuy        int64
	TotalEval       int64
	TotalProfit     int64
	TotalProfitRate float64
	Holdings        []Holding
}

// HeldCodes returns the set of codes with a positive holding.
func (a *Account) HeldCodes() map[string]struct{} {
	out := make(map[string]struct{}, len(a.Holdings))
	for _, h := range a.Holdings {
		if h.Quantity > 0 {
			out[h.Code] = struct{}{}
		}
	}
	return out
}
