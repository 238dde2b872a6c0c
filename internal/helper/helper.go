package helper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TickBand: prices below Below move in steps of Tick.
type TickBand struct {
	Below int64
	Tick  int64
}

// KRXTicks is the exchange tick ladder; prices at/above the last band use TopTick.
// 1,000 up to 10,000 trades in 10-won steps.
var KRXTicks = []TickBand{
	{Below: 1_000, Tick: 1},
	{Below: 10_000, Tick: 10},
	{Below: 50_000, Tick: 50},
	{Below: 100_000, Tick: 100},
	{Below: 500_000, Tick: 500},
}

const TopTick int64 = 1_000

// TickSize returns the minimum price increment for px.
func TickSize(px int64) int64 {
	for _, b := range KRXTicks {
		if px < b.Below {
			return b.Tick
		}
	}
	return TopTick
}

func RoundDownToTick(px, tick int64) int64 {
	if tick <= 0 || px <= 0 {
		return px
	}
	return px - px%tick
}

// QuantizePrice rounds px down to the tick of its own price band.
func QuantizePrice(px int64) int64 {
	return RoundDownToTick(px, TickSize(px))
}

// ProfitRate is (current-buy)/buy × 100; 0 when buy <= 0.
func ProfitRate(buyPrice, currentPrice int64) float64 {
	if buyPrice <= 0 {
		return 0
	}
	buy := decimal.NewFromInt(buyPrice)
	return decimal.NewFromInt(currentPrice).Sub(buy).
		Div(buy).
		Mul(decimal.NewFromInt(100)).
		InexactFloat64()
}

// OrderQuantity is floor(budget / price); 0 when price <= 0.
func OrderQuantity(budget, price int64) int64 {
	if price <= 0 || budget <= 0 {
		return 0
	}
	return decimal.NewFromInt(budget).
		Div(decimal.NewFromInt(price)).
		Floor().
		IntPart()
}

// ScalePrice returns floor(px × ratio), used for signal prices such as 98% of close.
func ScalePrice(px int64, ratio float64) int64 {
	return decimal.NewFromInt(px).
		Mul(decimal.NewFromFloat(ratio)).
		Floor().
		IntPart()
}

// ParseClock parses "15:15" into today's time in loc.
func ParseClock(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, err
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

func SetOf(codes ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		out[c] = struct{}{}
	}
	return out
}
