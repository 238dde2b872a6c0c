package service

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const rsiEpsilon = 1e-10

// BollingerBands over the last period closes with population σ.
func BollingerBands(closes []float64, period int, k float64) (upper, middle, lower float64, ok bool) {
	if period <= 0 || len(closes) < period {
		return 0, 0, 0, false
	}
	window := closes[len(closes)-period:]
	mean, std := stat.PopMeanStdDev(window, nil)
	if !finite(mean) || !finite(std) {
		return 0, 0, 0, false
	}
	return mean + k*std, mean, mean - k*std, true
}

// RSI of the window ending at the last close, simple rolling means over period deltas.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	window := closes[len(closes)-period-1:]
	gains := make([]float64, period)
	losses := make([]float64, period)
	for i := 1; i < len(window); i++ {
		d := window[i] - window[i-1]
		if d > 0 {
			gains[i-1] = d
		} else {
			losses[i-1] = -d
		}
	}
	avgGain := floats.Sum(gains) / float64(period)
	avgLoss := floats.Sum(losses) / float64(period)
	if avgLoss == 0 {
		avgLoss = rsiEpsilon
	}
	rsi := 100 - 100/(1+avgGain/avgLoss)
	if !finite(rsi) {
		return 0, false
	}
	return rsi, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
