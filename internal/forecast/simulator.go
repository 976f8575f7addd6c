// Package forecast simulates short-horizon price trajectories. The walk is
// fully deterministic: the same symbol, date and signal always produce the
// same path, so repeated API calls on the same day agree with each other.
package forecast

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"stockcast/internal/domain"
)

const (
	buyDrift  = 0.008
	sellDrift = -0.008
	holdDrift = 0.001

	buyVol  = 0.015
	sellVol = 0.015
	holdVol = 0.012

	confidenceDecay = 0.03
	confidenceFloor = 0.45

	// MaxDays caps the simulation horizon enforced at the API boundary.
	MaxDays = 30
)

// Simulate projects a price path of n daily steps starting from price. The
// base confidence decays per day down to a floor. asOf anchors the
// deterministic seed; callers normally pass the current date.
func Simulate(symbol string, price float64, signal domain.TradeSignal, baseConfidence float64, days int, asOf time.Time) []domain.ForecastPoint {
	if days < 0 {
		days = 0
	}
	drift, vol := parameters(signal)
	date := asOf.UTC().Format("2006-01-02")
	symbol = strings.ToUpper(symbol)

	points := make([]domain.ForecastPoint, 0, days)
	for day := 1; day <= days; day++ {
		// Damped oscillation keeps consecutive days from drifting uniformly.
		// Only the trend is damped; noise keeps its full amplitude.
		dayFactor := math.Sin(float64(day)*0.1)*0.3 + 0.7

		dist := distuv.Normal{
			Mu:    drift * dayFactor,
			Sigma: vol,
			Src:   rand.NewSource(daySeed(symbol, date, day)),
		}
		price *= 1 + dist.Rand()

		confidence := baseConfidence * (1 - float64(day-1)*confidenceDecay)
		if confidence < confidenceFloor {
			confidence = confidenceFloor
		}

		points = append(points, domain.ForecastPoint{
			Day:            day,
			PredictedPrice: math.Round(price*100) / 100,
			Confidence:     math.Round(confidence*1000) / 1000,
		})
	}
	return points
}

func parameters(signal domain.TradeSignal) (drift, vol float64) {
	switch signal {
	case domain.SignalBuy:
		return buyDrift, buyVol
	case domain.SignalSell:
		return sellDrift, sellVol
	default:
		return holdDrift, holdVol
	}
}

// daySeed hashes "SYMBOL_DATE_DAY" with FNV-64a so every simulated day gets
// an independent but reproducible draw.
func daySeed(symbol, date string, day int) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s_%s_%d", symbol, date, day)
	return h.Sum64()
}
