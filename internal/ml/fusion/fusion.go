// Package fusion blends the rule-based technical read of a symbol with the
// classifier's prediction into one actionable signal.
package fusion

import (
	"math"

	"stockcast/internal/domain"
)

const (
	technicalWeight = 0.6
	mlWeight        = 0.4
	decisionBand    = 0.5

	probWeight      = 0.5
	technicalConfW  = 0.3
	agreementWeight = 0.2

	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// Fuse combines four technical sub-scores with the classifier output.
// Indicator columns that never computed fall back to neutral defaults, so a
// cold indicator pipeline degrades the signal toward hold instead of failing.
// A non-finite or non-positive price invalidates the technical read entirely
// and the classifier's class is passed through with its own probability as
// confidence.
func Fuse(price float64, columns map[string]float64, ml domain.TradeSignal, probs []float64) domain.FusedSignal {
	maxProb := maxProbability(probs)

	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return domain.FusedSignal{
			Final:      ml,
			Confidence: round3(maxProb),
			MLSignal:   ml,
		}
	}

	rsi := columnOr(columns, domain.ColRSI, 50)
	macd := columnOr(columns, domain.ColMACD, 0)
	macdSignal := columnOr(columns, domain.ColMACDSignal, 0)
	sma20 := columnOr(columns, domain.ColSMA20, price)
	sma50 := columnOr(columns, domain.ColSMA50, price)
	bbUpper := columnOr(columns, domain.ColBBUpper, price*1.02)
	bbLower := columnOr(columns, domain.ColBBLower, price*0.98)

	components := map[string]float64{
		"rsi":       rsiScore(rsi),
		"macd":      macdScore(macd, macdSignal),
		"trend":     trendScore(price, sma20, sma50),
		"bollinger": bollingerScore(price, bbUpper, bbLower),
	}

	var technical float64
	for _, score := range components {
		technical += score
	}
	technical /= float64(len(components))

	combined := technicalWeight*technical + mlWeight*float64(ml)

	final := domain.SignalHold
	switch {
	case combined >= decisionBand:
		final = domain.SignalBuy
	case combined <= -decisionBand:
		final = domain.SignalSell
	}

	agreement := 0.5
	if technical*float64(ml) >= 0 {
		agreement = 1.0
	}
	confidence := probWeight*maxProb + technicalConfW*math.Abs(technical) + agreementWeight*agreement

	return domain.FusedSignal{
		Final:           final,
		Confidence:      round3(confidence),
		TechnicalSignal: technical,
		MLSignal:        ml,
		CombinedSignal:  combined,
		Components:      components,
	}
}

func rsiScore(rsi float64) float64 {
	switch {
	case rsi < rsiOversold:
		return 1
	case rsi > rsiOverbought:
		return -1
	default:
		return 0
	}
}

func macdScore(macd, signal float64) float64 {
	switch {
	case macd > signal && macd > 0:
		return 1
	case macd < signal && macd < 0:
		return -1
	default:
		return 0
	}
}

func trendScore(price, sma20, sma50 float64) float64 {
	switch {
	case price > sma20 && sma20 > sma50:
		return 1
	case price < sma20 && sma20 < sma50:
		return -1
	default:
		return 0
	}
}

func bollingerScore(price, upper, lower float64) float64 {
	switch {
	case price <= lower:
		return 1
	case price >= upper:
		return -1
	default:
		return 0
	}
}

func columnOr(columns map[string]float64, name string, fallback float64) float64 {
	if v, ok := columns[name]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v
	}
	return fallback
}

func maxProbability(probs []float64) float64 {
	var max float64
	for _, p := range probs {
		if !math.IsNaN(p) && p > max {
			max = p
		}
	}
	return max
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
