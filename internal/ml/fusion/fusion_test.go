package fusion

import (
	"math"
	"testing"

	"stockcast/internal/domain"
)

func TestFuseAllBullishComponents(t *testing.T) {
	t.Parallel()

	columns := map[string]float64{
		domain.ColRSI:        25,
		domain.ColMACD:       1.0,
		domain.ColMACDSignal: 0.5,
		domain.ColSMA20:      100,
		domain.ColSMA50:      95,
		domain.ColBBUpper:    112,
		domain.ColBBLower:    105,
	}
	got := Fuse(105, columns, domain.SignalBuy, []float64{0.05, 0.05, 0.9})

	if got.TechnicalSignal != 1.0 {
		t.Fatalf("technical = %f, want 1.0 (components %v)", got.TechnicalSignal, got.Components)
	}
	if got.CombinedSignal != 1.0 {
		t.Fatalf("combined = %f, want 1.0", got.CombinedSignal)
	}
	if got.Final != domain.SignalBuy {
		t.Fatalf("final = %v, want buy", got.Final)
	}
	if math.Abs(got.Confidence-0.95) > 1e-9 {
		t.Fatalf("confidence = %f, want 0.95", got.Confidence)
	}
}

func TestFuseDisagreementHalvesAgreementTerm(t *testing.T) {
	t.Parallel()

	// Strongly bearish technicals against a buy classifier.
	columns := map[string]float64{
		domain.ColRSI:        80,
		domain.ColMACD:       -1.0,
		domain.ColMACDSignal: -0.5,
		domain.ColSMA20:      110,
		domain.ColSMA50:      115,
		domain.ColBBUpper:    105,
		domain.ColBBLower:    95,
	}
	got := Fuse(106, columns, domain.SignalBuy, []float64{0.1, 0.1, 0.8})

	if got.TechnicalSignal != -1.0 {
		t.Fatalf("technical = %f, want -1.0 (components %v)", got.TechnicalSignal, got.Components)
	}
	// combined = 0.6*(-1) + 0.4*1 = -0.2 -> hold
	if got.Final != domain.SignalHold {
		t.Fatalf("final = %v, want hold", got.Final)
	}
	want := 0.5*0.8 + 0.3*1.0 + 0.2*0.5
	if math.Abs(got.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %f, want %f", got.Confidence, want)
	}
}

func TestFuseNeutralDefaultsWhenIndicatorsMissing(t *testing.T) {
	t.Parallel()

	got := Fuse(100, map[string]float64{}, domain.SignalHold, []float64{0.2, 0.6, 0.2})

	if got.TechnicalSignal != 0 {
		t.Fatalf("missing indicators should give neutral technical, got %f", got.TechnicalSignal)
	}
	if got.Final != domain.SignalHold {
		t.Fatalf("final = %v, want hold", got.Final)
	}
	for name, score := range got.Components {
		if score != 0 {
			t.Fatalf("component %s = %f, want 0", name, score)
		}
	}
}

func TestFuseNaNColumnsFallBackToDefaults(t *testing.T) {
	t.Parallel()

	columns := map[string]float64{
		domain.ColRSI:        math.NaN(),
		domain.ColMACD:       math.NaN(),
		domain.ColMACDSignal: math.NaN(),
		domain.ColSMA20:      math.NaN(),
		domain.ColSMA50:      math.NaN(),
		domain.ColBBUpper:    math.NaN(),
		domain.ColBBLower:    math.NaN(),
	}
	got := Fuse(100, columns, domain.SignalSell, []float64{0.7, 0.2, 0.1})
	if got.TechnicalSignal != 0 {
		t.Fatalf("NaN indicators should behave like missing ones, got %f", got.TechnicalSignal)
	}
	if math.IsNaN(got.Confidence) {
		t.Fatal("confidence must stay finite with NaN inputs")
	}
}

func TestFuseInvalidPriceDegradesToClassifier(t *testing.T) {
	t.Parallel()

	for _, price := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		got := Fuse(price, map[string]float64{domain.ColRSI: 20}, domain.SignalSell, []float64{0.75, 0.15, 0.1})
		if got.Final != domain.SignalSell {
			t.Fatalf("price %f: final = %v, want classifier sell", price, got.Final)
		}
		if got.Confidence != 0.75 {
			t.Fatalf("price %f: confidence = %f, want raw max probability", price, got.Confidence)
		}
		if len(got.Components) != 0 {
			t.Fatalf("price %f: degraded signal should have no component breakdown", price)
		}
	}
}

func TestFuseDecisionBandBoundaries(t *testing.T) {
	t.Parallel()

	// Technical 0.5 (two bullish components), ml buy: combined = 0.3 + 0.4 = 0.7.
	columns := map[string]float64{
		domain.ColRSI:        25,
		domain.ColMACD:       1.0,
		domain.ColMACDSignal: 0.5,
	}
	if got := Fuse(100, columns, domain.SignalBuy, []float64{0, 0, 1}); got.Final != domain.SignalBuy {
		t.Fatalf("combined 0.7 should be buy, got %v", got.Final)
	}
	// Same technicals but hold classifier: combined = 0.3 -> hold.
	if got := Fuse(100, columns, domain.SignalHold, []float64{0, 1, 0}); got.Final != domain.SignalHold {
		t.Fatalf("combined 0.3 should be hold, got %v", got.Final)
	}
}
