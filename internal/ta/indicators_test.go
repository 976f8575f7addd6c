package ta

import (
	"math"
	"testing"
)

func TestSMASeries(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3, 4, 5}
	out := SMASeries(values, 3)
	if len(out) != len(values) {
		t.Fatalf("expected %d values, got %d", len(values), len(out))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("expected NaN at warm-up index %d, got %f", i, out[i])
		}
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if math.Abs(out[i+2]-w) > 1e-12 {
			t.Errorf("sma[%d] = %f, want %f", i+2, out[i+2], w)
		}
	}
}

func TestSMASeriesShorterThanWindow(t *testing.T) {
	t.Parallel()

	out := SMASeries([]float64{1, 2}, 5)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Errorf("expected all NaN for short input, index %d = %f", i, v)
		}
	}
}

func TestRSISeriesBounds(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i))*5
	}
	out := RSISeries(closes, 14)
	for i := 0; i < 14; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("expected NaN before warm-up at %d", i)
		}
	}
	for i := 14; i < len(out); i++ {
		if out[i] < 0 || out[i] > 100 {
			t.Errorf("rsi[%d] = %f out of [0,100]", i, out[i])
		}
	}
}

func TestRSISeriesAllGains(t *testing.T) {
	t.Parallel()

	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	out := RSISeries(closes, 14)
	if out[15] != 100 {
		t.Fatalf("monotone rising series should have RSI 100, got %f", out[15])
	}
}

func TestRSISeriesTooShort(t *testing.T) {
	t.Parallel()

	if out := RSISeries([]float64{1, 2, 3}, 14); out != nil {
		t.Fatalf("expected nil for series shorter than period, got %v", out)
	}
}

func TestMACDSeriesConstantInput(t *testing.T) {
	t.Parallel()

	values := make([]float64, 40)
	for i := range values {
		values[i] = 50
	}
	macd, signal := MACDSeries(values, 12, 26, 9)
	for i := range values {
		if macd[i] != 0 || signal[i] != 0 {
			t.Fatalf("constant input should give zero MACD, got macd=%f signal=%f at %d", macd[i], signal[i], i)
		}
	}
}

func TestBollingerSeriesWarmup(t *testing.T) {
	t.Parallel()

	values := make([]float64, 25)
	for i := range values {
		values[i] = float64(i)
	}
	middle, upper, lower := BollingerSeries(values, 20, 2)
	for i := 0; i < 19; i++ {
		if !math.IsNaN(middle[i]) || !math.IsNaN(upper[i]) || !math.IsNaN(lower[i]) {
			t.Fatalf("expected NaN bands at warm-up index %d", i)
		}
	}
	for i := 19; i < len(values); i++ {
		if !(lower[i] < middle[i] && middle[i] < upper[i]) {
			t.Fatalf("band ordering violated at %d: %f %f %f", i, lower[i], middle[i], upper[i])
		}
	}
}

func TestROCSeries(t *testing.T) {
	t.Parallel()

	values := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 100, 110}
	out := ROCSeries(values, 12)
	for i := 0; i < 12; i++ {
		if !math.IsNaN(out[i]) {
			t.Errorf("expected NaN at %d", i)
		}
	}
	if math.Abs(out[12]-10) > 1e-9 {
		t.Fatalf("roc[12] = %f, want 10", out[12])
	}
}

func TestStochasticSeries(t *testing.T) {
	t.Parallel()

	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range highs {
		highs[i] = 110
		lows[i] = 90
		closes[i] = 100
	}
	closes[n-1] = 110
	out := StochasticSeries(highs, lows, closes, 14)
	if !math.IsNaN(out[0]) {
		t.Error("expected NaN during warm-up")
	}
	if math.Abs(out[n-1]-100) > 1e-9 {
		t.Fatalf("close at range high should give %%K=100, got %f", out[n-1])
	}
	if math.Abs(out[n-2]-50) > 1e-9 {
		t.Fatalf("mid-range close should give %%K=50, got %f", out[n-2])
	}
}

func TestStochasticSeriesFlatRange(t *testing.T) {
	t.Parallel()

	n := 16
	flat := make([]float64, n)
	for i := range flat {
		flat[i] = 42
	}
	out := StochasticSeries(flat, flat, flat, 14)
	if out[n-1] != 50 {
		t.Fatalf("flat range should yield neutral 50, got %f", out[n-1])
	}
}

func TestMeanStd(t *testing.T) {
	t.Parallel()

	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Fatalf("mean = %f, want 5", mean)
	}
	if math.Abs(std-2) > 1e-12 {
		t.Fatalf("std = %f, want 2", std)
	}
}
