package features

import (
	"math"
	"testing"
	"time"

	"stockcast/internal/domain"
)

func makeBars(n int, start float64) []domain.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, n)
	price := start
	for i := range bars {
		price *= 1 + 0.002*math.Sin(float64(i)*0.7)
		bars[i] = domain.Bar{
			Symbol:    "TEST",
			Timestamp: base.AddDate(0, 0, i),
			Open:      price * 0.999,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price,
			Volume:    1000 + float64(i),
		}
	}
	return bars
}

func TestComputeIndicatorsEmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := ComputeIndicators(nil); err == nil {
		t.Fatal("expected error for empty bar series")
	}
}

func TestComputeIndicatorsWarmup(t *testing.T) {
	t.Parallel()

	rows, err := ComputeIndicators(makeBars(60, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 60 {
		t.Fatalf("expected 60 rows, got %d", len(rows))
	}
	// SMA_50 undefined for the first 49 rows, defined from row 49 on.
	for i := 0; i < 49; i++ {
		if !math.IsNaN(rows[i].Columns[domain.ColSMA50]) {
			t.Fatalf("sma_50 should be NaN at row %d", i)
		}
	}
	if math.IsNaN(rows[49].Columns[domain.ColSMA50]) {
		t.Fatal("sma_50 should be defined at row 49")
	}
	// RSI undefined through row 13.
	if !math.IsNaN(rows[13].Columns[domain.ColRSI]) {
		t.Fatal("rsi should be NaN at row 13")
	}
	if math.IsNaN(rows[14].Columns[domain.ColRSI]) {
		t.Fatal("rsi should be defined at row 14")
	}
}

func TestComputeIndicatorsShortSeriesNeverPanics(t *testing.T) {
	t.Parallel()

	rows, err := ComputeIndicators(makeBars(5, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range rows {
		if !math.IsNaN(rows[i].Columns[domain.ColRSI]) {
			t.Fatalf("rsi should be entirely NaN for a 5-bar series, row %d", i)
		}
		if !math.IsNaN(rows[i].Columns[domain.ColSMA20]) {
			t.Fatalf("sma_20 should be entirely NaN for a 5-bar series, row %d", i)
		}
		if rows[i].Columns[domain.ColClose] != rows[i].Close {
			t.Fatal("close column should mirror the bar close")
		}
	}
}

func TestComputeIndicatorsSortsAndDedupes(t *testing.T) {
	t.Parallel()

	bars := makeBars(10, 100)
	shuffled := []domain.Bar{bars[3], bars[0], bars[3], bars[2], bars[1]}
	rows, err := ComputeIndicators(shuffled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 deduped rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Timestamp.Before(rows[i].Timestamp) {
			t.Fatal("rows are not strictly increasing in time")
		}
	}
}

func TestGenerateLabelsThresholdsAreStrict(t *testing.T) {
	t.Parallel()

	mk := func(closes ...float64) []domain.IndicatorRow {
		rows := make([]domain.IndicatorRow, len(closes))
		base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		for i, c := range closes {
			rows[i] = domain.IndicatorRow{Bar: domain.Bar{Timestamp: base.AddDate(0, 0, i), Close: c}}
		}
		return rows
	}

	cases := []struct {
		name  string
		now   float64
		next  float64
		class domain.TradeSignal
	}{
		{"exactly +2% is hold", 100, 102, domain.SignalHold},
		{"above +2% is buy", 100, 102.01, domain.SignalBuy},
		{"exactly -2% is hold", 100, 98, domain.SignalHold},
		{"below -2% is sell", 100, 97.99, domain.SignalSell},
		{"flat is hold", 100, 100, domain.SignalHold},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			labeled := GenerateLabels(mk(tc.now, tc.next), 1)
			if labeled[0].Class != tc.class {
				t.Fatalf("change %f -> %f: class = %d, want %d", tc.now, tc.next, labeled[0].Class, tc.class)
			}
		})
	}
}

func TestGenerateLabelsTailRowsUndefined(t *testing.T) {
	t.Parallel()

	rows, err := ComputeIndicators(makeBars(10, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	labeled := GenerateLabels(rows, 3)
	for i := 7; i < 10; i++ {
		if !math.IsNaN(labeled[i].FuturePrice) {
			t.Fatalf("row %d has no future bar, future price should be NaN", i)
		}
	}
	if math.IsNaN(labeled[6].FuturePrice) {
		t.Fatal("row 6 should have a defined future price")
	}
}

func TestFeatureMatrixDropsIncompleteRows(t *testing.T) {
	t.Parallel()

	rows, err := ComputeIndicators(makeBars(80, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	matrix, used, kept := FeatureMatrix(rows, domain.FeatureColumns)
	if len(used) != len(domain.FeatureColumns) {
		t.Fatalf("all canonical columns should be present, got %d", len(used))
	}
	// Slowest indicator is SMA_50: first complete row is index 49.
	if len(kept) == 0 || kept[0] != 49 {
		t.Fatalf("first complete row should be 49, kept=%v", kept[:min(3, len(kept))])
	}
	for _, vector := range matrix {
		for j, v := range vector {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("matrix contains undefined value in column %s", used[j])
			}
		}
	}
}

func TestFeatureMatrixShrinksWithFailedColumn(t *testing.T) {
	t.Parallel()

	rows, err := ComputeIndicators(makeBars(80, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Simulate an indicator that failed wholesale.
	for i := range rows {
		rows[i].Columns[domain.ColStoch] = math.NaN()
	}
	_, used, kept := FeatureMatrix(rows, domain.FeatureColumns)
	if len(used) != len(domain.FeatureColumns)-1 {
		t.Fatalf("expected stoch to be excluded, used=%v", used)
	}
	for _, name := range used {
		if name == domain.ColStoch {
			t.Fatal("stoch should not be retained")
		}
	}
	if len(kept) == 0 {
		t.Fatal("rows should survive without the failed column")
	}
}

func TestFeatureVectorOrderMatchesNames(t *testing.T) {
	t.Parallel()

	row := domain.IndicatorRow{Columns: map[string]float64{"a": 1, "b": 2, "c": 3}}
	vector, ok := FeatureVector(row, []string{"c", "a"})
	if !ok {
		t.Fatal("expected complete vector")
	}
	if vector[0] != 3 || vector[1] != 1 {
		t.Fatalf("vector order does not follow names: %v", vector)
	}
	if _, ok := FeatureVector(row, []string{"a", "missing"}); ok {
		t.Fatal("missing column should fail vector extraction")
	}
}
