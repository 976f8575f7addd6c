package features

import (
	"fmt"
	"math"
	"sort"

	"stockcast/internal/domain"
	"stockcast/internal/ta"
)

const (
	rsiPeriod       = 14
	macdFast        = 12
	macdSlow        = 26
	macdSignalSpan  = 9
	bbPeriod        = 20
	bbStdDevs       = 2.0
	smaFastPeriod   = 20
	smaSlowPeriod   = 50
	emaFastPeriod   = 12
	emaSlowPeriod   = 26
	volumeSMAPeriod = 20
	rocPeriod       = 12
	stochPeriod     = 14

	// Label thresholds are strict: a move of exactly 2% stays a hold.
	buyThreshold  = 0.02
	sellThreshold = -0.02
)

// ComputeIndicators derives the full indicator column set from a bar series.
// The output has the same length as the input; columns that have not warmed
// up hold NaN. A single indicator failing leaves its column entirely NaN and
// never takes down the rest of the pipeline. Only an empty series is fatal.
func ComputeIndicators(bars []domain.Bar) ([]domain.IndicatorRow, error) {
	normalized := normalizeBars(bars)
	if len(normalized) == 0 {
		return nil, fmt.Errorf("%w: empty bar series", domain.ErrDataUnavailable)
	}

	n := len(normalized)
	opens := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range normalized {
		opens[i] = b.Open
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	rsi := safeSeries(n, func() []float64 { return ta.RSISeries(closes, rsiPeriod) })
	macdLine := nanColumn(n)
	macdSignal := nanColumn(n)
	if m, s := safeSeriesPair(n, func() ([]float64, []float64) {
		return ta.MACDSeries(closes, macdFast, macdSlow, macdSignalSpan)
	}); m != nil && s != nil {
		macdLine, macdSignal = m, s
	}
	macdHist := nanColumn(n)
	for i := 0; i < n; i++ {
		macdHist[i] = macdLine[i] - macdSignal[i]
	}
	bbMiddle := nanColumn(n)
	bbUpper := nanColumn(n)
	bbLower := nanColumn(n)
	if m, u, l := safeSeriesTriple(n, func() ([]float64, []float64, []float64) {
		return ta.BollingerSeries(closes, bbPeriod, bbStdDevs)
	}); m != nil && u != nil && l != nil {
		bbMiddle, bbUpper, bbLower = m, u, l
	}
	sma20 := safeSeries(n, func() []float64 { return ta.SMASeries(closes, smaFastPeriod) })
	sma50 := safeSeries(n, func() []float64 { return ta.SMASeries(closes, smaSlowPeriod) })
	ema12 := safeSeries(n, func() []float64 { return ta.EMASeries(closes, emaFastPeriod) })
	ema26 := safeSeries(n, func() []float64 { return ta.EMASeries(closes, emaSlowPeriod) })
	volSMA := safeSeries(n, func() []float64 { return ta.SMASeries(volumes, volumeSMAPeriod) })
	roc := safeSeries(n, func() []float64 { return ta.ROCSeries(closes, rocPeriod) })
	stoch := safeSeries(n, func() []float64 { return ta.StochasticSeries(highs, lows, closes, stochPeriod) })

	rows := make([]domain.IndicatorRow, n)
	for i := 0; i < n; i++ {
		rows[i] = domain.IndicatorRow{
			Bar: normalized[i],
			Columns: map[string]float64{
				domain.ColOpen:       opens[i],
				domain.ColHigh:       highs[i],
				domain.ColLow:        lows[i],
				domain.ColClose:      closes[i],
				domain.ColVolume:     volumes[i],
				domain.ColRSI:        rsi[i],
				domain.ColMACD:       macdLine[i],
				domain.ColMACDSignal: macdSignal[i],
				domain.ColMACDHist:   macdHist[i],
				domain.ColBBUpper:    bbUpper[i],
				domain.ColBBLower:    bbLower[i],
				domain.ColBBMiddle:   bbMiddle[i],
				domain.ColSMA20:      sma20[i],
				domain.ColSMA50:      sma50[i],
				domain.ColEMA12:      ema12[i],
				domain.ColEMA26:      ema26[i],
				domain.ColVolumeSMA:  volSMA[i],
				domain.ColROC:        roc[i],
				domain.ColStoch:      stoch[i],
			},
		}
	}
	return rows, nil
}

// GenerateLabels attaches the forward return and three-class label to each
// row. Rows whose future index runs off the series keep a NaN future price
// so feature selection drops them.
func GenerateLabels(rows []domain.IndicatorRow, horizonDays int) []domain.LabeledRow {
	if horizonDays <= 0 {
		horizonDays = 1
	}
	out := make([]domain.LabeledRow, len(rows))
	for i := range rows {
		labeled := domain.LabeledRow{
			IndicatorRow: rows[i],
			FuturePrice:  math.NaN(),
			PriceChange:  math.NaN(),
			Class:        domain.SignalHold,
		}
		if i+horizonDays < len(rows) && rows[i].Close != 0 {
			labeled.FuturePrice = rows[i+horizonDays].Close
			labeled.PriceChange = (labeled.FuturePrice - rows[i].Close) / rows[i].Close
			labeled.Class = classify(labeled.PriceChange)
		}
		out[i] = labeled
	}
	return out
}

func classify(change float64) domain.TradeSignal {
	switch {
	case change > buyThreshold:
		return domain.SignalBuy
	case change < sellThreshold:
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}

// FeatureMatrix projects the rows onto the requested columns, keeping only
// columns that computed at all and only rows where every kept column is
// defined. The returned column order is what the scaler and classifier are
// fitted on; inference must reuse it verbatim.
func FeatureMatrix(rows []domain.IndicatorRow, names []string) (matrix [][]float64, used []string, kept []int) {
	used = presentColumns(rows, names)
	if len(used) == 0 {
		return nil, nil, nil
	}
	for i := range rows {
		vector, ok := FeatureVector(rows[i], used)
		if !ok {
			continue
		}
		matrix = append(matrix, vector)
		kept = append(kept, i)
	}
	return matrix, used, kept
}

// FeatureVector extracts one row's values in column order. The second
// return is false when any value is missing or not finite.
func FeatureVector(row domain.IndicatorRow, names []string) ([]float64, bool) {
	vector := make([]float64, len(names))
	for j, name := range names {
		v, ok := row.Columns[name]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		vector[j] = v
	}
	return vector, true
}

func presentColumns(rows []domain.IndicatorRow, names []string) []string {
	present := make([]string, 0, len(names))
	for _, name := range names {
		for i := range rows {
			if v, ok := rows[i].Columns[name]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				present = append(present, name)
				break
			}
		}
	}
	return present
}

func normalizeBars(bars []domain.Bar) []domain.Bar {
	out := make([]domain.Bar, 0, len(bars))
	out = append(out, bars...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	// Drop duplicate timestamps, keeping the later entry.
	deduped := out[:0]
	for i := range out {
		if i+1 < len(out) && out[i].Timestamp.Equal(out[i+1].Timestamp) {
			continue
		}
		deduped = append(deduped, out[i])
	}
	return deduped
}

func safeSeries(n int, compute func() []float64) (out []float64) {
	defer func() {
		if recover() != nil {
			out = nanColumn(n)
		}
	}()
	out = compute()
	if len(out) != n {
		out = nanColumn(n)
	}
	return out
}

func safeSeriesPair(n int, compute func() ([]float64, []float64)) (a, b []float64) {
	defer func() {
		if recover() != nil {
			a, b = nil, nil
		}
	}()
	a, b = compute()
	if len(a) != n || len(b) != n {
		return nil, nil
	}
	return a, b
}

func safeSeriesTriple(n int, compute func() ([]float64, []float64, []float64)) (a, b, c []float64) {
	defer func() {
		if recover() != nil {
			a, b, c = nil, nil, nil
		}
	}()
	a, b, c = compute()
	if len(a) != n || len(b) != n || len(c) != n {
		return nil, nil, nil
	}
	return a, b, c
}

func nanColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
