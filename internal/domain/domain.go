package domain

import (
	"errors"
	"math"
	"time"
)

// TradeSignal is the three-class directional decision: 1 buy, -1 sell, 0 hold.
type TradeSignal int

const (
	SignalSell TradeSignal = -1
	SignalHold TradeSignal = 0
	SignalBuy  TradeSignal = 1
)

func (s TradeSignal) String() string {
	switch s {
	case SignalBuy:
		return "buy"
	case SignalSell:
		return "sell"
	default:
		return "hold"
	}
}

// Indicator column names. These double as the canonical feature names the
// classifier is trained on, in FeatureColumns order.
const (
	ColOpen       = "open"
	ColHigh       = "high"
	ColLow        = "low"
	ColClose      = "close"
	ColVolume     = "volume"
	ColRSI        = "rsi"
	ColMACD       = "macd"
	ColMACDSignal = "macd_signal"
	ColMACDHist   = "macd_hist"
	ColBBUpper    = "bb_upper"
	ColBBLower    = "bb_lower"
	ColBBMiddle   = "bb_middle"
	ColSMA20      = "sma_20"
	ColSMA50      = "sma_50"
	ColEMA12      = "ema_12"
	ColEMA26      = "ema_26"
	ColVolumeSMA  = "volume_sma"
	ColROC        = "roc"
	ColStoch      = "stoch"
)

// FeatureColumns is the canonical ordered feature set. Training and
// inference must both go through this order (filtered to the columns that
// actually computed) or the scaler silently misreads its input.
var FeatureColumns = []string{
	ColOpen, ColHigh, ColLow, ColClose, ColVolume,
	ColRSI, ColMACD, ColMACDSignal, ColMACDHist,
	ColBBUpper, ColBBLower, ColBBMiddle,
	ColSMA20, ColSMA50, ColEMA12, ColEMA26,
	ColVolumeSMA, ColROC, ColStoch,
}

// IndicatorRow is a bar with derived indicator columns. Columns that have
// not warmed up yet (or whose indicator failed to compute) hold NaN.
type IndicatorRow struct {
	Bar
	Columns map[string]float64
}

// LabeledRow carries the forward-looking label used for training. Rows whose
// future index falls off the end of the series have NaN FuturePrice and are
// excluded downstream.
type LabeledRow struct {
	IndicatorRow
	FuturePrice float64
	PriceChange float64
	Class       TradeSignal
}

// HasLabel reports whether the forward return was computable for this row.
func (r LabeledRow) HasLabel() bool { return !math.IsNaN(r.FuturePrice) }

// FusedSignal is the outcome of combining the rule-based sub-signals with
// the classifier prediction.
type FusedSignal struct {
	Final           TradeSignal        `json:"final_signal"`
	Confidence      float64            `json:"confidence"`
	TechnicalSignal float64            `json:"technical_signal"`
	MLSignal        TradeSignal        `json:"ml_signal"`
	CombinedSignal  float64            `json:"combined_signal"`
	Components      map[string]float64 `json:"components,omitempty"`
}

// ForecastPoint is one simulated day of the projected price path.
type ForecastPoint struct {
	Day            int     `json:"day"`
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
}

// ForecastResult is the full response of a prediction request.
type ForecastResult struct {
	Symbol           string             `json:"symbol"`
	CurrentPrice     float64            `json:"current_price"`
	Signal           TradeSignal        `json:"signal"`
	SignalConfidence float64            `json:"signal_confidence"`
	Predictions      []ForecastPoint    `json:"predictions"`
	Indicators       map[string]float64 `json:"technical_indicators"`
	Timestamp        time.Time          `json:"timestamp"`
}

// StoredForecast is one persisted prediction, kept so past calls can be
// reviewed against what the market actually did.
type StoredForecast struct {
	ID           int64       `json:"id"`
	Symbol       string      `json:"symbol"`
	Signal       TradeSignal `json:"signal"`
	Confidence   float64     `json:"confidence"`
	CurrentPrice float64     `json:"current_price"`
	FinalPrice   float64     `json:"final_price"`
	HorizonDays  int         `json:"horizon_days"`
	CreatedAt    time.Time   `json:"created_at"`
}

// IndicatorSnapshot is the latest indicator readout for a symbol.
type IndicatorSnapshot struct {
	Symbol       string             `json:"symbol"`
	CurrentPrice float64            `json:"current_price"`
	Volume       float64            `json:"volume"`
	Indicators   map[string]float64 `json:"indicators"`
	Timestamp    time.Time          `json:"timestamp"`
}

// TrainResult reports training diagnostics. Low accuracy is never an error;
// only missing data is.
type TrainResult struct {
	Symbol        string  `json:"symbol"`
	TrainAccuracy float64 `json:"train_accuracy"`
	TestAccuracy  float64 `json:"test_accuracy"`
	DataPoints    int     `json:"data_points"`
	AnomalyRate   float64 `json:"anomaly_rate"`
}

// Engine error taxonomy. Services wrap these with %w so the HTTP and bot
// layers can classify failures without string matching.
var (
	ErrDataUnavailable     = errors.New("market data unavailable")
	ErrInsufficientData    = errors.New("insufficient data for training")
	ErrNotTrained          = errors.New("model is not trained")
	ErrNoCompleteFeatures  = errors.New("no complete feature rows")
	ErrUnsupportedInterval = errors.New("unsupported interval")
	ErrUnsupportedPeriod   = errors.New("unsupported period")
)
