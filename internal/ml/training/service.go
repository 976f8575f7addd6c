package training

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/narumiruna/go-iforest/pkg/iforest"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockcast/internal/domain"
	"stockcast/internal/ml/features"
	"stockcast/internal/ml/models/forest"
)

const (
	splitSeed        = 42
	testFraction     = 0.2
	anomalyThreshold = 0.6
)

// BarSource fetches historical bars for a symbol. The provider and the warm
// store both satisfy it.
type BarSource interface {
	FetchBars(ctx context.Context, symbol, period, interval string) ([]domain.Bar, error)
}

type Config struct {
	TrainPeriod string
	Interval    string
	HorizonDays int
	MinRows     int
}

func DefaultConfig() Config {
	return Config{
		TrainPeriod: "2y",
		Interval:    "1d",
		HorizonDays: 1,
		MinRows:     50,
	}
}

// Service turns a symbol's bar history into a fitted classifier.
type Service struct {
	tracer trace.Tracer
	bars   BarSource
	cfg    Config
	opts   forest.TrainOptions
}

func NewService(tracer trace.Tracer, bars BarSource, cfg Config) *Service {
	if cfg.TrainPeriod == "" {
		cfg.TrainPeriod = DefaultConfig().TrainPeriod
	}
	if cfg.Interval == "" {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultConfig().HorizonDays
	}
	if cfg.MinRows <= 0 {
		cfg.MinRows = DefaultConfig().MinRows
	}
	return &Service{
		tracer: tracer,
		bars:   bars,
		cfg:    cfg,
		opts:   forest.DefaultTrainOptions(),
	}
}

// Model is a fitted classifier plus the scaler and column order it was
// fitted with. It is immutable once returned; callers serialize retraining.
type Model struct {
	symbol       string
	featureNames []string
	scaler       *Scaler
	forest       *forest.Model
	trainedAt    time.Time
}

func (m *Model) Symbol() string { return m.symbol }

func (m *Model) TrainedAt() time.Time {
	if m == nil {
		return time.Time{}
	}
	return m.trainedAt
}

func (m *Model) FeatureNames() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

// PredictRow classifies a single indicator row using the exact column order
// the model was fitted on.
func (m *Model) PredictRow(row domain.IndicatorRow) (domain.TradeSignal, []float64, error) {
	if m == nil || m.forest == nil {
		return domain.SignalHold, nil, domain.ErrNotTrained
	}
	vector, ok := features.FeatureVector(row, m.featureNames)
	if !ok {
		return domain.SignalHold, nil, fmt.Errorf("%w: row is missing %d feature columns", domain.ErrNoCompleteFeatures, len(m.featureNames))
	}
	class, probs := m.forest.Predict(m.scaler.Transform(vector))
	return classToSignal(class), probs, nil
}

// Train fetches history, engineers features and fits a fresh model. Low
// accuracy is reported, never treated as failure; only missing or too-thin
// data errors out.
func (s *Service) Train(ctx context.Context, symbol string) (*Model, domain.TrainResult, error) {
	ctx, span := s.tracer.Start(ctx, "training.train-model")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	result := domain.TrainResult{Symbol: symbol}

	bars, err := s.bars.FetchBars(ctx, symbol, s.cfg.TrainPeriod, s.cfg.Interval)
	if err != nil {
		return nil, result, fmt.Errorf("%w: fetch %s history: %v", domain.ErrDataUnavailable, symbol, err)
	}
	rows, err := features.ComputeIndicators(bars)
	if err != nil {
		return nil, result, err
	}
	labeled := features.GenerateLabels(rows, s.cfg.HorizonDays)

	matrix, used, kept := features.FeatureMatrix(rows, domain.FeatureColumns)
	samples := make([][]float64, 0, len(kept))
	labels := make([]int, 0, len(kept))
	for i, rowIdx := range kept {
		// The forward return is undefined for the last horizon rows.
		if !labeled[rowIdx].HasLabel() {
			continue
		}
		samples = append(samples, matrix[i])
		labels = append(labels, signalToClass(labeled[rowIdx].Class))
	}
	if len(samples) < s.cfg.MinRows {
		return nil, result, fmt.Errorf("%w: %s has %d usable rows, need %d",
			domain.ErrInsufficientData, symbol, len(samples), s.cfg.MinRows)
	}
	result.DataPoints = len(samples)

	trainIdx, testIdx := stratifiedSplit(labels, testFraction, splitSeed)

	trainX := pick(samples, trainIdx)
	trainY := pickInts(labels, trainIdx)
	scaler := FitScaler(trainX)
	trainX = scaler.TransformMatrix(trainX)

	balancedX, balancedY := oversampleBalanced(trainX, trainY, splitSeed)

	model, err := forest.Train(balancedX, balancedY, used, s.opts)
	if err != nil {
		return nil, result, fmt.Errorf("fit classifier for %s: %w", symbol, err)
	}

	result.TrainAccuracy = accuracy(model, trainX, trainY)
	result.TestAccuracy = accuracy(model, scaler.TransformMatrix(pick(samples, testIdx)), pickInts(labels, testIdx))
	result.AnomalyRate = anomalyRate(scaler.TransformMatrix(samples))

	log.Printf("trained %s: %d rows, train acc %.3f, test acc %.3f, anomaly rate %.3f",
		symbol, result.DataPoints, result.TrainAccuracy, result.TestAccuracy, result.AnomalyRate)

	return &Model{
		symbol:       symbol,
		featureNames: used,
		scaler:       scaler,
		forest:       model,
		trainedAt:    time.Now().UTC(),
	}, result, nil
}

// stratifiedSplit shuffles each class independently with a fixed seed and
// carves off the test fraction per class, so class proportions survive the
// split and reruns produce identical partitions.
func stratifiedSplit(labels []int, fraction float64, seed int64) (train, test []int) {
	byClass := make(map[int][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}
	rng := rand.New(rand.NewSource(seed))
	for class := 0; class < forest.NumClasses; class++ {
		idx := byClass[class]
		if len(idx) == 0 {
			continue
		}
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		cut := int(float64(len(idx)) * fraction)
		if cut == 0 && len(idx) > 1 {
			cut = 1
		}
		test = append(test, idx[:cut]...)
		train = append(train, idx[cut:]...)
	}
	return train, test
}

// oversampleBalanced duplicates minority-class rows (seeded) until every
// class present matches the majority count. The classifier has no class
// weight knob, so balance is restored in the data instead.
func oversampleBalanced(x [][]float64, y []int, seed int64) ([][]float64, []int) {
	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	max := 0
	for _, idx := range byClass {
		if len(idx) > max {
			max = len(idx)
		}
	}
	outX := append([][]float64(nil), x...)
	outY := append([]int(nil), y...)
	rng := rand.New(rand.NewSource(seed))
	for class := 0; class < forest.NumClasses; class++ {
		idx := byClass[class]
		if len(idx) == 0 {
			continue
		}
		for len(idx) < max {
			pickIdx := byClass[class][rng.Intn(len(byClass[class]))]
			outX = append(outX, x[pickIdx])
			outY = append(outY, y[pickIdx])
			idx = append(idx, pickIdx)
		}
	}
	return outX, outY
}

func accuracy(m *forest.Model, x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i := range x {
		class, _ := m.Predict(x[i])
		if class == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}

// anomalyRate scores the scaled feature matrix with an isolation forest and
// reports the fraction of rows above the anomaly threshold. Purely a data
// quality diagnostic.
func anomalyRate(x [][]float64) (rate float64) {
	defer func() {
		if recover() != nil {
			rate = 0
		}
	}()
	if len(x) == 0 {
		return 0
	}
	f := iforest.New()
	f.Fit(x)
	scores := f.Score(x)
	anomalies := 0
	for _, s := range scores {
		if s > anomalyThreshold {
			anomalies++
		}
	}
	return float64(anomalies) / float64(len(scores))
}

func signalToClass(s domain.TradeSignal) int { return int(s) + 1 }

func classToSignal(class int) domain.TradeSignal { return domain.TradeSignal(class - 1) }

func pick(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, 0, len(idx))
	for _, i := range idx {
		out = append(out, x[i])
	}
	return out
}

func pickInts(y []int, idx []int) []int {
	out := make([]int, 0, len(idx))
	for _, i := range idx {
		out = append(out, y[i])
	}
	return out
}
