package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"stockcast/internal/domain"
	"stockcast/internal/forecast"
	"stockcast/internal/ml/features"
	"stockcast/internal/ml/fusion"
	"stockcast/internal/ml/training"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const indicatorCacheTTL = 90 * time.Second

// BarProvider fetches OHLCV history from the market data source.
type BarProvider interface {
	FetchBars(ctx context.Context, symbol, period, interval string) ([]domain.Bar, error)
}

// Predictor classifies a single indicator row. A fitted training.Model
// satisfies it.
type Predictor interface {
	PredictRow(row domain.IndicatorRow) (domain.TradeSignal, []float64, error)
}

// Trainer fits a classifier for one symbol.
type Trainer interface {
	Train(ctx context.Context, symbol string) (Predictor, domain.TrainResult, error)
}

// TrainerAdapter lifts the concrete training service into the Trainer
// interface.
type TrainerAdapter struct {
	Service *training.Service
}

func (a TrainerAdapter) Train(ctx context.Context, symbol string) (Predictor, domain.TrainResult, error) {
	model, result, err := a.Service.Train(ctx, symbol)
	if err != nil {
		return nil, result, err
	}
	return model, result, nil
}

// BarStore is the optional Postgres warm store.
type BarStore interface {
	UpsertBars(ctx context.Context, interval string, bars []domain.Bar) error
	GetRecentBars(ctx context.Context, symbol, interval string, limit int) ([]domain.Bar, error)
}

// ForecastStore is the optional audit trail of emitted predictions.
type ForecastStore interface {
	SaveForecast(ctx context.Context, result *domain.ForecastResult) error
	RecentForecasts(ctx context.Context, symbol string, limit int) ([]domain.StoredForecast, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

type ForecastConfig struct {
	RecentPeriod string
	Interval     string
	ModelTTL     time.Duration
}

func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		RecentPeriod: "6mo",
		Interval:     "1d",
		ModelTTL:     24 * time.Hour,
	}
}

// ForecastService orchestrates data fetching, training, signal fusion and
// trajectory simulation. Models are trained lazily on the first prediction
// for a symbol and retrained when their TTL lapses.
type ForecastService struct {
	tracer    trace.Tracer
	provider  BarProvider
	trainer   Trainer
	store     BarStore
	forecasts ForecastStore
	redis     RedisClient
	cache     *modelCache
	cfg       ForecastConfig

	now func() time.Time
}

func NewForecastService(
	tracer trace.Tracer,
	provider BarProvider,
	trainer Trainer,
	store BarStore,
	forecasts ForecastStore,
	redisClient RedisClient,
	cfg ForecastConfig,
) *ForecastService {
	if cfg.RecentPeriod == "" {
		cfg.RecentPeriod = DefaultForecastConfig().RecentPeriod
	}
	if cfg.Interval == "" {
		cfg.Interval = DefaultForecastConfig().Interval
	}
	return &ForecastService{
		tracer:    tracer,
		provider:  provider,
		trainer:   trainer,
		store:     store,
		forecasts: forecasts,
		redis:     redisClient,
		cache:     newModelCache(cfg.ModelTTL),
		cfg:       cfg,
		now:       time.Now,
	}
}

// TrainModel forces a fresh fit for the symbol and caches the result.
func (s *ForecastService) TrainModel(ctx context.Context, symbol string) (domain.TrainResult, error) {
	ctx, span := s.tracer.Start(ctx, "forecast-service.train-model")
	defer span.End()

	symbol = normalizeSymbol(symbol)
	entry := s.cache.entry(symbol)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	model, result, err := s.trainer.Train(ctx, symbol)
	if err != nil {
		return result, err
	}
	entry.store(model, result, s.now(), s.cache.ttl)
	return result, nil
}

// model returns the cached model for the symbol, training one if the slot
// is empty or expired. The per-symbol lock makes concurrent first calls
// train exactly once.
func (s *ForecastService) model(ctx context.Context, symbol string) (Predictor, error) {
	entry := s.cache.entry(symbol)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.fresh(s.now(), s.cache.ttl) {
		return entry.model, nil
	}

	model, result, err := s.trainer.Train(ctx, symbol)
	if err != nil {
		// A stale model beats no model when retraining fails.
		if entry.model != nil {
			log.Printf("retrain failed for %s, serving stale model: %v", symbol, err)
			return entry.model, nil
		}
		return nil, err
	}
	entry.store(model, result, s.now(), s.cache.ttl)
	return model, nil
}

// Predict produces a fused signal and a deterministic n-day price path for
// the symbol. Training happens implicitly on the first call; a training
// failure surfaces as the prediction error.
func (s *ForecastService) Predict(ctx context.Context, symbol string, days int) (*domain.ForecastResult, error) {
	ctx, span := s.tracer.Start(ctx, "forecast-service.predict")
	defer span.End()

	symbol = normalizeSymbol(symbol)

	model, err := s.model(ctx, symbol)
	if err != nil {
		return nil, err
	}

	rows, err := s.recentRows(ctx, symbol)
	if err != nil {
		return nil, err
	}

	latest, mlSignal, probs, err := s.latestPrediction(model, rows)
	if err != nil {
		return nil, err
	}

	price := latest.Close
	fused := fusion.Fuse(price, latest.Columns, mlSignal, probs)
	points := forecast.Simulate(symbol, price, fused.Final, fused.Confidence, days, s.now())

	result := &domain.ForecastResult{
		Symbol:           symbol,
		CurrentPrice:     math.Round(price*100) / 100,
		Signal:           fused.Final,
		SignalConfidence: fused.Confidence,
		Predictions:      points,
		Indicators:       snapshotColumns(latest),
		Timestamp:        s.now().UTC(),
	}

	// Audit trail is best-effort, same as the warm store.
	if s.forecasts != nil {
		if err := s.forecasts.SaveForecast(ctx, result); err != nil {
			log.Printf("forecast audit write failed for %s: %v", symbol, err)
		}
	}
	return result, nil
}

// RecentForecasts lists previously emitted predictions for the symbol,
// newest first. Without a configured store the history is simply empty.
func (s *ForecastService) RecentForecasts(ctx context.Context, symbol string, limit int) ([]domain.StoredForecast, error) {
	ctx, span := s.tracer.Start(ctx, "forecast-service.recent-forecasts")
	defer span.End()

	if s.forecasts == nil {
		return []domain.StoredForecast{}, nil
	}
	return s.forecasts.RecentForecasts(ctx, normalizeSymbol(symbol), limit)
}

// GetIndicators returns the latest indicator readout, briefly cached in
// Redis to absorb chart-polling traffic.
func (s *ForecastService) GetIndicators(ctx context.Context, symbol string) (*domain.IndicatorSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "forecast-service.get-indicators")
	defer span.End()

	symbol = normalizeSymbol(symbol)

	if s.redis != nil {
		if cached, err := s.getSnapshotCache(ctx, symbol); err != nil {
			log.Printf("redis cache read error: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	rows, err := s.recentRows(ctx, symbol)
	if err != nil {
		return nil, err
	}
	latest := rows[len(rows)-1]

	snapshot := &domain.IndicatorSnapshot{
		Symbol:       symbol,
		CurrentPrice: math.Round(latest.Close*100) / 100,
		Volume:       latest.Volume,
		Indicators:   snapshotColumns(latest),
		Timestamp:    s.now().UTC(),
	}
	if s.redis != nil {
		if err := s.setSnapshotCache(ctx, snapshot); err != nil {
			log.Printf("redis cache write error for %s: %v", symbol, err)
		}
	}
	return snapshot, nil
}

// GetBars returns history with indicator columns for charting.
func (s *ForecastService) GetBars(ctx context.Context, symbol, period, interval string) ([]domain.IndicatorRow, error) {
	ctx, span := s.tracer.Start(ctx, "forecast-service.get-bars")
	defer span.End()

	symbol = normalizeSymbol(symbol)
	bars, err := s.provider.FetchBars(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	s.warmStore(ctx, interval, bars)
	return features.ComputeIndicators(bars)
}

// RefreshBars re-fetches recent history for the symbol into the warm store.
// The background poller drives this.
func (s *ForecastService) RefreshBars(ctx context.Context, symbol string) error {
	ctx, span := s.tracer.Start(ctx, "forecast-service.refresh-bars")
	defer span.End()

	symbol = normalizeSymbol(symbol)
	bars, err := s.provider.FetchBars(ctx, symbol, s.cfg.RecentPeriod, s.cfg.Interval)
	if err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	return s.store.UpsertBars(ctx, s.cfg.Interval, bars)
}

func (s *ForecastService) recentRows(ctx context.Context, symbol string) ([]domain.IndicatorRow, error) {
	bars, err := s.provider.FetchBars(ctx, symbol, s.cfg.RecentPeriod, s.cfg.Interval)
	if err != nil {
		return nil, err
	}
	s.warmStore(ctx, s.cfg.Interval, bars)
	return features.ComputeIndicators(bars)
}

// latestPrediction classifies the most recent row whose features are all
// defined, walking backwards past any trailing gaps.
func (s *ForecastService) latestPrediction(model Predictor, rows []domain.IndicatorRow) (domain.IndicatorRow, domain.TradeSignal, []float64, error) {
	for i := len(rows) - 1; i >= 0; i-- {
		signal, probs, err := model.PredictRow(rows[i])
		if errors.Is(err, domain.ErrNoCompleteFeatures) {
			continue
		}
		if err != nil {
			return domain.IndicatorRow{}, domain.SignalHold, nil, err
		}
		return rows[i], signal, probs, nil
	}
	return domain.IndicatorRow{}, domain.SignalHold, nil,
		fmt.Errorf("%w: no fully-formed rows in recent history", domain.ErrNoCompleteFeatures)
}

// warmStore mirrors fetched bars into Postgres. Failures are logged and
// swallowed; the store is an optimization, not a dependency.
func (s *ForecastService) warmStore(ctx context.Context, interval string, bars []domain.Bar) {
	if s.store == nil || len(bars) == 0 {
		return
	}
	if err := s.store.UpsertBars(ctx, interval, bars); err != nil {
		log.Printf("warm store upsert failed for %s: %v", bars[0].Symbol, err)
	}
}

// snapshotColumns keeps only the finite indicator values a JSON payload can
// carry.
func snapshotColumns(row domain.IndicatorRow) map[string]float64 {
	out := make(map[string]float64, len(row.Columns))
	for name, v := range row.Columns {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[name] = math.Round(v*10000) / 10000
	}
	return out
}

func (s *ForecastService) setSnapshotCache(ctx context.Context, snapshot *domain.IndicatorSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, "indicators:"+snapshot.Symbol, data, indicatorCacheTTL).Err()
}

func (s *ForecastService) getSnapshotCache(ctx context.Context, symbol string) (*domain.IndicatorSnapshot, error) {
	data, err := s.redis.Get(ctx, "indicators:"+symbol).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot domain.IndicatorSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
