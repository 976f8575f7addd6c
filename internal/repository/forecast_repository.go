package repository

import (
	"context"

	"stockcast/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createForecastsTable = `
CREATE TABLE IF NOT EXISTS forecasts (
    id            BIGSERIAL   PRIMARY KEY,
    symbol        TEXT        NOT NULL,
    signal        SMALLINT    NOT NULL,
    confidence    NUMERIC     NOT NULL,
    current_price NUMERIC     NOT NULL,
    final_price   NUMERIC     NOT NULL,
    horizon_days  INT         NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_forecasts_symbol_created
    ON forecasts (symbol, created_at DESC);
`

type forecastPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ForecastRepository keeps an audit trail of emitted predictions so past
// calls can be compared against realized prices later.
type ForecastRepository struct {
	pool   forecastPool
	tracer trace.Tracer
}

func NewForecastRepository(pool forecastPool, tracer trace.Tracer) *ForecastRepository {
	return &ForecastRepository{pool: pool, tracer: tracer}
}

func (r *ForecastRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "forecast-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createForecastsTable)
	return err
}

// SaveForecast records one prediction. The final projected price is taken
// from the last point of the simulated path.
func (r *ForecastRepository) SaveForecast(ctx context.Context, result *domain.ForecastResult) error {
	_, span := r.tracer.Start(ctx, "forecast-repo.save-forecast")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO forecasts (symbol, signal, confidence, current_price, final_price, horizon_days, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		result.Symbol,
		int16(result.Signal),
		result.SignalConfidence,
		result.CurrentPrice,
		finalProjectedPrice(result),
		len(result.Predictions),
		result.Timestamp.UTC(),
	)
	return err
}

// finalProjectedPrice is the last point of the simulated path, falling back
// to the current price for an empty path.
func finalProjectedPrice(result *domain.ForecastResult) float64 {
	if n := len(result.Predictions); n > 0 {
		return result.Predictions[n-1].PredictedPrice
	}
	return result.CurrentPrice
}

// RecentForecasts returns up to limit stored predictions for the symbol,
// newest first.
func (r *ForecastRepository) RecentForecasts(ctx context.Context, symbol string, limit int) ([]domain.StoredForecast, error) {
	_, span := r.tracer.Start(ctx, "forecast-repo.recent-forecasts")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, signal, confidence, current_price, final_price, horizon_days, created_at
		 FROM forecasts
		 WHERE symbol = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.StoredForecast, 0, limit)
	for rows.Next() {
		var f domain.StoredForecast
		var signal int16
		if err := rows.Scan(&f.ID, &f.Symbol, &signal, &f.Confidence, &f.CurrentPrice, &f.FinalPrice, &f.HorizonDays, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Signal = domain.TradeSignal(signal)
		f.CreatedAt = f.CreatedAt.UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}
