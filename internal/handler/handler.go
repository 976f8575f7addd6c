package handler

import (
	"context"
	"errors"
	"net/http"

	"stockcast/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Forecaster is the engine surface the HTTP layer consumes.
type Forecaster interface {
	Predict(ctx context.Context, symbol string, days int) (*domain.ForecastResult, error)
	TrainModel(ctx context.Context, symbol string) (domain.TrainResult, error)
	GetIndicators(ctx context.Context, symbol string) (*domain.IndicatorSnapshot, error)
	GetBars(ctx context.Context, symbol, period, interval string) ([]domain.IndicatorRow, error)
	RecentForecasts(ctx context.Context, symbol string, limit int) ([]domain.StoredForecast, error)
}

// Advisor turns a forecast into plain-language commentary.
type Advisor interface {
	Explain(ctx context.Context, result *domain.ForecastResult) (string, error)
}

type Handler struct {
	tracer   trace.Tracer
	forecast Forecaster
	advisor  Advisor
}

func New(tracer trace.Tracer, forecast Forecaster, advisor Advisor) *Handler {
	return &Handler{
		tracer:   tracer,
		forecast: forecast,
		advisor:  advisor,
	}
}

// RegisterRoutes wires the public API. Only the training trigger sits
// behind the optional API key; an empty key leaves it open.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)
	r.POST("/api/predict", h.Predict)
	r.POST("/api/train/:symbol", APIKeyAuth(apiKey), h.Train)
	r.GET("/api/forecasts/:symbol", h.GetForecastHistory)
	r.GET("/api/indicators/:symbol", h.GetIndicators)
	r.GET("/api/stock_data/:symbol", h.GetStockData)
	r.POST("/api/advice/:symbol", h.GetAdvice)
}

// statusFor maps engine errors onto HTTP statuses so clients can tell bad
// requests from missing data from engine faults.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedPeriod),
		errors.Is(err, domain.ErrUnsupportedInterval):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientData),
		errors.Is(err, domain.ErrNoCompleteFeatures):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
