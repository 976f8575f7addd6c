package handler

import (
	"net/http"
	"strconv"
	"strings"

	"stockcast/internal/forecast"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type predictRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Days   int    `json:"days"`
}

// Predict godoc
// @Summary      Predict a price trajectory for a symbol
// @Description  Fuses technical and ML signals, then simulates a deterministic N-day price path
// @Tags         forecast
// @Accept       json
// @Produce      json
// @Param        request  body  predictRequest  true  "Symbol and forecast horizon in days (1-30, default 5)"
// @Success      200  {object}  domain.ForecastResult
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/predict [post]
func (h *Handler) Predict(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.predict")
	defer span.End()

	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Days == 0 {
		req.Days = 5
	}
	if req.Days < 1 || req.Days > forecast.MaxDays {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "days must be between 1 and 30",
		})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("days", req.Days))

	result, err := h.forecast.Predict(ctx, symbol, req.Days)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Train godoc
// @Summary      Train the prediction model for a symbol
// @Description  Fetches two years of history and fits a fresh classifier, returning accuracy diagnostics
// @Tags         forecast
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL)"
// @Success      200  {object}  domain.TrainResult
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/train/{symbol} [post]
func (h *Handler) Train(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.train")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	span.SetAttributes(attribute.String("symbol", symbol))

	result, err := h.forecast.TrainModel(ctx, symbol)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetForecastHistory godoc
// @Summary      List past predictions for a symbol
// @Description  Returns previously emitted forecasts, newest first
// @Tags         forecast
// @Produce      json
// @Param        symbol  path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        limit   query  int     false  "Maximum entries to return (default 20)"
// @Success      200  {array}   domain.StoredForecast
// @Failure      400  {object}  map[string]string
// @Router       /api/forecasts/{symbol} [get]
func (h *Handler) GetForecastHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.forecast-history")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	span.SetAttributes(attribute.String("symbol", symbol))

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	history, err := h.forecast.RecentForecasts(ctx, symbol, limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, history)
}

func parseDays(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > forecast.MaxDays {
		return 0, false
	}
	return n, true
}
