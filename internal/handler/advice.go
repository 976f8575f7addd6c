package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetAdvice godoc
// @Summary      Get plain-language commentary on a forecast
// @Description  Runs a prediction and asks the advisor to explain the signal in plain English
// @Tags         advice
// @Produce      json
// @Param        symbol  path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        days    query  int     false  "Forecast horizon in days"  default(5)
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/advice/{symbol} [post]
func (h *Handler) GetAdvice(c *gin.Context) {
	if h.advisor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "advisor unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-advice")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	span.SetAttributes(attribute.String("symbol", symbol))

	days := 5
	if d := c.Query("days"); d != "" {
		if n, ok := parseDays(d); ok {
			days = n
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 30"})
			return
		}
	}

	result, err := h.forecast.Predict(ctx, symbol, days)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	advice, err := h.advisor.Explain(ctx, result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"signal":   result.Signal.String(),
		"advice":   advice,
		"forecast": result,
	})
}
