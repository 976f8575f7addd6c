package handler

import (
	"math"
	"net/http"
	"strings"
	"time"

	"stockcast/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetIndicators godoc
// @Summary      Get the latest technical indicators for a symbol
// @Description  Returns the most recent RSI, MACD, moving averages and Bollinger bands
// @Tags         indicators
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL)"
// @Success      200  {object}  domain.IndicatorSnapshot
// @Failure      404  {object}  map[string]string
// @Router       /api/indicators/{symbol} [get]
func (h *Handler) GetIndicators(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-indicators")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	span.SetAttributes(attribute.String("symbol", symbol))

	snapshot, err := h.forecast.GetIndicators(ctx, symbol)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetStockData godoc
// @Summary      Get historical bars with indicator columns
// @Description  Returns OHLCV history enriched with indicator values for charting
// @Tags         indicators
// @Produce      json
// @Param        symbol    path   string  true   "Ticker symbol (e.g., AAPL)"
// @Param        period    query  string  false  "Lookback period (1mo, 3mo, 6mo, 1y, 2y, 5y)"  default(6mo)
// @Param        interval  query  string  false  "Bar interval (1d, 1h, 30m, 15m, 5m, 1m)"      default(1d)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/stock_data/{symbol} [get]
func (h *Handler) GetStockData(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-stock-data")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	period := c.DefaultQuery("period", "6mo")
	interval := c.DefaultQuery("interval", "1d")
	span.SetAttributes(
		attribute.String("symbol", symbol),
		attribute.String("period", period),
		attribute.String("interval", interval),
	)

	if !domain.IsSupportedPeriod(period) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported period: " + period,
			"supported_periods": domain.SupportedPeriods,
		})
		return
	}
	if !domain.IsSupportedInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported interval: " + interval,
			"supported_intervals": domain.SupportedIntervals,
		})
		return
	}

	rows, err := h.forecast.GetBars(ctx, symbol, period, interval)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol":   symbol,
		"period":   period,
		"interval": interval,
		"bars":     chartRows(rows),
	})
}

type chartRow struct {
	Timestamp  time.Time          `json:"timestamp"`
	Open       float64            `json:"open"`
	High       float64            `json:"high"`
	Low        float64            `json:"low"`
	Close      float64            `json:"close"`
	Volume     float64            `json:"volume"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
}

// chartRows flattens indicator rows into a JSON-safe shape: NaN columns
// (warm-up rows) are omitted rather than serialized.
func chartRows(rows []domain.IndicatorRow) []chartRow {
	rawColumns := map[string]bool{
		domain.ColOpen: true, domain.ColHigh: true, domain.ColLow: true,
		domain.ColClose: true, domain.ColVolume: true,
	}
	out := make([]chartRow, 0, len(rows))
	for _, row := range rows {
		cr := chartRow{
			Timestamp: row.Timestamp,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
		}
		for name, v := range row.Columns {
			if rawColumns[name] || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if cr.Indicators == nil {
				cr.Indicators = make(map[string]float64)
			}
			cr.Indicators[name] = math.Round(v*10000) / 10000
		}
		out = append(out, cr)
	}
	return out
}
