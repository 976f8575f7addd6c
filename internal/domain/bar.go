package domain

import "time"

// Bar represents a single OHLCV bar for an instrument.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// SupportedIntervals defines the bar intervals the provider understands.
var SupportedIntervals = []string{"1d", "1h", "30m", "15m", "5m", "1m"}

// SupportedPeriods defines the lookback periods the provider understands.
var SupportedPeriods = []string{"1mo", "3mo", "6mo", "1y", "2y", "5y"}

func IsSupportedInterval(interval string) bool {
	for _, v := range SupportedIntervals {
		if v == interval {
			return true
		}
	}
	return false
}

func IsSupportedPeriod(period string) bool {
	for _, v := range SupportedPeriods {
		if v == period {
			return true
		}
	}
	return false
}
