package advisor

import (
	"fmt"
	"sort"
	"strings"

	"stockcast/internal/domain"
)

const systemPrompt = `You are a market analyst explaining an automated forecast to a retail investor.
Summarize what the signal and indicators suggest in 3-4 plain sentences.
Mention the main drivers (momentum, trend, volatility bands) when the data supports it.
Always close by noting this is a simulation, not financial advice.
Never invent numbers that are not in the provided data.`

// FormatForecastContext renders the forecast as the user message for the
// LLM. Indicator names are sorted so prompts are stable across calls.
func FormatForecastContext(result *domain.ForecastResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Symbol: %s\n", result.Symbol)
	fmt.Fprintf(&b, "Current price: $%.2f\n", result.CurrentPrice)
	fmt.Fprintf(&b, "Signal: %s (confidence %.0f%%)\n", result.Signal, result.SignalConfidence*100)

	if len(result.Indicators) > 0 {
		b.WriteString("Technical indicators:\n")
		names := make([]string, 0, len(result.Indicators))
		for name := range result.Indicators {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %.4f\n", name, result.Indicators[name])
		}
	}

	if n := len(result.Predictions); n > 0 {
		last := result.Predictions[n-1]
		change := 0.0
		if result.CurrentPrice > 0 {
			change = (last.PredictedPrice - result.CurrentPrice) / result.CurrentPrice * 100
		}
		fmt.Fprintf(&b, "Simulated %d-day path ends at $%.2f (%+.2f%%)\n", n, last.PredictedPrice, change)
	}

	return b.String()
}
