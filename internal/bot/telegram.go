package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"stockcast/internal/domain"
	"stockcast/internal/forecast"

	tele "gopkg.in/telebot.v3"
)

// Forecaster is the engine surface the bot consumes.
type Forecaster interface {
	Predict(ctx context.Context, symbol string, days int) (*domain.ForecastResult, error)
	GetIndicators(ctx context.Context, symbol string) (*domain.IndicatorSnapshot, error)
}

// Advisor turns a forecast into plain-language commentary.
type Advisor interface {
	Explain(ctx context.Context, result *domain.ForecastResult) (string, error)
}

func StartTelegramBot(forecaster Forecaster, advisor Advisor) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/forecast", func(c tele.Context) error {
		symbol, days, err := parseForecastArgs(c.Args())
		if err != nil {
			return c.Send(err.Error())
		}
		result, err := forecaster.Predict(context.Background(), symbol, days)
		if err != nil {
			return c.Send(fmt.Sprintf("Error forecasting %s: %v", symbol, err))
		}
		return c.Send(formatForecast(result))
	})

	b.Handle("/indicators", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /indicators AAPL")
		}
		symbol := strings.ToUpper(args[0])
		snapshot, err := forecaster.GetIndicators(context.Background(), symbol)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching indicators for %s: %v", symbol, err))
		}
		return c.Send(formatSnapshot(snapshot))
	})

	b.Handle("/advice", func(c tele.Context) error {
		if advisor == nil {
			return c.Send("Advisor is not configured")
		}
		symbol, days, err := parseForecastArgs(c.Args())
		if err != nil {
			return c.Send(strings.Replace(err.Error(), "/forecast", "/advice", 1))
		}
		result, err := forecaster.Predict(context.Background(), symbol, days)
		if err != nil {
			return c.Send(fmt.Sprintf("Error forecasting %s: %v", symbol, err))
		}
		advice, err := advisor.Explain(context.Background(), result)
		if err != nil {
			return c.Send(fmt.Sprintf("Advisor error: %v", err))
		}
		return c.Send(advice)
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func parseForecastArgs(args []string) (symbol string, days int, err error) {
	if len(args) == 0 {
		return "", 0, fmt.Errorf("Usage: /forecast AAPL [days 1-%d]", forecast.MaxDays)
	}
	symbol = strings.ToUpper(args[0])
	days = 5
	if len(args) > 1 {
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil || n < 1 || n > forecast.MaxDays {
			return "", 0, fmt.Errorf("days must be between 1 and %d", forecast.MaxDays)
		}
		days = n
	}
	return symbol, days, nil
}

func formatForecast(result *domain.ForecastResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  $%.2f\n", result.Symbol, result.CurrentPrice)
	fmt.Fprintf(&b, "Signal: %s (%.0f%% confidence)\n", strings.ToUpper(result.Signal.String()), result.SignalConfidence*100)
	for _, p := range result.Predictions {
		fmt.Fprintf(&b, "Day %d: $%.2f (%.0f%%)\n", p.Day, p.PredictedPrice, p.Confidence*100)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSnapshot(snapshot *domain.IndicatorSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  $%.2f\n", snapshot.Symbol, snapshot.CurrentPrice)
	names := make([]string, 0, len(snapshot.Indicators))
	for name := range snapshot.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %.2f\n", name, snapshot.Indicators[name])
	}
	return strings.TrimRight(b.String(), "\n")
}
