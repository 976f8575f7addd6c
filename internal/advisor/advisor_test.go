package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"stockcast/internal/domain"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/trace"
)

type stubLLMClient struct {
	response   *openai.ChatCompletion
	err        error
	lastParams openai.ChatCompletionNewParams
}

func (s *stubLLMClient) CreateChatCompletion(_ context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func sampleResult() *domain.ForecastResult {
	return &domain.ForecastResult{
		Symbol:           "AAPL",
		CurrentPrice:     187.32,
		Signal:           domain.SignalBuy,
		SignalConfidence: 0.91,
		Predictions: []domain.ForecastPoint{
			{Day: 1, PredictedPrice: 188.50, Confidence: 0.91},
			{Day: 2, PredictedPrice: 190.12, Confidence: 0.88},
		},
		Indicators: map[string]float64{
			domain.ColRSI:   28.4,
			domain.ColSMA20: 182.1,
		},
		Timestamp: time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
	}
}

func TestExplainHappyPath(t *testing.T) {
	llm := &stubLLMClient{
		response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "AAPL momentum looks strong"}},
			},
		},
	}
	svc := NewService(trace.NewNoopTracerProvider().Tracer("test"), llm, "gpt-4o-mini")

	reply, err := svc.Explain(context.Background(), sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "AAPL momentum looks strong" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(llm.lastParams.Messages) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(llm.lastParams.Messages))
	}
}

func TestExplainLLMError(t *testing.T) {
	llm := &stubLLMClient{err: errors.New("api down")}
	svc := NewService(trace.NewNoopTracerProvider().Tracer("test"), llm, "gpt-4o-mini")

	if _, err := svc.Explain(context.Background(), sampleResult()); err == nil {
		t.Fatal("expected error from LLM failure")
	}
}

func TestExplainEmptyChoices(t *testing.T) {
	llm := &stubLLMClient{response: &openai.ChatCompletion{}}
	svc := NewService(trace.NewNoopTracerProvider().Tracer("test"), llm, "gpt-4o-mini")

	if _, err := svc.Explain(context.Background(), sampleResult()); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestFormatForecastContext(t *testing.T) {
	got := FormatForecastContext(sampleResult())

	for _, want := range []string{
		"Symbol: AAPL",
		"Current price: $187.32",
		"Signal: buy (confidence 91%)",
		"rsi: 28.4000",
		"Simulated 2-day path ends at $190.12",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
	// Sorted indicator names keep the prompt stable.
	if strings.Index(got, "rsi:") > strings.Index(got, "sma_20:") {
		t.Error("indicator names should be sorted")
	}
}

func TestFormatForecastContextNoPredictions(t *testing.T) {
	result := sampleResult()
	result.Predictions = nil
	got := FormatForecastContext(result)
	if strings.Contains(got, "Simulated") {
		t.Errorf("unexpected path line without predictions:\n%s", got)
	}
}
