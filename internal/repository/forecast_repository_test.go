package repository

import (
	"testing"

	"stockcast/internal/domain"
)

func TestFinalProjectedPrice(t *testing.T) {
	result := &domain.ForecastResult{
		CurrentPrice: 100.0,
		Predictions: []domain.ForecastPoint{
			{Day: 1, PredictedPrice: 101.2},
			{Day: 2, PredictedPrice: 102.7},
		},
	}
	if got := finalProjectedPrice(result); got != 102.7 {
		t.Fatalf("expected last path point, got %f", got)
	}

	empty := &domain.ForecastResult{CurrentPrice: 100.0}
	if got := finalProjectedPrice(empty); got != 100.0 {
		t.Fatalf("expected fallback to current price, got %f", got)
	}
}
