package training

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scaler standardizes feature vectors to zero mean and unit variance, one
// mean/std pair per column. Fit on the training partition only.
type Scaler struct {
	Mean []float64
	Std  []float64
}

func FitScaler(matrix [][]float64) *Scaler {
	if len(matrix) == 0 {
		return &Scaler{}
	}
	cols := len(matrix[0])
	s := &Scaler{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}
	column := make([]float64, len(matrix))
	for j := 0; j < cols; j++ {
		for i := range matrix {
			column[i] = matrix[i][j]
		}
		s.Mean[j] = stat.Mean(column, nil)
		std := stat.StdDev(column, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Std[j] = std
	}
	return s
}

func (s *Scaler) Transform(vector []float64) []float64 {
	if s == nil || len(s.Mean) != len(vector) {
		out := make([]float64, len(vector))
		copy(out, vector)
		return out
	}
	out := make([]float64, len(vector))
	for j, v := range vector {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

func (s *Scaler) TransformMatrix(matrix [][]float64) [][]float64 {
	out := make([][]float64, len(matrix))
	for i := range matrix {
		out[i] = s.Transform(matrix[i])
	}
	return out
}
