package forest

import (
	"errors"
	"fmt"
	"math"

	"github.com/rmera/boo"
	"github.com/rmera/boo/utils"

	"stockcast/internal/domain"
)

// NumClasses is the size of the label space: sell, hold, buy.
const NumClasses = 3

type TrainOptions struct {
	Rounds       int
	LearningRate float64
	MaxDepth     int
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Rounds:       100,
		LearningRate: 0.1,
		MaxDepth:     10,
	}
}

// Model is a boosted tree ensemble over the three signal classes. Class
// indices are 0=sell, 1=hold, 2=buy.
type Model struct {
	featureNames []string
	boost        *boo.MultiClass
}

func Train(samples [][]float64, labels []int, featureNames []string, opts TrainOptions) (*Model, error) {
	if len(samples) == 0 || len(samples) != len(labels) {
		return nil, errors.New("invalid training dataset")
	}
	if len(samples[0]) == 0 {
		return nil, errors.New("empty feature vectors")
	}
	classSet := make(map[int]struct{}, NumClasses)
	for _, label := range labels {
		if label < 0 || label >= NumClasses {
			return nil, errors.New("label out of range")
		}
		classSet[label] = struct{}{}
	}
	if len(classSet) < 2 {
		return nil, fmt.Errorf("%w: labels collapse to a single class", domain.ErrInsufficientData)
	}
	if opts.Rounds <= 0 {
		opts.Rounds = DefaultTrainOptions().Rounds
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = DefaultTrainOptions().LearningRate
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultTrainOptions().MaxDepth
	}
	if len(featureNames) != len(samples[0]) {
		featureNames = make([]string, len(samples[0]))
		for i := range featureNames {
			featureNames[i] = "f"
		}
	}

	o := boo.DefaultXOptions()
	o.Rounds = opts.Rounds
	o.LearningRate = opts.LearningRate
	o.MaxDepth = opts.MaxDepth
	o.Verbose = false
	o.EarlyStop = 0

	data := &utils.DataBunch{
		Data:   samples,
		Labels: append([]int(nil), labels...),
		Keys:   append([]string(nil), featureNames...),
	}
	model := boo.NewMultiClass(data, o)
	if model == nil {
		return nil, errors.New("failed to train boosted ensemble")
	}
	return &Model{featureNames: append([]string(nil), featureNames...), boost: model}, nil
}

// Predict returns the most probable class index and the probability per
// class index. Probabilities always sum to ~1 and cover all three classes
// even when a class was absent from training.
func (m *Model) Predict(sample []float64) (int, []float64) {
	probs := make([]float64, NumClasses)
	if m == nil || m.boost == nil {
		for i := range probs {
			probs[i] = 1.0 / NumClasses
		}
		return 1, probs
	}
	raw := m.boost.PredictSingle(sample)
	labels := m.boost.ClassLabels()
	for i := range labels {
		if labels[i] >= 0 && labels[i] < NumClasses && i < len(raw) {
			probs[labels[i]] = clamp01(raw[i])
		}
	}
	normalize(probs)

	best := 0
	for i := 1; i < NumClasses; i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return best, probs
}

func (m *Model) FeatureNames() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

func normalize(probs []float64) {
	var sum float64
	for _, p := range probs {
		sum += p
	}
	if sum <= 0 {
		for i := range probs {
			probs[i] = 1.0 / float64(len(probs))
		}
		return
	}
	for i := range probs {
		probs[i] /= sum
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
