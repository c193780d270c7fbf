package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Class weighting modes. Balanced weighting counters class skew by
// weighting each class inversely to its frequency: w_c = n / (k * n_c).
const (
	WeightNone     = "none"
	WeightBalanced = "balanced"
)

type Model interface {
	Fit(X [][]decimal.Decimal, y []int) error
	Predict(X [][]decimal.Decimal) []int
	PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal
	FeatureImportances() []float64
	GetName() string
	GetParams() map[string]any
	GetClasses() []int
	Clone() Model
}

type BaseModel struct {
	Name    string
	Params  map[string]any
	Classes []int
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func (bm *BaseModel) GetClasses() []int {
	return bm.Classes
}

// ExtractClasses returns the distinct labels in ascending order so that
// probability columns have a stable meaning across fits.
func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}

// classWeights computes per-class sample weights for the requested
// weighting mode; every class weighs 1 when weighting is off.
func classWeights(y []int, mode string) map[int]float64 {
	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}

	weights := make(map[int]float64, len(counts))
	if mode != WeightBalanced {
		for class := range counts {
			weights[class] = 1.0
		}
		return weights
	}

	n := float64(len(y))
	k := float64(len(counts))
	for class, count := range counts {
		weights[class] = n / (k * float64(count))
	}
	return weights
}
