package evaluation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alsclassifier/internal/models"
)

// interleavedClusters yields two separable clusters with classes
// interleaved, so every fold sees both classes.
func interleavedClusters(n int) ([][]decimal.Decimal, []int) {
	X := make([][]decimal.Decimal, n)
	y := make([]int, n)

	for i := 0; i < n; i++ {
		base := 1.0
		if i%2 == 1 {
			base = 8.0
			y[i] = 1
		}
		offset := float64(i%5) * 0.1
		X[i] = []decimal.Decimal{
			decimal.NewFromFloat(base + offset),
			decimal.NewFromFloat(base - offset),
		}
	}
	return X, y
}

func alternatingLabels(n int) []int {
	y := make([]int, n)
	for i := range y {
		y[i] = i % 2
	}
	return y
}

func TestKFoldSplitPartitionsIndices(t *testing.T) {
	cv := NewCrossValidator(5, 42, 1)

	folds, err := cv.KFoldSplit(alternatingLabels(23))
	require.NoError(t, err)
	require.Len(t, folds, 5)

	seen := make(map[int]int)
	for _, fold := range folds {
		assert.NotEmpty(t, fold)
		for _, idx := range fold {
			seen[idx]++
		}
	}

	require.Len(t, seen, 23)
	for idx, n := range seen {
		assert.Equal(t, 1, n, "index %d appears %d times", idx, n)
	}
}

// Even a heavily skewed cohort must put both classes into every fold,
// otherwise the fold's ROC-AUC is undefined and the whole grid search
// fails on a bad draw.
func TestKFoldSplitStratifiesSkewedLabels(t *testing.T) {
	y := make([]int, 25)
	for i := 20; i < 25; i++ {
		y[i] = 1
	}

	folds, err := NewCrossValidator(5, 42, 1).KFoldSplit(y)
	require.NoError(t, err)

	for i, fold := range folds {
		counts := map[int]int{}
		for _, idx := range fold {
			counts[y[idx]]++
		}
		assert.Equal(t, 4, counts[0], "fold %d", i)
		assert.Equal(t, 1, counts[1], "fold %d", i)
	}
}

func TestKFoldSplitDeterministicForSeed(t *testing.T) {
	first, err := NewCrossValidator(4, 42, 1).KFoldSplit(alternatingLabels(20))
	require.NoError(t, err)
	second, err := NewCrossValidator(4, 42, 1).KFoldSplit(alternatingLabels(20))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestKFoldSplitInvalidFoldCounts(t *testing.T) {
	_, err := NewCrossValidator(1, 42, 1).KFoldSplit(alternatingLabels(10))
	assert.Error(t, err)

	_, err = NewCrossValidator(11, 42, 1).KFoldSplit(alternatingLabels(10))
	assert.Error(t, err)
}

func TestCrossValidateSeparableData(t *testing.T) {
	X, y := interleavedClusters(40)
	model := models.NewRandomForest(15, 5, 2, 1, models.WeightNone, 42)

	cv := NewCrossValidator(4, 42, 1)
	scores, err := cv.CrossValidate(X, y, model)
	require.NoError(t, err)

	require.Len(t, scores.AUCs, 4)
	require.Len(t, scores.Accuracies, 4)
	assert.Greater(t, scores.AUCMean(), 0.9)
	assert.Greater(t, scores.AccuracyMean(), 0.9)

	// The configuration, not the fitted model, is scored.
	assert.Empty(t, model.Trees)
}

func TestCrossValidateDeterministicForSeed(t *testing.T) {
	X, y := interleavedClusters(40)

	first, err := NewCrossValidator(4, 42, 1).CrossValidate(X, y,
		models.NewRandomForest(15, 5, 2, 1, models.WeightNone, 42))
	require.NoError(t, err)

	second, err := NewCrossValidator(4, 42, 1).CrossValidate(X, y,
		models.NewRandomForest(15, 5, 2, 1, models.WeightNone, 42))
	require.NoError(t, err)

	assert.Equal(t, first.AUCs, second.AUCs)
	assert.Equal(t, first.Accuracies, second.Accuracies)
}

func TestPositiveClassScores(t *testing.T) {
	X, y := interleavedClusters(40)

	model := models.NewRandomForest(15, 5, 2, 1, models.WeightNone, 42)
	require.NoError(t, model.Fit(X, y))

	scores, err := PositiveClassScores(model, X, 1)
	require.NoError(t, err)
	require.Len(t, scores, len(X))
	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}

	_, err = PositiveClassScores(model, X, 9)
	assert.Error(t, err)
}

func TestCVScoresAccuracyStd(t *testing.T) {
	scores := &CVScores{Accuracies: []float64{0.8}}
	assert.Equal(t, 0.0, scores.AccuracyStd())

	scores = &CVScores{Accuracies: []float64{0.5, 0.9}}
	assert.Greater(t, scores.AccuracyStd(), 0.0)
}
