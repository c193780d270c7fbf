package preprocessing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skewedDataset() ([][]decimal.Decimal, []int) {
	X := matrix(
		[]float64{1.0, 1.1},
		[]float64{1.2, 0.9},
		[]float64{0.8, 1.0},
		[]float64{1.1, 1.2},
		[]float64{0.9, 0.8},
		[]float64{1.0, 1.0},
		[]float64{5.0, 5.1},
		[]float64{5.2, 4.9},
	)
	y := []int{0, 0, 0, 0, 0, 0, 1, 1}
	return X, y
}

func countClasses(y []int) map[int]int {
	counts := make(map[int]int)
	for _, label := range y {
		counts[label]++
	}
	return counts
}

func TestResampleBalancesClasses(t *testing.T) {
	X, y := skewedDataset()

	sampler := NewOversampler(5, 42)
	XBal, yBal, err := sampler.Resample(X, y)
	require.NoError(t, err)
	require.Len(t, XBal, len(yBal))

	counts := countClasses(yBal)
	assert.Equal(t, 6, counts[0])
	assert.Equal(t, 6, counts[1])
}

func TestResampleLeavesInputIntact(t *testing.T) {
	X, y := skewedDataset()
	original := matrix(
		[]float64{1.0, 1.1},
		[]float64{1.2, 0.9},
		[]float64{0.8, 1.0},
		[]float64{1.1, 1.2},
		[]float64{0.9, 0.8},
		[]float64{1.0, 1.0},
		[]float64{5.0, 5.1},
		[]float64{5.2, 4.9},
	)

	sampler := NewOversampler(5, 42)
	_, _, err := sampler.Resample(X, y)
	require.NoError(t, err)

	for i := range original {
		for j := range original[i] {
			assert.True(t, X[i][j].Equal(original[i][j]), "input row %d changed", i)
		}
	}
}

func TestResampleSyntheticSamplesInterpolate(t *testing.T) {
	X, y := skewedDataset()

	sampler := NewOversampler(5, 7)
	XBal, yBal, err := sampler.Resample(X, y)
	require.NoError(t, err)

	// Minority samples span [5.0, 5.2] x [4.9, 5.1]; every synthetic
	// sample interpolates between two of them, so it stays inside.
	lo := []float64{5.0, 4.9}
	hi := []float64{5.2, 5.1}
	for i := len(X); i < len(XBal); i++ {
		require.Equal(t, 1, yBal[i])
		for j := range XBal[i] {
			v, _ := XBal[i][j].Float64()
			assert.GreaterOrEqual(t, v, lo[j])
			assert.LessOrEqual(t, v, hi[j])
		}
	}
}

func TestResampleIsDeterministic(t *testing.T) {
	X, y := skewedDataset()

	first, yFirst, err := NewOversampler(5, 42).Resample(X, y)
	require.NoError(t, err)
	second, ySecond, err := NewOversampler(5, 42).Resample(X, y)
	require.NoError(t, err)

	require.Equal(t, yFirst, ySecond)
	require.Len(t, second, len(first))
	for i := range first {
		for j := range first[i] {
			assert.True(t, first[i][j].Equal(second[i][j]), "row %d col %d differs", i, j)
		}
	}
}

func TestResampleSingletonClassDuplicates(t *testing.T) {
	X := matrix(
		[]float64{1, 1},
		[]float64{2, 2},
		[]float64{3, 3},
		[]float64{9, 9},
	)
	y := []int{0, 0, 0, 1}

	XBal, yBal, err := NewOversampler(5, 1).Resample(X, y)
	require.NoError(t, err)

	counts := countClasses(yBal)
	assert.Equal(t, 3, counts[1])
	for i := len(X); i < len(XBal); i++ {
		assert.True(t, XBal[i][0].Equal(decimal.NewFromInt(9)))
		assert.True(t, XBal[i][1].Equal(decimal.NewFromInt(9)))
	}
}

func TestResampleErrors(t *testing.T) {
	sampler := NewOversampler(5, 42)

	_, _, err := sampler.Resample(nil, nil)
	assert.Error(t, err, "empty dataset")

	X := matrix([]float64{1}, []float64{2})
	_, _, err = sampler.Resample(X, []int{0})
	assert.Error(t, err, "length mismatch")

	_, _, err = sampler.Resample(X, []int{0, 0})
	assert.Error(t, err, "single class")
}
