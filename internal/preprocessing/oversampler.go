package preprocessing

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

// Oversampler balances class frequencies by synthesizing minority-class
// samples: each synthetic sample is an interpolation between a minority
// sample and one of its k nearest minority neighbors. It is applied to
// the training split only; synthetic samples must never reach the
// holdout or inference paths.
type Oversampler struct {
	KNeighbors int
	Seed       int64
}

func NewOversampler(kNeighbors int, seed int64) *Oversampler {
	if kNeighbors <= 0 {
		kNeighbors = 5
	}
	return &Oversampler{
		KNeighbors: kNeighbors,
		Seed:       seed,
	}
}

// Resample returns a new training set where every class is brought up
// to the majority class count. The input is not modified.
func (o *Oversampler) Resample(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, []int, error) {
	if len(X) == 0 {
		return nil, nil, fmt.Errorf("cannot resample empty dataset")
	}
	if len(X) != len(y) {
		return nil, nil, fmt.Errorf("features and labels have different lengths: %d vs %d", len(X), len(y))
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}
	if len(classIndices) < 2 {
		return nil, nil, fmt.Errorf("resampling requires at least 2 classes, found %d", len(classIndices))
	}

	majorityCount := 0
	for _, indices := range classIndices {
		if len(indices) > majorityCount {
			majorityCount = len(indices)
		}
	}

	resampledX := make([][]decimal.Decimal, len(X))
	resampledY := make([]int, len(y))
	for i := range X {
		resampledX[i] = make([]decimal.Decimal, len(X[i]))
		copy(resampledX[i], X[i])
		resampledY[i] = y[i]
	}

	rng := rand.New(rand.NewSource(o.Seed))

	classes := make([]int, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	for _, class := range classes {
		indices := classIndices[class]
		needed := majorityCount - len(indices)
		if needed == 0 {
			continue
		}

		samples := make([][]decimal.Decimal, len(indices))
		for i, idx := range indices {
			samples[i] = X[idx]
		}

		neighbors := o.nearestNeighbors(samples)

		for n := 0; n < needed; n++ {
			base := rng.Intn(len(samples))
			synthetic := o.synthesize(samples, neighbors, base, rng)
			resampledX = append(resampledX, synthetic)
			resampledY = append(resampledY, class)
		}
	}

	return resampledX, resampledY, nil
}

func (o *Oversampler) synthesize(samples [][]decimal.Decimal, neighbors [][]int, base int, rng *rand.Rand) []decimal.Decimal {
	// A singleton class has no neighbor to interpolate toward, so the
	// sample is duplicated.
	if len(neighbors[base]) == 0 {
		duplicate := make([]decimal.Decimal, len(samples[base]))
		copy(duplicate, samples[base])
		return duplicate
	}

	neighbor := neighbors[base][rng.Intn(len(neighbors[base]))]
	gap := decimal.NewFromFloat(rng.Float64())

	synthetic := make([]decimal.Decimal, len(samples[base]))
	for j := range synthetic {
		diff := samples[neighbor][j].Sub(samples[base][j])
		synthetic[j] = samples[base][j].Add(diff.Mul(gap))
	}
	return synthetic
}

// nearestNeighbors returns, for each sample, the indices of its k
// nearest same-class neighbors by euclidean distance.
func (o *Oversampler) nearestNeighbors(samples [][]decimal.Decimal) [][]int {
	n := len(samples)
	neighbors := make([][]int, n)

	for i := 0; i < n; i++ {
		type candidate struct {
			index    int
			distance float64
		}

		candidates := make([]candidate, 0, n-1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			candidates = append(candidates, candidate{
				index:    j,
				distance: euclideanDistance(samples[i], samples[j]),
			})
		}

		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].distance == candidates[b].distance {
				return candidates[a].index < candidates[b].index
			}
			return candidates[a].distance < candidates[b].distance
		})

		k := o.KNeighbors
		if k > len(candidates) {
			k = len(candidates)
		}

		neighbors[i] = make([]int, k)
		for j := 0; j < k; j++ {
			neighbors[i][j] = candidates[j].index
		}
	}

	return neighbors
}

func euclideanDistance(a, b []decimal.Decimal) float64 {
	sum := 0.0
	for j := range a {
		diff, _ := a[j].Sub(b[j]).Float64()
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
