package evaluation

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"
)

// TrainTestSplitter partitions a dataset into training and holdout
// splits. The seed fixes the shuffle so a training run is reproducible.
type TrainTestSplitter struct {
	testSize   float64
	randomSeed int64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed int64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

func (tts *TrainTestSplitter) Split(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, [][]decimal.Decimal, []int, []int, error) {
	if err := tts.check(X, y); err != nil {
		return nil, nil, nil, nil, err
	}

	n := len(X)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if tts.shuffle {
		rng := rand.New(rand.NewSource(tts.randomSeed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	testCount := int(float64(n) * tts.testSize)
	trainCount := n - testCount

	return gather(X, y, indices[:trainCount], indices[trainCount:])
}

// StratifiedSplit preserves per-class proportions between the training
// and holdout splits. Classes are visited in ascending order so the
// split is a pure function of the seed.
func (tts *TrainTestSplitter) StratifiedSplit(X [][]decimal.Decimal, y []int) ([][]decimal.Decimal, [][]decimal.Decimal, []int, []int, error) {
	if err := tts.check(X, y); err != nil {
		return nil, nil, nil, nil, err
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}

	classes := make([]int, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(tts.randomSeed))
	var trainIndices, testIndices []int

	for _, class := range classes {
		indices := classIndices[class]
		if tts.shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		testCount := int(float64(len(indices)) * tts.testSize)
		if testCount == 0 && len(indices) > 0 {
			testCount = 1
		}
		trainCount := len(indices) - testCount

		trainIndices = append(trainIndices, indices[:trainCount]...)
		testIndices = append(testIndices, indices[trainCount:]...)
	}

	if tts.shuffle {
		rng.Shuffle(len(trainIndices), func(i, j int) {
			trainIndices[i], trainIndices[j] = trainIndices[j], trainIndices[i]
		})
		rng.Shuffle(len(testIndices), func(i, j int) {
			testIndices[i], testIndices[j] = testIndices[j], testIndices[i]
		})
	}

	return gather(X, y, trainIndices, testIndices)
}

func (tts *TrainTestSplitter) check(X [][]decimal.Decimal, y []int) error {
	if len(X) != len(y) {
		return fmt.Errorf("x and y must have the same length")
	}
	if len(X) == 0 {
		return fmt.Errorf("cannot split empty dataset")
	}
	if tts.testSize <= 0 || tts.testSize >= 1 {
		return fmt.Errorf("test size must be between 0 and 1")
	}
	return nil
}

func gather(X [][]decimal.Decimal, y []int, trainIndices, testIndices []int) ([][]decimal.Decimal, [][]decimal.Decimal, []int, []int, error) {
	XTrain := make([][]decimal.Decimal, len(trainIndices))
	yTrain := make([]int, len(trainIndices))
	for i, idx := range trainIndices {
		XTrain[i] = make([]decimal.Decimal, len(X[idx]))
		copy(XTrain[i], X[idx])
		yTrain[i] = y[idx]
	}

	XTest := make([][]decimal.Decimal, len(testIndices))
	yTest := make([]int, len(testIndices))
	for i, idx := range testIndices {
		XTest[i] = make([]decimal.Decimal, len(X[idx]))
		copy(XTest[i], X[idx])
		yTest[i] = y[idx]
	}

	return XTrain, XTest, yTrain, yTest, nil
}
