package evaluation

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"alsclassifier/internal/models"
)

// CrossValidator runs seeded k-fold cross-validation. Folds may be
// evaluated concurrently; scores land in fold order, so the result is
// identical for a fixed seed regardless of worker scheduling.
type CrossValidator struct {
	NFolds        int
	Shuffle       bool
	RandomSeed    int64
	PositiveClass int
	Parallel      bool
	MaxWorkers    int
}

// CVScores holds per-fold holdout scores for one model configuration.
type CVScores struct {
	AUCs       []float64
	Accuracies []float64
}

func (s *CVScores) AUCMean() float64      { return stat.Mean(s.AUCs, nil) }
func (s *CVScores) AccuracyMean() float64 { return stat.Mean(s.Accuracies, nil) }

func (s *CVScores) AccuracyStd() float64 {
	if len(s.Accuracies) < 2 {
		return 0
	}
	return stat.StdDev(s.Accuracies, nil)
}

func NewCrossValidator(nFolds int, seed int64, positiveClass int) *CrossValidator {
	return &CrossValidator{
		NFolds:        nFolds,
		Shuffle:       true,
		RandomSeed:    seed,
		PositiveClass: positiveClass,
		Parallel:      true,
		MaxWorkers:    4,
	}
}

// CrossValidate scores the model configuration (not the fitted model:
// each fold fits a fresh clone) by ROC-AUC and accuracy.
func (cv *CrossValidator) CrossValidate(X [][]decimal.Decimal, y []int, model models.Model) (*CVScores, error) {
	folds, err := cv.KFoldSplit(y)
	if err != nil {
		return nil, err
	}

	scores := &CVScores{
		AUCs:       make([]float64, cv.NFolds),
		Accuracies: make([]float64, cv.NFolds),
	}
	errors := make([]error, cv.NFolds)

	if cv.Parallel {
		workers := cv.MaxWorkers
		if workers > cv.NFolds {
			workers = cv.NFolds
		}

		type foldJob struct {
			index       int
			testIndices []int
		}

		jobs := make(chan foldJob, cv.NFolds)
		var wg sync.WaitGroup

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for job := range jobs {
					auc, acc, err := cv.evaluateFold(X, y, model, job.testIndices)
					scores.AUCs[job.index] = auc
					scores.Accuracies[job.index] = acc
					errors[job.index] = err
				}
			}()
		}

		for i, fold := range folds {
			jobs <- foldJob{index: i, testIndices: fold}
		}
		close(jobs)
		wg.Wait()
	} else {
		for i, fold := range folds {
			auc, acc, err := cv.evaluateFold(X, y, model, fold)
			scores.AUCs[i] = auc
			scores.Accuracies[i] = acc
			errors[i] = err
		}
	}

	for i, err := range errors {
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", i, err)
		}
	}

	return scores, nil
}

func (cv *CrossValidator) evaluateFold(X [][]decimal.Decimal, y []int, model models.Model, testIndices []int) (float64, float64, error) {
	testSet := make(map[int]bool, len(testIndices))
	for _, idx := range testIndices {
		testSet[idx] = true
	}

	trainIndices := make([]int, 0, len(X)-len(testIndices))
	for i := 0; i < len(X); i++ {
		if !testSet[i] {
			trainIndices = append(trainIndices, i)
		}
	}

	XTrain := make([][]decimal.Decimal, len(trainIndices))
	yTrain := make([]int, len(trainIndices))
	for i, idx := range trainIndices {
		XTrain[i] = X[idx]
		yTrain[i] = y[idx]
	}

	XTest := make([][]decimal.Decimal, len(testIndices))
	yTest := make([]int, len(testIndices))
	for i, idx := range testIndices {
		XTest[i] = X[idx]
		yTest[i] = y[idx]
	}

	foldModel := model.Clone()
	if err := foldModel.Fit(XTrain, yTrain); err != nil {
		return 0, 0, err
	}

	scores, err := PositiveClassScores(foldModel, XTest, cv.PositiveClass)
	if err != nil {
		return 0, 0, err
	}

	auc, err := ROCAUC(yTest, scores, cv.PositiveClass)
	if err != nil {
		return 0, 0, err
	}

	predictions := foldModel.Predict(XTest)
	correct := 0
	for i, pred := range predictions {
		if pred == yTest[i] {
			correct++
		}
	}

	return auc, float64(correct) / float64(len(yTest)), nil
}

// PositiveClassScores extracts the probability mass the model assigns
// to the positive class for every sample.
func PositiveClassScores(model models.Model, X [][]decimal.Decimal, positiveClass int) ([]float64, error) {
	column := -1
	for i, class := range model.GetClasses() {
		if class == positiveClass {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, fmt.Errorf("model was not trained on class %d", positiveClass)
	}

	proba := model.PredictProba(X)
	scores := make([]float64, len(proba))
	for i := range proba {
		scores[i], _ = proba[i][column].Float64()
	}
	return scores, nil
}

// KFoldSplit partitions sample indices into NFolds folds, stratified by
// label: each class is shuffled and dealt round-robin, so class
// proportions carry into every fold and a skewed draw cannot produce a
// single-class fold whose ROC-AUC is undefined.
func (cv *CrossValidator) KFoldSplit(y []int) ([][]int, error) {
	n := len(y)
	if cv.NFolds < 2 || cv.NFolds > n {
		return nil, fmt.Errorf("invalid number of folds: %d (must be between 2 and %d)", cv.NFolds, n)
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

	rng := rand.New(rand.NewSource(cv.RandomSeed))
	folds := make([][]int, cv.NFolds)

	next := 0
	for _, class := range classes {
		indices := classIndices[class]
		if cv.Shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
		for _, idx := range indices {
			folds[next%cv.NFolds] = append(folds[next%cv.NFolds], idx)
			next++
		}
	}

	return folds, nil
}
