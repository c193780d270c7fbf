package models

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
)

// RandomForest is a bagged ensemble of decision trees, each trained on
// a bootstrap sample over a random sqrt-sized feature subset. Tree
// training runs on a worker pool; every tree derives its RNG from the
// forest seed and its own index, so a fixed seed yields an identical
// forest regardless of worker scheduling.
type RandomForest struct {
	BaseModel
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	ClassWeight     string
	Seed            int64
	MaxFeatures     int
	Trees           []*DecisionTree
	FeatureIndices  [][]int
	NumFeatures     int
	Parallel        bool
	MaxWorkers      int
}

func NewRandomForest(nTrees, maxDepth, minSamplesSplit, minSamplesLeaf int, classWeight string, seed int64) *RandomForest {
	if nTrees <= 0 {
		nTrees = 100
	}
	if classWeight == "" {
		classWeight = WeightNone
	}

	return &RandomForest{
		NTrees:          nTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  minSamplesLeaf,
		ClassWeight:     classWeight,
		Seed:            seed,
		Parallel:        true,
		MaxWorkers:      4,
		BaseModel: BaseModel{
			Name: "RandomForest",
			Params: map[string]any{
				"n_trees":           nTrees,
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
				"min_samples_leaf":  minSamplesLeaf,
				"class_weight":      classWeight,
				"seed":              seed,
			},
		},
	}
}

func (rf *RandomForest) Clone() Model {
	return NewRandomForest(rf.NTrees, rf.MaxDepth, rf.MinSamplesSplit, rf.MinSamplesLeaf, rf.ClassWeight, rf.Seed)
}

func (rf *RandomForest) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit on empty dataset")
	}

	rf.Classes = ExtractClasses(y)
	rf.NumFeatures = len(X[0])

	rf.MaxFeatures = int(math.Sqrt(float64(rf.NumFeatures)))
	if rf.MaxFeatures < 1 {
		rf.MaxFeatures = 1
	}

	rf.Trees = make([]*DecisionTree, rf.NTrees)
	rf.FeatureIndices = make([][]int, rf.NTrees)

	if rf.Parallel {
		return rf.trainParallel(X, y)
	}
	return rf.trainSequential(X, y)
}

func (rf *RandomForest) trainParallel(X [][]decimal.Decimal, y []int) error {
	var wg sync.WaitGroup
	errors := make([]error, rf.NTrees)

	workers := rf.MaxWorkers
	if workers > rf.NTrees {
		workers = rf.NTrees
	}

	jobs := make(chan int, rf.NTrees)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tree, features, err := rf.trainSingleTree(X, y, i)
				rf.Trees[i] = tree
				rf.FeatureIndices[i] = features
				errors[i] = err
			}
		}()
	}

	for i := 0; i < rf.NTrees; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	for i, err := range errors {
		if err != nil {
			return fmt.Errorf("tree %d training failed: %w", i, err)
		}
	}

	return nil
}

func (rf *RandomForest) trainSequential(X [][]decimal.Decimal, y []int) error {
	for i := 0; i < rf.NTrees; i++ {
		tree, features, err := rf.trainSingleTree(X, y, i)
		if err != nil {
			return err
		}
		rf.Trees[i] = tree
		rf.FeatureIndices[i] = features
	}
	return nil
}

func (rf *RandomForest) trainSingleTree(X [][]decimal.Decimal, y []int, treeIndex int) (*DecisionTree, []int, error) {
	r := rand.New(rand.NewSource(rf.Seed + int64(treeIndex)))

	n := len(X)
	XBoot := make([][]decimal.Decimal, n)
	yBoot := make([]int, n)

	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = X[idx]
		yBoot[i] = y[idx]
	}

	features := rf.selectRandomFeatures(rf.NumFeatures, r)

	XSelected := make([][]decimal.Decimal, n)
	for i := range XBoot {
		XSelected[i] = make([]decimal.Decimal, len(features))
		for j, feat := range features {
			XSelected[i][j] = XBoot[i][feat]
		}
	}

	tree := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit, rf.MinSamplesLeaf, rf.ClassWeight)
	err := tree.Fit(XSelected, yBoot)

	return tree, features, err
}

func (rf *RandomForest) selectRandomFeatures(nFeatures int, r *rand.Rand) []int {
	features := make([]int, nFeatures)
	for i := range features {
		features[i] = i
	}

	for i := 0; i < rf.MaxFeatures && i < nFeatures; i++ {
		j := i + r.Intn(nFeatures-i)
		features[i], features[j] = features[j], features[i]
	}

	return features[:rf.MaxFeatures]
}

func (rf *RandomForest) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range X {
		votes := make(map[int]int)
		for j, tree := range rf.Trees {
			votes[rf.treeVote(sample, j, tree)]++
		}

		maxVotes := -1
		bestClass := 0
		for _, class := range rf.Classes {
			if votes[class] > maxVotes {
				maxVotes = votes[class]
				bestClass = class
			}
		}

		predictions[i] = bestClass
	}

	return predictions
}

// PredictProba reports the fraction of trees voting for each class, in
// ascending class order.
func (rf *RandomForest) PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal {
	proba := make([][]decimal.Decimal, len(X))
	nTrees := decimal.NewFromInt(int64(rf.NTrees))

	for i, sample := range X {
		votes := make(map[int]int)
		for j, tree := range rf.Trees {
			votes[rf.treeVote(sample, j, tree)]++
		}

		proba[i] = make([]decimal.Decimal, len(rf.Classes))
		for j, class := range rf.Classes {
			proba[i][j] = decimal.NewFromInt(int64(votes[class])).Div(nTrees)
		}
	}

	return proba
}

func (rf *RandomForest) treeVote(sample []decimal.Decimal, treeIndex int, tree *DecisionTree) int {
	selected := make([]decimal.Decimal, len(rf.FeatureIndices[treeIndex]))
	for k, feat := range rf.FeatureIndices[treeIndex] {
		selected[k] = sample[feat]
	}
	return tree.Predict([][]decimal.Decimal{selected})[0]
}

// FeatureImportances averages each tree's mean-decrease-impurity over
// the whole forest, mapping tree-local feature indices back to the
// design-matrix columns, and normalizes the result to sum to one.
func (rf *RandomForest) FeatureImportances() []float64 {
	importances := make([]float64, rf.NumFeatures)
	if len(rf.Trees) == 0 {
		return importances
	}

	for j, tree := range rf.Trees {
		treeImportances := tree.FeatureImportances()
		for local, global := range rf.FeatureIndices[j] {
			importances[global] += treeImportances[local]
		}
	}

	total := 0.0
	for _, imp := range importances {
		total += imp
	}
	if total > 0 {
		for i := range importances {
			importances[i] /= total
		}
	}

	return importances
}
