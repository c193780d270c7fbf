package models

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type TreeNode struct {
	IsLeaf           bool
	Class            int
	Feature          int
	Threshold        decimal.Decimal
	Left             *TreeNode
	Right            *TreeNode
	Samples          int
	Impurity         float64
	ImpurityDecrease float64
}

// DecisionTree is a CART-style classifier splitting on weighted Gini
// impurity. Class weights bias both the impurity and the leaf vote, so
// a balanced tree does not collapse onto the majority class.
type DecisionTree struct {
	BaseModel
	Root            *TreeNode
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	ClassWeight     string
	NumFeatures     int
	Weights         map[int]float64
}

func NewDecisionTree(maxDepth, minSamplesSplit, minSamplesLeaf int, classWeight string) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}
	if minSamplesSplit <= 0 {
		minSamplesSplit = 2
	}
	if minSamplesLeaf <= 0 {
		minSamplesLeaf = 1
	}
	if classWeight == "" {
		classWeight = WeightNone
	}

	return &DecisionTree{
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		MinSamplesLeaf:  minSamplesLeaf,
		ClassWeight:     classWeight,
		BaseModel: BaseModel{
			Name: "DecisionTree",
			Params: map[string]any{
				"max_depth":         maxDepth,
				"min_samples_split": minSamplesSplit,
				"min_samples_leaf":  minSamplesLeaf,
				"class_weight":      classWeight,
			},
		},
	}
}

func (dt *DecisionTree) Clone() Model {
	return NewDecisionTree(dt.MaxDepth, dt.MinSamplesSplit, dt.MinSamplesLeaf, dt.ClassWeight)
}

func (dt *DecisionTree) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit on empty dataset")
	}

	dt.Classes = ExtractClasses(y)
	dt.NumFeatures = len(X[0])
	dt.Weights = classWeights(y, dt.ClassWeight)
	dt.Root = dt.buildTree(X, y, 0)
	return nil
}

func (dt *DecisionTree) buildTree(X [][]decimal.Decimal, y []int, depth int) *TreeNode {
	node := &TreeNode{
		Samples:  len(y),
		Impurity: dt.weightedGini(y),
	}

	if depth >= dt.MaxDepth ||
		len(y) < dt.MinSamplesSplit ||
		dt.isPure(y) {
		node.IsLeaf = true
		node.Class = dt.majorityClass(y)
		return node
	}

	bestFeature, bestThreshold, bestDecrease := dt.findBestSplit(X, y)
	if bestDecrease <= 0 {
		node.IsLeaf = true
		node.Class = dt.majorityClass(y)
		return node
	}

	node.Feature = bestFeature
	node.Threshold = bestThreshold
	node.ImpurityDecrease = bestDecrease

	leftIndices, rightIndices := dt.splitData(X, bestFeature, bestThreshold)
	if len(leftIndices) < dt.MinSamplesLeaf || len(rightIndices) < dt.MinSamplesLeaf {
		node.IsLeaf = true
		node.Class = dt.majorityClass(y)
		return node
	}

	XLeft, yLeft := dt.selectData(X, y, leftIndices)
	XRight, yRight := dt.selectData(X, y, rightIndices)

	node.Left = dt.buildTree(XLeft, yLeft, depth+1)
	node.Right = dt.buildTree(XRight, yRight, depth+1)

	return node
}

func (dt *DecisionTree) findBestSplit(X [][]decimal.Decimal, y []int) (int, decimal.Decimal, float64) {
	bestFeature := 0
	bestThreshold := decimal.Zero
	bestDecrease := 0.0

	parentImpurity := dt.weightedGini(y)
	parentWeight := dt.totalWeight(y)

	for feature := range X[0] {
		for _, threshold := range dt.sortedUniqueValues(X, feature) {
			leftIndices, rightIndices := dt.splitData(X, feature, threshold)
			if len(leftIndices) < dt.MinSamplesLeaf || len(rightIndices) < dt.MinSamplesLeaf {
				continue
			}

			yLeft := make([]int, len(leftIndices))
			for i, idx := range leftIndices {
				yLeft[i] = y[idx]
			}
			yRight := make([]int, len(rightIndices))
			for i, idx := range rightIndices {
				yRight[i] = y[idx]
			}

			leftWeight := dt.totalWeight(yLeft)
			rightWeight := dt.totalWeight(yRight)

			weightedImpurity := (leftWeight/parentWeight)*dt.weightedGini(yLeft) +
				(rightWeight/parentWeight)*dt.weightedGini(yRight)

			decrease := parentImpurity - weightedImpurity
			if decrease > bestDecrease {
				bestDecrease = decrease
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestDecrease
}

func (dt *DecisionTree) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))
	for i, sample := range X {
		predictions[i] = dt.predictSample(sample, dt.Root)
	}
	return predictions
}

func (dt *DecisionTree) PredictProba(X [][]decimal.Decimal) [][]decimal.Decimal {
	proba := make([][]decimal.Decimal, len(X))
	for i, sample := range X {
		prediction := dt.predictSample(sample, dt.Root)
		proba[i] = make([]decimal.Decimal, len(dt.Classes))
		for j, class := range dt.Classes {
			if class == prediction {
				proba[i][j] = decimal.NewFromInt(1)
			} else {
				proba[i][j] = decimal.Zero
			}
		}
	}
	return proba
}

func (dt *DecisionTree) predictSample(sample []decimal.Decimal, node *TreeNode) int {
	if node.IsLeaf {
		return node.Class
	}
	if sample[node.Feature].LessThan(node.Threshold) {
		return dt.predictSample(sample, node.Left)
	}
	return dt.predictSample(sample, node.Right)
}

// FeatureImportances returns the normalized mean-decrease-impurity per
// feature: each internal node contributes its impurity decrease scaled
// by the fraction of samples that reached it.
func (dt *DecisionTree) FeatureImportances() []float64 {
	importances := make([]float64, dt.NumFeatures)
	if dt.Root == nil {
		return importances
	}

	dt.accumulateImportances(dt.Root, importances)

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

func (dt *DecisionTree) accumulateImportances(node *TreeNode, importances []float64) {
	if node == nil || node.IsLeaf {
		return
	}
	importances[node.Feature] += float64(node.Samples) / float64(dt.Root.Samples) * node.ImpurityDecrease
	dt.accumulateImportances(node.Left, importances)
	dt.accumulateImportances(node.Right, importances)
}

func (dt *DecisionTree) weightedGini(y []int) float64 {
	if len(y) == 0 {
		return 0.0
	}

	classCounts := make(map[int]int)
	for _, class := range y {
		classCounts[class]++
	}

	total := dt.totalWeight(y)
	impurity := 1.0
	for class, count := range classCounts {
		p := dt.weightOf(class) * float64(count) / total
		impurity -= p * p
	}
	return impurity
}

func (dt *DecisionTree) totalWeight(y []int) float64 {
	total := 0.0
	for _, class := range y {
		total += dt.weightOf(class)
	}
	return total
}

func (dt *DecisionTree) weightOf(class int) float64 {
	if w, ok := dt.Weights[class]; ok {
		return w
	}
	return 1.0
}

func (dt *DecisionTree) isPure(y []int) bool {
	if len(y) == 0 {
		return true
	}
	first := y[0]
	for _, class := range y {
		if class != first {
			return false
		}
	}
	return true
}

// majorityClass is the weighted majority vote; ties break toward the
// smaller class code so fits are deterministic.
func (dt *DecisionTree) majorityClass(y []int) int {
	if len(y) == 0 {
		return 0
	}

	classCounts := make(map[int]int)
	for _, class := range y {
		classCounts[class]++
	}

	best := y[0]
	bestVote := -1.0
	for _, class := range ExtractClasses(y) {
		vote := dt.weightOf(class) * float64(classCounts[class])
		if vote > bestVote {
			bestVote = vote
			best = class
		}
	}
	return best
}

func (dt *DecisionTree) sortedUniqueValues(X [][]decimal.Decimal, feature int) []decimal.Decimal {
	valueMap := make(map[string]decimal.Decimal)
	for _, sample := range X {
		valueMap[sample[feature].String()] = sample[feature]
	}

	values := make([]decimal.Decimal, 0, len(valueMap))
	for _, value := range valueMap {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].LessThan(values[j])
	})
	return values
}

func (dt *DecisionTree) splitData(X [][]decimal.Decimal, feature int, threshold decimal.Decimal) ([]int, []int) {
	var leftIndices, rightIndices []int
	for i, sample := range X {
		if sample[feature].LessThan(threshold) {
			leftIndices = append(leftIndices, i)
		} else {
			rightIndices = append(rightIndices, i)
		}
	}
	return leftIndices, rightIndices
}

func (dt *DecisionTree) selectData(X [][]decimal.Decimal, y []int, indices []int) ([][]decimal.Decimal, []int) {
	selectedX := make([][]decimal.Decimal, len(indices))
	selectedY := make([]int, len(indices))
	for i, idx := range indices {
		selectedX[i] = X[idx]
		selectedY[i] = y[idx]
	}
	return selectedX, selectedY
}
