package evaluation

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

type ClassificationMetrics struct {
	Accuracy        float64              `json:"accuracy"`
	ROCAUC          float64              `json:"roc_auc"`
	MacroPrecision  float64              `json:"macro_precision"`
	MacroRecall     float64              `json:"macro_recall"`
	MacroF1         float64              `json:"macro_f1"`
	PerClassMetrics map[int]ClassMetrics `json:"per_class_metrics"`
	ConfusionMatrix [][]int              `json:"confusion_matrix"`
	ClassSupport    map[int]int          `json:"class_support"`
	NumSamples      int                  `json:"num_samples"`
	NumClasses      int                  `json:"num_classes"`
}

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

func CalculateMetrics(yTrue, yPred []int, classes []int) (*ClassificationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("true and predicted labels have different lengths: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("cannot compute metrics on empty labels")
	}

	numSamples := len(yTrue)
	numClasses := len(classes)

	confusionMatrix := buildConfusionMatrix(yTrue, yPred, classes)

	classSupport := make(map[int]int)
	for _, class := range yTrue {
		classSupport[class]++
	}

	perClassMetrics := make(map[int]ClassMetrics)
	var macroPrec, macroRec, macroF1 float64

	for i, class := range classes {
		tp := confusionMatrix[i][i]
		fp := 0
		fn := 0

		for j := range classes {
			if j != i {
				fp += confusionMatrix[j][i]
				fn += confusionMatrix[i][j]
			}
		}

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		f1 := safeDivide(2*precision*recall, precision+recall)

		perClassMetrics[class] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1Score:   f1,
			Support:   classSupport[class],
		}

		macroPrec += precision
		macroRec += recall
		macroF1 += f1
	}

	macroPrec /= float64(numClasses)
	macroRec /= float64(numClasses)
	macroF1 /= float64(numClasses)

	correct := 0
	for i, pred := range yPred {
		if pred == yTrue[i] {
			correct++
		}
	}

	return &ClassificationMetrics{
		Accuracy:        float64(correct) / float64(numSamples),
		MacroPrecision:  macroPrec,
		MacroRecall:     macroRec,
		MacroF1:         macroF1,
		PerClassMetrics: perClassMetrics,
		ConfusionMatrix: confusionMatrix,
		ClassSupport:    classSupport,
		NumSamples:      numSamples,
		NumClasses:      numClasses,
	}, nil
}

// ROCAUC computes area under the ROC curve for the positive class given
// its predicted probabilities, using the trapezoidal rule over the
// curve from stat.ROC.
func ROCAUC(yTrue []int, scores []float64, positiveClass int) (float64, error) {
	if len(yTrue) != len(scores) {
		return 0, fmt.Errorf("labels and scores have different lengths: %d vs %d", len(yTrue), len(scores))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("cannot compute ROC-AUC on empty labels")
	}

	positives := 0
	for _, label := range yTrue {
		if label == positiveClass {
			positives++
		}
	}
	if positives == 0 || positives == len(yTrue) {
		return 0, fmt.Errorf("ROC-AUC is undefined with a single class present")
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] < scores[order[b]]
	})

	sortedScores := make([]float64, len(scores))
	classes := make([]bool, len(scores))
	for i, idx := range order {
		sortedScores[i] = scores[idx]
		classes[i] = yTrue[idx] == positiveClass
	}

	tpr, fpr, _ := stat.ROC(nil, sortedScores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

func buildConfusionMatrix(yTrue, yPred []int, classes []int) [][]int {
	numClasses := len(classes)
	matrix := make([][]int, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}

	classToIdx := make(map[int]int)
	for i, class := range classes {
		classToIdx[class] = i
	}

	for i := range yTrue {
		trueIdx, trueOk := classToIdx[yTrue[i]]
		predIdx, predOk := classToIdx[yPred[i]]
		if trueOk && predOk {
			matrix[trueIdx][predIdx]++
		}
	}

	return matrix
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}

func (m *ClassificationMetrics) FormatMetrics() string {
	result := fmt.Sprintf("Accuracy: %.4f\n", m.Accuracy)
	result += fmt.Sprintf("ROC-AUC: %.4f\n", m.ROCAUC)
	result += fmt.Sprintf("Macro Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		m.MacroPrecision, m.MacroRecall, m.MacroF1)
	return result
}
