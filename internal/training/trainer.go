package training

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"alsclassifier/internal/config"
	"alsclassifier/internal/data"
	"alsclassifier/internal/evaluation"
	"alsclassifier/internal/models"
	"alsclassifier/internal/persistence"
	"alsclassifier/internal/preprocessing"
)

// PositiveClass is the encoded ALS outcome; probabilities and ROC-AUC
// are computed against it.
const PositiveClass = 1

type Trainer struct {
	cfg *config.Config
	log *logrus.Logger
}

// FeatureImportance pairs a schema column with its weight in the fitted
// forest.
type FeatureImportance struct {
	Column string
	Weight float64
}

// GridResult is the cross-validated score of one grid combination.
type GridResult struct {
	Params  ParamSet
	AUCMean float64
}

// Result is the immutable outcome of one training run.
type Result struct {
	RunID        string
	Bundle       *persistence.ModelBundle
	Metrics      *evaluation.ClassificationMetrics
	CVScores     *evaluation.CVScores
	BestParams   ParamSet
	GridResults  []GridResult
	Importances  []FeatureImportance
	TrainingTime time.Duration
}

func NewTrainer(cfg *config.Config, log *logrus.Logger) *Trainer {
	return &Trainer{cfg: cfg, log: log}
}

// Train runs the full pipeline: encode + derive features, stratified
// split, scale (fit on the training split only), oversample the
// training split, grid-search with cross-validation scored by ROC-AUC,
// refit the best configuration, and evaluate against the untouched
// holdout. No fallback model is produced on failure.
func (t *Trainer) Train(records []data.RawRecord, datasetName string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	tc := t.cfg.Training

	t.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"dataset": datasetName,
		"records": len(records),
	}).Info("starting training run")

	validator := data.NewDataValidator()
	if err := validator.ValidateRecords(records); err != nil {
		return nil, fmt.Errorf("training data validation failed: %w", err)
	}

	X, y, schema, err := buildDesignMatrix(records)
	if err != nil {
		return nil, err
	}

	if err := validator.ValidateDataset(X, y); err != nil {
		return nil, fmt.Errorf("training data validation failed: %w", err)
	}
	if err := validator.ValidateLabels(y); err != nil {
		return nil, fmt.Errorf("training data validation failed: %w", err)
	}

	splitter := evaluation.NewTrainTestSplitter(tc.TestSize, tc.Seed, true)
	XTrain, XTest, yTrain, yTest, err := splitter.StratifiedSplit(X, y)
	if err != nil {
		return nil, fmt.Errorf("failed to split data: %w", err)
	}

	scaler := preprocessing.NewScaler(preprocessing.ScaleStandard)
	XTrainScaled, err := scaler.FitTransform(XTrain)
	if err != nil {
		return nil, fmt.Errorf("scaling failed: %w", err)
	}
	XTestScaled, err := scaler.Transform(XTest)
	if err != nil {
		return nil, fmt.Errorf("scaling failed: %w", err)
	}

	oversampler := preprocessing.NewOversampler(tc.Oversampler.KNeighbors, tc.Seed)
	XBalanced, yBalanced, err := oversampler.Resample(XTrainScaled, yTrain)
	if err != nil {
		return nil, fmt.Errorf("oversampling failed: %w", err)
	}

	t.log.WithFields(logrus.Fields{
		"run_id":   runID,
		"train":    len(XTrain),
		"balanced": len(XBalanced),
		"holdout":  len(XTest),
	}).Info("training split prepared")

	bestParams, gridResults, cvScores, err := t.searchGrid(XBalanced, yBalanced)
	if err != nil {
		return nil, err
	}

	t.log.WithFields(logrus.Fields{
		"run_id": runID,
		"params": bestParams.String(),
		"cv_auc": cvScores.AUCMean(),
	}).Info("grid search complete")

	model, err := models.CreateModel(models.ModelConfig{
		Algorithm:       "forest",
		NTrees:          bestParams.NTrees,
		MaxDepth:        bestParams.MaxDepth,
		MinSamplesSplit: bestParams.MinSamplesSplit,
		MinSamplesLeaf:  bestParams.MinSamplesLeaf,
		ClassWeight:     bestParams.ClassWeight,
		Seed:            tc.Seed,
	})
	if err != nil {
		return nil, err
	}

	if err := model.Fit(XBalanced, yBalanced); err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	metrics, err := t.evaluateHoldout(model, XTestScaled, yTest)
	if err != nil {
		return nil, err
	}

	importances := schemaImportances(model, schema)

	elapsed := time.Since(start)
	result := &Result{
		RunID: runID,
		Bundle: &persistence.ModelBundle{
			Model:  model,
			Scaler: scaler,
			Schema: schema,
			Metadata: persistence.BundleMetadata{
				RunID:          runID,
				Dataset:        datasetName,
				Accuracy:       metrics.Accuracy,
				ROCAUC:         metrics.ROCAUC,
				CVAccuracyMean: cvScores.AccuracyMean(),
				CVAccuracyStd:  cvScores.AccuracyStd(),
				TrainingTime:   elapsed,
				CreatedAt:      time.Now(),
				Parameters:     model.GetParams(),
			},
		},
		Metrics:      metrics,
		CVScores:     cvScores,
		BestParams:   bestParams,
		GridResults:  gridResults,
		Importances:  importances,
		TrainingTime: elapsed,
	}

	if t.cfg.ReportPath != "" {
		if err := RenderDiagnostics(t.cfg.ReportPath, metrics, importances); err != nil {
			t.log.WithField("run_id", runID).WithError(err).Warn("failed to render diagnostic report")
		}
	}

	t.log.WithFields(logrus.Fields{
		"run_id":   runID,
		"accuracy": metrics.Accuracy,
		"roc_auc":  metrics.ROCAUC,
		"elapsed":  elapsed,
	}).Info("training run complete")

	return result, nil
}

// buildDesignMatrix encodes and derives features for every record and
// projects them onto the training schema.
func buildDesignMatrix(records []data.RawRecord) ([][]decimal.Decimal, []int, *preprocessing.FeatureSchema, error) {
	featureMaps := make([]map[string]decimal.Decimal, len(records))
	y := make([]int, len(records))

	for i := range records {
		features, err := records[i].Features()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("record %d (%s): %w", i, records[i].PatientID, err)
		}
		featureMaps[i] = features

		label, err := records[i].Label()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("record %d (%s): %w", i, records[i].PatientID, err)
		}
		y[i] = label
	}

	if err := preprocessing.DeriveBatch(featureMaps); err != nil {
		return nil, nil, nil, err
	}

	schema := preprocessing.TrainingSchema()
	X, err := schema.ProjectBatch(featureMaps)
	if err != nil {
		return nil, nil, nil, err
	}

	return X, y, schema, nil
}

// searchGrid evaluates every combination with k-fold CV and keeps the
// highest mean AUC; ties resolve to the earlier combination.
func (t *Trainer) searchGrid(X [][]decimal.Decimal, y []int) (ParamSet, []GridResult, *evaluation.CVScores, error) {
	grid := ExpandGrid(t.cfg.Training.Grid)
	cv := evaluation.NewCrossValidator(t.cfg.Training.CVFolds, t.cfg.Training.Seed, PositiveClass)

	var (
		bestParams ParamSet
		bestScores *evaluation.CVScores
		results    = make([]GridResult, 0, len(grid))
	)

	for _, params := range grid {
		candidate, err := models.CreateModel(models.ModelConfig{
			Algorithm:       "forest",
			NTrees:          params.NTrees,
			MaxDepth:        params.MaxDepth,
			MinSamplesSplit: params.MinSamplesSplit,
			MinSamplesLeaf:  params.MinSamplesLeaf,
			ClassWeight:     params.ClassWeight,
			Seed:            t.cfg.Training.Seed,
		})
		if err != nil {
			return ParamSet{}, nil, nil, err
		}

		scores, err := cv.CrossValidate(X, y, candidate)
		if err != nil {
			return ParamSet{}, nil, nil, fmt.Errorf("cross-validation failed for %s: %w", params, err)
		}

		results = append(results, GridResult{Params: params, AUCMean: scores.AUCMean()})

		if bestScores == nil || scores.AUCMean() > bestScores.AUCMean() {
			bestParams = params
			bestScores = scores
		}
	}

	if bestScores == nil {
		return ParamSet{}, nil, nil, fmt.Errorf("hyperparameter grid is empty")
	}

	return bestParams, results, bestScores, nil
}

func (t *Trainer) evaluateHoldout(model models.Model, XTest [][]decimal.Decimal, yTest []int) (*evaluation.ClassificationMetrics, error) {
	predictions := model.Predict(XTest)

	metrics, err := evaluation.CalculateMetrics(yTest, predictions, model.GetClasses())
	if err != nil {
		return nil, fmt.Errorf("holdout evaluation failed: %w", err)
	}

	scores, err := evaluation.PositiveClassScores(model, XTest, PositiveClass)
	if err != nil {
		return nil, fmt.Errorf("holdout evaluation failed: %w", err)
	}

	auc, err := evaluation.ROCAUC(yTest, scores, PositiveClass)
	if err != nil {
		return nil, fmt.Errorf("holdout evaluation failed: %w", err)
	}
	metrics.ROCAUC = auc

	return metrics, nil
}

func schemaImportances(model models.Model, schema *preprocessing.FeatureSchema) []FeatureImportance {
	weights := model.FeatureImportances()
	importances := make([]FeatureImportance, len(schema.Columns))
	for i, column := range schema.Columns {
		importances[i] = FeatureImportance{Column: column, Weight: weights[i]}
	}
	return importances
}
