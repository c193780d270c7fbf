package training

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alsclassifier/internal/config"
	"alsclassifier/internal/data"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.ReportPath = ""
	cfg.Training.CVFolds = 2
	cfg.Training.Oversampler.KNeighbors = 3
	cfg.Training.Grid = config.GridConfig{
		NTrees:          []int{10},
		MaxDepth:        []int{4, 6},
		MinSamplesSplit: []int{2},
		MinSamplesLeaf:  []int{1},
		ClassWeight:     []string{"none"},
	}
	return cfg
}

// syntheticRecords builds an imbalanced but separable cohort: severe
// presentations labeled ALS, mild ones Non-ALS.
func syntheticRecords(alsCount, nonALSCount int) []data.RawRecord {
	var records []data.RawRecord

	for i := 0; i < alsCount; i++ {
		records = append(records, data.RawRecord{
			PatientID:           "A" + string(rune('0'+i%10)),
			Age:                 decimal.NewFromInt(int64(60 + i%10)),
			Gender:              "Male",
			ALSFRSRScore:        decimal.NewFromInt(int64(20 + i%8)),
			OnsetDurationMonths: decimal.NewFromInt(int64(18 + i%12)),
			FVCPercent:          decimal.NewFromInt(int64(50 + i%10)),
			MuscleWeaknessScore: decimal.NewFromInt(int64(1 + i%2)),
			SpeechDifficulty:    "Yes",
			RespiratoryIssues:   "Yes",
			CognitiveDecline:    "No",
			BMI:                 decimal.NewFromFloat(20.0 + float64(i%5)*0.3),
			Creatinine:          decimal.NewFromFloat(0.7),
			Diagnosis:           "ALS",
		})
	}

	for i := 0; i < nonALSCount; i++ {
		records = append(records, data.RawRecord{
			PatientID:           "N" + string(rune('0'+i%10)),
			Age:                 decimal.NewFromInt(int64(35 + i%10)),
			Gender:              "Female",
			ALSFRSRScore:        decimal.NewFromInt(int64(40 + i%8)),
			OnsetDurationMonths: decimal.NewFromInt(int64(2 + i%6)),
			FVCPercent:          decimal.NewFromInt(int64(90 + i%10)),
			MuscleWeaknessScore: decimal.NewFromInt(int64(4 + i%2)),
			SpeechDifficulty:    "No",
			RespiratoryIssues:   "No",
			CognitiveDecline:    "No",
			BMI:                 decimal.NewFromFloat(23.0 + float64(i%5)*0.3),
			Creatinine:          decimal.NewFromFloat(0.9),
			Diagnosis:           "Non-ALS",
		})
	}

	return records
}

func TestTrainFullPipeline(t *testing.T) {
	trainer := NewTrainer(testConfig(), testLogger())

	result, err := trainer.Train(syntheticRecords(24, 16), "synthetic.csv")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Greater(t, result.TrainingTime.Nanoseconds(), int64(0))

	// Separable cohort: the holdout should be classified cleanly.
	assert.Greater(t, result.Metrics.Accuracy, 0.8)
	assert.Greater(t, result.Metrics.ROCAUC, 0.9)
	assert.LessOrEqual(t, result.Metrics.ROCAUC, 1.0)

	require.NotNil(t, result.Bundle)
	assert.NotNil(t, result.Bundle.Model)
	assert.NotNil(t, result.Bundle.Scaler)
	assert.NotNil(t, result.Bundle.Schema)
	assert.Equal(t, result.RunID, result.Bundle.Metadata.RunID)
	assert.Equal(t, "synthetic.csv", result.Bundle.Metadata.Dataset)
	assert.Equal(t, result.Metrics.Accuracy, result.Bundle.Metadata.Accuracy)
}

func TestTrainEvaluatesWholeGrid(t *testing.T) {
	cfg := testConfig()
	trainer := NewTrainer(cfg, testLogger())

	result, err := trainer.Train(syntheticRecords(24, 16), "synthetic.csv")
	require.NoError(t, err)

	require.Len(t, result.GridResults, len(ExpandGrid(cfg.Training.Grid)))

	found := false
	for _, gr := range result.GridResults {
		if gr.Params == result.BestParams {
			found = true
		}
		assert.GreaterOrEqual(t, gr.AUCMean, 0.0)
		assert.LessOrEqual(t, gr.AUCMean, 1.0)
	}
	assert.True(t, found, "best params must come from the grid")
}

func TestTrainImportancesFollowSchema(t *testing.T) {
	trainer := NewTrainer(testConfig(), testLogger())

	result, err := trainer.Train(syntheticRecords(24, 16), "synthetic.csv")
	require.NoError(t, err)

	require.Len(t, result.Importances, 15)
	assert.Equal(t, result.Bundle.Schema.Columns[0], result.Importances[0].Column)

	total := 0.0
	for _, imp := range result.Importances {
		assert.GreaterOrEqual(t, imp.Weight, 0.0)
		total += imp.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestTrainIsDeterministicForSeed(t *testing.T) {
	records := syntheticRecords(24, 16)

	first, err := NewTrainer(testConfig(), testLogger()).Train(records, "synthetic.csv")
	require.NoError(t, err)
	second, err := NewTrainer(testConfig(), testLogger()).Train(records, "synthetic.csv")
	require.NoError(t, err)

	assert.Equal(t, first.BestParams, second.BestParams)
	assert.Equal(t, first.Metrics.Accuracy, second.Metrics.Accuracy)
	assert.Equal(t, first.Metrics.ROCAUC, second.Metrics.ROCAUC)
	assert.Equal(t, first.CVScores.AUCs, second.CVScores.AUCs)
}

func TestTrainRejectsSingleClassData(t *testing.T) {
	trainer := NewTrainer(testConfig(), testLogger())

	_, err := trainer.Train(syntheticRecords(20, 0), "synthetic.csv")
	assert.Error(t, err)
}

func TestTrainRejectsInvalidRecords(t *testing.T) {
	records := syntheticRecords(24, 16)
	records[3].ALSFRSRScore = decimal.NewFromInt(55)

	_, err := NewTrainer(testConfig(), testLogger()).Train(records, "synthetic.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestTrainRejectsUnknownDiagnosis(t *testing.T) {
	records := syntheticRecords(24, 16)
	records[0].Diagnosis = "Possible-ALS"

	_, err := NewTrainer(testConfig(), testLogger()).Train(records, "synthetic.csv")
	assert.Error(t, err)
}
