package preprocessing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainingSchemaColumnOrder(t *testing.T) {
	schema := TrainingSchema()

	expected := []string{
		ColAge, ColGender, ColALSFRSRScore, ColOnsetDurationMonths,
		ColFVCPercent, ColMuscleWeakness, ColSpeechDifficulty,
		ColRespiratoryIssues, ColCognitiveDecline, ColBMI, ColCreatinine,
		ColBMICategory, ColAgeALSFRS, ColFVCBMI, ColSeverityIndex,
	}
	assert.Equal(t, expected, schema.Columns)
	assert.Equal(t, 15, schema.NumColumns())

	assert.NotContains(t, schema.Columns, ColPatientID)
	assert.NotContains(t, schema.Columns, ColBloodPressure)
	assert.NotContains(t, schema.Columns, ColDiagnosis)
}

func TestProjectOrdersBySchema(t *testing.T) {
	features := baseFeatures()
	require.NoError(t, DeriveFeatures(features))

	schema := TrainingSchema()
	vector, err := schema.Project(features)
	require.NoError(t, err)
	require.Len(t, vector, schema.NumColumns())

	for i, col := range schema.Columns {
		assert.True(t, vector[i].Equal(features[col]), "position %d (%s)", i, col)
	}
}

func TestProjectMissingColumn(t *testing.T) {
	features := baseFeatures()
	require.NoError(t, DeriveFeatures(features))
	delete(features, ColCreatinine)

	_, err := TrainingSchema().Project(features)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ColCreatinine)
}

func TestProjectExtraColumn(t *testing.T) {
	features := baseFeatures()
	require.NoError(t, DeriveFeatures(features))
	features["Unknown_Marker"] = decimal.NewFromInt(1)

	_, err := TrainingSchema().Project(features)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown_Marker")
}

func TestProjectBatchReportsRecordIndex(t *testing.T) {
	good := baseFeatures()
	require.NoError(t, DeriveFeatures(good))

	bad := baseFeatures()
	require.NoError(t, DeriveFeatures(bad))
	delete(bad, ColAge)

	_, err := TrainingSchema().ProjectBatch([]map[string]decimal.Decimal{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}
