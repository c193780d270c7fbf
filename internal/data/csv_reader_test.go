package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alsclassifier/internal/preprocessing"
)

const datasetHeader = "Patient_ID,Age,Gender,ALSFRS_R_Score,Onset_Duration_Months,FVC_Percent," +
	"Muscle_Weakness_Score,Speech_Difficulty,Respiratory_Issues,Cognitive_Decline," +
	"BMI,Creatinine,Blood_Pressure,Diagnosis"

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadRecords(t *testing.T) {
	path := writeDataset(t, datasetHeader+"\n"+
		"P001,58,Male,36,14,82,3,Yes,No,No,24.5,1.1,120/80,ALS\n"+
		"P002,44,Female,45,6,95,5,No,No,No,22.1,0.8,118/76,Non-ALS\n")

	records, err := NewCSVReader(path).LoadRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "P001", first.PatientID)
	assert.Equal(t, "Male", first.Gender)
	assert.Equal(t, "ALS", first.Diagnosis)
	assert.True(t, first.Age.Equal(decimal.NewFromInt(58)))
	assert.True(t, first.BMI.Equal(decimal.NewFromFloat(24.5)))

	second := records[1]
	assert.Equal(t, "Non-ALS", second.Diagnosis)
	assert.True(t, second.ALSFRSRScore.Equal(decimal.NewFromInt(45)))
}

func TestLoadRecordsColumnOrderIndependent(t *testing.T) {
	path := writeDataset(t, "Diagnosis,Age,Patient_ID,Gender,ALSFRS_R_Score,Onset_Duration_Months,"+
		"FVC_Percent,Muscle_Weakness_Score,Speech_Difficulty,Respiratory_Issues,"+
		"Cognitive_Decline,BMI,Creatinine,Blood_Pressure\n"+
		"ALS,58,P001,Male,36,14,82,3,Yes,No,No,24.5,1.1,120/80\n")

	records, err := NewCSVReader(path).LoadRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "P001", records[0].PatientID)
	assert.True(t, records[0].Age.Equal(decimal.NewFromInt(58)))
}

func TestLoadRecordsMissingColumn(t *testing.T) {
	path := writeDataset(t, "Patient_ID,Age,Gender\nP001,58,Male\n")

	_, err := NewCSVReader(path).LoadRecords()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestLoadRecordsNonNumericValue(t *testing.T) {
	path := writeDataset(t, datasetHeader+"\n"+
		"P001,fifty,Male,36,14,82,3,Yes,No,No,24.5,1.1,120/80,ALS\n")

	_, err := NewCSVReader(path).LoadRecords()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "Age")
}

func TestLoadRecordsEmptyDataset(t *testing.T) {
	path := writeDataset(t, datasetHeader+"\n")

	_, err := NewCSVReader(path).LoadRecords()
	assert.Error(t, err)
}

func TestLoadRecordsMissingFile(t *testing.T) {
	_, err := NewCSVReader(filepath.Join(t.TempDir(), "absent.csv")).LoadRecords()
	assert.Error(t, err)
}

func TestRecordFeaturesEncodesCategoricals(t *testing.T) {
	record := validRecord()
	features, err := record.Features()
	require.NoError(t, err)
	require.Len(t, features, 11)

	assert.True(t, features[preprocessing.ColGender].IsZero())
	assert.True(t, features[preprocessing.ColSpeechDifficulty].Equal(decimal.NewFromInt(1)))
	assert.True(t, features[preprocessing.ColRespiratoryIssues].IsZero())
	assert.NotContains(t, features, preprocessing.ColBloodPressure)

	label, err := record.Label()
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestRecordFeaturesRejectsUnknownCategory(t *testing.T) {
	record := validRecord()
	record.SpeechDifficulty = "Sometimes"

	_, err := record.Features()
	assert.Error(t, err)
}
