package data

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alsclassifier/internal/preprocessing"
)

func validRecord() RawRecord {
	return RawRecord{
		PatientID:           "P001",
		Age:                 decimal.NewFromInt(58),
		Gender:              "Male",
		ALSFRSRScore:        decimal.NewFromInt(36),
		OnsetDurationMonths: decimal.NewFromInt(14),
		FVCPercent:          decimal.NewFromInt(82),
		MuscleWeaknessScore: decimal.NewFromInt(3),
		SpeechDifficulty:    "Yes",
		RespiratoryIssues:   "No",
		CognitiveDecline:    "No",
		BMI:                 decimal.NewFromFloat(24.5),
		Creatinine:          decimal.NewFromFloat(1.1),
		BloodPressure:       "120/80",
		Diagnosis:           "ALS",
	}
}

func TestValidateRecordAcceptsBoundaryValues(t *testing.T) {
	validator := NewDataValidator()

	record := validRecord()
	record.ALSFRSRScore = decimal.Zero
	record.MuscleWeaknessScore = decimal.NewFromInt(1)
	assert.NoError(t, validator.ValidateRecord(&record))

	record.ALSFRSRScore = decimal.NewFromInt(48)
	record.MuscleWeaknessScore = decimal.NewFromInt(5)
	assert.NoError(t, validator.ValidateRecord(&record))
}

func TestValidateRecordRejectsOutOfRangeValues(t *testing.T) {
	validator := NewDataValidator()

	cases := []struct {
		name   string
		field  string
		mutate func(*RawRecord)
	}{
		{"alsfrs below range", preprocessing.ColALSFRSRScore,
			func(r *RawRecord) { r.ALSFRSRScore = decimal.NewFromInt(-1) }},
		{"alsfrs above range", preprocessing.ColALSFRSRScore,
			func(r *RawRecord) { r.ALSFRSRScore = decimal.NewFromInt(49) }},
		{"weakness below range", preprocessing.ColMuscleWeakness,
			func(r *RawRecord) { r.MuscleWeaknessScore = decimal.Zero }},
		{"weakness above range", preprocessing.ColMuscleWeakness,
			func(r *RawRecord) { r.MuscleWeaknessScore = decimal.NewFromInt(6) }},
		{"zero age", preprocessing.ColAge,
			func(r *RawRecord) { r.Age = decimal.Zero }},
		{"negative bmi", preprocessing.ColBMI,
			func(r *RawRecord) { r.BMI = decimal.NewFromInt(-20) }},
		{"zero fvc", preprocessing.ColFVCPercent,
			func(r *RawRecord) { r.FVCPercent = decimal.Zero }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := validRecord()
			tc.mutate(&record)

			err := validator.ValidateRecord(&record)
			require.Error(t, err)

			var verr *preprocessing.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidateRecordsReportsPatient(t *testing.T) {
	records := []RawRecord{validRecord(), validRecord()}
	records[1].PatientID = "P002"
	records[1].ALSFRSRScore = decimal.NewFromInt(50)

	err := NewDataValidator().ValidateRecords(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "P002")
}

func TestValidateDataset(t *testing.T) {
	validator := NewDataValidator()

	X := [][]decimal.Decimal{
		{decimal.NewFromInt(1), decimal.NewFromInt(2)},
		{decimal.NewFromInt(3), decimal.NewFromInt(4)},
	}

	assert.NoError(t, validator.ValidateDataset(X, []int{0, 1}))
	assert.Error(t, validator.ValidateDataset(nil, nil))
	assert.Error(t, validator.ValidateDataset(X, []int{0}))

	ragged := [][]decimal.Decimal{
		{decimal.NewFromInt(1), decimal.NewFromInt(2)},
		{decimal.NewFromInt(3)},
	}
	assert.Error(t, validator.ValidateDataset(ragged, []int{0, 1}))
}

func TestValidateLabels(t *testing.T) {
	validator := NewDataValidator()

	assert.NoError(t, validator.ValidateLabels([]int{0, 1, 0}))
	assert.Error(t, validator.ValidateLabels(nil))
	assert.Error(t, validator.ValidateLabels([]int{1, 1, 1}))
}
