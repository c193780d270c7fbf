package preprocessing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Dataset column names. The header names are part of the data contract.
const (
	ColPatientID           = "Patient_ID"
	ColAge                 = "Age"
	ColGender              = "Gender"
	ColALSFRSRScore        = "ALSFRS_R_Score"
	ColOnsetDurationMonths = "Onset_Duration_Months"
	ColFVCPercent          = "FVC_Percent"
	ColMuscleWeakness      = "Muscle_Weakness_Score"
	ColSpeechDifficulty    = "Speech_Difficulty"
	ColRespiratoryIssues   = "Respiratory_Issues"
	ColCognitiveDecline    = "Cognitive_Decline"
	ColBMI                 = "BMI"
	ColCreatinine          = "Creatinine"
	ColBloodPressure       = "Blood_Pressure"
	ColDiagnosis           = "Diagnosis"
)

// Derived column names (see features.go).
const (
	ColBMICategory   = "BMI_Category"
	ColAgeALSFRS     = "Age_ALSFRS"
	ColFVCBMI        = "FVC_BMI"
	ColSeverityIndex = "Severity_Index"
)

// FeatureSchema is the ordered set of columns the classifier was
// trained on. Inference must project onto exactly this set, in this
// order; a missing or extra column is an error rather than a silent
// reorder.
type FeatureSchema struct {
	Columns []string
}

// TrainingSchema returns the design-matrix schema: every dataset column
// except the identifier, the excluded blood-pressure field, and the
// label, followed by the derived features.
func TrainingSchema() *FeatureSchema {
	return &FeatureSchema{
		Columns: []string{
			ColAge,
			ColGender,
			ColALSFRSRScore,
			ColOnsetDurationMonths,
			ColFVCPercent,
			ColMuscleWeakness,
			ColSpeechDifficulty,
			ColRespiratoryIssues,
			ColCognitiveDecline,
			ColBMI,
			ColCreatinine,
			ColBMICategory,
			ColAgeALSFRS,
			ColFVCBMI,
			ColSeverityIndex,
		},
	}
}

func (fs *FeatureSchema) NumColumns() int {
	return len(fs.Columns)
}

// Project orders the feature map into a vector following the schema.
// Every schema column must be present and no others may be.
func (fs *FeatureSchema) Project(features map[string]decimal.Decimal) ([]decimal.Decimal, error) {
	if len(features) != len(fs.Columns) {
		if extra := fs.extraColumns(features); len(extra) > 0 {
			return nil, fmt.Errorf("feature set has %d columns not in schema: %v", len(extra), extra)
		}
	}

	vector := make([]decimal.Decimal, len(fs.Columns))
	for i, col := range fs.Columns {
		value, ok := features[col]
		if !ok {
			return nil, fmt.Errorf("feature set is missing schema column %q", col)
		}
		vector[i] = value
	}

	return vector, nil
}

// ProjectBatch projects every record in the batch, failing on the first
// record that does not match the schema.
func (fs *FeatureSchema) ProjectBatch(records []map[string]decimal.Decimal) ([][]decimal.Decimal, error) {
	X := make([][]decimal.Decimal, len(records))
	for i, record := range records {
		vector, err := fs.Project(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		X[i] = vector
	}
	return X, nil
}

func (fs *FeatureSchema) extraColumns(features map[string]decimal.Decimal) []string {
	known := make(map[string]bool, len(fs.Columns))
	for _, col := range fs.Columns {
		known[col] = true
	}

	var extra []string
	for name := range features {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	return extra
}
