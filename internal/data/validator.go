package data

import (
	"fmt"

	"github.com/shopspring/decimal"

	"alsclassifier/internal/preprocessing"
)

var (
	alsfrsMin = decimal.Zero
	alsfrsMax = decimal.NewFromInt(48)

	weaknessMin = decimal.NewFromInt(1)
	weaknessMax = decimal.NewFromInt(5)
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

// ValidateRecord checks the clinical domain ranges of a single record.
// Bounds are inclusive: ALSFRS-R 0..48, muscle weakness 1..5.
func (dv *DataValidator) ValidateRecord(r *RawRecord) error {
	if r.ALSFRSRScore.LessThan(alsfrsMin) || r.ALSFRSRScore.GreaterThan(alsfrsMax) {
		return preprocessing.NewValidationError(preprocessing.ColALSFRSRScore,
			"value %s out of range [0, 48]", r.ALSFRSRScore)
	}

	if r.MuscleWeaknessScore.LessThan(weaknessMin) || r.MuscleWeaknessScore.GreaterThan(weaknessMax) {
		return preprocessing.NewValidationError(preprocessing.ColMuscleWeakness,
			"value %s out of range [1, 5]", r.MuscleWeaknessScore)
	}

	if !r.Age.IsPositive() {
		return preprocessing.NewValidationError(preprocessing.ColAge,
			"value %s must be positive", r.Age)
	}

	if !r.BMI.IsPositive() {
		return preprocessing.NewValidationError(preprocessing.ColBMI,
			"value %s must be positive", r.BMI)
	}

	if !r.FVCPercent.IsPositive() {
		return preprocessing.NewValidationError(preprocessing.ColFVCPercent,
			"value %s must be positive", r.FVCPercent)
	}

	return nil
}

// ValidateRecords validates every record in a training batch.
func (dv *DataValidator) ValidateRecords(records []RawRecord) error {
	for i := range records {
		if err := dv.ValidateRecord(&records[i]); err != nil {
			return fmt.Errorf("record %d (%s): %w", i, records[i].PatientID, err)
		}
	}
	return nil
}

// ValidateDataset checks structural consistency of a design matrix.
func (dv *DataValidator) ValidateDataset(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
	}

	return nil
}

// ValidateLabels requires both outcome classes to be present; a
// single-class dataset cannot train a classifier.
func (dv *DataValidator) ValidateLabels(y []int) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}

	classCount := make(map[int]int)
	for _, label := range y {
		classCount[label]++
	}

	if len(classCount) < 2 {
		return fmt.Errorf("dataset must have at least 2 classes, found %d", len(classCount))
	}

	return nil
}
