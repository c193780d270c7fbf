package preprocessing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	bmiUnderweight = decimal.NewFromFloat(18.5)
	bmiNormal      = decimal.NewFromFloat(24.9)
	bmiOverweight  = decimal.NewFromFloat(29.9)

	symptomWeight   = decimal.NewFromInt(2)
	cognitiveWeight = decimal.NewFromFloat(1.5)
	weaknessWeight  = decimal.NewFromFloat(1.5)
	weaknessCeiling = decimal.NewFromInt(5)
)

// DeriveFeatures augments an encoded feature map with the four derived
// columns. It is a pure function of fields already present in the map
// and is the single implementation shared by the training batch path
// and the single-record inference path; the two must never diverge.
func DeriveFeatures(features map[string]decimal.Decimal) error {
	required := []string{
		ColBMI,
		ColAge,
		ColALSFRSRScore,
		ColFVCPercent,
		ColSpeechDifficulty,
		ColRespiratoryIssues,
		ColCognitiveDecline,
		ColMuscleWeakness,
	}
	for _, col := range required {
		if _, ok := features[col]; !ok {
			return fmt.Errorf("cannot derive features: missing column %q", col)
		}
	}

	features[ColBMICategory] = bmiCategory(features[ColBMI])
	features[ColAgeALSFRS] = features[ColAge].Mul(features[ColALSFRSRScore])
	features[ColFVCBMI] = features[ColFVCPercent].Mul(features[ColBMI])
	features[ColSeverityIndex] = severityIndex(
		features[ColSpeechDifficulty],
		features[ColRespiratoryIssues],
		features[ColCognitiveDecline],
		features[ColMuscleWeakness],
	)

	return nil
}

// DeriveBatch applies DeriveFeatures to every record in place.
func DeriveBatch(records []map[string]decimal.Decimal) error {
	for i, record := range records {
		if err := DeriveFeatures(record); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// bmiCategory buckets BMI into the standard ordinal categories:
// underweight (<18.5) = 0, normal = 1, overweight = 2, obese (>=29.9) = 3.
func bmiCategory(bmi decimal.Decimal) decimal.Decimal {
	switch {
	case bmi.LessThan(bmiUnderweight):
		return decimal.Zero
	case bmi.LessThan(bmiNormal):
		return decimal.NewFromInt(1)
	case bmi.LessThan(bmiOverweight):
		return decimal.NewFromInt(2)
	default:
		return decimal.NewFromInt(3)
	}
}

// severityIndex is the fixed linear composite
// 2*speech + 2*respiratory + 1.5*cognitive + 1.5*(5 - muscleWeakness),
// computed over already-encoded values.
func severityIndex(speech, respiratory, cognitive, muscleWeakness decimal.Decimal) decimal.Decimal {
	severity := symptomWeight.Mul(speech)
	severity = severity.Add(symptomWeight.Mul(respiratory))
	severity = severity.Add(cognitiveWeight.Mul(cognitive))
	severity = severity.Add(weaknessWeight.Mul(weaknessCeiling.Sub(muscleWeakness)))
	return severity
}
