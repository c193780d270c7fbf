package data

import (
	"github.com/shopspring/decimal"

	"alsclassifier/internal/preprocessing"
)

// RawRecord is one patient's fields as collected. Blood pressure is
// carried through loading but excluded from modeling; Diagnosis is
// present only in training data.
type RawRecord struct {
	PatientID           string
	Age                 decimal.Decimal
	Gender              string
	ALSFRSRScore        decimal.Decimal
	OnsetDurationMonths decimal.Decimal
	FVCPercent          decimal.Decimal
	MuscleWeaknessScore decimal.Decimal
	SpeechDifficulty    string
	RespiratoryIssues   string
	CognitiveDecline    string
	BMI                 decimal.Decimal
	Creatinine          decimal.Decimal
	BloodPressure       string
	Diagnosis           string
}

// Features encodes the categorical fields and assembles the base
// modeling columns. Derived columns are added separately by
// preprocessing.DeriveFeatures so the batch and single-record paths
// share one derivation.
func (r *RawRecord) Features() (map[string]decimal.Decimal, error) {
	gender, err := preprocessing.EncodeGender(r.Gender)
	if err != nil {
		return nil, err
	}
	speech, err := preprocessing.EncodeFlag(preprocessing.ColSpeechDifficulty, r.SpeechDifficulty)
	if err != nil {
		return nil, err
	}
	respiratory, err := preprocessing.EncodeFlag(preprocessing.ColRespiratoryIssues, r.RespiratoryIssues)
	if err != nil {
		return nil, err
	}
	cognitive, err := preprocessing.EncodeFlag(preprocessing.ColCognitiveDecline, r.CognitiveDecline)
	if err != nil {
		return nil, err
	}

	return map[string]decimal.Decimal{
		preprocessing.ColAge:                 r.Age,
		preprocessing.ColGender:              decimal.NewFromInt(int64(gender)),
		preprocessing.ColALSFRSRScore:        r.ALSFRSRScore,
		preprocessing.ColOnsetDurationMonths: r.OnsetDurationMonths,
		preprocessing.ColFVCPercent:          r.FVCPercent,
		preprocessing.ColMuscleWeakness:      r.MuscleWeaknessScore,
		preprocessing.ColSpeechDifficulty:    decimal.NewFromInt(int64(speech)),
		preprocessing.ColRespiratoryIssues:   decimal.NewFromInt(int64(respiratory)),
		preprocessing.ColCognitiveDecline:    decimal.NewFromInt(int64(cognitive)),
		preprocessing.ColBMI:                 r.BMI,
		preprocessing.ColCreatinine:          r.Creatinine,
	}, nil
}

// Label encodes the diagnosis column.
func (r *RawRecord) Label() (int, error) {
	return preprocessing.EncodeDiagnosis(r.Diagnosis)
}
