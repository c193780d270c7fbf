package predict

import (
	"fmt"

	"github.com/shopspring/decimal"

	"alsclassifier/internal/data"
	"alsclassifier/internal/persistence"
	"alsclassifier/internal/preprocessing"
)

// Risk factor thresholds, applied to the raw (pre-scaling) values.
// They are rule-based context for the clinician, independent of the
// classifier's own decision.
var (
	advancedAge    = decimal.NewFromInt(60)
	lowALSFRS      = decimal.NewFromInt(40)
	reducedFVC     = decimal.NewFromInt(80)
	severeWeakness = decimal.NewFromInt(3)
)

type Prediction struct {
	Label       string
	Confidence  float64
	RiskFactors []string
}

// Predictor applies the inference pipeline to one raw record: validate,
// encode, derive, project onto the stored schema, scale with the frozen
// scaler, and query the stored classifier. The bundle is read-only for
// the predictor's lifetime.
type Predictor struct {
	bundle    *persistence.ModelBundle
	validator *data.DataValidator
}

func NewPredictor(bundle *persistence.ModelBundle) (*Predictor, error) {
	if bundle == nil || bundle.Model == nil || bundle.Scaler == nil || bundle.Schema == nil {
		return nil, persistence.ErrBundleAbsent
	}
	return &Predictor{
		bundle:    bundle,
		validator: data.NewDataValidator(),
	}, nil
}

func (p *Predictor) Predict(record *data.RawRecord) (*Prediction, error) {
	if err := p.validator.ValidateRecord(record); err != nil {
		return nil, err
	}

	features, err := record.Features()
	if err != nil {
		return nil, err
	}

	if err := preprocessing.DeriveFeatures(features); err != nil {
		return nil, err
	}

	vector, err := p.bundle.Schema.Project(features)
	if err != nil {
		return nil, fmt.Errorf("record does not match model schema: %w", err)
	}

	scaled, err := p.bundle.Scaler.Transform([][]decimal.Decimal{vector})
	if err != nil {
		return nil, fmt.Errorf("scaling failed: %w", err)
	}

	predicted := p.bundle.Model.Predict(scaled)[0]
	proba := p.bundle.Model.PredictProba(scaled)[0]

	confidence := 0.0
	for i, class := range p.bundle.Model.GetClasses() {
		if class == predicted {
			confidence, _ = proba[i].Float64()
			break
		}
	}

	label, err := preprocessing.DecodeDiagnosis(predicted)
	if err != nil {
		return nil, err
	}

	return &Prediction{
		Label:       label,
		Confidence:  confidence,
		RiskFactors: RiskFactors(record),
	}, nil
}

// Metadata exposes the training metadata of the loaded bundle.
func (p *Predictor) Metadata() persistence.BundleMetadata {
	return p.bundle.Metadata
}

// RiskFactors lists the qualitative thresholds the record crosses.
func RiskFactors(record *data.RawRecord) []string {
	var factors []string

	if record.Age.GreaterThan(advancedAge) {
		factors = append(factors, "Advanced age")
	}
	if record.ALSFRSRScore.LessThan(lowALSFRS) {
		factors = append(factors, "Low ALSFRS-R Score")
	}
	if record.FVCPercent.LessThan(reducedFVC) {
		factors = append(factors, "Reduced lung function")
	}
	if record.MuscleWeaknessScore.LessThanOrEqual(severeWeakness) {
		factors = append(factors, "Significant muscle weakness")
	}

	return factors
}
