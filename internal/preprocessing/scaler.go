package preprocessing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	ScaleStandard = "standard"
	ScaleMinMax   = "minmax"
)

// Scaler normalizes feature columns. Fit computes and freezes the
// per-column parameters from the training split only; Transform is a
// pure function of the frozen state. Refitting on test or inference
// data would leak evaluation data into the normalization, so the fitted
// state is never updated after Fit.
type Scaler struct {
	ScaleType   string
	IsFitted    bool
	NumFeatures int
	FeatureMin  []decimal.Decimal
	FeatureMax  []decimal.Decimal
	FeatureMean []decimal.Decimal
	FeatureStd  []decimal.Decimal
}

func NewScaler(scaleType string) *Scaler {
	return &Scaler{
		ScaleType: scaleType,
	}
}

func (s *Scaler) Fit(X [][]decimal.Decimal) error {
	if len(X) == 0 {
		return fmt.Errorf("cannot fit scaler on empty dataset")
	}

	s.NumFeatures = len(X[0])
	for i, row := range X {
		if len(row) != s.NumFeatures {
			return fmt.Errorf("inconsistent column count at row %d: expected %d, got %d", i, s.NumFeatures, len(row))
		}
	}

	switch s.ScaleType {
	case ScaleStandard:
		s.fitStandard(X)
	case ScaleMinMax:
		s.fitMinMax(X)
	default:
		return fmt.Errorf("unknown scale type: %s", s.ScaleType)
	}

	s.IsFitted = true
	return nil
}

func (s *Scaler) Transform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	result := make([][]decimal.Decimal, len(X))
	for i := range X {
		if len(X[i]) != s.NumFeatures {
			return nil, fmt.Errorf("row %d has %d columns, scaler was fitted on %d", i, len(X[i]), s.NumFeatures)
		}

		result[i] = make([]decimal.Decimal, s.NumFeatures)
		for j := range X[i] {
			switch s.ScaleType {
			case ScaleStandard:
				result[i][j] = s.transformStandard(X[i][j], j)
			case ScaleMinMax:
				result[i][j] = s.transformMinMax(X[i][j], j)
			}
		}
	}

	return result, nil
}

func (s *Scaler) FitTransform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func (s *Scaler) fitStandard(X [][]decimal.Decimal) {
	nSamples := decimal.NewFromInt(int64(len(X)))
	s.FeatureMean = make([]decimal.Decimal, s.NumFeatures)
	s.FeatureStd = make([]decimal.Decimal, s.NumFeatures)

	for j := 0; j < s.NumFeatures; j++ {
		sum := decimal.Zero
		for i := range X {
			sum = sum.Add(X[i][j])
		}
		s.FeatureMean[j] = sum.Div(nSamples)
	}

	for j := 0; j < s.NumFeatures; j++ {
		variance := decimal.Zero
		for i := range X {
			diff := X[i][j].Sub(s.FeatureMean[j])
			variance = variance.Add(diff.Mul(diff))
		}
		variance = variance.Div(nSamples)

		varFloat, _ := variance.Float64()
		s.FeatureStd[j] = decimal.NewFromFloat(math.Sqrt(varFloat))

		// Constant columns scale to zero instead of dividing by zero.
		if s.FeatureStd[j].IsZero() {
			s.FeatureStd[j] = decimal.NewFromInt(1)
		}
	}
}

func (s *Scaler) fitMinMax(X [][]decimal.Decimal) {
	s.FeatureMin = make([]decimal.Decimal, s.NumFeatures)
	s.FeatureMax = make([]decimal.Decimal, s.NumFeatures)

	for j := 0; j < s.NumFeatures; j++ {
		s.FeatureMin[j] = X[0][j]
		s.FeatureMax[j] = X[0][j]

		for i := 1; i < len(X); i++ {
			if X[i][j].LessThan(s.FeatureMin[j]) {
				s.FeatureMin[j] = X[i][j]
			}
			if X[i][j].GreaterThan(s.FeatureMax[j]) {
				s.FeatureMax[j] = X[i][j]
			}
		}
	}
}

func (s *Scaler) transformStandard(value decimal.Decimal, featureIndex int) decimal.Decimal {
	return value.Sub(s.FeatureMean[featureIndex]).Div(s.FeatureStd[featureIndex])
}

func (s *Scaler) transformMinMax(value decimal.Decimal, featureIndex int) decimal.Decimal {
	span := s.FeatureMax[featureIndex].Sub(s.FeatureMin[featureIndex])
	if span.IsZero() {
		return decimal.Zero
	}
	return value.Sub(s.FeatureMin[featureIndex]).Div(span)
}
