package preprocessing

import (
	"fmt"
)

// ValidationError reports a record field that failed domain validation,
// either an out-of-range numeric value or an unrecognized categorical
// value. It is surfaced to the caller as-is; nothing retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Categorical vocabularies are fixed at definition time. Matching is
// exact and case-sensitive; an unmapped value is an error, never a
// default code.
var (
	genderCodes = map[string]int{
		"Male":   0,
		"Female": 1,
	}

	flagCodes = map[string]int{
		"No":  0,
		"Yes": 1,
	}

	diagnosisCodes = map[string]int{
		"Non-ALS": 0,
		"ALS":     1,
	}

	diagnosisLabels = map[int]string{
		0: "Non-ALS",
		1: "ALS",
	}
)

func EncodeGender(value string) (int, error) {
	code, ok := genderCodes[value]
	if !ok {
		return 0, NewValidationError(ColGender, "unrecognized value %q (expected Male or Female)", value)
	}
	return code, nil
}

// EncodeFlag maps a yes/no symptom flag to its code. The field name is
// only used for error reporting.
func EncodeFlag(field, value string) (int, error) {
	code, ok := flagCodes[value]
	if !ok {
		return 0, NewValidationError(field, "unrecognized value %q (expected Yes or No)", value)
	}
	return code, nil
}

func EncodeDiagnosis(value string) (int, error) {
	code, ok := diagnosisCodes[value]
	if !ok {
		return 0, NewValidationError(ColDiagnosis, "unrecognized value %q (expected ALS or Non-ALS)", value)
	}
	return code, nil
}

func DecodeDiagnosis(code int) (string, error) {
	label, ok := diagnosisLabels[code]
	if !ok {
		return "", fmt.Errorf("unknown diagnosis code: %d", code)
	}
	return label, nil
}
