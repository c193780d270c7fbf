package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"alsclassifier/internal/preprocessing"
)

// contractColumns are the headers a training dataset must carry. Names
// are matched exactly; a dataset missing any of them is rejected.
var contractColumns = []string{
	preprocessing.ColPatientID,
	preprocessing.ColAge,
	preprocessing.ColGender,
	preprocessing.ColALSFRSRScore,
	preprocessing.ColOnsetDurationMonths,
	preprocessing.ColFVCPercent,
	preprocessing.ColMuscleWeakness,
	preprocessing.ColSpeechDifficulty,
	preprocessing.ColRespiratoryIssues,
	preprocessing.ColCognitiveDecline,
	preprocessing.ColBMI,
	preprocessing.ColCreatinine,
	preprocessing.ColBloodPressure,
	preprocessing.ColDiagnosis,
}

type CSVReader struct {
	filename string
}

func NewCSVReader(filename string) *CSVReader {
	return &CSVReader{filename: filename}
}

// LoadRecords reads the clinical dataset, resolving columns by header
// name. Every contract column must be present; non-numeric values in
// numeric columns are errors rather than silently zeroed.
func (cr *CSVReader) LoadRecords() ([]RawRecord, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", cr.filename)
	}

	columns, err := indexColumns(rows[0])
	if err != nil {
		return nil, err
	}

	records := make([]RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		record, err := parseRecord(row, columns)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, record)
	}

	return records, nil
}

func indexColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range contractColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset is missing required columns: %v", missing)
	}

	return columns, nil
}

func parseRecord(row []string, columns map[string]int) (RawRecord, error) {
	field := func(name string) string {
		return strings.TrimSpace(row[columns[name]])
	}

	numeric := func(name string) (decimal.Decimal, error) {
		value, err := decimal.NewFromString(field(name))
		if err != nil {
			return decimal.Zero, fmt.Errorf("column %s: non-numeric value %q", name, field(name))
		}
		return value, nil
	}

	record := RawRecord{
		PatientID:         field(preprocessing.ColPatientID),
		Gender:            field(preprocessing.ColGender),
		SpeechDifficulty:  field(preprocessing.ColSpeechDifficulty),
		RespiratoryIssues: field(preprocessing.ColRespiratoryIssues),
		CognitiveDecline:  field(preprocessing.ColCognitiveDecline),
		BloodPressure:     field(preprocessing.ColBloodPressure),
		Diagnosis:         field(preprocessing.ColDiagnosis),
	}

	var err error
	if record.Age, err = numeric(preprocessing.ColAge); err != nil {
		return RawRecord{}, err
	}
	if record.ALSFRSRScore, err = numeric(preprocessing.ColALSFRSRScore); err != nil {
		return RawRecord{}, err
	}
	if record.OnsetDurationMonths, err = numeric(preprocessing.ColOnsetDurationMonths); err != nil {
		return RawRecord{}, err
	}
	if record.FVCPercent, err = numeric(preprocessing.ColFVCPercent); err != nil {
		return RawRecord{}, err
	}
	if record.MuscleWeaknessScore, err = numeric(preprocessing.ColMuscleWeakness); err != nil {
		return RawRecord{}, err
	}
	if record.BMI, err = numeric(preprocessing.ColBMI); err != nil {
		return RawRecord{}, err
	}
	if record.Creatinine, err = numeric(preprocessing.ColCreatinine); err != nil {
		return RawRecord{}, err
	}

	return record, nil
}
