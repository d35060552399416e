// Package dataset reads batches of samples from CSV or Excel files for
// offline detection runs.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"cancerdetect/ml"
)

const (
	// IDColumn is carried through to the output when present.
	IDColumn = "id"
	// DiagnosisColumn holds a known outcome (M/B) used for evaluation.
	DiagnosisColumn = "diagnosis"
)

// Sample is one data row. Row is 1-based and counts the header.
type Sample struct {
	Row       int
	ID        string
	Values    []float64
	Diagnosis *ml.Label
	Err       error
}

// ParseDiagnosis accepts M/B or the full label names, in any case.
func ParseDiagnosis(s string) (ml.Label, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "malignant":
		return ml.Malignant, nil
	case "b", "benign":
		return ml.Benign, nil
	default:
		return 0, fmt.Errorf("%w: %q", ml.ErrUnknownLabel, s)
	}
}

// ReadFile picks the reader from the file extension: .csv or .xlsx.
func ReadFile(path string, features *ml.FeatureSet) ([]Sample, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f, features)
	case ".xlsx":
		return ReadExcel(path, features)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func ReadCSV(r io.Reader, features *ml.FeatureSet) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return fromRows(rows, features)
}

// ReadExcel reads the first sheet of an .xlsx workbook.
func ReadExcel(path string, features *ml.FeatureSet) ([]Sample, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return fromRows(rows, features)
}

func fromRows(rows [][]string, features *ml.FeatureSet) ([]Sample, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	// columns[i] is the header position of feature i.
	header := rows[0]
	position := make(map[string]int, len(header))
	for col, name := range header {
		position[strings.TrimSpace(name)] = col
	}
	names := features.Names()
	columns := make([]int, len(names))
	for i, name := range names {
		col, ok := position[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		columns[i] = col
	}
	idCol, hasID := position[IDColumn]
	diagCol, hasDiag := position[DiagnosisColumn]

	samples := make([]Sample, 0, len(rows)-1)
	for r, row := range rows[1:] {
		if blank(row) {
			continue
		}
		sample := Sample{Row: r + 2, Values: make([]float64, len(names))}
		if hasID && idCol < len(row) {
			sample.ID = strings.TrimSpace(row[idCol])
		}
		if hasDiag && diagCol < len(row) && strings.TrimSpace(row[diagCol]) != "" {
			label, err := ParseDiagnosis(row[diagCol])
			if err != nil {
				sample.Err = fmt.Errorf("row %d: %w", sample.Row, err)
				samples = append(samples, sample)
				continue
			}
			sample.Diagnosis = &label
		}
		for i, col := range columns {
			if col >= len(row) || strings.TrimSpace(row[col]) == "" {
				sample.Err = fmt.Errorf("row %d: %q is empty", sample.Row, names[i])
				break
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				sample.Err = fmt.Errorf("row %d: %q is not a number", sample.Row, names[i])
				break
			}
			if err := ml.CheckValue(names[i], v); err != nil {
				sample.Err = fmt.Errorf("row %d: %w", sample.Row, err)
				break
			}
			sample.Values[i] = v
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
