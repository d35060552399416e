package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"cancerdetect/ml"
)

func smallFeatures(t *testing.T) *ml.FeatureSet {
	t.Helper()
	fs, err := ml.NewFeatureSet([]string{"mean radius", "mean texture"})
	require.NoError(t, err)
	return fs
}

func TestReadCSVMatchesColumnsByName(t *testing.T) {
	input := "id,mean texture,notes,mean radius\n" +
		"p1,10.38,first,17.99\n" +
		",,,\n" +
		"p2,abc,bad,1\n" +
		"p3,2\n"

	samples, err := ReadCSV(strings.NewReader(input), smallFeatures(t))
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, "p1", samples[0].ID)
	assert.Equal(t, 2, samples[0].Row)
	assert.Equal(t, []float64{17.99, 10.38}, samples[0].Values)
	assert.NoError(t, samples[0].Err)

	assert.Equal(t, 4, samples[1].Row)
	assert.ErrorContains(t, samples[1].Err, `"mean texture" is not a number`)

	assert.ErrorContains(t, samples[2].Err, `"mean radius" is empty`)
}

func TestReadCSVRejectsNegative(t *testing.T) {
	input := "mean radius,mean texture\n" +
		"-5,-5\n" +
		"17.99,10.38\n" +
		"1,NaN\n"

	samples, err := ReadCSV(strings.NewReader(input), smallFeatures(t))
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.EqualError(t, samples[0].Err, `row 2: "mean radius" must be >= 0`)
	assert.NoError(t, samples[1].Err)
	assert.ErrorContains(t, samples[2].Err, `"mean texture" must be a finite number`)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("mean radius\n1\n"), smallFeatures(t))
	assert.ErrorContains(t, err, `missing column "mean texture"`)

	_, err = ReadCSV(strings.NewReader(""), smallFeatures(t))
	assert.Error(t, err)
}

func TestReadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"mean radius", "mean texture", "id"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{17.99, 10.38, "p1"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{13.54, 14.36, "p2"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	samples, err := ReadFile(path, smallFeatures(t))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, []float64{17.99, 10.38}, samples[0].Values)
	assert.Equal(t, "p2", samples[1].ID)
}

func TestReadFileUnsupported(t *testing.T) {
	_, err := ReadFile("samples.json", smallFeatures(t))
	assert.Error(t, err)
}

func TestReadCSVDiagnosis(t *testing.T) {
	input := "diagnosis,mean radius,mean texture\n" +
		"M,17.99,10.38\n" +
		"b,13.54,14.36\n" +
		",1,2\n" +
		"X,1,2\n"

	samples, err := ReadCSV(strings.NewReader(input), smallFeatures(t))
	require.NoError(t, err)
	require.Len(t, samples, 4)

	require.NotNil(t, samples[0].Diagnosis)
	assert.Equal(t, ml.Malignant, *samples[0].Diagnosis)
	require.NotNil(t, samples[1].Diagnosis)
	assert.Equal(t, ml.Benign, *samples[1].Diagnosis)
	assert.Nil(t, samples[2].Diagnosis)
	assert.NoError(t, samples[2].Err)
	assert.ErrorIs(t, samples[3].Err, ml.ErrUnknownLabel)
}

func TestEvaluate(t *testing.T) {
	actual := []ml.Label{ml.Malignant, ml.Malignant, ml.Benign, ml.Benign}
	predicted := []ml.Label{ml.Malignant, ml.Benign, ml.Malignant, ml.Benign}

	eval := Evaluate(actual, predicted)
	assert.Equal(t, 4, eval.Samples)
	assert.InDelta(t, 0.5, eval.Accuracy, 1e-9)
	assert.InDelta(t, 0.5, eval.Precision, 1e-9)
	assert.InDelta(t, 0.5, eval.Recall, 1e-9)

	assert.Equal(t, Evaluation{}, Evaluate(nil, nil))

	allBenign := Evaluate([]ml.Label{ml.Benign}, []ml.Label{ml.Benign})
	assert.Equal(t, 1.0, allBenign.Accuracy)
	assert.Zero(t, allBenign.Precision)
	assert.Zero(t, allBenign.Recall)
}
