package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScalerTransform(t *testing.T) {
	scaler, err := NewStandardScaler([]float64{10, 2}, []float64{2, 0.5})
	require.NoError(t, err)

	scaled, err := scaler.Transform([]float64{14, 1})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, -2}, scaled, 1e-12)

	zero, err := scaler.Transform(scaler.Mean)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0}, zero, 1e-12)

	raw, err := scaler.Inverse(scaled)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{14, 1}, raw, 1e-12)
}

func TestStandardScalerDoesNotMutateInput(t *testing.T) {
	scaler, err := NewStandardScaler([]float64{1}, []float64{2})
	require.NoError(t, err)

	input := []float64{5}
	_, err = scaler.Transform(input)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, input)
}

func TestStandardScalerValidation(t *testing.T) {
	_, err := NewStandardScaler([]float64{1, 2}, []float64{1})
	assert.Error(t, err)

	_, err = NewStandardScaler([]float64{1}, []float64{0})
	assert.Error(t, err, "zero scale must be rejected")

	_, err = NewStandardScaler(nil, nil)
	assert.Error(t, err)

	scaler, err := NewStandardScaler([]float64{1}, []float64{1})
	require.NoError(t, err)
	_, err = scaler.Transform([]float64{1, 2})
	assert.ErrorIs(t, err, ErrFeatureCount)
}

func TestDecodeScaler(t *testing.T) {
	scaler, err := DecodeScaler([]byte(`{"mean":[1,2],"scale":[3,4]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, scaler.NumFeatures())

	_, err = DecodeScaler([]byte(`{"mean":[1],"scale":[0]}`))
	assert.Error(t, err)

	_, err = DecodeScaler([]byte(`not json`))
	assert.Error(t, err)
}
