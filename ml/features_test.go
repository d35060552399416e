package ml

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureSetOrder(t *testing.T) {
	fs, err := DecodeFeatureSet([]byte(`["mean radius","mean texture","mean area"]`))
	require.NoError(t, err)
	assert.Equal(t, 3, fs.Len())
	assert.Equal(t, []string{"mean radius", "mean texture", "mean area"}, fs.Names())

	i, ok := fs.Index("mean area")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	vector, err := fs.Vector(map[string]float64{"mean area": 3, "mean radius": 1, "mean texture": 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vector)
}

func TestFeatureSetErrors(t *testing.T) {
	_, err := NewFeatureSet(nil)
	assert.Error(t, err)

	_, err = NewFeatureSet([]string{"a", "a"})
	assert.Error(t, err)

	_, err = NewFeatureSet([]string{"a", " "})
	assert.Error(t, err)

	fs, err := NewFeatureSet([]string{"a", "b"})
	require.NoError(t, err)

	_, err = fs.Vector(map[string]float64{"a": 1})
	assert.ErrorContains(t, err, "missing feature")

	_, err = fs.Vector(map[string]float64{"a": 1, "b": 2, "c": 3})
	assert.ErrorContains(t, err, "unknown feature")
}

func TestCheckValue(t *testing.T) {
	assert.NoError(t, CheckValue("mean radius", 0))
	assert.NoError(t, CheckValue("mean radius", 17.99))
	assert.EqualError(t, CheckValue("mean radius", -0.5), `"mean radius" must be >= 0`)
	assert.Error(t, CheckValue("mean radius", math.NaN()))
	assert.Error(t, CheckValue("mean radius", math.Inf(1)))
}
