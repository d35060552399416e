// Package testhelpers holds artifact fixtures shared by package tests.
package testhelpers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cancerdetect/ml"
)

// FeatureNames is the 30-measurement breast tumour feature order.
var FeatureNames = []string{
	"mean radius", "mean texture", "mean perimeter", "mean area", "mean smoothness",
	"mean compactness", "mean concavity", "mean concave points", "mean symmetry", "mean fractal dimension",
	"radius error", "texture error", "perimeter error", "area error", "smoothness error",
	"compactness error", "concavity error", "concave points error", "symmetry error", "fractal dimension error",
	"worst radius", "worst texture", "worst perimeter", "worst area", "worst smoothness",
	"worst compactness", "worst concavity", "worst concave points", "worst symmetry", "worst fractal dimension",
}

// Means and Scales approximate the fitted scaler statistics.
var Means = []float64{
	14.127, 19.290, 91.969, 654.889, 0.0964,
	0.1043, 0.0888, 0.0489, 0.1812, 0.0628,
	0.4052, 1.2169, 2.8661, 40.337, 0.0070,
	0.0255, 0.0319, 0.0118, 0.0205, 0.0038,
	16.269, 25.677, 107.261, 880.583, 0.1324,
	0.2543, 0.2722, 0.1146, 0.2901, 0.0839,
}

var Scales = []float64{
	3.521, 4.298, 24.278, 351.605, 0.0141,
	0.0528, 0.0797, 0.0388, 0.0274, 0.0071,
	0.2771, 0.5517, 2.0201, 45.451, 0.0030,
	0.0179, 0.0302, 0.0062, 0.0083, 0.0026,
	4.829, 6.141, 33.573, 568.856, 0.0228,
	0.1572, 0.2084, 0.0657, 0.0618, 0.0181,
}

// MalignantSample is a classic malignant measurement row.
var MalignantSample = []float64{
	17.99, 10.38, 122.8, 1001.0, 0.1184,
	0.2776, 0.3001, 0.1471, 0.2419, 0.07871,
	1.095, 0.9053, 8.589, 153.4, 0.006399,
	0.04904, 0.05373, 0.01587, 0.03003, 0.006193,
	25.38, 17.33, 184.6, 2019.0, 0.1622,
	0.6656, 0.7119, 0.2654, 0.4601, 0.1189,
}

// Model returns a logistic model that only weighs radius, texture,
// perimeter and area, which keeps expected labels easy to reason about.
func Model() *ml.LogisticRegression {
	weights := make([]float64, len(FeatureNames))
	weights[0] = 1.0
	weights[1] = 0.5
	weights[2] = 1.0
	weights[3] = 1.0
	return &ml.LogisticRegression{Weights: weights, Intercept: 0}
}

func Scaler() *ml.StandardScaler {
	scaler, err := ml.NewStandardScaler(Means, Scales)
	if err != nil {
		panic(err)
	}
	return scaler
}

func Features() *ml.FeatureSet {
	fs, err := ml.NewFeatureSet(FeatureNames)
	if err != nil {
		panic(err)
	}
	return fs
}

// Payloads returns the encoded model, scaler and feature-name artifacts.
func Payloads(t testing.TB) (model, scaler, features []byte) {
	t.Helper()
	var err error
	if model, err = ml.EncodeModel(Model()); err != nil {
		t.Fatalf("encode model: %v", err)
	}
	if scaler, err = json.Marshal(Scaler()); err != nil {
		t.Fatalf("encode scaler: %v", err)
	}
	if features, err = json.Marshal(FeatureNames); err != nil {
		t.Fatalf("encode features: %v", err)
	}
	return model, scaler, features
}

// WriteArtifacts writes the fixture artifacts into dir under the given
// file names and returns dir.
func WriteArtifacts(t testing.TB, dir, modelFile, scalerFile, featuresFile string) string {
	t.Helper()
	model, scaler, features := Payloads(t)
	for name, payload := range map[string][]byte{
		modelFile:    model,
		scalerFile:   scaler,
		featuresFile: features,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}
