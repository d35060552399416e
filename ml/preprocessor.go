package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// StandardScaler is a fitted per-feature affine normalization:
// scaled[i] = (x[i] - Mean[i]) / Scale[i].
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	s := &StandardScaler{
		Mean:  append([]float64(nil), mean...),
		Scale: append([]float64(nil), scale...),
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 {
		return errors.New("scaler has no features")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler mean/scale length mismatch: %d vs %d", len(s.Mean), len(s.Scale))
	}
	for i := range s.Mean {
		if math.IsNaN(s.Mean[i]) || math.IsInf(s.Mean[i], 0) {
			return fmt.Errorf("scaler mean[%d] is not finite", i)
		}
		if s.Scale[i] == 0 || math.IsNaN(s.Scale[i]) || math.IsInf(s.Scale[i], 0) {
			return fmt.Errorf("scaler scale[%d] must be finite and non-zero, got %v", i, s.Scale[i])
		}
	}
	return nil
}

func (s *StandardScaler) NumFeatures() int {
	return len(s.Mean)
}

// Transform returns a new scaled vector; the input is left untouched.
func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if err := checkWidth(len(s.Mean), features); err != nil {
		return nil, err
	}
	scaled := make([]float64, len(features))
	floats.SubTo(scaled, features, s.Mean)
	floats.Div(scaled, s.Scale)
	return scaled, nil
}

// Inverse maps a scaled vector back to raw feature space.
func (s *StandardScaler) Inverse(scaled []float64) ([]float64, error) {
	if err := checkWidth(len(s.Mean), scaled); err != nil {
		return nil, err
	}
	raw := make([]float64, len(scaled))
	floats.MulTo(raw, scaled, s.Scale)
	floats.Add(raw, s.Mean)
	return raw, nil
}

func DecodeScaler(payload []byte) (*StandardScaler, error) {
	var s StandardScaler
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
