package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// FeatureSet is the ordered list of feature names the scaler and model were
// fitted with. Position i of every feature vector holds Names()[i].
type FeatureSet struct {
	names []string
	index map[string]int
}

func NewFeatureSet(names []string) (*FeatureSet, error) {
	if len(names) == 0 {
		return nil, errors.New("feature set is empty")
	}
	fs := &FeatureSet{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("feature %d has an empty name", i)
		}
		if _, dup := fs.index[name]; dup {
			return nil, fmt.Errorf("duplicate feature name %q", name)
		}
		fs.names[i] = name
		fs.index[name] = i
	}
	return fs, nil
}

func DecodeFeatureSet(payload []byte) (*FeatureSet, error) {
	var names []string
	if err := json.Unmarshal(payload, &names); err != nil {
		return nil, fmt.Errorf("decode feature names: %w", err)
	}
	return NewFeatureSet(names)
}

func (fs *FeatureSet) Len() int {
	return len(fs.names)
}

// Names returns a copy of the ordered names.
func (fs *FeatureSet) Names() []string {
	return append([]string(nil), fs.names...)
}

func (fs *FeatureSet) Index(name string) (int, bool) {
	i, ok := fs.index[name]
	return i, ok
}

// Vector orders named values into a feature vector. Every feature must be
// present; unknown names are rejected.
func (fs *FeatureSet) Vector(values map[string]float64) ([]float64, error) {
	vector := make([]float64, len(fs.names))
	for name := range values {
		if _, ok := fs.index[name]; !ok {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
	}
	for i, name := range fs.names {
		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("missing feature %q", name)
		}
		vector[i] = v
	}
	return vector, nil
}

// CheckValue applies the input bounds every measurement shares: finite and
// not negative.
func CheckValue(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%q must be a finite number", name)
	}
	if v < 0 {
		return fmt.Errorf("%q must be >= 0", name)
	}
	return nil
}
