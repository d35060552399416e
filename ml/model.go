package ml

import (
	"errors"
	"fmt"
	"math"
)

// Label is the diagnosis class produced by a classifier.
type Label int

const (
	Benign Label = iota
	Malignant
)

var ErrUnknownLabel = errors.New("unknown label")

func (l Label) String() string {
	switch l {
	case Benign:
		return "benign"
	case Malignant:
		return "malignant"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

func (l Label) MarshalText() ([]byte, error) {
	if l != Benign && l != Malignant {
		return nil, ErrUnknownLabel
	}
	return []byte(l.String()), nil
}

func (l *Label) UnmarshalText(text []byte) error {
	switch string(text) {
	case "benign":
		*l = Benign
	case "malignant":
		*l = Malignant
	default:
		return ErrUnknownLabel
	}
	return nil
}

// Probabilities is a two-way distribution over {benign, malignant}.
type Probabilities struct {
	Benign    float64 `json:"benign"`
	Malignant float64 `json:"malignant"`
}

// Label returns the arg-max class. Ties go to Benign.
func (p Probabilities) Label() Label {
	if p.Malignant > p.Benign {
		return Malignant
	}
	return Benign
}

// Valid reports whether p is a proper distribution within tol.
func (p Probabilities) Valid(tol float64) bool {
	for _, v := range []float64{p.Benign, p.Malignant} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return math.Abs(p.Benign+p.Malignant-1) <= tol
}

func fromMalignant(pm float64) Probabilities {
	return Probabilities{Benign: 1 - pm, Malignant: pm}
}

// Classifier is a trained binary model treated as a black box.
type Classifier interface {
	NumFeatures() int
	Classify(features []float64) (Label, Probabilities, error)
}

// Transformer maps a raw feature vector into the space the classifier was
// fitted in.
type Transformer interface {
	NumFeatures() int
	Transform(features []float64) ([]float64, error)
}

var ErrFeatureCount = errors.New("feature count mismatch")

func checkWidth(want int, features []float64) error {
	if len(features) != want {
		return fmt.Errorf("%w: expected %d, got %d", ErrFeatureCount, want, len(features))
	}
	return nil
}
