package ml

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogisticRegression scores P(malignant) = sigmoid(w·x + b).
type LogisticRegression struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

func (lr *LogisticRegression) validate() error {
	if len(lr.Weights) == 0 {
		return errors.New("logistic regression has no weights")
	}
	for _, w := range append([]float64{lr.Intercept}, lr.Weights...) {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.New("logistic regression has non-finite parameters")
		}
	}
	return nil
}

func (lr *LogisticRegression) NumFeatures() int {
	return len(lr.Weights)
}

func (lr *LogisticRegression) Classify(features []float64) (Label, Probabilities, error) {
	if err := checkWidth(len(lr.Weights), features); err != nil {
		return 0, Probabilities{}, err
	}
	z := floats.Dot(lr.Weights, features) + lr.Intercept
	probs := fromMalignant(sigmoid(z))
	return probs.Label(), probs, nil
}

func sigmoid(z float64) float64 {
	// Split on sign so exp never overflows to +Inf.
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
