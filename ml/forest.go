package ml

import (
	"errors"
	"fmt"
)

// RandomForest averages the leaf distributions of its trees.
type RandomForest struct {
	Trees []DecisionTree `json:"trees"`
}

func (rf *RandomForest) validate() error {
	if len(rf.Trees) == 0 {
		return errors.New("random forest has no trees")
	}
	width := rf.Trees[0].Features
	for i := range rf.Trees {
		if err := rf.Trees[i].validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
		if rf.Trees[i].Features != width {
			return fmt.Errorf("tree %d: feature count %d differs from %d", i, rf.Trees[i].Features, width)
		}
	}
	return nil
}

func (rf *RandomForest) NumFeatures() int {
	if len(rf.Trees) == 0 {
		return 0
	}
	return rf.Trees[0].Features
}

func (rf *RandomForest) Classify(features []float64) (Label, Probabilities, error) {
	if len(rf.Trees) == 0 {
		return 0, Probabilities{}, errors.New("model not trained")
	}
	var sum Probabilities
	for i := range rf.Trees {
		p, err := rf.Trees[i].probabilities(features)
		if err != nil {
			return 0, Probabilities{}, err
		}
		sum.Benign += p.Benign
		sum.Malignant += p.Malignant
	}
	n := float64(len(rf.Trees))
	probs := Probabilities{Benign: sum.Benign / n, Malignant: sum.Malignant / n}
	return probs.Label(), probs, nil
}
