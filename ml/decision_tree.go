package ml

import (
	"errors"
	"fmt"
	"math"
)

// DecisionTree is a flat-array binary tree. Node 0 is the root.
type DecisionTree struct {
	Features int        `json:"n_features"`
	Nodes    []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	IsLeaf     bool    `json:"is_leaf"`
	// Value holds per-class training counts (or weights) at a leaf.
	Value [2]float64 `json:"value"`
}

func (dt *DecisionTree) validate() error {
	if len(dt.Nodes) == 0 {
		return errors.New("decision tree has no nodes")
	}
	if dt.Features <= 0 {
		return errors.New("decision tree feature count must be positive")
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			total := node.Value[0] + node.Value[1]
			if node.Value[0] < 0 || node.Value[1] < 0 || total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
				return fmt.Errorf("leaf %d has invalid class counts", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= dt.Features {
			return fmt.Errorf("node %d: feature index out of range", i)
		}
		if node.LeftChild <= i || node.LeftChild >= len(dt.Nodes) ||
			node.RightChild <= i || node.RightChild >= len(dt.Nodes) {
			return fmt.Errorf("node %d: invalid children", i)
		}
	}
	return nil
}

func (dt *DecisionTree) NumFeatures() int {
	return dt.Features
}

func (dt *DecisionTree) Classify(features []float64) (Label, Probabilities, error) {
	probs, err := dt.probabilities(features)
	if err != nil {
		return 0, Probabilities{}, err
	}
	return probs.Label(), probs, nil
}

func (dt *DecisionTree) probabilities(features []float64) (Probabilities, error) {
	if len(dt.Nodes) == 0 {
		return Probabilities{}, errors.New("model not trained")
	}
	if err := checkWidth(dt.Features, features); err != nil {
		return Probabilities{}, err
	}
	idx := 0
	// Children always sit after their parent, so a walk visits at most
	// len(Nodes) nodes.
	for steps := 0; steps < len(dt.Nodes); steps++ {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			total := node.Value[0] + node.Value[1]
			return Probabilities{Benign: node.Value[0] / total, Malignant: node.Value[1] / total}, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return Probabilities{}, errors.New("invalid tree state")
		}
	}
	return Probabilities{}, errors.New("invalid tree state")
}
