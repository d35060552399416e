package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ModelEnvelope is the on-disk model artifact: a type tag plus the
// parameters of that model family.
type ModelEnvelope struct {
	Type  string          `json:"type"`
	Model json.RawMessage `json:"model"`
}

type validator interface {
	Classifier
	validate() error
}

var decoders = map[string]func() validator{
	"logistic_regression": func() validator { return &LogisticRegression{} },
	"decision_tree":       func() validator { return &DecisionTree{} },
	"random_forest":       func() validator { return &RandomForest{} },
}

var ErrUnsupportedModel = errors.New("unsupported model type")

// ModelTypes lists the model families DecodeModel understands.
func ModelTypes() []string {
	return []string{"logistic_regression", "decision_tree", "random_forest"}
}

func DecodeModel(payload []byte) (Classifier, error) {
	var envelope ModelEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode model envelope: %w", err)
	}
	newModel, ok := decoders[envelope.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, envelope.Type)
	}
	if len(envelope.Model) == 0 {
		return nil, errors.New("model parameters missing")
	}
	model := newModel()
	if err := json.Unmarshal(envelope.Model, model); err != nil {
		return nil, fmt.Errorf("decode %s: %w", envelope.Type, err)
	}
	if err := model.validate(); err != nil {
		return nil, err
	}
	return model, nil
}

func LoadModel(path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeModel(payload)
}

// EncodeModel wraps a supported classifier into its artifact envelope.
func EncodeModel(model Classifier) ([]byte, error) {
	var modelType string
	switch model.(type) {
	case *LogisticRegression:
		modelType = "logistic_regression"
	case *DecisionTree:
		modelType = "decision_tree"
	case *RandomForest:
		modelType = "random_forest"
	default:
		return nil, ErrUnsupportedModel
	}
	params, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}
	return json.Marshal(ModelEnvelope{Type: modelType, Model: params})
}
