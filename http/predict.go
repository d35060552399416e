package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cancerdetect/ml"
	"cancerdetect/pipeline"
)

// PredictRequest carries either an ordered vector or values keyed by
// feature name, never both.
type PredictRequest struct {
	Features []float64         `json:"features,omitempty"`
	Values   map[string]float64 `json:"values,omitempty"`
}

type PredictResponse struct {
	Label         ml.Label         `json:"label"`
	LabelCode     int              `json:"label_code"`
	Probabilities ml.Probabilities `json:"probabilities"`
}

func newPredictResponse(result *pipeline.Result) PredictResponse {
	return PredictResponse{
		Label:         result.Label,
		LabelCode:     int(result.Label),
		Probabilities: result.Probabilities,
	}
}

// Vector resolves the request against the feature order and applies the
// same bounds as the form inputs.
func (req PredictRequest) Vector(features *ml.FeatureSet) ([]float64, error) {
	var vector []float64
	switch {
	case req.Features != nil && req.Values != nil:
		return nil, errors.New(`send either "features" or "values", not both`)
	case req.Values != nil:
		var err error
		if vector, err = features.Vector(req.Values); err != nil {
			return nil, err
		}
	case req.Features != nil:
		vector = req.Features
	default:
		return nil, errors.New(`request needs "features" or "values"`)
	}

	names := features.Names()
	for i, v := range vector {
		name := fmt.Sprintf("feature %d", i)
		if i < len(names) {
			name = names[i]
		}
		if err := ml.CheckValue(name, v); err != nil {
			return nil, err
		}
	}
	return vector, nil
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.recordError("invalid_input")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	vector, err := req.Vector(h.Pipeline.Features())
	if err != nil {
		h.recordError("invalid_input")
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Pipeline.Predict(r.Context(), vector)
	if err != nil {
		status, message := h.predictFailure(r, err)
		writeJSONError(w, status, message)
		return
	}
	writeJSON(w, http.StatusOK, newPredictResponse(result))
}
