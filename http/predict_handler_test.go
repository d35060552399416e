package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cancerdetect/artifact"
	"cancerdetect/ml"
	"cancerdetect/pipeline"
	"cancerdetect/testhelpers"
)

func postJSON(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandlePredictOrderedVector(t *testing.T) {
	_, handler := newTestServer(t)
	body, err := json.Marshal(PredictRequest{Features: testhelpers.MalignantSample})
	require.NoError(t, err)

	rr := postJSON(t, handler, string(body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var payload PredictResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, ml.Malignant, payload.Label)
	assert.Equal(t, 1, payload.LabelCode)
	assert.InDelta(t, 1.0, payload.Probabilities.Benign+payload.Probabilities.Malignant, 1e-6)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, "malignant", raw["label"])
}

func TestHandlePredictNamedValues(t *testing.T) {
	_, handler := newTestServer(t)
	values := make(map[string]float64, len(testhelpers.FeatureNames))
	for i, name := range testhelpers.FeatureNames {
		values[name] = testhelpers.MalignantSample[i]
	}
	body, err := json.Marshal(PredictRequest{Values: values})
	require.NoError(t, err)

	rr := postJSON(t, handler, string(body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var payload PredictResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, ml.Malignant, payload.Label)
}

func TestHandlePredictBadRequests(t *testing.T) {
	_, handler := newTestServer(t)
	cases := map[string]string{
		"wrong length":   `{"features":[1,2,3]}`,
		"negative value": `{"features":[-1]}`,
		"both forms":     `{"features":[1],"values":{"mean radius":1}}`,
		"empty":          `{}`,
		"not json":       `features=1`,
		"unknown field":  `{"vector":[1]}`,
		"missing name":   `{"values":{"mean radius":1}}`,
	}
	for name, body := range cases {
		rr := postJSON(t, handler, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload), name)
		assert.NotEmpty(t, payload["error"], name)
	}
}

type faultyModel struct{}

func (faultyModel) NumFeatures() int { return 30 }
func (faultyModel) Classify([]float64) (ml.Label, ml.Probabilities, error) {
	return ml.Benign, ml.Probabilities{Benign: 2, Malignant: 2}, nil
}

func TestHandlePredictModelFault(t *testing.T) {
	h := newTestHandlers(t)
	bundle, err := artifact.NewBundle(faultyModel{}, testhelpers.Scaler(), testhelpers.Features())
	require.NoError(t, err)
	h.Pipeline.Swap(bundle)
	handler := NewServer(DefaultServerConfig(), h, nil).Handler()

	body, err := json.Marshal(PredictRequest{Features: testhelpers.MalignantSample})
	require.NoError(t, err)
	rr := postJSON(t, handler, string(body))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid result")
	assert.Equal(t, int64(1), h.Metrics.Snapshot().Errors["degenerate_output"])

	// The form surfaces the same fault as a message instead of failing.
	rr, doc := postForm(t, handler, sampleForm())
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, doc.Find("#detect-error").Text(), "Prediction failed")
}

func TestPredictRequestVector(t *testing.T) {
	fs := testhelpers.Features()
	vector, err := PredictRequest{Features: []float64{1, 2}}.Vector(fs)
	require.NoError(t, err, "length is checked by the pipeline, not here")
	assert.Len(t, vector, 2)

	_, err = PredictRequest{Features: []float64{1, -2}}.Vector(fs)
	assert.EqualError(t, err, `"mean texture" must be >= 0`)

	_, err = pipeline.New(nil)
	assert.Error(t, err)
}
