package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"cancerdetect/ml"
	"cancerdetect/monitoring"
	"cancerdetect/pipeline"
	"cancerdetect/view"
)

// Handlers holds what every route needs. Metrics may be nil.
type Handlers struct {
	Pipeline       *pipeline.Pipeline
	Renderer       *view.Renderer
	Metrics        *monitoring.MetricsCollector
	Logger         *zap.Logger
	AllowedOrigins []string
}

func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /{$}", h.handleDetect)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/features", h.handleFeatures)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /ws/predict", h.handleWebSocket)
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *Handlers) recordError(kind string) {
	if h.Metrics != nil {
		h.Metrics.RecordError(kind)
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"features": h.Pipeline.Features().Len(),
	})
}

func (h *Handlers) handleFeatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"features": h.Pipeline.Features().Names(),
	})
}

func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Metrics == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "metrics not enabled")
		return
	}
	writeJSON(w, http.StatusOK, h.Metrics.Snapshot())
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, view.PageData{})
}

func (h *Handlers) handleDetect(w http.ResponseWriter, r *http.Request) {
	features := h.Pipeline.Features()
	values, rejected, err := parseForm(r, features)
	if err != nil {
		h.recordError("invalid_input")
		h.renderPage(w, r, http.StatusBadRequest, view.PageData{Values: values, Raw: rejected, Error: err.Error()})
		return
	}

	result, err := h.Pipeline.Predict(r.Context(), values)
	if err != nil {
		status, message := h.predictFailure(r, err)
		h.renderPage(w, r, status, view.PageData{Values: values, Error: message})
		return
	}
	h.renderPage(w, r, http.StatusOK, view.PageData{Values: values, Result: result})
}

func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, data view.PageData) {
	var buf bytes.Buffer
	if err := h.Renderer.Render(&buf, h.Pipeline.Features(), data); err != nil {
		h.logger().Error("render page", zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// predictFailure maps a pipeline error onto a status and user-facing text.
func (h *Handlers) predictFailure(r *http.Request, err error) (int, string) {
	if pipeline.IsInvalidInput(err) {
		return http.StatusBadRequest, err.Error()
	}
	h.logger().Error("prediction failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Error(err),
	)
	if errors.Is(err, pipeline.ErrDegenerateOutput) {
		return http.StatusInternalServerError, "Prediction failed: the model returned an invalid result."
	}
	return http.StatusInternalServerError, "Prediction failed. Please try again."
}

// parseForm reads one value per feature. Blank fields count as 0, matching
// the form's default. On error, values holds every field that parsed and
// rejected holds the submitted text of the ones that did not, keyed by
// feature index, so the form can be re-rendered as typed.
func parseForm(r *http.Request, features *ml.FeatureSet) (values []float64, rejected map[int]string, err error) {
	names := features.Names()
	values = make([]float64, len(names))
	if err := r.ParseForm(); err != nil {
		return values, nil, fmt.Errorf("could not read form: %w", err)
	}
	for i, name := range names {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		if raw == "" {
			continue
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr == nil {
			perr = ml.CheckValue(name, v)
		} else {
			perr = fmt.Errorf("%q must be a number", name)
		}
		if perr != nil {
			if err == nil {
				err = perr
			}
			if rejected == nil {
				rejected = make(map[int]string)
			}
			rejected[i] = raw
			continue
		}
		values[i] = v
	}
	return values, rejected, err
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
