// Package pipeline turns a raw feature vector into a diagnosis: scale with
// the fitted scaler, then classify with the trained model.
package pipeline

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"cancerdetect/artifact"
	"cancerdetect/ml"
)

// ProbabilityTolerance bounds how far a distribution may drift from 1.
const ProbabilityTolerance = 1e-6

type Result struct {
	Label         ml.Label         `json:"label"`
	Probabilities ml.Probabilities `json:"probabilities"`
}

// Observer receives one call per Predict.
type Observer interface {
	ObservePrediction(label ml.Label, elapsed time.Duration, err error)
}

type Option func(*Pipeline) error

// WithCache keeps up to size results keyed by the exact input bits.
// A size of 0 disables caching.
func WithCache(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return nil
		}
		cache, err := lru.New[string, Result](size)
		if err != nil {
			return err
		}
		p.cache = cache
		return nil
	}
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) error {
		p.observer = o
		return nil
	}
}

// Pipeline is safe for concurrent use. Requests share the current Bundle
// read-only; Swap replaces the whole bundle at once.
type Pipeline struct {
	bundle   atomic.Pointer[artifact.Bundle]
	cache    *lru.Cache[string, Result]
	observer Observer
}

func New(bundle *artifact.Bundle, opts ...Option) (*Pipeline, error) {
	if bundle == nil {
		return nil, ErrNotReady
	}
	p := &Pipeline{}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.bundle.Store(bundle)
	return p, nil
}

// Bundle returns the artifacts currently in service.
func (p *Pipeline) Bundle() *artifact.Bundle {
	return p.bundle.Load()
}

// Features is shorthand for Bundle().Features.
func (p *Pipeline) Features() *ml.FeatureSet {
	return p.bundle.Load().Features
}

// Swap puts a freshly loaded bundle into service and drops cached results
// computed with the old one.
func (p *Pipeline) Swap(bundle *artifact.Bundle) {
	if bundle == nil {
		return
	}
	p.bundle.Store(bundle)
	if p.cache != nil {
		p.cache.Purge()
	}
}

func (p *Pipeline) Predict(ctx context.Context, features []float64) (*Result, error) {
	start := time.Now()
	result, err := p.predict(ctx, features)
	if p.observer != nil {
		var label ml.Label
		if result != nil {
			label = result.Label
		}
		p.observer.ObservePrediction(label, time.Since(start), err)
	}
	return result, err
}

func (p *Pipeline) predict(ctx context.Context, features []float64) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bundle := p.bundle.Load()
	if bundle == nil {
		return nil, ErrNotReady
	}

	n := bundle.Features.Len()
	if len(features) != n {
		return nil, &InvalidInputError{Expected: n, Got: len(features), Index: -1}
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &InvalidInputError{Expected: n, Got: len(features), Index: i, Reason: "is not a finite number"}
		}
	}

	var key string
	if p.cache != nil {
		key = cacheKey(features)
		if cached, ok := p.cache.Get(key); ok {
			return &cached, nil
		}
	}

	scaled, err := bundle.Scaler.Transform(features)
	if err != nil {
		return nil, fmt.Errorf("scale features: %w", err)
	}
	label, probs, err := bundle.Model.Classify(scaled)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if !probs.Valid(ProbabilityTolerance) || label != probs.Label() {
		return nil, fmt.Errorf("%w: label=%s probabilities=%+v", ErrDegenerateOutput, label, probs)
	}

	result := Result{Label: label, Probabilities: probs}
	// Skip caching if a Swap happened while this request was in flight.
	if p.cache != nil && p.bundle.Load() == bundle {
		p.cache.Add(key, result)
	}
	return &result, nil
}

func cacheKey(features []float64) string {
	buf := make([]byte, 8*len(features))
	for i, v := range features {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return string(buf)
}
