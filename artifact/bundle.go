// Package artifact loads the model, scaler and feature names that every
// prediction shares, and keeps them consistent with each other.
package artifact

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"cancerdetect/ml"
)

// Bundle is the process-wide, read-only prediction state. A Bundle is never
// mutated after NewBundle returns.
type Bundle struct {
	Model    ml.Classifier
	Scaler   ml.Transformer
	Features *ml.FeatureSet
}

func NewBundle(model ml.Classifier, scaler ml.Transformer, features *ml.FeatureSet) (*Bundle, error) {
	if model == nil || scaler == nil || features == nil {
		return nil, errors.New("bundle requires model, scaler and feature names")
	}
	n := features.Len()
	if scaler.NumFeatures() != n {
		return nil, fmt.Errorf("scaler expects %d features, feature names list %d", scaler.NumFeatures(), n)
	}
	if model.NumFeatures() != n {
		return nil, fmt.Errorf("model expects %d features, feature names list %d", model.NumFeatures(), n)
	}
	return &Bundle{Model: model, Scaler: scaler, Features: features}, nil
}

// Load reads all artifacts from src concurrently and assembles a Bundle.
func Load(ctx context.Context, src Source) (*Bundle, error) {
	payloads, err := readAll(ctx, src)
	if err != nil {
		return nil, err
	}
	return decode(payloads)
}

func readAll(ctx context.Context, src Source) (map[Kind][]byte, error) {
	payloads := make(map[Kind][]byte, len(Kinds))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range Kinds {
		kind := kind
		g.Go(func() error {
			payload, err := src.Read(gctx, kind)
			if err != nil {
				return err
			}
			mu.Lock()
			payloads[kind] = payload
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return payloads, nil
}

func decode(payloads map[Kind][]byte) (*Bundle, error) {
	model, err := ml.DecodeModel(payloads[KindModel])
	if err != nil {
		return nil, errors.Wrap(err, "load model")
	}
	scaler, err := ml.DecodeScaler(payloads[KindScaler])
	if err != nil {
		return nil, errors.Wrap(err, "load scaler")
	}
	features, err := ml.DecodeFeatureSet(payloads[KindFeatures])
	if err != nil {
		return nil, errors.Wrap(err, "load feature names")
	}
	bundle, err := NewBundle(model, scaler, features)
	return bundle, errors.Wrap(err, "inconsistent artifacts")
}
