package artifact

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"cancerdetect/db"
)

// Kind names one of the three startup artifacts.
type Kind string

const (
	KindModel    Kind = "model"
	KindScaler   Kind = "scaler"
	KindFeatures Kind = "feature_names"
)

// Kinds is every artifact a bundle needs.
var Kinds = []Kind{KindModel, KindScaler, KindFeatures}

// Source reads raw artifact payloads.
type Source interface {
	Read(ctx context.Context, kind Kind) ([]byte, error)
}

// FileSource reads artifacts from files. Relative paths resolve against Dir.
type FileSource struct {
	Dir          string
	ModelFile    string
	ScalerFile   string
	FeaturesFile string
}

func (s *FileSource) Path(kind Kind) string {
	var name string
	switch kind {
	case KindModel:
		name = s.ModelFile
	case KindScaler:
		name = s.ScalerFile
	case KindFeatures:
		name = s.FeaturesFile
	}
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

func (s *FileSource) Read(ctx context.Context, kind Kind) ([]byte, error) {
	path := s.Path(kind)
	if path == "" {
		return nil, errors.Errorf("no file configured for %s", kind)
	}
	payload, err := os.ReadFile(path)
	return payload, errors.Wrapf(err, "read %s artifact", kind)
}

// StoreSource reads artifacts stored as rows named after their Kind.
type StoreSource struct {
	Store *db.Store
}

func (s *StoreSource) Read(ctx context.Context, kind Kind) ([]byte, error) {
	payload, err := s.Store.Get(ctx, string(kind))
	return payload, errors.Wrapf(err, "read %s artifact", kind)
}
