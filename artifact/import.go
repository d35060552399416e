package artifact

import (
	"context"

	"github.com/pkg/errors"

	"cancerdetect/db"
)

// Import copies every artifact from src into store. Each artifact is read
// once; the set is decoded as a bundle before any of those same bytes are
// written, so an inconsistent set is never stored.
func Import(ctx context.Context, src Source, store *db.Store) (*Bundle, error) {
	payloads, err := readAll(ctx, src)
	if err != nil {
		return nil, err
	}
	bundle, err := decode(payloads)
	if err != nil {
		return nil, err
	}
	for _, kind := range Kinds {
		if err := store.Put(ctx, string(kind), payloads[kind]); err != nil {
			return nil, errors.Wrapf(err, "import %s", kind)
		}
	}
	return bundle, nil
}
