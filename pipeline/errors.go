package pipeline

import (
	"errors"
	"fmt"
)

// InvalidInputError reports a feature vector the pipeline refuses to score.
type InvalidInputError struct {
	Expected int
	Got      int
	// Index is the offending position for value errors, -1 for length errors.
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid input: expected %d feature values, got %d", e.Expected, e.Got)
	}
	return fmt.Sprintf("invalid input: feature %d %s", e.Index, e.Reason)
}

var (
	ErrNotReady         = errors.New("prediction pipeline has no artifacts loaded")
	ErrDegenerateOutput = errors.New("model produced an invalid probability distribution")
)

// IsInvalidInput reports whether err was caused by the caller's input.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}
