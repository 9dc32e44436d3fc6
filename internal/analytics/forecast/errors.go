package forecast

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyHistory is returned when the training table has no rows or no identifier column
	ErrEmptyHistory = errors.New("history has no trainable rows")

	// ErrInsufficientHistory is returned when an entity's history is not longer than its max lag
	ErrInsufficientHistory = errors.New("insufficient history for lag configuration")

	// ErrNotFitted is returned when predicting or saving before training
	ErrNotFitted = errors.New("model is not fitted yet")

	// ErrMalformedState is returned when a persisted model cannot be decoded
	ErrMalformedState = errors.New("malformed persisted model state")

	// ErrMissingColumn is returned when a required column is absent from a table
	ErrMissingColumn = errors.New("missing column")

	// ErrInvalidLags is returned for empty or non-positive lag specifications
	ErrInvalidLags = errors.New("invalid lag specification")
)

// EntityError is a failure isolated to a single entity
type EntityError struct {
	ID  string
	Err error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("entity %q: %v", e.ID, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// TrainingError reports the entities that could not be fit in a training run
type TrainingError struct {
	Failed []*EntityError
	Fitted int
}

func (e *TrainingError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = f.ID
	}
	return fmt.Sprintf("training failed for %d of %d entities: %s",
		len(e.Failed), len(e.Failed)+e.Fitted, strings.Join(ids, ", "))
}

// Unwrap exposes every entity failure to errors.Is and errors.As
func (e *TrainingError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}
