package knngraph

import (
	"errors"
	"fmt"

	"github.com/hupe1980/knngraph/internal/hnsw"
)

var (
	// ErrInvalidQuery is matched by every query parameter error.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = fmt.Errorf("%w: k must be positive", ErrInvalidQuery)

	// ErrInvariantViolation is returned by Validate when the graph structure is inconsistent.
	ErrInvariantViolation = hnsw.ErrInvariantViolation
)

// ErrInvalidConfiguration indicates a construction parameter outside its domain.
type ErrInvalidConfiguration struct {
	Field  string
	Value  any
	Reason string
}

func (e *ErrInvalidConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// ErrInvalidEF indicates an explicitly supplied ef smaller than k.
type ErrInvalidEF struct {
	EF int
	K  int
}

func (e *ErrInvalidEF) Error() string {
	return fmt.Sprintf("ef must be at least k: ef=%d, k=%d", e.EF, e.K)
}

func (e *ErrInvalidEF) Is(target error) bool { return target == ErrInvalidQuery }

func validateQuery(k int, opts *SearchOptions) (int, error) {
	if k < 1 {
		return 0, ErrInvalidK
	}
	if opts == nil || opts.EF == 0 {
		return 1, nil
	}
	if opts.EF < k {
		return 0, &ErrInvalidEF{EF: opts.EF, K: k}
	}
	return opts.EF, nil
}
