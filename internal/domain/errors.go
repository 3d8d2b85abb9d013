package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals that an entity id or a review's target did not
	// resolve. Surfaced as a client error, never after mutation.
	ErrNotFound = errors.New("entity not found")

	// ErrStoreInconsistent marks the vanished-target fault: the aggregator
	// was asked to recompute a target that no longer resolves. Given the
	// single-store invariant this should be unreachable; it is logged and
	// surfaced as a server error, never swallowed.
	ErrStoreInconsistent = errors.New("store inconsistency")

	// ErrDuplicateReview rejects an id collision instead of overwriting.
	ErrDuplicateReview = errors.New("duplicate review id")
)

// FieldIssue is one field-level validation failure.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level issue found in a payload.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
