// Package errors defines the pipeline error taxonomy. Stages wrap these
// sentinels so the orchestrator can tell a retryable failure from bad
// input data.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is returned when the upstream order API cannot be
	// reached or answers with a non-2xx status.
	ErrTransport = errors.New("transport failure")

	// ErrMissingInput is returned when a required upstream collection or
	// stage artifact is absent. The stage fails immediately with no
	// partial output.
	ErrMissingInput = errors.New("missing upstream input")

	// ErrTypeCoercion is returned when a field value cannot be coerced
	// to its target type. Treated as invalid input data, not retried.
	ErrTypeCoercion = errors.New("cannot coerce value")

	// ErrDateParse is returned for a malformed order date. Affected rows
	// are excluded from date-keyed aggregation only.
	ErrDateParse = errors.New("cannot parse date")

	// ErrPersistence is returned when the relational sink fails. The
	// orchestrator retries it; it is never swallowed.
	ErrPersistence = errors.New("persistence failure")
)

// Coercion wraps ErrTypeCoercion with the offending field and value.
func Coercion(field string, value interface{}) error {
	return fmt.Errorf("%w: field %s from %T(%v)", ErrTypeCoercion, field, value, value)
}

// DateParse wraps ErrDateParse with the offending value.
func DateParse(value string, cause error) error {
	return fmt.Errorf("%w: %q: %v", ErrDateParse, value, cause)
}
