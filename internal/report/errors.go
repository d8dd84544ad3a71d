package report

import (
	"fmt"
	"strings"
)

// ParseError indicates the model's reply was not the expected JSON document.
// Raw carries the reply verbatim for diagnostics. Nothing is persisted when
// this is returned, so the report call is always safe to retry.
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("report reply is not valid report JSON: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ValidationError lists the schema violations found in an otherwise
// well-formed JSON reply.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single schema violation at one field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("report validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}
