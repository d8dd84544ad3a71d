package interview

import "fmt"

// InvalidInputError indicates a turn was rejected before any model call
// because the answer failed basic validation.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid answer: %s", e.Reason)
}

// UpstreamError indicates the generation call or its stream failed. The turn
// was aborted with no session mutation.
type UpstreamError struct {
	Cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}
