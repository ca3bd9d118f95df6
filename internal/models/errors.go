package models

import "fmt"

// ValidationError reports a required field that was missing or empty
// at construction time. The caller must fix the input; there is no
// automatic retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Diagnostic kinds for tolerated inconsistencies.
const (
	DiagClampedConfidence  = "confidence_clamped"
	DiagDroppedAlternative = "alternative_dropped"
)

// Diagnostic records a non-fatal inconsistency that was tolerated while
// building a recommendation, e.g. a clamped confidence score or a
// malformed alternative that was dropped. Diagnostics travel alongside
// the result instead of failing it.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Details string `json:"details"`
}
