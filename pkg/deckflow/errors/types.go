package errors

import "fmt"

// BackendError represents a model backend failure with status code.
type BackendError struct {
	StatusCode int
	Message    string
	Backend    string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("backend %s returned %d: %s", e.Backend, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// OutputParseError indicates failure to parse structured model output.
type OutputParseError struct {
	Input   string
	Message string
}

// Error implements the error interface.
func (e *OutputParseError) Error() string {
	return fmt.Sprintf("output parse error: %s", e.Message)
}

// ValidationError indicates validation failures in model output.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// TimeoutError indicates an operation timed out.
type TimeoutError struct {
	Operation string
	Duration  string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s: %s", e.Duration, e.Operation)
}

// HumanInterventionError indicates human input is required.
type HumanInterventionError struct {
	Question string
	Options  []string
	Original error
}

// Error implements the error interface.
func (e *HumanInterventionError) Error() string {
	return fmt.Sprintf("human intervention required: %s", e.Question)
}

// Unwrap returns the original error.
func (e *HumanInterventionError) Unwrap() error {
	return e.Original
}
