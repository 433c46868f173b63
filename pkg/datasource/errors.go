package datasource

import "fmt"

// ExecError represents a failure executing SQL against the datasource.
type ExecError struct {
	SQL       string // Statement that failed
	Operation string // Operation that failed ("query", "ping", "open", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	return fmt.Sprintf("datasource error [operation=%s]: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExecError) Unwrap() error {
	return e.Cause
}

// NewExecError creates a new ExecError.
func NewExecError(operation, sqlText string, cause error) *ExecError {
	return &ExecError{
		SQL:       sqlText,
		Operation: operation,
		Cause:     cause,
	}
}
