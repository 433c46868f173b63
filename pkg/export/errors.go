package export

import "fmt"

// ExportError represents an error during result export.
type ExportError struct {
	Format   string // Export format ("json", "csv")
	RowCount int    // Number of rows processed when the error occurred
	Cause    error  // Underlying error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, row_count=%d]: %v", e.Format, e.RowCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, rowCount int, cause error) *ExportError {
	return &ExportError{Format: format, RowCount: rowCount, Cause: cause}
}
