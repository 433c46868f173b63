package querybuilder

import "fmt"

// Validate checks a request for completeness. All rules are evaluated in a
// fixed order and every violation is reported; validation never
// short-circuits. The function is pure and never returns an error value:
// the result itself is the verdict.
func Validate(req Request) ValidationResult {
	var errs []string

	if req.Table == "" {
		errs = append(errs, "Table selection is required")
	}

	for i, f := range req.Filters {
		if f.Column == "" {
			continue
		}
		if f.Operator.IsNullCheck() {
			continue
		}
		if isEmptyValue(f.Value) {
			errs = append(errs, fmt.Sprintf("Filter %d: Value is required", i+1))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// isEmptyValue reports whether a filter value counts as absent. Nil, empty
// strings and empty slices are absent; everything else, including zero
// numbers, is present.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
