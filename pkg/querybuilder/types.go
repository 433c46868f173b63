package querybuilder

// Operator identifies a filter comparison.
type Operator string

// Supported filter operators.
const (
	OpEquals       Operator = "equals"
	OpNotEquals    Operator = "not_equals"
	OpContains     Operator = "contains"
	OpNotContains  Operator = "not_contains"
	OpGreaterThan  Operator = "greater_than"
	OpLessThan     Operator = "less_than"
	OpGreaterEqual Operator = "greater_equal"
	OpLessEqual    Operator = "less_equal"
	OpIsNull       Operator = "is_null"
	OpIsNotNull    Operator = "is_not_null"
	OpIn           Operator = "in"
	OpNotIn        Operator = "not_in"
)

// sqlTokens maps each operator to its SQL comparison token. Unknown
// operators fall back to "=" at render time.
var sqlTokens = map[Operator]string{
	OpEquals:       "=",
	OpNotEquals:    "!=",
	OpContains:     "LIKE",
	OpNotContains:  "NOT LIKE",
	OpGreaterThan:  ">",
	OpLessThan:     "<",
	OpGreaterEqual: ">=",
	OpLessEqual:    "<=",
	OpIsNull:       "IS NULL",
	OpIsNotNull:    "IS NOT NULL",
	OpIn:           "IN",
	OpNotIn:        "NOT IN",
}

// IsNullCheck reports whether the operator tests for NULL and therefore
// takes no value.
func (o Operator) IsNullCheck() bool {
	return o == OpIsNull || o == OpIsNotNull
}

// Filter is a single column predicate.
//
// Value may be a string, a number, or a slice of either (for the in/not_in
// operators). Filters with an empty column or value are ignored by
// BuildQuery and flagged by Validate.
type Filter struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// Sort describes the optional ORDER BY clause. An empty Column means no
// explicit ordering; an empty Direction defaults to ASC.
type Sort struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Request is a complete description of a query to compile. It is a plain
// value: construct it, validate it, compile it, discard it.
type Request struct {
	DatabaseID string   `json:"database_id"`
	Table      string   `json:"table"`
	Columns    []string `json:"columns"`
	Filters    []Filter `json:"filters"`
	Sort       Sort     `json:"sort"`
	Limit      int      `json:"limit"`
}

// ValidationResult carries the outcome of Validate. Errors are ordered by
// the sequence in which rules are checked.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}
