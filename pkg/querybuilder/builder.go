package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// BuildQuery renders a request into a SELECT statement. The output is a
// pure function of the input: the same request always produces a
// byte-identical string.
//
// Filters missing a column or value are dropped silently rather than
// reported; run Validate first when completeness matters. The table name
// and all values are emitted verbatim, without quoting of identifiers or
// escaping of embedded single quotes.
func BuildQuery(req Request) string {
	var b strings.Builder

	b.WriteString("SELECT ")
	if len(req.Columns) > 0 {
		b.WriteString(strings.Join(req.Columns, ", "))
	} else {
		b.WriteString("*")
	}
	b.WriteString(" FROM ")
	b.WriteString(req.Table)

	b.WriteString(whereClause(req.Filters))

	if req.Sort.Column != "" {
		dir := req.Sort.Direction
		if dir == "" {
			dir = "ASC"
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(req.Sort.Column)
		b.WriteString(" ")
		b.WriteString(dir)
	}

	if req.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(req.Limit))
	}

	return b.String()
}

// BuildCountQuery renders the row-count companion of a request: a
// SELECT COUNT(*) over the same table with the same WHERE clause.
// Projection, ordering and limit are ignored.
func BuildCountQuery(req Request) string {
	return "SELECT COUNT(*) FROM " + req.Table + whereClause(req.Filters)
}

// whereClause renders the conjunction of all complete filters, including
// the leading " WHERE ", or an empty string when nothing survives.
func whereClause(filters []Filter) string {
	var preds []string
	for _, f := range filters {
		if f.Column == "" || isEmptyValue(f.Value) {
			continue
		}
		preds = append(preds, renderPredicate(f))
	}
	if len(preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(preds, " AND ")
}

// renderPredicate renders a single complete filter. Null checks ignore the
// value entirely; unknown operators fall back to equality.
func renderPredicate(f Filter) string {
	if f.Operator.IsNullCheck() {
		return f.Column + " " + sqlTokens[f.Operator]
	}

	token, ok := sqlTokens[f.Operator]
	if !ok {
		token = "="
	}

	if f.Operator == OpIn || f.Operator == OpNotIn {
		return f.Column + " " + token + " (" + renderList(f.Value) + ")"
	}

	return f.Column + " " + token + " " + renderValue(f.Value, f.Operator)
}

// renderValue renders a scalar value. Strings are single-quoted verbatim;
// contains operators additionally wrap the value in % wildcards.
func renderValue(v any, op Operator) string {
	switch val := v.(type) {
	case string:
		if op == OpContains || op == OpNotContains {
			return "'%" + val + "%'"
		}
		return "'" + val + "'"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("'%v'", val)
	}
}

// renderList renders the parenthesized body of an IN / NOT IN predicate.
// Slices become a comma-joined list with each element rendered as a
// scalar; a lone scalar is treated as a one-element list.
func renderList(v any) string {
	switch vals := v.(type) {
	case []string:
		parts := make([]string, len(vals))
		for i, s := range vals {
			parts[i] = "'" + s + "'"
		}
		return strings.Join(parts, ", ")
	case []any:
		parts := make([]string, len(vals))
		for i, e := range vals {
			parts[i] = renderValue(e, OpIn)
		}
		return strings.Join(parts, ", ")
	default:
		return renderValue(v, OpIn)
	}
}
