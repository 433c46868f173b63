package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMissingTable(t *testing.T) {
	res := Validate(Request{})

	require.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "Table selection is required", res.Errors[0])
}

func TestValidateFilterValueRequired(t *testing.T) {
	tests := []struct {
		name    string
		filters []Filter
		want    []string
	}{
		{
			name:    "missing value flagged with position",
			filters: []Filter{{Column: "status", Operator: OpEquals}},
			want:    []string{"Filter 1: Value is required"},
		},
		{
			name: "positions are one-based and ordered",
			filters: []Filter{
				{Column: "a", Operator: OpEquals, Value: "x"},
				{Column: "b", Operator: OpContains},
				{Column: "c", Operator: OpGreaterThan},
			},
			want: []string{"Filter 2: Value is required", "Filter 3: Value is required"},
		},
		{
			name:    "null checks never require a value",
			filters: []Filter{{Column: "deleted_at", Operator: OpIsNull}},
			want:    nil,
		},
		{
			name:    "filter without column is skipped",
			filters: []Filter{{Operator: OpEquals}},
			want:    nil,
		},
		{
			name:    "empty string value counts as missing",
			filters: []Filter{{Column: "name", Operator: OpEquals, Value: ""}},
			want:    []string{"Filter 1: Value is required"},
		},
		{
			name:    "zero counts as a value",
			filters: []Filter{{Column: "balance", Operator: OpEquals, Value: 0}},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(Request{Table: "users", Filters: tt.filters})
			assert.Equal(t, tt.want, res.Errors)
			assert.Equal(t, len(tt.want) == 0, res.Valid)
		})
	}
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	res := Validate(Request{
		Filters: []Filter{{Column: "status", Operator: OpEquals}},
	})

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "Table selection is required", res.Errors[0])
	assert.Equal(t, "Filter 1: Value is required", res.Errors[1])
	assert.False(t, res.Valid)
}
