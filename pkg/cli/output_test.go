package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"dataquery-hq/dataquery/pkg/datasource"
)

func sampleResultSet() *datasource.ResultSet {
	return &datasource.ResultSet{
		Columns: []string{"id", "name"},
		Rows: []map[string]any{
			{"id": int64(1), "name": "Alice"},
			{"id": int64(2), "name": "Bob"},
		},
		RowCount: 2,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): unexpected error %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTableFormatterResultSet(t *testing.T) {
	formatter := &TableFormatter{}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, sampleResultSet()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"id", "name", "Alice", "Bob", "(2 rows)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableFormatterFallback(t *testing.T) {
	formatter := &TableFormatter{}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, "plain message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "plain message\n" {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), "plain message\n")
	}
}

func TestJSONFormatter(t *testing.T) {
	formatter := &JSONFormatter{Indent: true}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, sampleResultSet()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["row_count"].(float64) != 2 {
		t.Errorf("expected row_count 2, got %v", decoded["row_count"])
	}
}

func TestCSVFormatter(t *testing.T) {
	formatter := &CSVFormatter{}
	buf := &bytes.Buffer{}

	if err := formatter.FormatTo(buf, sampleResultSet()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "id,name" {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestCSVFormatterRejectsOtherValues(t *testing.T) {
	formatter := &CSVFormatter{}
	if err := formatter.FormatTo(&bytes.Buffer{}, "not a result set"); err == nil {
		t.Error("expected error for non result-set data")
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter for json")
	}
	if _, ok := NewFormatter(FormatCSV).(*CSVFormatter); !ok {
		t.Error("expected CSVFormatter for csv")
	}
	if _, ok := NewFormatter(FormatTable).(*TableFormatter); !ok {
		t.Error("expected TableFormatter for table")
	}
}
