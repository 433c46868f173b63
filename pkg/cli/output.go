package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"dataquery-hq/dataquery/pkg/datasource"
	"dataquery-hq/dataquery/pkg/export"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatTable is an aligned text table (default).
	FormatTable OutputFormat = "table"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV output.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or csv)", s)
	}
}

// Formatter renders command output. Result sets get format-specific
// treatment; any other value falls back to a generic rendering.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// TableFormatter renders result sets as an aligned text table.
type TableFormatter struct{}

// FormatTo writes data to w. Result sets become a header row plus one
// line per row; other values print with fmt.
func (f *TableFormatter) FormatTo(w io.Writer, data any) error {
	rs, ok := data.(*datasource.ResultSet)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(rs.Columns, "\t"))
	for _, row := range rs.Rows {
		cells := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			if v := row[col]; v != nil {
				cells[i] = fmt.Sprintf("%v", v)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "(%d rows)\n", rs.RowCount)
	return err
}

// JSONFormatter renders output as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatTo writes data to w as JSON.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter renders result sets as CSV with a header row.
type CSVFormatter struct{}

// FormatTo writes a result set to w as CSV. Other values are rejected.
func (f *CSVFormatter) FormatTo(w io.Writer, data any) error {
	rs, ok := data.(*datasource.ResultSet)
	if !ok {
		return fmt.Errorf("csv output requires a result set, got %T", data)
	}
	exporter := &export.CSVExporter{IncludeHeader: true}
	return exporter.Export(context.Background(), rs, w)
}

// NewFormatter creates a formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TableFormatter{}
	}
}
