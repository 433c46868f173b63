package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"dataquery-hq/dataquery/pkg/datasource"
)

// CSVExporter exports result sets to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes a result set to the provided writer in CSV format,
// preserving the result's column order.
func (e *CSVExporter) Export(ctx context.Context, result *datasource.ResultSet, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(result.Columns); err != nil {
			return NewExportError("csv", 0, err)
		}
	}

	for i, row := range result.Rows {
		if err := ctx.Err(); err != nil {
			return NewExportError("csv", i, err)
		}
		if err := writer.Write(rowToRecord(result.Columns, row)); err != nil {
			return NewExportError("csv", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return NewExportError("csv", len(result.Rows), err)
	}
	return nil
}

// ExportStream writes rows from a channel to CSV format. This is
// memory-efficient for large result sets; the writer flushes every 100
// rows so long downloads make visible progress.
func (e *CSVExporter) ExportStream(ctx context.Context, columns []string, rowsCh <-chan map[string]any, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(columns); err != nil {
			return NewExportError("csv", 0, err)
		}
	}

	rowCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case row, ok := <-rowsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return NewExportError("csv", rowCount, err)
				}
				return nil
			}

			if err := writer.Write(rowToRecord(columns, row)); err != nil {
				return NewExportError("csv", rowCount, err)
			}
			rowCount++

			if rowCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return NewExportError("csv", rowCount, err)
				}
			}
		}
	}
}

// rowToRecord renders one row as CSV fields in column order.
func rowToRecord(columns []string, row map[string]any) []string {
	record := make([]string, len(columns))
	for i, col := range columns {
		record[i] = formatValue(row[col])
	}
	return record
}

// formatValue renders a cell value as text. NULLs become empty fields.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
