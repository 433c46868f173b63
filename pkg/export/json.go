package export

import (
	"context"
	"encoding/json"
	"io"

	"dataquery-hq/dataquery/pkg/datasource"
)

// JSONExporter exports result sets to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes a result set's rows to the provided writer as a JSON
// array of objects.
func (e *JSONExporter) Export(ctx context.Context, result *datasource.ResultSet, w io.Writer) error {
	if len(result.Rows) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(result.Rows, "", "  ")
	} else {
		data, err = json.Marshal(result.Rows)
	}
	if err != nil {
		return NewExportError("json", len(result.Rows), err)
	}

	if _, err := w.Write(data); err != nil {
		return NewExportError("json", len(result.Rows), err)
	}
	return nil
}

// ExportStream writes rows from a channel as a JSON array, one row at a
// time, for large exports.
func (e *JSONExporter) ExportStream(ctx context.Context, rowsCh <-chan map[string]any, w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return NewExportError("json", 0, err)
	}

	first := true
	rowCount := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case row, ok := <-rowsCh:
			if !ok {
				if _, err := w.Write([]byte("]")); err != nil {
					return NewExportError("json", rowCount, err)
				}
				return nil
			}

			if !first {
				if _, err := w.Write([]byte(",")); err != nil {
					return NewExportError("json", rowCount, err)
				}
			}
			first = false

			data, err := json.Marshal(row)
			if err != nil {
				return NewExportError("json", rowCount, err)
			}
			if _, err := w.Write(data); err != nil {
				return NewExportError("json", rowCount, err)
			}
			rowCount++
		}
	}
}
