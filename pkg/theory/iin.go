package theory

import (
	"fmt"
	"strings"
)

// DetectIINColumn finds the first column whose name contains "IIN"
// (case-insensitive). Empty string means none found.
func DetectIINColumn(columns []string) string {
	for _, name := range columns {
		if strings.Contains(strings.ToUpper(name), "IIN") {
			return name
		}
	}
	return ""
}

// ExtractIINs collects the unique, trimmed, non-empty values of the IIN
// column, preserving first-seen order.
func ExtractIINs(rows []map[string]any, column string) []string {
	if column == "" {
		return nil
	}

	seen := make(map[string]bool)
	var iins []string
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		iin := strings.TrimSpace(fmt.Sprintf("%v", v))
		if iin == "" || seen[iin] {
			continue
		}
		seen[iin] = true
		iins = append(iins, iin)
	}
	return iins
}
