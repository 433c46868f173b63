package theory

import (
	"reflect"
	"testing"
)

func TestDetectIINColumn(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{"exact", []string{"id", "IIN", "name"}, "IIN"},
		{"lowercase", []string{"id", "iin"}, "iin"},
		{"embedded", []string{"id", "user_iin_code"}, "user_iin_code"},
		{"first match wins", []string{"client_iin", "IIN"}, "client_iin"},
		{"none", []string{"id", "name"}, ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectIINColumn(tt.columns); got != tt.want {
				t.Errorf("DetectIINColumn(%v) = %q, want %q", tt.columns, got, tt.want)
			}
		})
	}
}

func TestExtractIINs(t *testing.T) {
	rows := []map[string]any{
		{"iin": "850101300101"},
		{"iin": " 850101300102 "},
		{"iin": "850101300101"}, // duplicate
		{"iin": ""},
		{"iin": nil},
		{"iin": int64(990202400303)},
	}

	got := ExtractIINs(rows, "iin")
	want := []string{"850101300101", "850101300102", "990202400303"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractIINs() = %v, want %v", got, want)
	}
}

func TestExtractIINsEmptyColumn(t *testing.T) {
	if got := ExtractIINs([]map[string]any{{"iin": "1"}}, ""); got != nil {
		t.Errorf("ExtractIINs() = %v, want nil", got)
	}
}
