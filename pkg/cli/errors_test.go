package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestUsageError(t *testing.T) {
	err := NewUsageError("format", "unknown format \"xml\"")
	want := `invalid --format: unknown format "xml"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCommandError(t *testing.T) {
	cause := fmt.Errorf("catalog file missing")
	err := NewCommandError("validate", cause)

	want := "command validate failed: catalog file missing"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected CommandError to unwrap to its cause")
	}
}
