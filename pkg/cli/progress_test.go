package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestProgressReporter(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(10)
	progress.Update(5)
	progress.Finish()

	out := buf.String()
	if !strings.Contains(out, "50.0%") {
		t.Errorf("expected midpoint rendering, got %q", out)
	}
	if !strings.Contains(out, "100.0%") {
		t.Errorf("expected completion rendering, got %q", out)
	}
	if !strings.Contains(out, "(10/10)") {
		t.Errorf("expected final count, got %q", out)
	}
}

func TestProgressReporterZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(1)
	progress.Finish()

	// Nothing rendered beyond the terminating newline.
	if got := strings.TrimSpace(buf.String()); got != "" {
		t.Errorf("expected no bar for zero total, got %q", got)
	}
}

func TestProgressReporterError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(3)
	progress.Error(errors.New("disk full"))

	if !strings.Contains(buf.String(), "error: disk full") {
		t.Errorf("expected error line, got %q", buf.String())
	}
}
