package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testConfigYAML = `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: 10s
catalog:
  path: "./testdata/catalog.yaml"
datasource:
  driver: sqlite3
  path: "data/test.db"
  default_limit: 200
history:
  retention_days: 30
telemetry:
  logging:
    level: debug
    format: text
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Explicit values survive
	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q, want 0.0.0.0:9090", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if cfg.Datasource.DefaultLimit != 200 {
		t.Errorf("DefaultLimit = %d, want 200", cfg.Datasource.DefaultLimit)
	}
	if cfg.History.RetentionDays != 30 {
		t.Errorf("RetentionDays = %d, want 30", cfg.History.RetentionDays)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Telemetry.Logging.Level)
	}

	// Unset fields get defaults
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("WriteTimeout = %v, want default %v", cfg.Server.WriteTimeout, DefaultWriteTimeout)
	}
	if cfg.Datasource.MaxLimit != DefaultQueryMaxLimit {
		t.Errorf("MaxLimit = %d, want default %d", cfg.Datasource.MaxLimit, DefaultQueryMaxLimit)
	}
	if cfg.History.RetentionSchedule != DefaultHistoryRetentionSchedule {
		t.Errorf("RetentionSchedule = %q, want default %q", cfg.History.RetentionSchedule, DefaultHistoryRetentionSchedule)
	}
	if !cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("Metrics.Enabled should default to true")
	}
}

func TestLoadConfigExplicitFalseFlags(t *testing.T) {
	content := `
server:
  cors:
    enabled: false
datasource:
  wal_mode: false
history:
  enabled: false
telemetry:
  metrics:
    enabled: false
`
	cfg, err := LoadConfig(writeTestConfig(t, content))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.CORS.IsEnabled() {
		t.Error("cors.enabled: explicit false was overridden by defaults")
	}
	if cfg.Datasource.WALEnabled() {
		t.Error("wal_mode: explicit false was overridden by defaults")
	}
	if cfg.History.IsEnabled() {
		t.Error("history.enabled: explicit false was overridden by defaults")
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("metrics.enabled: explicit false was overridden by defaults")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	if _, err := LoadConfig(writeTestConfig(t, "server: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	content := `
datasource:
  driver: postgres
`
	if _, err := LoadConfig(writeTestConfig(t, content)); err == nil {
		t.Error("expected validation error for unknown driver")
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("DATAQUERY_SERVER_LISTEN_ADDRESS", "127.0.0.1:7777")
	t.Setenv("DATAQUERY_DATASOURCE_QUERY_TIMEOUT", "45s")
	t.Setenv("DATAQUERY_HISTORY_RETENTION_DAYS", "7")
	t.Setenv("DATAQUERY_HISTORY_ENABLED", "false")
	t.Setenv("DATAQUERY_NOTIFY_RECIPIENTS", "a@example.com, b@example.com")

	cfg, err := LoadConfigWithEnvOverrides(writeTestConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "127.0.0.1:7777" {
		t.Errorf("ListenAddress = %q, env override not applied", cfg.Server.ListenAddress)
	}
	if cfg.Datasource.QueryTimeout != 45*time.Second {
		t.Errorf("QueryTimeout = %v, want 45s", cfg.Datasource.QueryTimeout)
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7", cfg.History.RetentionDays)
	}
	if cfg.History.IsEnabled() {
		t.Error("History.Enabled should be overridden to false")
	}
	if len(cfg.Notify.Recipients) != 2 || cfg.Notify.Recipients[1] != "b@example.com" {
		t.Errorf("Recipients = %v, want two trimmed addresses", cfg.Notify.Recipients)
	}
}

func TestLoadConfigWithEnvOverridesInvalid(t *testing.T) {
	t.Setenv("DATAQUERY_DATASOURCE_DRIVER", "mysql")

	if _, err := LoadConfigWithEnvOverrides(writeTestConfig(t, testConfigYAML)); err == nil {
		t.Error("expected validation error after env override")
	}
}
