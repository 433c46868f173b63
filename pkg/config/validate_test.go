package config

import (
	"strings"
	"testing"
)

// validConfig returns a fully defaulted configuration that passes
// validation, for tests to mutate.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidateDefaults(t *testing.T) {
	if err := Validate(validConfig(t)); err != nil {
		t.Errorf("defaulted config should validate, got %v", err)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "empty listen address",
			mutate: func(c *Config) { c.Server.ListenAddress = "" },
			field:  "server.listen_address",
		},
		{
			name:   "negative read timeout",
			mutate: func(c *Config) { c.Server.ReadTimeout = -1 },
			field:  "server.read_timeout",
		},
		{
			name:   "empty catalog path",
			mutate: func(c *Config) { c.Catalog.Path = "" },
			field:  "catalog.path",
		},
		{
			name:   "unknown datasource driver",
			mutate: func(c *Config) { c.Datasource.Driver = "oracle" },
			field:  "datasource.driver",
		},
		{
			name:   "idle conns exceed open conns",
			mutate: func(c *Config) { c.Datasource.MaxIdleConns = 100 },
			field:  "datasource.max_idle_conns",
		},
		{
			name:   "max limit below default limit",
			mutate: func(c *Config) { c.Datasource.MaxLimit = 1 },
			field:  "datasource.max_limit",
		},
		{
			name:   "negative retention",
			mutate: func(c *Config) { c.History.RetentionDays = -5 },
			field:  "history.retention_days",
		},
		{
			name: "retention without schedule",
			mutate: func(c *Config) {
				c.History.RetentionDays = 10
				c.History.RetentionSchedule = ""
			},
			field: "history.retention_schedule",
		},
		{
			name: "unknown api key role",
			mutate: func(c *Config) {
				c.Security.Auth.Keys = []APIKeyConfig{
					{Key: "secret", UserID: "u1", Role: "superuser"},
				}
			},
			field: "security.auth.keys[0].role",
		},
		{
			name: "distribution without users query",
			mutate: func(c *Config) {
				c.Distribution.Enabled = true
				c.Distribution.UsersQuery = ""
			},
			field: "distribution.users_query",
		},
		{
			name: "notify enabled without host",
			mutate: func(c *Config) {
				c.Notify.Enabled = true
				c.Notify.From = "x@example.com"
			},
			field: "notify.host",
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Telemetry.Logging.Level = "verbose" },
			field:  "telemetry.logging.level",
		},
		{
			name:   "unknown log format",
			mutate: func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			field:  "telemetry.logging.format",
		},
		{
			name:   "metrics path without slash",
			mutate: func(c *Config) { c.Telemetry.Metrics.Path = "metrics" },
			field:  "telemetry.metrics.path",
		},
		{
			name:   "auth enabled without keys",
			mutate: func(c *Config) { c.Security.Auth.Enabled = true },
			field:  "security.auth.keys",
		},
		{
			name: "key without user id",
			mutate: func(c *Config) {
				c.Security.Auth.Keys = []APIKeyConfig{{Key: "secret"}}
			},
			field: "security.auth.keys[0].user_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			verr, ok := err.(ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error on field %q, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidationErrorAccumulates(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.ListenAddress = ""
	cfg.Catalog.Path = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	verr := err.(ValidationError)
	if len(verr.Errors) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(verr.Errors), verr.Errors)
	}
	if !strings.Contains(verr.Error(), "2 errors") {
		t.Errorf("error string should count errors, got %q", verr.Error())
	}
}

func TestApplyDefaultsIdempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Server.ListenAddress != first.Server.ListenAddress ||
		cfg.Datasource.MaxLimit != first.Datasource.MaxLimit ||
		cfg.History.RetentionSchedule != first.History.RetentionSchedule {
		t.Error("ApplyDefaults should be idempotent")
	}
}

func TestApplyDefaultsAPIKeyEnabled(t *testing.T) {
	cfg := &Config{}
	disabled := false
	cfg.Security.Auth.Keys = []APIKeyConfig{
		{Key: "a", UserID: "u1"},
		{Key: "b", UserID: "u2", Enabled: &disabled},
	}
	ApplyDefaults(cfg)

	if cfg.Security.Auth.Keys[0].Enabled == nil || !*cfg.Security.Auth.Keys[0].Enabled {
		t.Error("unset key enabled flag should default to true")
	}
	if *cfg.Security.Auth.Keys[1].Enabled {
		t.Error("explicit false enabled flag should be preserved")
	}
}
