package config

import (
	"path/filepath"
	"testing"
)

func TestSetAndGetConfig(t *testing.T) {
	orig := GetConfig()
	defer SetConfig(orig)

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Server.ListenAddress = "127.0.0.1:7777"
	SetConfig(cfg)

	got := GetConfig()
	if got == nil {
		t.Fatal("GetConfig() = nil after SetConfig")
	}
	if got.Server.ListenAddress != "127.0.0.1:7777" {
		t.Errorf("ListenAddress = %q, want %q", got.Server.ListenAddress, "127.0.0.1:7777")
	}
}

func TestReloadConfig(t *testing.T) {
	orig := GetConfig()
	defer SetConfig(orig)

	path := writeTestConfig(t, testConfigYAML)
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig() error = %v", err)
	}
	if got := GetConfig().Server.ListenAddress; got != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q, want %q", got, "0.0.0.0:9090")
	}
}

func TestReloadConfigKeepsOldOnError(t *testing.T) {
	orig := GetConfig()
	defer SetConfig(orig)

	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Server.ListenAddress = "127.0.0.1:8888"
	SetConfig(cfg)

	if err := ReloadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("ReloadConfig() with missing file should fail")
	}
	if got := GetConfig().Server.ListenAddress; got != "127.0.0.1:8888" {
		t.Errorf("ListenAddress = %q, want previous value kept", got)
	}
}

func TestMustGetConfigPanicsWhenUninitialized(t *testing.T) {
	orig := GetConfig()
	defer SetConfig(orig)

	SetConfig(nil)
	defer func() {
		if recover() == nil {
			t.Error("MustGetConfig() should panic when uninitialized")
		}
	}()
	MustGetConfig()
}
