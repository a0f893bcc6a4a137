package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAndApplyFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
endpoint = "https://gallery.example"
api_key = "file-key"
use_v1 = true
state_dir = "/var/lib/pkgship"
http_timeout = "2m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig returned error: %v", err)
	}
	if fc.UseV1 == nil || !*fc.UseV1 {
		t.Fatal("use_v1 not parsed")
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig returned error: %v", err)
	}

	if cfg.Endpoint != "https://gallery.example" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.APIKey != "file-key" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if !cfg.UseV1 {
		t.Error("UseV1 not applied")
	}
	if cfg.StateDir != "/var/lib/pkgship" {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}
	if cfg.HTTPTimeout != 2*time.Minute {
		t.Errorf("HTTPTimeout = %v, want 2m", cfg.HTTPTimeout)
	}
}

func TestApplyFileConfigRespectsFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoint = "https://from-flag.example"

	no := false
	fc := FileConfig{Endpoint: "https://from-file.example", UseV1: &no}
	changed := map[string]bool{"source": true}

	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig returned error: %v", err)
	}
	if cfg.Endpoint != "https://from-flag.example" {
		t.Errorf("flag value overridden by file: %q", cfg.Endpoint)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if FileExists(path) {
		t.Error("FileExists true for missing file")
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists false for regular file")
	}
	if FileExists(dir) {
		t.Error("FileExists true for directory")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("PKGSHIP_SOURCE", "https://env.example")
	t.Setenv("PKGSHIP_USE_V1", "1")
	t.Setenv("PKGSHIP_HTTP_TIMEOUT", "45s")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig returned error: %v", err)
	}

	if cfg.Endpoint != "https://env.example" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if !cfg.UseV1 {
		t.Error("UseV1 not applied from env")
	}
	if cfg.HTTPTimeout != 45*time.Second {
		t.Errorf("HTTPTimeout = %v, want 45s", cfg.HTTPTimeout)
	}
}
