package cliconfig

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateDir = "/tmp/pkgship-test"
	cfg.Endpoint = "https://gallery.example/"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if cfg.Endpoint != "https://gallery.example" {
		t.Errorf("Endpoint = %q, want trailing slash stripped", cfg.Endpoint)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty state dir")
	}

	cfg = DefaultConfig()
	cfg.StateDir = "/tmp/pkgship-test"
	cfg.HTTPTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-positive timeout")
	}
}

func TestConfigSetterRespectsChangedFlags(t *testing.T) {
	cfg := Config{Endpoint: "https://from-flag.example", HTTPTimeout: time.Minute}
	s := newConfigSetter(map[string]bool{"source": true})

	s.setString("source", "https://from-file.example", &cfg.Endpoint)
	if cfg.Endpoint != "https://from-flag.example" {
		t.Errorf("explicit flag overridden: %q", cfg.Endpoint)
	}

	s.setString("api-key", "file-key", &cfg.APIKey)
	if cfg.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file-key", cfg.APIKey)
	}

	if err := s.setDuration("timeout", "90s", &cfg.HTTPTimeout); err != nil {
		t.Fatalf("setDuration returned error: %v", err)
	}
	if cfg.HTTPTimeout != 90*time.Second {
		t.Errorf("HTTPTimeout = %v, want 90s", cfg.HTTPTimeout)
	}

	if err := s.setDuration("timeout", "not-a-duration", &cfg.HTTPTimeout); err == nil {
		t.Error("expected error for invalid duration")
	}

	v1 := true
	s.setBool("v1", &v1, &cfg.UseV1)
	if !cfg.UseV1 {
		t.Error("UseV1 not applied from pointer")
	}
	s.setBool("v1", nil, &cfg.UseV1)
	if !cfg.UseV1 {
		t.Error("nil pointer must not reset UseV1")
	}

	s.setBoolFromString("v1", "false", &cfg.UseV1)
	if cfg.UseV1 {
		t.Error("UseV1 not applied from string")
	}
}
