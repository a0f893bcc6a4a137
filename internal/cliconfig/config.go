package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the configuration for the pkgship CLI.
type Config struct {
	// Endpoint is the gallery endpoint to publish to. When empty, the
	// registry's active endpoint is used.
	Endpoint string

	// APIKey is the credential for the endpoint. When empty, the stored
	// credential for the endpoint is used.
	APIKey string

	// UseV1 selects the V1 push protocol instead of V2.
	UseV1 bool

	// StateDir holds sources.toml, credentials.toml and settings.toml.
	StateDir string

	// HTTPTimeout bounds the entire push request.
	HTTPTimeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		StateDir:    defaultStateDir(),
		HTTPTimeout: 300 * time.Second,
		APIKey:      os.Getenv("PKGSHIP_API_KEY"),
	}
}

func defaultStateDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".pkgship")
	}
	return ""
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state-dir is required")
	}

	// Ensure no trailing slash
	if len(c.Endpoint) > 0 && c.Endpoint[len(c.Endpoint)-1] == '/' {
		c.Endpoint = c.Endpoint[:len(c.Endpoint)-1]
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
