package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (PKGSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("source", os.Getenv("PKGSHIP_SOURCE"), &cfg.Endpoint)
	s.setString("api-key", os.Getenv("PKGSHIP_API_KEY"), &cfg.APIKey)
	s.setString("state-dir", os.Getenv("PKGSHIP_STATE_DIR"), &cfg.StateDir)
	s.setBoolFromString("v1", os.Getenv("PKGSHIP_USE_V1"), &cfg.UseV1)

	return s.setDuration("timeout", os.Getenv("PKGSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout)
}
