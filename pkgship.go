// Package pkgship publishes locally built package artifacts to remembered
// gallery endpoints.
//
// Example usage:
//
//	cfg := pkgship.DefaultConfig()
//	cfg.Endpoint = "https://gallery.example/api/v2"
//	cfg.APIKey = "your-api-key"
//	if err := pkgship.Publish(context.Background(), "mylib.1.2.3.nupkg", cfg); err != nil {
//	    log.Fatal(err)
//	}
package pkgship

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	fsadapter "github.com/pkgship/pkgship/internal/adapters/fs"
	httpadapter "github.com/pkgship/pkgship/internal/adapters/http"
	"github.com/pkgship/pkgship/internal/app"
	"github.com/pkgship/pkgship/internal/cliconfig"
	"github.com/pkgship/pkgship/internal/domain"
)

// Config holds the configuration for a publish.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set Endpoint (or have an active remembered source)
// before calling Publish.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Logger returns the package-level zerolog logger.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}

// Publish runs one publish attempt for the package artifact at path and
// blocks until it reaches a terminal outcome. The endpoint used becomes the
// active remembered source whether the attempt succeeds or fails; the
// credential is stored for the endpoint only on success. A failed attempt is
// returned as an error carrying the gallery's message.
func Publish(ctx context.Context, path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	name, version, err := domain.ParseArtifactPath(path)
	if err != nil {
		return err
	}
	artifact := domain.NewPackageArtifact(name, version, func() (io.ReadSeeker, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	})

	log := cliconfig.Logger()
	session := app.NewSession(artifact, app.Deps{
		Channels:    httpadapter.Factory(&http.Client{Timeout: cfg.HTTPTimeout}, log),
		Credentials: fsadapter.NewCredentialFileStore(cfg.StateDir),
		Registry:    fsadapter.NewEndpointFileRegistry(cfg.StateDir, log),
		Settings:    fsadapter.NewSettingsFileStore(cfg.StateDir),
		Logger:      log,
	})
	defer session.Dispose()

	if cfg.Endpoint != "" {
		session.SetSelectedEndpoint(cfg.Endpoint)
	}
	if cfg.APIKey != "" {
		session.SetCredential(cfg.APIKey)
	}
	session.SetProtocol(domain.ProtocolFromV1(cfg.UseV1))

	res, err := app.NewDriver(log).Publish(ctx, session)
	if err != nil {
		return err
	}
	if res.Failed() {
		return errors.New(res.Message)
	}
	return nil
}
