package domain

import "errors"

// Domain errors represent error conditions in the pkgship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrPublishInFlight is returned when Publish() is called while a previous
	// attempt is still running.
	ErrPublishInFlight = errors.New("pkgship: publish already in flight")

	// ErrSessionDisposed is returned when an operation is invoked on a
	// disposed session.
	ErrSessionDisposed = errors.New("pkgship: session disposed")

	// ErrNoEndpoint is returned when a channel is resolved or a publish is
	// attempted without a selected endpoint.
	ErrNoEndpoint = errors.New("pkgship: no endpoint selected")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("pkgship: invalid configuration")

	// ErrInvalidArtifact is returned when a package artifact path cannot be
	// parsed into a name and version.
	ErrInvalidArtifact = errors.New("pkgship: invalid package artifact")
)
