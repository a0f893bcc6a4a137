package ports

import (
	"context"
	"io"
)

// GalleryChannel transmits a package stream to one gallery endpoint over one
// protocol variant. A channel is bound at construction to the (endpoint,
// protocol) pair it was created for; Source and IsV1 expose those values so
// the session can validate cache freshness. Construction must be cheap and
// side-effect-free: no network I/O happens before Push.
type GalleryChannel interface {
	// Source returns the endpoint identity the channel was constructed for.
	Source() string

	// IsV1 reports whether the channel speaks the V1 protocol variant.
	IsV1() bool

	// Push uploads the stream, reporting progress and exactly one terminal
	// notification through sink. A non-nil return value is only meaningful
	// when no terminal notification fired; the caller classifies such
	// unreported faults itself.
	Push(ctx context.Context, credential string, stream io.ReadSeeker, sink ProgressSink, meta PushMetadata) error
}

// ChannelFactory constructs a GalleryChannel for an (endpoint, protocol)
// pair.
type ChannelFactory func(endpoint string, v1 bool) GalleryChannel

// ProgressSink receives notifications from a push in flight. Any count >= 0
// of Progress calls may precede exactly one terminal call (Completed or
// Error); notifications after the terminal one are invalid and must be
// ignored by implementations.
type ProgressSink interface {
	// Progress reports upload progress as a percentage in [0, 100].
	Progress(percent float64)

	// Completed reports that the push finished successfully.
	Completed()

	// Error reports that the push failed with the given reason.
	Error(err error)
}

// PushMetadata provides package context for a push operation.
// This information is included in HTTP headers for server-side tracking.
type PushMetadata struct {
	// Name is the package identifier.
	Name string

	// Version is the package version being published.
	Version string

	// AttemptID uniquely identifies this publish attempt.
	AttemptID string
}
