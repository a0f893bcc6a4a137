package app

import (
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pkgship/pkgship/internal/domain"
	"github.com/pkgship/pkgship/internal/ports"
)

// Status text shown while an attempt is in flight.
const statusPublishing = "Publishing package..."

// Success wording depends on the protocol variant the attempt was made with.
const (
	statusPushedV1    = "Package pushed successfully."
	statusPublishedV2 = "Package published successfully."
)

// SessionState represents the lifecycle state of a publish session.
type SessionState int

const (
	StateIdle SessionState = iota
	StatePublishing
	StateSucceeded
	StateFailed
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StatePublishing:
		return "Publishing"
	case StateSucceeded:
		return "Succeeded"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Deps bundles the external collaborators a session needs.
type Deps struct {
	Channels    ports.ChannelFactory
	Credentials ports.CredentialStore
	Registry    ports.EndpointRegistry
	Settings    ports.Settings
	Logger      zerolog.Logger
}

// Session owns the state of one end-to-end publish interaction for a single
// package artifact: the selected endpoint, protocol variant and credential,
// a lazily cached gallery channel, and the visible status flags. All state
// lives behind one mutex; the worker goroutine running the upload never
// touches it.
type Session struct {
	deps     Deps
	artifact *domain.PackageArtifact

	mu         sync.Mutex
	endpoint   string
	protocol   domain.Protocol
	credential string
	channel    ports.GalleryChannel

	state    SessionState
	status   string
	hasError bool

	// suppressLookup disables the selection-changed credential reload during
	// the session's own post-publish reselection, so a just-typed credential
	// is not overwritten with a stale stored one.
	suppressLookup bool
	disposed       bool
}

// NewSession creates a session for the artifact. The protocol variant
// defaults to the persisted setting, and the registry's active endpoint is
// preselected (prefilling its stored credential) when one exists.
func NewSession(artifact *domain.PackageArtifact, deps Deps) *Session {
	s := &Session{
		deps:     deps,
		artifact: artifact,
		protocol: domain.ProtocolFromV1(deps.Settings.DefaultUseV1()),
		state:    StateIdle,
	}
	if active := deps.Registry.Active(); active != "" {
		s.SetSelectedEndpoint(active)
	}
	return s
}

// Artifact returns the package artifact this session publishes.
func (s *Session) Artifact() *domain.PackageArtifact { return s.artifact }

// SetSelectedEndpoint sets the active endpoint and persists it as the
// registry's active entry. Unless the session is performing its own
// post-publish reselection, a non-empty stored credential for the endpoint
// replaces the current one; an endpoint with no stored credential leaves the
// current credential untouched. Persistence failures are logged, not
// returned: the in-memory selection always takes effect.
func (s *Session) SetSelectedEndpoint(endpoint string) {
	s.mu.Lock()
	s.endpoint = endpoint
	suppress := s.suppressLookup
	s.mu.Unlock()

	if err := s.deps.Registry.SetActive(endpoint); err != nil {
		s.deps.Logger.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to persist active endpoint")
	}

	if suppress {
		return
	}

	cred, err := s.deps.Credentials.Read(endpoint)
	if err != nil {
		s.deps.Logger.Warn().Err(err).Str("endpoint", endpoint).Msg("credential lookup failed")
		return
	}
	if cred != "" {
		s.mu.Lock()
		s.credential = cred
		s.mu.Unlock()
	}
}

// SetProtocol sets the protocol variant. A cached channel built for another
// variant is invalidated lazily at the next resolve.
func (s *Session) SetProtocol(p domain.Protocol) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocol = p
}

// SetCredential sets the credential directly, without touching the store.
func (s *Session) SetCredential(credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
}

// SelectedEndpoint returns the currently selected endpoint identity.
func (s *Session) SelectedEndpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// Protocol returns the current protocol variant.
func (s *Session) Protocol() domain.Protocol {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocol
}

// Credential returns the current credential.
func (s *Session) Credential() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.credential
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the last human-readable status message.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// HasError reports whether the last attempt failed.
func (s *Session) HasError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasError
}

// CanPublish reports whether a publish attempt may be started.
func (s *Session) CanPublish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StatePublishing && !s.disposed
}

// ShowProgress reports whether an attempt is currently in flight.
func (s *Session) ShowProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StatePublishing
}

// ResolveChannel returns the cached gallery channel when its construction
// values still match the session's current (endpoint, protocol); otherwise a
// new channel is built from the current values and replaces the cache. A
// channel must never be reused across a change of either value.
func (s *Session) ResolveChannel() (ports.GalleryChannel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveChannelLocked()
}

func (s *Session) resolveChannelLocked() (ports.GalleryChannel, error) {
	if s.endpoint == "" {
		return nil, domain.ErrNoEndpoint
	}
	v1 := s.protocol.OrDefault(domain.ProtocolV2).IsV1()
	if s.channel != nil && domain.EqualEndpoint(s.channel.Source(), s.endpoint) && s.channel.IsV1() == v1 {
		return s.channel, nil
	}
	s.channel = s.deps.Channels(s.endpoint, v1)
	return s.channel, nil
}

// publishJob is the immutable snapshot a worker goroutine needs to run one
// push without reading session state.
type publishJob struct {
	channel    ports.GalleryChannel
	credential string
	stream     io.ReadSeeker
	meta       ports.PushMetadata
}

// beginPublish validates the publish preconditions, rewinds the artifact
// stream, and transitions to Publishing. It fails without any state change
// when an attempt is already in flight, the session is disposed, no endpoint
// is selected, or the stream cannot be materialized.
func (s *Session) beginPublish(attemptID string) (publishJob, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return publishJob{}, domain.ErrSessionDisposed
	}
	if s.state == StatePublishing {
		s.mu.Unlock()
		return publishJob{}, domain.ErrPublishInFlight
	}
	channel, err := s.resolveChannelLocked()
	if err != nil {
		s.mu.Unlock()
		return publishJob{}, err
	}
	s.mu.Unlock()

	// Materialize and rewind outside the lock; Stream serializes internally.
	stream, err := s.artifact.Stream()
	if err != nil {
		return publishJob{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return publishJob{}, domain.ErrSessionDisposed
	}
	if s.state == StatePublishing {
		return publishJob{}, domain.ErrPublishInFlight
	}
	s.state = StatePublishing
	s.status = statusPublishing
	s.hasError = false

	return publishJob{
		channel:    channel,
		credential: s.credential,
		stream:     stream,
		meta: ports.PushMetadata{
			Name:      s.artifact.Name,
			Version:   s.artifact.Version,
			AttemptID: attemptID,
		},
	}, nil
}

// applyResult applies the terminal outcome of an attempt. On success the
// credential is durably written to the store keyed by the published
// endpoint; on failure the store is left untouched.
func (s *Session) applyResult(res domain.PushResult) {
	s.mu.Lock()
	endpoint := s.endpoint
	credential := s.credential
	v1 := s.protocol.OrDefault(domain.ProtocolV2).IsV1()

	if res.Failed() {
		s.state = StateFailed
		s.status = res.Message
		s.hasError = true
		s.mu.Unlock()
		return
	}

	s.state = StateSucceeded
	s.hasError = false
	if v1 {
		s.status = statusPushedV1
	} else {
		s.status = statusPublishedV2
	}
	s.mu.Unlock()

	if err := s.deps.Credentials.Write(endpoint, credential); err != nil {
		s.deps.Logger.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to store credential")
	}
}

// finishBookkeeping runs after any attempt, success or failure: the endpoint
// used becomes a remembered entry at the front of the registry and is
// reselected with the credential reload suppressed, so the visible selection
// matches what was actually published.
func (s *Session) finishBookkeeping() {
	s.mu.Lock()
	endpoint := s.endpoint
	s.mu.Unlock()
	if endpoint == "" {
		return
	}

	if err := s.deps.Registry.Promote(endpoint); err != nil {
		s.deps.Logger.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to promote endpoint")
	}

	s.mu.Lock()
	s.suppressLookup = true
	s.mu.Unlock()

	s.SetSelectedEndpoint(endpoint)

	s.mu.Lock()
	s.suppressLookup = false
	s.mu.Unlock()
}

// Dispose persists the current protocol variant as the default for future
// sessions. The write happens exactly once; repeated calls are no-ops.
func (s *Session) Dispose() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	v1 := s.protocol.OrDefault(domain.ProtocolV2).IsV1()
	s.mu.Unlock()

	return s.deps.Settings.SetDefaultUseV1(v1)
}
