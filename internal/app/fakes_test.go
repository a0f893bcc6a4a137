package app

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pkgship/pkgship/internal/domain"
	"github.com/pkgship/pkgship/internal/ports"
)

// fakeStore implements ports.CredentialStore in memory and records every
// read and write for assertions.
type fakeStore struct {
	mu     sync.Mutex
	keys   map[string]string
	reads  []string
	writes []string

	failWrite error
}

func newFakeStore() *fakeStore {
	return &fakeStore{keys: map[string]string{}}
}

func (s *fakeStore) Read(endpoint string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, endpoint)
	return s.keys[domain.NormalizeEndpoint(endpoint)], nil
}

func (s *fakeStore) Write(endpoint, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, endpoint)
	if s.failWrite != nil {
		return s.failWrite
	}
	s.keys[domain.NormalizeEndpoint(endpoint)] = credential
	return nil
}

func (s *fakeStore) set(endpoint, credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[domain.NormalizeEndpoint(endpoint)] = credential
}

func (s *fakeStore) get(endpoint string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[domain.NormalizeEndpoint(endpoint)]
}

func (s *fakeStore) readCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reads)
}

func (s *fakeStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

// fakeRegistry implements ports.EndpointRegistry in memory and records
// SetActive and Promote calls.
type fakeRegistry struct {
	mu        sync.Mutex
	endpoints []string
	active    string

	setActiveCalls []string
	promoteCalls   []string
}

func (r *fakeRegistry) Endpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.endpoints...)
}

func (r *fakeRegistry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *fakeRegistry) SetActive(endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setActiveCalls = append(r.setActiveCalls, endpoint)
	r.active = endpoint
	return nil
}

func (r *fakeRegistry) Promote(endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promoteCalls = append(r.promoteCalls, endpoint)
	front := []string{endpoint}
	for _, e := range r.endpoints {
		if !domain.EqualEndpoint(e, endpoint) {
			front = append(front, e)
		}
	}
	r.endpoints = front
	return nil
}

// fakeSettings implements ports.Settings in memory and records writes.
type fakeSettings struct {
	mu     sync.Mutex
	useV1  bool
	writes []bool
}

func (s *fakeSettings) DefaultUseV1() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.useV1
}

func (s *fakeSettings) SetDefaultUseV1(v1 bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, v1)
	s.useV1 = v1
	return nil
}

func (s *fakeSettings) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

// pushFunc scripts the behavior of a fake channel's Push.
type pushFunc func(ctx context.Context, credential string, stream io.ReadSeeker, sink ports.ProgressSink, meta ports.PushMetadata) error

// fakeChannel implements ports.GalleryChannel with scripted push behavior.
// The default behavior reads the stream to the end and completes.
type fakeChannel struct {
	source string
	v1     bool
	push   pushFunc

	mu     sync.Mutex
	pushes int
}

func (c *fakeChannel) Source() string { return c.source }
func (c *fakeChannel) IsV1() bool     { return c.v1 }

func (c *fakeChannel) Push(ctx context.Context, credential string, stream io.ReadSeeker, sink ports.ProgressSink, meta ports.PushMetadata) error {
	c.mu.Lock()
	c.pushes++
	c.mu.Unlock()
	if c.push != nil {
		return c.push(ctx, credential, stream, sink, meta)
	}
	if _, err := io.Copy(io.Discard, stream); err != nil {
		return err
	}
	sink.Completed()
	return nil
}

// fakeFactory builds fake channels sharing one scripted push behavior and
// remembers every channel it constructed.
type fakeFactory struct {
	mu   sync.Mutex
	push pushFunc
	made []*fakeChannel
}

func (f *fakeFactory) new(endpoint string, v1 bool) ports.GalleryChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := &fakeChannel{source: endpoint, v1: v1, push: f.push}
	f.made = append(f.made, ch)
	return ch
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.made)
}

// testEnv bundles a session with all its fake collaborators.
type testEnv struct {
	session  *Session
	factory  *fakeFactory
	store    *fakeStore
	registry *fakeRegistry
	settings *fakeSettings
}

func newTestEnv(content string) *testEnv {
	return newTestEnvWith(content, &fakeFactory{}, newFakeStore(), &fakeRegistry{}, &fakeSettings{})
}

func newTestEnvWith(content string, factory *fakeFactory, store *fakeStore, registry *fakeRegistry, settings *fakeSettings) *testEnv {
	artifact := domain.NewPackageArtifact("mylib", "1.2.3", func() (io.ReadSeeker, error) {
		return bytes.NewReader([]byte(content)), nil
	})
	session := NewSession(artifact, Deps{
		Channels:    factory.new,
		Credentials: store,
		Registry:    registry,
		Settings:    settings,
		Logger:      zerolog.Nop(),
	})
	return &testEnv{
		session:  session,
		factory:  factory,
		store:    store,
		registry: registry,
		settings: settings,
	}
}
