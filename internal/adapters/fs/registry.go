package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/pkgship/pkgship/internal/domain"
)

const registryFileName = "sources.toml"

// registryFile is the on-disk TOML shape.
type registryFile struct {
	Active    string   `toml:"active"`
	Endpoints []string `toml:"endpoints"`
}

// EndpointFileRegistry implements ports.EndpointRegistry using a TOML file in
// the state directory. Endpoints keep their display casing on disk;
// membership checks are case-insensitive.
type EndpointFileRegistry struct {
	mu     sync.Mutex
	dir    string
	logger zerolog.Logger
}

// NewEndpointFileRegistry creates a registry backed by dir/sources.toml.
func NewEndpointFileRegistry(dir string, logger zerolog.Logger) *EndpointFileRegistry {
	return &EndpointFileRegistry{dir: dir, logger: logger}
}

// Endpoints returns the remembered endpoints in display order.
func (r *EndpointFileRegistry) Endpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rf, err := r.load()
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to load endpoint registry")
		return nil
	}
	return rf.Endpoints
}

// Active returns the endpoint currently marked active, or "".
func (r *EndpointFileRegistry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rf, err := r.load()
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to load endpoint registry")
		return ""
	}
	return rf.Active
}

// SetActive marks the endpoint as the active entry.
func (r *EndpointFileRegistry) SetActive(endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rf, err := r.load()
	if err != nil {
		return err
	}
	if rf.Active == endpoint {
		return nil
	}
	rf.Active = endpoint
	return r.save(rf)
}

// Promote moves the endpoint to the front of the remembered set, adding it
// first if absent.
func (r *EndpointFileRegistry) Promote(endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rf, err := r.load()
	if err != nil {
		return err
	}

	if len(rf.Endpoints) > 0 && domain.EqualEndpoint(rf.Endpoints[0], endpoint) {
		return nil
	}

	front := []string{endpoint}
	for _, e := range rf.Endpoints {
		if !domain.EqualEndpoint(e, endpoint) {
			front = append(front, e)
		}
	}
	rf.Endpoints = front
	return r.save(rf)
}

// Path returns the full path to the registry file.
func (r *EndpointFileRegistry) Path() string {
	return filepath.Join(r.dir, registryFileName)
}

// Watch invokes onChange whenever the registry file changes on disk, until
// the context is canceled. Rapid bursts of events are debounced. Watch
// blocks; run it on its own goroutine.
func (r *EndpointFileRegistry) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}

	const debounceDelay = 100 * time.Millisecond
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != registryFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn().Err(err).Msg("registry watcher error")
		}
	}
}

func (r *EndpointFileRegistry) load() (registryFile, error) {
	var rf registryFile
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return rf, nil
		}
		return rf, err
	}
	if err := toml.Unmarshal(data, &rf); err != nil {
		return registryFile{}, fmt.Errorf("parse %s: %w", registryFileName, err)
	}
	return rf, nil
}

func (r *EndpointFileRegistry) save(rf registryFile) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	data, err := toml.Marshal(rf)
	if err != nil {
		return err
	}

	tmp := r.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, r.Path())
}
