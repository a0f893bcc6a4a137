package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const settingsFileName = "settings.toml"

// settingsFile is the on-disk TOML shape.
type settingsFile struct {
	UseV1Protocol bool `toml:"use_v1_protocol"`
}

// SettingsFileStore implements ports.Settings using a TOML file in the state
// directory.
type SettingsFileStore struct {
	mu  sync.Mutex
	dir string
}

// NewSettingsFileStore creates a store backed by dir/settings.toml.
func NewSettingsFileStore(dir string) *SettingsFileStore {
	return &SettingsFileStore{dir: dir}
}

// DefaultUseV1 reports the persisted default protocol variant. A missing or
// unreadable file defaults to V2.
func (s *SettingsFileStore) DefaultUseV1() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sf, err := s.load()
	if err != nil {
		return false
	}
	return sf.UseV1Protocol
}

// SetDefaultUseV1 persists the default protocol variant.
func (s *SettingsFileStore) SetDefaultUseV1(v1 bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(settingsFile{UseV1Protocol: v1})
}

// Path returns the full path to the settings file.
func (s *SettingsFileStore) Path() string {
	return filepath.Join(s.dir, settingsFileName)
}

func (s *SettingsFileStore) load() (settingsFile, error) {
	var sf settingsFile
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return sf, nil
		}
		return sf, err
	}
	if err := toml.Unmarshal(data, &sf); err != nil {
		return settingsFile{}, fmt.Errorf("parse %s: %w", settingsFileName, err)
	}
	return sf, nil
}

func (s *SettingsFileStore) save(sf settingsFile) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := toml.Marshal(sf)
	if err != nil {
		return err
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path())
}
