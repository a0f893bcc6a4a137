package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/pkgship/pkgship/internal/domain"
)

const credentialsFileName = "credentials.toml"

// credentialsFile is the on-disk TOML shape. Keys are normalized endpoint
// identities.
type credentialsFile struct {
	Keys map[string]string `toml:"keys"`
}

// CredentialFileStore implements ports.CredentialStore using a TOML file in
// the state directory. The file is written atomically and kept at 0600 since
// it holds secrets.
type CredentialFileStore struct {
	mu  sync.Mutex
	dir string
}

// NewCredentialFileStore creates a store backed by dir/credentials.toml.
func NewCredentialFileStore(dir string) *CredentialFileStore {
	return &CredentialFileStore{dir: dir}
}

// Read returns the credential stored for the endpoint, or "" when none is
// known. A missing file is not an error.
func (s *CredentialFileStore) Read(endpoint string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cf, err := s.load()
	if err != nil {
		return "", err
	}
	return cf.Keys[domain.NormalizeEndpoint(endpoint)], nil
}

// Write durably associates the credential with the endpoint.
func (s *CredentialFileStore) Write(endpoint, credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cf, err := s.load()
	if err != nil {
		return err
	}
	if cf.Keys == nil {
		cf.Keys = map[string]string{}
	}
	cf.Keys[domain.NormalizeEndpoint(endpoint)] = credential
	return s.save(cf)
}

// Path returns the full path to the credentials file.
func (s *CredentialFileStore) Path() string {
	return filepath.Join(s.dir, credentialsFileName)
}

func (s *CredentialFileStore) load() (credentialsFile, error) {
	var cf credentialsFile
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cf, nil
		}
		return cf, err
	}
	if err := toml.Unmarshal(data, &cf); err != nil {
		return credentialsFile{}, fmt.Errorf("parse %s: %w", credentialsFileName, err)
	}
	return cf, nil
}

func (s *CredentialFileStore) save(cf credentialsFile) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := toml.Marshal(cf)
	if err != nil {
		return err
	}

	// Atomic write: temp file then rename.
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path())
}
