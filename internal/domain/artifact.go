package domain

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// PackageArtifact is a locally built package ready to be published. Identity
// (name, version) is immutable; the content stream is materialized lazily on
// first use and reused across publish attempts, re-seeked to the start before
// each one. The artifact does not own the underlying stream.
type PackageArtifact struct {
	Name    string
	Version string

	open func() (io.ReadSeeker, error)

	mu     sync.Mutex
	stream io.ReadSeeker
}

// NewPackageArtifact creates an artifact with the given identity and a
// provider that materializes the content stream on first use.
func NewPackageArtifact(name, version string, open func() (io.ReadSeeker, error)) *PackageArtifact {
	return &PackageArtifact{Name: name, Version: version, open: open}
}

// ID returns the "name version" display identity of the artifact.
func (a *PackageArtifact) ID() string {
	return a.Name + " " + a.Version
}

// Stream returns the artifact content positioned at offset 0. The stream is
// materialized at most once; subsequent calls rewind and return the same
// instance.
func (a *PackageArtifact) Stream() (io.ReadSeeker, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stream == nil {
		if a.open == nil {
			return nil, fmt.Errorf("%w: no content stream", ErrInvalidArtifact)
		}
		s, err := a.open()
		if err != nil {
			return nil, fmt.Errorf("open artifact stream: %w", err)
		}
		a.stream = s
	}

	if _, err := a.stream.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind artifact stream: %w", err)
	}
	return a.stream, nil
}

// Size reports the total byte length of the artifact content, or -1 when the
// stream has not been materialized yet.
func (a *PackageArtifact) Size() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stream == nil {
		return -1
	}
	end, err := a.stream.Seek(0, io.SeekEnd)
	if err != nil {
		return -1
	}
	if _, err := a.stream.Seek(0, io.SeekStart); err != nil {
		return -1
	}
	return end
}

// ParseArtifactPath derives a package identity from a file path of the form
// name.version.ext, where version is the trailing dotted numeric run
// (e.g. "mylib.1.2.3.nupkg" -> "mylib", "1.2.3").
func ParseArtifactPath(path string) (name, version string, err error) {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	parts := strings.Split(base, ".")
	// Walk back from the end collecting the numeric version segments.
	i := len(parts)
	for i > 0 && isNumeric(parts[i-1]) {
		i--
	}
	if i == len(parts) || i == 0 {
		return "", "", fmt.Errorf("%w: cannot derive name and version from %q", ErrInvalidArtifact, filepath.Base(path))
	}
	return strings.Join(parts[:i], "."), strings.Join(parts[i:], "."), nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
