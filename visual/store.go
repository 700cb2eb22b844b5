package visual

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// ErrBaselineMissing is returned by Load and Compare when no baseline exists
// for the requested id.
var ErrBaselineMissing = errors.New("no baseline for id")

var validBaselineID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store is a name-addressed baseline image store: one PNG file per baseline id
// under a root directory. Reads can run concurrently; writes are serialized
// and performed with a temp-file-plus-rename so a reader never observes a
// partially written baseline.
type Store struct {
	dir  string
	lock sync.RWMutex
}

// NewStore opens (creating if needed) the baseline directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating baseline dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) pathFor(id string) (string, error) {
	if !validBaselineID.MatchString(id) {
		return "", fmt.Errorf("invalid baseline id %q", id)
	}
	return filepath.Join(s.dir, id+".png"), nil
}

// Exists reports whether a baseline is stored under the id.
func (s *Store) Exists(id string) bool {
	path, err := s.pathFor(id)
	if err != nil {
		return false
	}
	s.lock.RLock()
	defer s.lock.RUnlock()
	_, err = os.Stat(path)
	return err == nil
}

// Load reads and decodes the baseline image for the id.
func (s *Store) Load(id string) (image.Image, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}
	s.lock.RLock()
	defer s.lock.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", id, ErrBaselineMissing)
		}
		return nil, fmt.Errorf("reading baseline %q: %w", id, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("baseline %q is not a valid PNG: %w", id, err)
	}
	return img, nil
}

// Save stores PNG bytes as the baseline for the id, overwriting any previous
// baseline atomically.
func (s *Store) Save(id string, data []byte) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+id+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing baseline %q: %w", id, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing baseline %q: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing baseline %q: %w", id, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing baseline %q: %w", id, err)
	}
	return nil
}
