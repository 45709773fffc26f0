// Package files reads and writes files confined to a single root directory.
package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	ErrRootUnset   = errors.New("file root not configured")
	ErrInvalidName = errors.New("invalid file name")
	ErrNotFound    = errors.New("file not found")
)

const filePerm = 0o644

// Store serializes access to each resolved path. Operations on different
// paths run in parallel.
type Store struct {
	root string

	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

func NewStore(root string) *Store {
	return &Store{
		root:  root,
		locks: make(map[string]*pathLock),
	}
}

func (s *Store) Root() string {
	return s.root
}

// Resolve maps a slash-separated name onto a path under the root. Dot-dot
// segments are cleaned against a virtual "/" first, so the result never leaves
// the root.
func (s *Store) Resolve(name string) (string, error) {
	if s.root == "" {
		return "", ErrRootUnset
	}
	clean := filepath.Clean(string(filepath.Separator) + filepath.FromSlash(name))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.root, clean), nil
}

// Read returns the contents of a regular file. Anything else at the path,
// including nothing, is ErrNotFound.
func (s *Store) Read(name string) ([]byte, error) {
	path, err := s.Resolve(name)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(path)
	defer unlock()

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Write creates or truncates the file and stores data in it. Missing parent
// directories are not created.
func (s *Store) Write(name string, data []byte) error {
	path, err := s.Resolve(name)
	if err != nil {
		return err
	}

	unlock := s.lock(path)
	defer unlock()

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) lock(path string) func() {
	s.mu.Lock()
	l, ok := s.locks[path]
	if !ok {
		l = &pathLock{}
		s.locks[path] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, path)
		}
		s.mu.Unlock()
	}
}

// IsNotFound reports whether err should be answered with 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRootUnset) ||
		errors.Is(err, ErrInvalidName)
}
