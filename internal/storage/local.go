package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files under a directory served at baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore returns a store rooted at root; baseURL should end in "/".
func NewLocalStore(root, baseURL string) *LocalStore {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{root: root, baseURL: baseURL}
}

func (s *LocalStore) Driver() string { return "local" }

// Root is the directory files are written under.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Put(_ context.Context, key, _ string, data []byte) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	return writeBytesToFile(p, data)
}

// Delete removes the file; a file that is already gone is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(key string) string {
	return s.baseURL + strings.TrimPrefix(key, "/")
}

func (s *LocalStore) pathFor(key string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
