package storage

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ObjectStore is the photo blob collaborator. Rows in the photos table store
// the public URL returned by Put; KeyFromURL maps it back for Get/Delete.
type ObjectStore interface {
	Put(key string, data []byte, contentType string) (publicURL string, err error)
	Get(key string) ([]byte, error)
	Delete(key string) error
	KeyFromURL(publicURL string) string
}

var ErrNotFound = errors.New("object not found")

// DiskStore keeps objects under a local directory and serves them from
// baseURL (the router mounts the directory at that path).
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// sanitizeKey rejects path escapes; keys come from our own code but the URL
// round-trip makes them client-influenced.
func (s *DiskStore) sanitizeKey(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *DiskStore) Put(key string, data []byte, contentType string) (string, error) {
	path, err := s.sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/" + strings.TrimPrefix(key, "/"), nil
}

func (s *DiskStore) Get(key string) ([]byte, error) {
	path, err := s.sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *DiskStore) Delete(key string) error {
	path, err := s.sanitizeKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *DiskStore) KeyFromURL(publicURL string) string {
	parsed, err := url.Parse(publicURL)
	if err != nil {
		return strings.TrimPrefix(publicURL, "/")
	}
	path := parsed.Path
	if base, err := url.Parse(s.baseURL); err == nil && base.Path != "" {
		path = strings.TrimPrefix(path, base.Path)
	}
	return strings.TrimPrefix(path, "/")
}
