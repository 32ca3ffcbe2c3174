package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return store
}

// TestDiskStoreRoundTrip verifies Put returns a public URL, Get returns the
// same bytes, and Delete makes later reads fail with ErrNotFound.
func TestDiskStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	data := []byte("jpeg-bytes")

	url, err := store.Put("library/abc.jpg", data, "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/uploads/library/abc.jpg" {
		t.Errorf("url = %q", url)
	}

	got, err := store.Get("library/abc.jpg")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("read bytes differ from written bytes")
	}

	if err := store.Delete("library/abc.jpg"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get("library/abc.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
}

// TestDiskStoreMissingObject verifies reads of unknown keys return ErrNotFound
// and deleting one is a no-op.
func TestDiskStoreMissingObject(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get("library/nope.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: err = %v, want ErrNotFound", err)
	}
	if err := store.Delete("library/nope.jpg"); err != nil {
		t.Errorf("Delete of a missing object should be a no-op, got %v", err)
	}
}

// TestDiskStoreConfinesTraversalKeys verifies ".."-laden keys stay inside the
// root directory and empty keys are rejected.
func TestDiskStoreConfinesTraversalKeys(t *testing.T) {
	root := t.TempDir()
	store, err := NewDiskStore(root, "/uploads")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	if _, err := store.Put("", []byte("x"), "text/plain"); err == nil {
		t.Error("Put with an empty key should be rejected")
	}

	if _, err := store.Put("../../escape.txt", []byte("x"), "text/plain"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "escape.txt")); err != nil {
		t.Errorf("traversal key should be confined under the root: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.txt")); err == nil {
		t.Error("traversal key escaped the root directory")
	}
}

// TestKeyFromURL verifies the URL written into photo rows maps back to the
// original object key.
func TestKeyFromURL(t *testing.T) {
	store := newTestStore(t)

	cases := []struct {
		url  string
		want string
	}{
		{"/uploads/library/abc.jpg", "library/abc.jpg"},
		{"http://localhost:5050/uploads/library/abc.jpg", "library/abc.jpg"},
		{"library/abc.jpg", "library/abc.jpg"},
	}

	for _, tc := range cases {
		if got := store.KeyFromURL(tc.url); got != tc.want {
			t.Errorf("KeyFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
