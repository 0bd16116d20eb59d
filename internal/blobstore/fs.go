// Package blobstore keeps image files in a single flat directory. Files
// are addressed by bare names such as "5.png"; anything that looks like a
// path is rejected.
package blobstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names containing separators or dots only.
var ErrInvalidName = errors.New("invalid blob name")

// ErrNotExist is returned by Open when the blob is absent.
var ErrNotExist = errors.New("blob does not exist")

// Store is the blob store used by the image pipeline.
type Store interface {
	// Write stores data under name atomically, replacing any previous blob.
	Write(name string, data []byte) error
	// Open returns a reader for an existing blob.
	Open(name string) (*os.File, error)
	// Remove deletes a blob; a missing blob is not an error.
	Remove(name string) error
}

// FS is a Store rooted at a directory. The directory is created on first
// write.
type FS struct {
	dir string
}

func NewFS(dir string) *FS { return &FS{dir: dir} }

// Dir returns the root directory.
func (s *FS) Dir() string { return s.dir }

func (s *FS) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Write goes through a temp file and a rename so readers never observe a
// partially written blob, even when two writers race on the same name.
func (s *FS) Write(name string, data []byte) error {
	dst, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

func (s *FS) Open(name string) (*os.File, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return f, err
}

func (s *FS) Remove(name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
