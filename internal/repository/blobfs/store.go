// Package blobfs stores attachment blobs in a local directory.
package blobfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	"github.com/lightsoft-dev/light-archive/internal/domain/attachment"
)

// Store keeps blobs under a root directory. Object paths use forward slashes.
type Store struct {
	root    string
	baseURL string
}

// New creates a store rooted at dir. baseURL is the public prefix the files are
// served under, e.g. "/files".
func New(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{root: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes r to p, replacing any existing object.
func (s *Store) Put(_ context.Context, p string, r io.Reader, _ int64, _ string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", p, err)
	}
	return nil
}

// List returns every object under prefix, sorted by path. A missing folder is empty.
func (s *Store) List(_ context.Context, prefix string) ([]attachment.Object, error) {
	dir, err := s.resolve(prefix)
	if err != nil {
		return nil, err
	}

	out := make([]attachment.Object, 0)
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		out = append(out, attachment.Object{
			Path:        filepath.ToSlash(rel),
			Size:        info.Size(),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Delete removes the given objects. Missing objects are ignored; folders left
// empty are removed.
func (s *Store) Delete(_ context.Context, paths ...string) error {
	for _, p := range paths {
		full, err := s.resolve(p)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
		// only succeeds when empty
		_ = os.Remove(filepath.Dir(full))
	}
	return nil
}

// Open returns a reader for the object at p.
func (s *Store) Open(_ context.Context, p string) (io.ReadCloser, string, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("object %s: %w", p, domain.ErrObjectNotFound)
		}
		return nil, "", fmt.Errorf("open %s: %w", p, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, "", fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, "", fmt.Errorf("object %s: %w", p, domain.ErrObjectNotFound)
	}
	return f, mime.TypeByExtension(filepath.Ext(full)), nil
}

// URL returns the public URL of an object.
func (s *Store) URL(p string) string {
	return s.baseURL + "/" + p
}

// Path maps a public URL back to an object path.
func (s *Store) Path(url string) (string, bool) {
	return attachment.PathFromURL(s.baseURL, url)
}

// resolve maps an object path to a file path inside root.
func (s *Store) resolve(p string) (string, error) {
	clean := path.Clean("/" + p)
	if clean == "/" || strings.Contains(p, "..") {
		return "", domain.Invalid("invalid object path %q", p)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean[1:])), nil
}
