package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files on disk under root; files are served at publicURL
type Local struct {
	root      string
	publicURL string
}

// NewLocal creates the upload root if needed
func NewLocal(root, publicURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root returns the directory files are written to
func (s *Local) Root() string {
	return s.root
}

// Save writes r to key through a temp file then rename
func (s *Local) Save(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dst)
}

// Delete removes key; a missing file is not an error
func (s *Local) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// URL returns the public URL of key
func (s *Local) URL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}

// List walks the upload root
func (s *Local) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
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
		objects = append(objects, Object{Key: filepath.ToSlash(rel), ModTime: info.ModTime()})
		return nil
	})
	return objects, err
}
