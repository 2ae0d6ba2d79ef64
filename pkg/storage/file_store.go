package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrNotExist is returned when a requested file is absent.
var ErrNotExist = os.ErrNotExist

// FileStore reads and replaces files on an afero filesystem.
type FileStore struct {
	fs afero.Fs
}

// NewFileStore wraps fs, defaulting to the operating system filesystem.
func NewFileStore(fs afero.Fs) *FileStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileStore{fs: fs}
}

// Fs exposes the underlying filesystem.
func (s *FileStore) Fs() afero.Fs {
	return s.fs
}

// WriteAtomic streams write into a temporary sibling of path and renames it over path
// once write succeeds. Readers see either the previous file or the complete new one.
func (s *FileStore) WriteAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prepare output directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = s.fs.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Open returns a read handle. A missing file yields an error matching ErrNotExist.
func (s *FileStore) Open(path string) (afero.File, error) {
	file, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, ErrNotExist)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return file, nil
}

// ReadFile returns the whole file content.
func (s *FileStore) ReadFile(path string) ([]byte, error) {
	file, err := s.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck
	return io.ReadAll(file)
}

// Exists reports whether path names an existing regular file.
func (s *FileStore) Exists(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && !info.IsDir()
}
