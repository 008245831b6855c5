package fs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileWriter = (*Writer)(nil)

// Writer replaces generated files atomically and only when their content changes,
// so that ninja sees an unchanged mtime for identical output.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteIfDifferent writes content to path unless the file already holds it.
func (w *Writer) WriteIfDifferent(path string, content []byte) (bool, error) {
	current, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	switch {
	case err == nil && bytes.Equal(current, content):
		return false, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return false, zerr.With(zerr.Wrap(err, "failed to read existing file"), "path", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to create temp file"), "path", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Gone after a successful rename

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return false, zerr.With(zerr.Wrap(err, "failed to write temp file"), "path", tmpName)
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		return false, zerr.With(zerr.Wrap(err, "failed to set permissions"), "path", tmpName)
	}
	if err := tmp.Close(); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to close temp file"), "path", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to rename temp file"), "path", path)
	}
	return true, nil
}
