package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem abstracts the file system operations the loader needs.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Glob(pattern string) ([]string, error)
}

// OSFS implements FileSystem on the host file system.
type OSFS struct{}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- path is built from the discovered workspace root
	return os.ReadFile(path)
}

// Glob returns the paths matching pattern.
func (OSFS) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

// MapFS serves an fs.FS, typically an fstest.MapFS, as if it were mounted at Root.
type MapFS struct {
	FS   fs.FS
	Root string
}

// NewMapFS mounts fsys at root.
func NewMapFS(root string, fsys fs.FS) *MapFS {
	return &MapFS{FS: fsys, Root: root}
}

// Stat returns file info for path.
func (m *MapFS) Stat(path string) (fs.FileInfo, error) {
	return fs.Stat(m.FS, m.rel(path))
}

// ReadFile reads the file at path.
func (m *MapFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(m.FS, m.rel(path))
}

// Glob returns the mounted paths matching pattern.
func (m *MapFS) Glob(pattern string) ([]string, error) {
	matches, err := fs.Glob(m.FS, m.rel(pattern))
	if err != nil {
		return nil, err
	}
	for i, match := range matches {
		matches[i] = filepath.Join(m.Root, match)
	}
	return matches, nil
}

// rel maps an absolute path below Root to its fs.FS name. Paths outside
// Root are returned unchanged and fail the fs.FS name check.
func (m *MapFS) rel(path string) string {
	if path == m.Root {
		return "."
	}
	prefix := m.Root + string(filepath.Separator)
	if m.Root == string(filepath.Separator) {
		prefix = m.Root
	}
	if !strings.HasPrefix(path, prefix) {
		return path
	}
	return filepath.ToSlash(strings.TrimPrefix(path, prefix))
}
