package fs

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Locker = (*Locker)(nil)

// Locker takes create-exclusive lock files.
type Locker struct{}

// NewLocker creates a new Locker.
func NewLocker() *Locker {
	return &Locker{}
}

// Acquire creates path exclusively. A lock file that already exists means
// another generation run holds it; Acquire does not wait.
func (l *Locker) Acquire(path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create lock directory"), "path", path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.FilePerm) //nolint:gosec // Path is controlled by caller
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrConcurrentGenerationLock, "lock is held"), "lock", path)
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to create lock file"), "lock", path)
	}
	_, _ = f.WriteString(strconv.Itoa(os.Getpid()))

	return func() error {
		closeErr := f.Close()
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return zerr.With(zerr.Wrap(err, "failed to remove lock file"), "lock", path)
		}
		return closeErr
	}, nil
}
