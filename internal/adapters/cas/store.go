// Package cas stores the record of each generation run, keyed by the
// content hash of the build file path.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/weave/internal/core/domain"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.GenerationStore = (*Store)(nil)

// Store implements ports.GenerationStore using one JSON file per build file.
type Store struct {
	hasher ports.Hasher
}

// NewStore creates a Store that names records with hasher.
func NewStore(hasher ports.Hasher) *Store {
	return &Store{hasher: hasher}
}

// Get retrieves the record of buildFile below root.
func (s *Store) Get(root, buildFile string) (*domain.Record, error) {
	filename := s.filename(root, buildFile)
	//nolint:gosec // Path is constructed from the workspace root and a hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreReadFailed, err.Error()), "path", filename)
	}

	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreUnmarshalFailed, err.Error()), "path", filename)
	}

	return &rec, nil
}

// Put stores rec, replacing the previous record of the same build file.
func (s *Store) Put(root string, rec domain.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return zerr.Wrap(domain.ErrStoreMarshalFailed, err.Error())
	}

	filename := s.filename(root, rec.BuildFile)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", filename)
	}

	//nolint:gosec // Path is constructed from the workspace root and a hashed filename
	if err := os.WriteFile(filename, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrStoreWriteFailed, err.Error()), "path", filename)
	}

	return nil
}

func (s *Store) filename(root, buildFile string) string {
	name := s.hasher.Digest([]byte(filepath.Clean(buildFile)))
	return filepath.Join(root, domain.DefaultStorePath(), name+".json")
}
