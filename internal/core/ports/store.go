package ports

import "go.trai.ch/weave/internal/core/domain"

// GenerationStore keeps the record of the last generation of each build file.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type GenerationStore interface {
	// Get retrieves the record for a build file.
	// Returns nil, nil if not found.
	Get(root, buildFile string) (*domain.Record, error)

	// Put stores the record.
	Put(root string, rec domain.Record) error
}
