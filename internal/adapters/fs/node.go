package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weave/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the directory walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// WriterNodeID is the unique identifier for the file writer Graft node.
	WriterNodeID graft.ID = "adapter.fs.writer"
	// LockerNodeID is the unique identifier for the lock Graft node.
	LockerNodeID graft.ID = "adapter.fs.locker"
	// HasherNodeID is the unique identifier for the hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.FileWriter]{
		ID:        WriterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FileWriter, error) {
			return NewWriter(), nil
		},
	})

	graft.Register(graft.Node[ports.Locker]{
		ID:        LockerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Locker, error) {
			return NewLocker(), nil
		},
	})

	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Hasher, error) {
			return NewHasher(), nil
		},
	})
}
