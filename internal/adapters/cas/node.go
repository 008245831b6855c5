package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weave/internal/adapters/fs"
	"go.trai.ch/weave/internal/core/ports"
)

// NodeID is the unique identifier for the generation store Graft node.
const NodeID graft.ID = "adapter.generation_store"

func init() {
	graft.Register(graft.Node[ports.GenerationStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HasherNodeID},
		Run: func(ctx context.Context) (ports.GenerationStore, error) {
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(hasher), nil
		},
	})
}
