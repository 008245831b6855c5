package toolchain

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeID is the unique identifier for the toolchain factory Graft node.
const NodeID graft.ID = "adapter.toolchain"

func init() {
	graft.Register(graft.Node[ports.ToolchainFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{},
		Run: func(_ context.Context) (ports.ToolchainFactory, error) {
			exe, err := os.Executable()
			if err != nil {
				return nil, zerr.Wrap(err, "failed to locate the weave executable")
			}
			return NewFactory(InvokerCommand(exe)), nil
		},
	})
}

// InvokerCommand returns the rule command prefix that runs `weave invoke`
// through the executable at exe.
func InvokerCommand(exe string) string {
	return quote(exe) + " invoke"
}
