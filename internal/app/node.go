package app

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/weave/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/toolchain" //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/weave/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			toolchain.NodeID,
			fs.WriterNodeID,
			fs.LockerNodeID,
			fs.HasherNodeID,
			cas.NodeID,
			shell.NodeID,
			watcher.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	factory, err := graft.Dep[ports.ToolchainFactory](ctx)
	if err != nil {
		return nil, err
	}
	writer, err := graft.Dep[ports.FileWriter](ctx)
	if err != nil {
		return nil, err
	}
	locker, err := graft.Dep[ports.Locker](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.GenerationStore](ctx)
	if err != nil {
		return nil, err
	}
	invoker, err := graft.Dep[ports.Invoker](ctx)
	if err != nil {
		return nil, err
	}
	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to locate the weave executable")
	}

	return New(loader, factory, writer, locker, hasher, store, invoker, fileWatcher, tracer, log, exe), nil
}
