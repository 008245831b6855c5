// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/weave/internal/adapters/cas"
	_ "go.trai.ch/weave/internal/adapters/config"
	_ "go.trai.ch/weave/internal/adapters/fs"
	_ "go.trai.ch/weave/internal/adapters/logger"
	_ "go.trai.ch/weave/internal/adapters/shell"
	_ "go.trai.ch/weave/internal/adapters/telemetry"
	_ "go.trai.ch/weave/internal/adapters/toolchain"
	_ "go.trai.ch/weave/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/weave/internal/app"
)
