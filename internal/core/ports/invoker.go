// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Invoker runs a compiler, archiver or linker on behalf of a build edge.
//
//go:generate mockgen -source=invoker.go -destination=mocks/mock_invoker.go -package=mocks
type Invoker interface {
	// Invoke runs the named invocation kind with its positional arguments.
	// A failing tool yields an error carrying its exit code.
	Invoke(ctx context.Context, kind string, args []string, stdout io.Writer) error
}
