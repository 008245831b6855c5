package ports

import "go.trai.ch/weave/internal/core/domain"

// ConfigLoader defines the interface for loading the workspace configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the workspace that contains cwd.
	Load(cwd string) (*domain.Workspace, error)

	// DiscoverRoot walks up from cwd to find the workspace root.
	// Returns the directory containing weave.work.yaml.
	DiscoverRoot(cwd string) (string, error)
}
