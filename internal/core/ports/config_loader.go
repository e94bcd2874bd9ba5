package ports

import "go.trai.ch/incr/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration found from the given working directory and returns the task graph.
	Load(cwd string) (*domain.Graph, error)

	// DiscoverRoot walks up from cwd to find the project root.
	// Returns the directory containing incr.yaml.
	DiscoverRoot(cwd string) (string, error)
}
