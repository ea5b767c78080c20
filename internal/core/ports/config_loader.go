package ports

import "go.trai.ch/corepm/internal/core/domain"

// ConfigLoader defines the interface for loading the runtime configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the configuration for the given working directory.
	// A non-empty path selects the configuration file explicitly.
	Load(cwd, path string) (*domain.Config, error)
}
