// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/corepm/internal/core/domain"
)

// CoreLibrary defines the interface for reading core descriptions.
//
//go:generate go run go.uber.org/mock/mockgen -source=core_library.go -destination=mocks/mock_core_library.go -package=mocks
type CoreLibrary interface {
	// Load parses the core description at path. Results are cached by absolute path.
	Load(path string) (*domain.Core, error)

	// Discover finds and parses every core description below roots.
	// Descriptions that fail to parse are skipped with a warning.
	Discover(ctx context.Context, roots []string) ([]*domain.Core, error)
}
