package ports

import (
	"context"

	"go.trai.ch/corepm/internal/core/domain"
)

// GeneratorRunner defines the interface for running external generator programs.
//
//go:generate go run go.uber.org/mock/mockgen -source=generator_runner.go -destination=mocks/mock_generator_runner.go -package=mocks
type GeneratorRunner interface {
	// Run executes the generator described by inv in inv.WorkDir.
	// It returns an error if the program cannot be started, exits non-zero or times out.
	Run(ctx context.Context, inv *domain.GeneratorInvocation) error
}
