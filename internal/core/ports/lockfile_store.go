package ports

import "go.trai.ch/corepm/internal/core/domain"

// LockfileStore defines the interface for reading and writing lockfiles.
//
//go:generate go run go.uber.org/mock/mockgen -source=lockfile_store.go -destination=mocks/mock_lockfile_store.go -package=mocks
type LockfileStore interface {
	// Read loads the lockfile at path. It returns nil, nil if the file does not exist.
	Read(path string) (*domain.Lockfile, error)

	// Write stores the lockfile at path and reports whether the file changed.
	Write(path string, lock *domain.Lockfile) (bool, error)
}
