package ports

import "go.trai.ch/corepm/internal/core/domain"

// ManifestWriter defines the interface for persisting build manifests.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_writer.go -destination=mocks/mock_manifest_writer.go -package=mocks
type ManifestWriter interface {
	// Write stores the manifest at path and reports whether the file changed.
	Write(path string, m *domain.Manifest) (bool, error)
}
