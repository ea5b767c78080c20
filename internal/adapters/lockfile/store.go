// Package lockfile reads and writes the YAML lockfile that pins resolved versions.
package lockfile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a lockfile.
type document struct {
	LockfileVersion int               `yaml:"lockfile_version"`
	Cores           []coreEntry       `yaml:"cores"`
	Virtuals        map[string]string `yaml:"virtuals,omitempty"`
}

type coreEntry struct {
	Name string `yaml:"name"`
}

// Store implements ports.LockfileStore.
type Store struct {
	writer ports.FileWriter
}

// NewStore creates a new lockfile Store writing through writer.
func NewStore(writer ports.FileWriter) *Store {
	return &Store{writer: writer}
}

// Read loads the lockfile at path. A missing file is not an error.
func (s *Store) Read(path string) (*domain.Lockfile, error) {
	//nolint:gosec // Path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read lockfile"), "path", path)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse lockfile"), "path", path)
	}
	if doc.LockfileVersion != domain.LockfileVersion {
		err := zerr.With(domain.ErrUnsupportedLockfile, "path", path)
		return nil, zerr.With(err, "version", doc.LockfileVersion)
	}

	cores := make([]domain.VLNV, 0, len(doc.Cores))
	for _, entry := range doc.Cores {
		v, err := domain.ParseVLNV(entry.Name, domain.RelationEQ)
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		cores = append(cores, v)
	}
	return domain.NewLockfile(cores, doc.Virtuals), nil
}

// Write stores lock at path in canonical order. The file is left untouched
// when its content would not change.
func (s *Store) Write(path string, lock *domain.Lockfile) (bool, error) {
	doc := document{LockfileVersion: domain.LockfileVersion}
	for _, v := range lock.SortedCores() {
		doc.Cores = append(doc.Cores, coreEntry{Name: v.String()})
	}
	if len(lock.Virtuals) > 0 {
		doc.Virtuals = lock.Virtuals
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return false, zerr.Wrap(err, "failed to encode lockfile")
	}
	if err := enc.Close(); err != nil {
		return false, zerr.Wrap(err, "failed to encode lockfile")
	}
	return s.writer.WriteFile(path, buf.Bytes())
}
