// Package manifest serializes build manifests.
package manifest

import (
	"bytes"

	"go.trai.ch/corepm/internal/core/domain"
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Writer implements ports.ManifestWriter as YAML.
type Writer struct {
	writer ports.FileWriter
}

// NewWriter creates a new manifest Writer writing through writer.
func NewWriter(writer ports.FileWriter) *Writer {
	return &Writer{writer: writer}
}

// Write encodes m and stores it at path. Map keys are emitted in sorted
// order, so equal manifests produce identical bytes and are not rewritten.
func (w *Writer) Write(path string, m *domain.Manifest) (bool, error) {
	data, err := Encode(m)
	if err != nil {
		return false, err
	}
	changed, err := w.writer.WriteFile(path, data)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to write manifest"), "manifest", m.Name)
	}
	return changed, nil
}

// Encode renders m as YAML.
func Encode(m *domain.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, zerr.Wrap(err, "failed to encode manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, "failed to encode manifest")
	}
	return buf.Bytes(), nil
}
