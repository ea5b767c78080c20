package assembler

import (
	"path/filepath"

	"go.trai.ch/corepm/internal/core/domain"
)

// WriteManifest stores m in workRoot under the file name derived from its
// sanitized name and returns its path. An unchanged manifest is left in place.
func (a *Assembler) WriteManifest(workRoot string, m *domain.Manifest) (string, error) {
	path := filepath.Join(workRoot, domain.ManifestFileName(m.Name))
	changed, err := a.manifests.Write(path, m)
	if err != nil {
		return "", err
	}
	if changed {
		a.logger.Info("wrote " + path)
	} else {
		a.logger.Debug("manifest unchanged: " + path)
	}
	return path, nil
}

// WriteLockfile pins the versions of cores and the chosen virtual providers.
// Generated cores are not pinned since they are recreated on every run.
func (a *Assembler) WriteLockfile(path string, cores []*domain.Core, virtuals map[string]string) error {
	names := make([]domain.VLNV, 0, len(cores))
	for _, c := range cores {
		if !c.Generated {
			names = append(names, c.Name)
		}
	}
	changed, err := a.locks.Write(path, domain.NewLockfile(names, virtuals))
	if err != nil {
		return err
	}
	if changed {
		a.logger.Info("wrote " + path)
	}
	return nil
}
