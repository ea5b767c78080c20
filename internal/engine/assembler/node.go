package assembler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corepm/internal/adapters/fs"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/adapters/lockfile" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/adapters/logger"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/adapters/manifest" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/core/ports"
)

// NodeID is the unique identifier for the assembler Graft node.
const NodeID graft.ID = "engine.assembler"

func init() {
	graft.Register(graft.Node[*Assembler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WriterNodeID, manifest.NodeID, lockfile.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Assembler, error) {
			files, err := graft.Dep[ports.FileWriter](ctx)
			if err != nil {
				return nil, err
			}

			manifests, err := graft.Dep[ports.ManifestWriter](ctx)
			if err != nil {
				return nil, err
			}

			locks, err := graft.Dep[ports.LockfileStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewAssembler(files, manifests, locks, log), nil
		},
	})
}
