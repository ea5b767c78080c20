package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corepm/internal/adapters/fs"
	"go.trai.ch/corepm/internal/core/ports"
)

// NodeID is the unique identifier for the manifest writer Graft node.
const NodeID graft.ID = "adapter.manifest_writer"

func init() {
	graft.Register(graft.Node[ports.ManifestWriter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WriterNodeID},
		Run: func(ctx context.Context) (ports.ManifestWriter, error) {
			writer, err := graft.Dep[ports.FileWriter](ctx)
			if err != nil {
				return nil, err
			}
			return NewWriter(writer), nil
		},
	})
}
