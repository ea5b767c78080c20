package lockfile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corepm/internal/adapters/fs"
	"go.trai.ch/corepm/internal/core/ports"
)

// NodeID is the unique identifier for the lockfile store Graft node.
const NodeID graft.ID = "adapter.lockfile_store"

func init() {
	graft.Register(graft.Node[ports.LockfileStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WriterNodeID},
		Run: func(ctx context.Context) (ports.LockfileStore, error) {
			writer, err := graft.Dep[ports.FileWriter](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(writer), nil
		},
	})
}
