package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corepm/internal/core/ports"
)

// NodeID is the unique identifier for the generator cache Graft node.
const NodeID graft.ID = "adapter.generator_cache"

func init() {
	graft.Register(graft.Node[ports.GeneratorCache]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.GeneratorCache, error) {
			return NewStore(), nil
		},
	})
}
