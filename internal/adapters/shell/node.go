package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corepm/internal/adapters/logger"
	"go.trai.ch/corepm/internal/core/ports"
)

// NodeID is the unique identifier for the generator runner Graft node.
const NodeID graft.ID = "adapter.generator_runner"

func init() {
	graft.Register(graft.Node[ports.GeneratorRunner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.GeneratorRunner, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRunner(log), nil
		},
	})
}
