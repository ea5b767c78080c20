package generator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corepm/internal/adapters/capi"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/adapters/cas"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/corepm/internal/core/ports"
)

// NodeID is the unique identifier for the generator expander Graft node.
const NodeID graft.ID = "engine.generator"

func init() {
	graft.Register(graft.Node[*Expander]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			cas.NodeID,
			fs.HasherNodeID,
			fs.WriterNodeID,
			capi.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Expander, error) {
			runner, err := graft.Dep[ports.GeneratorRunner](ctx)
			if err != nil {
				return nil, err
			}

			cache, err := graft.Dep[ports.GeneratorCache](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			writer, err := graft.Dep[ports.FileWriter](ctx)
			if err != nil {
				return nil, err
			}

			library, err := graft.Dep[ports.CoreLibrary](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewExpander(runner, cache, hasher, writer, library, log), nil
		},
	})
}
