package capi

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corepm/internal/adapters/fs"
	"go.trai.ch/corepm/internal/adapters/logger"
	"go.trai.ch/corepm/internal/core/ports"
)

// NodeID is the unique identifier for the core library Graft node.
const NodeID graft.ID = "adapter.core_library"

func init() {
	graft.Register(graft.Node[ports.CoreLibrary]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, fs.WalkerNodeID},
		Run: func(ctx context.Context) (ports.CoreLibrary, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			parser, err := NewParser()
			if err != nil {
				return nil, err
			}
			return NewLibrary(parser, walker, log), nil
		},
	})
}
