package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corepm/internal/adapters/capi"     //nolint:depguard // Wired in app layer
	"go.trai.ch/corepm/internal/adapters/cas"      //nolint:depguard // Wired in app layer
	"go.trai.ch/corepm/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/corepm/internal/adapters/lockfile" //nolint:depguard // Wired in app layer
	"go.trai.ch/corepm/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/corepm/internal/core/ports"
	"go.trai.ch/corepm/internal/engine/assembler"
	"go.trai.ch/corepm/internal/engine/generator"
	"go.trai.ch/corepm/internal/engine/solver"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			capi.NodeID,
			cas.NodeID,
			lockfile.NodeID,
			logger.NodeID,
			solver.NodeID,
			generator.NodeID,
			assembler.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	library, err := graft.Dep[ports.CoreLibrary](ctx)
	if err != nil {
		return nil, err
	}

	cache, err := graft.Dep[ports.GeneratorCache](ctx)
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

	slv, err := graft.Dep[*solver.Solver](ctx)
	if err != nil {
		return nil, err
	}

	exp, err := graft.Dep[*generator.Expander](ctx)
	if err != nil {
		return nil, err
	}

	asm, err := graft.Dep[*assembler.Assembler](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, library, cache, locks, log, slv, exp, asm), nil
}
