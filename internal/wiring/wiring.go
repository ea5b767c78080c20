// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/corepm/internal/adapters/capi"
	_ "go.trai.ch/corepm/internal/adapters/cas"
	_ "go.trai.ch/corepm/internal/adapters/config"
	_ "go.trai.ch/corepm/internal/adapters/fs"
	_ "go.trai.ch/corepm/internal/adapters/lockfile"
	_ "go.trai.ch/corepm/internal/adapters/logger"
	_ "go.trai.ch/corepm/internal/adapters/manifest"
	_ "go.trai.ch/corepm/internal/adapters/shell"
	// Register app and engine nodes.
	_ "go.trai.ch/corepm/internal/app"
	_ "go.trai.ch/corepm/internal/engine/assembler"
	_ "go.trai.ch/corepm/internal/engine/generator"
	_ "go.trai.ch/corepm/internal/engine/solver"
)
