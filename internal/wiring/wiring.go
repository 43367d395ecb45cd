// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/sheen/internal/adapters/bundler"
	_ "go.trai.ch/sheen/internal/adapters/cas"
	_ "go.trai.ch/sheen/internal/adapters/config"
	_ "go.trai.ch/sheen/internal/adapters/esbuild"
	_ "go.trai.ch/sheen/internal/adapters/fs"
	_ "go.trai.ch/sheen/internal/adapters/less"
	_ "go.trai.ch/sheen/internal/adapters/logger"
	_ "go.trai.ch/sheen/internal/adapters/sass"
	_ "go.trai.ch/sheen/internal/adapters/shell"
	_ "go.trai.ch/sheen/internal/adapters/stylus"
	_ "go.trai.ch/sheen/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/sheen/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/sheen/internal/app"
	_ "go.trai.ch/sheen/internal/engine/scheduler"
)
