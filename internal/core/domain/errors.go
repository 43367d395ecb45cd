package domain

import "go.trai.ch/zerr"

var (
	// ErrModuleAlreadyExists is returned when a module id is added to the graph twice.
	ErrModuleAlreadyExists = zerr.New("module already exists")

	// ErrModuleNotFound is returned when a requested module is not part of the graph.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrConfigInvalid is returned when the build configuration fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrPostcssConfig is returned when a transform chain configuration file exists but cannot be loaded.
	ErrPostcssConfig = zerr.New("failed to load postcss config")

	// ErrUnknownPlugin is returned when the transform chain names a plugin that is not registered.
	ErrUnknownPlugin = zerr.New("unknown postcss plugin")

	// ErrPreprocessorNotFound is returned when the compiler backing a dialect cannot be located.
	ErrPreprocessorNotFound = zerr.New("preprocessor dependency not found")

	// ErrUnsupportedDialect is returned when a dialect has no registered preprocessor.
	ErrUnsupportedDialect = zerr.New("unsupported style dialect")

	// ErrCompileFailed is returned when a style unit fails to compile.
	ErrCompileFailed = zerr.New("style compilation failed")

	// ErrMinifyFailed is returned when minification of a chunk fails.
	ErrMinifyFailed = zerr.New("css minification failed")

	// ErrBuildFailed is returned when one or more style units failed and no output was emitted.
	ErrBuildFailed = zerr.New("build failed")

	// ErrAssetNotFound is returned when an asset placeholder references an unknown asset.
	ErrAssetNotFound = zerr.New("asset not found")
)
