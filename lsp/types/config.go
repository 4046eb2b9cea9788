package types

import "bennypowers.dev/dtsc/internal/compiler"

// ServerConfig holds the compile settings the server checks documents with
type ServerConfig struct {
	// TokensFiles are design token files seeding every compilation.
	// Relative paths are resolved against the workspace root.
	TokensFiles []string
	// Prefix is prepended to token variable names
	Prefix string
	// Variables are layered over token values
	Variables map[string]string
	LoadPaths []string
	Style     compiler.Style
	// Validate re-parses compiled output and reports its problems
	Validate bool
}

// DefaultConfig returns a configuration with no tokens or variables
func DefaultConfig() ServerConfig {
	return ServerConfig{
		TokensFiles: []string{},
		Variables:   map[string]string{},
		LoadPaths:   []string{},
		Style:       compiler.Expanded,
	}
}
