// Package config provides the project configuration types for surfacegen.
// It is decoupled from CLI concerns: anything that needs to locate or
// interpret a surfacegen.yaml can use it.
package config

// ProjectConfig holds the settings that describe a source tree.
type ProjectConfig struct {
	// SourceDir is the root of the TypeScript sources.
	SourceDir string `koanf:"source_dir"`
	// Namespace prefixes module ids of classes under SourceDir, dotted form
	// (for example "ui5.tssampleapp").
	Namespace   string   `koanf:"namespace"`
	Extensions  []string `koanf:"extensions"`
	ExcludeDirs []string `koanf:"exclude_dirs"`
	// Mode is "inline" or "sidecar".
	Mode    string `koanf:"mode"`
	Workers int    `koanf:"workers"`
	// Verify parses merged output with esbuild before writing it.
	Verify bool `koanf:"verify"`
	// Catalogs are YAML files extending the builtin base-class catalog.
	Catalogs []string `koanf:"catalogs"`
}
