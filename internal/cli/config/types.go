// Package config provides configuration management for the surfacegen CLI.
//
// It extends the shared project configuration from internal/config with
// CLI-only settings and loads everything through koanf.
package config

import (
	intconfig "github.com/leapstack-labs/surfacegen/internal/config"
)

// ProjectConfig is an alias for the shared project configuration.
type ProjectConfig = intconfig.ProjectConfig

// Config holds all CLI configuration options.
type Config struct {
	ProjectConfig `koanf:",squash"`

	Verbose bool `koanf:"verbose"`
	// OutputFormat is one of auto, text, json, yaml.
	OutputFormat string `koanf:"output"`

	// ProjectRoot anchors relative paths. Not loaded from the file.
	ProjectRoot string `koanf:"-"`
}

// Default CLI values.
const (
	DefaultOutput = "auto" // TTY=text, non-TTY=json
	EnvPrefix     = "SURFACEGEN_"
)
