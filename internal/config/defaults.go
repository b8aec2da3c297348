package config

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/surfacegen/pkg/synth"
)

// Default configuration values.
const (
	DefaultSourceDir = "src"
	DefaultMode      = "inline"
	DefaultVerify    = true
)

// DefaultExtensions are the source file extensions scanned when none are configured.
var DefaultExtensions = []string{".ts"}

// DefaultExcludeDirs are skipped during discovery when none are configured.
var DefaultExcludeDirs = []string{"node_modules", "dist"}

// ApplyDefaults fills unset fields. Workers stays 0, which the engine reads
// as one worker per CPU.
func (c *ProjectConfig) ApplyDefaults() {
	if c == nil {
		return
	}
	if c.SourceDir == "" {
		c.SourceDir = DefaultSourceDir
	}
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if len(c.Extensions) == 0 {
		c.Extensions = slices.Clone(DefaultExtensions)
	}
	if len(c.ExcludeDirs) == 0 {
		c.ExcludeDirs = slices.Clone(DefaultExcludeDirs)
	}
}

// Validate checks values the engine cannot recover from.
func (c *ProjectConfig) Validate() error {
	if c.SourceDir == "" {
		return errors.New("source_dir is required")
	}
	if _, err := synth.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Workers < 0 {
		return errors.Newf("workers must not be negative, got %d", c.Workers)
	}
	for _, ext := range c.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return errors.Newf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// SynthMode returns the parsed generation mode.
func (c *ProjectConfig) SynthMode() synth.Mode {
	m, _ := synth.ParseMode(c.Mode)
	return m
}
