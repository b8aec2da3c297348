package config

import (
	"os"

	"github.com/cockroachdb/errors"
)

var outputFormats = map[string]bool{"auto": true, "text": true, "json": true, "yaml": true}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.ProjectConfig.Validate(); err != nil {
		return err
	}
	if !outputFormats[c.OutputFormat] {
		return errors.Newf("unknown output format %q (want auto, text, json or yaml)", c.OutputFormat)
	}
	return nil
}

// ValidateDirectories checks that the source directory exists. Commands
// that read sources call it; help and init do not.
func (c *Config) ValidateDirectories() error {
	info, err := os.Stat(c.SourceDir)
	if err != nil {
		return errors.Newf("source directory does not exist: %s\nHint: create it or use --source-dir to point elsewhere", c.SourceDir)
	}
	if !info.IsDir() {
		return errors.Newf("source path is not a directory: %s", c.SourceDir)
	}
	return nil
}
