package commands

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/surfacegen/internal/cli/config"
	"github.com/leapstack-labs/surfacegen/internal/cli/output"
	intconfig "github.com/leapstack-labs/surfacegen/internal/config"
	"github.com/leapstack-labs/surfacegen/internal/engine"
	"github.com/leapstack-labs/surfacegen/pkg/catalog"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	return newCommandContext(cmd, nil)
}

// newCommandContext lets a command adjust the loaded config before the
// engine is built from it.
func newCommandContext(cmd *cobra.Command, adjust func(*config.Config)) (*CommandContext, error) {
	cc := NewCommandContextWithoutEngine(cmd)
	if adjust != nil {
		adjust(cc.Cfg)
	}
	if err := cc.Cfg.ValidateDirectories(); err != nil {
		return nil, err
	}
	eng, err := createEngine(cc.Cfg, cc.Logger)
	if err != nil {
		return nil, err
	}
	cc.Engine = eng
	return cc, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that don't read sources.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig(cmd)
	logger := config.GetLogger(cmd.Context())
	mode, _ := output.ParseMode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Rel shortens a path for display, relative to the project root.
func (cc *CommandContext) Rel(path string) string {
	if cc.Cfg.ProjectRoot == "" {
		return path
	}
	if rel, err := filepath.Rel(cc.Cfg.ProjectRoot, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// getConfig returns the config loaded by the root command, or defaults
// when the command runs on its own.
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg
	}
	cfg := &config.Config{OutputFormat: config.DefaultOutput}
	cfg.Verify = intconfig.DefaultVerify
	cfg.ApplyDefaults()
	return cfg
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	cat, err := catalog.Load(cfg.Catalogs...)
	if err != nil {
		return nil, err
	}

	return engine.New(engine.Config{
		SourceDir:   cfg.SourceDir,
		Namespace:   cfg.Namespace,
		Extensions:  cfg.Extensions,
		ExcludeDirs: cfg.ExcludeDirs,
		Mode:        cfg.SynthMode(),
		Workers:     cfg.Workers,
		Verify:      cfg.Verify,
		Catalog:     cat,
		Logger:      logger,
	})
}
