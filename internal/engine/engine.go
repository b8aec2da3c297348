// Package engine provides the batch driver for declaration generation.
// It discovers widget sources, orders classes by inheritance and runs the
// parse, build, synthesize, merge and write pipeline over them.
package engine

import (
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/surfacegen/pkg/catalog"
	"github.com/leapstack-labs/surfacegen/pkg/synth"
)

// DefaultExtensions are the source file extensions scanned when none are configured.
var DefaultExtensions = []string{".ts"}

// DefaultExcludeDirs are skipped during discovery when none are configured.
var DefaultExcludeDirs = []string{"node_modules", "dist", ".git"}

// Engine runs generation batches over one source tree.
type Engine struct {
	// Structured logger
	logger *slog.Logger

	sourceDir   string
	namespace   string
	extensions  []string
	excludeDirs map[string]bool
	mode        synth.Mode
	workers     int
	verify      bool
	catalog     *catalog.Catalog
}

// Config holds engine configuration.
type Config struct {
	// SourceDir is the root of the widget sources. Module ids are derived from
	// paths relative to it.
	SourceDir string
	// Namespace is prepended to module ids, for example "my/lib".
	Namespace string
	// Extensions lists the source file extensions to scan.
	Extensions []string
	// ExcludeDirs lists directory names skipped during discovery.
	ExcludeDirs []string
	// Mode selects inline or sidecar output.
	Mode synth.Mode
	// Workers bounds the parallel file workers (0 = number of CPUs).
	Workers int
	// Verify checks every merged output with esbuild before writing.
	Verify bool
	// Catalog provides surfaces of framework base classes (optional, uses the
	// built-in catalog if nil).
	Catalog *catalog.Catalog
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if cfg.SourceDir == "" {
		return nil, errors.New("source directory is required")
	}
	sourceDir, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving source directory %s", cfg.SourceDir)
	}

	cat := cfg.Catalog
	if cat == nil {
		cat, err = catalog.Builtin()
		if err != nil {
			return nil, errors.Wrap(err, "loading built-in catalog")
		}
	}

	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	excludes := cfg.ExcludeDirs
	if len(excludes) == 0 {
		excludes = DefaultExcludeDirs
	}
	excludeDirs := make(map[string]bool, len(excludes))
	for _, d := range excludes {
		excludeDirs[d] = true
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger.Debug("initializing engine",
		"source_dir", sourceDir,
		"namespace", cfg.Namespace,
		"mode", cfg.Mode.String(),
		"workers", workers)

	return &Engine{
		logger:      logger,
		sourceDir:   sourceDir,
		namespace:   cfg.Namespace,
		extensions:  exts,
		excludeDirs: excludeDirs,
		mode:        cfg.Mode,
		workers:     workers,
		verify:      cfg.Verify,
		catalog:     cat,
	}, nil
}

// SourceDir returns the absolute source directory.
func (e *Engine) SourceDir() string {
	return e.sourceDir
}

// Mode returns the output mode.
func (e *Engine) Mode() synth.Mode {
	return e.mode
}

// Catalog returns the base catalog in use.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}
