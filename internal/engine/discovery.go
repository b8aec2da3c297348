package engine

import (
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// SidecarSuffix is the file name suffix of sidecar declaration files.
const SidecarSuffix = ".gen.d.ts"

// Discover returns every widget source file under the source directory,
// sorted. Declaration files and excluded directories are skipped.
func (e *Engine) Discover() ([]string, error) {
	var files []string
	err := filepath.WalkDir(e.sourceDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != e.sourceDir && e.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if e.isSource(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "discovering sources in %s", e.sourceDir)
	}
	sort.Strings(files)

	e.logger.Debug("discovered sources", "count", len(files))
	return files, nil
}

func (e *Engine) skipDir(name string) bool {
	return e.excludeDirs[name] || (len(name) > 1 && name[0] == '.')
}

// isSource reports whether path has a configured extension and is not a
// declaration file.
func (e *Engine) isSource(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	return slices.Contains(e.extensions, filepath.Ext(path))
}

// sidecarPath returns the sidecar file of a source file.
func sidecarPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + SidecarSuffix
}

// sourceModule returns the relative specifier of a source file as seen from
// its sidecar.
func sourceModule(source string) string {
	base := filepath.Base(source)
	return "./" + strings.TrimSuffix(base, filepath.Ext(base))
}
