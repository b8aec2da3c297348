package core_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/leapstack-labs/surfacegen"

// sourceImports returns the imports of every non-test Go file under dir.
func sourceImports(t *testing.T, dir string) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()
	imports := make(map[string][]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == "testdata" {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range f.Imports {
			imports[path] = append(imports[path], strings.Trim(imp.Path.Value, `"`))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to scan %s: %v", dir, err)
	}
	return imports
}

// TestCoreImportsOnly verifies pkg/core only imports allowed packages.
// The Golden Rule: pkg/core imports ONLY stdlib and the errors library.
func TestCoreImportsOnly(t *testing.T) {
	allowedExternal := map[string]bool{
		"github.com/cockroachdb/errors": true,
	}

	for path, imps := range sourceImports(t, ".") {
		for _, importPath := range imps {
			// Stdlib paths carry no dot.
			if !strings.Contains(importPath, ".") {
				continue
			}
			if !allowedExternal[importPath] {
				t.Errorf("%s imports forbidden package: %s", path, importPath)
			}
		}
	}
}

// TestPkgDoesNotImportInternal verifies that no library package under pkg/
// reaches into the application's internal packages.
func TestPkgDoesNotImportInternal(t *testing.T) {
	for path, imps := range sourceImports(t, "..") {
		for _, importPath := range imps {
			if strings.HasPrefix(importPath, modulePath+"/internal/") {
				t.Errorf("%s imports internal package: %s", path, importPath)
			}
		}
	}
}

// TestLayering verifies the dependency direction between library packages:
// descriptor and region sit below surface, which sits below catalog and synth.
func TestLayering(t *testing.T) {
	forbidden := map[string][]string{
		"descriptor": {"surface", "catalog", "synth", "region"},
		"region":     {"descriptor", "surface", "catalog", "synth"},
		"surface":    {"catalog", "synth", "region"},
		"catalog":    {"synth", "region"},
	}

	for pkg, denied := range forbidden {
		for path, imps := range sourceImports(t, filepath.Join("..", pkg)) {
			for _, importPath := range imps {
				for _, d := range denied {
					if importPath == modulePath+"/pkg/"+d {
						t.Errorf("%s (pkg/%s) must not import pkg/%s", path, pkg, d)
					}
				}
			}
		}
	}
}
