package engine

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/surfacegen/pkg/catalog"
	"github.com/leapstack-labs/surfacegen/pkg/core"
	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
)

// moduleID returns the module id of a source file: its path relative to the
// source directory without extension, under the configured namespace.
func (e *Engine) moduleID(file string) string {
	rel, err := filepath.Rel(e.sourceDir, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(file)
	}
	rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
	if e.namespace == "" {
		return rel
	}
	return path.Join(catalog.ModuleID(e.namespace), rel)
}

// classKey identifies a class across the batch. Default exports are keyed by
// their module id, like catalog classes; other classes by module#Name.
func classKey(module string, class *descriptor.Class) string {
	if class.Export == descriptor.ExportDefault {
		return module
	}
	return module + "#" + class.Name
}

// resolveSpecifier turns an import specifier into a module id. Relative
// specifiers are resolved against the importing module.
func resolveSpecifier(from, spec string) string {
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") {
		spec = path.Join(path.Dir(from), spec)
	}
	for _, ext := range []string{".js", ".mjs", ".ts"} {
		spec = strings.TrimSuffix(spec, ext)
	}
	return spec
}

// baseKey returns the key of the class named in an extends clause, or "" when
// the class has no base. Only identifiers bound in the file and namespace
// member expressions can be followed.
func baseKey(module string, f *descriptor.File, class *descriptor.Class) (string, error) {
	expr := strings.TrimSpace(class.Extends)
	if expr == "" {
		return "", nil
	}
	if i := strings.IndexByte(expr, '<'); i >= 0 {
		expr = strings.TrimSpace(expr[:i])
	}

	unresolved := func(format string, args ...any) error {
		return core.Errorf(core.KindUnresolvedBaseSurface,
			core.Location{File: f.Path, Class: class.Name, Line: class.StartLine}, format, args...)
	}

	head, member, qualified := strings.Cut(expr, ".")
	if !isIdentifier(head) || (qualified && strings.ContainsAny(member, "()[] ")) {
		return "", unresolved("cannot follow extends expression %q", class.Extends)
	}

	if !qualified {
		if local := f.Class(head); local != nil {
			if local == class {
				return "", unresolved("class %s extends itself", class.Name)
			}
			return classKey(module, local), nil
		}
	}

	imp, ok := f.ImportFor(head)
	if !ok {
		if qualified {
			// Global dotted names such as sap.m.Button.
			return catalog.ModuleID(expr), nil
		}
		if f.TopLevel[head] {
			return "", unresolved("base class %s declares no metadata descriptor", head)
		}
		return "", unresolved("base class %s is not imported", head)
	}

	mod := resolveSpecifier(module, imp.Module)
	switch {
	case imp.Export == "*" && qualified:
		if strings.Contains(member, ".") {
			return "", unresolved("cannot follow extends expression %q", class.Extends)
		}
		return mod + "#" + member, nil
	case imp.Export == "*" || qualified:
		return "", unresolved("cannot follow extends expression %q", class.Extends)
	case imp.Export == "default":
		return mod, nil
	default:
		return mod + "#" + imp.Export, nil
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
