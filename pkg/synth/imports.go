package synth

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
	"github.com/leapstack-labs/surfacegen/pkg/surface"
)

// Modules of the runtime types every generated block may need.
const (
	managedObjectModule = "sap/ui/base/ManagedObject"
	eventModule         = "sap/ui/base/Event"
)

// tsPrimitives maps primitive aliases and well-known string aliases to
// TypeScript types.
var tsPrimitives = map[string]string{
	"string":         "string",
	"boolean":        "boolean",
	"int":            "number",
	"float":          "number",
	"number":         "number",
	"object":         "object",
	"any":            "any",
	"function":       "Function",
	"void":           "void",
	"sap.ui.core.ID": "string",
}

// TypeResolver locates library types that are exported by name.
type TypeResolver interface {
	LookupType(name string) (module, export string, ok bool)
}

// resolver turns type references into local names and collects the imports
// those names need.
type resolver struct {
	opts   Options
	class  string
	taken  map[string]string // local name -> binding key
	chosen map[string]string // binding key -> local name
	emit   []descriptor.Import
}

func bindingKey(module, export string) string {
	return module + "#" + export
}

func newResolver(class string, opts Options) *resolver {
	r := &resolver{
		opts:   opts,
		class:  class,
		taken:  map[string]string{class: "self"},
		chosen: make(map[string]string),
	}
	for _, imp := range opts.Emitted {
		r.claim(imp.Local, bindingKey(imp.Module, imp.Export))
	}
	if opts.Mode == ModeInline {
		for _, imp := range opts.FileImports {
			r.claim(imp.Local, bindingKey(imp.Module, imp.Export))
		}
		names := make([]string, 0, len(opts.Reserved))
		for name := range opts.Reserved {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r.claim(name, "local:"+name)
		}
	}
	return r
}

func (r *resolver) claim(local, key string) {
	if _, ok := r.taken[local]; !ok {
		r.taken[local] = key
	}
}

// bind returns the local name for an export of a module, adding an import
// when the target file does not already have one.
func (r *resolver) bind(module, export string) string {
	key := bindingKey(module, export)
	if local, ok := r.chosen[key]; ok {
		return local
	}
	for _, imp := range r.opts.Emitted {
		if imp.Module == module && imp.Export == export {
			r.chosen[key] = imp.Local
			return imp.Local
		}
	}

	want := export
	if export == "default" {
		want = identifier(path.Base(module))
	}
	for _, imp := range r.opts.FileImports {
		if imp.Module != module || imp.Export != export {
			continue
		}
		if r.opts.Mode == ModeInline {
			r.chosen[key] = imp.Local
			return imp.Local
		}
		want = imp.Local
		break
	}

	local := want
	if owner, ok := r.taken[local]; ok && owner != key {
		local = identifier(module)
		if export != "default" {
			local += "_" + export
		}
		base := local
		for i := 2; ; i++ {
			owner, ok := r.taken[local]
			if !ok || owner == key {
				break
			}
			local = base + "_" + strconv.Itoa(i)
		}
	}

	r.taken[local] = key
	r.chosen[key] = local
	r.emit = append(r.emit, descriptor.Import{Local: local, Module: module, Export: export, TypeOnly: true})
	return local
}

// typeName renders a type reference, importing it when needed.
func (r *resolver) typeName(ref surface.TypeRef) string {
	name := r.named(ref.Name)
	if ref.Array {
		return name + "[]"
	}
	return name
}

func (r *resolver) named(name string) string {
	if ts, ok := tsPrimitives[name]; ok {
		return ts
	}
	if name == r.class {
		return name
	}
	if strings.ContainsAny(name, "./") {
		if r.opts.Types != nil {
			if module, export, ok := r.opts.Types.LookupType(name); ok {
				return r.bind(module, export)
			}
		}
		return r.bind(strings.ReplaceAll(name, ".", "/"), "default")
	}

	// Unqualified names refer to bindings of the source file.
	if r.opts.Mode == ModeSidecar {
		for _, imp := range r.opts.FileImports {
			if imp.Local == name && imp.Export != "*" {
				return r.bind(imp.Module, imp.Export)
			}
		}
		if r.opts.Reserved[name] && r.opts.SourceModule != "" {
			return r.bind(r.opts.SourceModule, name)
		}
	}
	return name
}

func (r *resolver) propertyBindingInfo() string {
	return r.bind(managedObjectModule, "PropertyBindingInfo")
}

func (r *resolver) aggregationBindingInfo() string {
	return r.bind(managedObjectModule, "AggregationBindingInfo")
}

func (r *resolver) event() string {
	return r.bind(eventModule, "default")
}

// imports returns the new bindings sorted by module, default imports first.
func (r *resolver) imports() []descriptor.Import {
	out := append([]descriptor.Import(nil), r.emit...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		if (out[i].Export == "default") != (out[j].Export == "default") {
			return out[i].Export == "default"
		}
		return out[i].Export < out[j].Export
	})
	return out
}

// identifier turns a module path into a valid identifier.
func identifier(s string) string {
	var sb strings.Builder
	for i, c := range s {
		switch {
		case c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			sb.WriteRune(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(c)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
