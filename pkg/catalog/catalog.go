// Package catalog holds the surfaces of framework base classes that are not
// part of a generation batch, plus the table of library types exported by
// name from library modules.
package catalog

import (
	_ "embed"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/surfacegen/pkg/core"
	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
	"github.com/leapstack-labs/surfacegen/pkg/surface"
)

//go:embed builtin.yaml
var builtinYAML []byte

// TypeSource locates a type in a library module.
type TypeSource struct {
	Module string
	// Export is "default" for default exports.
	Export string
}

type classDef struct {
	id      string
	extends string
	class   *descriptor.Class
	source  string
}

// Catalog resolves module ids of known base classes to their surfaces.
// It is safe for concurrent use.
type Catalog struct {
	mu       sync.Mutex
	classes  map[string]*classDef
	types    map[string]TypeSource
	surfaces map[string]*surface.Surface
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		classes:  make(map[string]*classDef),
		types:    make(map[string]TypeSource),
		surfaces: make(map[string]*surface.Surface),
	}
}

// Builtin returns a catalog holding the embedded framework classes.
func Builtin() (*Catalog, error) {
	c := New()
	if err := c.Add("builtin.yaml", builtinYAML); err != nil {
		return nil, err
	}
	return c, nil
}

// Load returns the builtin catalog extended by the given catalog files.
// Later files override classes and types of earlier ones.
func Load(files ...string) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "reading catalog %s", file)
		}
		if err := c.Add(file, data); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add decodes one catalog document and merges it into the catalog.
func (c *Catalog) Add(source string, data []byte) error {
	doc, err := decode(source, data)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, def := range doc.classes {
		c.classes[def.id] = def
	}
	for name, ts := range doc.types {
		c.types[name] = ts
	}
	// Any cached surface may now have a different ancestor.
	c.surfaces = make(map[string]*surface.Surface)
	return nil
}

// Has reports whether the catalog describes the module id.
func (c *Catalog) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.classes[id]
	return ok
}

// Classes returns the module ids of every catalog class, sorted.
func (c *Catalog) Classes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.classes))
	for id := range c.classes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the surface of a catalog class, building it and its
// ancestors on first use.
func (c *Catalog) Lookup(id string) (*surface.Surface, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(id, map[string]bool{})
}

func (c *Catalog) lookup(id string, visiting map[string]bool) (*surface.Surface, error) {
	if s, ok := c.surfaces[id]; ok {
		return s, nil
	}
	def, ok := c.classes[id]
	if !ok {
		return nil, core.Errorf(core.KindUnresolvedBaseSurface, core.Location{}, "no catalog entry for %s", id)
	}
	loc := core.Location{File: def.source, Class: def.class.Name}
	if visiting[id] {
		return nil, core.Errorf(core.KindUnresolvedBaseSurface, loc, "catalog class %s takes part in an inheritance cycle", id)
	}
	visiting[id] = true

	var base *surface.Surface
	if def.extends != "" {
		b, err := c.lookup(def.extends, visiting)
		if err != nil {
			return nil, core.Wrap(err, core.KindUnresolvedBaseSurface, loc, "resolving base of "+id)
		}
		base = b
	}

	s, err := surface.Build(def.class, base)
	if err != nil {
		return nil, core.WithLocation(err, loc)
	}
	s.Module = id
	c.surfaces[id] = s
	return s, nil
}

// LookupType returns where a library type is exported from.
func (c *Catalog) LookupType(name string) (module, export string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts, ok := c.types[name]
	return ts.Module, ts.Export, ok
}

// ModuleID converts a dotted global name such as "sap.m.Button" into a module
// id. Module ids are returned unchanged.
func ModuleID(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	return strings.ReplaceAll(name, ".", "/")
}

func className(id string) string {
	name := path.Base(id)
	if i := strings.LastIndex(name, "#"); i >= 0 {
		return name[i+1:]
	}
	return name
}
