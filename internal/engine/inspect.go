package engine

import (
	"context"
	"math"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/surfacegen/pkg/core"
	"github.com/leapstack-labs/surfacegen/pkg/surface"
)

// Surfaces builds the surface of every class in the source tree without
// writing anything. Classes that fail are reported as diagnostics.
func (e *Engine) Surfaces(ctx context.Context) ([]*surface.Surface, []core.Diagnostic, error) {
	b, err := e.load(ctx, nil)
	if err != nil {
		return nil, nil, err
	}

	var surfaces []*surface.Surface
	var diags []core.Diagnostic
	for _, sf := range b.files {
		if sf.err != nil {
			diags = append(diags, core.DiagnosticFromError(sf.err, core.Location{File: sf.path}))
		}
		for _, n := range b.classes(sf) {
			if n.err != nil {
				diags = append(diags, core.DiagnosticFromError(n.err, n.location()))
				continue
			}
			surfaces = append(surfaces, n.surface)
		}
	}
	sort.SliceStable(surfaces, func(i, j int) bool { return surfaces[i].Module < surfaces[j].Module })
	return surfaces, diags, nil
}

// Surface returns the surface of one class, looked up by class name or key
// among the sources first and then in the catalog.
func (e *Engine) Surface(ctx context.Context, name string) (*surface.Surface, error) {
	surfaces, diags, err := e.Surfaces(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range surfaces {
		if s.Module == name || s.Class == name {
			return s, nil
		}
	}
	for _, d := range diags {
		if d.Location.Class == name {
			return nil, errors.Newf("class %s failed: %s", name, d.Message)
		}
	}
	return e.catalog.Lookup(name)
}

// ClassInfo describes one class of the inheritance graph.
type ClassInfo struct {
	Key   string `json:"key" yaml:"key"`
	Class string `json:"class" yaml:"class"`
	Base  string `json:"base,omitempty" yaml:"base,omitempty"`
	Path  string `json:"path" yaml:"path"`
	// Level is the inheritance depth within the sources, -1 for classes on a
	// cycle.
	Level int    `json:"level" yaml:"level"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Hierarchy returns every class ordered by execution level: level 0 holds
// classes whose base lies outside the sources.
func (e *Engine) Hierarchy(ctx context.Context) ([]ClassInfo, error) {
	b, err := e.load(ctx, nil)
	if err != nil {
		return nil, err
	}
	levels, err := b.graph.GetExecutionLevels()
	if err != nil {
		return nil, errors.Wrap(err, "ordering classes")
	}

	level := make(map[string]int, len(b.nodes))
	for i, ids := range levels {
		for _, id := range ids {
			level[id] = i
		}
	}

	infos := make([]ClassInfo, 0, len(b.nodes))
	for _, key := range sortedNodeKeys(b.nodes) {
		n := b.nodes[key]
		info := ClassInfo{Key: key, Class: n.class.Name, Base: n.base, Path: n.source.path, Level: -1}
		if l, ok := level[key]; ok {
			info.Level = l
		}
		if n.err != nil {
			info.Error = n.err.Error()
		}
		infos = append(infos, info)
	}
	// Cycle members go last.
	rank := func(l int) int {
		if l < 0 {
			return math.MaxInt
		}
		return l
	}
	sort.SliceStable(infos, func(i, j int) bool {
		return rank(infos[i].Level) < rank(infos[j].Level)
	})
	return infos, nil
}
