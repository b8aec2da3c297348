package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/surfacegen/internal/dag"
	"github.com/leapstack-labs/surfacegen/pkg/core"
	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
	"github.com/leapstack-labs/surfacegen/pkg/region"
	"github.com/leapstack-labs/surfacegen/pkg/surface"
)

// sourceFile is the pass-1 result for one file.
type sourceFile struct {
	path    string
	module  string
	src     []byte
	regions []region.Region
	file    *descriptor.File
	// err is a file-level failure: unreadable, unparsable or corrupt regions.
	err error
}

// classNode is one widget class in the inheritance graph.
type classNode struct {
	key     string
	source  *sourceFile
	class   *descriptor.Class
	base    string
	surface *surface.Surface
	err     error
}

// batch holds everything known about the sources of one run.
type batch struct {
	files []*sourceFile
	graph *dag.Graph[*classNode]
	// nodes includes classes removed from the graph because of cycles.
	nodes map[string]*classNode
}

// classes returns the nodes of a file in declaration order.
func (b *batch) classes(sf *sourceFile) []*classNode {
	if sf.file == nil {
		return nil
	}
	out := make([]*classNode, 0, len(sf.file.Classes))
	for _, c := range sf.file.Classes {
		if n, ok := b.nodes[classKey(sf.module, c)]; ok && n.class == c {
			out = append(out, n)
		}
	}
	return out
}

// dropped returns the classes of a file that lost their key to a class of
// another file.
func (b *batch) dropped(sf *sourceFile) []*descriptor.Class {
	if sf.file == nil {
		return nil
	}
	var out []*descriptor.Class
	for _, c := range sf.file.Classes {
		if n, ok := b.nodes[classKey(sf.module, c)]; ok && n.class != c {
			out = append(out, c)
		}
	}
	return out
}

// load discovers, parses and builds every class. extra names files to include
// even when discovery would not find them.
func (e *Engine) load(ctx context.Context, extra []string) (*batch, error) {
	paths, err := e.Discover()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		seen[p] = true
	}
	for _, p := range extra {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	files, err := e.parseAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	b := &batch{
		files: files,
		graph: dag.NewGraph[*classNode](),
		nodes: make(map[string]*classNode),
	}
	e.buildGraph(b)
	if err := e.buildSurfaces(b); err != nil {
		return nil, err
	}
	return b, nil
}

// parseAll runs pass 1 on a bounded worker pool. Cancellation stops scheduling
// new files; files already being parsed complete.
func (e *Engine) parseAll(ctx context.Context, paths []string) ([]*sourceFile, error) {
	files := make([]*sourceFile, len(paths))
	work := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, p := range paths {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			files[i] = e.parseFile(work, p)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "parsing sources")
	}
	return files, nil
}

func (e *Engine) parseFile(ctx context.Context, path string) *sourceFile {
	sf := &sourceFile{path: path, module: e.moduleID(path)}
	loc := core.Location{File: path}

	src, err := os.ReadFile(path) //nolint:gosec // G304: path comes from discovery or the command line
	if err != nil {
		sf.err = core.Wrap(err, core.KindSourceUnreadable, loc, "reading source")
		return sf
	}
	sf.src = src

	// Generated regions are masked so that nothing inside them is mistaken
	// for hand-written declarations. Corrupt regions fail the file but the
	// classes still serve as bases for other files.
	parseSrc := src
	regions, err := region.Scan(path, src)
	if err != nil {
		sf.err = err
	} else {
		sf.regions = regions
		parseSrc = region.Mask(src, regions)
	}

	f, err := descriptor.Parse(ctx, path, parseSrc)
	if err != nil {
		if sf.err == nil {
			sf.err = core.WithLocation(err, loc)
		}
		return sf
	}
	sf.file = f

	e.logger.Debug("parsed source", "path", path, "module", sf.module, "classes", len(f.Classes))
	return sf
}

// buildGraph adds every class and the in-batch inheritance edges, then takes
// classes on inheritance cycles out of the graph.
func (e *Engine) buildGraph(b *batch) {
	for _, sf := range b.files {
		if sf.file == nil {
			continue
		}
		for _, c := range sf.file.Classes {
			key := classKey(sf.module, c)
			if other, dup := b.nodes[key]; dup {
				e.logger.Warn("duplicate class key", "key", key, "path", sf.path, "owner", other.source.path)
				continue
			}
			n := &classNode{key: key, source: sf, class: c}
			b.nodes[key] = n
			b.graph.AddNode(key, n)
		}
	}

	for _, key := range sortedNodeKeys(b.nodes) {
		n := b.nodes[key]
		base, err := baseKey(n.source.module, n.source.file, n.class)
		if err != nil {
			n.err = err
			continue
		}
		n.base = base
		if _, inBatch := b.nodes[base]; inBatch && base != "" {
			if err := b.graph.AddEdge(base, key); err != nil {
				n.err = core.Wrap(err, core.KindUnresolvedBaseSurface, n.location(), "")
			}
		}
	}

	for _, cycle := range b.graph.Cycles() {
		path := strings.Join(append(append([]string(nil), cycle...), cycle[0]), " -> ")
		for _, key := range cycle {
			n := b.nodes[key]
			n.err = core.Errorf(core.KindUnresolvedBaseSurface, n.location(), "inheritance cycle: %s", path)
		}
		for _, key := range cycle {
			b.graph.RemoveNode(key)
		}
		e.logger.Warn("inheritance cycle", "classes", path)
	}
}

// buildSurfaces runs the model builder bottom-up so every base surface exists
// before the classes deriving from it.
func (e *Engine) buildSurfaces(b *batch) error {
	sorted, err := b.graph.TopologicalSort()
	if err != nil {
		return errors.Wrap(err, "ordering classes")
	}
	for _, node := range sorted {
		n := node.Data
		if n.err != nil {
			continue
		}
		base, err := e.baseSurface(b, n)
		if err != nil {
			n.err = err
			continue
		}
		s, err := surface.Build(n.class, base)
		if err != nil {
			n.err = core.WithLocation(err, n.location())
			continue
		}
		s.Module = n.key
		n.surface = s
	}
	return nil
}

func (e *Engine) baseSurface(b *batch, n *classNode) (*surface.Surface, error) {
	if n.base == "" {
		return nil, nil
	}
	if bn, ok := b.nodes[n.base]; ok {
		if bn.surface == nil {
			return nil, core.Errorf(core.KindUnresolvedBaseSurface, n.location(),
				"base class %s of %s failed", bn.class.Name, n.class.Name)
		}
		return bn.surface, nil
	}
	if e.catalog.Has(n.base) {
		s, err := e.catalog.Lookup(n.base)
		if err != nil {
			return nil, core.Wrap(err, core.KindUnresolvedBaseSurface, n.location(), "resolving base "+n.base)
		}
		return s, nil
	}
	return nil, core.Errorf(core.KindUnresolvedBaseSurface, n.location(),
		"no surface for base %s: not among the sources nor in the catalog", n.base)
}

func (n *classNode) location() core.Location {
	return core.Location{File: n.source.path, Class: n.class.Name, Line: n.class.StartLine}
}

func sortedNodeKeys(nodes map[string]*classNode) []string {
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// absPaths resolves command-line paths against the working directory.
func absPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		out = append(out, abs)
	}
	return out, nil
}
