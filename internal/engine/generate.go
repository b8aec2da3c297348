package engine

import (
	"bytes"
	"context"
	"os"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/surfacegen/pkg/core"
	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
	"github.com/leapstack-labs/surfacegen/pkg/region"
	"github.com/leapstack-labs/surfacegen/pkg/synth"
)

// sidecarHeader opens every sidecar file the engine creates.
const sidecarHeader = "// Declarations generated by surfacegen. Only the generated regions are rewritten.\n"

// Options selects what one generation run touches.
type Options struct {
	// Files restricts writing to these files. Empty means every discovered file.
	// All sources are still parsed so that base classes resolve.
	Files []string
	// Downstream adds every file holding a class derived from a class in Files.
	Downstream bool
	// Check reports files that would change without writing anything.
	Check bool
}

// Generate runs one batch. Per-file failures are collected in the report; the
// returned error is reserved for discovery failures and cancellation, in which
// case the report covers the files finished so far.
func (e *Engine) Generate(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:   uuid.NewString(),
		Mode:    e.mode.String(),
		Check:   opts.Check,
		Started: start,
	}

	e.logger.Info("starting generation", "run_id", report.RunID, "check", opts.Check, "mode", report.Mode)

	selected, err := absPaths(opts.Files)
	if err != nil {
		return report, err
	}
	b, err := e.load(ctx, selected)
	if err != nil {
		return report, err
	}
	targets := e.targets(b, selected, opts.Downstream)

	results := make([]*FileResult, len(targets))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, sf := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := e.processFile(b, sf, opts.Check)
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res != nil {
			report.Files = append(report.Files, *res)
		}
	}
	report.Duration = time.Since(start)

	e.logger.Info("generation completed",
		"run_id", report.RunID,
		"files", len(report.Files),
		"updated", report.Count(StatusUpdated),
		"would_change", report.Count(StatusWouldChange),
		"failed", report.Count(StatusFailed),
		"duration_ms", report.Duration.Milliseconds())

	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(err, "generation interrupted")
	}
	return report, nil
}

// targets returns the files to process, in path order.
func (e *Engine) targets(b *batch, selected []string, downstream bool) []*sourceFile {
	if len(selected) == 0 {
		return b.files
	}

	want := make(map[string]bool, len(selected))
	for _, p := range selected {
		want[p] = true
	}
	if downstream {
		var keys []string
		for _, sf := range b.files {
			if want[sf.path] {
				for _, n := range b.classes(sf) {
					keys = append(keys, n.key)
				}
			}
		}
		for _, key := range b.graph.GetAffectedNodes(keys) {
			if n, ok := b.nodes[key]; ok {
				want[n.source.path] = true
			}
		}
	}

	var out []*sourceFile
	for _, sf := range b.files {
		if want[sf.path] {
			out = append(out, sf)
		}
	}
	return out
}

// output is one file the pipeline wants on disk.
type output struct {
	path    string
	old     []byte
	content []byte
	exists  bool
	remove  bool
}

func (o output) changed() bool {
	if o.remove {
		return o.exists
	}
	return !o.exists || !bytes.Equal(o.old, o.content)
}

// processFile runs synthesize, merge, verify and write for one file. A failed
// class keeps its existing region while the other classes of the file are
// regenerated; the file is still reported as failed.
func (e *Engine) processFile(b *batch, sf *sourceFile, check bool) FileResult {
	res := FileResult{Path: sf.path, Status: StatusUnchanged}
	failed := false
	fail := func(err error) FileResult {
		res.Status = StatusFailed
		res.Diagnostics = append(res.Diagnostics, core.DiagnosticFromError(err, core.Location{File: sf.path}))
		return res
	}

	if sf.err != nil {
		return fail(sf.err)
	}

	nodes := b.classes(sf)
	for _, n := range nodes {
		res.Classes = append(res.Classes, n.class.Name)
		if n.err != nil {
			failed = true
			res.Diagnostics = append(res.Diagnostics, core.DiagnosticFromError(n.err, n.location()))
		}
	}
	dropped := b.dropped(sf)
	for _, c := range dropped {
		owner := b.nodes[classKey(sf.module, c)].source.path
		res.Diagnostics = append(res.Diagnostics, core.Warning(
			core.Location{File: sf.path, Class: c.Name, Line: c.StartLine},
			"class key "+classKey(sf.module, c)+" is already declared in "+owner+"; its region is left untouched"))
	}

	outputs, err := e.outputs(sf, nodes, dropped)
	if err != nil {
		return fail(err)
	}
	settle := func() FileResult {
		if failed {
			res.Status = StatusFailed
		}
		return res
	}

	var changed []output
	for _, o := range outputs {
		if !o.changed() {
			continue
		}
		if e.verify && !o.remove {
			if err := verifyTS(o.path, o.content); err != nil {
				return fail(err)
			}
		}
		changed = append(changed, o)
	}
	if len(changed) == 0 {
		return settle()
	}
	if check {
		res.Status = StatusWouldChange
		for _, o := range changed {
			res.Written = append(res.Written, o.path)
		}
		return settle()
	}

	if err := e.commit(changed); err != nil {
		return fail(err)
	}
	for _, o := range changed {
		res.Written = append(res.Written, o.path)
	}
	res.Status = StatusUpdated
	return settle()
}

// commit writes every changed output of one file. All new contents are staged
// before any file is replaced, and removals come last.
func (e *Engine) commit(changed []output) error {
	// Another writer may have saved the file since it was parsed.
	for _, o := range changed {
		if o.exists && !unchangedOnDisk(o.path, o.old) {
			return core.Errorf(core.KindWriteFailed, core.Location{File: o.path},
				"file changed on disk during generation")
		}
	}

	var pending []staged
	discard := func() {
		for _, st := range pending {
			st.discard()
		}
	}
	for _, o := range changed {
		if o.remove {
			continue
		}
		st, err := stage(o.path, o.content)
		if err != nil {
			discard()
			return err
		}
		pending = append(pending, st)
	}
	for i, st := range pending {
		if err := st.commit(); err != nil {
			for _, rest := range pending[i:] {
				rest.discard()
			}
			return err
		}
		e.logger.Debug("wrote file", "path", st.path)
	}
	for _, o := range changed {
		if !o.remove {
			continue
		}
		if err := removeFile(o.path); err != nil {
			return err
		}
		e.logger.Debug("removed file", "path", o.path)
	}
	return nil
}

// outputs computes the desired content of the source file and its sidecar.
// Regions of failed and dropped classes are kept wherever they are.
func (e *Engine) outputs(sf *sourceFile, nodes []*classNode, dropped []*descriptor.Class) ([]output, error) {
	sidecar := sidecarPath(sf.path)
	existing, err := os.ReadFile(sidecar) //nolint:gosec // G304: derived from a source path
	sidecarExists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return nil, core.Wrap(err, core.KindSourceUnreadable, core.Location{File: sidecar}, "reading sidecar")
	}

	var healthy []*classNode
	var kept []region.Block
	for _, n := range nodes {
		if n.err != nil {
			kept = append(kept, region.Block{Class: n.class.Name, Keep: true})
			continue
		}
		healthy = append(healthy, n)
	}
	for _, c := range dropped {
		kept = append(kept, region.Block{Class: c.Name, Keep: true})
	}

	var generated []region.Block
	if len(healthy) > 0 {
		generated, err = e.blocks(sf, healthy)
		if err != nil {
			return nil, err
		}
	}
	sourceBlocks := slices.Clone(kept)
	sidecarBlocks := slices.Clone(kept)
	if e.mode == synth.ModeSidecar {
		sidecarBlocks = append(sidecarBlocks, generated...)
	} else {
		sourceBlocks = append(sourceBlocks, generated...)
	}

	merged, err := region.Merge(sf.path, sf.src, sourceBlocks)
	if err != nil {
		return nil, err
	}
	outputs := []output{{path: sf.path, old: sf.src, content: merged, exists: true}}

	switch {
	case e.mode == synth.ModeSidecar && len(generated) > 0:
		base := existing
		if !sidecarExists {
			base = []byte(sidecarHeader + "\n")
		}
		for i := range sidecarBlocks {
			sidecarBlocks[i].Anchor = len(base)
		}
		content, err := region.Merge(sidecar, base, sidecarBlocks)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output{path: sidecar, old: existing, content: content, exists: sidecarExists})
	case sidecarExists:
		content, err := region.Merge(sidecar, existing, sidecarBlocks)
		if err != nil {
			return nil, err
		}
		out := output{path: sidecar, old: existing, content: content, exists: true}
		if onlyHeader(content) {
			out.remove = true
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// blocks synthesizes one region block per class. Imports emitted by earlier
// regions of the same target file are reused by later ones.
func (e *Engine) blocks(sf *sourceFile, nodes []*classNode) ([]region.Block, error) {
	opts := synth.Options{
		Mode:        e.mode,
		FileImports: sf.file.Imports,
		Reserved:    sf.file.TopLevel,
		Types:       e.catalog,
	}
	if e.mode == synth.ModeSidecar {
		opts.SourceModule = sourceModule(sf.path)
	}

	var emitted []descriptor.Import
	blocks := make([]region.Block, 0, len(nodes))
	for _, n := range nodes {
		opts.Emitted = emitted
		decl, err := synth.Synthesize(n.surface, opts)
		if err != nil {
			return nil, core.WithLocation(err, n.location())
		}
		emitted = append(emitted, decl.Imports...)
		blocks = append(blocks, region.Block{
			Class:   n.class.Name,
			Anchor:  region.AnchorAfter(sf.src, n.class.End),
			Content: decl.Render(e.mode),
		})
	}
	return blocks, nil
}

func onlyHeader(content []byte) bool {
	rest := bytes.ReplaceAll(content, []byte(sidecarHeader), nil)
	return len(bytes.TrimSpace(rest)) == 0
}

func unchangedOnDisk(path string, want []byte) bool {
	current, err := os.ReadFile(path) //nolint:gosec // G304: path was read earlier in this run
	return err == nil && bytes.Equal(current, want)
}
