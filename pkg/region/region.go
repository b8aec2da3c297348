// Package region finds, validates and rewrites the machine-owned regions that
// hold generated declarations. A region is bounded by marker lines:
//
//	// @generated-begin SampleControl
//	...
//	// @generated-end SampleControl
//
// Everything outside the markers is preserved byte for byte.
package region

import (
	"bytes"
	"sort"
	"strings"

	"github.com/leapstack-labs/surfacegen/pkg/core"
)

// Marker prefixes. The class name follows after a single space.
const (
	BeginMarker = "// @generated-begin"
	EndMarker   = "// @generated-end"
)

// Region is one generated region found in source text.
type Region struct {
	Class string
	// Start is the offset of the begin marker line; End is the offset just
	// past the end marker line, including its newline when present.
	Start, End int
	// BeginLine and EndLine are 1-based marker line numbers.
	BeginLine, EndLine int
}

// Content returns the text between the marker lines.
func (r Region) Content(src []byte) []byte {
	body := src[r.Start:r.End]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		return nil
	}
	trimmed := bytes.TrimRight(body, "\n")
	if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
		return body[:i+1]
	}
	return nil
}

type marker struct {
	begin bool
	class string
	start int
	end   int
	line  int
}

// markerAt classifies one line.
func markerAt(line []byte) (begin bool, class string, ok bool) {
	text := strings.TrimSpace(string(line))
	switch {
	case strings.HasPrefix(text, BeginMarker):
		return true, strings.TrimSpace(strings.TrimPrefix(text, BeginMarker)), true
	case strings.HasPrefix(text, EndMarker):
		return false, strings.TrimSpace(strings.TrimPrefix(text, EndMarker)), true
	}
	return false, "", false
}

// Scan returns the regions of src in order. Malformed markers fail with
// CorruptGeneratedRegion naming the file and line.
func Scan(path string, src []byte) ([]Region, error) {
	var markers []marker
	offset, line := 0, 1
	for offset < len(src) {
		next := bytes.IndexByte(src[offset:], '\n')
		end := len(src)
		if next >= 0 {
			end = offset + next + 1
		}
		if begin, class, ok := markerAt(src[offset:end]); ok {
			markers = append(markers, marker{begin: begin, class: class, start: offset, end: end, line: line})
		}
		offset = end
		line++
	}

	corrupt := func(line int, format string, args ...any) error {
		return core.Errorf(core.KindCorruptGeneratedRegion, core.Location{File: path, Line: line}, format, args...)
	}

	var regions []Region
	seen := make(map[string]int)
	var open *marker
	for i := range markers {
		m := &markers[i]
		if m.class == "" {
			return nil, corrupt(m.line, "generated-region marker without a class name")
		}
		if m.begin {
			if open != nil {
				return nil, corrupt(m.line, "region %s begins inside region %s opened on line %d", m.class, open.class, open.line)
			}
			open = m
			continue
		}
		if open == nil {
			return nil, corrupt(m.line, "end of region %s without a matching begin", m.class)
		}
		if open.class != m.class {
			return nil, corrupt(m.line, "region %s opened on line %d is closed as %s", open.class, open.line, m.class)
		}
		if first, dup := seen[m.class]; dup {
			return nil, corrupt(open.line, "duplicate region for class %s (first on line %d)", m.class, first)
		}
		seen[m.class] = open.line
		regions = append(regions, Region{
			Class:     m.class,
			Start:     open.start,
			End:       m.end,
			BeginLine: open.line,
			EndLine:   m.line,
		})
		open = nil
	}
	if open != nil {
		return nil, corrupt(open.line, "region %s has no end marker", open.class)
	}
	return regions, nil
}

// Mask returns a copy of src with every region blanked out. Newlines are kept
// so offsets and line numbers stay valid.
func Mask(src []byte, regions []Region) []byte {
	out := bytes.Clone(src)
	for _, r := range regions {
		for i := r.Start; i < r.End; i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}
	return out
}

// Strip returns src with every region removed.
func Strip(src []byte, regions []Region) []byte {
	var out []byte
	prev := 0
	for _, r := range regions {
		out = append(out, src[prev:r.Start]...)
		prev = r.End
	}
	return append(out, src[prev:]...)
}

// AnchorAfter returns the offset of the start of the line following offset.
// It returns len(src) when no newline follows.
func AnchorAfter(src []byte, offset int) int {
	if offset > len(src) {
		return len(src)
	}
	if i := bytes.IndexByte(src[offset:], '\n'); i >= 0 {
		return offset + i + 1
	}
	return len(src)
}

// Block is the generated content for one class.
type Block struct {
	Class string
	// Anchor is where a new region is inserted when the class has none yet.
	Anchor int
	// Content is the text placed between the markers.
	Content string
	// Keep leaves an existing region of the class exactly as it is and
	// inserts nothing when there is none.
	Keep bool
}

// Render returns the full region text, markers included.
func (b Block) Render() string {
	var sb strings.Builder
	sb.WriteString(BeginMarker + " " + b.Class + "\n")
	sb.WriteString(b.Content)
	if b.Content != "" && !strings.HasSuffix(b.Content, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString(EndMarker + " " + b.Class + "\n")
	return sb.String()
}

type edit struct {
	start, end int
	text       string
	order      int
}

// Merge rewrites src so that it holds exactly one region per block: existing
// regions are replaced in full, missing ones are inserted at their anchor and
// regions of classes without a block are removed. Keep blocks pass their
// region through untouched.
func Merge(path string, src []byte, blocks []Block) ([]byte, error) {
	regions, err := Scan(path, src)
	if err != nil {
		return nil, err
	}

	byClass := make(map[string]Block, len(blocks))
	for _, b := range blocks {
		byClass[b.Class] = b
	}
	existing := make(map[string]bool, len(regions))

	var edits []edit
	for _, r := range regions {
		existing[r.Class] = true
		text := ""
		if b, ok := byClass[r.Class]; ok {
			if b.Keep {
				continue
			}
			text = b.Render()
		}
		edits = append(edits, edit{start: r.Start, end: r.End, text: text, order: len(blocks)})
	}
	prefixed := false
	for i, b := range blocks {
		if existing[b.Class] || b.Keep {
			continue
		}
		anchor := min(max(b.Anchor, 0), len(src))
		for _, r := range regions {
			if anchor > r.Start && anchor < r.End {
				anchor = r.End
			}
		}
		text := b.Render()
		if anchor == len(src) && len(src) > 0 && src[len(src)-1] != '\n' && !prefixed {
			text = "\n" + text
			prefixed = true
		}
		edits = append(edits, edit{start: anchor, end: anchor, text: text, order: i})
	}

	// Apply from the back so earlier offsets stay valid. At a shared offset the
	// replacement goes first, then inserts in reverse so they end up in block
	// order.
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].start != edits[j].start {
			return edits[i].start > edits[j].start
		}
		return edits[i].order > edits[j].order
	})

	out := bytes.Clone(src)
	for _, e := range edits {
		out = append(out[:e.start], append([]byte(e.text), out[e.end:]...)...)
	}
	return out, nil
}
