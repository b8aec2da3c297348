package region

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surfacegen/pkg/core"
)

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func TestScan(t *testing.T) {
	src := []byte(lines(
		"class A {}",
		"// @generated-begin A",
		"interface A {}",
		"// @generated-end A",
		"class B {}",
		"  // @generated-begin B",
		"  // @generated-end B",
	))

	regions, err := Scan("a.ts", src)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, "A", regions[0].Class)
	assert.Equal(t, 2, regions[0].BeginLine)
	assert.Equal(t, 4, regions[0].EndLine)
	assert.Equal(t, "// @generated-begin A\ninterface A {}\n// @generated-end A\n", string(src[regions[0].Start:regions[0].End]))
	assert.Equal(t, "interface A {}\n", string(regions[0].Content(src)))

	assert.Equal(t, "B", regions[1].Class)
	assert.Equal(t, 6, regions[1].BeginLine)
	assert.Empty(t, regions[1].Content(src))
}

func TestScan_NoRegions(t *testing.T) {
	regions, err := Scan("a.ts", []byte("class A {}\n"))
	require.NoError(t, err)
	assert.Empty(t, regions)
}

func TestScan_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{
			name: "missing class name",
			src:  lines("x", "// @generated-begin", "// @generated-end"),
			line: 2,
			msg:  "without a class name",
		},
		{
			name: "nested begin",
			src:  lines("// @generated-begin A", "// @generated-begin B", "// @generated-end B", "// @generated-end A"),
			line: 2,
			msg:  "begins inside region A",
		},
		{
			name: "end without begin",
			src:  lines("x", "y", "// @generated-end A"),
			line: 3,
			msg:  "without a matching begin",
		},
		{
			name: "mismatched names",
			src:  lines("// @generated-begin A", "// @generated-end B"),
			line: 2,
			msg:  "is closed as B",
		},
		{
			name: "duplicate region",
			src: lines("// @generated-begin A", "// @generated-end A",
				"// @generated-begin A", "// @generated-end A"),
			line: 3,
			msg:  "duplicate region for class A",
		},
		{
			name: "missing end",
			src:  lines("class A {}", "// @generated-begin A", "interface A {}"),
			line: 2,
			msg:  "has no end marker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan("widgets/A.ts", []byte(tt.src))
			require.Error(t, err)
			assert.True(t, core.IsKind(err, core.KindCorruptGeneratedRegion))
			assert.Contains(t, err.Error(), tt.msg)

			var cerr *core.Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "widgets/A.ts", cerr.Location.File)
			assert.Equal(t, tt.line, cerr.Location.Line)
		})
	}
}

func TestMask(t *testing.T) {
	src := []byte(lines("class A {}", "// @generated-begin A", "x", "// @generated-end A", "tail"))
	regions, err := Scan("a.ts", src)
	require.NoError(t, err)

	masked := Mask(src, regions)
	require.Len(t, masked, len(src))
	assert.Equal(t, strings.Count(string(src), "\n"), strings.Count(string(masked), "\n"))
	assert.NotContains(t, string(masked), "@generated")
	assert.True(t, strings.HasPrefix(string(masked), "class A {}\n"))
	assert.True(t, strings.HasSuffix(string(masked), "\ntail\n"))
	// Source is untouched.
	assert.Contains(t, string(src), "@generated-begin A")
}

func TestAnchorAfter(t *testing.T) {
	src := []byte("class A {}\nrest")
	assert.Equal(t, 11, AnchorAfter(src, 10))
	assert.Equal(t, 11, AnchorAfter(src, 3))
	assert.Equal(t, len(src), AnchorAfter(src, 12))
	assert.Equal(t, len(src), AnchorAfter(src, 100))
}

func TestBlockRender(t *testing.T) {
	assert.Equal(t, lines("// @generated-begin A", "x", "// @generated-end A"),
		Block{Class: "A", Content: "x"}.Render())
	assert.Equal(t, lines("// @generated-begin A", "x", "// @generated-end A"),
		Block{Class: "A", Content: "x\n"}.Render())
	assert.Equal(t, lines("// @generated-begin A", "// @generated-end A"),
		Block{Class: "A"}.Render())
}

func TestMerge_Insert(t *testing.T) {
	src := []byte(lines("class A {}", "class B {}"))
	blocks := []Block{
		{Class: "A", Anchor: AnchorAfter(src, 10), Content: "interface A {}\n"},
	}

	out, err := Merge("a.ts", src, blocks)
	require.NoError(t, err)
	assert.Equal(t, lines(
		"class A {}",
		"// @generated-begin A",
		"interface A {}",
		"// @generated-end A",
		"class B {}",
	), string(out))
}

func TestMerge_Idempotent(t *testing.T) {
	src := []byte(lines("class A {}", "", "class B {}"))
	blocks := []Block{
		{Class: "A", Anchor: AnchorAfter(src, 0), Content: "interface A {}\n"},
		{Class: "B", Anchor: len(src), Content: "interface B {}\n"},
	}

	first, err := Merge("a.ts", src, blocks)
	require.NoError(t, err)

	// Anchors no longer matter once regions exist.
	blocks[0].Anchor, blocks[1].Anchor = 0, 0
	second, err := Merge("a.ts", first, blocks)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestMerge_Replace(t *testing.T) {
	src := []byte(lines(
		"class A {}",
		"// @generated-begin A",
		"stale",
		"// @generated-end A",
		"export default A;",
	))

	out, err := Merge("a.ts", src, []Block{{Class: "A", Content: "fresh\n"}})
	require.NoError(t, err)
	assert.Equal(t, lines(
		"class A {}",
		"// @generated-begin A",
		"fresh",
		"// @generated-end A",
		"export default A;",
	), string(out))
}

func TestMerge_KeepLeavesRegionUntouched(t *testing.T) {
	src := []byte(lines(
		"class A {}",
		"  // @generated-begin A",
		"old A",
		"  // @generated-end A",
		"class B {}",
		"// @generated-begin B",
		"old B",
		"// @generated-end B",
	))

	out, err := Merge("a.ts", src, []Block{
		{Class: "A", Keep: true},
		{Class: "B", Content: "new B\n"},
		{Class: "C", Keep: true, Anchor: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, lines(
		"class A {}",
		"  // @generated-begin A",
		"old A",
		"  // @generated-end A",
		"class B {}",
		"// @generated-begin B",
		"new B",
		"// @generated-end B",
	), string(out))
}

func TestMerge_RemovesOrphanedRegions(t *testing.T) {
	src := []byte(lines(
		"class A {}",
		"// @generated-begin A",
		"a",
		"// @generated-end A",
		"// @generated-begin Gone",
		"g",
		"// @generated-end Gone",
		"tail",
	))

	out, err := Merge("a.ts", src, []Block{{Class: "A", Content: "a\n"}})
	require.NoError(t, err)
	assert.Equal(t, lines(
		"class A {}",
		"// @generated-begin A",
		"a",
		"// @generated-end A",
		"tail",
	), string(out))

	out, err = Merge("a.ts", src, nil)
	require.NoError(t, err)
	assert.Equal(t, lines("class A {}", "tail"), string(out))
}

func TestMerge_PreservesHandWrittenText(t *testing.T) {
	src := []byte(lines(
		"import Button from \"sap/m/Button\";",
		"",
		"/** Sample. */",
		"export default class A extends Button {",
		"\tstatic readonly metadata = {};",
		"}",
		"// trailing comment",
	))
	blocks := []Block{{Class: "A", Anchor: AnchorAfter(src, strings.Index(string(src), "}\n")), Content: "x\n"}}

	out, err := Merge("a.ts", src, blocks)
	require.NoError(t, err)

	regions, err := Scan("a.ts", out)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, string(src), string(Strip(out, regions)))
}

func TestMerge_EOFWithoutNewline(t *testing.T) {
	src := []byte("class A {}")
	blocks := []Block{
		{Class: "A", Anchor: AnchorAfter(src, len(src)), Content: "a\n"},
		{Class: "B", Anchor: len(src), Content: "b\n"},
	}

	out, err := Merge("a.ts", src, blocks)
	require.NoError(t, err)
	assert.Equal(t, lines(
		"class A {}",
		"// @generated-begin A",
		"a",
		"// @generated-end A",
		"// @generated-begin B",
		"b",
		"// @generated-end B",
	), string(out))

	again, err := Merge("a.ts", out, blocks)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))
}

func TestMerge_SameAnchorKeepsBlockOrder(t *testing.T) {
	src := []byte(lines("head", "tail"))
	anchor := AnchorAfter(src, 0)
	blocks := []Block{
		{Class: "C", Anchor: anchor, Content: "c\n"},
		{Class: "A", Anchor: anchor, Content: "a\n"},
		{Class: "B", Anchor: anchor, Content: "b\n"},
	}

	out, err := Merge("a.ts", src, blocks)
	require.NoError(t, err)
	regions, err := Scan("a.ts", out)
	require.NoError(t, err)

	var order []string
	for _, r := range regions {
		order = append(order, r.Class)
	}
	assert.Equal(t, []string{"C", "A", "B"}, order)
	assert.True(t, strings.HasPrefix(string(out), "head\n"))
	assert.True(t, strings.HasSuffix(string(out), "tail\n"))
}

func TestMerge_InsertNextToExistingRegion(t *testing.T) {
	src := []byte(lines(
		"class A {}",
		"// @generated-begin A",
		"a",
		"// @generated-end A",
		"class B {}",
	))
	regions, err := Scan("a.ts", src)
	require.NoError(t, err)

	// B anchors at the start of A's region; A's replacement must stay intact.
	blocks := []Block{
		{Class: "A", Content: "a2\n"},
		{Class: "B", Anchor: regions[0].Start, Content: "b\n"},
	}
	out, err := Merge("a.ts", src, blocks)
	require.NoError(t, err)
	assert.Equal(t, lines(
		"class A {}",
		"// @generated-begin B",
		"b",
		"// @generated-end B",
		"// @generated-begin A",
		"a2",
		"// @generated-end A",
		"class B {}",
	), string(out))

	// An anchor inside a region moves past it.
	blocks[1].Anchor = regions[0].Start + 5
	out, err = Merge("a.ts", src, blocks)
	require.NoError(t, err)
	assert.Equal(t, lines(
		"class A {}",
		"// @generated-begin A",
		"a2",
		"// @generated-end A",
		"// @generated-begin B",
		"b",
		"// @generated-end B",
		"class B {}",
	), string(out))
}

func TestMerge_CorruptInput(t *testing.T) {
	_, err := Merge("a.ts", []byte(lines("// @generated-begin A")), nil)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindCorruptGeneratedRegion))
}
