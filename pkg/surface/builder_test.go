package surface

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surfacegen/pkg/core"
	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
)

func parseClass(t *testing.T, name, src string) *descriptor.Class {
	t.Helper()
	file, err := descriptor.Parse(context.Background(), name+".ts", []byte(src))
	require.NoError(t, err)
	class := file.Class(name)
	require.NotNil(t, class, "class %s not found", name)
	return class
}

func build(t *testing.T, name, src string, base *Surface) *Surface {
	t.Helper()
	s, err := Build(parseClass(t, name, src), base)
	require.NoError(t, err)
	return s
}

func names(members []Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Name)
	}
	return out
}

const buttonSrc = `
export default class Button extends Control {
	static metadata = {
		properties: {
			text: { type: "string", defaultValue: "" },
			enabled: { type: "boolean", defaultValue: true },
		},
		aggregations: {
			tooltip: { type: "sap.ui.core.TooltipBase", multiple: false, altTypes: ["string"] },
		},
		events: {
			press: {},
		},
	};
}`

func buttonSurface(t *testing.T) *Surface {
	s := build(t, "Button", buttonSrc, nil)
	s.Module = "sap/m/Button"
	return s
}

func TestBuild_Normalization(t *testing.T) {
	s := build(t, "Box", `
class Box {
	static metadata = {
		properties: {
			label: "string",
			color: { type: "sap.ui.core.CSSColor", defaultValue: "" },
			plain: {},
			size: { type: "int[]" },
		},
		aggregations: {
			items: { type: "sap.m.ListItem", bindable: true },
			header: "sap.ui.core.Control",
			children: {},
		},
		associations: {
			labelFor: { type: "sap.ui.core.Control", multiple: false, altTypes: ["string"] },
			ariaLabelledBy: { type: "sap.ui.core.Control", multiple: true },
		},
	};
}`, nil)

	want := []Member{
		{Kind: descriptor.KindProperty, Name: "label", Type: TypeRef{Name: "string"}, DeclaredBy: "Box"},
		{Kind: descriptor.KindProperty, Name: "color", Type: TypeRef{Name: "sap.ui.core.CSSColor"},
			Default: &descriptor.Literal{Kind: descriptor.LiteralString, Value: "", Text: `""`}, DeclaredBy: "Box"},
		{Kind: descriptor.KindProperty, Name: "plain", Type: TypeRef{Name: "string"}, DeclaredBy: "Box"},
		{Kind: descriptor.KindProperty, Name: "size", Type: TypeRef{Name: "int", Array: true}, DeclaredBy: "Box"},
		{Kind: descriptor.KindAggregation, Name: "items", Type: TypeRef{Name: "sap.m.ListItem"}, Multiple: true,
			Bindable: true, Singular: "item", DeclaredBy: "Box"},
		{Kind: descriptor.KindAggregation, Name: "header", Type: TypeRef{Name: "sap.ui.core.Control"},
			Singular: "header", DeclaredBy: "Box"},
		{Kind: descriptor.KindAggregation, Name: "children", Type: TypeRef{Name: "sap.ui.core.Control"}, Multiple: true,
			Singular: "child", DeclaredBy: "Box"},
		{Kind: descriptor.KindAssociation, Name: "labelFor", Type: TypeRef{Name: "sap.ui.core.Control"},
			AltTypes: []TypeRef{{Name: "string"}}, Singular: "labelFor", DeclaredBy: "Box"},
		{Kind: descriptor.KindAssociation, Name: "ariaLabelledBy", Type: TypeRef{Name: "sap.ui.core.Control"},
			Multiple: true, Singular: "ariaLabelledBy", DeclaredBy: "Box"},
	}

	if diff := cmp.Diff(want, s.Members, cmpopts.IgnoreFields(Member{}, "Doc")); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, s.DefaultAggregation)
	assert.Empty(t, s.Base)
}

func TestBuild_InheritanceExposesBaseMembers(t *testing.T) {
	s := build(t, "Derived", `
class Derived extends Button {
	static metadata = {
		events: { doublePress: { allowPreventDefault: true } },
	};
}`, buttonSurface(t))

	assert.Equal(t, "sap/m/Button", s.Base)
	assert.Equal(t, []string{"text", "enabled", "tooltip", "press", "doublePress"}, names(s.Members))

	text, ok := s.Member("text")
	require.True(t, ok)
	assert.Equal(t, "Button", text.DeclaredBy)
	assert.Equal(t, []string{"doublePress"}, names(s.Own()))
}

func TestBuild_OverrideKeepsInheritedPosition(t *testing.T) {
	s := build(t, "Derived", `
class Derived extends Button {
	static metadata = {
		properties: {
			icon: "sap.ui.core.URI",
			text: { type: "string", defaultValue: "OK" },
		},
	};
}`, buttonSurface(t))

	assert.Equal(t, []string{"text", "enabled", "icon"}, names(s.MembersOf(descriptor.KindProperty)))
	text, _ := s.Member("text")
	assert.Equal(t, "Derived", text.DeclaredBy)
	assert.Equal(t, `"OK"`, text.DefaultText())
}

func TestBuild_MemberKindConflict(t *testing.T) {
	tests := []struct {
		name string
		src  string
		base *Surface
	}{
		{
			name: "own property against inherited aggregation",
			src:  `class Derived { static metadata = { properties: { tooltip: "string" } }; }`,
			base: buttonSurface(t),
		},
		{
			name: "own members of two kinds",
			src:  `class Derived { static metadata = { properties: { change: "string" }, events: { change: {} } }; }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(parseClass(t, "Derived", tt.src), tt.base)
			require.Error(t, err)
			assert.True(t, core.IsKind(err, core.KindMemberKindConflict), "got %v", err)
		})
	}
}

func TestBuild_DefaultAggregation(t *testing.T) {
	s := build(t, "Panel", `
class Panel {
	static metadata = {
		aggregations: { content: { type: "sap.ui.core.Control", multiple: true } },
		defaultAggregation: "content",
	};
}`, nil)
	assert.Equal(t, "content", s.DefaultAggregation)
	content, _ := s.Member("content")
	assert.True(t, content.DefaultAggregation)

	// Subclasses that do not declare a default aggregation have none.
	derived := build(t, "Derived", `class Derived { static metadata = {}; }`, s)
	assert.Empty(t, derived.DefaultAggregation)
	content, _ = derived.Member("content")
	assert.False(t, content.DefaultAggregation)

	// An inherited aggregation may be named.
	named := build(t, "Named", `class Named { static metadata = { defaultAggregation: "content" }; }`, s)
	assert.Equal(t, "content", named.DefaultAggregation)
}

func TestBuild_UnknownDefaultAggregation(t *testing.T) {
	class := parseClass(t, "Panel", `
class Panel {
	static metadata = {
		properties: { content: "string" },
		defaultAggregation: "content",
	};
}`)
	_, err := Build(class, nil)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindUnknownDefaultAggregation))

	var ge *core.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Panel", ge.Location.Class)
	assert.Equal(t, 5, ge.Location.Line)
}

func TestBuild_HiddenMembersAndReadonly(t *testing.T) {
	s := build(t, "Field", `
class Field {
	static metadata = {
		properties: {
			value: { type: "string", readonly: true },
			_internal: { type: "object", visibility: "hidden" },
		},
		events: {
			change: { parameters: { value: "string", index: { type: "int" } } },
		},
	};
}`, nil)

	assert.Equal(t, []string{"value", "change"}, names(s.Members))
	value, _ := s.Member("value")
	assert.True(t, value.Readonly)

	change, _ := s.Member("change")
	assert.Equal(t, []Param{
		{Name: "value", Type: TypeRef{Name: "string"}},
		{Name: "index", Type: TypeRef{Name: "int"}},
	}, change.Parameters)
}

func TestBuild_PropagatesParserError(t *testing.T) {
	class := parseClass(t, "Broken", `class Broken { static metadata = make(); }`)
	_, err := Build(class, nil)
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindNonStaticMetadata))
}

func TestBuild_BaseSurfaceIsNotModified(t *testing.T) {
	base := build(t, "Panel", `
class Panel {
	static metadata = {
		aggregations: { content: { multiple: true } },
		defaultAggregation: "content",
	};
}`, nil)
	before := *base
	before.Members = append([]Member(nil), base.Members...)

	build(t, "Derived", `class Derived { static metadata = { properties: { content2: "string" } }; }`, base)

	if diff := cmp.Diff(before, *base); diff != "" {
		t.Errorf("base surface changed (-before +after):\n%s", diff)
	}
}
