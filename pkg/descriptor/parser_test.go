package descriptor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/surfacegen/pkg/core"
)

func parseString(t *testing.T, src string) *File {
	t.Helper()
	file, err := Parse(context.Background(), "Widget.ts", []byte(src))
	require.NoError(t, err)
	return file
}

func TestParse_SampleControl(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "SampleControl.ts"))
	require.NoError(t, err)

	file, err := Parse(context.Background(), "SampleControl.ts", src)
	require.NoError(t, err)
	require.Len(t, file.Classes, 1)

	class := file.Classes[0]
	require.NoError(t, class.Err)
	assert.Equal(t, "SampleControl", class.Name)
	assert.Equal(t, "Button", class.Extends)
	assert.Equal(t, ExportDefault, class.Export)
	assert.True(t, class.HasRenderer)
	assert.True(t, class.SettingsReferenced)
	assert.Equal(t, "ui5tssampleapp.control", class.Doc.Namespace)
	assert.Equal(t, 9, class.StartLine)

	imp, ok := file.ImportFor("Button")
	require.True(t, ok)
	assert.Equal(t, "sap/m/Button", imp.Module)
	assert.Equal(t, "default", imp.Export)
	assert.True(t, file.TopLevel["SampleControl"])
	assert.True(t, file.TopLevel["RenderManager"])

	desc := class.Descriptor
	require.NotNil(t, desc)
	assert.Equal(t, "content", desc.DefaultAggregation)

	require.Len(t, desc.Properties, 2)
	subtext := desc.Properties[0]
	assert.Equal(t, "subtext", subtext.Name)
	assert.True(t, subtext.Shorthand)
	assert.Equal(t, "string", subtext.Type)
	assert.Nil(t, subtext.DefaultValue)
	assert.Equal(t, "1.0", subtext.Doc.Since)
	assert.Equal(t, "The text that appears below the main text.", subtext.Doc.Text)

	textColor := desc.Properties[1]
	assert.Equal(t, "textColor", textColor.Name)
	assert.Equal(t, "sap.ui.core.CSSColor", textColor.Type)
	require.NotNil(t, textColor.DefaultValue)
	assert.Equal(t, LiteralString, textColor.DefaultValue.Kind)
	assert.Equal(t, "", textColor.DefaultValue.Value)
	assert.True(t, textColor.Doc.Experimental)

	require.Len(t, desc.Aggregations, 3)
	content := desc.Aggregations[0]
	assert.Equal(t, "content", content.Name)
	require.NotNil(t, content.Multiple)
	assert.True(t, *content.Multiple)
	assert.True(t, content.Bindable)
	tooltip := desc.Aggregations[2]
	assert.Equal(t, []string{"string"}, tooltip.AltTypes)

	require.Len(t, desc.Associations, 2)
	partner := desc.Associations[0]
	assert.True(t, partner.Shorthand)
	assert.Equal(t, "SampleControl", partner.Type)
	require.NotNil(t, partner.Multiple)
	assert.False(t, *partner.Multiple)
	assert.Equal(t, "This is an association.", desc.Associations[1].Doc.Text)

	require.Len(t, desc.Events, 1)
	assert.Equal(t, "doublePress", desc.Events[0].Name)
	assert.True(t, desc.Events[0].AllowPreventDefault)
	assert.Equal(t, "Fired when double-clicked.", desc.Events[0].Doc.Text)
}

func TestParse_ClassWithoutMetadataIsIgnored(t *testing.T) {
	file := parseString(t, `export class Helper { static renderer = {}; run() {} }`)
	assert.Empty(t, file.Classes)
	assert.True(t, file.TopLevel["Helper"])
}

func TestParse_WrappedDescriptor(t *testing.T) {
	file := parseString(t, `
class Box extends Control {
	static metadata = ({
		properties: { width: { type: "sap.ui.core.CSSSize", defaultValue: "100%" } },
	} as const);
}`)
	require.Len(t, file.Classes, 1)
	class := file.Classes[0]
	require.NoError(t, class.Err)
	assert.Equal(t, ExportNone, class.Export)
	require.Len(t, class.Descriptor.Properties, 1)
	assert.Equal(t, "100%", class.Descriptor.Properties[0].DefaultValue.Value)
}

func TestParse_ClassDocIgnoresPlainComments(t *testing.T) {
	file := parseString(t, `
// eslint-disable-next-line max-classes-per-file
export class Plain {
	static metadata = {};
}

/**
 * Documented widget.
 */
// eslint-disable-next-line max-classes-per-file
export class Documented {
	static metadata = {};
}`)
	require.Len(t, file.Classes, 2)
	assert.True(t, file.Class("Plain").Doc.IsZero(), "got %+v", file.Class("Plain").Doc)
	assert.Equal(t, "Documented widget.", file.Class("Documented").Doc.Text)
}

func TestParse_NonStaticMetadata(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"identifier", `const meta = {}; class A { static metadata = meta; }`},
		{"call", `class A { static metadata = build(); }`},
		{"spread", `class A { static metadata = { ...base, properties: {} }; }`},
		{"computed key", `class A { static metadata = { properties: { [name]: "string" } }; }`},
		{"shorthand property", `class A { static metadata = { properties }; }`},
		{"getter", `class A { static get metadata() { return {}; } }`},
		{"non-literal type", `class A { static metadata = { properties: { x: { type: T } } }; }`},
		{"non-string default aggregation", `class A { static metadata = { defaultAggregation: name }; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := parseString(t, tt.src)
			require.Len(t, file.Classes, 1)
			class := file.Classes[0]
			require.Error(t, class.Err)
			assert.True(t, core.IsKind(class.Err, core.KindNonStaticMetadata), "got %v", class.Err)
			assert.Contains(t, class.Err.Error(), "A")
			assert.Nil(t, class.Descriptor)
		})
	}
}

func TestParse_ErrorsArePerClass(t *testing.T) {
	file := parseString(t, `
class Bad { static metadata = compute(); }
class Good { static metadata = { properties: { text: "string" } }; }`)

	require.Len(t, file.Classes, 2)
	assert.Error(t, file.Class("Bad").Err)
	require.NoError(t, file.Class("Good").Err)
	assert.Len(t, file.Class("Good").Descriptor.Properties, 1)
}

func TestParse_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	file := parseString(t, `
class A {
	static metadata = {
		properties: { a: "string", b: "int", a: "boolean" },
	};
}`)
	props := file.Classes[0].Descriptor.Properties
	require.Len(t, props, 2)
	assert.Equal(t, "a", props[0].Name)
	assert.Equal(t, "boolean", props[0].Type)
	assert.Equal(t, "b", props[1].Name)
}

func TestParse_EventParametersAndFlags(t *testing.T) {
	file := parseString(t, `
class A {
	static metadata = {
		properties: {
			value: { type: "float", defaultValue: -1, readonly: true },
			align: { type: "sap.ui.core.TextAlign", defaultValue: TextAlign.Begin },
			secret: { type: "string", visibility: "hidden" },
		},
		events: {
			change: {
				parameters: {
					/** The new value. */
					value: { type: "float" },
					source: "sap.ui.core.Control",
				},
			},
			old: { deprecated: true },
		},
	};
}`)
	desc := file.Classes[0].Descriptor
	require.NotNil(t, desc)

	value := desc.Properties[0]
	assert.True(t, value.Readonly)
	assert.Equal(t, LiteralNumber, value.DefaultValue.Kind)
	assert.Equal(t, "-1", value.DefaultValue.Value)

	align := desc.Properties[1]
	assert.Equal(t, LiteralExpr, align.DefaultValue.Kind)
	assert.Equal(t, "TextAlign.Begin", align.DefaultValue.Text)
	assert.Equal(t, "hidden", desc.Properties[2].Visibility)

	change := desc.Events[0]
	require.Len(t, change.Parameters, 2)
	assert.Equal(t, Param{Name: "value", Type: "float", Doc: Doc{Text: "The new value."}}, change.Parameters[0])
	assert.Equal(t, "sap.ui.core.Control", change.Parameters[1].Type)
	assert.True(t, desc.Events[1].Doc.Deprecated)
}

func TestParse_Imports(t *testing.T) {
	file := parseString(t, `
import Control from "sap/ui/core/Control";
import type { CSSSize, TextAlign as Align } from "sap/ui/core/library";
import * as lib from "sap/m/library";
`)
	require.Len(t, file.Imports, 4)
	assert.Equal(t, Import{Local: "Control", Module: "sap/ui/core/Control", Export: "default"}, file.Imports[0])
	assert.Equal(t, Import{Local: "CSSSize", Module: "sap/ui/core/library", Export: "CSSSize", TypeOnly: true}, file.Imports[1])
	assert.Equal(t, Import{Local: "Align", Module: "sap/ui/core/library", Export: "TextAlign", TypeOnly: true}, file.Imports[2])
	assert.Equal(t, Import{Local: "lib", Module: "sap/m/library", Export: "*"}, file.Imports[3])
}
