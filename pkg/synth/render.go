package synth

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
	"github.com/leapstack-labs/surfacegen/pkg/surface"
)

// DefaultAggregationNote is added to the docs of a default aggregation.
const DefaultAggregationNote = "Children passed to the constructor without a settings key are added to this aggregation."

const settingsDoc = "Describes the settings that can be provided to the %s constructor."

// docLines renders carried doc text and flags in their fixed order.
func docLines(doc descriptor.Doc) []string {
	var lines []string
	if doc.Text != "" {
		lines = append(lines, strings.Split(doc.Text, "\n")...)
	}
	return appendFlags(lines, doc)
}

func appendFlags(lines []string, doc descriptor.Doc) []string {
	var flags []string
	if doc.Since != "" {
		flags = append(flags, "@since "+doc.Since)
	}
	if doc.Experimental {
		flags = append(flags, strings.TrimSpace("@experimental "+doc.ExperimentalNote))
	}
	if doc.Deprecated {
		flags = append(flags, strings.TrimSpace("@deprecated "+doc.DeprecatedNote))
	}
	return paragraph(lines, flags...)
}

// paragraph appends lines to doc, separated by a blank line.
func paragraph(doc []string, lines ...string) []string {
	if len(lines) == 0 {
		return doc
	}
	if len(doc) > 0 {
		doc = append(doc, "")
	}
	return append(doc, lines...)
}

// memberDoc renders the documentation shared by all declarations of a member.
func memberDoc(m surface.Member) []string {
	var lines []string
	if m.Doc.Text != "" {
		lines = append(lines, strings.Split(m.Doc.Text, "\n")...)
	}
	if m.Kind == descriptor.KindProperty && m.Default != nil {
		lines = paragraph(lines, "Default value is `"+defaultText(m.Default)+"`.")
	}
	if m.DefaultAggregation {
		lines = paragraph(lines, DefaultAggregationNote)
	}
	return appendFlags(lines, m.Doc)
}

func defaultText(lit *descriptor.Literal) string {
	if lit.Kind == descriptor.LiteralString {
		if lit.Value == "" {
			return "empty string"
		}
		return lit.Value
	}
	return lit.Text
}

func withSummary(summary string, doc []string) []string {
	return paragraph([]string{summary}, doc...)
}

// Render produces the generated block for the given mode. The text ends with
// a newline and carries no region markers.
func (d *Declarations) Render(mode Mode) string {
	var body strings.Builder
	d.renderBody(&body)

	var sb strings.Builder
	imports := d.importLines()
	for _, line := range imports {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	// Without an import the sidecar would be a script, where a relative
	// module name cannot be augmented.
	if len(imports) == 0 && mode == ModeSidecar {
		sb.WriteString("export {};\n")
	}
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}

	if mode == ModeSidecar {
		sb.WriteString("declare module \"" + d.SourceModule + "\" {\n")
		sb.WriteString(indent(body.String(), "\t"))
		sb.WriteString("}\n")
		return sb.String()
	}
	sb.WriteString(body.String())
	return sb.String()
}

func (d *Declarations) importLines() []string {
	var lines []string
	for i := 0; i < len(d.Imports); {
		module := d.Imports[i].Module
		var named []string
		for ; i < len(d.Imports) && d.Imports[i].Module == module; i++ {
			imp := d.Imports[i]
			switch {
			case imp.Export == "default":
				lines = append(lines, "import type "+imp.Local+" from \""+module+"\";")
			case imp.Export == imp.Local:
				named = append(named, imp.Local)
			default:
				named = append(named, imp.Export+" as "+imp.Local)
			}
		}
		if len(named) > 0 {
			lines = append(lines, "import type { "+strings.Join(named, ", ")+" } from \""+module+"\";")
		}
	}
	return lines
}

func (d *Declarations) renderBody(sb *strings.Builder) {
	writeDoc(sb, "", []string{fmt.Sprintf(settingsDoc, d.Class)})
	sb.WriteString("export interface " + d.SettingsName + " {")
	if len(d.Settings) == 0 {
		sb.WriteString("}\n")
	} else {
		sb.WriteString("\n")
		for i, f := range d.Settings {
			if i > 0 {
				sb.WriteString("\n")
			}
			writeDoc(sb, "\t", f.Doc)
			sb.WriteString("\t" + propertyKey(f.Name) + "?: " + f.Type + ";\n")
		}
		sb.WriteString("}\n")
	}

	for _, e := range d.Events {
		sb.WriteString("\n")
		sb.WriteString("export interface " + e.ParametersName + " {")
		if len(e.Parameters) == 0 {
			sb.WriteString("}\n")
		} else {
			sb.WriteString("\n")
			for _, f := range e.Parameters {
				writeDoc(sb, "\t", f.Doc)
				sb.WriteString("\t" + propertyKey(f.Name) + "?: " + f.Type + ";\n")
			}
			sb.WriteString("}\n")
		}
		sb.WriteString("\n")
		writeDoc(sb, "", e.Doc)
		sb.WriteString("export type " + e.EventName + " = " + e.Base + "<" + e.ParametersName + ", " + d.Class + ">;\n")
	}

	sb.WriteString("\n")
	sb.WriteString(d.Export.Keyword() + "interface " + d.Class + " {")
	if len(d.Methods) == 0 {
		sb.WriteString("}\n")
		return
	}
	sb.WriteString("\n")
	for i, m := range d.Methods {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeDoc(sb, "\t", m.Doc)
		sb.WriteString("\t" + m.Signature() + ";\n")
	}
	sb.WriteString("}\n")
}

// Signature renders the method without a trailing semicolon.
func (m Method) Signature() string {
	params := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		opt := ""
		if p.Optional {
			opt = "?"
		}
		params = append(params, p.Name+opt+": "+p.Type)
	}
	return m.Name + m.TypeParams + "(" + strings.Join(params, ", ") + "): " + m.Returns
}

func writeDoc(sb *strings.Builder, prefix string, lines []string) {
	if len(lines) == 0 {
		return
	}
	sb.WriteString(prefix + "/**\n")
	for _, line := range lines {
		line = strings.ReplaceAll(line, "*/", "*\\/")
		if strings.TrimSpace(line) == "" {
			sb.WriteString(prefix + " *\n")
			continue
		}
		sb.WriteString(prefix + " * " + line + "\n")
	}
	sb.WriteString(prefix + " */\n")
}

// propertyKey quotes names that are not valid identifiers.
func propertyKey(name string) string {
	if name != "" && identifier(name) == name && (name[0] < '0' || name[0] > '9') {
		return name
	}
	return "\"" + strings.ReplaceAll(name, "\"", "\\\"") + "\""
}

func indent(text, prefix string) string {
	lines := strings.SplitAfter(text, "\n")
	var sb strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			sb.WriteString(prefix)
		}
		sb.WriteString(line)
	}
	return sb.String()
}
