// Package synth derives the generated TypeScript declarations of a widget
// surface: the settings type, event types and accessor signatures.
package synth

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
	"github.com/leapstack-labs/surfacegen/pkg/surface"
)

// Mode selects where generated declarations live.
type Mode int

const (
	// ModeInline writes declarations into the source file after the class.
	ModeInline Mode = iota
	// ModeSidecar writes declarations into a companion .gen.d.ts file as a
	// module augmentation.
	ModeSidecar
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModeSidecar {
		return "sidecar"
	}
	return "inline"
}

// ParseMode parses "inline" or "sidecar".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inline":
		return ModeInline, nil
	case "sidecar":
		return ModeSidecar, nil
	default:
		return ModeInline, errors.Newf("unknown mode %q (want inline or sidecar)", s)
	}
}

// Options carries what the synthesizer needs to know about the target file.
type Options struct {
	Mode Mode
	// SourceModule is the relative specifier of the source file as seen from
	// the sidecar file, for example "./SampleControl".
	SourceModule string
	// FileImports are the import bindings of the source file.
	FileImports []descriptor.Import
	// Emitted are bindings already imported by earlier generated regions of
	// the same target file.
	Emitted []descriptor.Import
	// Reserved holds the top-level names of the source file.
	Reserved map[string]bool
	// Types resolves library types exported by name. May be nil.
	Types TypeResolver
}

// Field is one property of a generated interface.
type Field struct {
	Name string
	Type string
	Doc  []string
}

// Param is one parameter of a generated method.
type Param struct {
	Name     string
	Type     string
	Optional bool
}

// Method is one generated method signature.
type Method struct {
	Name       string
	TypeParams string
	Params     []Param
	Returns    string
	Doc        []string
}

// EventTypes are the parameter interface and event alias of one event.
type EventTypes struct {
	ParametersName string
	EventName      string
	// Base is the local name of the runtime Event type.
	Base       string
	Parameters []Field
	Doc        []string
}

// Declarations is the synthesized output for one class.
type Declarations struct {
	Class        string
	Export       descriptor.ExportForm
	SourceModule string
	// Imports are the bindings the generated block adds.
	Imports      []descriptor.Import
	SettingsName string
	Settings     []Field
	Events       []EventTypes
	Methods      []Method
}

// Synthesize derives the declarations of a widget surface.
func Synthesize(s *surface.Surface, opts Options) (*Declarations, error) {
	if s == nil {
		return nil, errors.New("synthesize: nil surface")
	}
	if opts.Mode == ModeSidecar && opts.SourceModule == "" {
		return nil, errors.Newf("synthesize %s: sidecar mode needs the source module", s.Class)
	}

	g := &generator{
		s: s,
		r: newResolver(s.Class, opts),
		d: &Declarations{
			Class:        s.Class,
			Export:       s.Export,
			SourceModule: opts.SourceModule,
			SettingsName: "$" + s.Class + "Settings",
		},
	}
	for _, m := range s.Members {
		switch m.Kind {
		case descriptor.KindProperty:
			g.property(m)
		case descriptor.KindAggregation:
			g.aggregation(m)
		case descriptor.KindAssociation:
			g.association(m)
		case descriptor.KindEvent:
			g.event(m)
		}
	}
	g.d.Imports = g.r.imports()
	return g.d, nil
}

type generator struct {
	s *surface.Surface
	r *resolver
	d *Declarations
}

const bindingString = "`{${string}}`"

func (g *generator) setting(m surface.Member, types ...string) {
	g.d.Settings = append(g.d.Settings, Field{
		Name: m.Name,
		Type: strings.Join(union(types), " | "),
		Doc:  memberDoc(m),
	})
}

func (g *generator) method(m surface.Member, summary string, name string, returns string, params ...Param) {
	g.d.Methods = append(g.d.Methods, Method{
		Name:    name,
		Params:  params,
		Returns: returns,
		Doc:     withSummary(summary, memberDoc(m)),
	})
}

func (g *generator) property(m surface.Member) {
	t := g.r.typeName(m.Type)
	types := []string{t, g.r.propertyBindingInfo()}
	if t != "string" {
		types = append(types, bindingString)
	}
	g.setting(m, types...)

	name := surface.Capitalize(m.Name)
	g.method(m, `Gets current value of property "`+m.Name+`".`, "get"+name, t)
	if !m.Readonly {
		g.method(m, `Sets a new value for property "`+m.Name+`".`, "set"+name, "this",
			Param{Name: "value", Type: t})
	}
}

// elementTypes returns the primary type followed by the alternate types.
func (g *generator) elementTypes(m surface.Member) []string {
	types := []string{g.r.typeName(m.Type)}
	for _, alt := range m.AltTypes {
		types = append(types, g.r.typeName(alt))
	}
	return union(types)
}

func (g *generator) aggregation(m surface.Member) {
	elems := g.elementTypes(m)
	one := strings.Join(elems, " | ")
	primary := elems[0]

	var types []string
	if m.Multiple {
		types = append(types, "Array<"+one+">")
	}
	types = append(types, elems...)
	if m.Bindable {
		types = append(types, g.r.aggregationBindingInfo(), bindingString)
	}
	g.setting(m, types...)

	name := surface.Capitalize(m.Name)
	singular := surface.Capitalize(m.Singular)
	item := paramName(m.Singular)
	agg := `aggregation "` + m.Name + `"`
	if !m.Multiple {
		g.method(m, "Gets content of "+agg+".", "get"+name, one)
		g.method(m, "Sets the aggregated "+m.Name+".", "set"+name, "this", Param{Name: "value", Type: one})
		g.method(m, "Destroys the "+m.Name+" in the "+agg+".", "destroy"+name, "this")
	} else {
		g.method(m, "Gets content of "+agg+".", "get"+name, primary+"[]")
		g.method(m, "Adds some "+m.Singular+" to the "+agg+".", "add"+singular, "this",
			Param{Name: item, Type: primary})
		g.method(m, "Inserts a "+m.Singular+" into the "+agg+".", "insert"+singular, "this",
			Param{Name: item, Type: primary}, Param{Name: "index", Type: "number"})
		g.method(m, "Removes a "+m.Singular+" from the "+agg+".", "remove"+singular, primary+" | null",
			Param{Name: item, Type: "number | string | " + primary})
		g.method(m, "Removes all the controls from the "+agg+".", "removeAll"+name, primary+"[]")
		g.method(m, "Checks for the provided "+primary+" in the "+agg+" and returns its index if found or -1 otherwise.",
			"indexOf"+singular, "number", Param{Name: item, Type: primary})
		g.method(m, "Destroys all the "+m.Name+" in the "+agg+".", "destroy"+name, "this")
	}
	if m.Bindable {
		g.method(m, "Binds "+agg+" to model data.", "bind"+name, "this",
			Param{Name: "bindingInfo", Type: g.r.aggregationBindingInfo()})
		g.method(m, "Unbinds "+agg+" from model data.", "unbind"+name, "this")
	}
}

func (g *generator) association(m surface.Member) {
	elems := union(append(g.elementTypes(m), "string"))
	one := strings.Join(elems, " | ")
	primary := elems[0]

	if m.Multiple {
		g.setting(m, "Array<"+one+">")
	} else {
		g.setting(m, elems...)
	}

	name := surface.Capitalize(m.Name)
	singular := surface.Capitalize(m.Singular)
	item := paramName(m.Singular)
	assoc := `association "` + m.Name + `"`
	if !m.Multiple {
		g.method(m, "ID of the element which is the current target of the "+assoc+", or null.", "get"+name, "string")
		g.method(m, "Sets the associated "+m.Name+".", "set"+name, "this", Param{Name: "value", Type: one})
		return
	}
	g.method(m, "Returns array of IDs of the elements which are the current targets of the "+assoc+".", "get"+name, "string[]")
	g.method(m, "Adds some "+m.Singular+" into the "+assoc+".", "add"+singular, "this",
		Param{Name: item, Type: primary + " | string"})
	g.method(m, "Removes an "+m.Singular+" from the "+assoc+".", "remove"+singular, "string | null",
		Param{Name: item, Type: "number | string | " + primary})
	g.method(m, "Removes all the controls in the "+assoc+".", "removeAll"+name, "string[]")
}

func (g *generator) event(m surface.Member) {
	name := surface.Capitalize(m.Name)
	paramsName := g.s.Class + "$" + name + "EventParameters"
	eventName := g.s.Class + "$" + name + "Event"

	et := EventTypes{
		ParametersName: paramsName,
		EventName:      eventName,
		Doc:            withSummary(`Event object of the `+g.s.Class+`#`+m.Name+` event.`, nil),
	}
	for _, p := range m.Parameters {
		et.Parameters = append(et.Parameters, Field{
			Name: p.Name,
			Type: g.r.typeName(p.Type),
			Doc:  docLines(p.Doc),
		})
	}
	et.Base = g.r.event()
	g.d.Events = append(g.d.Events, et)

	handler := "(event: " + eventName + ") => void"
	g.setting(m, handler)

	ev := `"` + m.Name + `" event`
	g.method(m, "Attaches event handler fn to the "+ev+" of this "+g.s.Class+".", "attach"+name, "this",
		Param{Name: "fn", Type: handler}, Param{Name: "listener", Type: "object", Optional: true})
	g.d.Methods = append(g.d.Methods, Method{
		Name:       "attach" + name,
		TypeParams: "<CustomDataType extends object>",
		Params: []Param{
			{Name: "data", Type: "CustomDataType"},
			{Name: "fn", Type: "(event: " + eventName + ", data: CustomDataType) => void"},
			{Name: "listener", Type: "object", Optional: true},
		},
		Returns: "this",
		Doc:     withSummary("Attaches event handler fn to the "+ev+" of this "+g.s.Class+", passing data to the handler.", memberDoc(m)),
	})
	g.method(m, "Detaches event handler fn from the "+ev+" of this "+g.s.Class+".", "detach"+name, "this",
		Param{Name: "fn", Type: handler}, Param{Name: "listener", Type: "object", Optional: true})

	fire := Param{Name: "parameters", Type: paramsName, Optional: true}
	if m.AllowPreventDefault {
		g.method(m, "Fires "+ev+" to attached listeners. Listeners may prevent the default action by calling "+
			"preventDefault on the event object; the result is false in that case.", "fire"+name, "boolean", fire)
		return
	}
	g.method(m, "Fires "+ev+" to attached listeners.", "fire"+name, "this", fire)
}

// union removes duplicate alternatives, keeping the first occurrence.
func union(types []string) []string {
	seen := make(map[string]bool, len(types))
	out := make([]string, 0, len(types))
	for _, t := range types {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// reservedWords cannot name a parameter.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
}

func paramName(name string) string {
	if reservedWords[name] {
		return "o" + surface.Capitalize(name)
	}
	return name
}
