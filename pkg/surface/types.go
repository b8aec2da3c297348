package surface

import (
	"strings"

	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
)

// Primitive type aliases understood by the widget runtime.
var primitives = map[string]bool{
	"string":   true,
	"boolean":  true,
	"int":      true,
	"float":    true,
	"number":   true,
	"object":   true,
	"any":      true,
	"function": true,
}

// TypeRef is an opaque nominal type reference.
type TypeRef struct {
	// Name is a primitive alias or a (usually dotted) type name.
	Name string
	// Array is true for the "T[]" form.
	Array bool
}

// ParseTypeRef parses a descriptor type string.
func ParseTypeRef(s string) TypeRef {
	s = strings.TrimSpace(s)
	if name, ok := strings.CutSuffix(s, "[]"); ok {
		return TypeRef{Name: strings.TrimSpace(name), Array: true}
	}
	return TypeRef{Name: s}
}

// IsPrimitive reports whether the type is one of the primitive aliases.
func (t TypeRef) IsPrimitive() bool {
	return primitives[t.Name]
}

// String renders the type as written in a descriptor.
func (t TypeRef) String() string {
	if t.Array {
		return t.Name + "[]"
	}
	return t.Name
}

// MarshalText implements encoding.TextMarshaler.
func (t TypeRef) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Param is a normalized event parameter.
type Param struct {
	Name string         `json:"name" yaml:"name"`
	Type TypeRef        `json:"type" yaml:"type"`
	Doc  descriptor.Doc `json:"-" yaml:"-"`
}

// Member is one normalized member of a widget surface.
type Member struct {
	Kind descriptor.Kind `json:"-" yaml:"-"`
	Name string          `json:"name" yaml:"name"`
	// Type is empty for events.
	Type     TypeRef `json:"type,omitempty" yaml:"type,omitempty"`
	Multiple bool    `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	// Default is nil when the descriptor declares no default value.
	Default             *descriptor.Literal `json:"-" yaml:"-"`
	AltTypes            []TypeRef           `json:"altTypes,omitempty" yaml:"altTypes,omitempty"`
	Bindable            bool                `json:"bindable,omitempty" yaml:"bindable,omitempty"`
	AllowPreventDefault bool                `json:"allowPreventDefault,omitempty" yaml:"allowPreventDefault,omitempty"`
	DefaultAggregation  bool                `json:"defaultAggregation,omitempty" yaml:"defaultAggregation,omitempty"`
	Readonly            bool                `json:"readonly,omitempty" yaml:"readonly,omitempty"`
	// Singular is the name used by add/insert/remove/indexOf accessors.
	Singular   string         `json:"singular,omitempty" yaml:"singular,omitempty"`
	Parameters []Param        `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Doc        descriptor.Doc `json:"-" yaml:"-"`
	// DeclaredBy is the name of the class that declared the member.
	DeclaredBy string `json:"declaredBy" yaml:"declaredBy"`
}

// KindName returns the member kind as text.
func (m Member) KindName() string {
	return m.Kind.String()
}

// DefaultText renders the default value as source text, or "" if none.
func (m Member) DefaultText() string {
	if m.Default == nil {
		return ""
	}
	return m.Default.Text
}

// Surface is the flattened public surface of one widget class.
type Surface struct {
	Class string `json:"class" yaml:"class"`
	// Module is the module id of the class, for example "sap/m/Button".
	Module string `json:"module" yaml:"module"`
	// Base is the module id of the base class, empty for root classes.
	Base    string                `json:"base,omitempty" yaml:"base,omitempty"`
	Export  descriptor.ExportForm `json:"-" yaml:"-"`
	Members []Member              `json:"members" yaml:"members"`
	// DefaultAggregation is empty when the class declares none.
	DefaultAggregation string         `json:"defaultAggregation,omitempty" yaml:"defaultAggregation,omitempty"`
	HasRenderer        bool           `json:"hasRenderer" yaml:"hasRenderer"`
	Doc                descriptor.Doc `json:"-" yaml:"-"`
}

// Member returns the member with the given name.
func (s *Surface) Member(name string) (Member, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// MembersOf returns the members of one kind in surface order.
func (s *Surface) MembersOf(kind descriptor.Kind) []Member {
	var out []Member
	for _, m := range s.Members {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Own returns the members declared by the class itself.
func (s *Surface) Own() []Member {
	var out []Member
	for _, m := range s.Members {
		if m.DeclaredBy == s.Class {
			out = append(out, m)
		}
	}
	return out
}
