package surface

import (
	"github.com/leapstack-labs/surfacegen/pkg/core"
	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
)

// Defaults applied to entries that do not name a type.
const (
	DefaultPropertyType = "string"
	DefaultElementType  = "sap.ui.core.Control"
)

// Build layers the members declared by class over its base surface. base is
// nil for classes without a widget base. The returned surface has no module
// id; callers assign it.
func Build(class *descriptor.Class, base *Surface) (*Surface, error) {
	loc := core.Location{Class: class.Name, Line: class.StartLine}
	if class.Err != nil {
		return nil, core.WithLocation(class.Err, loc)
	}
	if class.Descriptor == nil {
		return nil, core.Errorf(core.KindNonStaticMetadata, loc, "class %s has no metadata descriptor", class.Name)
	}
	desc := class.Descriptor

	s := &Surface{
		Class:       class.Name,
		Export:      class.Export,
		HasRenderer: class.HasRenderer,
		Doc:         class.Doc,
	}

	// Members grouped by kind keep the canonical kind order no matter how the
	// base surface was assembled.
	byKind := make(map[descriptor.Kind][]Member, len(descriptor.Kinds))
	kindOf := make(map[string]descriptor.Kind)
	if base != nil {
		s.Base = base.Module
		for _, m := range base.Members {
			m.DefaultAggregation = false
			byKind[m.Kind] = append(byKind[m.Kind], m)
			kindOf[m.Name] = m.Kind
		}
	}

	for _, kind := range descriptor.Kinds {
		for _, entry := range desc.Entries(kind) {
			if entry.Visibility == "hidden" {
				continue
			}
			m := normalize(class.Name, entry)

			if existing, ok := kindOf[m.Name]; ok && existing != m.Kind {
				return nil, core.Errorf(core.KindMemberKindConflict,
					core.Location{Class: class.Name, Line: entry.Line},
					"%s %q of class %s collides with %s %q", m.Kind, m.Name, class.Name, existing, m.Name)
			}
			kindOf[m.Name] = m.Kind

			members := byKind[kind]
			replaced := false
			for i := range members {
				if members[i].Name == m.Name {
					members[i] = m
					replaced = true
					break
				}
			}
			if !replaced {
				members = append(members, m)
			}
			byKind[kind] = members
		}
	}

	for _, kind := range descriptor.Kinds {
		s.Members = append(s.Members, byKind[kind]...)
	}

	if name := desc.DefaultAggregation; name != "" {
		found := false
		for i := range s.Members {
			if s.Members[i].Kind == descriptor.KindAggregation && s.Members[i].Name == name {
				s.Members[i].DefaultAggregation = true
				found = true
				break
			}
		}
		if !found {
			return nil, core.Errorf(core.KindUnknownDefaultAggregation,
				core.Location{Class: class.Name, Line: desc.DefaultAggregationLine},
				"defaultAggregation %q of class %s names no aggregation", name, class.Name)
		}
		s.DefaultAggregation = name
	}

	return s, nil
}

// normalize applies the runtime's defaulting rules to one raw entry.
func normalize(class string, e descriptor.Entry) Member {
	m := Member{
		Kind:       e.Kind,
		Name:       e.Name,
		Default:    e.DefaultValue,
		Doc:        e.Doc,
		DeclaredBy: class,
	}

	switch e.Kind {
	case descriptor.KindProperty:
		m.Type = ParseTypeRef(orDefault(e.Type, DefaultPropertyType))
		m.Readonly = e.Readonly
	case descriptor.KindAggregation, descriptor.KindAssociation:
		m.Type = ParseTypeRef(orDefault(e.Type, DefaultElementType))
		// The runtime treats object-form aggregations as multiple unless told
		// otherwise; associations are single.
		m.Multiple = e.Kind == descriptor.KindAggregation
		if e.Multiple != nil {
			m.Multiple = *e.Multiple
		}
		for _, alt := range e.AltTypes {
			m.AltTypes = append(m.AltTypes, ParseTypeRef(alt))
		}
		m.Singular = e.SingularName
		if m.Singular == "" {
			m.Singular = e.Name
			if m.Multiple {
				m.Singular = GuessSingular(e.Name)
			}
		}
		m.Bindable = e.Kind == descriptor.KindAggregation && e.Bindable
		m.Default = nil
	case descriptor.KindEvent:
		m.AllowPreventDefault = e.AllowPreventDefault
		m.Default = nil
		for _, p := range e.Parameters {
			m.Parameters = append(m.Parameters, Param{Name: p.Name, Type: ParseTypeRef(orDefault(p.Type, "any")), Doc: p.Doc})
		}
	}
	return m
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
