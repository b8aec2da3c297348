package catalog

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/surfacegen/pkg/descriptor"
)

type document struct {
	classes []*classDef
	types   map[string]TypeSource
}

// decode reads a catalog document. Mapping nodes are walked directly so member
// order follows the file.
func decode(source string, data []byte) (*document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(err, "parsing catalog %s", source)
	}
	doc := &document{types: make(map[string]TypeSource)}
	if len(root.Content) == 0 {
		return doc, nil
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, nodeErr(source, top, "catalog must be a mapping")
	}

	err := eachPair(top, func(key string, value *yaml.Node) error {
		switch key {
		case "classes":
			return eachPair(value, func(id string, body *yaml.Node) error {
				def, err := decodeClass(source, id, body)
				if err != nil {
					return err
				}
				doc.classes = append(doc.classes, def)
				return nil
			})
		case "types":
			return eachPair(value, func(name string, target *yaml.Node) error {
				if target.Kind != yaml.ScalarNode {
					return nodeErr(source, target, "type %s must map to \"module#Export\"", name)
				}
				module, export, ok := strings.Cut(target.Value, "#")
				if !ok {
					export = "default"
				}
				doc.types[name] = TypeSource{Module: module, Export: export}
				return nil
			})
		default:
			return nodeErr(source, value, "unknown catalog key %q", key)
		}
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeClass(source, id string, body *yaml.Node) (*classDef, error) {
	def := &classDef{
		id:     ModuleID(id),
		source: source,
		class: &descriptor.Class{
			Name:      className(ModuleID(id)),
			Export:    descriptor.ExportDefault,
			StartLine: body.Line,
		},
	}
	desc := &descriptor.Descriptor{Line: body.Line}
	def.class.Descriptor = desc

	if body.Kind != yaml.MappingNode {
		return nil, nodeErr(source, body, "class %s must be a mapping", id)
	}
	err := eachPair(body, func(key string, value *yaml.Node) error {
		if kind, ok := descriptor.KindForSection(key); ok {
			return eachPair(value, func(name string, entry *yaml.Node) error {
				e, err := decodeEntry(source, kind, name, entry)
				if err != nil {
					return err
				}
				switch kind {
				case descriptor.KindProperty:
					desc.Properties = append(desc.Properties, e)
				case descriptor.KindAggregation:
					desc.Aggregations = append(desc.Aggregations, e)
				case descriptor.KindAssociation:
					desc.Associations = append(desc.Associations, e)
				case descriptor.KindEvent:
					desc.Events = append(desc.Events, e)
				}
				return nil
			})
		}
		switch key {
		case "extends":
			def.extends = ModuleID(value.Value)
		case "defaultAggregation":
			desc.DefaultAggregation = value.Value
			desc.DefaultAggregationLine = value.Line
		case "doc":
			def.class.Doc = descriptor.Doc{Text: value.Value}
		case "renderer":
			def.class.HasRenderer = value.Value == "true"
		default:
			return nodeErr(source, value, "unknown key %q in class %s", key, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return def, nil
}

func decodeEntry(source string, kind descriptor.Kind, name string, node *yaml.Node) (descriptor.Entry, error) {
	e := descriptor.Entry{Kind: kind, Name: name, Line: node.Line}
	switch node.Kind {
	case yaml.ScalarNode:
		e.Shorthand = true
		e.Type = node.Value
		if kind == descriptor.KindAggregation || kind == descriptor.KindAssociation {
			single := false
			e.Multiple = &single
		}
		return e, nil
	case yaml.MappingNode:
	default:
		return e, nodeErr(source, node, "%s %s must be a type name or a mapping", kind, name)
	}

	err := eachPair(node, func(key string, value *yaml.Node) error {
		switch key {
		case "type":
			e.Type = value.Value
		case "multiple":
			b, err := boolValue(source, value)
			if err != nil {
				return err
			}
			e.Multiple = &b
		case "defaultValue":
			lit := literal(value)
			e.DefaultValue = &lit
		case "altTypes":
			if value.Kind != yaml.SequenceNode {
				return nodeErr(source, value, "altTypes of %s must be a list", name)
			}
			for _, item := range value.Content {
				e.AltTypes = append(e.AltTypes, item.Value)
			}
		case "bindable":
			e.Bindable = value.Value == "true" || value.Value == "bindable"
		case "allowPreventDefault":
			b, err := boolValue(source, value)
			if err != nil {
				return err
			}
			e.AllowPreventDefault = b
		case "singularName":
			e.SingularName = value.Value
		case "readonly":
			b, err := boolValue(source, value)
			if err != nil {
				return err
			}
			e.Readonly = b
		case "visibility":
			e.Visibility = value.Value
		case "deprecated":
			b, err := boolValue(source, value)
			if err != nil {
				return err
			}
			e.Doc.Deprecated = b
		case "since":
			e.Doc.Since = value.Value
		case "doc":
			e.Doc.Text = value.Value
		case "parameters":
			return eachPair(value, func(param string, p *yaml.Node) error {
				typ := p.Value
				if p.Kind == yaml.MappingNode {
					typ = ""
					_ = eachPair(p, func(k string, v *yaml.Node) error {
						if k == "type" {
							typ = v.Value
						}
						return nil
					})
				}
				e.Parameters = append(e.Parameters, descriptor.Param{Name: param, Type: typ})
				return nil
			})
		default:
			return nodeErr(source, value, "unknown field %q in %s %s", key, kind, name)
		}
		return nil
	})
	return e, err
}

// literal converts a scalar or collection node into a descriptor literal.
func literal(n *yaml.Node) descriptor.Literal {
	switch n.Kind {
	case yaml.SequenceNode:
		return descriptor.Literal{Kind: descriptor.LiteralArray, Value: flowText(n), Text: flowText(n)}
	case yaml.MappingNode:
		return descriptor.Literal{Kind: descriptor.LiteralObject, Value: flowText(n), Text: flowText(n)}
	}
	switch n.ShortTag() {
	case "!!bool":
		return descriptor.Literal{Kind: descriptor.LiteralBool, Value: n.Value, Text: n.Value}
	case "!!int", "!!float":
		return descriptor.Literal{Kind: descriptor.LiteralNumber, Value: n.Value, Text: n.Value}
	case "!!null":
		return descriptor.Literal{Kind: descriptor.LiteralNull, Value: "null", Text: "null"}
	default:
		return descriptor.Literal{Kind: descriptor.LiteralString, Value: n.Value, Text: strconv.Quote(n.Value)}
	}
}

// flowText renders a collection node in compact source form.
func flowText(n *yaml.Node) string {
	var parts []string
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			parts = append(parts, literal(item).Text)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			parts = append(parts, n.Content[i].Value+": "+literal(n.Content[i+1]).Text)
		}
		if len(parts) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return n.Value
}

func boolValue(source string, n *yaml.Node) (bool, error) {
	var b bool
	if err := n.Decode(&b); err != nil {
		return false, nodeErr(source, n, "expected true or false, got %q", n.Value)
	}
	return b, nil
}

// eachPair visits the key/value pairs of a mapping node in document order.
func eachPair(n *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if n.Kind != yaml.MappingNode {
		return errors.Newf("line %d: expected a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func nodeErr(source string, n *yaml.Node, format string, args ...any) error {
	return errors.Wrapf(errors.Newf(format, args...), "%s:%d", source, n.Line)
}
