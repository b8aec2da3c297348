package descriptor

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/leapstack-labs/surfacegen/pkg/core"
)

const (
	metadataField = "metadata"
	rendererField = "renderer"
)

// Parse extracts every widget class with a static metadata descriptor from
// TypeScript or JavaScript source. Descriptor problems are reported per class
// through Class.Err; an error is returned only when the file cannot be parsed
// at all.
func Parse(ctx context.Context, path string, src []byte) (*File, error) {
	// A parser per call keeps Parse safe for concurrent use.
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, core.Wrap(err, core.KindSourceUnreadable, core.Location{File: path}, "tree-sitter parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, core.Errorf(core.KindSourceUnreadable, core.Location{File: path}, "parser returned no syntax tree")
	}

	p := &fileParser{path: path, src: src}
	file := &File{
		Path:            path,
		TopLevel:        make(map[string]bool),
		HasSyntaxErrors: root.HasError(),
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "import_statement":
			file.Imports = append(file.Imports, p.imports(node)...)
		case "export_statement":
			decl, form := p.exported(node)
			if decl == nil {
				continue
			}
			p.declare(file, decl)
			if isClassNode(decl) {
				if class := p.class(decl, node, form); class != nil {
					file.Classes = append(file.Classes, class)
				}
			}
		case "class_declaration", "abstract_class_declaration":
			p.declare(file, node)
			if class := p.class(node, node, ExportNone); class != nil {
				file.Classes = append(file.Classes, class)
			}
		default:
			p.declare(file, node)
		}
	}

	for _, imp := range file.Imports {
		file.TopLevel[imp.Local] = true
	}

	return file, nil
}

type fileParser struct {
	path string
	src  []byte
}

func (p *fileParser) text(n *sitter.Node) string {
	return string(p.src[n.StartByte():n.EndByte()])
}

func (p *fileParser) loc(class string, n *sitter.Node) core.Location {
	return core.Location{File: p.path, Class: class, Line: int(n.StartPoint().Row) + 1}
}

func isClassNode(n *sitter.Node) bool {
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration", "class":
		return true
	}
	return false
}

// exported returns the declaration inside an export statement and its form.
func (p *fileParser) exported(node *sitter.Node) (*sitter.Node, ExportForm) {
	form := ExportNamed
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			form = ExportDefault
			break
		}
	}
	if decl := node.ChildByFieldName("declaration"); decl != nil {
		return decl, form
	}
	if value := node.ChildByFieldName("value"); value != nil && value.Type() == "class" {
		return value, form
	}
	return nil, form
}

// declare records the names a top-level statement introduces.
func (p *fileParser) declare(file *File, node *sitter.Node) {
	switch node.Type() {
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() != "variable_declarator" {
				continue
			}
			if name := child.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
				file.TopLevel[p.text(name)] = true
			}
		}
	default:
		if name := node.ChildByFieldName("name"); name != nil {
			file.TopLevel[p.text(name)] = true
		}
	}
}

// imports expands one import statement into its bindings.
func (p *fileParser) imports(node *sitter.Node) []Import {
	source := node.ChildByFieldName("source")
	if source == nil {
		return nil
	}
	module := stringValue(p.text(source))

	typeOnly := false
	var clause *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "type":
			typeOnly = true
		case "import_clause":
			clause = child
		}
	}
	if clause == nil {
		return nil
	}

	var out []Import
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			out = append(out, Import{Local: p.text(child), Module: module, Export: "default", TypeOnly: typeOnly})
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if id := child.NamedChild(j); id.Type() == "identifier" {
					out = append(out, Import{Local: p.text(id), Module: module, Export: "*", TypeOnly: typeOnly})
				}
			}
		case "named_imports":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				name := spec.ChildByFieldName("name")
				if name == nil {
					continue
				}
				imp := Import{Local: p.text(name), Module: module, Export: p.text(name), TypeOnly: typeOnly}
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					imp.Local = p.text(alias)
				}
				if strings.HasPrefix(strings.TrimSpace(p.text(spec)), "type ") {
					imp.TypeOnly = true
				}
				out = append(out, imp)
			}
		}
	}
	return out
}

// class extracts one class. Classes without a static metadata member are not
// widgets and yield nil.
func (p *fileParser) class(decl, outer *sitter.Node, form ExportForm) *Class {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	body := decl.ChildByFieldName("body")
	if body == nil {
		return nil
	}

	class := &Class{
		Name:      p.text(nameNode),
		Export:    form,
		Start:     int(outer.StartByte()),
		End:       int(outer.EndByte()),
		StartLine: int(outer.StartPoint().Row) + 1,
		EndLine:   int(outer.EndPoint().Row) + 1,
	}
	if comment := p.precedingDocComment(outer); comment != nil {
		class.Doc = ParseDoc(p.text(comment))
	}
	class.Extends = p.heritage(decl)
	class.SettingsReferenced = strings.Contains(p.text(body), "$"+class.Name+"Settings")

	found := false
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		name, static := p.memberName(member)
		if !static {
			continue
		}
		switch name {
		case rendererField:
			class.HasRenderer = true
		case metadataField:
			found = true
			desc, err := p.metadata(class.Name, member)
			if err != nil {
				class.Err = err
				continue
			}
			class.Descriptor = desc
		}
	}
	if !found {
		return nil
	}
	return class
}

// heritage returns the source text of the extends clause target.
func (p *fileParser) heritage(decl *sitter.Node) string {
	for i := 0; i < int(decl.NamedChildCount()); i++ {
		child := decl.NamedChild(i)
		if child.Type() != "class_heritage" {
			continue
		}
		// JavaScript grammars put the expression directly under class_heritage.
		for j := 0; j < int(child.NamedChildCount()); j++ {
			clause := child.NamedChild(j)
			if clause.Type() != "extends_clause" {
				return p.text(clause)
			}
			if value := clause.ChildByFieldName("value"); value != nil {
				return p.text(value)
			}
			if clause.NamedChildCount() > 0 {
				return p.text(clause.NamedChild(0))
			}
		}
	}
	return ""
}

// memberName returns the name of a class body member and whether it is static.
func (p *fileParser) memberName(member *sitter.Node) (string, bool) {
	switch member.Type() {
	case "public_field_definition", "field_definition", "method_definition":
	default:
		return "", false
	}
	static := false
	var nameNode *sitter.Node
	for i := 0; i < int(member.ChildCount()); i++ {
		child := member.Child(i)
		switch child.Type() {
		case "static":
			static = true
		case "property_identifier", "private_property_identifier":
			if nameNode == nil {
				nameNode = child
			}
		}
	}
	if nameNode == nil {
		nameNode = member.ChildByFieldName("name")
	}
	if nameNode == nil {
		return "", static
	}
	return stringValue(p.text(nameNode)), static
}

// metadata reads the descriptor object bound to a static metadata member.
func (p *fileParser) metadata(class string, member *sitter.Node) (*Descriptor, error) {
	if member.Type() == "method_definition" {
		return nil, core.Errorf(core.KindNonStaticMetadata, p.loc(class, member),
			"class %s computes its metadata in an accessor; the descriptor must be an object literal", class)
	}
	value := member.ChildByFieldName("value")
	if value == nil {
		for i := int(member.NamedChildCount()) - 1; i >= 0; i-- {
			if child := member.NamedChild(i); child.Type() == "object" {
				value = child
				break
			}
		}
	}
	if value == nil {
		return nil, core.Errorf(core.KindNonStaticMetadata, p.loc(class, member),
			"class %s declares metadata without a value", class)
	}
	value = unwrap(value)
	if value.Type() != "object" {
		return nil, core.Errorf(core.KindNonStaticMetadata, p.loc(class, value),
			"class %s binds metadata to a %s, not an object literal", class, value.Type())
	}
	if value.HasError() {
		return nil, core.Errorf(core.KindNonStaticMetadata, p.loc(class, value),
			"class %s has syntax errors inside its metadata object", class)
	}

	desc := &Descriptor{Line: int(value.StartPoint().Row) + 1}
	err := p.walkObject(class, value, func(key string, pair *sitter.Node, _ Doc) error {
		v := unwrap(pair.ChildByFieldName("value"))
		if section, ok := KindForSection(key); ok {
			if v.Type() != "object" {
				return core.Errorf(core.KindNonStaticMetadata, p.loc(class, v),
					"%s of class %s is a %s, not an object literal", key, class, v.Type())
			}
			entries, err := p.entries(class, section, v)
			if err != nil {
				return err
			}
			*desc.entriesPtr(section) = mergeEntries(*desc.entriesPtr(section), entries)
			return nil
		}
		if key == "defaultAggregation" {
			lit, ok := p.literal(v)
			if !ok || lit.Kind != LiteralString {
				return core.Errorf(core.KindNonStaticMetadata, p.loc(class, v),
					"defaultAggregation of class %s must be a string literal", class)
			}
			desc.DefaultAggregation = lit.Value
			desc.DefaultAggregationLine = int(v.StartPoint().Row) + 1
		}
		// Other keys (library, interfaces, designtime, ...) do not shape the surface.
		return nil
	})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// walkObject visits the pairs of an object literal in source order, handing
// each pair the doc comment directly preceding it. Anything that is not a
// plain key/value pair makes the object non-static.
func (p *fileParser) walkObject(class string, obj *sitter.Node, visit func(key string, pair *sitter.Node, doc Doc) error) error {
	var pending *sitter.Node
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		child := obj.NamedChild(i)
		switch child.Type() {
		case "comment":
			if strings.HasPrefix(p.text(child), "/**") {
				pending = child
			}
			continue
		case "pair":
		default:
			return core.Errorf(core.KindNonStaticMetadata, p.loc(class, child),
				"class %s uses a %s inside its metadata", class, child.Type())
		}

		key, err := p.key(class, child.ChildByFieldName("key"))
		if err != nil {
			return err
		}
		var doc Doc
		if pending != nil {
			doc = ParseDoc(p.text(pending))
		}
		pending = nil
		if child.ChildByFieldName("value") == nil {
			return core.Errorf(core.KindNonStaticMetadata, p.loc(class, child), "entry %q of class %s has no value", key, class)
		}
		if err := visit(key, child, doc); err != nil {
			return err
		}
	}
	return nil
}

func (p *fileParser) key(class string, n *sitter.Node) (string, error) {
	if n == nil {
		return "", errors.Newf("missing key")
	}
	switch n.Type() {
	case "property_identifier", "identifier", "number":
		return p.text(n), nil
	case "string":
		return stringValue(p.text(n)), nil
	default:
		return "", core.Errorf(core.KindNonStaticMetadata, p.loc(class, n),
			"class %s uses a computed key %s in its metadata", class, p.text(n))
	}
}

// entries reads the member map of one section.
func (p *fileParser) entries(class string, kind Kind, obj *sitter.Node) ([]Entry, error) {
	var out []Entry
	err := p.walkObject(class, obj, func(name string, pair *sitter.Node, doc Doc) error {
		value := unwrap(pair.ChildByFieldName("value"))
		entry := Entry{Kind: kind, Name: name, Doc: doc, Line: int(pair.StartPoint().Row) + 1}

		switch value.Type() {
		case "string", "template_string":
			lit, ok := p.literal(value)
			if !ok {
				return core.Errorf(core.KindNonStaticMetadata, p.loc(class, value),
					"%s %q of class %s has a non-literal type", kind, name, class)
			}
			entry.Shorthand = true
			entry.Type = lit.Value
			if kind == KindAggregation || kind == KindAssociation {
				single := false
				entry.Multiple = &single
			}
		case "object":
			if err := p.entryFields(class, &entry, value); err != nil {
				return err
			}
		default:
			return core.Errorf(core.KindNonStaticMetadata, p.loc(class, value),
				"%s %q of class %s is a %s, not a type name or object literal", kind, name, class, value.Type())
		}

		out = mergeEntries(out, []Entry{entry})
		return nil
	})
	return out, err
}

// entryFields reads the object form of an entry.
func (p *fileParser) entryFields(class string, entry *Entry, obj *sitter.Node) error {
	return p.walkObject(class, obj, func(key string, pair *sitter.Node, _ Doc) error {
		value := unwrap(pair.ChildByFieldName("value"))
		lit, ok := p.literal(value)
		if !ok {
			return core.Errorf(core.KindNonStaticMetadata, p.loc(class, value),
				"field %s of %s %q in class %s is not statically readable", key, entry.Kind, entry.Name, class)
		}
		bad := func(want string) error {
			return core.Errorf(core.KindNonStaticMetadata, p.loc(class, value),
				"field %s of %s %q in class %s must be %s, got %s", key, entry.Kind, entry.Name, class, want, lit.Text)
		}

		switch key {
		case "type":
			if lit.Kind != LiteralString {
				return bad("a string literal")
			}
			entry.Type = lit.Value
		case "multiple":
			if lit.Kind != LiteralBool {
				return bad("true or false")
			}
			multiple := lit.Value == "true"
			entry.Multiple = &multiple
		case "defaultValue":
			l := lit
			entry.DefaultValue = &l
		case "altTypes":
			if lit.Kind != LiteralArray {
				return bad("an array of type names")
			}
			alts, err := p.stringArray(class, value)
			if err != nil {
				return err
			}
			entry.AltTypes = alts
		case "bindable":
			// Both true and the legacy "bindable" string enable binding.
			entry.Bindable = lit.Value == "true" || (lit.Kind == LiteralString && lit.Value == "bindable")
		case "allowPreventDefault":
			entry.AllowPreventDefault = lit.Kind == LiteralBool && lit.Value == "true"
		case "singularName":
			if lit.Kind != LiteralString {
				return bad("a string literal")
			}
			entry.SingularName = lit.Value
		case "readonly":
			entry.Readonly = lit.Kind == LiteralBool && lit.Value == "true"
		case "visibility":
			if lit.Kind == LiteralString {
				entry.Visibility = lit.Value
			}
		case "deprecated":
			if lit.Kind == LiteralBool && lit.Value == "true" {
				entry.Doc.Deprecated = true
			}
		case "since":
			if entry.Doc.Since == "" && lit.Kind == LiteralString {
				entry.Doc.Since = lit.Value
			}
		case "parameters":
			if value.Type() != "object" {
				return bad("an object literal")
			}
			params, err := p.parameters(class, entry, value)
			if err != nil {
				return err
			}
			entry.Parameters = params
		}
		return nil
	})
}

func (p *fileParser) parameters(class string, entry *Entry, obj *sitter.Node) ([]Param, error) {
	var params []Param
	err := p.walkObject(class, obj, func(name string, pair *sitter.Node, doc Doc) error {
		value := unwrap(pair.ChildByFieldName("value"))
		param := Param{Name: name, Type: "any", Doc: doc}
		switch value.Type() {
		case "string":
			param.Type = stringValue(p.text(value))
		case "object":
			err := p.walkObject(class, value, func(key string, field *sitter.Node, _ Doc) error {
				if key != "type" {
					return nil
				}
				v := unwrap(field.ChildByFieldName("value"))
				lit, ok := p.literal(v)
				if !ok || lit.Kind != LiteralString {
					return core.Errorf(core.KindNonStaticMetadata, p.loc(class, v),
						"parameter %q of event %q in class %s has a non-literal type", name, entry.Name, class)
				}
				param.Type = lit.Value
				return nil
			})
			if err != nil {
				return err
			}
		default:
			return core.Errorf(core.KindNonStaticMetadata, p.loc(class, value),
				"parameter %q of event %q in class %s is a %s", name, entry.Name, class, value.Type())
		}
		for i := range params {
			if params[i].Name == name {
				params[i] = param
				return nil
			}
		}
		params = append(params, param)
		return nil
	})
	return params, err
}

func (p *fileParser) stringArray(class string, arr *sitter.Node) ([]string, error) {
	var out []string
	for i := 0; i < int(arr.NamedChildCount()); i++ {
		item := arr.NamedChild(i)
		if item.Type() == "comment" {
			continue
		}
		lit, ok := p.literal(item)
		if !ok || lit.Kind != LiteralString {
			return nil, core.Errorf(core.KindNonStaticMetadata, p.loc(class, item),
				"class %s lists %s where a type name is expected", class, p.text(item))
		}
		out = append(out, lit.Value)
	}
	return out, nil
}

// literal classifies a statically readable value.
func (p *fileParser) literal(n *sitter.Node) (Literal, bool) {
	if n == nil {
		return Literal{}, false
	}
	text := p.text(n)
	switch n.Type() {
	case "string":
		return Literal{Kind: LiteralString, Value: stringValue(text), Text: text}, true
	case "template_string":
		if n.NamedChildCount() > 0 {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if n.NamedChild(i).Type() == "template_substitution" {
					return Literal{}, false
				}
			}
		}
		return Literal{Kind: LiteralString, Value: strings.Trim(text, "`"), Text: text}, true
	case "number":
		return Literal{Kind: LiteralNumber, Value: text, Text: text}, true
	case "unary_expression":
		if arg := n.ChildByFieldName("argument"); arg != nil && arg.Type() == "number" {
			return Literal{Kind: LiteralNumber, Value: text, Text: text}, true
		}
		return Literal{}, false
	case "true", "false":
		return Literal{Kind: LiteralBool, Value: text, Text: text}, true
	case "null", "undefined":
		return Literal{Kind: LiteralNull, Value: text, Text: text}, true
	case "array":
		return Literal{Kind: LiteralArray, Value: text, Text: text}, true
	case "object":
		return Literal{Kind: LiteralObject, Value: text, Text: text}, true
	case "identifier", "member_expression":
		return Literal{Kind: LiteralExpr, Value: text, Text: text}, true
	default:
		return Literal{}, false
	}
}

// unwrap strips type assertions and parentheses around an expression.
func unwrap(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "as_expression", "satisfies_expression", "parenthesized_expression", "non_null_expression":
			if n.NamedChildCount() == 0 {
				return n
			}
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return n
}

// precedingDocComment returns the /** */ comment directly above a node.
// Other comments in between, such as lint pragmas, are skipped.
func (p *fileParser) precedingDocComment(n *sitter.Node) *sitter.Node {
	for prev := n.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		if strings.HasPrefix(p.text(prev), "/**") {
			return prev
		}
	}
	return nil
}

// mergeEntries appends entries with object-literal semantics: a repeated key
// keeps its first position and takes the later value.
func mergeEntries(existing, add []Entry) []Entry {
	for _, e := range add {
		replaced := false
		for i := range existing {
			if existing[i].Name == e.Name {
				existing[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, e)
		}
	}
	return existing
}

// stringValue removes the quotes of a string literal and resolves the simple
// escape sequences type names and defaults use.
func stringValue(s string) string {
	if len(s) >= 2 {
		q := s[0]
		if (q == '"' || q == '\'' || q == '`') && s[len(s)-1] == q {
			s = s[1 : len(s)-1]
		}
	}
	if !strings.Contains(s, `\`) {
		return s
	}
	r := strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\'`, `'`, `\n`, "\n", `\t`, "\t")
	return r.Replace(s)
}

// String implements fmt.Stringer for debugging output.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Name, e.Type)
}
