package descriptor

// Kind is the member kind an entry was declared under.
type Kind int

// Member kinds, in the order they are declared in a descriptor and emitted in
// generated output.
const (
	KindProperty Kind = iota
	KindAggregation
	KindAssociation
	KindEvent
)

// Kinds lists every member kind in canonical order.
var Kinds = []Kind{KindProperty, KindAggregation, KindAssociation, KindEvent}

// String returns the singular kind name.
func (k Kind) String() string {
	switch k {
	case KindProperty:
		return "property"
	case KindAggregation:
		return "aggregation"
	case KindAssociation:
		return "association"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Section returns the descriptor key that holds entries of this kind.
func (k Kind) Section() string {
	switch k {
	case KindProperty:
		return "properties"
	case KindAggregation:
		return "aggregations"
	case KindAssociation:
		return "associations"
	case KindEvent:
		return "events"
	default:
		return ""
	}
}

// KindForSection maps a descriptor key to its member kind.
func KindForSection(section string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Section() == section {
			return k, true
		}
	}
	return 0, false
}

// LiteralKind classifies a literal value found in a descriptor.
type LiteralKind int

// Literal kinds.
const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBool
	LiteralNull
	LiteralArray
	LiteralObject
	// LiteralExpr is a statically readable reference such as Enum.Value.
	LiteralExpr
)

// Literal is a value as it appears in source.
type Literal struct {
	Kind LiteralKind
	// Value is the decoded string for LiteralString, otherwise the source text.
	Value string
	// Text is the exact source text.
	Text string
}

// Doc is the documentation carried by an entry or class.
type Doc struct {
	// Text is the comment body without delimiters and without recognized tags.
	Text             string
	Since            string
	Experimental     bool
	ExperimentalNote string
	Deprecated       bool
	DeprecatedNote   string
	// Namespace is the value of an @namespace tag, which stays in Text as well.
	Namespace string
}

// IsZero reports whether the doc carries nothing.
func (d Doc) IsZero() bool {
	return d == Doc{}
}

// Param is one declared event parameter.
type Param struct {
	Name string
	Type string
	Doc  Doc
}

// Entry is one raw member descriptor, as authored.
type Entry struct {
	Kind Kind
	Name string
	// Shorthand is true when the entry was written as a bare type-name string.
	Shorthand bool
	Type      string
	// Multiple is nil when the entry does not say.
	Multiple            *bool
	DefaultValue        *Literal
	AltTypes            []string
	Bindable            bool
	AllowPreventDefault bool
	SingularName        string
	Readonly            bool
	Visibility          string
	Parameters          []Param
	Doc                 Doc
	Line                int
}

// Descriptor is the raw content of a static metadata object.
type Descriptor struct {
	Properties   []Entry
	Aggregations []Entry
	Associations []Entry
	Events       []Entry
	// DefaultAggregation is empty when the descriptor does not declare one.
	DefaultAggregation     string
	DefaultAggregationLine int
	Line                   int
}

// Entries returns the entries of one kind.
func (d *Descriptor) Entries(k Kind) []Entry {
	switch k {
	case KindProperty:
		return d.Properties
	case KindAggregation:
		return d.Aggregations
	case KindAssociation:
		return d.Associations
	case KindEvent:
		return d.Events
	default:
		return nil
	}
}

func (d *Descriptor) entriesPtr(k Kind) *[]Entry {
	switch k {
	case KindProperty:
		return &d.Properties
	case KindAggregation:
		return &d.Aggregations
	case KindAssociation:
		return &d.Associations
	default:
		return &d.Events
	}
}

// ExportForm is how a class declaration is exported from its module.
type ExportForm int

// Export forms.
const (
	ExportNone ExportForm = iota
	ExportNamed
	ExportDefault
)

// Keyword returns the declaration prefix matching the export form.
func (e ExportForm) Keyword() string {
	switch e {
	case ExportNamed:
		return "export "
	case ExportDefault:
		return "export default "
	default:
		return ""
	}
}

// Class is one widget class that declares a static metadata descriptor.
type Class struct {
	Name string
	// Extends is the source text of the extends clause, empty when absent.
	Extends string
	Export  ExportForm
	Doc     Doc
	// Descriptor is nil when Err is set.
	Descriptor  *Descriptor
	HasRenderer bool
	// SettingsReferenced is true when the class body mentions its settings type,
	// typically in the constructor overload lines.
	SettingsReferenced bool
	// Start and End are byte offsets of the whole declaration, including any
	// export keyword.
	Start, End         int
	StartLine, EndLine int
	Err                error
}

// Import is one binding introduced by an import declaration.
type Import struct {
	// Local is the name the binding has in the importing file.
	Local string
	// Module is the module specifier as written.
	Module string
	// Export is the imported name, "default" for default imports and "*" for
	// namespace imports.
	Export   string
	TypeOnly bool
}

// File is the parse result for one source file.
type File struct {
	Path    string
	Classes []*Class
	Imports []Import
	// TopLevel holds every name declared at module level.
	TopLevel map[string]bool
	// HasSyntaxErrors is true when the parser had to recover somewhere in the file.
	HasSyntaxErrors bool
}

// Class returns the class with the given name, or nil.
func (f *File) Class(name string) *Class {
	for _, c := range f.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ImportFor returns the import binding for a local name.
func (f *File) ImportFor(local string) (Import, bool) {
	for _, imp := range f.Imports {
		if imp.Local == local {
			return imp, true
		}
	}
	return Import{}, false
}
