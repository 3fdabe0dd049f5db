package env

// Kind is the tag that starts a record, or one of the structural markers.
type Kind int

// Record tags.
const (
	// RecordDone terminates a record's property list or its children.
	RecordDone Kind = 0
	// RecordChildren introduces the nested records of the current record.
	RecordChildren Kind = 1
	// RecordAbbreviationDefinition defines the shape of an abbreviated record.
	RecordAbbreviationDefinition Kind = 2
	// RecordAbbreviated is a record whose kind and property ids come from a
	// previously defined abbreviation.
	RecordAbbreviated Kind = 3
	// RecordScope is a lexical scope.
	RecordScope Kind = 4
	// RecordBinding is a variable binding within a scope.
	RecordBinding Kind = 5
)

func (k Kind) String() string {
	switch k {
	case RecordDone:
		return "done"
	case RecordChildren:
		return "children"
	case RecordAbbreviationDefinition:
		return "abbreviation-definition"
	case RecordAbbreviated:
		return "abbreviated"
	case RecordScope:
		return "scope"
	case RecordBinding:
		return "binding"
	default:
		return "unknown"
	}
}

// Property identifies a record property. Property ids never collide with
// RecordDone and RecordChildren, which may appear in the same position.
type Property int

// Property ids.
const (
	PropertyType  Property = 2
	PropertyStart Property = 3
	PropertyEnd   Property = 4
	PropertyName  Property = 5
	PropertyValue Property = 6
)

// Scope type values.
const (
	ScopeBlock    = 1
	ScopeFunction = 2
)

// Binding type values.
const (
	BindingConst = 1
	BindingLocal = 2
	BindingParam = 3
)
