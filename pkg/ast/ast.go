// Package ast defines the tree-shaped representation of a parsed GraphQL
// executable document used by the partitioner. It keeps the naming of the
// teacher's ref-arena AST (github.com/wundergraph/graphql-go-tools/v2/pkg/ast)
// — OperationType, SelectionKind, FragmentSpread, InlineFragment,
// VariableDefinition, Directive, Value/ValueKind — but represents nodes with
// ordinary pointers and slices rather than integer Refs into a shared arena,
// since a Document here lives for exactly one request and is never reused
// across parses or mutated after parsing completes.
package ast

// Document is an ordered sequence of operation and fragment definitions, the
// parser's top-level output.
type Document struct {
	Operations []*OperationDefinition
	Fragments  []*FragmentDefinition
}

// FragmentByName returns the fragment with the given name, or nil if none
// is defined.
func (d *Document) FragmentByName(name string) *FragmentDefinition {
	for _, f := range d.Fragments {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// OperationByName returns the operation with the given name, or nil. Passing
// an empty name matches an anonymous operation.
func (d *Document) OperationByName(name string) *OperationDefinition {
	for _, op := range d.Operations {
		if op.Name == name {
			return op
		}
	}
	return nil
}

// OperationType distinguishes query, mutation, and subscription definitions.
type OperationType int

const (
	Query OperationType = iota
	Mutation
	Subscription
)

func (t OperationType) String() string {
	switch t {
	case Query:
		return "query"
	case Mutation:
		return "mutation"
	case Subscription:
		return "subscription"
	default:
		return "unknown"
	}
}

// OperationDefinition is a named or anonymous query/mutation/subscription.
type OperationDefinition struct {
	OperationType       OperationType
	Name                string
	VariableDefinitions []*VariableDefinition
	Directives          []*Directive
	SelectionSet        *SelectionSet
}

// FragmentDefinition is a reusable named selection set scoped to a type
// condition.
type FragmentDefinition struct {
	Name          string
	TypeCondition string
	Directives    []*Directive
	SelectionSet  *SelectionSet
}

// VariableDefinition declares one operation-scoped variable.
type VariableDefinition struct {
	Name    string
	Type    *Type
	Default *Value
}

// TypeKind distinguishes the three forms a GraphQL type reference can take.
type TypeKind int

const (
	NamedType TypeKind = iota
	ListType
	NonNullType
)

// Type is a GraphQL type reference: a named type, a list of some inner type,
// or a non-null wrapper around some inner type.
type Type struct {
	Kind   TypeKind
	Name   string // valid when Kind == NamedType
	OfType *Type  // valid when Kind == ListType or Kind == NonNullType
}

func (t *Type) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case NamedType:
		return t.Name
	case ListType:
		return "[" + t.OfType.String() + "]"
	case NonNullType:
		return t.OfType.String() + "!"
	default:
		return ""
	}
}

// SelectionSet is an ordered sequence of selections.
type SelectionSet struct {
	Selections []*Selection
}

// SelectionKind identifies which of the closed Field/FragmentSpread/
// InlineFragment variant set a Selection holds. Dispatch on this field is
// meant to be exhaustive everywhere a Selection is consumed.
type SelectionKind int

const (
	FieldSelection SelectionKind = iota
	FragmentSpreadSelection
	InlineFragmentSelection
)

// Selection is a closed tagged union over Field, FragmentSpread, and
// InlineFragment. Exactly one of the typed fields is non-nil, matching Kind.
type Selection struct {
	Kind           SelectionKind
	Field          *Field
	FragmentSpread *FragmentSpread
	InlineFragment *InlineFragment
}

// ResponseKey returns the field's alias if present, else its name. It panics
// if called on a non-Field selection; callers must dispatch on Kind first.
func (s *Selection) ResponseKey() string {
	if s.Kind != FieldSelection {
		panic("ast: ResponseKey called on non-Field selection")
	}
	return s.Field.ResponseKey()
}

// Field is a single selected field, with optional alias, arguments,
// directives, and a child selection set (nil for leaf/scalar fields).
type Field struct {
	Alias        string
	Name         string
	Arguments    []*Argument
	Directives   []*Directive
	SelectionSet *SelectionSet
}

// ResponseKey returns Alias if set, else Name.
func (f *Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// FragmentSpread references a named fragment by name (`...Name`).
type FragmentSpread struct {
	FragmentName string
	Directives   []*Directive
}

// InlineFragment is an anonymous fragment inline in a selection set
// (`... on Type { ... }` or bare `... { ... }`).
type InlineFragment struct {
	TypeCondition string // empty when absent
	Directives    []*Directive
	SelectionSet  *SelectionSet
}

// Argument is one name:value pair attached to a field or directive.
type Argument struct {
	Name  string
	Value *Value
}

// Directive is an `@name(args...)` annotation attached to an operation,
// fragment, field, or fragment usage.
type Directive struct {
	Name      string
	Arguments []*Argument
}

// ValueKind identifies which GraphQL input-value form a Value holds.
type ValueKind int

const (
	VariableValue ValueKind = iota
	IntValue
	FloatValue
	StringValue
	BooleanValue
	NullValue
	EnumValue
	ListValue
	ObjectValue
)

// Value is a GraphQL input value: a variable reference or one of the
// literal kinds, recursively for list/object values.
type Value struct {
	Kind ValueKind

	VariableName string // VariableValue
	Raw          string // IntValue, FloatValue, EnumValue: literal text
	StringVal    string // StringValue
	BooleanVal   bool   // BooleanValue
	ListVal      []*Value
	ObjectVal    []*ObjectField
}

// ObjectField is one name:value entry inside an ObjectValue.
type ObjectField struct {
	Name  string
	Value *Value
}
