package model

import (
	"fmt"
	"slices"
)

type Kind string

const (
	KindAny             Kind = "Any"
	KindUnknown         Kind = "Unknown"
	KindNever           Kind = "Never"
	KindVoid            Kind = "Void"
	KindNull            Kind = "Null"
	KindUndefined       Kind = "Undefined"
	KindBoolean         Kind = "Boolean"
	KindNumber          Kind = "Number"
	KindInteger         Kind = "Integer"
	KindBigInt          Kind = "BigInt"
	KindString          Kind = "String"
	KindLiteral         Kind = "Literal"
	KindArray           Kind = "Array"
	KindTuple           Kind = "Tuple"
	KindObject          Kind = "Object"
	KindRecord          Kind = "Record"
	KindUnion           Kind = "Union"
	KindIntersect       Kind = "Intersect"
	KindFunction        Kind = "Function"
	KindConstructor     Kind = "Constructor"
	KindPromise         Kind = "Promise"
	KindDate            Kind = "Date"
	KindUint8Array      Kind = "Uint8Array"
	KindTemplateLiteral Kind = "TemplateLiteral"
	KindRef             Kind = "Ref"
	KindThis            Kind = "This"
	KindSymbol          Kind = "Symbol"

	// KindUnresolved marks a construct the front end could parse but not model.
	// Source holds the offending fragment.
	KindUnresolved Kind = "Unresolved"
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{
	KindAny, KindUnknown, KindNever, KindVoid, KindNull, KindUndefined, KindBoolean,
	KindNumber, KindInteger, KindBigInt, KindString, KindLiteral, KindArray, KindTuple,
	KindObject, KindRecord, KindUnion, KindIntersect, KindFunction, KindConstructor,
	KindPromise, KindDate, KindUint8Array, KindTemplateLiteral, KindRef, KindThis,
	KindSymbol, KindUnresolved,
}

const (
	PatternStringKey = "^(.*)$"
	PatternNumberKey = "^(0|[1-9][0-9]*)$"
)

type AdditionalPolicy int

const (
	// AdditionalUnset leaves additional properties unconstrained, which is how
	// TypeScript object types behave.
	AdditionalUnset AdditionalPolicy = iota
	AdditionalAllow
	AdditionalForbid
	AdditionalSchema
)

type Property struct {
	Name     string
	Schema   *Schema
	Readonly bool
}

type PatternProperty struct {
	Pattern string
	Schema  *Schema
}

// Schema is one node of the schema model. Only the attributes that belong to
// Kind are meaningful; the rest stay at their zero values.
type Schema struct {
	Kind        Kind
	ID          string
	Description string
	Default     any
	Readonly    bool

	// Number, Integer, BigInt
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	// String and TemplateLiteral
	MinLength *int
	MaxLength *int
	Pattern   string
	Format    string

	// Literal. One of string, float64 or bool.
	Const any

	// Array and Promise element, Tuple bounds
	Items       *Schema
	MinItems    *int
	MaxItems    *int
	UniqueItems bool
	Elements    []*Schema

	// Object
	Properties       []Property
	Required         []string
	Additional       AdditionalPolicy
	AdditionalSchema *Schema

	// Record
	PatternProperties []PatternProperty

	// Union, Intersect
	AnyOf []*Schema
	AllOf []*Schema

	// Function, Constructor
	Parameters []*Schema
	Returns    *Schema

	// Ref and This
	Ref string

	// Unresolved
	Source string
}

func (s *Schema) Property(name string) (*Schema, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}

	return nil, false
}

func (s *Schema) IsRequired(name string) bool {
	return slices.Contains(s.Required, name)
}

// Closed is true for objects that forbid additional properties and require
// every declared property. Back ends can replace the exclusion check of such
// objects with a property count check.
func (s *Schema) Closed() bool {
	if s.Kind != KindObject || s.Additional != AdditionalForbid {
		return false
	}

	for _, p := range s.Properties {
		if !s.IsRequired(p.Name) {
			return false
		}
	}

	return true
}

// HasFunctions is true if any property of an object is a function. Service
// shaped objects are rendered differently by some back ends.
func (s *Schema) HasFunctions() bool {
	for _, p := range s.Properties {
		if p.Schema != nil && p.Schema.Kind == KindFunction {
			return true
		}
	}

	return false
}

// Validate reports violations of the model invariants. An empty result means
// the node and its children are well formed.
func (s *Schema) Validate() []string {
	problems := make([]string, 0)
	s.validate("", &problems)
	return problems
}

func (s *Schema) validate(path string, problems *[]string) {
	if s == nil {
		*problems = append(*problems, fmt.Sprintf("%s: nil schema", pathOrRoot(path)))
		return
	}

	switch s.Kind {
	case KindObject:
		for _, r := range s.Required {
			if _, ok := s.Property(r); !ok {
				*problems = append(*problems, fmt.Sprintf(`%s: required property "%s" is not declared`, pathOrRoot(path), r))
			}
		}

		for _, p := range s.Properties {
			p.Schema.validate(path+"."+p.Name, problems)
		}

		if s.Additional == AdditionalSchema {
			s.AdditionalSchema.validate(path+".[additional]", problems)
		}
	case KindTuple:
		n := len(s.Elements)
		if (s.MinItems != nil && *s.MinItems != n) || (s.MaxItems != nil && *s.MaxItems != n) {
			*problems = append(*problems, fmt.Sprintf("%s: tuple bounds do not match its %d elements", pathOrRoot(path), n))
		}

		for i, e := range s.Elements {
			e.validate(fmt.Sprintf("%s[%d]", path, i), problems)
		}
	case KindArray, KindPromise:
		s.Items.validate(path+"[]", problems)
	case KindRecord:
		for _, p := range s.PatternProperties {
			p.Schema.validate(path+"["+p.Pattern+"]", problems)
		}
	case KindUnion:
		if len(s.AnyOf) == 0 {
			*problems = append(*problems, fmt.Sprintf("%s: empty union", pathOrRoot(path)))
		}

		for i, u := range s.AnyOf {
			u.validate(fmt.Sprintf("%s|%d", path, i), problems)
		}
	case KindIntersect:
		for i, u := range s.AllOf {
			u.validate(fmt.Sprintf("%s&%d", path, i), problems)
		}
	case KindRef:
		if s.Ref == "" {
			*problems = append(*problems, fmt.Sprintf("%s: reference without a target", pathOrRoot(path)))
		}
	}
}

func pathOrRoot(path string) string {
	if path == "" {
		return "$"
	}

	return "$" + path
}

// Model is the ordered set of named top-level schemas produced by one front
// end run. It is not modified after construction.
type Model struct {
	Types []*Schema
}

func (m *Model) Lookup(id string) (*Schema, bool) {
	for _, t := range m.Types {
		if t.ID == id {
			return t, true
		}
	}

	return nil, false
}

func (m *Model) Names() []string {
	names := make([]string, 0, len(m.Types))

	for _, t := range m.Types {
		names = append(names, t.ID)
	}

	return names
}
