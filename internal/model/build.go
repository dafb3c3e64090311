package model

import "github.com/koskimas/typeshift/internal/ptr"

func Any() *Schema        { return &Schema{Kind: KindAny} }
func Unknown() *Schema    { return &Schema{Kind: KindUnknown} }
func Never() *Schema      { return &Schema{Kind: KindNever} }
func Void() *Schema       { return &Schema{Kind: KindVoid} }
func Null() *Schema       { return &Schema{Kind: KindNull} }
func Undefined() *Schema  { return &Schema{Kind: KindUndefined} }
func Boolean() *Schema    { return &Schema{Kind: KindBoolean} }
func Number() *Schema     { return &Schema{Kind: KindNumber} }
func Integer() *Schema    { return &Schema{Kind: KindInteger} }
func BigInt() *Schema     { return &Schema{Kind: KindBigInt} }
func String() *Schema     { return &Schema{Kind: KindString} }
func Date() *Schema       { return &Schema{Kind: KindDate} }
func Uint8Array() *Schema { return &Schema{Kind: KindUint8Array} }
func Symbol() *Schema     { return &Schema{Kind: KindSymbol} }

func Literal(v any) *Schema {
	return &Schema{Kind: KindLiteral, Const: normalizeConst(v)}
}

func Array(items *Schema) *Schema {
	return &Schema{Kind: KindArray, Items: items}
}

func Tuple(elements ...*Schema) *Schema {
	n := len(elements)
	return &Schema{Kind: KindTuple, Elements: elements, MinItems: ptr.V(n), MaxItems: ptr.V(n)}
}

// Object builds an object whose properties are all required. Use Optional
// to drop a name from the required set afterwards.
func Object(props ...Property) *Schema {
	s := &Schema{Kind: KindObject, Properties: props, Required: make([]string, 0, len(props))}

	for _, p := range props {
		s.Required = append(s.Required, p.Name)
	}

	return s
}

func Prop(name string, schema *Schema) Property {
	return Property{Name: name, Schema: schema}
}

func (s *Schema) Optional(names ...string) *Schema {
	for _, n := range names {
		for i, r := range s.Required {
			if r == n {
				s.Required = append(s.Required[:i], s.Required[i+1:]...)
				break
			}
		}
	}

	return s
}

func Record(keyPattern string, value *Schema) *Schema {
	return &Schema{Kind: KindRecord, PatternProperties: []PatternProperty{{Pattern: keyPattern, Schema: value}}}
}

func Union(members ...*Schema) *Schema {
	return &Schema{Kind: KindUnion, AnyOf: members}
}

func Intersect(members ...*Schema) *Schema {
	return &Schema{Kind: KindIntersect, AllOf: members}
}

func Function(params []*Schema, returns *Schema) *Schema {
	return &Schema{Kind: KindFunction, Parameters: params, Returns: returns}
}

func Constructor(params []*Schema, returns *Schema) *Schema {
	return &Schema{Kind: KindConstructor, Parameters: params, Returns: returns}
}

func Promise(items *Schema) *Schema {
	return &Schema{Kind: KindPromise, Items: items}
}

func TemplateLiteral(pattern string) *Schema {
	return &Schema{Kind: KindTemplateLiteral, Pattern: pattern}
}

func Ref(name string) *Schema {
	return &Schema{Kind: KindRef, Ref: name}
}

func This(name string) *Schema {
	return &Schema{Kind: KindThis, Ref: name}
}

func Unresolved(source string) *Schema {
	return &Schema{Kind: KindUnresolved, Source: source}
}

// Named sets the $id of s and returns it.
func (s *Schema) Named(id string) *Schema {
	s.ID = id
	return s
}

func normalizeConst(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	}

	return v
}
