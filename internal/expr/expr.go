// Package expr is a small predicate tree describing checks on a JavaScript
// value. Trees are built bottom up once and never mutated afterwards; the
// printer and the JSON encoder only read them.
package expr

type Kind string

const (
	KindTrue       Kind = "True"
	KindFalse      Kind = "False"
	KindIs         Kind = "Is"
	KindCompare    Kind = "Compare"
	KindMultipleOf Kind = "MultipleOf"
	KindProperty   Kind = "Property"
	KindHasKey     Kind = "HasKey"
	KindIndex      Kind = "Index"
	KindCall       Kind = "Call"
	KindInstanceOf Kind = "InstanceOf"
	KindAnd        Kind = "And"
	KindOr         Kind = "Or"
	KindNot        Kind = "Not"
	KindRef        Kind = "Ref"
	KindPattern    Kind = "Pattern"
	KindKeyCount   Kind = "KeyCount"
	KindKnownKeys  Kind = "KnownKeys"
	KindEntries    Kind = "Entries"
)

type TypeName string

const (
	TypeString    TypeName = "string"
	TypeNumber    TypeName = "number"
	TypeBoolean   TypeName = "boolean"
	TypeBigInt    TypeName = "bigint"
	TypeSymbol    TypeName = "symbol"
	TypeFunction  TypeName = "function"
	TypeUndefined TypeName = "undefined"
	TypeNull      TypeName = "null"
	TypeArray     TypeName = "array"
	TypeObject    TypeName = "object"
	TypeFinite    TypeName = "finite"
	TypeInteger   TypeName = "integer"
)

type Op string

const (
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpEqual        Op = "=="
)

type Expr interface {
	Kind() Kind
	ID() string
	setID(id string)
}

type base struct {
	id string
}

func (b *base) ID() string {
	return b.id
}

func (b *base) setID(id string) {
	b.id = id
}

// WithID tags e with the $id of the schema it was built from.
func WithID(e Expr, id string) Expr {
	e.setID(id)
	return e
}

type TrueExpr struct{ base }

type FalseExpr struct {
	base
	// Reason is set when the node stands in for something that could not be
	// expressed.
	Reason string
}

type IsExpr struct {
	base
	Type TypeName
}

type CompareExpr struct {
	base
	Op    Op
	Value any
}

type MultipleOfExpr struct {
	base
	Value float64
}

type PropertyExpr struct {
	base
	Key  string
	Expr Expr
}

// HasKeyExpr is true when the current value has Key as an own property,
// whatever its value.
type HasKeyExpr struct {
	base
	Key string
}

type IndexExpr struct {
	base
	Index int
	Expr  Expr
}

// CallExpr calls Method on the current value. Without Expr the call result is
// the outcome; with Expr the method receives a callback that applies Expr to
// its argument, as in `value.every((v) => ...)`.
type CallExpr struct {
	base
	Method string
	Args   []any
	Expr   Expr
}

type InstanceOfExpr struct {
	base
	Name string
}

type AndExpr struct {
	base
	Children []Expr
}

type OrExpr struct {
	base
	Children []Expr
}

type NotExpr struct {
	base
	Expr Expr
}

// RefExpr delegates to the check of another named type.
type RefExpr struct {
	base
	Name string
}

type PatternExpr struct {
	base
	Pattern string
}

type KeyCountExpr struct {
	base
	Op    Op
	Count int
}

type KnownKeysExpr struct {
	base
	Keys []string
}

// EntriesExpr checks every own key and value of a record.
type EntriesExpr struct {
	base
	Key   Expr
	Value Expr
}

func (*TrueExpr) Kind() Kind       { return KindTrue }
func (*FalseExpr) Kind() Kind      { return KindFalse }
func (*IsExpr) Kind() Kind         { return KindIs }
func (*CompareExpr) Kind() Kind    { return KindCompare }
func (*MultipleOfExpr) Kind() Kind { return KindMultipleOf }
func (*PropertyExpr) Kind() Kind   { return KindProperty }
func (*HasKeyExpr) Kind() Kind     { return KindHasKey }
func (*IndexExpr) Kind() Kind      { return KindIndex }
func (*CallExpr) Kind() Kind       { return KindCall }
func (*InstanceOfExpr) Kind() Kind { return KindInstanceOf }
func (*AndExpr) Kind() Kind        { return KindAnd }
func (*OrExpr) Kind() Kind         { return KindOr }
func (*NotExpr) Kind() Kind        { return KindNot }
func (*RefExpr) Kind() Kind        { return KindRef }
func (*PatternExpr) Kind() Kind    { return KindPattern }
func (*KeyCountExpr) Kind() Kind   { return KindKeyCount }
func (*KnownKeysExpr) Kind() Kind  { return KindKnownKeys }
func (*EntriesExpr) Kind() Kind    { return KindEntries }

func True() Expr {
	return &TrueExpr{}
}

func False() Expr {
	return &FalseExpr{}
}

// Unsupported is a check that always rejects.
func Unsupported(reason string) Expr {
	return &FalseExpr{Reason: reason}
}

func Is(t TypeName) Expr {
	return &IsExpr{Type: t}
}

func Compare(op Op, value any) Expr {
	return &CompareExpr{Op: op, Value: value}
}

func MultipleOf(v float64) Expr {
	return &MultipleOfExpr{Value: v}
}

func Property(key string, e Expr) Expr {
	return &PropertyExpr{Key: key, Expr: e}
}

func HasKey(key string) Expr {
	return &HasKeyExpr{Key: key}
}

func Index(i int, e Expr) Expr {
	return &IndexExpr{Index: i, Expr: e}
}

func Call(method string, args []any, e Expr) Expr {
	return &CallExpr{Method: method, Args: args, Expr: e}
}

func InstanceOf(name string) Expr {
	return &InstanceOfExpr{Name: name}
}

func Not(e Expr) Expr {
	return &NotExpr{Expr: e}
}

func Ref(name string) Expr {
	return &RefExpr{Name: name}
}

func Pattern(pattern string) Expr {
	return &PatternExpr{Pattern: pattern}
}

func KeyCount(op Op, n int) Expr {
	return &KeyCountExpr{Op: op, Count: n}
}

func KnownKeys(keys []string) Expr {
	return &KnownKeysExpr{Keys: keys}
}

func Entries(key, value Expr) Expr {
	return &EntriesExpr{Key: key, Value: value}
}

// And flattens nested conjunctions and drops children that are always true.
func And(children ...Expr) Expr {
	flat := make([]Expr, 0, len(children))

	for _, c := range children {
		switch n := c.(type) {
		case *TrueExpr:
			continue
		case *AndExpr:
			if n.ID() == "" {
				flat = append(flat, n.Children...)
				continue
			}
		}

		flat = append(flat, c)
	}

	switch len(flat) {
	case 0:
		return True()
	case 1:
		return flat[0]
	}

	return &AndExpr{Children: flat}
}

// Or flattens nested disjunctions and drops children that always reject.
func Or(children ...Expr) Expr {
	flat := make([]Expr, 0, len(children))

	for _, c := range children {
		switch n := c.(type) {
		case *FalseExpr:
			if n.Reason == "" {
				continue
			}
		case *OrExpr:
			if n.ID() == "" {
				flat = append(flat, n.Children...)
				continue
			}
		}

		flat = append(flat, c)
	}

	switch len(flat) {
	case 0:
		return False()
	case 1:
		return flat[0]
	}

	return &OrExpr{Children: flat}
}
