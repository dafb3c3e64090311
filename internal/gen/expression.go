package gen

import (
	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/expr"
	"github.com/koskimas/typeshift/internal/model"
)

// checks lowers schemas to predicate trees. The expression and javascript
// targets share it.
type checks struct{}

func checkDeclarations(m *model.Model, opts Options, target Target) ([]expr.Named, *visitor[expr.Expr]) {
	v := newVisitor[expr.Expr](m, checks{}, opts.Bounds(target))

	decls := v.declarations(m)
	named := make([]expr.Named, len(decls))

	for i, d := range decls {
		named[i] = expr.Named{Name: d.Name, Expr: d.Body}
	}

	return named, v
}

func generateExpression(m *model.Model, opts Options) (*Result, error) {
	named, v := checkDeclarations(m, opts, TargetExpression)

	data, err := expr.MarshalIndent(named)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode expressions")
	}

	return v.result(string(data) + "\n"), nil
}

func (checks) render(v *visitor[expr.Expr], s *model.Schema) expr.Expr {
	e := checkBase(v, s)

	if s.ID != "" {
		e = expr.WithID(e, s.ID)
	}

	return e
}

func checkBase(v *visitor[expr.Expr], s *model.Schema) expr.Expr {
	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return expr.True()
	case model.KindNever:
		return expr.False()
	case model.KindVoid, model.KindUndefined:
		return expr.Is(expr.TypeUndefined)
	case model.KindNull:
		return expr.Is(expr.TypeNull)
	case model.KindBoolean:
		return expr.Is(expr.TypeBoolean)
	case model.KindSymbol:
		return expr.Is(expr.TypeSymbol)
	case model.KindFunction, model.KindConstructor:
		return expr.Is(expr.TypeFunction)
	case model.KindDate:
		return expr.InstanceOf("Date")
	case model.KindUint8Array:
		return expr.InstanceOf("Uint8Array")
	case model.KindPromise:
		return expr.InstanceOf("Promise")
	case model.KindNumber:
		return expr.And(append([]expr.Expr{expr.Is(expr.TypeNumber)}, numberChecks(v.numberBounds(s), s.MultipleOf)...)...)
	case model.KindInteger:
		return expr.And(append([]expr.Expr{expr.Is(expr.TypeInteger)}, numberChecks(v.numberBounds(s), s.MultipleOf)...)...)
	case model.KindBigInt:
		return expr.And(append([]expr.Expr{expr.Is(expr.TypeBigInt)}, numberChecks(v.numberBounds(s), nil)...)...)
	case model.KindString:
		return expr.And(append([]expr.Expr{expr.Is(expr.TypeString)}, stringChecks(s)...)...)
	case model.KindTemplateLiteral:
		return expr.And(expr.Is(expr.TypeString), expr.Pattern(s.Pattern))
	case model.KindLiteral:
		return expr.Compare(expr.OpEqual, s.Const)
	case model.KindArray:
		children := []expr.Expr{expr.Is(expr.TypeArray)}
		if s.MinItems != nil {
			children = append(children, expr.Property("length", expr.Compare(expr.OpGreaterEqual, *s.MinItems)))
		}
		if s.MaxItems != nil {
			children = append(children, expr.Property("length", expr.Compare(expr.OpLessEqual, *s.MaxItems)))
		}
		children = append(children, expr.Call("every", nil, v.Visit(s.Items)))
		return expr.And(children...)
	case model.KindTuple:
		children := []expr.Expr{
			expr.Is(expr.TypeArray),
			expr.Property("length", expr.Compare(expr.OpEqual, len(s.Elements))),
		}
		for i, e := range s.Elements {
			children = append(children, expr.Index(i, v.Visit(e)))
		}
		return expr.And(children...)
	case model.KindObject:
		return checkObject(v, s)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		key := expr.True()
		if p.Pattern != model.PatternStringKey {
			key = expr.Pattern(p.Pattern)
		}

		return expr.And(expr.Is(expr.TypeObject), expr.Entries(key, v.Visit(p.Schema)))
	case model.KindUnion:
		return expr.Or(v.visitAll(s.AnyOf)...)
	case model.KindIntersect:
		return expr.And(v.visitAll(s.AllOf)...)
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func numberChecks(bounds []bound, multipleOf *float64) []expr.Expr {
	ops := [...]expr.Op{expr.OpGreaterEqual, expr.OpGreater, expr.OpLessEqual, expr.OpLess}

	out := make([]expr.Expr, 0, len(bounds)+1)
	for _, b := range bounds {
		out = append(out, expr.Compare(ops[b.op], b.value))
	}

	if multipleOf != nil {
		out = append(out, expr.MultipleOf(*multipleOf))
	}

	return out
}

func stringChecks(s *model.Schema) []expr.Expr {
	out := make([]expr.Expr, 0, 3)

	if s.MinLength != nil {
		out = append(out, expr.Property("length", expr.Compare(expr.OpGreaterEqual, *s.MinLength)))
	}

	if s.MaxLength != nil {
		out = append(out, expr.Property("length", expr.Compare(expr.OpLessEqual, *s.MaxLength)))
	}

	if s.Pattern != "" {
		out = append(out, expr.Pattern(s.Pattern))
	}

	return out
}

func checkObject(v *visitor[expr.Expr], s *model.Schema) expr.Expr {
	children := []expr.Expr{expr.Is(expr.TypeObject)}
	keys := make([]string, 0, len(s.Properties))

	for _, p := range s.Properties {
		keys = append(keys, p.Name)
		check := v.Visit(p.Schema)

		if !s.IsRequired(p.Name) {
			check = expr.Or(expr.Is(expr.TypeUndefined), check)
		} else {
			children = append(children, expr.HasKey(p.Name))
		}

		children = append(children, expr.Property(p.Name, check))
	}

	switch {
	case s.Closed():
		children = append(children, expr.KeyCount(expr.OpEqual, len(s.Properties)))
	case s.Additional == model.AdditionalForbid:
		children = append(children, expr.KnownKeys(keys))
	case s.Additional == model.AdditionalSchema && len(s.Properties) == 0:
		children = append(children, expr.Entries(expr.True(), v.Visit(s.AdditionalSchema)))
	case s.Additional == model.AdditionalSchema:
		children = append(children, v.unsupportedf("additional property schema next to declared properties"))
	}

	return expr.And(children...)
}

// Check functions are hoisted, so every reference to a top-level type is a
// plain call whatever the order.
func (checks) reference(v *visitor[expr.Expr], name string, target *model.Schema, kind refKind) expr.Expr {
	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	return expr.Ref(name)
}

func (checks) sentinel(reason string) expr.Expr {
	return expr.Unsupported(reason)
}
