package gen

import (
	"fmt"
	"strings"

	"github.com/koskimas/typeshift/internal/expr"
	"github.com/koskimas/typeshift/internal/model"
)

type ioTs struct{}

func generateIoTs(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[string](m, ioTs{}, opts.Bounds(TargetIoTs))

	blocks := []string{"import * as t from 'io-ts'"}

	for _, d := range v.declarations(m) {
		if d.Recursive {
			blocks = append(blocks, fmt.Sprintf("export const %s: t.Type<any> = %s", d.Name, d.Body))
			continue
		}

		blocks = append(blocks, fmt.Sprintf("export type %s = t.TypeOf<typeof %s>\nexport const %s = %s", d.Name, d.Name, d.Name, d.Body))
	}

	return v.result(lines(blocks...)), nil
}

// refine narrows a codec with the checks, printed as one predicate.
func refine(codec string, name string, checks []expr.Expr) string {
	if len(checks) == 0 {
		return codec
	}

	return fmt.Sprintf("t.refinement(%s, (value) => %s, %s)", codec, expr.Print(expr.And(checks...), "value"), jsString(name))
}

func (ioTs) render(v *visitor[string], s *model.Schema) string {
	switch s.Kind {
	case model.KindAny:
		return "t.any"
	case model.KindUnknown:
		return "t.unknown"
	case model.KindNever:
		return "t.never"
	case model.KindVoid:
		return "t.void"
	case model.KindNull:
		return "t.null"
	case model.KindUndefined:
		return "t.undefined"
	case model.KindBoolean:
		return "t.boolean"
	case model.KindNumber:
		return refine("t.number", "Number", numberChecks(v.numberBounds(s), s.MultipleOf))
	case model.KindInteger:
		return refine("t.Int", "Integer", numberChecks(v.numberBounds(s), s.MultipleOf))
	case model.KindBigInt:
		return refine("t.bigint", "BigInt", numberChecks(v.numberBounds(s), nil))
	case model.KindString:
		return refine("t.string", "String", stringChecks(s))
	case model.KindTemplateLiteral:
		return refine("t.string", "TemplateLiteral", []expr.Expr{expr.Pattern(s.Pattern)})
	case model.KindLiteral:
		if s.Const == nil {
			return "t.null"
		}
		return "t.literal(" + jsValue(s.Const) + ")"
	case model.KindSymbol:
		return refine("t.unknown", "Symbol", []expr.Expr{expr.Is(expr.TypeSymbol)})
	case model.KindDate:
		return refine("t.unknown", "Date", []expr.Expr{expr.InstanceOf("Date")})
	case model.KindUint8Array:
		return refine("t.unknown", "Uint8Array", []expr.Expr{expr.InstanceOf("Uint8Array")})
	case model.KindPromise:
		return refine("t.unknown", "Promise", []expr.Expr{expr.InstanceOf("Promise")})
	case model.KindFunction, model.KindConstructor:
		return "t.Function"
	case model.KindArray:
		out := "t.array(" + v.Visit(s.Items) + ")"
		checks := make([]expr.Expr, 0, 2)
		if s.MinItems != nil {
			checks = append(checks, expr.Property("length", expr.Compare(expr.OpGreaterEqual, *s.MinItems)))
		}
		if s.MaxItems != nil {
			checks = append(checks, expr.Property("length", expr.Compare(expr.OpLessEqual, *s.MaxItems)))
		}
		return refine(out, "Array", checks)
	case model.KindTuple:
		return "t.tuple([" + strings.Join(v.visitAll(s.Elements), ", ") + "])"
	case model.KindObject:
		return ioTsObject(v, s)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		key := "t.string"
		if p.Pattern != model.PatternStringKey {
			key = refine("t.string", "Key", []expr.Expr{expr.Pattern(p.Pattern)})
		}

		return "t.record(" + key + ", " + v.Visit(p.Schema) + ")"
	case model.KindUnion:
		members := v.visitAll(s.AnyOf)
		switch len(members) {
		case 0:
			return "t.never"
		case 1:
			return members[0]
		}
		return "t.union([" + strings.Join(members, ", ") + "])"
	case model.KindIntersect:
		members := v.visitAll(s.AllOf)
		switch len(members) {
		case 0:
			return "t.unknown"
		case 1:
			return members[0]
		}
		return "t.intersection([" + strings.Join(members, ", ") + "])"
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func ioTsObject(v *visitor[string], s *model.Schema) string {
	required := make([]option, 0, len(s.Properties))
	optional := make([]option, 0)

	for _, p := range s.Properties {
		value := v.Visit(p.Schema)
		if p.Readonly {
			value = "t.readonly(" + value + ")"
		}

		if s.IsRequired(p.Name) {
			required = append(required, option{key: p.Name, value: value})
		} else {
			optional = append(optional, option{key: p.Name, value: value})
		}
	}

	var out string
	switch {
	case len(optional) == 0:
		out = "t.type(" + jsObject(required) + ")"
	case len(required) == 0:
		out = "t.partial(" + jsObject(optional) + ")"
	default:
		out = "t.intersection([t.type(" + jsObject(required) + "), t.partial(" + jsObject(optional) + ")])"
	}

	switch s.Additional {
	case model.AdditionalForbid:
		out = refine("t.exact("+out+")", "Exact", []expr.Expr{expr.KnownKeys(propertyNames(s))})
	case model.AdditionalSchema:
		out = "t.intersection([" + out + ", t.record(t.string, " + v.Visit(s.AdditionalSchema) + ")])"
	}

	return out
}

func (ioTs) reference(v *visitor[string], name string, target *model.Schema, kind refKind) string {
	switch {
	case kind == refDeclared:
		return name
	case !v.isDeclared(name):
		return v.unsupportedf("recursive inline type %s", name)
	case kind == refForward:
		return fmt.Sprintf("t.recursion(%s, () => %s)", jsString(name), name)
	}

	return name
}

// t.recursion gives the codec a name to close over, so no lazy wrapper is
// needed at the reference itself.
func (ioTs) recursive(name string, body string) string {
	return fmt.Sprintf("t.recursion(%s, () => %s)", jsString(name), body)
}

func (ioTs) sentinel(reason string) string {
	return "t.never /* unsupported: " + comment(reason) + " */"
}
