package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koskimas/typeshift/internal/expr"
	"github.com/koskimas/typeshift/internal/model"
)

type yup struct{}

func generateYup(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[string](m, yup{}, opts.Bounds(TargetYup))

	blocks := []string{"import * as yup from 'yup'"}

	for _, d := range v.declarations(m) {
		if d.Recursive {
			blocks = append(blocks, fmt.Sprintf("export const %s: yup.Schema<any> = %s", d.Name, d.Body))
			continue
		}

		blocks = append(blocks, fmt.Sprintf("export type %s = yup.InferType<typeof %s>\nexport const %s = %s", d.Name, d.Name, d.Name, d.Body))
	}

	return v.result(lines(blocks...)), nil
}

var yupBounds = boundMethods{"min", "moreThan", "max", "lessThan"}

// yupTest is a mixed schema accepting the values for which the JavaScript
// predicate over `value` holds.
func yupTest(name string, predicate string) string {
	return fmt.Sprintf("yup.mixed().test(%s, %s, (value) => %s)", jsString(name), jsString("${path} is not a valid "+name), predicate)
}

func (yup) render(v *visitor[string], s *model.Schema) string {
	out := yupBase(v, s)

	if s.Description != "" {
		out += ".meta(" + jsObject([]option{{key: "description", value: jsString(s.Description)}}) + ")"
	}

	if s.Default != nil {
		out += ".default(" + jsValue(s.Default) + ")"
	}

	return out
}

func yupBase(v *visitor[string], s *model.Schema) string {
	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return "yup.mixed()"
	case model.KindNever:
		return yupTest("never", "false")
	case model.KindVoid, model.KindUndefined:
		return yupTest("undefined", "value === undefined")
	case model.KindNull:
		return "yup.mixed().nullable().oneOf([null])"
	case model.KindBoolean:
		return "yup.boolean().strict()"
	case model.KindNumber, model.KindInteger:
		out := "yup.number().strict()"
		if s.Kind == model.KindInteger {
			out += ".integer()"
		}
		out += chainBounds(v.numberBounds(s), yupBounds, jsNumber)
		if s.MultipleOf != nil {
			out += fmt.Sprintf(".test(%s, %s, (value) => value === undefined || value %% %s === 0)",
				jsString("multipleOf"), jsString("${path} must be a multiple of "+jsNumber(*s.MultipleOf)), jsNumber(*s.MultipleOf))
		}
		return out
	case model.KindBigInt:
		checks := append([]expr.Expr{expr.Is(expr.TypeBigInt)}, numberChecks(v.numberBounds(s), nil)...)
		return yupTest("bigint", expr.Print(expr.And(checks...), "value"))
	case model.KindString:
		return "yup.string().strict()" + yupString(s)
	case model.KindTemplateLiteral:
		return "yup.string().strict().matches(new RegExp(" + jsString(s.Pattern) + "))"
	case model.KindLiteral:
		return "yup.mixed().oneOf([" + jsValue(s.Const) + "])"
	case model.KindSymbol:
		return yupTest("symbol", "typeof value === 'symbol'")
	case model.KindDate:
		return "yup.date().strict()"
	case model.KindUint8Array:
		return yupTest("Uint8Array", "value instanceof Uint8Array")
	case model.KindPromise:
		return yupTest("Promise", "value instanceof Promise")
	case model.KindFunction, model.KindConstructor:
		return yupTest("function", "typeof value === 'function'")
	case model.KindArray:
		out := "yup.array(" + v.Visit(s.Items) + ")"
		if s.MinItems != nil {
			out += ".min(" + strconv.Itoa(*s.MinItems) + ")"
		}
		if s.MaxItems != nil {
			out += ".max(" + strconv.Itoa(*s.MaxItems) + ")"
		}
		return out
	case model.KindTuple:
		return "yup.tuple([" + strings.Join(v.visitAll(s.Elements), ", ") + "])"
	case model.KindObject:
		return yupObject(v, s)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		out := fmt.Sprintf(
			"yup.lazy((value) => yup.object(Object.fromEntries(Object.keys(value ?? {}).map((key) => [key, %s]))))",
			v.Visit(p.Schema),
		)

		if p.Pattern != model.PatternStringKey {
			out = fmt.Sprintf(
				"yup.object().test(%s, %s, (value) => Object.keys(value ?? {}).every((key) => new RegExp(%s).test(key))).concat(%s)",
				jsString("keys"), jsString("${path} has an invalid key"), jsString(p.Pattern), out,
			)
		}

		return out
	case model.KindUnion:
		members := v.visitAll(s.AnyOf)
		if len(members) == 1 {
			return members[0]
		}
		return yupTest("union", "["+strings.Join(members, ", ")+"].some((schema) => schema.isValidSync(value))")
	case model.KindIntersect:
		members := v.visitAll(s.AllOf)
		switch len(members) {
		case 0:
			return "yup.mixed()"
		case 1:
			return members[0]
		}

		if allObjects(s.AllOf) {
			return members[0] + ".concat(" + strings.Join(members[1:], ").concat(") + ")"
		}

		return yupTest("intersection", "["+strings.Join(members, ", ")+"].every((schema) => schema.isValidSync(value))")
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func allObjects(schemas []*model.Schema) bool {
	for _, s := range schemas {
		if s.Kind != model.KindObject {
			return false
		}
	}

	return true
}

func yupString(s *model.Schema) string {
	var b strings.Builder

	if s.MinLength != nil {
		fmt.Fprintf(&b, ".min(%d)", *s.MinLength)
	}

	if s.MaxLength != nil {
		fmt.Fprintf(&b, ".max(%d)", *s.MaxLength)
	}

	if s.Pattern != "" {
		fmt.Fprintf(&b, ".matches(new RegExp(%s))", jsString(s.Pattern))
	}

	switch s.Format {
	case "email":
		b.WriteString(".email()")
	case "uuid":
		b.WriteString(".uuid()")
	case "uri", "url":
		b.WriteString(".url()")
	case "date-time":
		b.WriteString(".datetime()")
	}

	return b.String()
}

func yupObject(v *visitor[string], s *model.Schema) string {
	props := make([]option, 0, len(s.Properties))

	for _, p := range s.Properties {
		value := v.Visit(p.Schema)

		if s.IsRequired(p.Name) {
			value += ".defined()"
		} else {
			value += ".optional()"
		}

		props = append(props, option{key: p.Name, value: value})
	}

	out := "yup.object(" + jsObject(props) + ")"

	switch s.Additional {
	case model.AdditionalForbid:
		out += ".noUnknown().strict()"
	case model.AdditionalSchema:
		out += fmt.Sprintf(
			".test(%s, %s, (value) => Object.entries(value ?? {}).every(([key, entry]) => %s.includes(key) || %s.isValidSync(entry)))",
			jsString("additional"), jsString("${path} has an invalid property"), jsValue(propertyNames(s)), v.Visit(s.AdditionalSchema),
		)
	}

	return out
}

func propertyNames(s *model.Schema) []string {
	names := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		names[i] = p.Name
	}

	return names
}

func (yup) reference(v *visitor[string], name string, target *model.Schema, kind refKind) string {
	if kind == refDeclared {
		return name
	}

	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	return "yup.lazy(() => " + name + ")"
}

func (yup) sentinel(reason string) string {
	return "yup.mixed().test(" + jsString("unsupported") + ", " + jsString(reason) + ", () => false)"
}
