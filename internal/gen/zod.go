package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

type zod struct{}

func generateZod(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[string](m, zod{}, opts.Bounds(TargetZod))

	blocks := []string{"import { z } from 'zod'"}

	for _, d := range v.declarations(m) {
		if d.Recursive {
			blocks = append(blocks, fmt.Sprintf("export const %s: z.ZodType<any> = %s", d.Name, d.Body))
			continue
		}

		blocks = append(blocks, fmt.Sprintf("export type %s = z.infer<typeof %s>\nexport const %s = %s", d.Name, d.Name, d.Name, d.Body))
	}

	return v.result(lines(blocks...)), nil
}

// boundMethods names the comparison methods of a validator library in the
// order >=, >, <=, <.
type boundMethods [4]string

func chainBounds(bounds []bound, methods boundMethods, format func(float64) string) string {
	var b strings.Builder

	for _, bd := range bounds {
		fmt.Fprintf(&b, ".%s(%s)", methods[bd.op], format(bd.value))
	}

	return b.String()
}

func bigintNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', 0, 64) + "n"
}

func (zod) render(v *visitor[string], s *model.Schema) string {
	out := zodBase(v, s)

	if s.Description != "" {
		out += ".describe(" + jsString(s.Description) + ")"
	}

	if s.Default != nil {
		out += ".default(" + jsValue(s.Default) + ")"
	}

	return out
}

var zodBounds = boundMethods{"gte", "gt", "lte", "lt"}

func zodBase(v *visitor[string], s *model.Schema) string {
	switch s.Kind {
	case model.KindAny:
		return "z.any()"
	case model.KindUnknown:
		return "z.unknown()"
	case model.KindNever:
		return "z.never()"
	case model.KindVoid:
		return "z.void()"
	case model.KindNull:
		return "z.null()"
	case model.KindUndefined:
		return "z.undefined()"
	case model.KindBoolean:
		return "z.boolean()"
	case model.KindSymbol:
		return "z.symbol()"
	case model.KindDate:
		return "z.date()"
	case model.KindUint8Array:
		return "z.instanceof(Uint8Array)"
	case model.KindNumber, model.KindInteger:
		out := "z.number()"
		if s.Kind == model.KindInteger {
			out += ".int()"
		}
		out += chainBounds(v.numberBounds(s), zodBounds, jsNumber)
		if s.MultipleOf != nil {
			out += ".multipleOf(" + jsNumber(*s.MultipleOf) + ")"
		}
		return out
	case model.KindBigInt:
		out := "z.bigint()" + chainBounds(v.numberBounds(s), zodBounds, bigintNumber)
		if s.MultipleOf != nil {
			out += ".multipleOf(" + bigintNumber(*s.MultipleOf) + ")"
		}
		return out
	case model.KindString:
		return "z.string()" + zodString(s)
	case model.KindTemplateLiteral:
		return "z.string().regex(new RegExp(" + jsString(s.Pattern) + "))"
	case model.KindLiteral:
		return "z.literal(" + jsValue(s.Const) + ")"
	case model.KindArray:
		out := "z.array(" + v.Visit(s.Items) + ")"
		if s.MinItems != nil {
			out += ".min(" + strconv.Itoa(*s.MinItems) + ")"
		}
		if s.MaxItems != nil {
			out += ".max(" + strconv.Itoa(*s.MaxItems) + ")"
		}
		return out
	case model.KindPromise:
		return "z.promise(" + v.Visit(s.Items) + ")"
	case model.KindTuple:
		return "z.tuple([" + strings.Join(v.visitAll(s.Elements), ", ") + "])"
	case model.KindObject:
		return zodObject(v, s)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		key := "z.string()"
		if p.Pattern != model.PatternStringKey {
			key = "z.string().regex(new RegExp(" + jsString(p.Pattern) + "))"
		}

		return "z.record(" + key + ", " + v.Visit(p.Schema) + ")"
	case model.KindUnion:
		members := v.visitAll(s.AnyOf)
		switch len(members) {
		case 0:
			return "z.never()"
		case 1:
			return members[0]
		}
		return "z.union([" + strings.Join(members, ", ") + "])"
	case model.KindIntersect:
		members := v.visitAll(s.AllOf)
		if len(members) == 0 {
			return "z.unknown()"
		}

		out := members[0]
		for _, m := range members[1:] {
			out = "z.intersection(" + out + ", " + m + ")"
		}
		return out
	case model.KindFunction:
		return "z.function().args(" + strings.Join(v.visitAll(s.Parameters), ", ") + ").returns(" + v.Visit(s.Returns) + ")"
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func zodString(s *model.Schema) string {
	var b strings.Builder

	if s.MinLength != nil {
		fmt.Fprintf(&b, ".min(%d)", *s.MinLength)
	}

	if s.MaxLength != nil {
		fmt.Fprintf(&b, ".max(%d)", *s.MaxLength)
	}

	if s.Pattern != "" {
		fmt.Fprintf(&b, ".regex(new RegExp(%s))", jsString(s.Pattern))
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

func zodObject(v *visitor[string], s *model.Schema) string {
	props := make([]option, 0, len(s.Properties))

	for _, p := range s.Properties {
		value := v.Visit(p.Schema)

		if p.Readonly {
			value += ".readonly()"
		}

		if !s.IsRequired(p.Name) {
			value += ".optional()"
		}

		props = append(props, option{key: p.Name, value: value})
	}

	out := "z.object(" + jsObject(props) + ")"

	switch s.Additional {
	case model.AdditionalForbid:
		out += ".strict()"
	case model.AdditionalAllow:
		out += ".passthrough()"
	case model.AdditionalSchema:
		out += ".catchall(" + v.Visit(s.AdditionalSchema) + ")"
	}

	return out
}

func (zod) reference(v *visitor[string], name string, target *model.Schema, kind refKind) string {
	if kind == refDeclared {
		return name
	}

	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	return "z.lazy(() => " + name + ")"
}

func (zod) sentinel(reason string) string {
	return "z.never(/* unsupported: " + comment(reason) + " */)"
}
