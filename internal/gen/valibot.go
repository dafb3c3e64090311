package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

type valibot struct{}

func generateValibot(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[string](m, valibot{}, opts.Bounds(TargetValibot))

	blocks := []string{"import * as v from 'valibot'"}

	for _, d := range v.declarations(m) {
		if d.Recursive {
			blocks = append(blocks, fmt.Sprintf("export const %s: v.GenericSchema<any> = %s", d.Name, d.Body))
			continue
		}

		blocks = append(blocks, fmt.Sprintf("export type %s = v.InferOutput<typeof %s>\nexport const %s = %s", d.Name, d.Name, d.Name, d.Body))
	}

	return v.result(lines(blocks...)), nil
}

var valibotBounds = [4]string{"v.minValue", "v.gtValue", "v.maxValue", "v.ltValue"}

func pipe(schema string, actions []string) string {
	if len(actions) == 0 {
		return schema
	}

	return "v.pipe(" + schema + ", " + strings.Join(actions, ", ") + ")"
}

func valibotNumber(bounds []bound, multipleOf *float64, format func(float64) string) []string {
	actions := make([]string, 0, len(bounds)+1)

	for _, b := range bounds {
		actions = append(actions, valibotBounds[b.op]+"("+format(b.value)+")")
	}

	if multipleOf != nil {
		actions = append(actions, "v.multipleOf("+format(*multipleOf)+")")
	}

	return actions
}

func (valibot) render(v *visitor[string], s *model.Schema) string {
	schema, actions := valibotBase(v, s)

	if s.Description != "" {
		actions = append(actions, "v.description("+jsString(s.Description)+")")
	}

	return pipe(schema, actions)
}

func valibotBase(v *visitor[string], s *model.Schema) (string, []string) {
	switch s.Kind {
	case model.KindAny:
		return "v.any()", nil
	case model.KindUnknown:
		return "v.unknown()", nil
	case model.KindNever:
		return "v.never()", nil
	case model.KindVoid:
		return "v.void()", nil
	case model.KindNull:
		return "v.null()", nil
	case model.KindUndefined:
		return "v.undefined()", nil
	case model.KindBoolean:
		return "v.boolean()", nil
	case model.KindSymbol:
		return "v.symbol()", nil
	case model.KindDate:
		return "v.date()", nil
	case model.KindUint8Array:
		return "v.instance(Uint8Array)", nil
	case model.KindFunction:
		return "v.function()", nil
	case model.KindConstructor:
		return "v.custom((value) => typeof value === 'function')", nil
	case model.KindPromise:
		return "v.promise()", nil
	case model.KindNumber:
		return "v.number()", valibotNumber(v.numberBounds(s), s.MultipleOf, jsNumber)
	case model.KindInteger:
		return "v.number()", append([]string{"v.integer()"}, valibotNumber(v.numberBounds(s), s.MultipleOf, jsNumber)...)
	case model.KindBigInt:
		return "v.bigint()", valibotNumber(v.numberBounds(s), nil, bigintNumber)
	case model.KindString:
		return "v.string()", valibotString(s)
	case model.KindTemplateLiteral:
		return "v.string()", []string{"v.regex(new RegExp(" + jsString(s.Pattern) + "))"}
	case model.KindLiteral:
		if s.Const == nil {
			return "v.null()", nil
		}
		return "v.literal(" + jsValue(s.Const) + ")", nil
	case model.KindArray:
		actions := make([]string, 0, 2)
		if s.MinItems != nil {
			actions = append(actions, "v.minLength("+strconv.Itoa(*s.MinItems)+")")
		}
		if s.MaxItems != nil {
			actions = append(actions, "v.maxLength("+strconv.Itoa(*s.MaxItems)+")")
		}
		return "v.array(" + v.Visit(s.Items) + ")", actions
	case model.KindTuple:
		return "v.tuple([" + strings.Join(v.visitAll(s.Elements), ", ") + "])", nil
	case model.KindObject:
		return valibotObject(v, s), nil
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties)), nil
		}

		key := "v.string()"
		if p.Pattern != model.PatternStringKey {
			key = pipe("v.string()", []string{"v.regex(new RegExp(" + jsString(p.Pattern) + "))"})
		}

		return "v.record(" + key + ", " + v.Visit(p.Schema) + ")", nil
	case model.KindUnion:
		members := v.visitAll(s.AnyOf)
		if len(members) == 1 {
			return members[0], nil
		}
		return "v.union([" + strings.Join(members, ", ") + "])", nil
	case model.KindIntersect:
		members := v.visitAll(s.AllOf)
		switch len(members) {
		case 0:
			return "v.unknown()", nil
		case 1:
			return members[0], nil
		}
		return "v.intersect([" + strings.Join(members, ", ") + "])", nil
	}

	return v.unsupportedf("kind %s", s.Kind), nil
}

func valibotString(s *model.Schema) []string {
	actions := make([]string, 0)

	if s.MinLength != nil {
		actions = append(actions, "v.minLength("+strconv.Itoa(*s.MinLength)+")")
	}

	if s.MaxLength != nil {
		actions = append(actions, "v.maxLength("+strconv.Itoa(*s.MaxLength)+")")
	}

	if s.Pattern != "" {
		actions = append(actions, "v.regex(new RegExp("+jsString(s.Pattern)+"))")
	}

	switch s.Format {
	case "email":
		actions = append(actions, "v.email()")
	case "uuid":
		actions = append(actions, "v.uuid()")
	case "uri", "url":
		actions = append(actions, "v.url()")
	case "date-time":
		actions = append(actions, "v.isoDateTime()")
	}

	return actions
}

func valibotObject(v *visitor[string], s *model.Schema) string {
	props := make([]option, 0, len(s.Properties))

	for _, p := range s.Properties {
		value := v.Visit(p.Schema)

		if p.Readonly {
			value = pipe(value, []string{"v.readonly()"})
		}

		if !s.IsRequired(p.Name) {
			if p.Schema != nil && p.Schema.Default != nil {
				value = "v.optional(" + value + ", " + jsValue(p.Schema.Default) + ")"
			} else {
				value = "v.optional(" + value + ")"
			}
		}

		props = append(props, option{key: p.Name, value: value})
	}

	entries := jsObject(props)

	switch s.Additional {
	case model.AdditionalForbid:
		return "v.strictObject(" + entries + ")"
	case model.AdditionalAllow:
		return "v.looseObject(" + entries + ")"
	case model.AdditionalSchema:
		return "v.objectWithRest(" + entries + ", " + v.Visit(s.AdditionalSchema) + ")"
	}

	return "v.object(" + entries + ")"
}

func (valibot) reference(v *visitor[string], name string, target *model.Schema, kind refKind) string {
	if kind == refDeclared {
		return name
	}

	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	return "v.lazy(() => " + name + ")"
}

func (valibot) sentinel(reason string) string {
	return "v.never(/* unsupported: " + comment(reason) + " */)"
}
