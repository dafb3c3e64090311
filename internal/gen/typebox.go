package gen

import (
	"fmt"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

type typeBox struct{}

func generateTypeBox(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[string](m, typeBox{}, opts.Bounds(TargetTypeBox))

	blocks := []string{"import { Type, Static } from '@sinclair/typebox'"}

	for _, d := range v.declarations(m) {
		blocks = append(blocks, fmt.Sprintf(
			"export type %s = Static<typeof %s>\nexport const %s = %s",
			d.Name, d.Name, d.Name, d.Body,
		))
	}

	return v.result(lines(blocks...)), nil
}

func (typeBox) render(v *visitor[string], s *model.Schema) string {
	opts := schemaOptions(s, false)

	switch s.Kind {
	case model.KindAny:
		return withOptions("Type.Any", nil, opts)
	case model.KindUnknown:
		return withOptions("Type.Unknown", nil, opts)
	case model.KindNever:
		return withOptions("Type.Never", nil, opts)
	case model.KindVoid:
		return withOptions("Type.Void", nil, opts)
	case model.KindNull:
		return withOptions("Type.Null", nil, opts)
	case model.KindUndefined:
		return withOptions("Type.Undefined", nil, opts)
	case model.KindBoolean:
		return withOptions("Type.Boolean", nil, opts)
	case model.KindNumber:
		return withOptions("Type.Number", nil, opts)
	case model.KindInteger:
		return withOptions("Type.Integer", nil, opts)
	case model.KindBigInt:
		return withOptions("Type.BigInt", nil, opts)
	case model.KindString:
		return withOptions("Type.String", nil, opts)
	case model.KindSymbol:
		return withOptions("Type.Symbol", nil, opts)
	case model.KindDate:
		return withOptions("Type.Date", nil, opts)
	case model.KindUint8Array:
		return withOptions("Type.Uint8Array", nil, opts)
	case model.KindLiteral:
		return withOptions("Type.Literal", []string{jsValue(s.Const)}, opts)
	case model.KindTemplateLiteral:
		opts = append(opts, option{key: "pattern", value: jsString(s.Pattern)})
		return withOptions("Type.String", nil, opts)
	case model.KindArray:
		return withOptions("Type.Array", []string{v.Visit(s.Items)}, opts)
	case model.KindPromise:
		return withOptions("Type.Promise", []string{v.Visit(s.Items)}, opts)
	case model.KindTuple:
		return withOptions("Type.Tuple", []string{"[" + strings.Join(v.visitAll(s.Elements), ", ") + "]"}, opts)
	case model.KindObject:
		return typeBoxObject(v, s, opts)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		key := "Type.String()"
		switch recordKey(p.Pattern) {
		case "number":
			key = "Type.Number()"
		case "":
			key = withOptions("Type.String", nil, []option{{key: "pattern", value: jsString(p.Pattern)}})
		}

		return withOptions("Type.Record", []string{key, v.Visit(p.Schema)}, opts)
	case model.KindUnion:
		return withOptions("Type.Union", []string{"[" + strings.Join(v.visitAll(s.AnyOf), ", ") + "]"}, opts)
	case model.KindIntersect:
		return withOptions("Type.Intersect", []string{"[" + strings.Join(v.visitAll(s.AllOf), ", ") + "]"}, opts)
	case model.KindFunction:
		return withOptions("Type.Function", []string{"[" + strings.Join(v.visitAll(s.Parameters), ", ") + "]", v.Visit(s.Returns)}, opts)
	case model.KindConstructor:
		return withOptions("Type.Constructor", []string{"[" + strings.Join(v.visitAll(s.Parameters), ", ") + "]", v.Visit(s.Returns)}, opts)
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func typeBoxObject(v *visitor[string], s *model.Schema, opts []option) string {
	props := make([]option, 0, len(s.Properties))

	for _, p := range s.Properties {
		value := v.Visit(p.Schema)

		if p.Readonly {
			value = "Type.Readonly(" + value + ")"
		}

		if !s.IsRequired(p.Name) {
			value = "Type.Optional(" + value + ")"
		}

		props = append(props, option{key: p.Name, value: value})
	}

	switch s.Additional {
	case model.AdditionalForbid:
		opts = append(opts, option{key: "additionalProperties", value: "false"})
	case model.AdditionalSchema:
		opts = append(opts, option{key: "additionalProperties", value: v.Visit(s.AdditionalSchema)})
	}

	return withOptions("Type.Object", []string{jsObject(props)}, opts)
}

// Inside Type.Recursive the parameter shadows the declaration, so a cycle
// renders as the bare name.
func (typeBox) reference(v *visitor[string], name string, target *model.Schema, kind refKind) string {
	if kind == refForward {
		return "Type.Ref(" + jsString(name) + ")"
	}

	return name
}

func (typeBox) recursive(name string, body string) string {
	return fmt.Sprintf("Type.Recursive((%s) => %s, { $id: %s })", name, body, jsString(name))
}

func (typeBox) sentinel(reason string) string {
	return "Type.Never(/* unsupported: " + comment(reason) + " */)"
}
