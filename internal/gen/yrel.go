package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

type yrel struct{}

func generateYrel(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[string](m, yrel{}, opts.Bounds(TargetYrel))

	blocks := []string{"import { y, type InferYrel } from 'yrel'"}

	for _, d := range v.declarations(m) {
		blocks = append(blocks, fmt.Sprintf("export const %s = %s\nexport type %s = InferYrel<typeof %s>", d.Name, d.Body, d.Name, d.Name))
	}

	return v.result(lines(blocks...)), nil
}

var yrelBounds = boundMethods{"gte", "gt", "lte", "lt"}

func (yrel) render(v *visitor[string], s *model.Schema) string {
	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return "y.any()"
	case model.KindNull:
		return "y.literal(null)"
	case model.KindBoolean:
		return "y.boolean()"
	case model.KindNumber, model.KindInteger:
		out := "y.number()"
		if s.Kind == model.KindInteger {
			out += ".integer()"
		}
		out += chainBounds(v.numberBounds(s), yrelBounds, jsNumber)
		if s.MultipleOf != nil {
			v.degradef("multipleOf %s", jsNumber(*s.MultipleOf))
		}
		return out
	case model.KindString:
		out := "y.string()"
		if s.MinLength != nil {
			out += ".min(" + strconv.Itoa(*s.MinLength) + ")"
		}
		if s.MaxLength != nil {
			out += ".max(" + strconv.Itoa(*s.MaxLength) + ")"
		}
		if s.Pattern != "" {
			v.degradef("string pattern %s", s.Pattern)
		}
		return out
	case model.KindLiteral:
		return "y.literal(" + jsValue(s.Const) + ")"
	case model.KindDate:
		return "y.date()"
	case model.KindArray:
		out := "y.array(" + v.Visit(s.Items) + ")"
		if s.MinItems != nil {
			out += ".min(" + strconv.Itoa(*s.MinItems) + ")"
		}
		if s.MaxItems != nil {
			out += ".max(" + strconv.Itoa(*s.MaxItems) + ")"
		}
		return out
	case model.KindTuple:
		return "y.tuple([" + strings.Join(v.visitAll(s.Elements), ", ") + "])"
	case model.KindObject:
		if s.Additional == model.AdditionalSchema {
			return v.unsupportedf("additional property schema")
		}

		props := make([]option, 0, len(s.Properties))
		for _, p := range s.Properties {
			value := v.Visit(p.Schema)
			if !s.IsRequired(p.Name) {
				value += ".optional()"
			}
			props = append(props, option{key: p.Name, value: value})
		}
		return "y.object(" + jsObject(props) + ")"
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}
		if p.Pattern != model.PatternStringKey {
			return v.unsupportedf("record key pattern %s", p.Pattern)
		}
		return "y.record(" + v.Visit(p.Schema) + ")"
	case model.KindUnion:
		members := v.visitAll(s.AnyOf)
		if len(members) == 1 {
			return members[0]
		}
		return "y.union(" + strings.Join(members, ", ") + ")"
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func (yrel) reference(v *visitor[string], name string, target *model.Schema, kind refKind) string {
	if kind == refDeclared {
		return name
	}

	return v.unsupportedf("reference to %s before its declaration", name)
}

// yrel has no validator that rejects everything.
func (yrel) sentinel(reason string) string {
	return "y.any() /* unsupported: " + comment(reason) + " */"
}
