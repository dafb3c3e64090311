package gen

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ptr"
	"github.com/valyala/fastjson"
)

// value builds the smallest value each type accepts. A nil value stands for
// undefined and is left out of objects.
type value struct {
	arena *fastjson.Arena
}

func generateValue(m *model.Model, opts Options) (*Result, error) {
	r := &value{arena: &fastjson.Arena{}}
	v := newVisitor[*fastjson.Value](m, r, opts.Bounds(TargetValue))

	blocks := make([]string, 0, len(m.Types))

	for _, d := range v.declarations(m) {
		text := "undefined"
		if d.Body != nil {
			text = string(d.Body.MarshalTo(nil))
		}

		blocks = append(blocks, fmt.Sprintf("export const %s = %s", d.Name, text))
	}

	if len(blocks) == 0 {
		return v.result(""), nil
	}

	return v.result(lines(blocks...)), nil
}

func (r *value) render(v *visitor[*fastjson.Value], s *model.Schema) *fastjson.Value {
	if s.Default != nil {
		return r.from(s.Default)
	}

	a := r.arena

	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return a.NewObject()
	case model.KindNull:
		return a.NewNull()
	case model.KindVoid, model.KindUndefined:
		return nil
	case model.KindBoolean:
		return a.NewFalse()
	case model.KindNumber, model.KindInteger:
		return a.NewNumberFloat64(r.number(v, s))
	case model.KindString:
		if s.Pattern != "" || s.Format != "" {
			return v.unsupportedf("string with a pattern or format needs a default")
		}
		return a.NewString(strings.Repeat(" ", ptr.Or(s.MinLength, 0)))
	case model.KindTemplateLiteral:
		return v.unsupportedf("template literal %s needs a default", s.Pattern)
	case model.KindLiteral:
		return r.from(s.Const)
	case model.KindArray:
		arr := a.NewArray()
		for i := 0; i < ptr.Or(s.MinItems, 0); i++ {
			arr.SetArrayItem(i, r.orNull(v.Visit(s.Items)))
		}
		return arr
	case model.KindTuple:
		arr := a.NewArray()
		for i, e := range s.Elements {
			arr.SetArrayItem(i, r.orNull(v.Visit(e)))
		}
		return arr
	case model.KindObject:
		obj := a.NewObject()
		for _, p := range s.Properties {
			if !s.IsRequired(p.Name) {
				continue
			}
			if pv := v.Visit(p.Schema); pv != nil {
				obj.Set(p.Name, pv)
			}
		}
		return obj
	case model.KindRecord:
		return a.NewObject()
	case model.KindUnion:
		if len(s.AnyOf) == 0 {
			return v.unsupportedf("empty union has no value")
		}
		return v.Visit(s.AnyOf[0])
	case model.KindIntersect:
		return r.merge(v, s.AllOf)
	}

	return v.unsupportedf("%s has no JSON value", s.Kind)
}

func (r *value) number(v *visitor[*fastjson.Value], s *model.Schema) float64 {
	lower := math.Inf(-1)

	for _, b := range v.numberBounds(s) {
		switch b.op {
		case opGreaterEqual:
			lower = math.Max(lower, b.value)
		case opGreater:
			lower = math.Max(lower, b.value+1)
		}
	}

	n := 0.0
	if !math.IsInf(lower, -1) {
		n = lower
	}

	if s.Kind == model.KindInteger {
		n = math.Ceil(n)
	}

	if s.MultipleOf != nil && *s.MultipleOf != 0 {
		n = math.Ceil(n / *s.MultipleOf) * *s.MultipleOf
	}

	return n
}

func (r *value) merge(v *visitor[*fastjson.Value], members []*model.Schema) *fastjson.Value {
	if len(members) == 0 {
		return r.arena.NewObject()
	}

	out := r.arena.NewObject()

	for _, m := range members {
		mv := v.Visit(m)
		if mv == nil {
			continue
		}

		obj, err := mv.Object()
		if err != nil {
			return mv
		}

		obj.Visit(func(key []byte, item *fastjson.Value) {
			out.Set(string(key), item)
		})
	}

	return out
}

func (r *value) orNull(val *fastjson.Value) *fastjson.Value {
	if val == nil {
		return r.arena.NewNull()
	}

	return val
}

// from converts a decoded JSON value into an arena value.
func (r *value) from(x any) *fastjson.Value {
	a := r.arena

	switch t := x.(type) {
	case nil:
		return a.NewNull()
	case bool:
		if t {
			return a.NewTrue()
		}
		return a.NewFalse()
	case float64:
		return a.NewNumberFloat64(t)
	case int:
		return a.NewNumberInt(t)
	case string:
		return a.NewString(t)
	case []any:
		arr := a.NewArray()
		for i, item := range t {
			arr.SetArrayItem(i, r.from(item))
		}
		return arr
	case map[string]any:
		obj := a.NewObject()
		for _, k := range slices.Sorted(maps.Keys(t)) {
			obj.Set(k, r.from(t[k]))
		}
		return obj
	}

	return a.NewString(fmt.Sprint(x))
}

// Values are built, not referenced, so every reference renders its target.
// A cycle has no finite value.
func (r *value) reference(v *visitor[*fastjson.Value], name string, target *model.Schema, kind refKind) *fastjson.Value {
	if kind == refCycle || target == nil {
		return v.unsupportedf("recursive type %s has no finite value", name)
	}

	return v.visitNamed(name, target)
}

func (r *value) sentinel(reason string) *fastjson.Value {
	return r.arena.NewNull()
}
