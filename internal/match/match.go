// Package match compares schema models structurally. It backs the round-trip
// check, where a model is rendered, read back and compared to the original.
package match

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ref"
)

// Models checks that b declares the same types as a, in the same order, and
// that each pair is equivalent. Returns a MatchError on the first difference.
func Models(a, b *model.Model) error {
	if !slices.Equal(a.Names(), b.Names()) {
		return matchErrorf(&SchemaPath{}, "declared types %v do not match %v", a.Names(), b.Names())
	}

	for i := range a.Types {
		if err := Schemas(a.Types[i], b.Types[i]); err != nil {
			return err
		}
	}

	return nil
}

// Schemas checks that two nodes describe the same values. Descriptions,
// defaults and other annotations are ignored.
func Schemas(a, b *model.Schema) error {
	path := &SchemaPath{}
	if a != nil && a.ID != "" {
		path.push(a.ID, a)
	}

	return matchSchema(a, b, path)
}

func matchSchema(a, b *model.Schema, path *SchemaPath) error {
	if a == nil || b == nil {
		if a == b {
			return nil
		}
		return matchErrorf(path, "missing schema")
	}

	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return matchErrorf(path, "kind %s does not match %s", a.Kind, b.Kind)
	}

	switch ka {
	case model.KindNumber, model.KindInteger, model.KindBigInt:
		return matchBounds(a, b, path)
	case model.KindString:
		if !sameInt(a.MinLength, b.MinLength) || !sameInt(a.MaxLength, b.MaxLength) {
			return matchErrorf(path, "length bounds differ")
		}
		if a.Pattern != b.Pattern {
			return matchErrorf(path, "pattern %q does not match %q", a.Pattern, b.Pattern)
		}
	case model.KindLiteral:
		if !reflect.DeepEqual(a.Const, b.Const) {
			return matchErrorf(path, "literal %v does not match %v", a.Const, b.Const)
		}
	case model.KindArray, model.KindPromise:
		path.push("[]", a.Items)
		defer path.pop()
		return matchSchema(a.Items, b.Items, path)
	case model.KindTuple:
		return matchList(a.Elements, b.Elements, "[%d]", path)
	case model.KindObject:
		return matchObject(a, b, path)
	case model.KindRecord:
		return matchRecord(a, b, path)
	case model.KindUnion:
		return matchList(a.AnyOf, b.AnyOf, "|%d", path)
	case model.KindIntersect:
		return matchList(a.AllOf, b.AllOf, "&%d", path)
	case model.KindFunction, model.KindConstructor:
		if err := matchList(a.Parameters, b.Parameters, "(%d)", path); err != nil {
			return err
		}
		path.push("=>", a.Returns)
		defer path.pop()
		return matchSchema(a.Returns, b.Returns, path)
	case model.KindRef:
		if ref.Name(a.Ref) != ref.Name(b.Ref) {
			return matchErrorf(path, "reference to %s does not match %s", a.Ref, b.Ref)
		}
	case model.KindUnresolved:
		return matchErrorf(path, "unresolved node %q", a.Source)
	}

	return nil
}

// kindOf folds kinds that validate the same values into one.
func kindOf(s *model.Schema) model.Kind {
	switch s.Kind {
	case model.KindUnknown:
		return model.KindAny
	case model.KindTemplateLiteral:
		return model.KindString
	case model.KindThis:
		return model.KindRef
	}

	return s.Kind
}

func matchBounds(a, b *model.Schema, path *SchemaPath) error {
	bounds := []struct {
		name string
		a, b *float64
	}{
		{"minimum", a.Minimum, b.Minimum},
		{"maximum", a.Maximum, b.Maximum},
		{"exclusiveMinimum", a.ExclusiveMinimum, b.ExclusiveMinimum},
		{"exclusiveMaximum", a.ExclusiveMaximum, b.ExclusiveMaximum},
		{"multipleOf", a.MultipleOf, b.MultipleOf},
	}

	for _, bound := range bounds {
		if !sameFloat(bound.a, bound.b) {
			return matchErrorf(path, "%s %s does not match %s", bound.name, formatBound(bound.a), formatBound(bound.b))
		}
	}

	return nil
}

func matchList(a, b []*model.Schema, format string, path *SchemaPath) error {
	if len(a) != len(b) {
		return matchErrorf(path, "%d members do not match %d", len(a), len(b))
	}

	for i := range a {
		path.push(fmt.Sprintf(format, i), a[i])
		if err := matchSchema(a[i], b[i], path); err != nil {
			return err
		}
		path.pop()
	}

	return nil
}

func matchObject(a, b *model.Schema, path *SchemaPath) error {
	if len(a.Properties) != len(b.Properties) {
		return matchErrorf(path, "%d properties do not match %d", len(a.Properties), len(b.Properties))
	}

	for _, p := range a.Properties {
		other, ok := b.Property(p.Name)
		if !ok {
			return matchErrorf(path, "property %s is missing", p.Name)
		}

		if a.IsRequired(p.Name) != b.IsRequired(p.Name) {
			return matchErrorf(path, "property %s differs in optionality", p.Name)
		}

		path.push(p.Name, p.Schema)
		if err := matchSchema(p.Schema, other, path); err != nil {
			return err
		}
		path.pop()
	}

	if additional(a) != additional(b) {
		return matchErrorf(path, "additional properties differ")
	}

	if a.Additional == model.AdditionalSchema {
		path.push("[additional]", a.AdditionalSchema)
		defer path.pop()
		return matchSchema(a.AdditionalSchema, b.AdditionalSchema, path)
	}

	return nil
}

func additional(s *model.Schema) model.AdditionalPolicy {
	if s.Additional == model.AdditionalUnset {
		return model.AdditionalAllow
	}

	return s.Additional
}

func matchRecord(a, b *model.Schema, path *SchemaPath) error {
	if len(a.PatternProperties) != len(b.PatternProperties) {
		return matchErrorf(path, "%d key patterns do not match %d", len(a.PatternProperties), len(b.PatternProperties))
	}

	for i, p := range a.PatternProperties {
		if p.Pattern != b.PatternProperties[i].Pattern {
			return matchErrorf(path, "key pattern %q does not match %q", p.Pattern, b.PatternProperties[i].Pattern)
		}

		path.push("["+p.Pattern+"]", p.Schema)
		if err := matchSchema(p.Schema, b.PatternProperties[i].Schema, path); err != nil {
			return err
		}
		path.pop()
	}

	return nil
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func formatBound(v *float64) string {
	if v == nil {
		return "unset"
	}

	return fmt.Sprint(*v)
}
