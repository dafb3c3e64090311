package gen

import (
	"bytes"
	stdjson "encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
	"github.com/koskimas/typeshift/internal/model"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// jsonSchema renders the model as JSON Schema 2020-12. The keywords carry
// the model's raw values; no bound policy applies to a declarative target.
type jsonSchema struct{}

type schemaDocument struct {
	Schema string                                               `json:"$schema"`
	Defs   *orderedmap.OrderedMap[string, *jsonschema.Schema] `json:"$defs"`
}

func generateJSONSchema(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[*jsonschema.Schema](m, jsonSchema{}, opts.Bounds(TargetJSONSchema))

	doc := schemaDocument{
		Schema: jsonschema.Version,
		Defs:   orderedmap.New[string, *jsonschema.Schema](),
	}

	for _, d := range v.declarations(m) {
		doc.Defs.Set(d.Name, d.Body)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode schema document")
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, errors.Wrap(err, "failed to indent schema document")
	}

	out.WriteByte('\n')

	return v.result(out.String()), nil
}

func number(f *float64) stdjson.Number {
	if f == nil {
		return ""
	}

	return stdjson.Number(jsNumber(*f))
}

func length(n *int) *uint64 {
	if n == nil {
		return nil
	}

	u := uint64(max(*n, 0))
	return &u
}

func (jsonSchema) render(v *visitor[*jsonschema.Schema], s *model.Schema) *jsonschema.Schema {
	out := jsonSchemaBase(v, s)

	if s.Description != "" {
		out.Description = s.Description
	}

	if s.Default != nil {
		out.Default = s.Default
	}

	if s.Readonly {
		out.ReadOnly = true
	}

	return out
}

func jsonSchemaBase(v *visitor[*jsonschema.Schema], s *model.Schema) *jsonschema.Schema {
	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return &jsonschema.Schema{}
	case model.KindNever:
		return &jsonschema.Schema{Not: &jsonschema.Schema{}}
	case model.KindNull:
		return &jsonschema.Schema{Type: "null"}
	case model.KindUndefined:
		return nonStandard(v, "undefined")
	case model.KindVoid:
		return nonStandard(v, "void")
	case model.KindBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case model.KindSymbol:
		return nonStandard(v, "symbol")
	case model.KindDate:
		return nonStandard(v, "Date")
	case model.KindUint8Array:
		return nonStandard(v, "Uint8Array")
	case model.KindNumber, model.KindInteger, model.KindBigInt:
		out := &jsonschema.Schema{Type: "number"}
		switch s.Kind {
		case model.KindInteger:
			out.Type = "integer"
		case model.KindBigInt:
			out = nonStandard(v, "bigint")
		}

		out.Minimum = number(s.Minimum)
		out.Maximum = number(s.Maximum)
		out.ExclusiveMinimum = number(s.ExclusiveMinimum)
		out.ExclusiveMaximum = number(s.ExclusiveMaximum)
		out.MultipleOf = number(s.MultipleOf)
		return out
	case model.KindString, model.KindTemplateLiteral:
		return &jsonschema.Schema{
			Type:      "string",
			MinLength: length(s.MinLength),
			MaxLength: length(s.MaxLength),
			Pattern:   s.Pattern,
			Format:    s.Format,
		}
	case model.KindLiteral:
		if s.Const == nil {
			return &jsonschema.Schema{Type: "null"}
		}
		return &jsonschema.Schema{Const: s.Const}
	case model.KindArray:
		return &jsonschema.Schema{
			Type:        "array",
			Items:       v.Visit(s.Items),
			MinItems:    length(s.MinItems),
			MaxItems:    length(s.MaxItems),
			UniqueItems: s.UniqueItems,
		}
	case model.KindTuple:
		return &jsonschema.Schema{
			Type:        "array",
			PrefixItems: v.visitAll(s.Elements),
			MinItems:    length(s.MinItems),
			MaxItems:    length(s.MaxItems),
		}
	case model.KindObject:
		return jsonSchemaObject(v, s)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		return &jsonschema.Schema{
			Type:              "object",
			PatternProperties: map[string]*jsonschema.Schema{p.Pattern: v.Visit(p.Schema)},
		}
	case model.KindUnion:
		return &jsonschema.Schema{AnyOf: v.visitAll(s.AnyOf)}
	case model.KindIntersect:
		if len(s.AllOf) == 0 {
			return &jsonschema.Schema{}
		}
		return &jsonschema.Schema{AllOf: v.visitAll(s.AllOf)}
	case model.KindFunction, model.KindConstructor:
		t := "function"
		if s.Kind == model.KindConstructor {
			t = "Constructor"
		}

		out := nonStandard(v, t)
		out.Extras = map[string]any{
			"parameters": v.visitAll(s.Parameters),
			"returns":    v.Visit(s.Returns),
		}
		return out
	case model.KindPromise:
		out := nonStandard(v, "Promise")
		out.Extras = map[string]any{"item": v.Visit(s.Items)}
		return out
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func jsonSchemaObject(v *visitor[*jsonschema.Schema], s *model.Schema) *jsonschema.Schema {
	out := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}

	for _, p := range s.Properties {
		prop := v.Visit(p.Schema)
		if p.Readonly {
			prop.ReadOnly = true
		}

		out.Properties.Set(p.Name, prop)

		if s.IsRequired(p.Name) {
			out.Required = append(out.Required, p.Name)
		}
	}

	switch s.Additional {
	case model.AdditionalForbid:
		out.AdditionalProperties = jsonschema.FalseSchema
	case model.AdditionalAllow:
		out.AdditionalProperties = jsonschema.TrueSchema
	case model.AdditionalSchema:
		out.AdditionalProperties = v.Visit(s.AdditionalSchema)
	}

	return out
}

// nonStandard renders a kind JSON Schema has no type for. The made up type
// name is kept so that the document reads back to the same kind.
func nonStandard(v *visitor[*jsonschema.Schema], typ string) *jsonschema.Schema {
	v.degradef("%s is not a JSON Schema type", typ)
	return &jsonschema.Schema{Type: typ, Comments: "non-standard type " + typ}
}

func (jsonSchema) reference(v *visitor[*jsonschema.Schema], name string, target *model.Schema, kind refKind) *jsonschema.Schema {
	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	return &jsonschema.Schema{Ref: "#/$defs/" + name}
}

func (jsonSchema) sentinel(reason string) *jsonschema.Schema {
	return &jsonschema.Schema{Not: &jsonschema.Schema{}, Comments: "unsupported: " + reason}
}
