package gen

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ptr"
)

// openAPI renders an OpenAPI 3.0 document whose components hold one schema
// per declaration. 3.0 has no null type, so null members of a union become
// the nullable flag.
type openAPI struct{}

const openAPIVersion = "3.0.3"

func generateOpenAPI(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[*openapi3.SchemaRef](m, openAPI{}, opts.Bounds(TargetOpenAPI))

	doc := &openapi3.T{
		OpenAPI: openAPIVersion,
		Info:    &openapi3.Info{Title: "typeshift", Version: "1.0.0"},
		Paths:   openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(m.Types)),
		},
	}

	for _, d := range v.declarations(m) {
		doc.Components.Schemas[d.Name] = d.Body
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode openapi document")
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, errors.Wrap(err, "failed to indent openapi document")
	}

	out.WriteByte('\n')

	return v.result(out.String()), nil
}

func (openAPI) render(v *visitor[*openapi3.SchemaRef], s *model.Schema) *openapi3.SchemaRef {
	out := openAPIBase(v, s)
	if out.Value == nil {
		return out
	}

	if s.Description != "" {
		out.Value.Description = s.Description
	}

	if s.Default != nil {
		out.Value.Default = s.Default
	}

	if s.Readonly {
		out.Value.ReadOnly = true
	}

	return out
}

func schemaRef(s *openapi3.Schema) *openapi3.SchemaRef {
	return s.NewRef()
}

func openAPIBase(v *visitor[*openapi3.SchemaRef], s *model.Schema) *openapi3.SchemaRef {
	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return schemaRef(&openapi3.Schema{})
	case model.KindNever:
		return schemaRef(&openapi3.Schema{Not: schemaRef(&openapi3.Schema{})})
	case model.KindNull:
		return schemaRef(&openapi3.Schema{Nullable: true, Enum: []any{nil}})
	case model.KindBoolean:
		return schemaRef(&openapi3.Schema{Type: openapi3.TypeBoolean})
	case model.KindNumber, model.KindInteger, model.KindBigInt:
		out := &openapi3.Schema{Type: openapi3.TypeNumber}
		switch s.Kind {
		case model.KindInteger:
			out.Type = openapi3.TypeInteger
		case model.KindBigInt:
			out.Type, out.Format = openapi3.TypeInteger, "int64"
		}
		openAPIBounds(s, out)
		return schemaRef(out)
	case model.KindString, model.KindTemplateLiteral:
		out := &openapi3.Schema{Type: openapi3.TypeString, Pattern: s.Pattern, Format: s.Format}
		out.MinLength = uint64(ptr.Or(s.MinLength, 0))
		out.MaxLength = length(s.MaxLength)
		return schemaRef(out)
	case model.KindDate:
		return schemaRef(&openapi3.Schema{Type: openapi3.TypeString, Format: "date-time"})
	case model.KindUint8Array:
		return schemaRef(&openapi3.Schema{Type: openapi3.TypeString, Format: "byte"})
	case model.KindLiteral:
		out := &openapi3.Schema{Enum: []any{s.Const}}
		switch s.Const.(type) {
		case string:
			out.Type = openapi3.TypeString
		case float64:
			out.Type = openapi3.TypeNumber
		case bool:
			out.Type = openapi3.TypeBoolean
		default:
			out.Nullable = true
		}
		return schemaRef(out)
	case model.KindArray:
		out := &openapi3.Schema{Type: openapi3.TypeArray, Items: v.Visit(s.Items), UniqueItems: s.UniqueItems}
		out.MinItems = uint64(ptr.Or(s.MinItems, 0))
		out.MaxItems = length(s.MaxItems)
		return schemaRef(out)
	case model.KindTuple:
		v.degradef("tuple element order is not expressible in OpenAPI 3.0")
		n := uint64(len(s.Elements))
		items := schemaRef(&openapi3.Schema{AnyOf: v.visitAll(s.Elements)})
		return schemaRef(&openapi3.Schema{Type: openapi3.TypeArray, Items: items, MinItems: n, MaxItems: &n})
	case model.KindObject:
		return openAPIObject(v, s)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}
		if recordKey(p.Pattern) == "" {
			return v.unsupportedf("record key pattern %s", p.Pattern)
		}
		return schemaRef(&openapi3.Schema{
			Type:                 openapi3.TypeObject,
			AdditionalProperties: openapi3.AdditionalProperties{Schema: v.Visit(p.Schema)},
		})
	case model.KindUnion:
		return openAPIUnion(v, s)
	case model.KindIntersect:
		return schemaRef(&openapi3.Schema{AllOf: v.visitAll(s.AllOf)})
	}

	return v.unsupportedf("kind %s", s.Kind)
}

// OpenAPI 3.0 marks exclusive bounds with a flag on minimum and maximum.
func openAPIBounds(s *model.Schema, out *openapi3.Schema) {
	out.Min, out.Max, out.MultipleOf = s.Minimum, s.Maximum, s.MultipleOf

	if s.ExclusiveMinimum != nil {
		out.Min, out.ExclusiveMin = s.ExclusiveMinimum, true
	}

	if s.ExclusiveMaximum != nil {
		out.Max, out.ExclusiveMax = s.ExclusiveMaximum, true
	}
}

func openAPIUnion(v *visitor[*openapi3.SchemaRef], s *model.Schema) *openapi3.SchemaRef {
	members := make([]*model.Schema, 0, len(s.AnyOf))
	nullable := false

	for _, m := range s.AnyOf {
		if m != nil && (m.Kind == model.KindNull || (m.Kind == model.KindLiteral && m.Const == nil)) {
			nullable = true
			continue
		}
		members = append(members, m)
	}

	if len(members) == 1 && nullable {
		out := v.Visit(members[0])
		if out.Value == nil || out.Ref != "" {
			return schemaRef(&openapi3.Schema{Nullable: true, AllOf: openapi3.SchemaRefs{out}})
		}
		out.Value.Nullable = true
		return out
	}

	return schemaRef(&openapi3.Schema{Nullable: nullable, AnyOf: v.visitAll(members)})
}

func openAPIObject(v *visitor[*openapi3.SchemaRef], s *model.Schema) *openapi3.SchemaRef {
	out := &openapi3.Schema{
		Type:       openapi3.TypeObject,
		Properties: make(openapi3.Schemas, len(s.Properties)),
	}

	for _, p := range s.Properties {
		prop := v.Visit(p.Schema)
		if p.Readonly && prop.Value != nil && prop.Ref == "" {
			prop.Value.ReadOnly = true
		}

		out.Properties[p.Name] = prop

		if s.IsRequired(p.Name) {
			out.Required = append(out.Required, p.Name)
		}
	}

	switch s.Additional {
	case model.AdditionalForbid:
		out.AdditionalProperties = openapi3.AdditionalProperties{Has: ptr.V(false)}
	case model.AdditionalAllow:
		out.AdditionalProperties = openapi3.AdditionalProperties{Has: ptr.V(true)}
	case model.AdditionalSchema:
		out.AdditionalProperties = openapi3.AdditionalProperties{Schema: v.Visit(s.AdditionalSchema)}
	}

	return schemaRef(out)
}

func (openAPI) reference(v *visitor[*openapi3.SchemaRef], name string, target *model.Schema, kind refKind) *openapi3.SchemaRef {
	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

func (openAPI) sentinel(reason string) *openapi3.SchemaRef {
	return schemaRef(&openapi3.Schema{
		Not:        schemaRef(&openapi3.Schema{}),
		Extensions: map[string]any{"x-unsupported": reason},
	})
}
