// Package jsonschema reads JSON Schema and OpenAPI documents back into a
// schema model. Documents are decoded as YAML, which covers JSON too.
package jsonschema

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ref"
	"gopkg.in/yaml.v3"
)

type File struct {
	Schema      `yaml:",inline"`
	Defs        Properties `yaml:"$defs"`
	Definitions Properties `yaml:"definitions"`
	Components  Components `yaml:"components"`
}

type Components struct {
	Schemas Properties `yaml:"schemas"`
}

type Schema struct {
	ID          string    `yaml:"$id"`
	Ref         *string   `yaml:"$ref"`
	Type        TypeList  `yaml:"type"`
	Description string    `yaml:"description"`
	Default     any       `yaml:"default"`
	ReadOnly    bool      `yaml:"readOnly"`
	Nullable    bool      `yaml:"nullable"`
	Const       yaml.Node `yaml:"const"`
	Enum        []any     `yaml:"enum"`

	Minimum          *float64   `yaml:"minimum"`
	Maximum          *float64   `yaml:"maximum"`
	ExclusiveMinimum Bound      `yaml:"exclusiveMinimum"`
	ExclusiveMaximum Bound      `yaml:"exclusiveMaximum"`
	MultipleOf       *float64   `yaml:"multipleOf"`
	MinLength        *int       `yaml:"minLength"`
	MaxLength        *int       `yaml:"maxLength"`
	Pattern          string     `yaml:"pattern"`
	Format           string     `yaml:"format"`
	Items            Items      `yaml:"items"`
	PrefixItems      []Schema   `yaml:"prefixItems"`
	MinItems         *int       `yaml:"minItems"`
	MaxItems         *int       `yaml:"maxItems"`
	UniqueItems      bool       `yaml:"uniqueItems"`
	Properties       Properties `yaml:"properties"`
	Required         []string   `yaml:"required"`
	Additional       Additional `yaml:"additionalProperties"`
	Patterns         Properties `yaml:"patternProperties"`
	AnyOf            []Schema   `yaml:"anyOf"`
	OneOf            []Schema   `yaml:"oneOf"`
	AllOf            []Schema   `yaml:"allOf"`
	Not              *Schema    `yaml:"not"`
	Parameters       []Schema   `yaml:"parameters"`
	Returns          *Schema    `yaml:"returns"`
	Item             *Schema    `yaml:"item"`
}

// ReadFile reads the document at filePath.
func ReadFile(filePath string) (*model.Model, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, `failed to read schema file "%s"`, filePath)
	}

	m, err := Read(data)
	if err != nil {
		return nil, errors.Wrapf(err, `failed to read schema file "%s"`, filePath)
	}

	return m, nil
}

// Read converts the named schemas of a document into a model. Named schemas
// come from $defs, definitions or components.schemas, in document order; a
// root schema with an $id is appended last.
func Read(data []byte) (*model.Model, error) {
	// JSON strings cannot hold raw tabs, so in a JSON document every tab is
	// layout, which YAML does not accept as indentation.
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		data = bytes.ReplaceAll(data, []byte("\t"), []byte(" "))
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal schema document")
	}

	m := &model.Model{Types: make([]*model.Schema, 0)}

	for _, group := range []Properties{file.Defs, file.Definitions, file.Components.Schemas} {
		for _, p := range group {
			if _, exists := m.Lookup(p.Name); exists {
				return nil, errors.Newf(`schema "%s" is defined more than once`, p.Name)
			}

			m.Types = append(m.Types, resolveModel(p.Schema).Named(p.Name))
		}
	}

	if file.ID != "" {
		if _, exists := m.Lookup(file.ID); !exists {
			m.Types = append(m.Types, resolveModel(file.Schema).Named(file.ID))
		}
	}

	if len(m.Types) == 0 {
		return nil, errors.WithHint(
			errors.New("schema document has no named schemas"),
			"put schemas under $defs or components.schemas, or give the root schema an $id",
		)
	}

	return m, nil
}

func resolveModel(schema Schema) *model.Schema {
	mod := resolveKind(schema)

	if schema.Nullable && mod.Kind != model.KindNull {
		mod = model.Union(mod, model.Null())
	}

	if schema.ID != "" && mod.ID == "" {
		mod.ID = schema.ID
	}

	if schema.Description != "" {
		mod.Description = schema.Description
	}

	if schema.Default != nil {
		mod.Default = normalizeValue(schema.Default)
	}

	mod.Readonly = mod.Readonly || schema.ReadOnly

	return mod
}

func resolveKind(schema Schema) *model.Schema {
	switch {
	case schema.Ref != nil:
		return model.Ref(ref.Name(*schema.Ref))
	case !schema.Const.IsZero():
		var v any
		if err := schema.Const.Decode(&v); err != nil {
			return model.Unresolved("const")
		}
		return model.Literal(normalizeValue(v))
	case len(schema.Enum) > 0:
		members := make([]*model.Schema, 0, len(schema.Enum))
		for _, v := range schema.Enum {
			members = append(members, model.Literal(normalizeValue(v)))
		}
		if len(members) == 1 {
			return members[0]
		}
		return model.Union(members...)
	case len(schema.AnyOf) > 0:
		return model.Union(resolveAll(schema.AnyOf)...)
	case len(schema.OneOf) > 0:
		return model.Union(resolveAll(schema.OneOf)...)
	case len(schema.AllOf) > 0:
		return model.Intersect(resolveAll(schema.AllOf)...)
	case schema.Not != nil && isEmpty(*schema.Not):
		return model.Never()
	}

	switch len(schema.Type) {
	case 0:
		if len(schema.Properties) > 0 {
			return resolveObject(schema)
		}
		return model.Any()
	case 1:
		return resolveType(schema, schema.Type[0])
	}

	members := make([]*model.Schema, 0, len(schema.Type))
	for _, t := range schema.Type {
		members = append(members, resolveType(schema, t))
	}

	return model.Union(members...)
}

func resolveType(schema Schema, t string) *model.Schema {
	switch t {
	case "string":
		s := model.String()
		s.MinLength = schema.MinLength
		s.MaxLength = schema.MaxLength
		s.Pattern = schema.Pattern
		s.Format = schema.Format
		return s
	case "number", "integer":
		s := model.Number()
		if t == "integer" {
			s = model.Integer()
		}
		resolveBounds(schema, s)
		return s
	case "bigint":
		s := model.BigInt()
		resolveBounds(schema, s)
		return s
	case "boolean":
		return model.Boolean()
	case "null":
		return model.Null()
	case "undefined":
		return model.Undefined()
	case "void":
		return model.Void()
	case "symbol":
		return model.Symbol()
	case "Date":
		return model.Date()
	case "Uint8Array":
		return model.Uint8Array()
	case "array":
		return resolveArray(schema)
	case "object":
		return resolveObject(schema)
	case "function":
		return model.Function(resolveAll(schema.Parameters), resolveOptional(schema.Returns))
	case "Constructor":
		return model.Constructor(resolveAll(schema.Parameters), resolveOptional(schema.Returns))
	case "Promise":
		return model.Promise(resolveOptional(schema.Item))
	}

	return model.Unresolved(t)
}

func resolveBounds(schema Schema, s *model.Schema) {
	s.Minimum = schema.Minimum
	s.Maximum = schema.Maximum
	s.MultipleOf = schema.MultipleOf

	// OpenAPI 3.0 marks the inclusive bound as exclusive with a flag.
	if schema.ExclusiveMinimum.Flag && s.Minimum != nil {
		s.ExclusiveMinimum, s.Minimum = s.Minimum, nil
	} else {
		s.ExclusiveMinimum = schema.ExclusiveMinimum.Value
	}

	if schema.ExclusiveMaximum.Flag && s.Maximum != nil {
		s.ExclusiveMaximum, s.Maximum = s.Maximum, nil
	} else {
		s.ExclusiveMaximum = schema.ExclusiveMaximum.Value
	}
}

func resolveArray(schema Schema) *model.Schema {
	tuple := schema.PrefixItems
	if tuple == nil {
		tuple = schema.Items.List
	}

	if tuple != nil {
		return model.Tuple(resolveAll(tuple)...)
	}

	s := model.Array(resolveOptional(schema.Items.Single))
	s.MinItems = schema.MinItems
	s.MaxItems = schema.MaxItems
	s.UniqueItems = schema.UniqueItems

	return s
}

func resolveObject(schema Schema) *model.Schema {
	if len(schema.Properties) == 0 && len(schema.Patterns) > 0 {
		s := &model.Schema{Kind: model.KindRecord, PatternProperties: make([]model.PatternProperty, 0, len(schema.Patterns))}
		for _, p := range schema.Patterns {
			s.PatternProperties = append(s.PatternProperties, model.PatternProperty{Pattern: p.Name, Schema: resolveModel(p.Schema)})
		}
		return s
	}

	m := &model.Schema{
		Kind:       model.KindObject,
		Properties: make([]model.Property, 0, len(schema.Properties)),
		Required:   make([]string, 0, len(schema.Required)),
	}

	for _, p := range schema.Properties {
		pm := resolveModel(p.Schema)
		m.Properties = append(m.Properties, model.Property{Name: p.Name, Schema: pm, Readonly: p.Schema.ReadOnly})
	}

	for _, r := range schema.Required {
		if _, ok := m.Property(r); ok {
			m.Required = append(m.Required, r)
		}
	}

	switch {
	case schema.Additional.Schema != nil:
		m.Additional = model.AdditionalSchema
		m.AdditionalSchema = resolveModel(*schema.Additional.Schema)
	case schema.Additional.Set && schema.Additional.Allowed:
		m.Additional = model.AdditionalAllow
	case schema.Additional.Set:
		m.Additional = model.AdditionalForbid
	}

	return m
}

func resolveAll(schemas []Schema) []*model.Schema {
	out := make([]*model.Schema, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, resolveModel(s))
	}

	return out
}

func resolveOptional(schema *Schema) *model.Schema {
	if schema == nil {
		return model.Any()
	}

	return resolveModel(*schema)
}

func isEmpty(s Schema) bool {
	return s.Ref == nil && len(s.Type) == 0 && len(s.Properties) == 0 && len(s.AnyOf) == 0 && len(s.AllOf) == 0
}

// normalizeValue turns YAML integers into float64 so literals compare equal
// to the ones the TypeScript front end produces.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case []any:
		for i := range n {
			n[i] = normalizeValue(n[i])
		}
	case map[string]any:
		for k := range n {
			n[k] = normalizeValue(n[k])
		}
	}

	return v
}
