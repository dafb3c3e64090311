package jsonschema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/model/jsonschema"
	assert "github.com/stretchr/testify/require"
)

func TestReadDefs(t *testing.T) {
	m, err := jsonschema.Read([]byte(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$defs": {
			"Person": {
				"type": "object",
				"properties": {
					"name": { "type": "string", "minLength": 1 },
					"age": { "type": "integer", "minimum": 0, "exclusiveMaximum": 150 },
					"pet": { "$ref": "#/$defs/Pet" }
				},
				"required": ["name"],
				"additionalProperties": false
			},
			"Pet": {
				"anyOf": [{ "const": "cat" }, { "const": "dog" }]
			}
		}
	}`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"Person", "Pet"}, m.Names())

	person := m.Types[0]
	assert.Equal(t, model.KindObject, person.Kind)
	assert.Equal(t, "name", person.Properties[0].Name)
	assert.Equal(t, "age", person.Properties[1].Name)
	assert.Equal(t, []string{"name"}, person.Required)
	assert.Equal(t, model.AdditionalForbid, person.Additional)

	name, _ := person.Property("name")
	assert.Equal(t, 1, *name.MinLength)

	age, _ := person.Property("age")
	assert.Equal(t, model.KindInteger, age.Kind)
	assert.Equal(t, 150.0, *age.ExclusiveMaximum)

	pet, _ := person.Property("pet")
	assert.Equal(t, model.KindRef, pet.Kind)
	assert.Equal(t, "Pet", pet.Ref)

	petType := m.Types[1]
	assert.Equal(t, model.KindUnion, petType.Kind)
	assert.Equal(t, "cat", petType.AnyOf[0].Const)
}

func TestReadOpenAPI(t *testing.T) {
	m, err := jsonschema.Read([]byte(`
openapi: 3.0.3
info:
  title: test
  version: "1"
paths: {}
components:
  schemas:
    Score:
      type: number
      minimum: 0
      exclusiveMinimum: true
      nullable: true
    Tags:
      type: object
      additionalProperties:
        type: string
`))
	assert.NoError(t, err)

	score := m.Types[0]
	assert.Equal(t, model.KindUnion, score.Kind)
	assert.Equal(t, "Score", score.ID)
	assert.Nil(t, score.AnyOf[0].Minimum)
	assert.Equal(t, 0.0, *score.AnyOf[0].ExclusiveMinimum)
	assert.Equal(t, model.KindNull, score.AnyOf[1].Kind)

	tags := m.Types[1]
	assert.Equal(t, model.AdditionalSchema, tags.Additional)
	assert.Equal(t, model.KindString, tags.AdditionalSchema.Kind)
}

func TestReadTupleAndRecord(t *testing.T) {
	m, err := jsonschema.Read([]byte(`{
		"$defs": {
			"Pair": { "type": "array", "prefixItems": [{ "type": "string" }, { "type": "number" }], "minItems": 2, "maxItems": 2 },
			"Old": { "type": "array", "items": [{ "type": "boolean" }], "additionalItems": false },
			"Map": { "type": "object", "patternProperties": { "^(.*)$": { "type": "number" } } },
			"Nothing": { "not": {} },
			"Anything": {}
		}
	}`))
	assert.NoError(t, err)

	pair, _ := m.Lookup("Pair")
	assert.Equal(t, model.KindTuple, pair.Kind)
	assert.Len(t, pair.Elements, 2)

	old, _ := m.Lookup("Old")
	assert.Equal(t, model.KindTuple, old.Kind)

	record, _ := m.Lookup("Map")
	assert.Equal(t, model.KindRecord, record.Kind)
	assert.Equal(t, model.PatternStringKey, record.PatternProperties[0].Pattern)

	nothing, _ := m.Lookup("Nothing")
	assert.Equal(t, model.KindNever, nothing.Kind)

	anything, _ := m.Lookup("Anything")
	assert.Equal(t, model.KindAny, anything.Kind)
}

func TestReadJavaScriptKinds(t *testing.T) {
	m, err := jsonschema.Read([]byte(`{
		"$defs": {
			"When": { "type": "Date" },
			"Bytes": { "type": "Uint8Array" },
			"Fn": { "type": "function", "parameters": [{ "type": "string" }], "returns": { "type": "void" } },
			"Later": { "type": "Promise", "item": { "type": "number" } }
		}
	}`))
	assert.NoError(t, err)

	kinds := make([]model.Kind, 0)
	for _, s := range m.Types {
		kinds = append(kinds, s.Kind)
	}

	assert.Equal(t, []model.Kind{model.KindDate, model.KindUint8Array, model.KindFunction, model.KindPromise}, kinds)
	assert.Equal(t, model.KindVoid, m.Types[2].Returns.Kind)
}

func TestReadRootSchema(t *testing.T) {
	m, err := jsonschema.Read([]byte(`{ "$id": "Root", "type": "string" }`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"Root"}, m.Names())
}

func TestReadErrors(t *testing.T) {
	_, err := jsonschema.Read([]byte(`{ "type": "string" }`))
	assert.ErrorContains(t, err, "no named schemas")

	_, err = jsonschema.Read([]byte(`{ "$defs": [1, 2] }`))
	assert.Error(t, err)

	_, err = jsonschema.Read([]byte(`{ "$defs": {"A": {}}, "definitions": {"A": {}} }`))
	assert.ErrorContains(t, err, "more than once")
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"$defs": {"A": {"type": "boolean"}}}`), 0o644))

	m, err := jsonschema.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, model.KindBoolean, m.Types[0].Kind)

	_, err = jsonschema.ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
