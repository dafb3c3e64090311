package match_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/match"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ptr"
	assert "github.com/stretchr/testify/require"
)

func person() *model.Schema {
	return model.Object(
		model.Prop("name", model.String()),
		model.Prop("age", &model.Schema{Kind: model.KindInteger, Minimum: ptr.V(0.0)}),
		model.Prop("tags", model.Array(model.String())),
	).Optional("tags").Named("Person")
}

func TestSchemasEqual(t *testing.T) {
	assert.NoError(t, match.Schemas(person(), person()))
}

func TestSchemasFoldEquivalentKinds(t *testing.T) {
	assert.NoError(t, match.Schemas(model.Any(), model.Unknown()))
	assert.NoError(t, match.Schemas(model.This("Node"), model.Ref("#/$defs/Node")))

	s := model.String()
	s.Pattern = "^a(.*)$"
	assert.NoError(t, match.Schemas(model.TemplateLiteral("^a(.*)$"), s))
}

func TestSchemasTreatUnsetAdditionalAsAllowed(t *testing.T) {
	a := model.Object(model.Prop("x", model.Number()))
	b := model.Object(model.Prop("x", model.Number()))
	b.Additional = model.AdditionalAllow

	assert.NoError(t, match.Schemas(a, b))

	b.Additional = model.AdditionalForbid
	assert.Error(t, match.Schemas(a, b))
}

func TestSchemasMismatch(t *testing.T) {
	tests := []struct {
		name string
		b    func(*model.Schema)
		path string
	}{
		{"kind", func(s *model.Schema) { s.Properties[0].Schema = model.Number() }, "Person.name"},
		{"optionality", func(s *model.Schema) { s.Optional("name") }, "Person"},
		{"bound", func(s *model.Schema) { s.Properties[1].Schema.Minimum = ptr.V(1.0) }, "Person.age"},
		{"items", func(s *model.Schema) { s.Properties[2].Schema.Items = model.Boolean() }, "Person.tags[]"},
		{"missing", func(s *model.Schema) { s.Properties = s.Properties[:2] }, "Person"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := person()
			tt.b(b)

			err := match.Schemas(person(), b)
			assert.Error(t, err)

			var matchErr *match.MatchError
			assert.True(t, errors.As(err, &matchErr))
			assert.Equal(t, tt.path, matchErr.MismatchPath.String())
		})
	}
}

func TestSchemasUnresolvedNeverMatches(t *testing.T) {
	assert.Error(t, match.Schemas(model.Unresolved("T"), model.Unresolved("T")))
}

func TestModels(t *testing.T) {
	a := &model.Model{Types: []*model.Schema{person(), model.String().Named("Name")}}
	b := &model.Model{Types: []*model.Schema{person(), model.String().Named("Name")}}
	assert.NoError(t, match.Models(a, b))

	c := &model.Model{Types: []*model.Schema{model.String().Named("Name"), person()}}
	assert.ErrorContains(t, match.Models(a, c), "declared types")
}

func TestResolve(t *testing.T) {
	m := &model.Model{Types: []*model.Schema{
		model.Object(model.Prop("home_address", model.Ref("Address"))).Named("Person"),
		model.Object(model.Prop("street", model.String())).Named("Address"),
	}}

	p, err := match.Resolve(m, "Person.homeAddress.street")
	assert.NoError(t, err)
	assert.Equal(t, "Person.home_address.street", p.String())
	assert.Equal(t, model.KindString, p.Schema.Kind)

	_, err = match.Resolve(m, "Person.missing")
	assert.ErrorContains(t, err, `could not resolve property "missing" of "Person"`)

	_, err = match.Resolve(m, "Nobody")
	assert.Error(t, err)
}
