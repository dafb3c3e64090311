package format_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/format"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/model"
	assert "github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	tests := []struct {
		target gen.Target
		want   format.Formatter
	}{
		{gen.TargetZod, format.Script{Target: gen.TargetZod}},
		{gen.TargetTypeScript, format.Script{Target: gen.TargetTypeScript}},
		{gen.TargetJavaScript, format.JavaScript{}},
		{gen.TargetJSONSchema, format.JSON{Target: gen.TargetJSONSchema}},
		{gen.TargetOpenAPI, format.OpenAPI{}},
		{gen.TargetGo, format.Go{}},
		{gen.TargetSQL, format.SQL{}},
		{gen.TargetGrpc, format.Proto{}},
		{gen.TargetValue, format.Noop{}},
		{gen.TargetExpression, format.Noop{}},
	}

	for _, test := range tests {
		assert.Equal(t, test.want, format.For(test.target), test.target)
	}
}

func TestScriptReindents(t *testing.T) {
	in := "export type A = {\n      a: string\n  b: {\nc: '{'\n    }\n}\n"

	out, err := format.Script{Target: gen.TargetTypeScript}.Format(in)
	assert.NoError(t, err)
	assert.Equal(t, "export type A = {\n  a: string\n  b: {\n    c: '{'\n  }\n}\n", out)
}

func TestScriptBreaksLongObjects(t *testing.T) {
	in := "export const User = z.object({ name: z.string().min(1).max(100), email: z.string().email(), age: z.number().int() }).strict()\n"

	out, err := format.Script{Target: gen.TargetZod}.Format(in)
	assert.NoError(t, err)
	assert.Equal(t, "export const User = z.object({\n"+
		"  name: z.string().min(1).max(100),\n"+
		"  email: z.string().email(),\n"+
		"  age: z.number().int()\n"+
		"}).strict()\n", out)
}

func TestScriptBreaksNestedObjects(t *testing.T) {
	in := "export const A = Type.Object({ address: Type.Object({ street: Type.String({ minLength: 1 }), city: Type.String(), zip: Type.String() }), note: Type.String({ description: \"a, b { c }\" }) })\n"

	out, err := format.Script{Target: gen.TargetTypeBox}.Format(in)
	assert.NoError(t, err)
	assert.Equal(t, "export const A = Type.Object({\n"+
		"  address: Type.Object({\n"+
		"    street: Type.String({ minLength: 1 }),\n"+
		"    city: Type.String(),\n"+
		"    zip: Type.String()\n"+
		"  }),\n"+
		"  note: Type.String({ description: \"a, b { c }\" })\n"+
		"})\n", out)
}

func TestScriptKeepsShortObjects(t *testing.T) {
	in := "export const A = z.object({ a: z.string(), b: z.number() })\n"

	out, err := format.Script{Target: gen.TargetZod}.Format(in)
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestScriptRejectsInvalidSyntax(t *testing.T) {
	_, err := format.Script{Target: gen.TargetZod}.Format("export const A = z.object({")

	var serr *format.SyntaxError
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, gen.TargetZod, serr.Target)
	assert.NotEmpty(t, serr.Messages)
}

func TestJavaScript(t *testing.T) {
	out, err := format.JavaScript{}.Format("export function CheckA(value) { return typeof value === 'string' }")
	assert.NoError(t, err)
	assert.Contains(t, out, "export function CheckA(value) {\n  return typeof value === \"string\";\n}")
}

func TestJSON(t *testing.T) {
	out, err := format.JSON{Target: gen.TargetJSONSchema}.Format(`{"a":[1,2]}`)
	assert.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ]\n}\n", out)

	_, err = format.JSON{Target: gen.TargetJSONSchema}.Format(`{"a":`)
	assert.Error(t, err)
}

func TestGo(t *testing.T) {
	out, err := format.Go{}.Format("package types\ntype A struct{\nX int `json:\"x\"`\n}")
	assert.NoError(t, err)
	assert.Equal(t, "package types\n\ntype A struct {\n\tX int `json:\"x\"`\n}\n", out)

	_, err = format.Go{}.Format("package types\ntype A struct{")
	assert.Error(t, err)
}

func TestSQL(t *testing.T) {
	out, err := format.SQL{}.Format("create table a (x int not null)")
	assert.NoError(t, err)
	assert.Equal(t, "CREATE TABLE a (\n  x integer NOT NULL\n);\n", out)

	_, err = format.SQL{}.Format("create table a (")
	var serr *format.SyntaxError
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, gen.TargetSQL, serr.Target)
}

func TestProto(t *testing.T) {
	out, err := format.Proto{}.Format("message A {\nstring a = 1; // {\n}\n")
	assert.NoError(t, err)
	assert.Equal(t, "message A {\n  string a = 1; // {\n}\n", out)

	_, err = format.Proto{}.Format("message A {\n")
	assert.Error(t, err)
}

// Generated output of every script target must survive its formatter.
func TestFormatsGeneratedOutput(t *testing.T) {
	m := &model.Model{Types: []*model.Schema{
		model.Object(
			model.Prop("name", model.String()),
			model.Prop("tags", model.Array(model.String())),
			model.Prop("parent", model.Ref("Node")),
		).Optional("parent").Named("Node"),
		model.Union(model.Literal("a"), model.Literal("b")).Named("Letter"),
	}}

	for _, target := range gen.Targets {
		res, err := gen.Generate(m, target, gen.Options{})
		assert.NoError(t, err)

		_, err = format.For(target).Format(res.Text)
		assert.NoError(t, err, target)
	}
}
