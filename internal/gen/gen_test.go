package gen_test

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ptr"
	assert "github.com/stretchr/testify/require"
)

func types(schemas ...*model.Schema) *model.Model {
	return &model.Model{Types: schemas}
}

func generate(t *testing.T, m *model.Model, target gen.Target) *gen.Result {
	res, err := gen.Generate(m, target, gen.Options{})
	assert.NoError(t, err)
	return res
}

func closed(s *model.Schema) *model.Schema {
	s.Additional = model.AdditionalForbid
	return s
}

func user() *model.Schema {
	return model.Object(
		model.Prop("name", model.String()),
		model.Prop("age", &model.Schema{Kind: model.KindNumber, Minimum: ptr.V(0.0)}),
	).Optional("age").Named("User")
}

// tree references itself through a This node.
func tree() *model.Schema {
	return model.Object(
		model.Prop("children", model.Array(model.This("Node"))),
	).Named("Node")
}

// pair is two object types that reference each other.
func pair() *model.Model {
	a := model.Object(model.Prop("b", model.Ref("B"))).Optional("b").Named("A")
	b := model.Object(model.Prop("a", model.Ref("A"))).Optional("a").Named("B")
	return types(a, b)
}

func TestParseTarget(t *testing.T) {
	target, err := gen.ParseTarget(" ZOD ")
	assert.NoError(t, err)
	assert.Equal(t, gen.TargetZod, target)

	_, err = gen.ParseTarget("flow")
	assert.True(t, errors.Is(err, gen.ErrUnknownTarget))
	assert.Contains(t, errors.FlattenHints(err), "typebox")
}

func TestGenerateUnknownTarget(t *testing.T) {
	_, err := gen.Generate(types(user()), gen.Target("flow"), gen.Options{})
	assert.True(t, errors.Is(err, gen.ErrUnknownTarget))
}

func TestEveryTargetTerminatesOnCycles(t *testing.T) {
	for _, target := range gen.Targets {
		t.Run(string(target), func(t *testing.T) {
			res := generate(t, pair(), target)
			assert.NotEmpty(t, res.Text)

			res = generate(t, types(tree()), target)
			assert.NotEmpty(t, res.Text)
		})
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	m := pair()

	for _, target := range gen.Targets {
		first := generate(t, m, target)
		second := generate(t, m, target)

		assert.Equal(t, first.Text, second.Text, target)
		assert.Equal(t, first.Unsupported, second.Unsupported, target)
	}
}

func TestEmptyModel(t *testing.T) {
	for _, target := range []gen.Target{gen.TargetTypeScript, gen.TargetJavaScript, gen.TargetValue} {
		assert.Empty(t, generate(t, nil, target).Text, target)
	}
}

func TestUnresolvedRendersSentinel(t *testing.T) {
	s := model.Object(model.Prop("x", model.Unresolved("T extends string ? 1 : 2"))).Named("A")

	for _, target := range []gen.Target{gen.TargetTypeBox, gen.TargetZod, gen.TargetExpression, gen.TargetTypeScript} {
		res := generate(t, types(s), target)
		assert.Len(t, res.Unsupported, 1, target)
		assert.Contains(t, res.Unsupported[0], "T extends string ? 1 : 2")
	}

	res := generate(t, types(s), gen.TargetZod)
	assert.Contains(t, res.Text, "z.never(/* unsupported")
}

func TestDanglingReference(t *testing.T) {
	s := model.Object(model.Prop("x", model.Ref("Missing"))).Named("A")

	res := generate(t, types(s), gen.TargetTypeBox)
	assert.Equal(t, []string{"unresolved reference Missing"}, res.Unsupported)
}

func TestMultiplePatternRecordIsUnsupported(t *testing.T) {
	r := &model.Schema{
		Kind: model.KindRecord,
		PatternProperties: []model.PatternProperty{
			{Pattern: "^a", Schema: model.String()},
			{Pattern: "^b", Schema: model.Number()},
		},
	}

	for _, target := range []gen.Target{gen.TargetTypeBox, gen.TargetZod, gen.TargetJSONSchema, gen.TargetTypeScript} {
		res := generate(t, types(r.Named("R")), target)
		assert.Equal(t, []string{"record with 2 key patterns"}, res.Unsupported, target)
	}
}

func TestTypeBox(t *testing.T) {
	res := generate(t, types(user()), gen.TargetTypeBox)

	assert.Equal(t, "import { Type, Static } from '@sinclair/typebox'\n\n"+
		"export type User = Static<typeof User>\n"+
		"export const User = Type.Object({ name: Type.String(), age: Type.Optional(Type.Number({ minimum: 0 })) })\n",
		res.Text)
	assert.Empty(t, res.Unsupported)
}

func TestTypeBoxRecursive(t *testing.T) {
	res := generate(t, types(tree()), gen.TargetTypeBox)

	assert.Contains(t, res.Text, `export const Node = Type.Recursive((Node) => Type.Object({ children: Type.Array(Node) }), { $id: "Node" })`)
}

func TestTypeBoxForwardReference(t *testing.T) {
	res := generate(t, pair(), gen.TargetTypeBox)

	assert.Contains(t, res.Text, `b: Type.Optional(Type.Ref("B"))`)
	assert.Contains(t, res.Text, `a: Type.Optional(A)`)
}

func TestZod(t *testing.T) {
	res := generate(t, types(closed(user())), gen.TargetZod)

	assert.Contains(t, res.Text, "export type User = z.infer<typeof User>")
	assert.Contains(t, res.Text, "z.object({ name: z.string(), age: z.number().gte(0).optional() }).strict()")
}

func TestZodExclusiveBounds(t *testing.T) {
	m := types((&model.Schema{Kind: model.KindNumber, ExclusiveMinimum: ptr.V(0.0)}).Named("N"))

	res := generate(t, m, gen.TargetZod)
	assert.Contains(t, res.Text, "z.number().gt(0)")

	res, err := gen.Generate(m, gen.TargetZod, gen.Options{
		ExclusiveBounds: map[gen.Target]gen.BoundPolicy{gen.TargetZod: gen.BoundOffset},
	})
	assert.NoError(t, err)
	assert.Contains(t, res.Text, "z.number().gte(1)")
	assert.Equal(t, []string{"exclusive bound of a non-integer number offset by one"}, res.Unsupported)
}

func TestZodRecursiveAnnotation(t *testing.T) {
	res := generate(t, types(tree()), gen.TargetZod)

	assert.Contains(t, res.Text, "export const Node: z.ZodType<any> = ")
	assert.Contains(t, res.Text, "z.lazy(() => Node)")
}

func TestArkTypeScope(t *testing.T) {
	res := generate(t, types(user()), gen.TargetArkType)

	assert.Equal(t, "import { scope } from 'arktype'\n\n"+
		"const $ = scope({\n"+
		"  User: () => $.type({ name: \"string\", \"age?\": $.type(\"number\").atLeast(0) }),\n"+
		"})\n\n"+
		"const types = $.export()\n\n"+
		"export const User = types.User\n"+
		"export type User = typeof User.infer\n",
		res.Text)
	assert.Empty(t, res.Unsupported)
}

func TestArkTypeCycle(t *testing.T) {
	list := model.Object(
		model.Prop("value", model.Number()),
		model.Prop("next", model.Ref("List")),
	).Optional("next").Named("List")

	res := generate(t, types(tree(), list), gen.TargetArkType)
	assert.Contains(t, res.Text, `  Node: { children: "Node[]" },`)
	assert.Contains(t, res.Text, `  List: { value: "number", "next?": "List" },`)
	assert.Contains(t, res.Text, "export const Node = types.Node")
	assert.NotContains(t, res.Text, "never")
	assert.Empty(t, res.Unsupported)
}

func TestArkTypeForwardReference(t *testing.T) {
	res := generate(t, pair(), gen.TargetArkType)

	assert.Contains(t, res.Text, `  A: { "b?": "B" },`)
	assert.Contains(t, res.Text, `  B: { "a?": "A" },`)
	assert.Empty(t, res.Unsupported)
}

func TestArkTypeUnionOfAliases(t *testing.T) {
	s := model.Union(model.Ref("A"), model.Array(model.Ref("B")), model.Null()).Named("U")
	m := pair()
	m.Types = append(m.Types, s)

	res := generate(t, m, gen.TargetArkType)
	assert.Contains(t, res.Text, `  U: "A | B[] | null",`)
}

func TestArkTypeScopeNameDoesNotShadowDeclaration(t *testing.T) {
	res := generate(t, types(model.String().Named("types")), gen.TargetArkType)

	assert.Contains(t, res.Text, "const types_ = $.export()")
	assert.Contains(t, res.Text, "export const types = types_.types")
}

func TestValibot(t *testing.T) {
	s := closed(user())
	s.Properties = append(s.Properties, model.Prop("role", &model.Schema{Kind: model.KindString, Default: "user"}))

	res := generate(t, types(s), gen.TargetValibot)
	assert.Contains(t, res.Text, "v.strictObject({ name: v.string(), age: v.optional(v.pipe(v.number(), v.minValue(0))), role: v.optional(v.string(), \"user\") })")
	assert.Contains(t, res.Text, "export type User = v.InferOutput<typeof User>")
}

func TestValibotRecursive(t *testing.T) {
	res := generate(t, pair(), gen.TargetValibot)

	assert.Contains(t, res.Text, "v.lazy(() => B)")
	assert.Empty(t, res.Unsupported)
}

func TestYup(t *testing.T) {
	res := generate(t, types(closed(user())), gen.TargetYup)

	assert.Contains(t, res.Text, "name: yup.string().strict().defined()")
	assert.Contains(t, res.Text, "age: yup.number().strict().min(0).optional()")
	assert.Contains(t, res.Text, ".noUnknown().strict()")
}

func TestIoTs(t *testing.T) {
	res := generate(t, types(user()), gen.TargetIoTs)

	assert.Contains(t, res.Text, "t.intersection([t.type({ name: t.string }), t.partial({ age: t.refinement(t.number, (value) => value >= 0, \"Number\") })])")
}

func TestIoTsExactObject(t *testing.T) {
	res := generate(t, types(closed(model.Object(model.Prop("a", model.String())).Named("A"))), gen.TargetIoTs)

	assert.Contains(t, res.Text, `t.refinement(t.exact(t.type({ a: t.string })), (value) => Object.getOwnPropertyNames(value).every((k1) => ["a"].includes(k1)), "Exact")`)
}

// Every target must tell the required x apart from the optional y.
func TestOptionalityInEveryTarget(t *testing.T) {
	s := model.Object(
		model.Prop("x", model.Number()),
		model.Prop("y", model.String()),
	).Optional("y").Named("P")

	tests := map[gen.Target]struct {
		present []string
		absent  []string
	}{
		gen.TargetTypeBox:    {present: []string{"x: Type.Number()", "y: Type.Optional(Type.String())"}},
		gen.TargetZod:        {present: []string{"x: z.number(),", "y: z.string().optional()"}},
		gen.TargetYup:        {present: []string{"x: yup.number().strict().defined()", "y: yup.string().strict().optional()"}},
		gen.TargetIoTs:       {present: []string{"t.type({ x: t.number })", "t.partial({ y: t.string })"}},
		gen.TargetArkType:    {present: []string{`x: "number"`, `"y?": "string"`}},
		gen.TargetValibot:    {present: []string{"x: v.number()", "y: v.optional(v.string())"}},
		gen.TargetJSONSchema: {present: []string{`"required": [`}},
		gen.TargetTypeScript: {present: []string{"  x: number\n", "  y?: string\n"}},
		gen.TargetJavaScript: {
			present: []string{`Object.prototype.hasOwnProperty.call(value, "x")`, "(typeof value.y === 'undefined' || typeof value.y === 'string')"},
			absent:  []string{`Object.prototype.hasOwnProperty.call(value, "y")`},
		},
		gen.TargetValue:      {present: []string{`{"x":0}`}, absent: []string{`"y"`}},
		gen.TargetExpression: {present: []string{`"kind": "HasKey",`, `"key": "x"`}},
		gen.TargetGrpc:       {present: []string{"  double x = 1;\n", "  optional string y = 2;\n"}},
		gen.TargetYrel:       {present: []string{"x: y.number()", "y: y.string().optional()"}},
		gen.TargetGo:         {present: []string{"X float64 `json:\"x\"`", "Y *string `json:\"y,omitempty\"`"}},
		gen.TargetSQL:        {present: []string{"  x double precision NOT NULL,\n", "  y text\n"}},
		gen.TargetOpenAPI:    {present: []string{`"required": [`}},
	}

	for _, target := range gen.Targets {
		t.Run(string(target), func(t *testing.T) {
			tt, ok := tests[target]
			assert.True(t, ok, "no expectation for %s", target)

			res := generate(t, types(s), target)
			for _, want := range tt.present {
				assert.Contains(t, res.Text, want)
			}
			for _, unwanted := range tt.absent {
				assert.NotContains(t, res.Text, unwanted)
			}
		})
	}
}

func TestRequiredListsOnlyRequiredProperties(t *testing.T) {
	s := model.Object(
		model.Prop("x", model.Number()),
		model.Prop("y", model.String()),
	).Optional("y").Named("P")

	var schema struct {
		Defs map[string]struct {
			Required []string `json:"required"`
		} `json:"$defs"`
	}
	res := generate(t, types(s), gen.TargetJSONSchema)
	assert.NoError(t, json.Unmarshal([]byte(res.Text), &schema))
	assert.Equal(t, []string{"x"}, schema.Defs["P"].Required)

	var doc struct {
		Components struct {
			Schemas map[string]struct {
				Required []string `json:"required"`
			} `json:"schemas"`
		} `json:"components"`
	}
	res = generate(t, types(s), gen.TargetOpenAPI)
	assert.NoError(t, json.Unmarshal([]byte(res.Text), &doc))
	assert.Equal(t, []string{"x"}, doc.Components.Schemas["P"].Required)
}

func TestYrelOffsetsExclusiveBounds(t *testing.T) {
	m := types((&model.Schema{Kind: model.KindInteger, ExclusiveMinimum: ptr.V(0.0), ExclusiveMaximum: ptr.V(10.0)}).Named("N"))

	res := generate(t, m, gen.TargetYrel)
	assert.Contains(t, res.Text, "y.number().integer().gte(1).lte(9)")
}

func TestYrelForwardReferenceIsUnsupported(t *testing.T) {
	res := generate(t, pair(), gen.TargetYrel)

	assert.Len(t, res.Unsupported, 1)
	assert.Contains(t, res.Text, "y.any() /* unsupported")
}

func TestJavaScriptClosedObject(t *testing.T) {
	s := closed(model.Object(model.Prop("a", model.String())).Named("A"))

	res := generate(t, types(s), gen.TargetJavaScript)
	assert.Contains(t, res.Text, "export function CheckA(value) {")
	assert.Contains(t, res.Text, "Object.getOwnPropertyNames(value).length === 1")
	assert.NotContains(t, res.Text, "includes")
}

func TestJavaScriptOpenObjectWithOptional(t *testing.T) {
	s := closed(user())

	res := generate(t, types(s), gen.TargetJavaScript)
	assert.Contains(t, res.Text, `.includes(`)
	assert.Contains(t, res.Text, "typeof value.age === 'undefined'")
}

func TestExpressionIsJSON(t *testing.T) {
	res := generate(t, pair(), gen.TargetExpression)
	assert.True(t, json.Valid([]byte(res.Text)))
	assert.True(t, strings.HasSuffix(res.Text, "\n"))
}

func TestTypeScript(t *testing.T) {
	s := user()
	s.Description = "A person"

	res := generate(t, types(s), gen.TargetTypeScript)
	assert.Contains(t, res.Text, "/** A person */\nexport type User = {")
	assert.Contains(t, res.Text, "  age?: number")
}

func TestValue(t *testing.T) {
	s := model.Object(
		model.Prop("count", &model.Schema{Kind: model.KindInteger, Minimum: ptr.V(2.5)}),
		model.Prop("label", &model.Schema{Kind: model.KindString, MinLength: ptr.V(2)}),
		model.Prop("skip", model.String()),
	).Optional("skip").Named("A")

	res := generate(t, types(s), gen.TargetValue)
	assert.Equal(t, "export const A = {\"count\":3,\"label\":\"  \"}\n", res.Text)
}

func TestJSONSchema(t *testing.T) {
	res := generate(t, pair(), gen.TargetJSONSchema)

	var doc struct {
		Defs map[string]map[string]any `json:"$defs"`
	}
	assert.NoError(t, json.Unmarshal([]byte(res.Text), &doc))
	assert.Contains(t, doc.Defs, "A")
	assert.Contains(t, res.Text, `"$ref": "#/$defs/B"`)
	assert.Less(t, strings.Index(res.Text, `"A"`), strings.Index(res.Text, `"B"`))
}

func TestJSONSchemaReportsNonStandardTypes(t *testing.T) {
	s := model.Object(
		model.Prop("when", model.Date()),
		model.Prop("run", model.Function([]*model.Schema{model.String()}, model.Void())),
	).Named("Job")

	res := generate(t, types(s), gen.TargetJSONSchema)
	assert.Equal(t, []string{
		"Date is not a JSON Schema type",
		"function is not a JSON Schema type",
		"void is not a JSON Schema type",
	}, res.Unsupported)
	assert.Contains(t, res.Text, `"$comment": "non-standard type Date"`)
	assert.Contains(t, res.Text, `"$comment": "non-standard type function"`)
}

func TestOpenAPI(t *testing.T) {
	s := model.Union(model.String(), model.Null()).Named("MaybeName")

	res := generate(t, types(user(), s), gen.TargetOpenAPI)
	assert.Contains(t, res.Text, `"openapi": "3.0.3"`)
	assert.Contains(t, res.Text, `"nullable": true`)
	assert.Contains(t, res.Text, `"required": [`)
}

func TestGrpcMessageAndService(t *testing.T) {
	svc := model.Object(
		model.Prop("getUser", model.Function([]*model.Schema{model.String()}, model.Promise(model.Ref("User")))),
	).Named("UserService")

	res := generate(t, types(user(), svc), gen.TargetGrpc)
	assert.Contains(t, res.Text, `syntax = "proto3";`)
	assert.Contains(t, res.Text, "message User {\n  string name = 1;\n  optional double age = 2;\n}")
	assert.Contains(t, res.Text, "service UserService {")
	assert.Contains(t, res.Text, "rpc GetUser(UserServiceGetUserRequest) returns (User);")
}

func TestGrpcEnum(t *testing.T) {
	s := model.Union(model.Literal("active"), model.Literal("banned")).Named("Status")

	res := generate(t, types(s), gen.TargetGrpc)
	assert.Contains(t, res.Text, "enum Status {\n  STATUS_UNSPECIFIED = 0;\n  STATUS_ACTIVE = 1;\n  STATUS_BANNED = 2;\n}")
}

func TestGo(t *testing.T) {
	s := user()
	s.Properties = append(s.Properties, model.Prop("tags", model.Array(model.String())))
	s.Required = append(s.Required, "tags")

	res, err := gen.Generate(types(s), gen.TargetGo, gen.Options{GoPackage: "people"})
	assert.NoError(t, err)

	assert.Contains(t, res.Text, "package people")
	assert.Regexp(t, "Name\\s+string\\s+`json:\"name\"`", res.Text)
	assert.Regexp(t, "Age\\s+\\*float64\\s+`json:\"age,omitempty\"`", res.Text)
	assert.Regexp(t, "Tags\\s+\\[\\]string\\s+`json:\"tags\"`", res.Text)
	assert.Contains(t, res.Text, "func (v User) Validate() error {")
	assert.Contains(t, res.Text, "v.Age != nil && *v.Age < 0")
}

func TestGoCycleUsesPointer(t *testing.T) {
	res := generate(t, types(tree()), gen.TargetGo)
	assert.Regexp(t, "Children\\s+\\[\\]\\*Node", res.Text)
}

func TestGoOptionalPointersAreNotDoubled(t *testing.T) {
	tags := model.Array(model.String()).Named("Tags")
	s := model.Object(
		model.Prop("value", model.Number()),
		model.Prop("next", model.Ref("Node")),
		model.Prop("parent", model.This("Node")),
		model.Prop("s", model.Union(model.String(), model.Null())),
		model.Prop("tags", model.Ref("Tags")),
	).Optional("next", "parent", "s", "tags").Named("Node")

	res := generate(t, types(s, tags), gen.TargetGo)
	assert.Regexp(t, "Next\\s+\\*Node\\s+`json:\"next,omitempty\"`", res.Text)
	assert.Regexp(t, "Parent\\s+\\*Node\\s+`json:\"parent,omitempty\"`", res.Text)
	assert.Regexp(t, "S\\s+\\*string\\s+`json:\"s,omitempty\"`", res.Text)
	assert.Regexp(t, "Tags\\s+Tags\\s+`json:\"tags,omitempty\"`", res.Text)
	assert.NotContains(t, res.Text, "**")
}

func TestGoEnum(t *testing.T) {
	s := model.Union(model.Literal("active"), model.Literal("banned")).Named("Status")

	res := generate(t, types(s), gen.TargetGo)
	assert.Contains(t, res.Text, "type Status string")
	assert.Regexp(t, `StatusActive\s+Status = "active"`, res.Text)
}

func TestSQL(t *testing.T) {
	status := model.Union(model.Literal("active"), model.Literal("banned")).Named("Status")
	s := model.Object(
		model.Prop("id", model.String()),
		model.Prop("displayName", &model.Schema{Kind: model.KindString, MinLength: ptr.V(1)}),
		model.Prop("age", &model.Schema{Kind: model.KindInteger, ExclusiveMinimum: ptr.V(0.0)}),
		model.Prop("status", model.Ref("Status")),
	).Optional("age").Named("UserProfile")

	res := generate(t, types(s, status), gen.TargetSQL)

	assert.Equal(t, "CREATE TYPE status AS ENUM ('active', 'banned');\n\n"+
		"CREATE TABLE user_profile (\n"+
		"  id text PRIMARY KEY,\n"+
		"  display_name text NOT NULL CHECK (char_length(display_name) >= 1),\n"+
		"  age bigint CHECK (age > 0),\n"+
		"  status status NOT NULL\n"+
		");\n", res.Text)
	assert.Empty(t, res.Unsupported)
}

func TestSQLNonObjectDeclaration(t *testing.T) {
	res := generate(t, types(model.String().Named("Name")), gen.TargetSQL)

	assert.Empty(t, res.Text)
	assert.Equal(t, []string{"type Name is not an object and has no table"}, res.Unsupported)
}
