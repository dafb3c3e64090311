package expr_test

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/koskimas/typeshift/internal/expr"
	assert "github.com/stretchr/testify/require"
)

func TestAndFlattens(t *testing.T) {
	e := expr.And(
		expr.True(),
		expr.And(expr.Is(expr.TypeString), expr.True()),
		expr.Compare(expr.OpGreaterEqual, 1.0),
	)

	and, ok := e.(*expr.AndExpr)
	assert.True(t, ok)
	assert.Len(t, and.Children, 2)
	assert.Equal(t, expr.KindIs, and.Children[0].Kind())
	assert.Equal(t, expr.KindCompare, and.Children[1].Kind())
}

func TestAndKeepsTaggedChildren(t *testing.T) {
	inner := expr.WithID(expr.And(expr.Is(expr.TypeString), expr.Pattern("^a")), "A")
	e := expr.And(inner, expr.Is(expr.TypeString))

	and := e.(*expr.AndExpr)
	assert.Len(t, and.Children, 2)
	assert.Equal(t, "A", and.Children[0].ID())
}

func TestEmptyCombinators(t *testing.T) {
	assert.Equal(t, expr.KindTrue, expr.And().Kind())
	assert.Equal(t, expr.KindFalse, expr.Or().Kind())
	assert.Equal(t, expr.KindIs, expr.Or(expr.False(), expr.Is(expr.TypeNull)).Kind())
}

func TestOrKeepsUnsupported(t *testing.T) {
	e := expr.Or(expr.Unsupported("symbol"), expr.False())
	f, ok := e.(*expr.FalseExpr)
	assert.True(t, ok)
	assert.Equal(t, "symbol", f.Reason)
}

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		expr expr.Expr
		want string
	}{
		{"true", expr.True(), "true"},
		{"unsupported", expr.Unsupported("a */ b"), "false /* unsupported: a * / b */"},
		{"string", expr.Is(expr.TypeString), "typeof value === 'string'"},
		{"null", expr.Is(expr.TypeNull), "value === null"},
		{"array", expr.Is(expr.TypeArray), "Array.isArray(value)"},
		{
			"object",
			expr.Is(expr.TypeObject),
			"(typeof value === 'object' && value !== null && !Array.isArray(value))",
		},
		{"equal", expr.Compare(expr.OpEqual, "a"), `value === "a"`},
		{"greater", expr.Compare(expr.OpGreater, 0.5), "value > 0.5"},
		{"multiple", expr.MultipleOf(2), "value % 2 === 0"},
		{"property", expr.Property("x", expr.Is(expr.TypeNumber)), "typeof value.x === 'number'"},
		{"quoted property", expr.Property("a-b", expr.True()), "true"},
		{"index", expr.Index(1, expr.Is(expr.TypeBoolean)), "typeof value[1] === 'boolean'"},
		{"call", expr.Call("every", nil, expr.Is(expr.TypeString)), "value.every((v1) => typeof v1 === 'string')"},
		{"call args", expr.Call("includes", []any{"a"}, nil), `value.includes("a")`},
		{"instanceof", expr.InstanceOf("Date"), "value instanceof Date"},
		{"not", expr.Not(expr.Is(expr.TypeUndefined)), "!(typeof value === 'undefined')"},
		{"ref", expr.Ref("Node"), "CheckNode(value)"},
		{"pattern", expr.Pattern("^a$"), `new RegExp("^a$").test(value)`},
		{"key count", expr.KeyCount(expr.OpEqual, 2), "Object.getOwnPropertyNames(value).length === 2"},
		{
			"known keys",
			expr.KnownKeys([]string{"a"}),
			`Object.getOwnPropertyNames(value).every((k1) => ["a"].includes(k1))`,
		},
		{
			"entries",
			expr.Entries(expr.Pattern("^(.*)$"), expr.Is(expr.TypeNumber)),
			`Object.entries(value).every(([k1, v2]) => new RegExp("^(.*)$").test(k1) && typeof v2 === 'number')`,
		},
		{
			"and or",
			expr.And(expr.Is(expr.TypeNumber), expr.Or(expr.Compare(expr.OpLess, 0.0), expr.Compare(expr.OpGreater, 10.0))),
			"(typeof value === 'number' && (value < 0 || value > 10))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expr.Print(tt.expr, "value"))
		})
	}
}

func TestPrintQuotedMember(t *testing.T) {
	assert.Equal(t, `typeof value["a-b"] === 'string'`, expr.Print(expr.Property("a-b", expr.Is(expr.TypeString)), "value"))
}

func TestPrintNestedCallbacksUseFreshNames(t *testing.T) {
	e := expr.Call("every", nil, expr.Call("every", nil, expr.Is(expr.TypeNumber)))
	assert.Equal(t, "value.every((v1) => v1.every((v2) => typeof v2 === 'number'))", expr.Print(e, "value"))
}

func TestMarshal(t *testing.T) {
	e := expr.WithID(expr.And(
		expr.Is(expr.TypeObject),
		expr.Property("x", expr.Is(expr.TypeNumber)),
	), "T")

	out, err := expr.Marshal(e)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "And", decoded["kind"])
	assert.Equal(t, "T", decoded["$id"])

	children := decoded["children"].([]any)
	assert.Len(t, children, 2)
	assert.Equal(t, "x", children[1].(map[string]any)["key"])
}

func TestMarshalIndentKeepsOrder(t *testing.T) {
	out, err := expr.MarshalIndent([]expr.Named{
		{Name: "B", Expr: expr.True()},
		{Name: "A", Expr: expr.Is(expr.TypeString)},
	})
	assert.NoError(t, err)

	text := string(out)
	assert.Less(t, strings.Index(text, `"B"`), strings.Index(text, `"A"`))
	assert.Contains(t, text, "\n  ")
}

func TestHasKey(t *testing.T) {
	assert.Equal(t, `Object.prototype.hasOwnProperty.call(value, "a-b")`, expr.Print(expr.HasKey("a-b"), "value"))

	out, err := expr.Marshal(expr.HasKey("a"))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"kind":"HasKey","key":"a"}`, string(out))
}
