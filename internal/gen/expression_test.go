package gen

import (
	"math"
	"slices"
	"testing"

	"github.com/koskimas/typeshift/internal/expr"
	"github.com/koskimas/typeshift/internal/model"
	assert "github.com/stretchr/testify/require"
)

// undefined stands for a missing value when evaluating checks in tests.
type undefined struct{}

// eval runs a check against a decoded JSON-like value. Only the nodes the
// object and primitive checks produce are supported.
func eval(t *testing.T, e expr.Expr, value any) bool {
	t.Helper()

	switch n := e.(type) {
	case *expr.TrueExpr:
		return true
	case *expr.FalseExpr:
		return false
	case *expr.IsExpr:
		switch n.Type {
		case expr.TypeUndefined:
			_, ok := value.(undefined)
			return ok
		case expr.TypeNull:
			return value == nil
		case expr.TypeString:
			_, ok := value.(string)
			return ok
		case expr.TypeNumber:
			_, ok := value.(float64)
			return ok
		case expr.TypeFinite:
			f, ok := value.(float64)
			return ok && !math.IsInf(f, 0) && !math.IsNaN(f)
		case expr.TypeObject:
			_, ok := value.(map[string]any)
			return ok
		}
	case *expr.CompareExpr:
		f, ok := value.(float64)
		if !ok {
			return false
		}
		limit := n.Value.(float64)
		switch n.Op {
		case expr.OpLess:
			return f < limit
		case expr.OpLessEqual:
			return f <= limit
		case expr.OpGreater:
			return f > limit
		case expr.OpGreaterEqual:
			return f >= limit
		case expr.OpEqual:
			return f == limit
		}
	case *expr.HasKeyExpr:
		_, ok := value.(map[string]any)[n.Key]
		return ok
	case *expr.PropertyExpr:
		child, ok := value.(map[string]any)[n.Key]
		if !ok {
			child = undefined{}
		}
		return eval(t, n.Expr, child)
	case *expr.KeyCountExpr:
		return len(value.(map[string]any)) == n.Count
	case *expr.KnownKeysExpr:
		for k := range value.(map[string]any) {
			if !slices.Contains(n.Keys, k) {
				return false
			}
		}
		return true
	case *expr.AndExpr:
		for _, c := range n.Children {
			if !eval(t, c, value) {
				return false
			}
		}
		return true
	case *expr.OrExpr:
		for _, c := range n.Children {
			if eval(t, c, value) {
				return true
			}
		}
		return false
	case *expr.NotExpr:
		return !eval(t, n.Expr, value)
	}

	t.Fatalf("cannot evaluate %T", e)
	return false
}

func check(t *testing.T, s *model.Schema) expr.Expr {
	named, v := checkDeclarations(&model.Model{Types: []*model.Schema{s}}, Options{}, TargetExpression)
	assert.Empty(t, v.unsupported)
	assert.Len(t, named, 1)
	return named[0].Expr
}

// exclusive rewrites the key count shortcut of a closed object check into the
// known keys form used for objects with optional properties.
func exclusive(e expr.Expr, keys []string) expr.Expr {
	and := e.(*expr.AndExpr)
	children := make([]expr.Expr, len(and.Children))

	for i, c := range and.Children {
		if c.Kind() == expr.KindKeyCount {
			c = expr.KnownKeys(keys)
		}
		children[i] = c
	}

	return &expr.AndExpr{Children: children}
}

func TestClosedObjectRequiresDeclaredKeys(t *testing.T) {
	s := model.Object(model.Prop("a", model.Any())).Named("T")
	s.Additional = model.AdditionalForbid
	e := check(t, s)

	assert.False(t, eval(t, e, map[string]any{"b": 1.0}))
	assert.False(t, eval(t, e, map[string]any{}))
	assert.True(t, eval(t, e, map[string]any{"a": nil}))
	assert.Contains(t, expr.Print(e, "value"), `Object.prototype.hasOwnProperty.call(value, "a")`)
}

func TestClosedObjectCountMatchesExclusion(t *testing.T) {
	s := model.Object(
		model.Prop("a", model.Any()),
		model.Prop("n", model.Number()),
	).Named("T")
	s.Additional = model.AdditionalForbid

	counted := check(t, s)
	excluded := exclusive(counted, []string{"a", "n"})

	values := []map[string]any{
		{},
		{"a": 1.0},
		{"b": 1.0, "n": 1.0},
		{"a": "x", "n": 1.0},
		{"a": "x", "n": "1"},
		{"a": "x", "n": 1.0, "c": true},
		{"a": nil, "b": nil},
	}

	for _, value := range values {
		assert.Equal(t, eval(t, excluded, value), eval(t, counted, value), "value %v", value)
	}
}

func TestRequiredUnknownPropertyMustBePresent(t *testing.T) {
	s := model.Object(model.Prop("x", model.Unknown())).Named("T")
	e := check(t, s)

	assert.False(t, eval(t, e, map[string]any{}))
	assert.True(t, eval(t, e, map[string]any{"x": "anything"}))
	assert.True(t, eval(t, e, map[string]any{"x": 1.0, "y": 2.0}))
}

func TestOptionalPropertyMayBeMissing(t *testing.T) {
	s := model.Object(
		model.Prop("x", model.Number()),
		model.Prop("y", model.String()),
	).Optional("y").Named("T")
	e := check(t, s)

	assert.True(t, eval(t, e, map[string]any{"x": 1.0}))
	assert.False(t, eval(t, e, map[string]any{"y": "a"}))
	assert.False(t, eval(t, e, map[string]any{"x": 1.0, "y": 2.0}))
}
