package expr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// CheckName is the name of the generated check function for a named type.
func CheckName(name string) string {
	return "Check" + name
}

// Print renders e as a JavaScript boolean expression over the variable
// named by path.
func Print(e Expr, path string) string {
	p := &printer{}
	return p.print(e, path)
}

type printer struct {
	vars int
}

func (p *printer) fresh(prefix string) string {
	p.vars += 1
	return fmt.Sprintf("%s%d", prefix, p.vars)
}

func (p *printer) print(e Expr, path string) string {
	switch n := e.(type) {
	case nil:
		return "false"
	case *TrueExpr:
		return "true"
	case *FalseExpr:
		if n.Reason != "" {
			return fmt.Sprintf("false /* unsupported: %s */", sanitizeComment(n.Reason))
		}
		return "false"
	case *IsExpr:
		return printIs(n.Type, path)
	case *CompareExpr:
		op := string(n.Op)
		if n.Op == OpEqual {
			op = "==="
		}
		return fmt.Sprintf("%s %s %s", path, op, Literal(n.Value))
	case *MultipleOfExpr:
		return fmt.Sprintf("%s %% %s === 0", path, formatNumber(n.Value))
	case *PropertyExpr:
		return p.print(n.Expr, Member(path, n.Key))
	case *HasKeyExpr:
		return fmt.Sprintf("Object.prototype.hasOwnProperty.call(%s, %s)", path, Literal(n.Key))
	case *IndexExpr:
		return p.print(n.Expr, fmt.Sprintf("%s[%d]", path, n.Index))
	case *CallExpr:
		if n.Expr == nil {
			args := make([]string, len(n.Args))
			for i, a := range n.Args {
				args[i] = Literal(a)
			}
			return fmt.Sprintf("%s.%s(%s)", path, n.Method, strings.Join(args, ", "))
		}
		v := p.fresh("v")
		return fmt.Sprintf("%s.%s((%s) => %s)", path, n.Method, v, p.print(n.Expr, v))
	case *InstanceOfExpr:
		return fmt.Sprintf("%s instanceof %s", path, n.Name)
	case *AndExpr:
		return p.join(n.Children, " && ", path)
	case *OrExpr:
		return p.join(n.Children, " || ", path)
	case *NotExpr:
		return fmt.Sprintf("!(%s)", p.print(n.Expr, path))
	case *RefExpr:
		return fmt.Sprintf("%s(%s)", CheckName(n.Name), path)
	case *PatternExpr:
		return fmt.Sprintf("new RegExp(%s).test(%s)", Literal(n.Pattern), path)
	case *KeyCountExpr:
		op := string(n.Op)
		if n.Op == OpEqual {
			op = "==="
		}
		return fmt.Sprintf("Object.getOwnPropertyNames(%s).length %s %d", path, op, n.Count)
	case *KnownKeysExpr:
		k := p.fresh("k")
		return fmt.Sprintf("Object.getOwnPropertyNames(%s).every((%s) => %s.includes(%s))", path, k, Literal(n.Keys), k)
	case *EntriesExpr:
		k, v := p.fresh("k"), p.fresh("v")
		return fmt.Sprintf("Object.entries(%s).every(([%s, %s]) => %s && %s)", path, k, v, p.print(n.Key, k), p.print(n.Value, v))
	}

	return fmt.Sprintf("false /* unknown expression %T */", e)
}

func (p *printer) join(children []Expr, sep string, path string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = p.print(c, path)
	}

	return "(" + strings.Join(parts, sep) + ")"
}

func printIs(t TypeName, path string) string {
	switch t {
	case TypeNull:
		return fmt.Sprintf("%s === null", path)
	case TypeArray:
		return fmt.Sprintf("Array.isArray(%s)", path)
	case TypeObject:
		return fmt.Sprintf("(typeof %s === 'object' && %s !== null && !Array.isArray(%s))", path, path, path)
	case TypeFinite:
		return fmt.Sprintf("Number.isFinite(%s)", path)
	case TypeInteger:
		return fmt.Sprintf("Number.isInteger(%s)", path)
	}

	return fmt.Sprintf("typeof %s === '%s'", path, t)
}

// Member renders a property access, falling back to bracket syntax for keys
// that are not identifiers.
func Member(path string, key string) string {
	if identifier.MatchString(key) {
		return path + "." + key
	}

	return path + "[" + strconv.Quote(key) + "]"
}

// Literal renders a Go value as a JavaScript literal.
func Literal(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case float64:
		return formatNumber(n)
	case int:
		return strconv.Itoa(n)
	case string:
		return strconv.Quote(n)
	}

	out, err := json.Marshal(v)
	if err != nil {
		return "undefined"
	}

	return string(out)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sanitizeComment(s string) string {
	return strings.ReplaceAll(s, "*/", "* /")
}
