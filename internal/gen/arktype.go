package gen

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

// arkType renders every declaration into one scope so that declarations can
// name each other in any order, including cyclically. Aliases are plain
// strings; definitions that chain methods go through $.type inside a thunk.
type arkType struct{}

var arkAlias = regexp.MustCompile(`^"[A-Za-z_$][A-Za-z0-9_$.]*(\[\])*"$`)

func generateArkType(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[string](m, arkType{}, opts.Bounds(TargetArkType))
	decls := v.declarations(m)

	if len(decls) == 0 {
		return v.result("import { scope } from 'arktype'"), nil
	}

	names := make([]string, len(decls))
	entries := make([]string, len(decls))

	for i, d := range decls {
		names[i] = d.Name
		entries[i] = "  " + jsKey(d.Name) + ": " + arkType{}.thunk(d.Body) + ","
	}

	exports := "types"
	for slices.Contains(names, exports) {
		exports += "_"
	}

	blocks := []string{
		"import { scope } from 'arktype'",
		"const $ = scope({\n" + strings.Join(entries, "\n") + "\n})",
		"const " + exports + " = $.export()",
	}

	for _, name := range names {
		blocks = append(blocks, fmt.Sprintf(
			"export const %s = %s.%s\nexport type %s = typeof %s.infer",
			name, exports, name, name, name,
		))
	}

	return v.result(lines(blocks...)), nil
}

// thunk defers definitions that call into the scope until it is resolved.
func (a arkType) thunk(def string) string {
	if strings.Contains(def, "$.type") {
		return "() => " + a.wrap(def)
	}

	return def
}

// wrap turns a definition into a Type so that methods can be chained on it.
func (arkType) wrap(def string) string {
	if strings.HasPrefix(def, "$.type(") || strings.HasPrefix(def, "$.type.") {
		return def
	}

	return "$.type(" + def + ")"
}

// keyword returns the unquoted text of a definition that is a single keyword
// or alias.
func (arkType) keyword(def string) (string, bool) {
	if !arkAlias.MatchString(def) {
		return "", false
	}

	return def[1 : len(def)-1], true
}

func (a arkType) keywords(defs []string) ([]string, bool) {
	out := make([]string, len(defs))

	for i, d := range defs {
		k, ok := a.keyword(d)
		if !ok {
			return nil, false
		}
		out[i] = k
	}

	return out, true
}

var arkBounds = boundMethods{"atLeast", "moreThan", "atMost", "lessThan"}

func (a arkType) render(v *visitor[string], s *model.Schema) string {
	out := a.base(v, s)

	if s.Description != "" {
		out = a.wrap(out) + ".describe(" + jsString(s.Description) + ")"
	}

	return out
}

func (a arkType) base(v *visitor[string], s *model.Schema) string {
	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return jsString("unknown")
	case model.KindNever:
		return jsString("never")
	case model.KindVoid, model.KindUndefined:
		return jsString("undefined")
	case model.KindNull:
		return jsString("null")
	case model.KindBoolean:
		return jsString("boolean")
	case model.KindSymbol:
		return jsString("symbol")
	case model.KindDate:
		return jsString("Date")
	case model.KindBigInt:
		return a.constrained(jsString("bigint"), a.chain(v.numberBounds(s), nil, bigintNumber))
	case model.KindUint8Array:
		return "$.type.instanceOf(Uint8Array)"
	case model.KindPromise:
		return "$.type.instanceOf(Promise)"
	case model.KindFunction, model.KindConstructor:
		return "$.type.instanceOf(Function)"
	case model.KindNumber:
		return a.constrained(jsString("number"), a.chain(v.numberBounds(s), s.MultipleOf, jsNumber))
	case model.KindInteger:
		return a.constrained(jsString("number.integer"), a.chain(v.numberBounds(s), s.MultipleOf, jsNumber))
	case model.KindString:
		return a.constrained(jsString("string"), a.stringChain(s))
	case model.KindTemplateLiteral:
		return "$.type(new RegExp(" + jsString(s.Pattern) + "))"
	case model.KindLiteral:
		return "$.type.unit(" + jsValue(s.Const) + ")"
	case model.KindArray:
		items := v.Visit(s.Items)
		if k, ok := a.keyword(items); ok && s.MinItems == nil && s.MaxItems == nil {
			return jsString(k + "[]")
		}

		out := a.wrap(items) + ".array()"
		if s.MinItems != nil {
			out += fmt.Sprintf(".atLeastLength(%d)", *s.MinItems)
		}
		if s.MaxItems != nil {
			out += fmt.Sprintf(".atMostLength(%d)", *s.MaxItems)
		}
		return out
	case model.KindTuple:
		return "[" + strings.Join(v.visitAll(s.Elements), ", ") + "]"
	case model.KindObject:
		return a.object(v, s)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		switch recordKey(p.Pattern) {
		case "string":
			return jsObject([]option{{key: "[string]", value: v.Visit(p.Schema)}})
		case "number":
			return "$.type.Record(" + jsString("string.integer.parse") + ", " + v.Visit(p.Schema) + ")"
		}

		return "$.type.Record($.type(new RegExp(" + jsString(p.Pattern) + ")), " + v.Visit(p.Schema) + ")"
	case model.KindUnion:
		return a.fold(v.visitAll(s.AnyOf), "or", jsString("never"))
	case model.KindIntersect:
		return a.fold(v.visitAll(s.AllOf), "and", jsString("unknown"))
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func (a arkType) constrained(keyword string, chain string) string {
	if chain == "" {
		return keyword
	}

	return "$.type(" + keyword + ")" + chain
}

func (arkType) chain(bounds []bound, multipleOf *float64, format func(float64) string) string {
	out := chainBounds(bounds, arkBounds, format)

	if multipleOf != nil {
		out += ".divisibleBy(" + format(*multipleOf) + ")"
	}

	return out
}

func (arkType) stringChain(s *model.Schema) string {
	var b strings.Builder

	if s.MinLength != nil {
		fmt.Fprintf(&b, ".atLeastLength(%d)", *s.MinLength)
	}

	if s.MaxLength != nil {
		fmt.Fprintf(&b, ".atMostLength(%d)", *s.MaxLength)
	}

	if s.Pattern != "" {
		fmt.Fprintf(&b, ".and($.type(new RegExp(%s)))", jsString(s.Pattern))
	}

	return b.String()
}

func (a arkType) fold(members []string, method string, empty string) string {
	switch len(members) {
	case 0:
		return empty
	case 1:
		return members[0]
	}

	if method == "or" {
		if keywords, ok := a.keywords(members); ok {
			return jsString(strings.Join(keywords, " | "))
		}
	}

	out := a.wrap(members[0])
	for _, m := range members[1:] {
		out += "." + method + "(" + m + ")"
	}

	return out
}

func (a arkType) object(v *visitor[string], s *model.Schema) string {
	props := make([]option, 0, len(s.Properties)+1)

	if s.Additional == model.AdditionalForbid {
		props = append(props, option{key: "+", value: jsString("reject")})
	}

	for _, p := range s.Properties {
		key := p.Name
		if !s.IsRequired(p.Name) {
			key += "?"
		}

		props = append(props, option{key: key, value: v.Visit(p.Schema)})
	}

	if s.Additional == model.AdditionalSchema {
		props = append(props, option{key: "[string]", value: v.Visit(s.AdditionalSchema)})
	}

	return jsObject(props)
}

// Every declaration is a scope alias, so references resolve whatever the
// order. Inline named nodes have no alias to point back to.
func (arkType) reference(v *visitor[string], name string, target *model.Schema, kind refKind) string {
	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	return jsString(name)
}

func (arkType) sentinel(reason string) string {
	return jsString("never") + " /* unsupported: " + comment(reason) + " */"
}
