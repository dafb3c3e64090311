package gen

import (
	"fmt"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

type typeScript struct{}

func generateTypeScript(m *model.Model, opts Options) (*Result, error) {
	v := newVisitor[string](m, typeScript{}, opts.Bounds(TargetTypeScript))

	blocks := make([]string, 0, len(m.Types))

	for _, d := range v.declarations(m) {
		blocks = append(blocks, docComment(d.Schema, "")+fmt.Sprintf("export type %s = %s", d.Name, d.Body))
	}

	if len(blocks) == 0 {
		return v.result(""), nil
	}

	return v.result(lines(blocks...)), nil
}

// docComment renders the description of s as a JSDoc block followed by a
// newline, or nothing.
func docComment(s *model.Schema, indent string) string {
	if s == nil || s.Description == "" {
		return ""
	}

	text := comment(s.Description)
	if !strings.Contains(text, "\n") {
		return indent + "/** " + text + " */\n"
	}

	var b strings.Builder
	b.WriteString(indent + "/**\n")
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(indent + " * " + line + "\n")
	}
	b.WriteString(indent + " */\n")

	return b.String()
}

func (typeScript) render(v *visitor[string], s *model.Schema) string {
	switch s.Kind {
	case model.KindAny:
		return "any"
	case model.KindUnknown:
		return "unknown"
	case model.KindNever:
		return "never"
	case model.KindVoid:
		return "void"
	case model.KindNull:
		return "null"
	case model.KindUndefined:
		return "undefined"
	case model.KindBoolean:
		return "boolean"
	case model.KindNumber, model.KindInteger:
		return "number"
	case model.KindBigInt:
		return "bigint"
	case model.KindString, model.KindTemplateLiteral:
		return "string"
	case model.KindSymbol:
		return "symbol"
	case model.KindDate:
		return "Date"
	case model.KindUint8Array:
		return "Uint8Array"
	case model.KindLiteral:
		return jsValue(s.Const)
	case model.KindArray:
		items := v.Visit(s.Items)
		if needsParens(s.Items) {
			items = "(" + items + ")"
		}
		if s.Readonly {
			return "readonly " + items + "[]"
		}
		return items + "[]"
	case model.KindPromise:
		return "Promise<" + v.Visit(s.Items) + ">"
	case model.KindTuple:
		return "[" + strings.Join(v.visitAll(s.Elements), ", ") + "]"
	case model.KindObject:
		return tsObject(v, s)
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		switch recordKey(p.Pattern) {
		case "string":
			return "Record<string, " + v.Visit(p.Schema) + ">"
		case "number":
			return "Record<number, " + v.Visit(p.Schema) + ">"
		}

		return v.unsupportedf("record key pattern %s", p.Pattern)
	case model.KindUnion:
		return joinTypes(v, s.AnyOf, " | ", "never")
	case model.KindIntersect:
		return joinTypes(v, s.AllOf, " & ", "unknown")
	case model.KindFunction, model.KindConstructor:
		params := make([]string, len(s.Parameters))
		for i, p := range s.Parameters {
			params[i] = fmt.Sprintf("arg%d: %s", i, v.Visit(p))
		}

		out := "(" + strings.Join(params, ", ") + ") => " + v.Visit(s.Returns)
		if s.Kind == model.KindConstructor {
			out = "new " + out
		}
		return out
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func needsParens(s *model.Schema) bool {
	if s == nil {
		return false
	}

	switch s.Kind {
	case model.KindUnion, model.KindIntersect, model.KindFunction, model.KindConstructor:
		return len(s.AnyOf) != 1 && len(s.AllOf) != 1
	}

	return false
}

func joinTypes(v *visitor[string], schemas []*model.Schema, sep string, empty string) string {
	if len(schemas) == 0 {
		return empty
	}

	parts := make([]string, len(schemas))
	for i, s := range schemas {
		parts[i] = v.Visit(s)
		if needsParens(s) {
			parts[i] = "(" + parts[i] + ")"
		}
	}

	return strings.Join(parts, sep)
}

func tsObject(v *visitor[string], s *model.Schema) string {
	if len(s.Properties) == 0 && s.Additional != model.AdditionalSchema {
		return "{}"
	}

	var b strings.Builder
	b.WriteString("{\n")

	for _, p := range s.Properties {
		b.WriteString(docComment(p.Schema, "  "))
		b.WriteString("  ")

		if p.Readonly {
			b.WriteString("readonly ")
		}

		b.WriteString(jsKey(p.Name))
		if !s.IsRequired(p.Name) {
			b.WriteString("?")
		}

		b.WriteString(": " + v.Visit(p.Schema) + "\n")
	}

	if s.Additional == model.AdditionalSchema {
		b.WriteString("  [key: string]: " + v.Visit(s.AdditionalSchema) + "\n")
	}

	b.WriteString("}")

	return b.String()
}

// Type aliases are hoisted, so references never need a lazy form. A cycle
// through a nested named node has no alias to point at.
func (typeScript) reference(v *visitor[string], name string, target *model.Schema, kind refKind) string {
	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	return name
}

func (typeScript) sentinel(reason string) string {
	return "never /* unsupported: " + comment(reason) + " */"
}
