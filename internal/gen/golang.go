package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ref"
)

const (
	defaultGoPackage = "types"

	idReceiver     = "v"
	idFuncValidate = "Validate"
)

// goTypes renders Go type expressions. Declarations, json tags and
// Validate methods are generated around it.
type goTypes struct{}

func generateGo(m *model.Model, opts Options) (*Result, error) {
	pkg := opts.GoPackage
	if pkg == "" {
		pkg = defaultGoPackage
	}

	v := newVisitor[jen.Code](m, goTypes{}, opts.Bounds(TargetGo))
	f := jen.NewFile(pkg)

	for i, t := range m.Types {
		name := declarationName(i, t)
		v.state.Enter(name, t)
		genDeclaration(f, v, name, t)
		v.state.Leave()
		v.state.MarkEmitted(name)
	}

	var b strings.Builder
	if err := f.Render(&b); err != nil {
		return nil, errors.Wrap(err, "failed to render go source")
	}

	return v.result(b.String()), nil
}

func genDeclaration(f *jen.File, v *visitor[jen.Code], name string, s *model.Schema) {
	if s.Description != "" {
		f.Comment(name + " " + firstLower(s.Description))
	}

	switch {
	case s.Kind == model.KindObject && !s.HasFunctions():
		genStruct(f, v, name, s.Properties, s.Required, s.Additional == model.AdditionalSchema, s.AdditionalSchema)
		genValidate(f, v, name, s)
	case s.Kind == model.KindObject:
		genInterface(f, v, name, s)
	case s.Kind == model.KindIntersect:
		genEmbedding(f, v, name, s)
	case isEnum(s):
		genEnum(f, name, s)
	default:
		f.Type().Id(name).Add(v.dispatch(s))
	}

	f.Empty()
}

func genStruct(f *jen.File, v *visitor[jen.Code], name string, props []model.Property, required []string, rest bool, restSchema *model.Schema) {
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, p := range props {
			genField(g, v, p, slices.Contains(required, p.Name))
		}

		if rest {
			g.Id("Extra").Map(jen.String()).Add(v.Visit(restSchema)).Tag(map[string]string{"json": "-"})
		}
	})
}

func genField(g *jen.Group, v *visitor[jen.Code], p model.Property, required bool) {
	tag := p.Name
	typ := v.Visit(p.Schema)

	if !required {
		tag += ",omitempty"
		if !nilable(v, p.Schema) {
			typ = jen.Op("*").Add(typ)
		}
	}

	if p.Schema != nil && p.Schema.Description != "" {
		g.Comment(p.Schema.Description)
	}

	g.Id(pascal(p.Name)).Add(typ).Tag(map[string]string{"json": tag})
}

// isNilable is true for schemas whose Go form already has a nil value.
func isNilable(s *model.Schema) bool {
	if s == nil {
		return true
	}

	switch s.Kind {
	case model.KindArray, model.KindTuple, model.KindRecord, model.KindAny, model.KindUnknown, model.KindFunction, model.KindUint8Array, model.KindBigInt:
		return true
	case model.KindUnion:
		return len(nonNull(s.AnyOf)) != 1
	}

	return false
}

// nilable extends isNilable to the forms the visitor chooses: cycles render
// as pointers and a reference takes on the nil value of its target.
func nilable(v *visitor[jen.Code], s *model.Schema) bool {
	seen := make(map[string]bool)

	for s != nil {
		if s.ID != "" && v.state.InProgress(s.ID) {
			return true
		}

		switch s.Kind {
		case model.KindThis, model.KindUnresolved:
			return true
		case model.KindUnion:
			return len(nonNull(s.AnyOf)) == 1 || !isEnum(s)
		case model.KindRef:
			name := ref.Name(s.Ref)
			if v.state.InProgress(name) || seen[name] {
				return true
			}
			seen[name] = true

			target, ok := v.state.Resolve(name)
			if !ok {
				return true
			}
			s = target
			continue
		}

		return isNilable(s)
	}

	return true
}

func genInterface(f *jen.File, v *visitor[jen.Code], name string, s *model.Schema) {
	f.Type().Id(name).InterfaceFunc(func(g *jen.Group) {
		for _, p := range s.Properties {
			if p.Schema == nil || p.Schema.Kind != model.KindFunction {
				v.degradef("interface %s property %s is not a method", name, p.Name)
				continue
			}

			g.Id(pascal(p.Name)).Add(genSignature(v, p.Schema))
		}
	})
}

func genSignature(v *visitor[jen.Code], s *model.Schema) jen.Code {
	params := make([]jen.Code, 0, len(s.Parameters)+1)
	params = append(params, jen.Id("ctx").Qual("context", "Context"))

	for i, p := range s.Parameters {
		params = append(params, jen.Id(fmt.Sprintf("arg%d", i)).Add(v.Visit(p)))
	}

	returns := s.Returns
	if returns != nil && returns.Kind == model.KindPromise {
		returns = returns.Items
	}

	if returns == nil || returns.Kind == model.KindVoid || returns.Kind == model.KindUndefined {
		return jen.Params(params...).Error()
	}

	return jen.Params(params...).Params(v.Visit(returns), jen.Error())
}

// genEmbedding renders an intersection as a struct embedding each named
// member. Inline object members contribute their fields directly.
func genEmbedding(f *jen.File, v *visitor[jen.Code], name string, s *model.Schema) {
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, m := range s.AllOf {
			switch {
			case m == nil:
			case m.Kind == model.KindRef:
				g.Add(v.Visit(m))
			case m.Kind == model.KindObject:
				for _, p := range m.Properties {
					genField(g, v, p, m.IsRequired(p.Name))
				}
			default:
				v.degradef("intersection member %s is not an object", m.Kind)
			}
		}
	})
}

func genEnum(f *jen.File, name string, s *model.Schema) {
	f.Type().Id(name).String()
	f.Empty()
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, m := range s.AnyOf {
			value := m.Const.(string)
			g.Id(name + pascal(value)).Id(name).Op("=").Lit(value)
		}
	})
}

func genValidate(f *jen.File, v *visitor[jen.Code], name string, s *model.Schema) {
	checks := make([]jen.Code, 0)

	for _, p := range s.Properties {
		if p.Schema == nil {
			continue
		}

		field := jen.Id(idReceiver).Dot(pascal(p.Name))
		optional := !s.IsRequired(p.Name) && !nilable(v, p.Schema)

		for _, c := range fieldConditions(v, p.Schema) {
			value := field.Clone()
			if optional {
				value = jen.Op("*").Add(field.Clone())
			}

			cond := c.cond(value)
			if optional {
				cond = field.Clone().Op("!=").Nil().Op("&&").Add(cond)
			}

			checks = append(checks, jen.If(cond).Block(
				jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit(p.Name+": "+c.message))),
			))
		}
	}

	if len(checks) == 0 {
		return
	}

	f.Empty()
	f.Func().Params(jen.Id(idReceiver).Id(name)).Id(idFuncValidate).Params().Error().BlockFunc(func(g *jen.Group) {
		for _, c := range checks {
			g.Add(c)
		}
		g.Return(jen.Nil())
	})
}

type condition struct {
	// cond builds the expression that is true when the value is invalid.
	cond    func(value *jen.Statement) *jen.Statement
	message string
}

func fieldConditions(v *visitor[jen.Code], s *model.Schema) []condition {
	out := make([]condition, 0)

	switch s.Kind {
	case model.KindNumber, model.KindInteger:
		// Each bound is violated by the opposite comparison.
		violated := [...]string{"<", "<=", ">", ">="}
		names := [...]string{">=", ">", "<=", "<"}

		for _, b := range v.numberBounds(s) {
			op, limit := violated[b.op], b.value
			out = append(out, condition{
				cond:    func(value *jen.Statement) *jen.Statement { return value.Op(op).Lit(goNumber(s.Kind, limit)) },
				message: fmt.Sprintf("must be %s %s", names[b.op], jsNumber(limit)),
			})
		}
	case model.KindString:
		if s.MinLength != nil {
			n := *s.MinLength
			out = append(out, condition{
				cond:    func(value *jen.Statement) *jen.Statement { return jen.Len(value).Op("<").Lit(n) },
				message: fmt.Sprintf("must be at least %d characters", n),
			})
		}
		if s.MaxLength != nil {
			n := *s.MaxLength
			out = append(out, condition{
				cond:    func(value *jen.Statement) *jen.Statement { return jen.Len(value).Op(">").Lit(n) },
				message: fmt.Sprintf("must be at most %d characters", n),
			})
		}
		if s.Pattern != "" {
			pattern := s.Pattern
			out = append(out, condition{
				cond: func(value *jen.Statement) *jen.Statement {
					return jen.Op("!").Qual("regexp", "MustCompile").Call(jen.Lit(pattern)).Dot("MatchString").Call(value)
				},
				message: "must match " + pattern,
			})
		}
	}

	return out
}

func goNumber(kind model.Kind, f float64) any {
	if kind == model.KindInteger && f == float64(int64(f)) {
		return int64(f)
	}

	return f
}

func (goTypes) render(v *visitor[jen.Code], s *model.Schema) jen.Code {
	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return jen.Id("any")
	case model.KindNull, model.KindVoid, model.KindUndefined:
		return jen.Struct()
	case model.KindBoolean:
		return jen.Bool()
	case model.KindNumber:
		return jen.Float64()
	case model.KindInteger:
		return jen.Int64()
	case model.KindBigInt:
		return jen.Op("*").Qual("math/big", "Int")
	case model.KindString, model.KindTemplateLiteral:
		return jen.String()
	case model.KindDate:
		return jen.Qual("time", "Time")
	case model.KindUint8Array:
		return jen.Index().Byte()
	case model.KindLiteral:
		switch s.Const.(type) {
		case string:
			return jen.String()
		case bool:
			return jen.Bool()
		case float64:
			return jen.Float64()
		}
		return jen.Id("any")
	case model.KindArray:
		return jen.Index().Add(v.Visit(s.Items))
	case model.KindTuple:
		return jen.Index().Id("any")
	case model.KindObject:
		return jen.StructFunc(func(g *jen.Group) {
			for _, p := range s.Properties {
				genField(g, v, p, s.IsRequired(p.Name))
			}
		})
	case model.KindRecord:
		p, ok := v.singleRecord(s)
		if !ok {
			return v.unsupportedf("record with %d key patterns", len(s.PatternProperties))
		}

		key := jen.String()
		if recordKey(p.Pattern) == "number" {
			key = jen.Int64()
		}
		return jen.Map(key).Add(v.Visit(p.Schema))
	case model.KindUnion:
		members := nonNull(s.AnyOf)
		if len(members) == 1 {
			typ := v.Visit(members[0])
			if nilable(v, members[0]) {
				return typ
			}
			return jen.Op("*").Add(typ)
		}

		if isEnum(s) {
			return jen.String()
		}

		v.degradef("union of %d members rendered as any", len(members))
		return jen.Id("any")
	case model.KindIntersect:
		return jen.StructFunc(func(g *jen.Group) {
			for _, m := range s.AllOf {
				switch {
				case m != nil && m.Kind == model.KindObject:
					for _, p := range m.Properties {
						genField(g, v, p, m.IsRequired(p.Name))
					}
				default:
					g.Add(v.Visit(m))
				}
			}
		})
	case model.KindFunction:
		return jen.Func().Add(genSignature(v, s))
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func nonNull(schemas []*model.Schema) []*model.Schema {
	out := make([]*model.Schema, 0, len(schemas))
	for _, s := range schemas {
		if s != nil && (s.Kind == model.KindNull || s.Kind == model.KindUndefined) {
			continue
		}
		out = append(out, s)
	}

	return out
}

// A struct can only contain itself through a pointer.
func (goTypes) reference(v *visitor[jen.Code], name string, target *model.Schema, kind refKind) jen.Code {
	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	if kind == refCycle {
		return jen.Op("*").Id(name)
	}

	return jen.Id(name)
}

func (goTypes) sentinel(reason string) jen.Code {
	return jen.Id("any").Comment("/* unsupported: " + comment(reason) + " */")
}

func firstLower(s string) string {
	if s == "" {
		return s
	}

	return strings.ToLower(s[0:1]) + s[1:]
}
