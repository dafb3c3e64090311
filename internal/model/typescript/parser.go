// Package typescript reads the type-level subset of TypeScript into a schema
// model. Declarations it can parse but not model become Unresolved nodes, so a
// single exotic type never fails the whole file.
package typescript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

type declaration struct {
	name    string
	start   int
	doc     string
	schema  *model.Schema
	parsing bool
}

type parser struct {
	src     string
	tokens  []token
	pos     int
	err     *ParseError
	decls   []*declaration
	byName  map[string]*declaration
	current []string
	scopes  []map[string]bool
}

// Parse reads every type, interface and enum declaration of source into a
// model, in declaration order.
func Parse(source string) (*model.Model, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}

	p := &parser{
		src:    source,
		tokens: tokens,
		byName: make(map[string]*declaration),
	}

	p.index()
	if p.err != nil {
		return nil, p.err
	}

	m := &model.Model{Types: make([]*model.Schema, 0, len(p.decls))}

	for _, d := range p.decls {
		s := p.declaration(d)
		if p.err != nil {
			return nil, p.err
		}

		m.Types = append(m.Types, s)
	}

	return m, nil
}

// index records where each top-level declaration starts without parsing its
// body, so that references to later declarations can be resolved on demand.
func (p *parser) index() {
	doc := ""

	for p.ok() && p.peek().kind != tokEOF {
		t := p.peek()
		if t.doc != "" {
			doc = t.doc
		}

		switch {
		case t.is(";"):
			p.next()
		case t.isWord("import"):
			p.skipStatement()
			doc = ""
		case t.isWord("export") && (p.peekAt(1).is("{") || p.peekAt(1).is("*")),
			t.isWord("export") && p.peekAt(1).isWord("type") && p.peekAt(2).is("{"):
			p.skipStatement()
			doc = ""
		case t.isWord("export"), t.isWord("declare"), t.isWord("default"):
			p.next()
		case p.startsDeclaration(0):
			d := &declaration{start: p.pos, doc: doc}
			d.name = p.declarationName()
			doc = ""

			if d.name == "" {
				return
			}

			if _, exists := p.byName[d.name]; exists {
				p.fail(t, "duplicate declaration %s", d.name)
				return
			}

			p.skipStatement()
			p.decls = append(p.decls, d)
			p.byName[d.name] = d
		default:
			p.fail(t, "unexpected %s", t)
		}
	}
}

func (p *parser) startsDeclaration(offset int) bool {
	t := p.peekAt(offset)
	next := p.peekAt(offset + 1)

	switch {
	case t.isWord("type"), t.isWord("interface"), t.isWord("enum"):
		return next.kind == tokIdent
	case t.isWord("const"):
		return next.isWord("enum")
	}

	return false
}

func (p *parser) startsStatement(offset int) bool {
	t := p.peekAt(offset)

	switch {
	case t.isWord("export"), t.isWord("declare"), t.isWord("import"):
		return true
	case t.isWord("const"), t.isWord("let"), t.isWord("var"), t.isWord("function"), t.isWord("class"), t.isWord("namespace"):
		return true
	}

	return p.startsDeclaration(offset)
}

func (p *parser) declarationName() string {
	offset := 1
	if p.peek().isWord("const") {
		offset = 2
	}

	t := p.peekAt(offset)
	if t.kind != tokIdent {
		p.fail(t, "expected a declaration name, found %s", t)
		return ""
	}

	return t.value
}

// skipStatement moves past one statement: up to a semicolon or the start of
// the next statement at bracket depth zero.
func (p *parser) skipStatement() {
	start := p.pos
	depth := 0
	p.next()

	for p.ok() {
		t := p.peek()

		switch {
		case t.kind == tokEOF:
			if depth > 0 {
				p.fail(t, "unbalanced brackets in statement starting at line %d", p.tokens[start].line)
			}
			return
		case depth == 0 && t.is(";"):
			p.next()
			return
		case depth == 0 && p.startsStatement(0):
			return
		case t.is("{"), t.is("("), t.is("["), t.is("<"):
			depth += 1
		case t.is("}"), t.is(")"), t.is("]"), t.is(">"):
			depth -= 1
			if depth < 0 {
				p.fail(t, "unexpected %s", t)
				return
			}
		}

		p.next()
	}
}

func (p *parser) declaration(d *declaration) *model.Schema {
	if d.schema != nil {
		return d.schema
	}

	if d.parsing {
		return nil
	}

	d.parsing = true
	saved := p.pos
	p.pos = d.start
	p.current = append(p.current, d.name)

	s := p.parseDeclaration()
	s.Named(d.name)
	parseDoc(d.doc).apply(s)

	p.current = p.current[:len(p.current)-1]
	p.pos = saved
	d.parsing = false
	d.schema = s

	return s
}

func (p *parser) parseDeclaration() *model.Schema {
	kw := p.next()

	switch kw.value {
	case "const":
		p.next()
		return p.enum()
	case "enum":
		return p.enum()
	case "type":
		p.next()
		pop := p.typeParams()
		defer pop()

		p.expect("=")
		s := p.parseType()
		p.accept(";")
		return s
	case "interface":
		p.next()
		pop := p.typeParams()
		defer pop()

		heritage := make([]*model.Schema, 0)
		if p.acceptWord("extends") {
			for p.ok() {
				heritage = append(heritage, p.primary())
				if !p.accept(",") {
					break
				}
			}
		}

		body := p.objectType()
		if len(heritage) == 0 {
			return body
		}

		return model.Intersect(append(heritage, body)...)
	}

	p.fail(kw, "unexpected %s", kw)
	return model.Never()
}

func (p *parser) enum() *model.Schema {
	p.next()
	p.expect("{")

	members := make([]*model.Schema, 0)
	next := 0.0

	for p.ok() && !p.peek().is("}") {
		name := p.next()
		if name.kind != tokIdent && name.kind != tokString {
			p.fail(name, "expected an enum member, found %s", name)
			break
		}

		if p.accept("=") {
			v := p.next()
			switch {
			case v.kind == tokString:
				members = append(members, model.Literal(v.value))
			case v.kind == tokNumber:
				n := p.number(v)
				members = append(members, model.Literal(n))
				next = n + 1
			case v.is("-"):
				n := -p.number(p.next())
				members = append(members, model.Literal(n))
				next = n + 1
			default:
				p.fail(v, "unsupported enum initializer %s", v)
			}
		} else {
			members = append(members, model.Literal(next))
			next += 1
		}

		if !p.accept(",") {
			break
		}
	}

	p.expect("}")

	switch len(members) {
	case 0:
		return model.Never()
	case 1:
		return members[0]
	}

	return model.Union(members...)
}

func (p *parser) parseType() *model.Schema {
	start := p.peek().start
	s := p.union()

	if p.peek().isWord("extends") {
		p.next()
		p.union()
		p.expect("?")
		p.parseType()
		p.expect(":")
		p.parseType()
		return model.Unresolved(p.source(start))
	}

	return s
}

func (p *parser) union() *model.Schema {
	p.accept("|")
	members := []*model.Schema{p.intersection()}

	for p.ok() && p.accept("|") {
		members = append(members, p.intersection())
	}

	if len(members) == 1 {
		return members[0]
	}

	return model.Union(members...)
}

func (p *parser) intersection() *model.Schema {
	p.accept("&")
	members := []*model.Schema{p.postfix()}

	for p.ok() && p.accept("&") {
		members = append(members, p.postfix())
	}

	if len(members) == 1 {
		return members[0]
	}

	return model.Intersect(members...)
}

func (p *parser) postfix() *model.Schema {
	start := p.peek().start
	s := p.primary()

	for p.ok() && p.peek().is("[") {
		p.next()

		if p.accept("]") {
			s = model.Array(s)
			continue
		}

		p.parseType()
		p.expect("]")
		s = model.Unresolved(p.source(start))
	}

	return s
}

func (p *parser) primary() *model.Schema {
	t := p.peek()

	switch {
	case t.is("("):
		if p.isFunctionType() {
			return p.functionType(model.Function)
		}

		p.next()
		s := p.parseType()
		p.expect(")")
		return s
	case t.is("<"):
		pop := p.typeParams()
		defer pop()
		return p.functionType(model.Function)
	case t.isWord("new") && (p.peekAt(1).is("(") || p.peekAt(1).is("<")):
		p.next()
		pop := p.typeParams()
		defer pop()
		return p.functionType(model.Constructor)
	case t.is("{"):
		return p.objectType()
	case t.is("["):
		return p.tuple()
	case t.kind == tokString:
		p.next()
		return model.Literal(t.value)
	case t.kind == tokNumber:
		p.next()
		return model.Literal(p.number(t))
	case t.kind == tokBigInt:
		p.next()
		return model.BigInt()
	case t.is("-"):
		p.next()
		n := p.next()
		if n.kind == tokBigInt {
			return model.BigInt()
		}
		return model.Literal(-p.number(n))
	case t.kind == tokTemplate:
		p.next()
		return p.template(t)
	case t.kind == tokIdent:
		return p.named()
	}

	p.fail(t, "expected a type, found %s", t)
	p.next()
	return model.Never()
}

func (p *parser) number(t token) float64 {
	if t.kind != tokNumber {
		p.fail(t, "expected a number, found %s", t)
		return 0
	}

	if f, err := strconv.ParseFloat(t.value, 64); err == nil {
		return f
	}

	if i, err := strconv.ParseInt(t.value, 0, 64); err == nil {
		return float64(i)
	}

	p.fail(t, "invalid number %s", t.value)
	return 0
}

// isFunctionType looks past the parenthesised group at the current position
// for an arrow.
func (p *parser) isFunctionType() bool {
	depth := 0

	for i := p.pos; i < len(p.tokens); i++ {
		t := p.tokens[i]

		switch {
		case t.kind == tokEOF:
			return false
		case t.is("(") || t.is("[") || t.is("{"):
			depth += 1
		case t.is(")") || t.is("]") || t.is("}"):
			depth -= 1
			if depth == 0 {
				return i+1 < len(p.tokens) && p.tokens[i+1].is("=>")
			}
		}
	}

	return false
}

func (p *parser) functionType(build func([]*model.Schema, *model.Schema) *model.Schema) *model.Schema {
	params := p.parameters()
	p.expect("=>")
	return build(params, p.parseType())
}

func (p *parser) parameters() []*model.Schema {
	p.expect("(")
	params := make([]*model.Schema, 0)

	for p.ok() && !p.peek().is(")") {
		rest := p.accept("...")

		name := p.next()
		if name.kind != tokIdent {
			p.fail(name, "expected a parameter name, found %s", name)
			break
		}

		optional := p.accept("?")

		param := model.Any()
		if p.accept(":") {
			param = p.parseType()
		}

		if rest && param.Kind != model.KindArray {
			param = model.Array(param)
		}

		if optional && !rest {
			param = model.Union(param, model.Undefined())
		}

		if name.value != "this" {
			params = append(params, param)
		}

		if !p.accept(",") {
			break
		}
	}

	p.expect(")")
	return params
}

func (p *parser) tuple() *model.Schema {
	start := p.peek().start
	p.expect("[")

	elements := make([]*model.Schema, 0)
	unresolved := false

	for p.ok() && !p.peek().is("]") {
		if p.accept("...") {
			unresolved = true
		}

		if p.peek().kind == tokIdent && (p.peekAt(1).is(":") || (p.peekAt(1).is("?") && p.peekAt(2).is(":"))) {
			p.next()
			if p.accept("?") {
				unresolved = true
			}
			p.expect(":")
		}

		elements = append(elements, p.parseType())

		if p.accept("?") {
			unresolved = true
		}

		if !p.accept(",") {
			break
		}
	}

	p.expect("]")

	if unresolved {
		return model.Unresolved(p.source(start))
	}

	return model.Tuple(elements...)
}

func (p *parser) objectType() *model.Schema {
	start := p.peek().start
	p.expect("{")

	if p.isMappedType() {
		p.skipBalanced("{", "}")
		return model.Unresolved(p.source(start))
	}

	props := make([]model.Property, 0)
	required := make([]string, 0)
	patterns := make([]model.PatternProperty, 0)
	callable := false

	for p.ok() && !p.peek().is("}") {
		m := p.peek()
		doc := parseDoc(m.doc)

		readonly := false
		if m.isWord("readonly") && !isMemberEnd(p.peekAt(1)) {
			readonly = true
			p.next()
		}

		switch {
		case p.peek().is("["):
			if pattern, ok := p.indexSignature(); ok {
				doc.apply(pattern.Schema)
				patterns = append(patterns, pattern)
			}
		case p.peek().is("(") || p.peek().is("<"):
			p.signature()
			callable = true
		case p.peek().isWord("new") && (p.peekAt(1).is("(") || p.peekAt(1).is("<")):
			p.next()
			p.signature()
			callable = true
		default:
			name := p.next()
			if name.kind != tokIdent && name.kind != tokString && name.kind != tokNumber {
				p.fail(name, "expected a property name, found %s", name)
				break
			}

			optional := p.accept("?")

			var schema *model.Schema
			if p.peek().is("(") || p.peek().is("<") {
				schema = p.signature()
			} else {
				p.expect(":")
				schema = p.parseType()
			}

			doc.apply(schema)
			props = append(props, model.Property{Name: name.value, Schema: schema, Readonly: readonly})

			if !optional {
				required = append(required, name.value)
			}
		}

		if !p.accept(";") {
			p.accept(",")
		}
	}

	p.expect("}")

	// Call and construct signatures make the object callable, which the
	// model has no form for.
	if callable {
		return model.Unresolved(p.source(start))
	}

	if len(props) == 0 && len(patterns) > 0 {
		return &model.Schema{Kind: model.KindRecord, PatternProperties: patterns}
	}

	s := &model.Schema{Kind: model.KindObject, Properties: props, Required: required}

	switch len(patterns) {
	case 0:
	case 1:
		s.Additional = model.AdditionalSchema
		s.AdditionalSchema = patterns[0].Schema
	default:
		s.Additional = model.AdditionalSchema
		s.AdditionalSchema = model.Unresolved(p.source(start))
	}

	return s
}

func isMemberEnd(t token) bool {
	return t.is(":") || t.is("?") || t.is("(") || t.is(";") || t.is(",") || t.is("}")
}

func (p *parser) isMappedType() bool {
	offset := 0
	if p.peek().isWord("readonly") || p.peek().is("+") || p.peek().is("-") {
		offset = 1
		if p.peekAt(1).isWord("readonly") {
			offset = 2
		}
	}

	return p.peekAt(offset).is("[") && p.peekAt(offset+1).kind == tokIdent && p.peekAt(offset+2).isWord("in")
}

// skipBalanced consumes tokens up to and including the close token that
// matches an open token already consumed.
func (p *parser) skipBalanced(open, close string) {
	depth := 1

	for p.ok() {
		t := p.next()

		switch {
		case t.kind == tokEOF:
			p.fail(t, "expected %q, found %s", close, t)
			return
		case t.is(open):
			depth += 1
		case t.is(close):
			depth -= 1
			if depth == 0 {
				return
			}
		}
	}
}

func (p *parser) indexSignature() (model.PatternProperty, bool) {
	start := p.peek().start
	p.expect("[")

	if p.peek().kind != tokIdent || !p.peekAt(1).is(":") {
		// Computed key such as [Symbol.iterator]. It has no schema form.
		p.skipBalanced("[", "]")
		p.accept("?")
		if p.peek().is("(") {
			p.signature()
		} else if p.accept(":") {
			p.parseType()
		}
		return model.PatternProperty{}, false
	}

	p.next()
	p.expect(":")
	key := p.parseType()
	p.expect("]")
	p.expect(":")
	value := p.parseType()

	pattern, ok := keyPattern(key)
	if !ok {
		return model.PatternProperty{Pattern: model.PatternStringKey, Schema: model.Unresolved(p.source(start))}, true
	}

	return model.PatternProperty{Pattern: pattern, Schema: value}, true
}

func keyPattern(key *model.Schema) (string, bool) {
	switch key.Kind {
	case model.KindString:
		return model.PatternStringKey, true
	case model.KindNumber, model.KindInteger:
		return model.PatternNumberKey, true
	case model.KindTemplateLiteral:
		return key.Pattern, true
	}

	return "", false
}

// signature parses a call or method signature into a function schema.
func (p *parser) signature() *model.Schema {
	pop := p.typeParams()
	defer pop()

	params := p.parameters()
	returns := model.Any()

	if p.accept(":") {
		returns = p.parseType()
	}

	return model.Function(params, returns)
}

// typeParams parses an optional type parameter list and opens a scope for its
// names. The returned function closes the scope.
func (p *parser) typeParams() func() {
	if !p.peek().is("<") {
		return func() {}
	}

	scope := make(map[string]bool)
	p.scopes = append(p.scopes, scope)
	p.next()

	for p.ok() && !p.peek().is(">") {
		p.acceptWord("const")
		p.acceptWord("in")
		p.acceptWord("out")

		name := p.next()
		if name.kind != tokIdent {
			p.fail(name, "expected a type parameter, found %s", name)
			break
		}

		scope[name.value] = true

		if p.acceptWord("extends") {
			p.parseType()
		}

		if p.accept("=") {
			p.parseType()
		}

		if !p.accept(",") {
			break
		}
	}

	p.expect(">")

	return func() {
		p.scopes = p.scopes[:len(p.scopes)-1]
	}
}

func (p *parser) typeArgs() []*model.Schema {
	args := make([]*model.Schema, 0)

	if !p.accept("<") {
		return args
	}

	for p.ok() && !p.peek().is(">") {
		args = append(args, p.parseType())
		if !p.accept(",") {
			break
		}
	}

	p.expect(">")
	return args
}

func (p *parser) inScope(name string) bool {
	for _, s := range p.scopes {
		if s[name] {
			return true
		}
	}

	return false
}

func (p *parser) named() *model.Schema {
	start := p.peek().start
	t := p.next()

	switch t.value {
	case "any":
		return model.Any()
	case "unknown":
		return model.Unknown()
	case "never":
		return model.Never()
	case "void":
		return model.Void()
	case "null":
		return model.Null()
	case "undefined":
		return model.Undefined()
	case "boolean":
		return model.Boolean()
	case "number":
		return model.Number()
	case "string":
		return model.String()
	case "bigint":
		return model.BigInt()
	case "symbol":
		return model.Symbol()
	case "object":
		return &model.Schema{Kind: model.KindObject}
	case "true":
		return model.Literal(true)
	case "false":
		return model.Literal(false)
	case "this":
		return p.this()
	case "keyof":
		return p.keyof(p.postfix(), start)
	case "readonly":
		s := p.postfix()
		s.Readonly = true
		return s
	case "unique":
		p.expectWord("symbol")
		return model.Symbol()
	case "typeof", "infer":
		p.next()
		for p.ok() && p.accept(".") {
			p.next()
		}
		return model.Unresolved(p.source(start))
	}

	name := t.value
	qualified := false

	for p.ok() && p.peek().is(".") {
		p.next()
		part := p.next()
		name += "." + part.value
		qualified = true
	}

	args := p.typeArgs()

	switch {
	case qualified:
		return model.Unresolved(p.source(start))
	case p.inScope(name):
		return model.Unresolved(p.source(start))
	}

	if s, ok := p.builtin(name, args, start); ok {
		return s
	}

	if len(args) > 0 {
		return model.Unresolved(p.source(start))
	}

	if len(p.current) > 0 && p.current[len(p.current)-1] == name {
		return model.This(name)
	}

	return model.Ref(name)
}

func (p *parser) this() *model.Schema {
	if len(p.current) == 0 {
		return model.Unresolved("this")
	}

	return model.This(p.current[len(p.current)-1])
}

func (p *parser) builtin(name string, args []*model.Schema, start int) (*model.Schema, bool) {
	switch {
	case name == "Date" && len(args) == 0:
		return model.Date(), true
	case name == "Uint8Array" && len(args) == 0:
		return model.Uint8Array(), true
	case (name == "Array" || name == "ReadonlyArray") && len(args) == 1:
		return model.Array(args[0]), true
	case name == "Promise" && len(args) == 1:
		return model.Promise(args[0]), true
	case name == "Record" && len(args) == 2:
		return p.record(args[0], args[1], start), true
	case name == "Partial" && len(args) == 1:
		return p.utility(args[0], start, func(o *model.Schema) {
			o.Required = make([]string, 0)
		}), true
	case name == "Required" && len(args) == 1:
		return p.utility(args[0], start, func(o *model.Schema) {
			o.Required = make([]string, 0, len(o.Properties))
			for _, prop := range o.Properties {
				o.Required = append(o.Required, prop.Name)
			}
		}), true
	case name == "Readonly" && len(args) == 1:
		return p.utility(args[0], start, func(o *model.Schema) {
			for i := range o.Properties {
				o.Properties[i].Readonly = true
			}
		}), true
	case (name == "Pick" || name == "Omit") && len(args) == 2:
		keys, ok := literalKeys(args[1])
		if !ok {
			return model.Unresolved(p.source(start)), true
		}

		keep := name == "Pick"
		return p.utility(args[0], start, func(o *model.Schema) {
			props := make([]model.Property, 0, len(o.Properties))
			required := make([]string, 0, len(o.Required))

			for _, prop := range o.Properties {
				if contains(keys, prop.Name) == keep {
					props = append(props, prop)
					if o.IsRequired(prop.Name) {
						required = append(required, prop.Name)
					}
				}
			}

			o.Properties = props
			o.Required = required
		}), true
	}

	return nil, false
}

func (p *parser) record(key, value *model.Schema, start int) *model.Schema {
	if pattern, ok := keyPattern(key); ok {
		return model.Record(pattern, value)
	}

	keys, ok := literalKeys(key)
	if !ok {
		return model.Unresolved(p.source(start))
	}

	props := make([]model.Property, 0, len(keys))
	for _, k := range keys {
		props = append(props, model.Prop(k, value.Clone()))
	}

	return model.Object(props...)
}

func (p *parser) utility(operand *model.Schema, start int, transform func(*model.Schema)) *model.Schema {
	o := p.objectOf(operand)
	if o == nil {
		return model.Unresolved(p.source(start))
	}

	transform(o)
	return o
}

func (p *parser) keyof(operand *model.Schema, start int) *model.Schema {
	o := p.objectOf(operand)
	if o == nil {
		return model.Unresolved(p.source(start))
	}

	keys := make([]*model.Schema, 0, len(o.Properties))
	for _, prop := range o.Properties {
		keys = append(keys, model.Literal(prop.Name))
	}

	switch len(keys) {
	case 0:
		return model.Never()
	case 1:
		return keys[0]
	}

	return model.Union(keys...)
}

// objectOf returns a fresh copy of the object an operand denotes, following
// references to other declarations and merging intersections. It returns nil
// when the operand is not object shaped.
func (p *parser) objectOf(s *model.Schema) *model.Schema {
	switch s.Kind {
	case model.KindObject:
		o := s.Clone()
		o.ID = ""
		return o
	case model.KindRef, model.KindThis:
		d, ok := p.byName[s.Ref]
		if !ok {
			return nil
		}

		target := p.declaration(d)
		if target == nil {
			return nil
		}

		o := p.objectOf(target)
		if o != nil {
			thisToRef(o, d.name)
		}
		return o
	case model.KindIntersect:
		merged := &model.Schema{Kind: model.KindObject, Properties: make([]model.Property, 0), Required: make([]string, 0)}

		for _, member := range s.AllOf {
			o := p.objectOf(member)
			if o == nil {
				return nil
			}

			for _, prop := range o.Properties {
				merged.Properties = replaceProperty(merged.Properties, prop)
				if o.IsRequired(prop.Name) && !merged.IsRequired(prop.Name) {
					merged.Required = append(merged.Required, prop.Name)
				}
			}
		}

		return merged
	}

	return nil
}

func replaceProperty(props []model.Property, prop model.Property) []model.Property {
	for i, existing := range props {
		if existing.Name == prop.Name {
			props[i] = prop
			return props
		}
	}

	return append(props, prop)
}

// thisToRef rewrites self references of a copied declaration into named
// references, since the copy is no longer enclosed by that declaration.
func thisToRef(s *model.Schema, name string) {
	if s == nil {
		return
	}

	if s.Kind == model.KindThis && s.Ref == name {
		s.Kind = model.KindRef
	}

	thisToRef(s.Items, name)
	thisToRef(s.Returns, name)
	thisToRef(s.AdditionalSchema, name)

	for _, group := range [][]*model.Schema{s.Elements, s.AnyOf, s.AllOf, s.Parameters} {
		for _, c := range group {
			thisToRef(c, name)
		}
	}

	for _, prop := range s.Properties {
		thisToRef(prop.Schema, name)
	}

	for _, prop := range s.PatternProperties {
		thisToRef(prop.Schema, name)
	}
}

func literalKeys(s *model.Schema) ([]string, bool) {
	switch s.Kind {
	case model.KindLiteral:
		if k, ok := s.Const.(string); ok {
			return []string{k}, true
		}
	case model.KindUnion:
		keys := make([]string, 0, len(s.AnyOf))
		for _, m := range s.AnyOf {
			k, ok := literalKeys(m)
			if !ok {
				return nil, false
			}
			keys = append(keys, k...)
		}
		return keys, true
	}

	return nil, false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}

	return false
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}

	return p.tokens[p.pos+offset]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos += 1
	}

	return t
}

func (p *parser) accept(punct string) bool {
	if p.peek().is(punct) {
		p.next()
		return true
	}

	return false
}

func (p *parser) acceptWord(word string) bool {
	if p.peek().isWord(word) {
		p.next()
		return true
	}

	return false
}

func (p *parser) expect(punct string) token {
	t := p.peek()
	if !t.is(punct) {
		p.fail(t, "expected %q, found %s", punct, t)
		return t
	}

	return p.next()
}

func (p *parser) expectWord(word string) {
	t := p.peek()
	if !t.isWord(word) {
		p.fail(t, "expected %q, found %s", word, t)
		return
	}

	p.next()
}

func (p *parser) fail(t token, format string, args ...any) {
	if p.err == nil {
		p.err = &ParseError{Line: t.line, Column: t.col, Message: fmt.Sprintf(format, args...)}
	}
}

func (p *parser) ok() bool {
	return p.err == nil
}

// source returns the text from start to the end of the last consumed token.
func (p *parser) source(start int) string {
	if p.pos == 0 {
		return ""
	}

	end := p.tokens[p.pos-1].end
	if end < start {
		return ""
	}

	return strings.TrimSpace(p.src[start:end])
}
