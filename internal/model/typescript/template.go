package typescript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

const (
	patternNumber  = "(0|[1-9][0-9]*)"
	patternString  = "(.*)"
	patternBoolean = "(true|false)"
)

// template turns a template literal type into an anchored regular expression
// over the strings it admits.
func (p *parser) template(t token) *model.Schema {
	var b strings.Builder
	b.WriteString("^")

	body := t.value
	literal := strings.Builder{}

	flush := func() {
		b.WriteString(regexp.QuoteMeta(literal.String()))
		literal.Reset()
	}

	for i := 0; i < len(body); {
		switch {
		case strings.HasPrefix(body[i:], "${"):
			end := matchingBrace(body, i+2)
			if end < 0 {
				return model.Unresolved("`" + body + "`")
			}

			span, ok := p.templateSpan(body[i+2 : end])
			if !ok {
				return model.Unresolved("`" + body + "`")
			}

			flush()
			b.WriteString(span)
			i = end + 1
		case body[i] == '\\' && i+1 < len(body):
			literal.WriteByte(body[i+1])
			i += 2
		default:
			literal.WriteByte(body[i])
			i += 1
		}
	}

	flush()
	b.WriteString("$")

	return model.TemplateLiteral(b.String())
}

func matchingBrace(s string, from int) int {
	depth := 1

	for i := from; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth += 1
		case '}':
			depth -= 1
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func (p *parser) templateSpan(src string) (string, bool) {
	tokens, err := lex(src)
	if err != nil {
		return "", false
	}

	sub := &parser{
		src:     src,
		tokens:  tokens,
		byName:  p.byName,
		current: p.current,
		scopes:  p.scopes,
	}

	s := sub.parseType()
	if sub.err != nil || sub.peek().kind != tokEOF {
		return "", false
	}

	return spanPattern(s)
}

func spanPattern(s *model.Schema) (string, bool) {
	switch s.Kind {
	case model.KindString:
		return patternString, true
	case model.KindNumber, model.KindInteger, model.KindBigInt:
		return patternNumber, true
	case model.KindBoolean:
		return patternBoolean, true
	case model.KindLiteral:
		return regexp.QuoteMeta(fmt.Sprint(s.Const)), true
	case model.KindTemplateLiteral:
		return strings.TrimSuffix(strings.TrimPrefix(s.Pattern, "^"), "$"), true
	case model.KindUnion:
		alternatives := make([]string, 0, len(s.AnyOf))
		for _, m := range s.AnyOf {
			alt, ok := spanPattern(m)
			if !ok {
				return "", false
			}
			alternatives = append(alternatives, alt)
		}
		return "(" + strings.Join(alternatives, "|") + ")", true
	}

	return "", false
}
