package typescript

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokBigInt
	tokTemplate
	tokPunct
)

type token struct {
	kind tokenKind
	// value is the decoded text: identifier name, unquoted string, number
	// digits, raw template body or punctuation.
	value string
	// doc is the JSDoc comment immediately preceding the token.
	doc   string
	start int
	end   int
	line  int
	col   int
}

func (t token) is(punct string) bool {
	return t.kind == tokPunct && t.value == punct
}

func (t token) isWord(word string) bool {
	return t.kind == tokIdent && t.value == word
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return fmt.Sprintf("string %q", t.value)
	case tokTemplate:
		return "template literal"
	}

	return fmt.Sprintf(`"%s"`, t.value)
}

var puncts = []string{"=>", "...", "{", "}", "(", ")", "[", "]", "<", ">", ",", ";", ":", "?", "|", "&", "=", ".", "-", "+", "*", "@", "!", "#", "/", "%", "^", "~"}

type lexer struct {
	src  string
	pos  int
	line int
	col  int
	doc  string
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	tokens := make([]token, 0, len(src)/4)

	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}

		tokens = append(tokens, t)

		if t.kind == tokEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &ParseError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekRune(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos+offset:])
	return r
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
		i += size

		if r == '\n' {
			l.line += 1
			l.col = 1
		} else {
			l.col += 1
		}
	}
}

func (l *lexer) skipTrivia() error {
	for l.pos < len(l.src) {
		r := l.peekRune(0)

		switch {
		case unicode.IsSpace(r):
			l.advance(utf8.RuneLen(r))
		case strings.HasPrefix(l.src[l.pos:], "//"):
			end := strings.IndexByte(l.src[l.pos:], '\n')
			if end < 0 {
				end = len(l.src) - l.pos
			}
			l.advance(end)
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			line, col := l.line, l.col
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return l.errorf(line, col, "unterminated comment")
			}

			body := l.src[l.pos+2 : l.pos+2+end]
			if strings.HasPrefix(body, "*") && body != "*" {
				l.doc = body[1:]
			}

			l.advance(end + 4)
		default:
			return nil
		}
	}

	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipTrivia(); err != nil {
		return token{}, err
	}

	t := token{start: l.pos, line: l.line, col: l.col, doc: l.doc}
	l.doc = ""

	if l.pos >= len(l.src) {
		t.kind = tokEOF
		t.end = l.pos
		return t, nil
	}

	r := l.peekRune(0)

	switch {
	case isIdentStart(r):
		for l.pos < len(l.src) && isIdentPart(l.peekRune(0)) {
			l.advance(utf8.RuneLen(l.peekRune(0)))
		}
		t.kind = tokIdent
		t.value = l.src[t.start:l.pos]
	case r >= '0' && r <= '9' || (r == '.' && isDigit(l.peekRune(1))):
		l.number(&t)
	case r == '"' || r == '\'':
		value, err := l.quoted(r)
		if err != nil {
			return token{}, err
		}
		t.kind = tokString
		t.value = value
	case r == '`':
		value, err := l.template()
		if err != nil {
			return token{}, err
		}
		t.kind = tokTemplate
		t.value = value
	default:
		t.kind = tokPunct
		for _, p := range puncts {
			if strings.HasPrefix(l.src[l.pos:], p) {
				t.value = p
				break
			}
		}

		if t.value == "" {
			return token{}, l.errorf(l.line, l.col, "unexpected character %q", r)
		}

		l.advance(len(t.value))
	}

	t.end = l.pos
	return t, nil
}

func (l *lexer) number(t *token) {
	start := l.pos

	if strings.HasPrefix(l.src[l.pos:], "0x") || strings.HasPrefix(l.src[l.pos:], "0X") ||
		strings.HasPrefix(l.src[l.pos:], "0b") || strings.HasPrefix(l.src[l.pos:], "0o") {
		l.advance(2)
		for isHexDigit(l.peekRune(0)) || l.peekRune(0) == '_' {
			l.advance(1)
		}
	} else {
		for isDigit(l.peekRune(0)) || l.peekRune(0) == '_' || l.peekRune(0) == '.' {
			l.advance(1)
		}

		if r := l.peekRune(0); r == 'e' || r == 'E' {
			l.advance(1)
			if r := l.peekRune(0); r == '+' || r == '-' {
				l.advance(1)
			}
			for isDigit(l.peekRune(0)) {
				l.advance(1)
			}
		}
	}

	t.kind = tokNumber
	t.value = strings.ReplaceAll(l.src[start:l.pos], "_", "")

	if l.peekRune(0) == 'n' {
		l.advance(1)
		t.kind = tokBigInt
	}
}

func (l *lexer) quoted(quote rune) (string, error) {
	line, col := l.line, l.col
	l.advance(1)

	var b strings.Builder

	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(line, col, "unterminated string")
		}

		r := l.peekRune(0)

		switch r {
		case quote:
			l.advance(1)
			return b.String(), nil
		case '\n':
			return "", l.errorf(line, col, "unterminated string")
		case '\\':
			l.advance(1)
			e := l.peekRune(0)
			l.advance(utf8.RuneLen(e))

			switch e {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '0':
				b.WriteRune(0)
			default:
				b.WriteRune(e)
			}
		default:
			b.WriteRune(r)
			l.advance(utf8.RuneLen(r))
		}
	}
}

// template returns the raw body of a template literal. Substitutions are
// kept as written so that the parser can parse them as types.
func (l *lexer) template() (string, error) {
	line, col := l.line, l.col
	l.advance(1)
	start := l.pos
	depth := 0

	for l.pos < len(l.src) {
		switch {
		case l.src[l.pos] == '\\':
			l.advance(2)
			continue
		case depth == 0 && l.src[l.pos] == '`':
			body := l.src[start:l.pos]
			l.advance(1)
			return body, nil
		case strings.HasPrefix(l.src[l.pos:], "${"):
			depth += 1
			l.advance(2)
			continue
		case depth > 0 && l.src[l.pos] == '{':
			depth += 1
		case depth > 0 && l.src[l.pos] == '}':
			depth -= 1
		}

		l.advance(1)
	}

	return "", l.errorf(line, col, "unterminated template literal")
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
