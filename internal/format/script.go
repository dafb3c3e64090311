package format

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/koskimas/typeshift/internal/gen"
)

// lineWidth is the length past which object literals are broken up.
const lineWidth = 80

// Script validates TypeScript with esbuild, breaks long object literals one
// entry per line and re-indents by bracket depth. esbuild would strip the
// type declarations, so its output is only used for the errors.
type Script struct {
	Target gen.Target
}

func (f Script) Format(text string) (string, error) {
	if errs := checkScript(text); len(errs) > 0 {
		return "", syntaxError(f.Target, errs)
	}

	out := reindent(text, "//")

	broken := breakObjects(out)
	if broken != out && len(checkScript(broken)) == 0 {
		out = broken
	}

	return out, nil
}

func checkScript(text string) []api.Message {
	return api.Transform(text, api.TransformOptions{Loader: api.LoaderTS}).Errors
}

// breakObjects splits object literals that make a line longer than
// lineWidth at their top-level commas, outermost first, until every line
// fits or nothing more can be split.
func breakObjects(text string) string {
	for range 16 {
		lines := strings.Split(text, "\n")
		out := make([]string, 0, len(lines))
		s := &scanner{lineComment: "//"}
		changed := false

		for _, line := range lines {
			skip := s.inBlock || s.inTemplate || strings.ContainsRune(line, '`')
			s.scan(line)

			if skip || len(line) <= lineWidth {
				out = append(out, line)
				continue
			}

			parts, ok := splitObject(line)
			if !ok {
				out = append(out, line)
				continue
			}

			out = append(out, parts...)
			changed = true
		}

		if !changed {
			break
		}

		text = reindent(strings.Join(out, "\n"), "//")
	}

	return text
}

// splitObject breaks the first brace pair of line that closes on the same
// line and holds a top-level comma.
func splitObject(line string) ([]string, bool) {
	opens := make([]int, 0)
	commas := make(map[int][]int)
	start, end := -1, -1
	var quote byte

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case strings.HasPrefix(line[i:], "//"):
			i = len(line)
		case strings.HasPrefix(line[i:], "/*"):
			n := strings.Index(line[i+2:], "*/")
			if n < 0 {
				return nil, false
			}
			i += n + 3
		case c == '{' || c == '[' || c == '(':
			opens = append(opens, i)
		case c == ',' && len(opens) > 0:
			top := opens[len(opens)-1]
			commas[top] = append(commas[top], i)
		case c == '}' || c == ']' || c == ')':
			if len(opens) == 0 {
				continue
			}

			open := opens[len(opens)-1]
			opens = opens[:len(opens)-1]

			// Inner pairs close first, so a later match with a smaller
			// start encloses the earlier ones.
			if c == '}' && line[open] == '{' && len(commas[open]) > 0 && (start < 0 || open < start) {
				start, end = open, i
			}
		}
	}

	if start < 0 {
		return nil, false
	}

	return splitAt(line, start, end, commas[start]), true
}

func splitAt(line string, start int, end int, commas []int) []string {
	out := []string{strings.TrimRight(line[:start+1], " ")}

	from := start + 1
	for _, c := range append(commas, end) {
		item := strings.TrimSpace(line[from:c])
		from = c + 1

		if item == "" {
			continue
		}

		if c != end {
			item += ","
		}
		out = append(out, item)
	}

	return append(out, line[end:])
}

// JavaScript is formatted by esbuild itself.
type JavaScript struct{}

func (JavaScript) Format(text string) (string, error) {
	res := api.Transform(text, api.TransformOptions{Loader: api.LoaderJS})
	if len(res.Errors) > 0 {
		return "", syntaxError(gen.TargetJavaScript, res.Errors)
	}

	return string(res.Code), nil
}

func syntaxError(target gen.Target, messages []api.Message) *SyntaxError {
	err := &SyntaxError{Target: target, Messages: make([]string, 0, len(messages))}

	for _, m := range messages {
		if m.Location != nil {
			err.Messages = append(err.Messages, fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
		} else {
			err.Messages = append(err.Messages, m.Text)
		}
	}

	return err
}

// Proto checks that braces balance and re-indents the file.
type Proto struct{}

func (Proto) Format(text string) (string, error) {
	if depth := bracketDepth(text, "//"); depth != 0 {
		return "", &SyntaxError{Target: gen.TargetGrpc, Messages: []string{fmt.Sprintf("unbalanced braces (depth %d at end of file)", depth)}}
	}

	return reindent(text, "//"), nil
}

// reindent rewrites the leading whitespace of every line to two spaces per
// line that holds open brackets, so `({` opens a single level. Brackets
// inside strings and comments don't count.
func reindent(text string, lineComment string) string {
	var b strings.Builder
	s := &scanner{lineComment: lineComment}

	for i, line := range strings.Split(text, "\n") {
		s.line = i

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			b.WriteByte('\n')
			s.scan(line)
			continue
		}

		depth := s.levels(0)
		if !s.inBlock && !s.inTemplate {
			depth = s.levels(leadingClosers(trimmed))
		}

		if s.inTemplate {
			// Template literal contents are kept verbatim.
			b.WriteString(line)
		} else {
			b.WriteString(strings.Repeat("  ", max(depth, 0)))
			b.WriteString(trimmed)
		}

		b.WriteByte('\n')
		s.scan(line)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func bracketDepth(text string, lineComment string) int {
	s := &scanner{lineComment: lineComment}
	s.scan(text)
	return s.depth
}

func leadingClosers(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case '}', ']', ')':
			n++
		default:
			return n
		}
	}

	return n
}

type scanner struct {
	lineComment string
	depth       int
	inBlock     bool
	inTemplate  bool

	// line is the number of the line being scanned and opened holds the
	// line number of every open bracket.
	line   int
	opened []int
}

// levels is the number of distinct lines holding open brackets once the
// innermost closed brackets are dropped.
func (s *scanner) levels(closed int) int {
	open := s.opened[:max(len(s.opened)-closed, 0)]

	n := 0
	for i, l := range open {
		if i == 0 || open[i-1] != l {
			n++
		}
	}

	return n
}

// scan advances the scanner over one chunk of text. Strings may not span
// lines, block comments and template literals may.
func (s *scanner) scan(text string) {
	var quote byte

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch {
		case s.inBlock:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				s.inBlock = false
				i++
			}
		case s.inTemplate:
			if c == '\\' {
				i++
			} else if c == '`' {
				s.inTemplate = false
			}
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote || c == '\n' {
				quote = 0
			}
		case strings.HasPrefix(text[i:], s.lineComment):
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			s.inBlock = true
			i++
		case c == '"' || c == '\'':
			quote = c
		case c == '`':
			s.inTemplate = true
		case c == '{' || c == '[' || c == '(':
			s.depth++
			s.opened = append(s.opened, s.line)
		case c == '}' || c == ']' || c == ')':
			s.depth--
			if len(s.opened) > 0 {
				s.opened = s.opened[:len(s.opened)-1]
			}
		}
	}
}
