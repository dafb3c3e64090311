package pg

import "strings"

// ddlWriter builds the DDL printed by the String methods of this package.
// Text written after a line break is indented two spaces per level.
type ddlWriter struct {
	strings.Builder
	lineStart bool
	depth     int
}

func (w *ddlWriter) push() {
	w.depth += 1
}

func (w *ddlWriter) pop() {
	w.depth -= 1
}

func (w *ddlWriter) WriteNewLine() {
	_ = w.Builder.WriteByte('\n')
	w.lineStart = true
}

func (w *ddlWriter) WriteString(str string) {
	if w.lineStart {
		w.lineStart = false
		_, _ = w.Builder.WriteString(strings.Repeat("  ", w.depth))
	}

	_, _ = w.Builder.WriteString(str)
}

// statement writes one statement terminated by a semicolon and separated
// from the previous one by a blank line.
func (w *ddlWriter) statement(write func()) {
	if w.Len() > 0 {
		w.WriteNewLine()
		w.WriteNewLine()
	}

	write()
	w.WriteString(";")
}

func (w *ddlWriter) list(items []string, sep string) {
	for i, item := range items {
		if i > 0 {
			w.WriteString(sep)
		}
		w.WriteString(item)
	}
}
