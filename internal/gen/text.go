package gen

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/koskimas/typeshift/internal/expr"
	"github.com/koskimas/typeshift/internal/model"
)

var jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// jsKey renders an object key, quoting it when it is not an identifier.
func jsKey(name string) string {
	if jsIdentifier.MatchString(name) {
		return name
	}

	return strconv.Quote(name)
}

func jsString(s string) string {
	return strconv.Quote(s)
}

func jsValue(v any) string {
	return expr.Literal(v)
}

func jsNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func comment(s string) string {
	return strings.ReplaceAll(s, "*/", "* /")
}

// option is one entry of an options object such as `{ minimum: 0 }`.
type option struct {
	key   string
	value string
}

func jsObject(entries []option) string {
	if len(entries) == 0 {
		return "{}"
	}

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = jsKey(e.key) + ": " + e.value
	}

	return "{ " + strings.Join(parts, ", ") + " }"
}

// schemaOptions collects the JSON Schema annotations of s as options.
func schemaOptions(s *model.Schema, withID bool) []option {
	opts := make([]option, 0)

	add := func(key, value string) {
		opts = append(opts, option{key: key, value: value})
	}

	if withID && s.ID != "" {
		add("$id", jsString(s.ID))
	}

	if s.Description != "" {
		add("description", jsString(s.Description))
	}

	if s.Default != nil {
		add("default", jsValue(s.Default))
	}

	for _, b := range []struct {
		key   string
		value *float64
	}{
		{"minimum", s.Minimum},
		{"maximum", s.Maximum},
		{"exclusiveMinimum", s.ExclusiveMinimum},
		{"exclusiveMaximum", s.ExclusiveMaximum},
		{"multipleOf", s.MultipleOf},
	} {
		if b.value != nil {
			add(b.key, jsNumber(*b.value))
		}
	}

	for _, b := range []struct {
		key   string
		value *int
	}{
		{"minLength", s.MinLength},
		{"maxLength", s.MaxLength},
	} {
		if b.value != nil {
			add(b.key, strconv.Itoa(*b.value))
		}
	}

	if s.Kind == model.KindArray {
		if s.MinItems != nil {
			add("minItems", strconv.Itoa(*s.MinItems))
		}
		if s.MaxItems != nil {
			add("maxItems", strconv.Itoa(*s.MaxItems))
		}
		if s.UniqueItems {
			add("uniqueItems", "true")
		}
	}

	if s.Pattern != "" && s.Kind != model.KindTemplateLiteral {
		add("pattern", jsString(s.Pattern))
	}

	if s.Format != "" {
		add("format", jsString(s.Format))
	}

	return opts
}

// withOptions appends an options object argument to a call when there are
// options to pass.
func withOptions(call string, args []string, opts []option) string {
	if len(opts) > 0 {
		args = append(args, jsObject(opts))
	}

	return call + "(" + strings.Join(args, ", ") + ")"
}

// lines joins non-empty blocks with blank lines between them.
func lines(blocks ...string) string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b != "" {
			out = append(out, b)
		}
	}

	return strings.Join(out, "\n\n") + "\n"
}

func recordKey(pattern string) string {
	switch pattern {
	case model.PatternStringKey:
		return "string"
	case model.PatternNumberKey:
		return "number"
	}

	return ""
}
