package typescript

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ptr"
)

var tagSeparator = regexp.MustCompile(`\s+@`)

type docTag struct {
	name  string
	value string
}

type jsdoc struct {
	text string
	tags []docTag
}

func parseDoc(raw string) jsdoc {
	doc := jsdoc{}
	text := make([]string, 0)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "@") {
			for _, tag := range tagSeparator.Split(line[1:], -1) {
				name, value, _ := strings.Cut(tag, " ")
				doc.tags = append(doc.tags, docTag{name: name, value: strings.TrimSpace(value)})
			}
			continue
		}

		if line != "" {
			text = append(text, line)
		}
	}

	doc.text = strings.Join(text, " ")
	return doc
}

// apply copies the annotations of the comment onto s. Tags that do not fit
// the kind of s, or whose value does not parse, are ignored.
func (d jsdoc) apply(s *model.Schema) {
	if s == nil {
		return
	}

	if d.text != "" && s.Description == "" {
		s.Description = d.text
	}

	for _, tag := range d.tags {
		switch tag.name {
		case "minimum":
			s.Minimum = parseFloat(tag.value)
		case "maximum":
			s.Maximum = parseFloat(tag.value)
		case "exclusiveMinimum":
			s.ExclusiveMinimum = parseFloat(tag.value)
		case "exclusiveMaximum":
			s.ExclusiveMaximum = parseFloat(tag.value)
		case "multipleOf":
			s.MultipleOf = parseFloat(tag.value)
		case "minLength":
			s.MinLength = parseInt(tag.value)
		case "maxLength":
			s.MaxLength = parseInt(tag.value)
		case "minItems":
			s.MinItems = parseInt(tag.value)
		case "maxItems":
			s.MaxItems = parseInt(tag.value)
		case "uniqueItems":
			s.UniqueItems = tag.value == "" || tag.value == "true"
		case "pattern":
			s.Pattern = tag.value
		case "format":
			s.Format = tag.value
		case "description":
			s.Description = tag.value
		case "default":
			s.Default = parseDefault(tag.value)
		case "type":
			if tag.value == "integer" && s.Kind == model.KindNumber {
				s.Kind = model.KindInteger
			}
		}
	}
}

func parseFloat(v string) *float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}

	return ptr.V(f)
}

func parseInt(v string) *int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}

	return ptr.V(i)
}

// parseDefault reads a default value as JSON and falls back to the raw text,
// so that both `@default "a"` and `@default a` yield the string a.
func parseDefault(v string) any {
	var out any
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return v
	}

	return out
}
