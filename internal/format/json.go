package format

import (
	"bytes"
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"github.com/koskimas/typeshift/internal/gen"
)

type JSON struct {
	Target gen.Target
}

func (f JSON) Format(text string) (string, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(text), "", "  "); err != nil {
		return "", &SyntaxError{Target: f.Target, Messages: []string{err.Error()}}
	}

	out.WriteByte('\n')
	return out.String(), nil
}

// OpenAPI loads the document with kin-openapi and validates it before
// indenting. A document that doesn't validate is a syntax error of the
// target.
type OpenAPI struct{}

func (OpenAPI) Format(text string) (string, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData([]byte(text))
	if err != nil {
		return "", &SyntaxError{Target: gen.TargetOpenAPI, Messages: []string{err.Error()}}
	}

	if err := doc.Validate(context.Background()); err != nil {
		return "", &SyntaxError{Target: gen.TargetOpenAPI, Messages: []string{err.Error()}}
	}

	return JSON{Target: gen.TargetOpenAPI}.Format(text)
}
