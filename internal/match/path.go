package match

import (
	"slices"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

// SchemaPath locates a node inside a model: the top-level type name first,
// then property names and element markers.
type SchemaPath struct {
	Path   []string
	Schema *model.Schema
}

func (p *SchemaPath) String() string {
	var b strings.Builder

	for i, part := range p.Path {
		if i > 0 && !strings.HasPrefix(part, "[") {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}

	return b.String()
}

func (p *SchemaPath) push(part string, schema *model.Schema) {
	p.Path = append(p.Path, part)
	p.Schema = schema
}

func (p *SchemaPath) pop() {
	p.Path = p.Path[:len(p.Path)-1]
	p.Schema = nil
}

func (p *SchemaPath) clone() *SchemaPath {
	return &SchemaPath{Path: slices.Clone(p.Path), Schema: p.Schema}
}
