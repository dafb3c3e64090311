package jsonschema

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// NamedSchema is one entry of an ordered schema mapping.
type NamedSchema struct {
	Name   string
	Schema Schema
}

// Properties keeps the document order of a schema mapping.
type Properties []NamedSchema

func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Newf("line %d: expected a mapping of schemas", node.Line)
	}

	out := make(Properties, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var s Schema
		if err := node.Content[i+1].Decode(&s); err != nil {
			return errors.Wrapf(err, `failed to decode schema "%s"`, node.Content[i].Value)
		}

		out = append(out, NamedSchema{Name: node.Content[i].Value, Schema: s})
	}

	*p = out
	return nil
}

// TypeList is the type keyword, which is either a single name or a list.
type TypeList []string

func (t *TypeList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = TypeList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return errors.Wrap(err, "failed to decode type list")
		}
		*t = list
		return nil
	}

	return errors.Newf("line %d: invalid type keyword", node.Line)
}

// Bound is an exclusive bound. JSON Schema gives it as a number, OpenAPI 3.0
// as a flag on the inclusive bound.
type Bound struct {
	Value *float64
	Flag  bool
}

func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf("line %d: invalid exclusive bound", node.Line)
	}

	if node.Tag == "!!bool" {
		return node.Decode(&b.Flag)
	}

	var v float64
	if err := node.Decode(&v); err != nil {
		return errors.Wrapf(err, "line %d: invalid exclusive bound", node.Line)
	}

	b.Value = &v
	return nil
}

// Items is the items keyword: a single schema, or a list of schemas for
// tuples in older drafts.
type Items struct {
	Single *Schema
	List   []Schema
}

func (it *Items) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var s Schema
		if err := node.Decode(&s); err != nil {
			return err
		}
		it.Single = &s
	case yaml.SequenceNode:
		return node.Decode(&it.List)
	}

	return nil
}

// Additional is the additionalProperties keyword.
type Additional struct {
	Set     bool
	Allowed bool
	Schema  *Schema
}

func (a *Additional) UnmarshalYAML(node *yaml.Node) error {
	a.Set = true

	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&a.Allowed)
	case yaml.MappingNode:
		var s Schema
		if err := node.Decode(&s); err != nil {
			return err
		}

		if isEmpty(s) {
			a.Allowed = true
			return nil
		}

		a.Schema = &s
		return nil
	}

	return errors.Newf("line %d: invalid additionalProperties", node.Line)
}
