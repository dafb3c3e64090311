package model

import "slices"

// Clone returns a deep copy of s. References are copied by name, so cyclic
// models clone in bounded time.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}

	clone := *s
	clone.Items = s.Items.Clone()
	clone.Returns = s.Returns.Clone()
	clone.AdditionalSchema = s.AdditionalSchema.Clone()
	clone.Elements = cloneAll(s.Elements)
	clone.AnyOf = cloneAll(s.AnyOf)
	clone.AllOf = cloneAll(s.AllOf)
	clone.Parameters = cloneAll(s.Parameters)
	clone.Required = slices.Clone(s.Required)

	if s.Properties != nil {
		clone.Properties = make([]Property, len(s.Properties))
		for i, p := range s.Properties {
			clone.Properties[i] = Property{Name: p.Name, Schema: p.Schema.Clone(), Readonly: p.Readonly}
		}
	}

	if s.PatternProperties != nil {
		clone.PatternProperties = make([]PatternProperty, len(s.PatternProperties))
		for i, p := range s.PatternProperties {
			clone.PatternProperties[i] = PatternProperty{Pattern: p.Pattern, Schema: p.Schema.Clone()}
		}
	}

	return &clone
}

func cloneAll(schemas []*Schema) []*Schema {
	if schemas == nil {
		return nil
	}

	out := make([]*Schema, len(schemas))
	for i, s := range schemas {
		out[i] = s.Clone()
	}

	return out
}
