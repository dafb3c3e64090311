package match

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ref"
)

// Resolve finds the node a dotted path such as "Person.address.street" names
// in m. The first part is a type name; the rest are property names, matched
// case-insensitively and ignoring underscores. References are followed.
func Resolve(m *model.Model, path string) (*SchemaPath, error) {
	parts := strings.Split(path, ".")

	root, ok := m.Lookup(parts[0])
	if !ok {
		return nil, errors.Newf(`could not resolve type "%s"`, parts[0])
	}

	out := &SchemaPath{Path: []string{root.ID}, Schema: root}

	if err := resolve(m, root, parts[1:], out); err != nil {
		return nil, errors.Wrapf(err, `failed to resolve path "%s"`, path)
	}

	return out, nil
}

func resolve(m *model.Model, schema *model.Schema, parts []string, path *SchemaPath) error {
	if len(parts) == 0 {
		path.Schema = schema
		return nil
	}

	schema = follow(m, schema)
	normPart := normalize(parts[0])

	for _, p := range schema.Properties {
		if normalize(p.Name) == normPart {
			path.Path = append(path.Path, p.Name)
			return resolve(m, p.Schema, parts[1:], path)
		}
	}

	if len(path.Path) > 0 {
		return errors.Newf(`could not resolve property "%s" of "%s"`, parts[0], path.Path[len(path.Path)-1])
	}

	return errors.Newf(`could not resolve property "%s"`, parts[0])
}

// follow dereferences named references until it reaches a concrete node.
func follow(m *model.Model, schema *model.Schema) *model.Schema {
	seen := make(map[string]bool)

	for schema.Kind == model.KindRef || schema.Kind == model.KindThis {
		name := ref.Name(schema.Ref)
		if seen[name] {
			return schema
		}
		seen[name] = true

		target, ok := m.Lookup(name)
		if !ok {
			return schema
		}

		schema = target
	}

	return schema
}

func normalize(prop string) string {
	return strings.ToLower(strings.ReplaceAll(prop, "_", ""))
}
