package ref

import (
	"strings"

	"github.com/koskimas/typeshift/internal/model"
)

var refPrefixes = []string{
	"#/$defs/",
	"#/definitions/",
	"#/components/schemas/",
}

// State is the bookkeeping of one generation run. A fresh State is created
// for every run so nothing leaks between invocations.
type State struct {
	model      *model.Model
	references map[string]*model.Schema
	recursive  map[string]bool
	emitted    map[string]bool
	ancestors  []string
}

func NewState(m *model.Model) *State {
	s := &State{}
	s.Reset(m)
	return s
}

// Reset clears every collection and makes m the active reference set.
func (s *State) Reset(m *model.Model) {
	s.model = m
	s.references = make(map[string]*model.Schema)
	s.recursive = make(map[string]bool)
	s.emitted = make(map[string]bool)
	s.ancestors = s.ancestors[:0]
}

// Enter registers a named node and pushes it on the ancestor stack.
func (s *State) Enter(id string, schema *model.Schema) {
	s.references[id] = schema
	s.ancestors = append(s.ancestors, id)
}

func (s *State) Leave() {
	if len(s.ancestors) > 0 {
		s.ancestors = s.ancestors[:len(s.ancestors)-1]
	}
}

// InProgress is true while the named node is being rendered higher up the
// stack. A reference to it at that point closes a cycle.
func (s *State) InProgress(id string) bool {
	for _, a := range s.ancestors {
		if a == id {
			return true
		}
	}

	return false
}

// Enclosing returns the nearest named ancestor.
func (s *State) Enclosing() (string, bool) {
	if len(s.ancestors) == 0 {
		return "", false
	}

	return s.ancestors[len(s.ancestors)-1], true
}

// Resolve finds the node a reference names, first among the nodes seen so
// far and then among the top-level types of the model.
func (s *State) Resolve(name string) (*model.Schema, bool) {
	name = Name(name)

	if schema, ok := s.references[name]; ok {
		return schema, true
	}

	if s.model == nil {
		return nil, false
	}

	return s.model.Lookup(name)
}

// IsDeclared reports whether id names a top-level type of the model.
func (s *State) IsDeclared(id string) bool {
	if s.model == nil {
		return false
	}

	_, ok := s.model.Lookup(id)
	return ok
}

func (s *State) MarkRecursive(id string) {
	s.recursive[id] = true
}

func (s *State) IsRecursive(id string) bool {
	return s.recursive[id]
}

func (s *State) MarkEmitted(id string) {
	s.emitted[id] = true
}

func (s *State) IsEmitted(id string) bool {
	return s.emitted[id]
}

// Name strips JSON pointer prefixes from a $ref value so that
// "#/$defs/Node", "#/components/schemas/Node" and "Node" all name Node.
func Name(ref string) string {
	for _, p := range refPrefixes {
		if strings.HasPrefix(ref, p) {
			return ref[len(p):]
		}
	}

	return ref
}

// Dependencies returns the names referenced from schema in first-seen order.
func Dependencies(schema *model.Schema) []string {
	seen := make(map[string]bool)
	deps := make([]string, 0)
	collect(schema, seen, &deps)
	return deps
}

func collect(s *model.Schema, seen map[string]bool, deps *[]string) {
	if s == nil {
		return
	}

	if s.Kind == model.KindRef {
		name := Name(s.Ref)
		if !seen[name] {
			seen[name] = true
			*deps = append(*deps, name)
		}
	}

	collect(s.Items, seen, deps)
	collect(s.Returns, seen, deps)
	collect(s.AdditionalSchema, seen, deps)

	for _, group := range [][]*model.Schema{s.Elements, s.AnyOf, s.AllOf, s.Parameters} {
		for _, c := range group {
			collect(c, seen, deps)
		}
	}

	for _, p := range s.Properties {
		collect(p.Schema, seen, deps)
	}

	for _, p := range s.PatternProperties {
		collect(p.Schema, seen, deps)
	}
}
