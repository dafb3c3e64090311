package gen

import (
	"fmt"

	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/ref"
)

type refKind int

const (
	// refDeclared names a type whose declaration has already been emitted.
	refDeclared refKind = iota
	// refForward names a type declared further down.
	refForward
	// refCycle names a type that is still being rendered.
	refCycle
)

// renderer is what a back end provides to the shared visitor: one exhaustive
// switch over the schema kinds plus the forms for references and for nodes it
// cannot express.
type renderer[T any] interface {
	render(v *visitor[T], s *model.Schema) T
	reference(v *visitor[T], name string, target *model.Schema, kind refKind) T
	sentinel(reason string) T
}

// visitor walks a model on behalf of one back end. A visitor and its state
// live for a single Generate call.
type visitor[T any] struct {
	state       *ref.State
	renderer    renderer[T]
	bounds      BoundPolicy
	unsupported []string
}

type declaration[T any] struct {
	Name      string
	Schema    *model.Schema
	Body      T
	Recursive bool
}

func newVisitor[T any](m *model.Model, r renderer[T], bounds BoundPolicy) *visitor[T] {
	return &visitor[T]{
		state:       ref.NewState(m),
		renderer:    r,
		bounds:      bounds,
		unsupported: make([]string, 0),
	}
}

// declarations visits every top-level type in order and marks each one
// emitted once its body is rendered.
func (v *visitor[T]) declarations(m *model.Model) []declaration[T] {
	out := make([]declaration[T], 0, len(m.Types))

	for i, t := range m.Types {
		name := declarationName(i, t)
		body := v.visitNamed(name, t)
		v.state.MarkEmitted(name)

		out = append(out, declaration[T]{
			Name:      name,
			Schema:    t,
			Body:      body,
			Recursive: v.state.IsRecursive(name),
		})
	}

	return out
}

func declarationName(i int, t *model.Schema) string {
	if t.ID == "" {
		return fmt.Sprintf("Type%d", i)
	}

	return t.ID
}

// recursiveRenderer is implemented by back ends that wrap the body of a
// self-referencing named node, as in Type.Recursive.
type recursiveRenderer[T any] interface {
	recursive(name string, body T) T
}

func (v *visitor[T]) visitNamed(name string, s *model.Schema) T {
	v.state.Enter(name, s)
	defer v.state.Leave()

	body := v.dispatch(s)

	if w, ok := v.renderer.(recursiveRenderer[T]); ok && v.state.IsRecursive(name) {
		body = w.recursive(name, body)
	}

	return body
}

// isDeclared reports whether name is one of the model's top-level types.
func (v *visitor[T]) isDeclared(name string) bool {
	return v.state.IsDeclared(name)
}

// Visit renders one node. A named node that was already emitted renders as a
// bare reference instead of being rendered again.
func (v *visitor[T]) Visit(s *model.Schema) T {
	if s == nil {
		return v.unsupportedf("missing schema")
	}

	if s.ID != "" {
		if v.state.IsEmitted(s.ID) {
			return v.renderer.reference(v, s.ID, s, refDeclared)
		}

		if v.state.InProgress(s.ID) {
			v.state.MarkRecursive(s.ID)
			return v.renderer.reference(v, s.ID, s, refCycle)
		}

		return v.visitNamed(s.ID, s)
	}

	return v.dispatch(s)
}

func (v *visitor[T]) dispatch(s *model.Schema) T {
	switch s.Kind {
	case model.KindRef:
		return v.visitRef(ref.Name(s.Ref))
	case model.KindThis:
		return v.visitThis(s)
	case model.KindUnresolved:
		return v.unsupportedf("unresolved type %q", s.Source)
	}

	return v.renderer.render(v, s)
}

func (v *visitor[T]) visitRef(name string) T {
	target, ok := v.state.Resolve(name)
	if !ok {
		return v.unsupportedf("unresolved reference %s", name)
	}

	switch {
	case v.state.InProgress(name):
		v.state.MarkRecursive(name)
		return v.renderer.reference(v, name, target, refCycle)
	case v.state.IsEmitted(name):
		return v.renderer.reference(v, name, target, refDeclared)
	}

	return v.renderer.reference(v, name, target, refForward)
}

func (v *visitor[T]) visitThis(s *model.Schema) T {
	name, ok := v.state.Enclosing()
	if !ok {
		return v.unsupportedf("self reference outside of a named type")
	}

	if s.Ref != "" && s.Ref != name && v.state.InProgress(s.Ref) {
		name = s.Ref
	}

	v.state.MarkRecursive(name)
	target, _ := v.state.Resolve(name)

	return v.renderer.reference(v, name, target, refCycle)
}

func (v *visitor[T]) unsupportedf(format string, args ...any) T {
	reason := fmt.Sprintf(format, args...)
	v.unsupported = append(v.unsupported, reason)
	return v.renderer.sentinel(reason)
}

// degradef records a constraint the target drops while the node itself still
// renders.
func (v *visitor[T]) degradef(format string, args ...any) {
	v.unsupported = append(v.unsupported, fmt.Sprintf(format, args...))
}

func (v *visitor[T]) visitAll(schemas []*model.Schema) []T {
	out := make([]T, len(schemas))
	for i, s := range schemas {
		out[i] = v.Visit(s)
	}

	return out
}

// numberBounds returns the lower and upper limits of a numeric node with the
// exclusive bounds resolved according to the visitor's policy.
func (v *visitor[T]) numberBounds(s *model.Schema) []bound {
	bounds := make([]bound, 0, 4)

	// An offset bound only means the same thing for integers.
	if v.bounds == BoundOffset && s.Kind == model.KindNumber && (s.ExclusiveMinimum != nil || s.ExclusiveMaximum != nil) {
		v.degradef("exclusive bound of a non-integer number offset by one")
	}

	if s.Minimum != nil {
		bounds = append(bounds, bound{op: opGreaterEqual, value: *s.Minimum})
	}

	if s.ExclusiveMinimum != nil {
		if v.bounds == BoundOffset {
			bounds = append(bounds, bound{op: opGreaterEqual, value: *s.ExclusiveMinimum + 1})
		} else {
			bounds = append(bounds, bound{op: opGreater, value: *s.ExclusiveMinimum})
		}
	}

	if s.Maximum != nil {
		bounds = append(bounds, bound{op: opLessEqual, value: *s.Maximum})
	}

	if s.ExclusiveMaximum != nil {
		if v.bounds == BoundOffset {
			bounds = append(bounds, bound{op: opLessEqual, value: *s.ExclusiveMaximum - 1})
		} else {
			bounds = append(bounds, bound{op: opLess, value: *s.ExclusiveMaximum})
		}
	}

	return bounds
}

type boundOp int

const (
	opGreaterEqual boundOp = iota
	opGreater
	opLessEqual
	opLess
)

type bound struct {
	op    boundOp
	value float64
}

// singleRecord returns the one key pattern of a record. A record with several
// patterns has no faithful rendering in any target.
func (v *visitor[T]) singleRecord(s *model.Schema) (model.PatternProperty, bool) {
	if len(s.PatternProperties) != 1 {
		return model.PatternProperty{}, false
	}

	return s.PatternProperties[0], true
}

func (v *visitor[T]) result(text string) *Result {
	return &Result{Text: text, Unsupported: v.unsupported}
}
