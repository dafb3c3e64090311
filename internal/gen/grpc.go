package gen

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/model"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	// Well-known types referenced by generated files.
	_ "google.golang.org/protobuf/types/known/emptypb"
	_ "google.golang.org/protobuf/types/known/structpb"
	_ "google.golang.org/protobuf/types/known/timestamppb"
)

const defaultGrpcPackage = "typeshift"

const (
	wellKnownValue     = ".google.protobuf.Value"
	wellKnownStruct    = ".google.protobuf.Struct"
	wellKnownTimestamp = ".google.protobuf.Timestamp"
	wellKnownEmpty     = ".google.protobuf.Empty"
)

var wellKnownFiles = map[string]string{
	wellKnownValue:     "google/protobuf/struct.proto",
	wellKnownStruct:    "google/protobuf/struct.proto",
	wellKnownTimestamp: "google/protobuf/timestamp.proto",
	wellKnownEmpty:     "google/protobuf/empty.proto",
}

// protoType is the type of a field. typeName is set for message and enum
// types.
type protoType struct {
	kind     descriptorpb.FieldDescriptorProto_Type
	typeName string
	repeated bool
	optional bool
}

func scalar(kind descriptorpb.FieldDescriptorProto_Type) protoType {
	return protoType{kind: kind}
}

func message(typeName string) protoType {
	return protoType{kind: descriptorpb.FieldDescriptorProto_TYPE_MESSAGE, typeName: typeName}
}

// protoFields renders field types. Messages, enums and services are built
// around it by protoBuilder.
type protoFields struct {
	pkg   string
	model *model.Model
	uses  map[string]bool
}

func generateGrpc(m *model.Model, opts Options) (*Result, error) {
	pkg := opts.GrpcPackage
	if pkg == "" {
		pkg = defaultGrpcPackage
	}

	r := &protoFields{pkg: pkg, model: m, uses: make(map[string]bool)}
	v := newVisitor[protoType](m, r, opts.Bounds(TargetGrpc))

	b := &protoBuilder{
		v:      v,
		fields: r,
		file: &descriptorpb.FileDescriptorProto{
			Name:    proto.String(pkg + ".proto"),
			Package: proto.String(pkg),
			Syntax:  proto.String("proto3"),
		},
		notes: make(map[string][]string),
	}

	for i, t := range m.Types {
		name := declarationName(i, t)

		v.state.Enter(name, t)
		b.declare(name, t)
		v.state.Leave()
		v.state.MarkEmitted(name)
	}

	for _, t := range []string{wellKnownEmpty, wellKnownStruct, wellKnownTimestamp} {
		if r.uses[t] || (t == wellKnownStruct && r.uses[wellKnownValue]) {
			b.file.Dependency = append(b.file.Dependency, wellKnownFiles[t])
		}
	}

	if _, err := protodesc.NewFile(b.file, protoregistry.GlobalFiles); err != nil {
		return nil, errors.Wrap(err, "generated protobuf descriptor is invalid")
	}

	return v.result(printProto(b.file, b.notes)), nil
}

func (r *protoFields) fullName(name string) string {
	return "." + r.pkg + "." + name
}

func (r *protoFields) wellKnown(typeName string) protoType {
	r.uses[typeName] = true
	return message(typeName)
}

func (r *protoFields) render(v *visitor[protoType], s *model.Schema) protoType {
	switch s.Kind {
	case model.KindAny, model.KindUnknown:
		return r.wellKnown(wellKnownValue)
	case model.KindBoolean:
		return scalar(descriptorpb.FieldDescriptorProto_TYPE_BOOL)
	case model.KindNumber:
		return scalar(descriptorpb.FieldDescriptorProto_TYPE_DOUBLE)
	case model.KindInteger, model.KindBigInt:
		return scalar(descriptorpb.FieldDescriptorProto_TYPE_INT64)
	case model.KindString, model.KindTemplateLiteral:
		return scalar(descriptorpb.FieldDescriptorProto_TYPE_STRING)
	case model.KindUint8Array:
		return scalar(descriptorpb.FieldDescriptorProto_TYPE_BYTES)
	case model.KindDate:
		return r.wellKnown(wellKnownTimestamp)
	case model.KindLiteral:
		return literalType(s.Const)
	case model.KindArray:
		item := v.Visit(s.Items)
		if item.repeated {
			return v.unsupportedf("nested repeated field")
		}
		item.repeated = true
		item.optional = false
		return item
	case model.KindTuple:
		if t, ok := sameScalar(v, s.Elements); ok {
			t.repeated = true
			return t
		}
		t := r.wellKnown(wellKnownValue)
		t.repeated = true
		return t
	case model.KindObject, model.KindRecord, model.KindIntersect:
		return r.wellKnown(wellKnownStruct)
	case model.KindUnion:
		members := make([]*model.Schema, 0, len(s.AnyOf))
		for _, m := range s.AnyOf {
			if m != nil && slices.Contains([]model.Kind{model.KindNull, model.KindUndefined, model.KindVoid}, m.Kind) {
				continue
			}
			members = append(members, m)
		}

		if len(members) == 1 {
			t := v.Visit(members[0])
			t.optional = !t.repeated && t.kind != descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
			return t
		}

		if t, ok := sameScalar(v, members); ok {
			return t
		}

		return r.wellKnown(wellKnownValue)
	}

	return v.unsupportedf("kind %s", s.Kind)
}

func literalType(c any) protoType {
	switch c.(type) {
	case string:
		return scalar(descriptorpb.FieldDescriptorProto_TYPE_STRING)
	case bool:
		return scalar(descriptorpb.FieldDescriptorProto_TYPE_BOOL)
	}

	return scalar(descriptorpb.FieldDescriptorProto_TYPE_DOUBLE)
}

// sameScalar returns the common type of schemas when they all render to the
// same scalar.
func sameScalar(v *visitor[protoType], schemas []*model.Schema) (protoType, bool) {
	if len(schemas) == 0 {
		return protoType{}, false
	}

	types := v.visitAll(schemas)
	for _, t := range types {
		if t.kind == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE || t.repeated || t.kind != types[0].kind {
			return protoType{}, false
		}
	}

	return scalar(types[0].kind), true
}

// Proto types are referenced by name anywhere in a file, so declaration order
// does not matter.
func (r *protoFields) reference(v *visitor[protoType], name string, target *model.Schema, kind refKind) protoType {
	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	if isEnum(target) {
		return protoType{kind: descriptorpb.FieldDescriptorProto_TYPE_ENUM, typeName: r.fullName(name)}
	}

	return message(r.fullName(name))
}

func (r *protoFields) sentinel(reason string) protoType {
	return protoType{}
}

// isEnum is true for a union of string literals.
func isEnum(s *model.Schema) bool {
	if s == nil || s.Kind != model.KindUnion || len(s.AnyOf) == 0 {
		return false
	}

	for _, m := range s.AnyOf {
		if m == nil || m.Kind != model.KindLiteral {
			return false
		}
		if _, ok := m.Const.(string); !ok {
			return false
		}
	}

	return true
}

type protoBuilder struct {
	v      *visitor[protoType]
	fields *protoFields
	file   *descriptorpb.FileDescriptorProto
	// notes holds comments per full message name, for fields that were left
	// out.
	notes map[string][]string
}

func (b *protoBuilder) declare(name string, s *model.Schema) {
	switch {
	case s.Kind == model.KindObject && s.HasFunctions():
		b.file.Service = append(b.file.Service, b.service(name, s))
	case s.Kind == model.KindObject:
		b.file.MessageType = append(b.file.MessageType, b.message(name, b.fields.fullName(name), s.Properties, s.Required))
	case s.Kind == model.KindIntersect:
		props, required := b.flatten(s)
		b.file.MessageType = append(b.file.MessageType, b.message(name, b.fields.fullName(name), props, required))
	case isEnum(s):
		b.file.EnumType = append(b.file.EnumType, enum(name, s))
	default:
		props := []model.Property{{Name: "value", Schema: s}}
		b.file.MessageType = append(b.file.MessageType, b.message(name, b.fields.fullName(name), props, []string{"value"}))
	}
}

// flatten merges the properties of the object members of an intersection.
func (b *protoBuilder) flatten(s *model.Schema) ([]model.Property, []string) {
	props := make([]model.Property, 0)
	required := make([]string, 0)

	for _, m := range s.AllOf {
		if m != nil && m.Kind == model.KindRef {
			if target, ok := b.v.state.Resolve(m.Ref); ok {
				m = target
			}
		}

		switch {
		case m == nil:
		case m.Kind == model.KindObject:
			for _, p := range m.Properties {
				if !slices.ContainsFunc(props, func(q model.Property) bool { return q.Name == p.Name }) {
					props = append(props, p)
				}
			}
			required = append(required, m.Required...)
		case m.Kind == model.KindIntersect:
			p, r := b.flatten(m)
			props, required = append(props, p...), append(required, r...)
		default:
			b.v.degradef("intersection member %s is not an object", m.Kind)
		}
	}

	return props, required
}

func (b *protoBuilder) message(name string, fullName string, props []model.Property, required []string) *descriptorpb.DescriptorProto {
	msg := &descriptorpb.DescriptorProto{Name: proto.String(name)}

	for _, p := range props {
		b.field(msg, fullName, p, slices.Contains(required, p.Name))
	}

	return msg
}

func (b *protoBuilder) field(msg *descriptorpb.DescriptorProto, fullName string, p model.Property, required bool) {
	fieldName := protoIdent(p.Name)
	number := int32(len(msg.Field) + 1)

	f := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String(fieldName),
		JsonName: proto.String(p.Name),
		Number:   proto.Int32(number),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
	}

	s := p.Schema
	repeated := false
	if s != nil && s.Kind == model.KindArray && s.ID == "" && s.Items != nil && s.Items.Kind == model.KindObject && s.Items.ID == "" {
		s, repeated = s.Items, true
	}

	var t protoType

	switch {
	case s == nil:
		b.note(fullName, fmt.Sprintf("%s: missing schema", p.Name))
		return
	case s.Kind == model.KindObject && s.ID == "" && !s.HasFunctions():
		nested := pascal(p.Name)
		msg.NestedType = append(msg.NestedType, b.message(nested, fullName+"."+nested, s.Properties, s.Required))
		t = message(fullName + "." + nested)
	case s.Kind == model.KindRecord && s.ID == "":
		entry, ok := b.mapEntry(fullName, p.Name, s)
		if !ok {
			b.note(fullName, fmt.Sprintf("%s: record with %d key patterns", p.Name, len(s.PatternProperties)))
			return
		}
		msg.NestedType = append(msg.NestedType, entry)
		t = message(fullName + "." + entry.GetName())
		repeated = true
	default:
		before := len(b.v.unsupported)
		t = b.v.Visit(s)
		if t.kind == 0 {
			reason := "unsupported"
			if len(b.v.unsupported) > before {
				reason = b.v.unsupported[len(b.v.unsupported)-1]
			}
			b.note(fullName, fmt.Sprintf("%s: %s", p.Name, reason))
			return
		}
	}

	f.Type = t.kind.Enum()
	if t.typeName != "" {
		f.TypeName = proto.String(t.typeName)
	}

	switch {
	case repeated || t.repeated:
		f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	case (!required || t.optional) && t.kind != descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		f.Proto3Optional = proto.Bool(true)
		f.OneofIndex = proto.Int32(int32(len(msg.OneofDecl)))
		msg.OneofDecl = append(msg.OneofDecl, &descriptorpb.OneofDescriptorProto{Name: proto.String("_" + fieldName)})
	}

	msg.Field = append(msg.Field, f)
}

func (b *protoBuilder) mapEntry(fullName string, name string, s *model.Schema) (*descriptorpb.DescriptorProto, bool) {
	p, ok := b.v.singleRecord(s)
	if !ok {
		return nil, false
	}

	key := descriptorpb.FieldDescriptorProto_TYPE_STRING
	if recordKey(p.Pattern) == "number" {
		key = descriptorpb.FieldDescriptorProto_TYPE_INT64
	}

	value := b.v.Visit(p.Schema)
	if value.kind == 0 || value.repeated {
		value = b.fields.wellKnown(wellKnownValue)
	}

	valueField := &descriptorpb.FieldDescriptorProto{
		Name:     proto.String("value"),
		JsonName: proto.String("value"),
		Number:   proto.Int32(2),
		Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:     value.kind.Enum(),
	}
	if value.typeName != "" {
		valueField.TypeName = proto.String(value.typeName)
	}

	return &descriptorpb.DescriptorProto{
		Name: proto.String(pascal(name) + "Entry"),
		Field: []*descriptorpb.FieldDescriptorProto{
			{
				Name:     proto.String("key"),
				JsonName: proto.String("key"),
				Number:   proto.Int32(1),
				Label:    descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
				Type:     key.Enum(),
			},
			valueField,
		},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}, true
}

func (b *protoBuilder) service(name string, s *model.Schema) *descriptorpb.ServiceDescriptorProto {
	svc := &descriptorpb.ServiceDescriptorProto{Name: proto.String(name)}

	for _, p := range s.Properties {
		if p.Schema == nil || p.Schema.Kind != model.KindFunction {
			b.v.degradef("service %s property %s is not a method", name, p.Name)
			continue
		}

		method := pascal(p.Name)
		fn := p.Schema

		svc.Method = append(svc.Method, &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(method),
			InputType:  proto.String(b.request(name+method+"Request", fn.Parameters)),
			OutputType: proto.String(b.response(name+method+"Response", fn.Returns)),
		})
	}

	return svc
}

// request names the message a method takes: a declared message when the
// method has exactly one such parameter, a synthesized one otherwise.
func (b *protoBuilder) request(name string, params []*model.Schema) string {
	if len(params) == 1 {
		if typeName, ok := b.declaredMessage(params[0]); ok {
			return typeName
		}
	}

	props := make([]model.Property, len(params))
	required := make([]string, len(params))
	for i, p := range params {
		props[i] = model.Property{Name: fmt.Sprintf("arg%d", i), Schema: p}
		required[i] = props[i].Name
	}

	b.file.MessageType = append(b.file.MessageType, b.message(name, b.fields.fullName(name), props, required))
	return b.fields.fullName(name)
}

func (b *protoBuilder) response(name string, returns *model.Schema) string {
	if returns != nil && returns.Kind == model.KindPromise {
		returns = returns.Items
	}

	if returns == nil || returns.Kind == model.KindVoid || returns.Kind == model.KindUndefined {
		return b.fields.wellKnown(wellKnownEmpty).typeName
	}

	if typeName, ok := b.declaredMessage(returns); ok {
		return typeName
	}

	props := []model.Property{{Name: "value", Schema: returns}}
	b.file.MessageType = append(b.file.MessageType, b.message(name, b.fields.fullName(name), props, []string{"value"}))
	return b.fields.fullName(name)
}

func (b *protoBuilder) declaredMessage(s *model.Schema) (string, bool) {
	if s == nil || s.Kind != model.KindRef {
		return "", false
	}

	target, ok := b.fields.model.Lookup(s.Ref)
	if !ok || isEnum(target) || target.HasFunctions() {
		return "", false
	}

	return b.fields.fullName(target.ID), true
}

func (b *protoBuilder) note(fullName string, text string) {
	b.notes[fullName] = append(b.notes[fullName], text)
}

func enum(name string, s *model.Schema) *descriptorpb.EnumDescriptorProto {
	prefix := upperSnake(name)

	e := &descriptorpb.EnumDescriptorProto{
		Name: proto.String(name),
		Value: []*descriptorpb.EnumValueDescriptorProto{
			{Name: proto.String(prefix + "_UNSPECIFIED"), Number: proto.Int32(0)},
		},
	}

	seen := map[string]bool{prefix + "_UNSPECIFIED": true}

	for i, m := range s.AnyOf {
		value := prefix + "_" + upperSnake(m.Const.(string))
		if seen[value] || strings.HasSuffix(value, "_") {
			value = fmt.Sprintf("%s_%d", prefix, i+1)
		}
		seen[value] = true

		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(value),
			Number: proto.Int32(int32(i + 1)),
		})
	}

	return e
}

var (
	nonIdent  = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	wordBreak = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

func protoIdent(name string) string {
	out := nonIdent.ReplaceAllString(name, "_")
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "_" + out
	}

	return out
}

func pascal(name string) string {
	parts := strings.FieldsFunc(protoIdent(name), func(r rune) bool { return r == '_' })

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}

	if b.Len() == 0 {
		return "Field"
	}

	return b.String()
}

func upperSnake(name string) string {
	return strings.ToUpper(strings.Trim(protoIdent(wordBreak.ReplaceAllString(name, "${1}_${2}")), "_"))
}
