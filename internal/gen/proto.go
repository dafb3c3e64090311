package gen

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/descriptorpb"
)

// printProto renders a file descriptor as .proto source. Nesting is written
// with two space indentation.
func printProto(file *descriptorpb.FileDescriptorProto, notes map[string][]string) string {
	p := &protoPrinter{pkg: file.GetPackage(), notes: notes}

	p.line(0, fmt.Sprintf("syntax = %q;", file.GetSyntax()))
	p.blank()
	p.line(0, fmt.Sprintf("package %s;", file.GetPackage()))

	if len(file.Dependency) > 0 {
		p.blank()
		for _, d := range file.Dependency {
			p.line(0, fmt.Sprintf("import %q;", d))
		}
	}

	for _, e := range file.EnumType {
		p.blank()
		p.enum(0, e)
	}

	for _, m := range file.MessageType {
		p.blank()
		p.message(0, "."+p.pkg+"."+m.GetName(), m)
	}

	for _, s := range file.Service {
		p.blank()
		p.service(s)
	}

	return p.b.String()
}

type protoPrinter struct {
	b     strings.Builder
	pkg   string
	notes map[string][]string
}

func (p *protoPrinter) line(depth int, text string) {
	p.b.WriteString(strings.Repeat("  ", depth))
	p.b.WriteString(text)
	p.b.WriteByte('\n')
}

func (p *protoPrinter) blank() {
	p.b.WriteByte('\n')
}

// typeName shortens a fully qualified name relative to the file package.
func (p *protoPrinter) typeName(name string) string {
	prefix := "." + p.pkg + "."
	if strings.HasPrefix(name, prefix) {
		return name[len(prefix):]
	}

	return strings.TrimPrefix(name, ".")
}

func (p *protoPrinter) enum(depth int, e *descriptorpb.EnumDescriptorProto) {
	p.line(depth, "enum "+e.GetName()+" {")
	for _, v := range e.Value {
		p.line(depth+1, fmt.Sprintf("%s = %d;", v.GetName(), v.GetNumber()))
	}
	p.line(depth, "}")
}

func (p *protoPrinter) message(depth int, fullName string, m *descriptorpb.DescriptorProto) {
	p.line(depth, "message "+m.GetName()+" {")

	for _, n := range p.notes[fullName] {
		p.line(depth+1, "// unsupported: "+n)
	}

	entries := make(map[string]*descriptorpb.DescriptorProto)

	for _, nested := range m.NestedType {
		if nested.GetOptions().GetMapEntry() {
			entries[fullName+"."+nested.GetName()] = nested
			continue
		}

		p.message(depth+1, fullName+"."+nested.GetName(), nested)
	}

	for _, f := range m.Field {
		entry, isMap := entries[f.GetTypeName()]

		switch {
		case isMap:
			key, value := entry.Field[0], entry.Field[1]
			p.line(depth+1, fmt.Sprintf("map<%s, %s> %s = %d;", p.fieldType(key), p.fieldType(value), f.GetName(), f.GetNumber()))
		case f.GetLabel() == descriptorpb.FieldDescriptorProto_LABEL_REPEATED:
			p.line(depth+1, fmt.Sprintf("repeated %s %s = %d;", p.fieldType(f), f.GetName(), f.GetNumber()))
		case f.GetProto3Optional():
			p.line(depth+1, fmt.Sprintf("optional %s %s = %d;", p.fieldType(f), f.GetName(), f.GetNumber()))
		default:
			p.line(depth+1, fmt.Sprintf("%s %s = %d;", p.fieldType(f), f.GetName(), f.GetNumber()))
		}
	}

	p.line(depth, "}")
}

func (p *protoPrinter) fieldType(f *descriptorpb.FieldDescriptorProto) string {
	if f.TypeName != nil {
		return p.typeName(f.GetTypeName())
	}

	return strings.ToLower(strings.TrimPrefix(f.GetType().String(), "TYPE_"))
}

func (p *protoPrinter) service(s *descriptorpb.ServiceDescriptorProto) {
	p.line(0, "service "+s.GetName()+" {")
	for _, m := range s.Method {
		p.line(1, fmt.Sprintf("rpc %s(%s) returns (%s);", m.GetName(), p.typeName(m.GetInputType()), p.typeName(m.GetOutputType())))
	}
	p.line(0, "}")
}
