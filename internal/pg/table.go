package pg

import (
	"slices"
)

// Table is a relation created by CREATE TABLE. ColumnsByName indexes the
// same columns that Columns keeps in declaration order.
type Table struct {
	Name          TableName
	Columns       []*Column
	ColumnsByName map[string]*Column
	Comment       string
}

// TableName is a relation or type name with an optional schema.
type TableName struct {
	Name   string
	Schema string
}

func NewTable(name TableName) *Table {
	return &Table{
		Name:          name,
		Columns:       make([]*Column, 0),
		ColumnsByName: make(map[string]*Column),
	}
}

func (t *Table) AddColumn(col *Column) {
	t.ColumnsByName[col.Name] = col
	t.Columns = append(t.Columns, col)
}

// CopyColumns appends a copy of every column of other, as a LIKE clause does.
func (t *Table) CopyColumns(other *Table) {
	for _, c := range other.Columns {
		t.AddColumn(c.Clone())
	}
}

func (t *Table) RemoveColumn(name string) {
	delete(t.ColumnsByName, name)
	t.Columns = slices.DeleteFunc(t.Columns, func(c *Column) bool { return c.Name == name })
}

func (t *Table) RenameColumn(name string, newName string) {
	c := t.ColumnsByName[name]
	delete(t.ColumnsByName, name)

	c.Name = newName
	t.ColumnsByName[newName] = c
}

func (t *Table) writeCreate(s *ddlWriter) {
	s.WriteString("CREATE TABLE ")
	t.writeString(s)
}

func (t *Table) writeString(s *ddlWriter) {
	t.Name.writeString(s)
	s.WriteString(" (")
	s.WriteNewLine()
	s.push()

	for i, c := range t.Columns {
		c.writeString(s)

		if i != len(t.Columns)-1 {
			s.WriteString(",")
		}

		s.WriteNewLine()
	}

	s.pop()
	s.WriteString(")")
}

// writeComments writes one COMMENT ON statement for the table and one for
// each commented column.
func (t *Table) writeComments(s *ddlWriter) {
	if t.Comment != "" {
		s.statement(func() {
			s.WriteString("COMMENT ON TABLE " + t.Name.String() + " IS " + QuoteLiteral(t.Comment))
		})
	}

	for _, c := range t.Columns {
		if c.Comment == "" {
			continue
		}

		s.statement(func() {
			s.WriteString("COMMENT ON COLUMN " + t.Name.String() + "." + QuoteIdent(c.Name) + " IS " + QuoteLiteral(c.Comment))
		})
	}
}

func (t *Table) String() string {
	var s ddlWriter
	t.writeString(&s)
	return s.String()
}

func NewTableName(name string, schema ...string) TableName {
	n := TableName{Name: name}
	if len(schema) > 0 {
		n.Schema = schema[0]
	}

	return n
}

func (n TableName) writeString(s *ddlWriter) {
	if n.Schema != "" {
		s.WriteString(QuoteIdent(n.Schema) + ".")
	}

	s.WriteString(QuoteIdent(n.Name))
}

func (n TableName) String() string {
	var s ddlWriter
	n.writeString(&s)
	return s.String()
}
