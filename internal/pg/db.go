package pg

import (
	"slices"
)

// DB is the set of relations and enum types created by a DDL script, in the
// order they were created.
type DB struct {
	Enums        []*Enum
	Tables       []*Table
	TablesByName map[TableName]*Table

	// Other holds deparsed statements that aren't modelled.
	Other []string
}

type Enum struct {
	Name   TableName
	Values []string
}

func NewDB() *DB {
	return &DB{
		Enums:        make([]*Enum, 0),
		Tables:       make([]*Table, 0),
		TablesByName: make(map[TableName]*Table),
		Other:        make([]string, 0),
	}
}

func (db *DB) AddTable(table *Table) {
	db.TablesByName[table.Name] = table
	db.Tables = append(db.Tables, table)
}

func (db *DB) RemoveTable(name TableName) {
	delete(db.TablesByName, name)
	db.Tables = slices.DeleteFunc(db.Tables, func(t *Table) bool { return t.Name == name })
}

func (db *DB) RenameTable(name TableName, newName TableName) {
	t := db.TablesByName[name]
	delete(db.TablesByName, name)

	t.Name = newName
	db.TablesByName[newName] = t
}

func (db *DB) Enum(name TableName) *Enum {
	for _, e := range db.Enums {
		if e.Name == name {
			return e
		}
	}

	return nil
}

// String prints the DB as a DDL script: enum types, then tables, then the
// comments of both, then every unmodelled statement.
func (db *DB) String() string {
	var s ddlWriter
	stmt := s.statement

	for _, e := range db.Enums {
		stmt(func() { e.writeString(&s) })
	}

	for _, t := range db.Tables {
		stmt(func() { t.writeCreate(&s) })
	}

	for _, t := range db.Tables {
		t.writeComments(&s)
	}

	for _, o := range db.Other {
		stmt(func() { s.WriteString(o) })
	}

	if s.Len() > 0 {
		s.WriteNewLine()
	}

	return s.String()
}

func (e *Enum) writeString(s *ddlWriter) {
	s.WriteString("CREATE TYPE " + e.Name.String() + " AS ENUM (")

	values := make([]string, len(e.Values))
	for i, v := range e.Values {
		values[i] = QuoteLiteral(v)
	}
	s.list(values, ", ")

	s.WriteString(")")
}
