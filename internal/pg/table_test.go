package pg_test

import (
	"testing"

	"github.com/koskimas/typeshift/internal/pg"
	assert "github.com/stretchr/testify/require"
)

func TestCreateTableLikeCopiesColumns(t *testing.T) {
	db, err := pg.Parse(`
		CREATE TABLE base (id TEXT PRIMARY KEY, name TEXT NOT NULL);
		CREATE TABLE derived (LIKE base, extra INT);
		ALTER TABLE derived RENAME COLUMN name TO title;
	`)
	assert.NoError(t, err)

	base := db.TablesByName[pg.NewTableName("base")]
	copied := db.TablesByName[pg.NewTableName("derived")]
	assert.Equal(t, "derived (\n  id text PRIMARY KEY,\n  title text NOT NULL,\n  extra integer\n)", copied.String())

	// Renaming the copy leaves the original alone.
	assert.Contains(t, base.ColumnsByName, "name")
	assert.NotContains(t, base.ColumnsByName, "title")
}

func TestTableComments(t *testing.T) {
	table := pg.NewTable(pg.NewTableName("person", "app"))
	table.Comment = "People"
	table.AddColumn(&pg.Column{Name: "id", Type: pg.DataType{Name: "text"}, PrimaryKey: true})
	table.AddColumn(&pg.Column{Name: "age", Type: pg.DataType{Name: "bigint"}, Comment: "In years"})

	db := pg.NewDB()
	db.AddTable(table)

	assert.Equal(t, "CREATE TABLE app.person (\n"+
		"  id text PRIMARY KEY,\n"+
		"  age bigint\n"+
		");\n\n"+
		"COMMENT ON TABLE app.person IS 'People';\n\n"+
		"COMMENT ON COLUMN app.person.age IS 'In years';\n", db.String())
}

func TestRemoveColumn(t *testing.T) {
	table := pg.NewTable(pg.NewTableName("a"))
	table.AddColumn(&pg.Column{Name: "x", Type: pg.DataType{Name: "text"}})
	table.AddColumn(&pg.Column{Name: "y", Type: pg.DataType{Name: "text"}})

	table.RemoveColumn("x")
	assert.Len(t, table.Columns, 1)
	assert.NotContains(t, table.ColumnsByName, "x")
	assert.Equal(t, "a (\n  y text\n)", table.String())
}
