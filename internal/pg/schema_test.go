package pg_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/pg"
	assert "github.com/stretchr/testify/require"
)

func TestParseCreateTable(t *testing.T) {
	db, err := pg.Parse(`
		CREATE TYPE status AS ENUM ('active', 'banned');

		CREATE TABLE app.person (
			id TEXT PRIMARY KEY,
			age BIGINT NOT NULL CHECK (age >= 0),
			score DOUBLE PRECISION,
			tags TEXT[],
			state status NOT NULL
		);

		COMMENT ON TABLE app.person IS 'People';
		COMMENT ON COLUMN app.person.age IS 'In years';
	`)
	assert.NoError(t, err)

	assert.Len(t, db.Enums, 1)
	assert.Equal(t, []string{"active", "banned"}, db.Enums[0].Values)

	table := db.TablesByName[pg.NewTableName("person", "app")]
	assert.NotNil(t, table)
	assert.Equal(t, "People", table.Comment)
	assert.Len(t, table.Columns, 5)

	id := table.ColumnsByName["id"]
	assert.True(t, id.PrimaryKey)
	assert.Equal(t, "text", id.Type.Name)

	age := table.ColumnsByName["age"]
	assert.Equal(t, "bigint", age.Type.Name)
	assert.True(t, age.Type.NotNull)
	assert.Equal(t, []string{"age >= 0"}, age.Checks)
	assert.Equal(t, "In years", age.Comment)

	assert.Equal(t, "double precision", table.ColumnsByName["score"].Type.Name)
	assert.False(t, table.ColumnsByName["score"].Type.NotNull)
	assert.True(t, table.ColumnsByName["tags"].Type.Array)

	state := table.ColumnsByName["state"]
	assert.Equal(t, "status", state.Type.Name)
	assert.False(t, state.Type.Builtin())
}

func TestParseAlterTable(t *testing.T) {
	db, err := pg.Parse(`
		CREATE TABLE a (x INT, y INT);
		ALTER TABLE a ADD COLUMN z TEXT;
		ALTER TABLE a DROP COLUMN y;
		ALTER TABLE a ALTER COLUMN x SET NOT NULL;
		ALTER TABLE a RENAME COLUMN z TO w;
		ALTER TABLE a RENAME TO b;
		CREATE INDEX b_x ON b (x);
	`)
	assert.NoError(t, err)

	b := db.TablesByName[pg.NewTableName("b")]
	assert.NotNil(t, b)
	assert.Equal(t, "b (\n  x integer NOT NULL,\n  w text\n)", b.String())
	assert.Len(t, db.Other, 1)
}

func TestParseError(t *testing.T) {
	_, err := pg.Parse("CREATE TABLE a (\n  x INT,\n  y INT,,\n)")

	var perr *pg.ParseError
	assert.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Line)
	assert.Greater(t, perr.Column, 1)
}

func TestFormatIsStable(t *testing.T) {
	sql := "CREATE TYPE status AS ENUM ('active', 'banned');\n\n" +
		"CREATE TABLE \"user\" (\n" +
		"  id text PRIMARY KEY,\n" +
		"  display_name text NOT NULL CHECK (char_length(display_name) >= 1),\n" +
		"  age bigint CHECK (age > 0),\n" +
		"  state status NOT NULL\n" +
		");\n\n" +
		"COMMENT ON COLUMN \"user\".age IS 'It''s in years';\n"

	out, err := pg.Format(sql)
	assert.NoError(t, err)
	assert.Equal(t, sql, out)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "name", pg.QuoteIdent("name"))
	assert.Equal(t, `"user"`, pg.QuoteIdent("user"))
	assert.Equal(t, `"Name"`, pg.QuoteIdent("Name"))
	assert.Equal(t, `"a""b"`, pg.QuoteIdent(`a"b`))
}
