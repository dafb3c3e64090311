package pg

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/ptr"
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// Parse builds the DB created by a DDL script. Statements other than the
// ones below are kept as deparsed text in DB.Other.
func Parse(sql string) (*DB, error) {
	ast, err := parseSql(sql)
	if err != nil {
		return nil, err
	}

	db := NewDB()

	for _, s := range ast.GetStmts() {
		switch node := s.GetStmt().GetNode().(type) {
		case *pg_query.Node_CreateStmt:
			if err := createTable(db, node.CreateStmt); err != nil {
				return nil, errors.Wrap(err, "failed to parse a create table statement")
			}
		case *pg_query.Node_CreateEnumStmt:
			if err := createEnum(db, node.CreateEnumStmt); err != nil {
				return nil, errors.Wrap(err, "failed to parse a create type statement")
			}
		case *pg_query.Node_DropStmt:
			if err := dropTable(db, node.DropStmt); err != nil {
				return nil, errors.Wrap(err, "failed to parse a drop table statement")
			}
		case *pg_query.Node_AlterTableStmt:
			if err := alterTable(db, node.AlterTableStmt); err != nil {
				return nil, errors.Wrap(err, "failed to parse an alter table statement")
			}
		case *pg_query.Node_RenameStmt:
			if err := rename(db, node.RenameStmt); err != nil {
				return nil, errors.Wrap(err, "failed to parse a rename statement")
			}
		case *pg_query.Node_CommentStmt:
			if err := comment(db, node.CommentStmt); err != nil {
				return nil, errors.Wrap(err, "failed to parse a comment statement")
			}
		default:
			text, err := deparseStmt(s)
			if err != nil {
				return nil, err
			}
			db.Other = append(db.Other, text)
		}
	}

	return db, nil
}

func ParseFile(filePath string) (*DB, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, `failed to read file "%s"`, filePath)
	}

	db, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, `failed to parse file "%s"`, filePath)
	}

	return db, nil
}

// Format parses a DDL script and prints it back in canonical form.
func Format(sql string) (string, error) {
	db, err := Parse(sql)
	if err != nil {
		return "", err
	}

	return db.String(), nil
}

func createTable(db *DB, stmt *pg_query.CreateStmt) error {
	rel := stmt.GetRelation()
	if rel == nil {
		return errors.New("no relation")
	}

	name := rel.GetRelname()
	if len(name) == 0 {
		return errors.New("empty table name")
	}

	table := NewTable(NewTableName(name, rel.GetSchemaname()))
	for _, c := range stmt.GetTableElts() {
		if def := c.GetColumnDef(); def != nil {
			if err := addColumn(table, def); err != nil {
				return err
			}
		} else if like := c.GetTableLikeClause(); like != nil {
			likeTable := db.TablesByName[NewTableName(like.GetRelation().GetRelname(), like.GetRelation().GetSchemaname())]
			if likeTable == nil {
				return errors.Newf(`tried to create a table using like clause with unknown table "%s"`, like.GetRelation().GetRelname())
			}

			table.CopyColumns(likeTable)
		}
	}

	db.AddTable(table)
	return nil
}

func createEnum(db *DB, stmt *pg_query.CreateEnumStmt) error {
	names := getStrings(stmt.GetTypeName())
	if len(names) == 0 {
		return errors.New("empty type name")
	}

	e := &Enum{Name: NewTableName(names[len(names)-1]), Values: getStrings(stmt.GetVals())}
	if len(names) == 2 {
		e.Name.Schema = names[0]
	}

	db.Enums = append(db.Enums, e)
	return nil
}

func addColumn(table *Table, def *pg_query.ColumnDef) error {
	if col, err := parseColumnDef(def); err != nil {
		return err
	} else {
		table.AddColumn(col)
	}

	return nil
}

func parseColumnDef(def *pg_query.ColumnDef) (*Column, error) {
	col := Column{
		Name:   def.GetColname(),
		Checks: make([]string, 0),
	}

	if t, err := parseColumnType(def); err != nil {
		return nil, errors.Wrapf(err, `failed to parse type for column "%s"`, col.Name)
	} else {
		col.Type = *t
	}

	for _, c := range def.GetConstraints() {
		constraint := c.GetConstraint()

		switch constraint.GetContype() {
		case pg_query.ConstrType_CONSTR_PRIMARY:
			col.PrimaryKey = true
			col.Type.NotNull = false
		case pg_query.ConstrType_CONSTR_CHECK:
			check, err := deparseExpr(constraint.GetRawExpr())
			if err != nil {
				return nil, errors.Wrapf(err, `failed to parse check constraint of column "%s"`, col.Name)
			}
			col.Checks = append(col.Checks, check)
		}
	}

	return &col, nil
}

func parseColumnType(def *pg_query.ColumnDef) (*DataType, error) {
	typeName := def.GetTypeName()
	if typeName == nil {
		return nil, errors.New("no type name")
	}

	t, err := parseTypeName(typeName)
	if err != nil {
		return nil, err
	}

	t.NotNull = isNotNull(def)
	return t, nil
}

func parseTypeName(typeName *pg_query.TypeName) (*DataType, error) {
	t := &DataType{
		Array: len(typeName.GetArrayBounds()) > 0,
	}

	names := typeName.GetNames()
	if len(names) == 2 {
		t.Schema = ptr.V(getString(names[0]))
		t.Name = getString(names[1])
	} else if len(names) == 1 {
		t.Name = getString(names[0])
	} else {
		return nil, errors.Newf("a surprising amount of names (%d) in a type name", len(names))
	}

	t.Name = strings.ToLower(t.Name)
	if t.Schema != nil {
		t.Schema = ptr.V(strings.ToLower(*t.Schema))
	}

	if t.Schema != nil && *t.Schema == "pg_catalog" {
		t.Schema = nil
		if name, ok := canonicalTypes[t.Name]; ok {
			t.Name = name
		}
	}

	return t, nil
}

func isNotNull(def *pg_query.ColumnDef) bool {
	for _, c := range def.GetConstraints() {
		switch c.GetConstraint().GetContype() {
		case pg_query.ConstrType_CONSTR_NOTNULL:
			return true
		}

	}

	return false
}

func dropTable(db *DB, stmt *pg_query.DropStmt) error {
	for _, o := range stmt.GetObjects() {
		for _, i := range o.GetList().GetItems() {
			tableName := getString(i)

			table := db.TablesByName[NewTableName(tableName)]
			if table == nil {
				return errors.Newf(`unknown table "%s"`, tableName)
			}

			db.RemoveTable(table.Name)
		}
	}

	return nil
}

func alterTable(db *DB, stmt *pg_query.AlterTableStmt) error {
	rel := stmt.GetRelation()
	if rel == nil {
		return errors.New("no relation")
	}

	name := rel.GetRelname()
	if len(name) == 0 {
		return errors.New("empty table name")
	}

	table := db.TablesByName[NewTableName(name, rel.GetSchemaname())]
	if table == nil {
		return errors.Newf(`table "%s" hasn't been created`, name)
	}

	for _, cmd := range stmt.GetCmds() {
		alter := cmd.GetAlterTableCmd()

		switch alter.Subtype {
		case pg_query.AlterTableType_AT_AddColumn:
			if err := addColumn(table, alter.Def.GetColumnDef()); err != nil {
				return errors.Wrap(err, "failed to add column")
			}
		case pg_query.AlterTableType_AT_DropColumn:
			if err := removeColumn(table, alter.GetName()); err != nil {
				return errors.Wrap(err, "failed to drop column")
			}
		case pg_query.AlterTableType_AT_SetNotNull:
			if err := setNotNull(table, alter.GetName(), true); err != nil {
				return errors.Wrap(err, "failed to set column not null")
			}
		case pg_query.AlterTableType_AT_DropNotNull:
			if err := setNotNull(table, alter.GetName(), false); err != nil {
				return errors.Wrap(err, "failed to drop not null")
			}
		}
	}

	return nil
}

func removeColumn(table *Table, colName string) error {
	_, ok := table.ColumnsByName[colName]
	if !ok {
		return errors.Newf(`could not find column "%s" in table "%s"`, colName, table.Name)
	}

	table.RemoveColumn(colName)
	return nil
}

func setNotNull(table *Table, colName string, notNull bool) error {
	col, ok := table.ColumnsByName[colName]
	if !ok {
		return errors.Newf(`could not find column "%s" in table "%s"`, colName, table.Name)
	}

	col.Type.NotNull = notNull
	return nil
}

func rename(db *DB, stmt *pg_query.RenameStmt) error {
	rel := stmt.GetRelation()
	if rel == nil {
		return errors.New("no relation")
	}

	tableName := rel.GetRelname()
	if len(tableName) == 0 {
		return errors.New("empty table name")
	}

	table := db.TablesByName[NewTableName(tableName, rel.GetSchemaname())]
	if table == nil {
		return errors.Newf(`unknown table "%s"`, tableName)
	}

	switch stmt.GetRenameType() {
	case pg_query.ObjectType_OBJECT_COLUMN:
		if col := table.ColumnsByName[stmt.GetSubname()]; col == nil {
			return errors.Newf(`unknown column "%s" in table "%s"`, stmt.GetSubname(), tableName)
		} else {
			table.RenameColumn(stmt.GetSubname(), stmt.GetNewname())
		}
	case pg_query.ObjectType_OBJECT_TABLE:
		db.RenameTable(table.Name, NewTableName(stmt.GetNewname(), rel.GetSchemaname()))
	default:
		return errors.Newf("unknown rename type %s", stmt.GetRenameType().String())
	}

	return nil
}

// comment handles COMMENT ON TABLE and COMMENT ON COLUMN. The object is a
// list of names whose last element is the commented object.
func comment(db *DB, stmt *pg_query.CommentStmt) error {
	names := getStrings(stmt.GetObject().GetList().GetItems())

	lookup := func(names []string) (*Table, error) {
		var name TableName
		switch len(names) {
		case 1:
			name = NewTableName(names[0])
		case 2:
			name = NewTableName(names[1], names[0])
		default:
			return nil, errors.Newf("a surprising amount of names (%d) in a comment", len(names))
		}

		table := db.TablesByName[name]
		if table == nil {
			return nil, errors.Newf(`unknown table "%s"`, name.String())
		}

		return table, nil
	}

	switch stmt.GetObjtype() {
	case pg_query.ObjectType_OBJECT_TABLE:
		table, err := lookup(names)
		if err != nil {
			return err
		}
		table.Comment = stmt.GetComment()
	case pg_query.ObjectType_OBJECT_COLUMN:
		if len(names) < 2 {
			return errors.New("column comment without a table")
		}

		table, err := lookup(names[:len(names)-1])
		if err != nil {
			return err
		}

		col := table.ColumnsByName[names[len(names)-1]]
		if col == nil {
			return errors.Newf(`unknown column "%s" in table "%s"`, names[len(names)-1], table.Name)
		}
		col.Comment = stmt.GetComment()
	default:
		return errors.Newf("unsupported comment target %s", stmt.GetObjtype().String())
	}

	return nil
}
