package gen

import (
	"fmt"
	"strings"

	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/pg"
)

// sqlTypes renders column types for Postgres. Every object declaration
// becomes a table and every string literal union an enum type; values
// without a column type of their own are stored as jsonb.
type sqlTypes struct {
	schema string
}

var (
	sqlJsonb   = pg.DataType{Name: pg.DataTypeJsonb}
	sqlText    = pg.DataType{Name: "text"}
	sqlDouble  = pg.DataType{Name: "double precision"}
	sqlBoolean = pg.DataType{Name: "boolean"}
)

func generateSQL(m *model.Model, opts Options) (*Result, error) {
	types := sqlTypes{schema: opts.SQLSchema}
	v := newVisitor[pg.DataType](m, types, opts.Bounds(TargetSQL))
	db := pg.NewDB()

	for i, t := range m.Types {
		name := declarationName(i, t)
		v.state.Enter(name, t)

		switch {
		case isEnum(t):
			e := &pg.Enum{Name: types.name(name)}
			for _, lit := range t.AnyOf {
				e.Values = append(e.Values, lit.Const.(string))
			}
			db.Enums = append(db.Enums, e)
		case t.Kind == model.KindObject && !t.HasFunctions():
			db.AddTable(sqlTable(v, types.name(name), t))
		default:
			v.degradef("type %s is not an object and has no table", name)
		}

		v.state.Leave()
		v.state.MarkEmitted(name)
	}

	return v.result(db.String()), nil
}

func (r sqlTypes) name(declaration string) pg.TableName {
	return pg.NewTableName(snake(declaration), r.schema)
}

func snake(name string) string {
	return strings.ToLower(upperSnake(name))
}

func sqlTable(v *visitor[pg.DataType], name pg.TableName, s *model.Schema) *pg.Table {
	table := pg.NewTable(name)
	table.Comment = s.Description

	for _, p := range s.Properties {
		if p.Schema != nil && p.Schema.Kind == model.KindFunction {
			v.degradef("method %s has no column", p.Name)
			continue
		}

		col := &pg.Column{
			Name:   snake(p.Name),
			Type:   v.Visit(p.Schema),
			Checks: make([]string, 0),
		}

		required := s.IsRequired(p.Name) && !nullable(p.Schema)
		if p.Name == "id" && required {
			col.PrimaryKey = true
		} else {
			col.Type.NotNull = required
		}

		if p.Schema != nil {
			col.Comment = p.Schema.Description
			col.Checks = sqlChecks(v, pg.QuoteIdent(col.Name), col.Type, p.Schema)
		}

		table.AddColumn(col)
	}

	if s.Additional == model.AdditionalSchema || s.Additional == model.AdditionalAllow {
		v.degradef("additional properties of %s are not stored", name.Name)
	}

	return table
}

func nullable(s *model.Schema) bool {
	return s != nil && s.Kind == model.KindUnion && len(nonNull(s.AnyOf)) < len(s.AnyOf)
}

// sqlChecks returns the CHECK expressions for the constraints of a column.
// They're written the way pg_query deparses them.
func sqlChecks(v *visitor[pg.DataType], col string, t pg.DataType, s *model.Schema) []string {
	if s.Kind == model.KindUnion && !isEnum(s) {
		if members := nonNull(s.AnyOf); len(members) == 1 && members[0] != nil {
			s = members[0]
		}
	}

	checks := make([]string, 0)

	switch s.Kind {
	case model.KindNumber, model.KindInteger:
		ops := [...]string{">=", ">", "<=", "<"}
		for _, b := range v.numberBounds(s) {
			checks = append(checks, fmt.Sprintf("%s %s %s", col, ops[b.op], jsNumber(b.value)))
		}

		if s.MultipleOf != nil {
			if s.Kind == model.KindInteger {
				checks = append(checks, fmt.Sprintf("%s %% %s = 0", col, jsNumber(*s.MultipleOf)))
			} else {
				v.degradef("multipleOf on a double precision column %s", col)
			}
		}
	case model.KindString:
		if s.MinLength != nil {
			checks = append(checks, fmt.Sprintf("char_length(%s) >= %d", col, *s.MinLength))
		}
		if s.MaxLength != nil {
			checks = append(checks, fmt.Sprintf("char_length(%s) <= %d", col, *s.MaxLength))
		}
		if s.Pattern != "" {
			checks = append(checks, fmt.Sprintf("%s ~ %s", col, pg.QuoteLiteral(s.Pattern)))
		}
		if s.Format != "" {
			v.degradef("format %s of column %s is not checked", s.Format, col)
		}
	case model.KindTemplateLiteral:
		checks = append(checks, fmt.Sprintf("%s ~ %s", col, pg.QuoteLiteral(s.Pattern)))
	case model.KindLiteral:
		if value, ok := sqlLiteral(s.Const); ok {
			checks = append(checks, fmt.Sprintf("%s = %s", col, value))
		}
	case model.KindUnion:
		values := make([]string, len(s.AnyOf))
		for i, m := range s.AnyOf {
			values[i] = pg.QuoteLiteral(m.Const.(string))
		}
		checks = append(checks, fmt.Sprintf("%s IN (%s)", col, strings.Join(values, ", ")))
	case model.KindArray:
		length := "cardinality"
		if t.Json() {
			length = "jsonb_array_length"
		}

		if s.MinItems != nil {
			checks = append(checks, fmt.Sprintf("%s(%s) >= %d", length, col, *s.MinItems))
		}
		if s.MaxItems != nil {
			checks = append(checks, fmt.Sprintf("%s(%s) <= %d", length, col, *s.MaxItems))
		}
	}

	return checks
}

func sqlLiteral(value any) (string, bool) {
	switch c := value.(type) {
	case string:
		return pg.QuoteLiteral(c), true
	case float64:
		return jsNumber(c), true
	case bool:
		return fmt.Sprint(c), true
	}

	return "", false
}

func (sqlTypes) render(v *visitor[pg.DataType], s *model.Schema) pg.DataType {
	switch s.Kind {
	case model.KindAny, model.KindUnknown, model.KindNull, model.KindObject, model.KindRecord, model.KindTuple, model.KindIntersect:
		return sqlJsonb
	case model.KindBoolean:
		return sqlBoolean
	case model.KindNumber:
		return sqlDouble
	case model.KindInteger:
		return pg.DataType{Name: "bigint"}
	case model.KindBigInt:
		return pg.DataType{Name: "numeric"}
	case model.KindString, model.KindTemplateLiteral:
		return sqlText
	case model.KindDate:
		return pg.DataType{Name: "timestamptz"}
	case model.KindUint8Array:
		return pg.DataType{Name: "bytea"}
	case model.KindLiteral:
		switch s.Const.(type) {
		case string:
			return sqlText
		case float64:
			return sqlDouble
		case bool:
			return sqlBoolean
		}
		return sqlJsonb
	case model.KindArray:
		item := v.Visit(s.Items)
		if item.Array || item.Json() {
			return sqlJsonb
		}
		item.Array = true
		return item
	case model.KindUnion:
		if isEnum(s) {
			return sqlText
		}

		if members := nonNull(s.AnyOf); len(members) == 1 {
			return v.Visit(members[0])
		}
		return sqlJsonb
	}

	return v.unsupportedf("kind %s", s.Kind)
}

// Only enums have a type of their own. References to objects are stored
// inline as jsonb.
func (r sqlTypes) reference(v *visitor[pg.DataType], name string, target *model.Schema, kind refKind) pg.DataType {
	if !v.isDeclared(name) {
		return v.unsupportedf("recursive inline type %s", name)
	}

	if isEnum(target) {
		t := pg.DataType{Name: snake(name)}
		if r.schema != "" {
			t.Schema = &r.schema
		}
		return t
	}

	return sqlJsonb
}

func (sqlTypes) sentinel(reason string) pg.DataType {
	return sqlJsonb
}
