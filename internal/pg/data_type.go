package pg

const (
	DataTypeJson   = "json"
	DataTypeJsonb  = "jsonb"
	DataTypeRecord = "record"
)

var DataTypes = map[string]bool{
	"text":                        true,
	"varchar":                     true,
	"char":                        true,
	"character":                   true,
	"character varying":           true,
	"smallint":                    true,
	"int2":                        true,
	"int":                         true,
	"integer":                     true,
	"int4":                        true,
	"bigint":                      true,
	"int8":                        true,
	"smallserial":                 true,
	"serial2":                     true,
	"serial":                      true,
	"serial4":                     true,
	"bigserial":                   true,
	"serial8":                     true,
	"double precision":            true,
	"float8":                      true,
	"real":                        true,
	"float4":                      true,
	"numeric":                     true,
	"decimal":                     true,
	"money":                       true,
	"bool":                        true,
	"boolean":                     true,
	"time without time zone":      true,
	"time":                        true,
	"time with time zone":         true,
	"timetz":                      true,
	"timestamp without time zone": true,
	"timestamp":                   true,
	"timestamp with time zone":    true,
	"timestamptz":                 true,
	"date":                        true,
	"interval":                    true,
	"uuid":                        true,
	"bit":                         true,
	"bit varying":                 true,
	"varbit":                      true,
	"bytea":                       true,
	DataTypeJson:                  true,
	DataTypeJsonb:                 true,
	DataTypeRecord:                true,
}

// canonicalTypes maps the internal names pg_query reports for built in types
// to the names they are written with.
var canonicalTypes = map[string]string{
	"int2":   "smallint",
	"int4":   "integer",
	"int8":   "bigint",
	"float4": "real",
	"float8": "double precision",
	"bool":   "boolean",
}

// DataType represents a postgres data type.
type DataType struct {
	Name    string
	Schema  *string
	NotNull bool

	// Array is true if the type is a postgres array. For example `INT[]`
	// would produce a DataType `{ Name: "int", Array: true }`.
	Array bool
}

func (d *DataType) Json() bool {
	return d.Name == DataTypeJson || d.Name == DataTypeJsonb
}

// Builtin reports whether the type is one of postgres' own types rather
// than a user defined enum.
func (d *DataType) Builtin() bool {
	return d.Schema == nil && DataTypes[d.Name]
}

func (d *DataType) Clone() DataType {
	return DataType{
		Name:    d.Name,
		NotNull: d.NotNull,
		Array:   d.Array,
		Schema:  d.Schema,
	}
}

func (d *DataType) writeString(s *ddlWriter) {
	if d.Schema != nil {
		s.WriteString(QuoteIdent(*d.Schema))
		s.WriteByte('.')
	}

	if d.Builtin() {
		s.WriteString(d.Name)
	} else {
		s.WriteString(QuoteIdent(d.Name))
	}

	if d.Array {
		s.WriteString("[]")
	}

	if d.NotNull {
		s.WriteString(" NOT NULL")
	}
}

func (d *DataType) String() string {
	var s ddlWriter
	d.writeString(&s)
	return s.String()
}
