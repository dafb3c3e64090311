package pg

import "slices"

// Column is a table column with its column level constraints.
type Column struct {
	Name       string
	Type       DataType
	PrimaryKey bool
	// Checks are the deparsed expressions of the column's CHECK constraints.
	Checks  []string
	Comment string
}

func (c *Column) Clone() *Column {
	return &Column{
		Name:       c.Name,
		Type:       c.Type.Clone(),
		PrimaryKey: c.PrimaryKey,
		Checks:     slices.Clone(c.Checks),
		Comment:    c.Comment,
	}
}

func (c *Column) writeString(s *ddlWriter) {
	s.WriteString(QuoteIdent(c.Name))
	s.WriteString(" ")
	c.Type.writeString(s)

	if c.PrimaryKey {
		s.WriteString(" PRIMARY KEY")
	}

	for _, check := range c.Checks {
		s.WriteString(" CHECK (" + check + ")")
	}
}

func (c *Column) String() string {
	var s ddlWriter
	c.writeString(&s)
	return s.String()
}
