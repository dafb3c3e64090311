package pg

import pg_query "github.com/pganalyze/pg_query_go/v5"

func getString(node *pg_query.Node) string {
	return node.GetString_().GetSval()
}

// getStrings returns the values of a list of String nodes, such as the
// parts of a qualified name.
func getStrings(nodes []*pg_query.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = getString(n)
	}

	return out
}

// resolvePosition converts a byte offset of sql to a 1-based line and
// column.
func resolvePosition(sql string, offset int) (line int, column int) {
	line, column = 1, 1

	for i := 0; i < len(sql) && i < offset; i += 1 {
		if sql[i] == '\n' {
			line += 1
			column = 1
		} else {
			column += 1
		}
	}

	return line, column
}
