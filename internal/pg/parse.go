package pg

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	pg_query "github.com/pganalyze/pg_query_go/v5"
	"github.com/pganalyze/pg_query_go/v5/parser"
)

// ParseError is a syntax error reported by the postgres parser.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

func parseSql(sql string) (*pg_query.ParseResult, error) {
	ast, err := pg_query.Parse(sql)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			line, column := resolvePosition(sql, perr.Cursorpos-1)
			return nil, &ParseError{Line: line, Column: column, Message: perr.Message}
		}

		return nil, errors.Wrap(err, "failed to parse AST")
	}

	return ast, nil
}

// deparseExpr prints a single expression node by deparsing it as the only
// target of a SELECT.
func deparseExpr(expr *pg_query.Node) (string, error) {
	stmt := &pg_query.SelectStmt{
		TargetList: []*pg_query.Node{pg_query.MakeResTargetNodeWithVal(expr, 0)},
		Op:         pg_query.SetOperation_SETOP_NONE,
	}

	out, err := pg_query.Deparse(&pg_query.ParseResult{
		Stmts: []*pg_query.RawStmt{{Stmt: &pg_query.Node{Node: &pg_query.Node_SelectStmt{SelectStmt: stmt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to deparse expression")
	}

	return strings.TrimPrefix(out, "SELECT "), nil
}

func deparseStmt(stmt *pg_query.RawStmt) (string, error) {
	out, err := pg_query.Deparse(&pg_query.ParseResult{Stmts: []*pg_query.RawStmt{stmt}})
	if err != nil {
		return "", errors.Wrap(err, "failed to deparse statement")
	}

	return out, nil
}
