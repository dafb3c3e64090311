package format

import (
	"go/format"

	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/pg"
)

// Go runs gofmt.
type Go struct{}

func (Go) Format(text string) (string, error) {
	out, err := format.Source([]byte(text))
	if err != nil {
		return "", &SyntaxError{Target: gen.TargetGo, Messages: []string{err.Error()}}
	}

	return string(out), nil
}

// SQL parses the script with the postgres parser and prints it back.
type SQL struct{}

func (SQL) Format(text string) (string, error) {
	out, err := pg.Format(text)
	if err != nil {
		return "", &SyntaxError{Target: gen.TargetSQL, Messages: []string{err.Error()}}
	}

	return out, nil
}
