package format

import (
	"fmt"
	"strings"

	"github.com/koskimas/typeshift/internal/gen"
)

// Formatter pretty prints generated source text. Text that doesn't parse as
// the formatter's language is rejected with a *SyntaxError.
type Formatter interface {
	Format(text string) (string, error)
}

type SyntaxError struct {
	Target   gen.Target
	Messages []string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s output has syntax errors: %s", e.Target, strings.Join(e.Messages, "; "))
}

// For returns the formatter of a target's output language.
func For(target gen.Target) Formatter {
	switch target {
	case gen.TargetTypeBox, gen.TargetZod, gen.TargetYup, gen.TargetIoTs, gen.TargetArkType,
		gen.TargetValibot, gen.TargetTypeScript, gen.TargetYrel:
		return Script{Target: target}
	case gen.TargetJavaScript:
		return JavaScript{}
	case gen.TargetJSONSchema:
		return JSON{Target: target}
	case gen.TargetOpenAPI:
		return OpenAPI{}
	case gen.TargetGo:
		return Go{}
	case gen.TargetSQL:
		return SQL{}
	case gen.TargetGrpc:
		return Proto{}
	}

	return Noop{}
}

// Noop returns the text as is.
type Noop struct{}

func (Noop) Format(text string) (string, error) {
	return text, nil
}
