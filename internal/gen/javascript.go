package gen

import (
	"fmt"

	"github.com/koskimas/typeshift/internal/expr"
	"github.com/koskimas/typeshift/internal/model"
)

func generateJavaScript(m *model.Model, opts Options) (*Result, error) {
	named, v := checkDeclarations(m, opts, TargetJavaScript)

	blocks := make([]string, 0, len(named))
	for _, n := range named {
		blocks = append(blocks, fmt.Sprintf(
			"export function %s(value) {\n  return %s\n}",
			expr.CheckName(n.Name), expr.Print(n.Expr, "value"),
		))
	}

	if len(blocks) == 0 {
		return v.result(""), nil
	}

	return v.result(lines(blocks...)), nil
}
