package match

import "fmt"

type MatchError struct {
	Message      string
	MismatchPath *SchemaPath
}

func (e *MatchError) Error() string {
	if e.MismatchPath == nil || len(e.MismatchPath.Path) == 0 {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.MismatchPath, e.Message)
}

func matchErrorf(mismatchPath *SchemaPath, format string, args ...any) *MatchError {
	return &MatchError{
		Message:      fmt.Sprintf(format, args...),
		MismatchPath: mismatchPath.clone(),
	}
}
