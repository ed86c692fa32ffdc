package types

import "fmt"

// InternalError signals a broken type model: a descriptor that construction
// invariants should have made impossible. It is raised with panic and never
// describes a user-facing language situation.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "types: internal error: " + e.Msg
}

func internalf(format string, args ...any) {
	panic(&InternalError{Msg: fmt.Sprintf(format, args...)})
}
