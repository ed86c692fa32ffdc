package conv

import (
	"fmt"

	"castor/internal/types"
)

// ErrorKind classifies Applier failures. Each kind is itself an error so
// callers can test with errors.Is(err, conv.ErrConstantOverflow).
type ErrorKind uint8

const (
	ErrNoConversion ErrorKind = iota + 1
	ErrAmbiguous
	ErrConstantOverflow
	ErrInvalidPointer
	// ErrOverflowContext: a constant had to be narrowed but the context
	// named neither checked nor unchecked.
	ErrOverflowContext
)

func (k ErrorKind) Error() string {
	switch k {
	case ErrNoConversion:
		return "no conversion"
	case ErrAmbiguous:
		return "ambiguous user-defined conversion"
	case ErrConstantOverflow:
		return "constant value cannot be converted"
	case ErrInvalidPointer:
		return "invalid pointer conversion"
	case ErrOverflowContext:
		return "constant conversion needs a checked or unchecked context"
	}
	return "conversion error"
}

// Error is returned by Apply and Engine.Convert.
type Error struct {
	Kind   ErrorKind
	Source types.TypeID
	Target types.TypeID
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(in *types.Interner, kind ErrorKind, src, dst types.TypeID, format string, args ...any) *Error {
	msg := fmt.Sprintf("%s -> %s", in.Label(src), in.Label(dst))
	if format != "" {
		msg += ": " + fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Source: src, Target: dst, Msg: msg}
}
