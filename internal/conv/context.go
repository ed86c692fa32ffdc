package conv

import (
	"castor/internal/dialect"
	"castor/internal/source"
)

// Overflow selects constant-folding behaviour for out-of-range values.
// There is no default: folding an out-of-range constant under
// OverflowUnspecified is an error.
type Overflow uint8

const (
	OverflowUnspecified Overflow = iota
	Checked
	Unchecked
)

func (o Overflow) String() string {
	switch o {
	case Checked:
		return "checked"
	case Unchecked:
		return "unchecked"
	default:
		return "unspecified"
	}
}

// Context carries every per-query flag. It is passed by value; the engine
// keeps no global mode.
type Context struct {
	// Explicit enables the explicit conversions of a cast expression.
	Explicit bool
	// UpconvertOnly disables the extended dialect's loose numeric narrowing
	// and truth testing; overload ranking sets it.
	UpconvertOnly bool
	Dialect       dialect.Kind
	Overflow      Overflow
	// Unsafe admits pointer conversions.
	Unsafe bool
	// VarargsCallSite marks an argument position that may bind a single
	// array to a params parameter.
	VarargsCallSite bool
	// At locates the conversion for diagnostics.
	At source.Span
}

// ImplicitContext is the context of an assignment in the given dialect.
func ImplicitContext(d dialect.Kind) Context {
	return Context{Dialect: d}
}

// ExplicitContext is the context of a cast expression in the given dialect.
func ExplicitContext(d dialect.Kind) Context {
	return Context{Explicit: true, Dialect: d}
}

func (c Context) extended() bool { return c.Dialect.IsExtended() }

func (c Context) implicitOnly() Context {
	c.Explicit = false
	return c
}
