package conv

import (
	"fmt"

	"castor/internal/types"
)

// ResultKind tags a classification outcome.
type ResultKind uint8

const (
	None ResultKind = iota
	Identity
	ImplicitNumeric
	ExplicitNumeric
	ImplicitConstant
	EnumZero
	NullLiteral
	ImplicitReference
	ExplicitReference
	Boxing
	Unboxing
	NullableWrap
	NullableUnwrap
	NullableLift
	Pointer
	DialectTruth
	DialectString
	DialectErasure
	DynamicConversion
	UserDefined
	Ambiguous
)

var resultKindNames = [...]string{
	None:              "None",
	Identity:          "Identity",
	ImplicitNumeric:   "ImplicitNumeric",
	ExplicitNumeric:   "ExplicitNumeric",
	ImplicitConstant:  "ImplicitConstant",
	EnumZero:          "EnumZero",
	NullLiteral:       "NullLiteral",
	ImplicitReference: "ImplicitReference",
	ExplicitReference: "ExplicitReference",
	Boxing:            "Boxing",
	Unboxing:          "Unboxing",
	NullableWrap:      "NullableWrap",
	NullableUnwrap:    "NullableUnwrap",
	NullableLift:      "NullableLift",
	Pointer:           "Pointer",
	DialectTruth:      "DialectTruth",
	DialectString:     "DialectString",
	DialectErasure:    "DialectErasure",
	DynamicConversion: "DynamicConversion",
	UserDefined:       "UserDefined",
	Ambiguous:         "Ambiguous",
}

func (k ResultKind) String() string {
	if int(k) < len(resultKindNames) {
		return resultKindNames[k]
	}
	return fmt.Sprintf("ResultKind(%d)", uint8(k))
}

// Failure explains a None or Ambiguous result that deserves a diagnostic.
type Failure uint8

const (
	FailNone Failure = iota
	FailInvalidPointer
	FailAmbiguous
)

func (f Failure) String() string {
	switch f {
	case FailInvalidPointer:
		return "invalid-pointer"
	case FailAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// Ambiguity is the structured payload of an ambiguous user-defined
// conversion: the two lowest-ordered conflicting operators and the types of
// the original request.
type Ambiguity struct {
	Source types.TypeID
	Target types.TypeID
	First  types.ConversionOperator
	Second types.ConversionOperator
}

// Result describes how a value of Source becomes a Target. Results are built
// fresh per query and never cached.
type Result struct {
	Kind   ResultKind
	Source types.TypeID
	Target types.TypeID

	// Numeric is the machine operation of ImplicitNumeric/ExplicitNumeric.
	Numeric NumericOp

	// Inner is the underlying conversion of NullableWrap, NullableUnwrap and
	// NullableLift.
	Inner *Result

	// Operator, Pre and Post describe UserDefined: Pre converts Source to the
	// operator parameter, Post converts the operator result to Target.
	Operator *types.ConversionOperator
	Pre      *Result
	Post     *Result

	Ambiguity *Ambiguity

	// RuntimeChecked marks conversions that may fail at run time (unboxing,
	// downcasts, nullable unwrapping, dynamic casts).
	RuntimeChecked bool
	Failure        Failure

	// ExplicitPointer marks pointer conversions that need a cast
	// (pointer to pointer, integral to pointer and back).
	ExplicitPointer bool
}

// Exists reports whether a conversion was found.
func (r Result) Exists() bool {
	return r.Kind != None && r.Kind != Ambiguous
}

// IsImplicit reports whether the conversion is admissible without a cast.
func (r Result) IsImplicit() bool {
	switch r.Kind {
	case None, Ambiguous, ExplicitNumeric, ExplicitReference, Unboxing, NullableUnwrap, DynamicConversion:
		return false
	case Pointer:
		return !r.ExplicitPointer
	case NullableWrap, NullableLift:
		return r.Inner == nil || r.Inner.IsImplicit()
	case UserDefined:
		return r.Operator != nil && r.Operator.Implicit &&
			(r.Pre == nil || r.Pre.IsImplicit()) && (r.Post == nil || r.Post.IsImplicit())
	}
	return true
}

func (r Result) String() string {
	switch r.Kind {
	case ImplicitNumeric, ExplicitNumeric:
		return fmt.Sprintf("%s(%s)", r.Kind, r.Numeric)
	case NullableWrap, NullableUnwrap, NullableLift:
		if r.Inner != nil {
			return fmt.Sprintf("%s(%s)", r.Kind, r.Inner)
		}
	case UserDefined:
		pre, post := "-", "-"
		if r.Pre != nil {
			pre = r.Pre.String()
		}
		if r.Post != nil {
			post = r.Post.String()
		}
		return fmt.Sprintf("%s(%s, %s)", r.Kind, pre, post)
	}
	return r.Kind.String()
}

func none(src, dst types.TypeID) Result {
	return Result{Kind: None, Source: src, Target: dst}
}

func simple(k ResultKind, src, dst types.TypeID) Result {
	return Result{Kind: k, Source: src, Target: dst}
}

func checked(k ResultKind, src, dst types.TypeID) Result {
	return Result{Kind: k, Source: src, Target: dst, RuntimeChecked: true}
}

func wrapped(k ResultKind, src, dst types.TypeID, inner Result) Result {
	return Result{Kind: k, Source: src, Target: dst, Inner: &inner, RuntimeChecked: k == NullableUnwrap || inner.RuntimeChecked}
}
