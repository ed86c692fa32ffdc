package testkit

import (
	"fmt"

	"castor/internal/conv"
	"castor/internal/types"
)

// maxResultDepth bounds the walk over nested results.
const maxResultDepth = 16

// CheckResultInvariants runs the structural invariants every conversion
// result must satisfy:
//  1. payload fields match the kind (Inner only on nullable kinds, Operator
//     and Pre/Post only on UserDefined, Ambiguity only on Ambiguous)
//  2. run-time checked kinds carry RuntimeChecked, and a checked inner or
//     pre/post result makes its parent checked
//  3. nullable kinds wrap nullable types on the right sides, and their inner
//     result converts the underlying types
//  4. None and Ambiguous carry the matching failure tag.
func CheckResultInvariants(in *types.Interner, r conv.Result) error {
	return checkResult(in, r, 0)
}

func checkResult(in *types.Interner, r conv.Result, depth int) error {
	if depth > maxResultDepth {
		return fmt.Errorf("result nested deeper than %d", maxResultDepth)
	}
	label := func(id types.TypeID) string { return in.Label(id) }
	where := fmt.Sprintf("%s: %s -> %s", r.Kind, label(r.Source), label(r.Target))

	// 1) payload vs kind
	nullableKind := r.Kind == conv.NullableWrap || r.Kind == conv.NullableUnwrap || r.Kind == conv.NullableLift
	if nullableKind != (r.Inner != nil) {
		return fmt.Errorf("%s: inner result present=%t", where, r.Inner != nil)
	}
	userKind := r.Kind == conv.UserDefined
	if userKind != (r.Operator != nil) || userKind != (r.Pre != nil) || userKind != (r.Post != nil) {
		return fmt.Errorf("%s: operator/pre/post do not match kind", where)
	}
	if (r.Kind == conv.Ambiguous) != (r.Ambiguity != nil) {
		return fmt.Errorf("%s: ambiguity payload present=%t", where, r.Ambiguity != nil)
	}
	if r.ExplicitPointer && r.Kind != conv.Pointer {
		return fmt.Errorf("%s: explicit pointer flag on a non-pointer result", where)
	}
	numeric := r.Kind == conv.ImplicitNumeric || r.Kind == conv.ExplicitNumeric
	if !numeric && r.Numeric != conv.NumNop {
		return fmt.Errorf("%s: numeric opcode %s on a non-numeric result", where, r.Numeric)
	}

	// 4) failure tags
	switch r.Kind {
	case conv.None:
		if r.Failure == conv.FailAmbiguous {
			return fmt.Errorf("%s: ambiguous failure on None", where)
		}
	case conv.Ambiguous:
		if r.Failure != conv.FailAmbiguous {
			return fmt.Errorf("%s: failure %s, want ambiguous", where, r.Failure)
		}
	default:
		if r.Failure != conv.FailNone {
			return fmt.Errorf("%s: failure %s on an existing conversion", where, r.Failure)
		}
	}

	// 2) run-time checks
	switch r.Kind {
	case conv.Unboxing, conv.ExplicitReference, conv.NullableUnwrap, conv.DynamicConversion:
		if !r.RuntimeChecked {
			return fmt.Errorf("%s: must be run-time checked", where)
		}
	case conv.Identity, conv.ImplicitNumeric, conv.ExplicitNumeric, conv.ImplicitReference,
		conv.Boxing, conv.NullLiteral, conv.ImplicitConstant, conv.EnumZero:
		if r.RuntimeChecked {
			return fmt.Errorf("%s: must not be run-time checked", where)
		}
	}
	for _, sub := range []*conv.Result{r.Inner, r.Pre, r.Post} {
		if sub == nil {
			continue
		}
		if sub.RuntimeChecked && !r.RuntimeChecked {
			return fmt.Errorf("%s: checked sub-result %s under an unchecked parent", where, sub.Kind)
		}
		if err := checkResult(in, *sub, depth+1); err != nil {
			return err
		}
	}

	// 3) nullable shapes
	switch r.Kind {
	case conv.NullableWrap:
		if !in.IsNullable(r.Target) || in.IsNullable(r.Source) {
			return fmt.Errorf("%s: wrap must go from a non-nullable to a nullable", where)
		}
		if r.Inner.Target != in.Unwrap(r.Target) {
			return fmt.Errorf("%s: inner target %s", where, label(r.Inner.Target))
		}
	case conv.NullableUnwrap:
		if !in.IsNullable(r.Source) || in.IsNullable(r.Target) {
			return fmt.Errorf("%s: unwrap must go from a nullable to a non-nullable", where)
		}
		if r.Inner.Source != in.Unwrap(r.Source) {
			return fmt.Errorf("%s: inner source %s", where, label(r.Inner.Source))
		}
	case conv.NullableLift:
		if !in.IsNullable(r.Source) {
			return fmt.Errorf("%s: lift needs a nullable source", where)
		}
		if r.Inner.Source != in.Unwrap(r.Source) {
			return fmt.Errorf("%s: inner source %s", where, label(r.Inner.Source))
		}
		if in.IsNullable(r.Target) && r.Inner.Target != in.Unwrap(r.Target) {
			return fmt.Errorf("%s: inner target %s", where, label(r.Inner.Target))
		}
	case conv.UserDefined:
		if r.Pre.Source != r.Source || r.Pre.Target != r.Operator.Param {
			return fmt.Errorf("%s: pre-conversion %s -> %s does not reach the operator parameter", where, label(r.Pre.Source), label(r.Pre.Target))
		}
		if r.Post.Source != r.Operator.Result || r.Post.Target != r.Target {
			return fmt.Errorf("%s: post-conversion %s -> %s does not leave the operator result", where, label(r.Post.Source), label(r.Post.Target))
		}
		if !r.Pre.Exists() || !r.Post.Exists() {
			return fmt.Errorf("%s: missing standard conversion around the operator", where)
		}
	}
	return nil
}
