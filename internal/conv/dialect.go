package conv

import "castor/internal/types"

// dialectCoercion holds the extended dialect's implicit coercions:
// reference truth testing, conversion of anything to string, and erasure
// between dynamic and the untyped marker.
func (c *Classifier) dialectCoercion(src, dst types.TypeID) (Result, bool) {
	in := c.types
	sk, dk := in.Kind(src), in.Kind(dst)
	switch {
	case (sk == types.KindDynamic && dk == types.KindAny) || (sk == types.KindAny && dk == types.KindDynamic):
		return simple(DialectErasure, src, dst), true
	case dk == types.KindBool && in.IsReferenceType(src):
		return simple(DialectTruth, src, dst), true
	case dk == types.KindString:
		switch sk {
		case types.KindVoid, types.KindNull, types.KindPointer:
			return Result{}, false
		}
		return simple(DialectString, src, dst), true
	}
	return Result{}, false
}

// truthOp picks how DialectTruth tests a value of src: numbers compare
// against zero, boxed scalar wrappers and untyped values ask the run-time
// helper, every other reference compares against null.
func (c *Classifier) truthOp(src types.TypeID) OpKind {
	in := c.types
	k := in.Kind(src)
	switch {
	case k.IsNumeric():
		return OpZeroCompare
	case k == types.KindDynamic || k == types.KindAny:
		return OpTruthTest
	case in.HasFlag(src, types.FlagBoxedScalar):
		return OpTruthTest
	}
	return OpNullCompare
}
