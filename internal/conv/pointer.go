package conv

import "castor/internal/types"

// pointer decides every conversion with a pointer on either side except
// null -> T*. ok=false leaves the pair to later steps; a decided failure
// comes back as None tagged FailInvalidPointer.
func (c *Classifier) pointer(src, dst types.TypeID, ctx Context) (Result, bool) {
	in := c.types
	sk, dk := in.Kind(src), in.Kind(dst)
	sp, dp := sk == types.KindPointer, dk == types.KindPointer
	if !sp && !dp {
		return Result{}, false
	}
	invalid := Result{Kind: None, Source: src, Target: dst, Failure: FailInvalidPointer}
	if !ctx.Unsafe {
		return invalid, true
	}
	if sp && dp {
		se, _ := in.ElementType(src)
		de, _ := in.ElementType(dst)
		if in.Kind(de) == types.KindVoid {
			return simple(Pointer, src, dst), true
		}
		if !ctx.Explicit {
			return Result{}, false
		}
		if !unmanaged(in, se) || !unmanaged(in, de) {
			return invalid, true
		}
		return Result{Kind: Pointer, Source: src, Target: dst, ExplicitPointer: true}, true
	}
	if !ctx.Explicit {
		return Result{}, false
	}
	other := sk
	if sp {
		other = dk
	}
	if !other.IsIntegral() || other == types.KindChar {
		return invalid, true
	}
	return Result{Kind: Pointer, Source: src, Target: dst, ExplicitPointer: true}, true
}

// unmanaged reports element types a pointer may address.
func unmanaged(in *types.Interner, id types.TypeID) bool {
	switch in.Kind(id) {
	case types.KindVoid, types.KindPointer, types.KindStruct, types.KindEnum:
		return true
	}
	return in.Kind(id).IsSimple()
}
