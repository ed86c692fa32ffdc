package conv

import "castor/internal/types"

// maxReferenceDepth bounds recursion through array element types.
const maxReferenceDepth = 32

func (c *Classifier) implicitReference(src, dst types.TypeID, ctx Context) (Result, bool) {
	in := c.types
	if in.Kind(src) == types.KindTypeParam {
		return c.typeParamImplicit(src, dst)
	}
	if !in.IsReferenceType(src) || !in.IsReferenceType(dst) {
		return Result{}, false
	}
	if c.referenceConvertible(src, dst, ctx, 0) {
		return simple(ImplicitReference, src, dst), true
	}
	return Result{}, false
}

// referenceConvertible is the implicit reference relation between two
// reference types.
func (c *Classifier) referenceConvertible(src, dst types.TypeID, ctx Context, depth int) bool {
	in := c.types
	if src == dst {
		return true
	}
	if depth > maxReferenceDepth {
		return false
	}
	sk, dk := in.Kind(src), in.Kind(dst)
	switch dk {
	case types.KindObject, types.KindDynamic, types.KindAny:
		// dynamic and the untyped marker only meet through dialect erasure.
		return !(sk == types.KindDynamic && dk == types.KindAny) && !(sk == types.KindAny && dk == types.KindDynamic)
	case types.KindInterface:
		return in.ImplementsInterface(src, dst, true)
	case types.KindDelegate:
		return sk == types.KindDelegate && in.VarianceConvertible(src, dst)
	case types.KindArray:
		return c.arrayCovariant(src, dst, ctx, depth)
	case types.KindTypeParam:
		return false
	}
	return in.IsSubclassOf(src, dst)
}

// arrayCovariant admits S[] -> T[] for reference element types. The
// extended dialect turns it off at a varargs call site so that a single
// array argument is never mistaken for the whole params list.
func (c *Classifier) arrayCovariant(src, dst types.TypeID, ctx Context, depth int) bool {
	in := c.types
	if in.Kind(src) != types.KindArray || in.ArrayRank(src) != in.ArrayRank(dst) {
		return false
	}
	if ctx.extended() && ctx.VarargsCallSite {
		return false
	}
	se, _ := in.ElementType(src)
	de, _ := in.ElementType(dst)
	if !in.IsReferenceType(se) || !in.IsReferenceType(de) {
		return false
	}
	if in.Kind(se) == types.KindTypeParam {
		r, ok := c.typeParamImplicit(se, de)
		return ok && r.Kind == ImplicitReference
	}
	return c.referenceConvertible(se, de, ctx, depth+1)
}

// typeParamImplicit converts T to its effective base class and that
// class's bases, to its interface constraints, to the type parameters it
// depends on, and to object/dynamic. A T not known to be a reference type
// boxes.
func (c *Classifier) typeParamImplicit(src, dst types.TypeID) (Result, bool) {
	in := c.types
	b := in.Builtins()
	reachable := false
	switch in.Kind(dst) {
	case types.KindObject, types.KindDynamic, types.KindAny:
		reachable = true
	case types.KindTypeParam:
		reachable = in.HasDependencyOn(src, dst)
	case types.KindInterface:
		reachable = in.ImplementsInterface(src, dst, true)
	default:
		eb := in.EffectiveBaseClass(src)
		reachable = eb == dst || (eb != b.Object && c.referenceConvertible(eb, dst, Context{}, 0))
	}
	if !reachable {
		return Result{}, false
	}
	if in.IsReferenceType(src) {
		return simple(ImplicitReference, src, dst), true
	}
	return simple(Boxing, src, dst), true
}

// explicitReference covers downcasts and cross-casts between reference
// types, which always need a run-time type check.
func (c *Classifier) explicitReference(src, dst types.TypeID) (Result, bool) {
	in := c.types
	if in.Kind(src) == types.KindTypeParam || in.Kind(dst) == types.KindTypeParam {
		return c.typeParamExplicit(src, dst)
	}
	if !in.IsReferenceType(src) || !in.IsReferenceType(dst) {
		return Result{}, false
	}
	if c.explicitReferenceConvertible(src, dst, 0) {
		return checked(ExplicitReference, src, dst), true
	}
	return Result{}, false
}

func (c *Classifier) explicitReferenceConvertible(src, dst types.TypeID, depth int) bool {
	in := c.types
	if depth > maxReferenceDepth {
		return false
	}
	sk, dk := in.Kind(src), in.Kind(dst)
	switch {
	case sk == types.KindObject || sk == types.KindDynamic || sk == types.KindAny:
		return true
	case sk == types.KindArray && dk == types.KindArray:
		if in.ArrayRank(src) != in.ArrayRank(dst) {
			return false
		}
		se, _ := in.ElementType(src)
		de, _ := in.ElementType(dst)
		if !in.IsReferenceType(se) || !in.IsReferenceType(de) {
			return false
		}
		return se == de || c.referenceConvertible(se, de, Context{}, depth+1) || c.explicitReferenceConvertible(se, de, depth+1)
	case dk == types.KindInterface:
		if sk == types.KindInterface {
			return !in.ImplementsInterface(src, dst, true)
		}
		return !in.IsSealed(src)
	case sk == types.KindInterface:
		return !in.IsSealed(dst) || in.ImplementsInterface(dst, src, true)
	}
	return in.IsSubclassOf(dst, src)
}

// typeParamExplicit handles casts into T from its base classes and any
// interface, casts from T to any interface, and T to U where U depends
// on T.
func (c *Classifier) typeParamExplicit(src, dst types.TypeID) (Result, bool) {
	in := c.types
	sk, dk := in.Kind(src), in.Kind(dst)
	kind := ExplicitReference
	ok := false
	switch {
	case sk == types.KindTypeParam && dk == types.KindTypeParam:
		ok = in.HasDependencyOn(dst, src)
		if !in.IsReferenceType(dst) {
			kind = Unboxing
		}
	case dk == types.KindTypeParam:
		eb := in.EffectiveBaseClass(dst)
		ok = sk == types.KindInterface || src == eb || in.IsSubclassOf(eb, src) ||
			sk == types.KindObject || sk == types.KindDynamic
		if !in.IsReferenceType(dst) {
			kind = Unboxing
		}
	default:
		ok = dk == types.KindInterface
	}
	if !ok {
		return Result{}, false
	}
	return checked(kind, src, dst), true
}
