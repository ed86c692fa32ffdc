package conv

import "castor/internal/types"

// implicitNullable lifts the predefined implicit conversions that stay
// within value types: S -> T? wraps, S? -> T? lifts. The null literal was
// handled before this step.
func (c *Classifier) implicitNullable(src, dst types.TypeID, cst *Constant, ctx Context) (Result, bool) {
	in := c.types
	if in.Kind(dst) != types.KindNullable {
		return Result{}, false
	}
	under := in.Unwrap(dst)
	if in.Kind(src) == types.KindNullable {
		inner, ok := c.valueImplicit(in.Unwrap(src), under, nil, ctx)
		if !ok {
			return Result{}, false
		}
		return wrapped(NullableLift, src, dst, inner), true
	}
	inner, ok := c.valueImplicit(src, under, cst, ctx)
	if !ok {
		return Result{}, false
	}
	return wrapped(NullableWrap, src, dst, inner), true
}

// valueImplicit is identity, implicit numeric, or a constant conversion.
func (c *Classifier) valueImplicit(src, dst types.TypeID, cst *Constant, ctx Context) (Result, bool) {
	if src == dst {
		return simple(Identity, src, dst), true
	}
	if r, ok := c.implicitNumeric(src, dst, ctx); ok && r.Kind == ImplicitNumeric {
		return r, true
	}
	if cst != nil {
		return c.implicitConstant(src, dst, *cst)
	}
	return Result{}, false
}

// explicitNullable lifts explicit value conversions: S? -> T? lifts,
// S? -> T unwraps (checked for null at run time), S -> T? wraps.
func (c *Classifier) explicitNullable(src, dst types.TypeID, ctx Context) (Result, bool) {
	in := c.types
	sn, dn := in.IsNullable(src), in.IsNullable(dst)
	if !sn && !dn {
		return Result{}, false
	}
	s, t := in.Unwrap(src), in.Unwrap(dst)
	if !in.IsValueType(s) || !in.IsValueType(t) {
		return Result{}, false
	}
	inner, ok := c.valueExplicit(s, t, ctx)
	if !ok {
		return Result{}, false
	}
	switch {
	case sn && dn:
		return wrapped(NullableLift, src, dst, inner), true
	case sn:
		return wrapped(NullableUnwrap, src, dst, inner), true
	default:
		return wrapped(NullableWrap, src, dst, inner), true
	}
}

func (c *Classifier) valueExplicit(src, dst types.TypeID, ctx Context) (Result, bool) {
	if r, ok := c.valueImplicit(src, dst, nil, ctx); ok {
		return r, true
	}
	return c.explicitNumeric(src, dst)
}
