package conv

import "castor/internal/types"

// boxing converts a value type to object, dynamic, System.ValueType,
// System.Enum (enums only) or an interface it implements. A nullable boxes
// its underlying value, and a null value boxes to a null reference, so the
// nullable case is a lift over the inner boxing.
func (c *Classifier) boxing(src, dst types.TypeID) (Result, bool) {
	in := c.types
	switch in.Kind(src) {
	case types.KindNullable:
		under := in.Unwrap(src)
		inner, ok := c.boxValue(under, dst)
		if !ok {
			return Result{}, false
		}
		return wrapped(NullableLift, src, dst, inner), true
	case types.KindTypeParam:
		return Result{}, false
	}
	if !in.IsValueType(src) {
		return Result{}, false
	}
	return c.boxValue(src, dst)
}

func (c *Classifier) boxValue(src, dst types.TypeID) (Result, bool) {
	in := c.types
	b := in.Builtins()
	ok := false
	switch {
	case dst == b.Object, dst == b.Dynamic, dst == b.Any, dst == b.ValueType:
		ok = true
	case dst == b.Enum:
		ok = in.Kind(src) == types.KindEnum
	case in.Kind(dst) == types.KindInterface:
		ok = in.ImplementsInterface(src, dst, true)
	}
	if !ok {
		return Result{}, false
	}
	return simple(Boxing, src, dst), true
}

// unboxing extracts a value type from object, System.ValueType,
// System.Enum (enums only) or an interface the value type implements. The
// target may be nullable; the run-time check then also accepts null.
func (c *Classifier) unboxing(src, dst types.TypeID) (Result, bool) {
	in := c.types
	b := in.Builtins()
	under := in.Unwrap(dst)
	if !in.IsValueType(under) || in.Kind(under) == types.KindTypeParam {
		return Result{}, false
	}
	ok := false
	switch {
	case src == b.Object, src == b.ValueType:
		ok = true
	case src == b.Enum:
		ok = in.Kind(under) == types.KindEnum
	case in.Kind(src) == types.KindInterface:
		ok = in.ImplementsInterface(under, src, true)
	}
	if !ok {
		return Result{}, false
	}
	return checked(Unboxing, src, dst), true
}

// dynamicConversion casts out of dynamic (or the extended dialect's
// untyped marker) through the run-time binder.
func (c *Classifier) dynamicConversion(src, dst types.TypeID) (Result, bool) {
	in := c.types
	switch in.Kind(src) {
	case types.KindDynamic, types.KindAny:
	default:
		return Result{}, false
	}
	switch in.Kind(dst) {
	case types.KindVoid, types.KindNull, types.KindPointer:
		return Result{}, false
	}
	return checked(DynamicConversion, src, dst), true
}
