package conv

import (
	"fmt"

	"castor/internal/trace"
	"castor/internal/types"
)

// Classifier decides which predefined conversion, if any, turns a value of
// one type into another. It never consults user-defined operators and never
// mutates the interner; concurrent use is safe once the universe is built.
type Classifier struct {
	types  *types.Interner
	tracer trace.Tracer
}

// NewClassifier binds a classifier to a built type universe. A nil tracer
// disables tracing.
func NewClassifier(in *types.Interner, tracer trace.Tracer) *Classifier {
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Classifier{types: in, tracer: tracer}
}

// Classify runs the precedence ladder for src -> dst.
func (c *Classifier) Classify(src, dst types.TypeID, ctx Context) Result {
	span := trace.Begin(c.tracer, trace.ScopeQuery, "classify", 0)
	r := c.classify(src, dst, nil, ctx, span.ID())
	span.End(r.String())
	return r
}

// ClassifyConstant is Classify for a compile-time constant of type src; it
// additionally admits the implicit constant conversions.
func (c *Classifier) ClassifyConstant(src, dst types.TypeID, cst Constant, ctx Context) Result {
	span := trace.Begin(c.tracer, trace.ScopeQuery, "classify-constant", 0)
	r := c.classify(src, dst, &cst, ctx, span.ID())
	span.End(r.String())
	return r
}

// classify is the ordered decision procedure. The first matching step wins;
// several steps overlap on purpose and the order settles the overlap.
func (c *Classifier) classify(src, dst types.TypeID, cst *Constant, ctx Context, span uint64) Result {
	in := c.types
	sk, dk := in.Kind(src), in.Kind(dst)
	if sk == types.KindInvalid || dk == types.KindInvalid {
		return none(src, dst)
	}

	// 1. identity
	if r, ok := c.identity(src, dst); ok {
		return c.matched(span, "identity", r)
	}
	// 2. null literal
	if sk == types.KindNull {
		if r, ok := c.nullLiteral(src, dst); ok {
			return c.matched(span, "null-literal", r)
		}
	}
	// 3. implicit numeric, plus the extended dialect's loose numerics
	if r, ok := c.implicitNumeric(src, dst, ctx); ok {
		return c.matched(span, "numeric", r)
	}
	// 4. implicit reference, including type-parameter conversions
	if r, ok := c.implicitReference(src, dst, ctx); ok {
		return c.matched(span, "reference", r)
	}
	// 5. boxing
	if r, ok := c.boxing(src, dst); ok {
		return c.matched(span, "boxing", r)
	}
	// 6. implicit nullable
	if r, ok := c.implicitNullable(src, dst, cst, ctx); ok {
		return c.matched(span, "nullable", r)
	}
	// 7. dialect coercions
	if ctx.extended() {
		if r, ok := c.dialectCoercion(src, dst); ok {
			return c.matched(span, "dialect", r)
		}
	}
	// 8. constant expressions
	if cst != nil {
		if r, ok := c.implicitConstant(src, dst, *cst); ok {
			return c.matched(span, "constant", r)
		}
	}
	// Pointer conversions are decided here in both modes: T* to void* is
	// implicit, the rest need a cast, and all of them need an unsafe context.
	if r, ok := c.pointer(src, dst, ctx); ok {
		return c.matched(span, "pointer", r)
	}
	// 9.
	if !ctx.Explicit {
		return none(src, dst)
	}
	// 10. explicit conversions
	if r, ok := c.explicitNumeric(src, dst); ok {
		return c.matched(span, "explicit-numeric", r)
	}
	if r, ok := c.explicitNullable(src, dst, ctx); ok {
		return c.matched(span, "explicit-nullable", r)
	}
	if r, ok := c.dynamicConversion(src, dst); ok {
		return c.matched(span, "dynamic", r)
	}
	if r, ok := c.unboxing(src, dst); ok {
		return c.matched(span, "unboxing", r)
	}
	if r, ok := c.explicitReference(src, dst); ok {
		return c.matched(span, "explicit-reference", r)
	}
	return none(src, dst)
}

func (c *Classifier) matched(span uint64, rule string, r Result) Result {
	if c.tracer.Enabled() && c.tracer.Level().ShouldEmit(trace.ScopeRule) {
		trace.Point(c.tracer, trace.ScopeRule, "rule:"+rule,
			fmt.Sprintf("%s -> %s = %s", c.types.Label(r.Source), c.types.Label(r.Target), r), span)
	}
	return r
}

// identity covers structurally equal types, object/dynamic, and the error
// placeholder, which converts silently to avoid cascading diagnostics.
func (c *Classifier) identity(src, dst types.TypeID) (Result, bool) {
	if src == dst {
		return simple(Identity, src, dst), true
	}
	sk, dk := c.types.Kind(src), c.types.Kind(dst)
	if sk == types.KindError || dk == types.KindError {
		return simple(Identity, src, dst), true
	}
	if (sk == types.KindObject && dk == types.KindDynamic) || (sk == types.KindDynamic && dk == types.KindObject) {
		return simple(Identity, src, dst), true
	}
	return Result{}, false
}

func (c *Classifier) nullLiteral(src, dst types.TypeID) (Result, bool) {
	in := c.types
	switch in.Kind(dst) {
	case types.KindPointer, types.KindNullable:
		return simple(NullLiteral, src, dst), true
	}
	if in.IsReferenceType(dst) {
		return simple(NullLiteral, src, dst), true
	}
	return Result{}, false
}

func (c *Classifier) implicitNumeric(src, dst types.TypeID, ctx Context) (Result, bool) {
	sk, dk := c.types.Kind(src), c.types.Kind(dst)
	if !sk.IsSimple() || !dk.IsSimple() {
		return Result{}, false
	}
	if op, ok := ImplicitNumericOp(sk, dk); ok {
		return Result{Kind: ImplicitNumeric, Source: src, Target: dst, Numeric: op}, true
	}
	if !ctx.extended() || ctx.UpconvertOnly {
		return Result{}, false
	}
	if op, ok := ExtendedNumericOp(sk, dk); ok {
		return Result{Kind: ImplicitNumeric, Source: src, Target: dst, Numeric: op}, true
	}
	if sk.IsNumeric() && dk == types.KindBool {
		return simple(DialectTruth, src, dst), true
	}
	return Result{}, false
}

// explicitNumeric covers the narrowing table and explicit enumeration
// conversions (enum to number, number to enum, enum to enum).
func (c *Classifier) explicitNumeric(src, dst types.TypeID) (Result, bool) {
	in := c.types
	sk, dk := in.Kind(src), in.Kind(dst)
	if sk.IsNumeric() && dk.IsNumeric() {
		if op, ok := ExplicitNumericOp(sk, dk); ok {
			return Result{Kind: ExplicitNumeric, Source: src, Target: dst, Numeric: op}, true
		}
		return Result{}, false
	}
	if sk != types.KindEnum && dk != types.KindEnum {
		return Result{}, false
	}
	su, du := c.numericKind(src), c.numericKind(dst)
	if !su.IsNumeric() || !du.IsNumeric() {
		return Result{}, false
	}
	if op, ok := enumNumericOp(su, du); ok {
		return Result{Kind: ExplicitNumeric, Source: src, Target: dst, Numeric: op}, true
	}
	return Result{}, false
}

// numericKind maps enums to their underlying kind.
func (c *Classifier) numericKind(id types.TypeID) types.Kind {
	if u, ok := c.types.EnumUnderlying(id); ok {
		return c.types.Kind(u)
	}
	return c.types.Kind(id)
}

// standardImplicit reports the conversions user-defined resolution may
// chain around an operator: every implicit predefined conversion except
// the dialect coercions.
func (c *Classifier) standardImplicit(src, dst types.TypeID, ctx Context) (Result, bool) {
	r := c.classify(src, dst, nil, ctx.implicitOnly(), 0)
	return r, isStandard(r)
}

func isStandard(r Result) bool {
	switch r.Kind {
	case Identity, ImplicitNumeric, NullLiteral, ImplicitReference, Boxing, EnumZero, ImplicitConstant:
		return true
	case NullableWrap, NullableLift:
		return r.Inner == nil || isStandard(*r.Inner)
	case Pointer:
		return !r.ExplicitPointer
	}
	return false
}
