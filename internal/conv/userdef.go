package conv

import (
	"cmp"
	"fmt"
	"slices"

	"castor/internal/diag"
	"castor/internal/trace"
	"castor/internal/types"
)

// Restriction narrows a user-defined conversion lookup. The zero value
// admits explicit operators and reports ambiguity.
type Restriction uint8

const (
	// ImplicitOnly ignores explicit operators and chains only implicit
	// standard conversions around the operator.
	ImplicitOnly Restriction = 1 << iota
	// ProbeOnly turns ambiguity into a silent None. Overload resolution
	// probes with it.
	ProbeOnly
)

func (r Restriction) implicitOnly() bool { return r&ImplicitOnly != 0 }
func (r Restriction) probe() bool        { return r&ProbeOnly != 0 }

// Resolver picks the user-defined operator for a conversion, using the
// most-specific source and target type tie-breaks.
type Resolver struct {
	types      *types.Interner
	classifier *Classifier
	reporter   diag.Reporter
	tracer     trace.Tracer
}

// NewResolver builds a resolver over c. A nil reporter drops diagnostics.
func NewResolver(c *Classifier, reporter diag.Reporter, tracer trace.Tracer) *Resolver {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Resolver{types: c.types, classifier: c, reporter: reporter, tracer: tracer}
}

// ResolveUserDefined selects one operator from candidates, which the
// caller treats as a read-only snapshot. The outcome does not depend on
// the order of candidates.
func (r *Resolver) ResolveUserDefined(src, dst types.TypeID, restriction Restriction, candidates []types.ConversionOperator, ctx Context) Result {
	span := trace.Begin(r.tracer, trace.ScopeQuery, "user-defined", 0)
	res := r.resolve(src, dst, restriction, candidates, ctx, span.ID())
	span.End(res.String())
	return res
}

func (r *Resolver) resolve(src, dst types.TypeID, restriction Restriction, candidates []types.ConversionOperator, ctx Context, span uint64) Result {
	in := r.types
	ops := r.admissible(candidates, restriction)
	if len(ops) == 0 {
		return none(src, dst)
	}

	res, found, amb := r.pick(src, dst, ops, restriction, ctx)
	if !found && amb == nil {
		res, found, amb = r.pickLifted(src, dst, ops, restriction, ctx)
	}
	switch {
	case found:
		r.rule(span, "user-defined", res)
		return res
	case amb == nil:
		return none(src, dst)
	}

	amb.Source, amb.Target = src, dst
	if restriction.probe() {
		r.rule(span, "ambiguous-probe", none(src, dst))
		return none(src, dst)
	}
	first, second := r.Signature(amb.First), r.Signature(amb.Second)
	diag.ReportError(r.reporter, diag.ConvAmbiguousUserConversion, ctx.At,
		fmt.Sprintf("ambiguous user-defined conversions %s and %s when converting from '%s' to '%s'",
			first, second, in.Label(src), in.Label(dst))).
		WithNote(amb.First.Decl, "candidate: "+first).
		WithNote(amb.Second.Decl, "candidate: "+second).
		Emit()
	res = Result{Kind: Ambiguous, Source: src, Target: dst, Ambiguity: amb, Failure: FailAmbiguous}
	r.rule(span, "ambiguous", res)
	return res
}

// pickLifted retries a nullable request over the underlying types. The
// retry is skipped when the other side is a reference type: a nullable
// value reaches a reference type by boxing, never through an operator.
func (r *Resolver) pickLifted(src, dst types.TypeID, ops []types.ConversionOperator, restriction Restriction, ctx Context) (Result, bool, *Ambiguity) {
	in := r.types
	sn, dn := in.IsNullable(src), in.IsNullable(dst)
	if !sn && !dn {
		return Result{}, false, nil
	}
	if (sn && in.IsReferenceType(dst)) || (dn && in.IsReferenceType(src)) {
		return Result{}, false, nil
	}
	if sn && !dn && restriction.implicitOnly() {
		return Result{}, false, nil
	}
	lifted := make([]types.ConversionOperator, 0, len(ops))
	for _, op := range ops {
		if in.IsValueType(op.Param) && !in.IsNullable(op.Param) && in.IsValueType(op.Result) && !in.IsNullable(op.Result) {
			lifted = append(lifted, op)
		}
	}
	s0, t0 := in.Unwrap(src), in.Unwrap(dst)
	inner, found, amb := r.pick(s0, t0, lifted, restriction, ctx)
	if !found {
		return Result{}, false, amb
	}
	switch {
	case sn && dn:
		return wrapped(NullableLift, src, dst, inner), true, nil
	case sn:
		return wrapped(NullableUnwrap, src, dst, inner), true, nil
	default:
		return wrapped(NullableWrap, src, dst, inner), true, nil
	}
}

// admissible drops explicit operators under ImplicitOnly and operators
// declared on anything but a class or struct, then orders the rest
// canonically and removes duplicates.
func (r *Resolver) admissible(candidates []types.ConversionOperator, restriction Restriction) []types.ConversionOperator {
	in := r.types
	ops := make([]types.ConversionOperator, 0, len(candidates))
	for _, op := range candidates {
		if restriction.implicitOnly() && !op.Implicit {
			continue
		}
		switch in.Kind(op.Declaring) {
		case types.KindClass, types.KindStruct:
		default:
			continue
		}
		if b := in.Builtins(); op.Declaring == b.ValueType || op.Declaring == b.Enum ||
			op.Declaring == b.Array || op.Declaring == b.Delegate || op.Declaring == b.MulticastDelegate {
			continue
		}
		ops = append(ops, op)
	}
	slices.SortFunc(ops, compareOperators)
	return slices.CompactFunc(ops, func(a, b types.ConversionOperator) bool {
		return a.Declaring == b.Declaring && a.Param == b.Param && a.Result == b.Result && a.Implicit == b.Implicit
	})
}

func compareOperators(a, b types.ConversionOperator) int {
	if c := cmp.Compare(a.Declaring, b.Declaring); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Param, b.Param); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Result, b.Result); c != 0 {
		return c
	}
	if a.Implicit != b.Implicit {
		if a.Implicit {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Decl.File, b.Decl.File); c != 0 {
		return c
	}
	return cmp.Compare(a.Decl.Start, b.Decl.Start)
}

// pick filters ops to the applicable ones and applies the tie-breaks.
// found=false with a nil Ambiguity means nothing applied.
func (r *Resolver) pick(src, dst types.TypeID, ops []types.ConversionOperator, restriction Restriction, ctx Context) (Result, bool, *Ambiguity) {
	explicit := !restriction.implicitOnly()
	var app []types.ConversionOperator
	for _, op := range ops {
		if r.applicable(src, dst, op, explicit, ctx) {
			app = append(app, op)
		}
	}
	switch len(app) {
	case 0:
		return Result{}, false, nil
	case 1:
		return r.build(src, dst, app[0], explicit, ctx), true, nil
	}

	sx, okS := r.mostSpecificSource(src, app, explicit, ctx)
	tx, okT := r.mostSpecificTarget(dst, app, explicit, ctx)
	if !okS || !okT {
		return Result{}, false, &Ambiguity{First: app[0], Second: app[1]}
	}
	var matches []types.ConversionOperator
	for _, op := range app {
		if op.Param == sx && op.Result == tx {
			matches = append(matches, op)
		}
	}
	switch len(matches) {
	case 1:
		return r.build(src, dst, matches[0], explicit, ctx), true, nil
	case 0:
		return Result{}, false, &Ambiguity{First: app[0], Second: app[1]}
	}
	return Result{}, false, &Ambiguity{First: matches[0], Second: matches[1]}
}

// applicable: in implicit mode the source must be encompassed by the
// parameter type and the result type by the target. In explicit mode
// either direction of encompassing will do on each side.
func (r *Resolver) applicable(src, dst types.TypeID, op types.ConversionOperator, explicit bool, ctx Context) bool {
	if !explicit {
		return r.encompassed(src, op.Param, ctx) && r.encompassed(op.Result, dst, ctx)
	}
	return r.related(src, op.Param, ctx) && r.related(op.Result, dst, ctx)
}

func (r *Resolver) encompassed(a, b types.TypeID, ctx Context) bool {
	_, ok := r.classifier.standardImplicit(a, b, ctx)
	return ok
}

func (r *Resolver) related(a, b types.TypeID, ctx Context) bool {
	return r.encompassed(a, b, ctx) || r.encompassed(b, a, ctx)
}

// mostSpecificSource: the exact source if some operator takes it; in
// implicit mode otherwise the most encompassed parameter type; in explicit
// mode the most encompassed among parameters encompassing src, else the
// most encompassing of all.
func (r *Resolver) mostSpecificSource(src types.TypeID, app []types.ConversionOperator, explicit bool, ctx Context) (types.TypeID, bool) {
	params := distinct(app, func(op types.ConversionOperator) types.TypeID { return op.Param })
	if slices.Contains(params, src) {
		return src, true
	}
	if !explicit {
		return r.mostEncompassed(params, ctx)
	}
	var enc []types.TypeID
	for _, p := range params {
		if r.encompassed(src, p, ctx) {
			enc = append(enc, p)
		}
	}
	if len(enc) > 0 {
		return r.mostEncompassed(enc, ctx)
	}
	return r.mostEncompassing(params, ctx)
}

// mostSpecificTarget mirrors mostSpecificSource for result types.
func (r *Resolver) mostSpecificTarget(dst types.TypeID, app []types.ConversionOperator, explicit bool, ctx Context) (types.TypeID, bool) {
	results := distinct(app, func(op types.ConversionOperator) types.TypeID { return op.Result })
	if slices.Contains(results, dst) {
		return dst, true
	}
	if !explicit {
		return r.mostEncompassing(results, ctx)
	}
	var enc []types.TypeID
	for _, t := range results {
		if r.encompassed(t, dst, ctx) {
			enc = append(enc, t)
		}
	}
	if len(enc) > 0 {
		return r.mostEncompassing(enc, ctx)
	}
	return r.mostEncompassed(results, ctx)
}

// mostEncompassed is the unique member that converts to every other one.
func (r *Resolver) mostEncompassed(set []types.TypeID, ctx Context) (types.TypeID, bool) {
	return r.unique(set, func(x, y types.TypeID) bool { return r.encompassed(x, y, ctx) })
}

// mostEncompassing is the unique member every other one converts to.
func (r *Resolver) mostEncompassing(set []types.TypeID, ctx Context) (types.TypeID, bool) {
	return r.unique(set, func(x, y types.TypeID) bool { return r.encompassed(y, x, ctx) })
}

func (r *Resolver) unique(set []types.TypeID, dominates func(x, y types.TypeID) bool) (types.TypeID, bool) {
	best := types.NoTypeID
	count := 0
	for _, x := range set {
		all := true
		for _, y := range set {
			if x != y && !dominates(x, y) {
				all = false
				break
			}
		}
		if all {
			best = x
			count++
		}
	}
	return best, count == 1
}

func distinct(ops []types.ConversionOperator, key func(types.ConversionOperator) types.TypeID) []types.TypeID {
	out := make([]types.TypeID, 0, len(ops))
	for _, op := range ops {
		if k := key(op); !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// build wraps the chosen operator with the standard conversions on either
// side.
func (r *Resolver) build(src, dst types.TypeID, op types.ConversionOperator, explicit bool, ctx Context) Result {
	cctx := ctx.implicitOnly()
	if explicit {
		cctx.Explicit = true
	}
	pre := r.classifier.classify(src, op.Param, nil, cctx, 0)
	post := r.classifier.classify(op.Result, dst, nil, cctx, 0)
	chosen := op
	return Result{
		Kind:           UserDefined,
		Source:         src,
		Target:         dst,
		Operator:       &chosen,
		Pre:            &pre,
		Post:           &post,
		RuntimeChecked: pre.RuntimeChecked || post.RuntimeChecked,
	}
}

// Signature renders an operator for diagnostics:
// "Money.implicit operator decimal(Money)".
func (r *Resolver) Signature(op types.ConversionOperator) string {
	dir := "explicit"
	if op.Implicit {
		dir = "implicit"
	}
	in := r.types
	return fmt.Sprintf("%s.%s operator %s(%s)", in.Label(op.Declaring), dir, in.Label(op.Result), in.Label(op.Param))
}

func (r *Resolver) rule(span uint64, name string, res Result) {
	if r.tracer.Enabled() && r.tracer.Level().ShouldEmit(trace.ScopeRule) {
		trace.Point(r.tracer, trace.ScopeRule, "rule:"+name,
			fmt.Sprintf("%s -> %s = %s", r.types.Label(res.Source), r.types.Label(res.Target), res), span)
	}
}
