package conv

import (
	"errors"
	"fmt"

	"castor/internal/diag"
	"castor/internal/trace"
	"castor/internal/types"
)

// Mode chooses whether a lookup may emit diagnostics.
type Mode uint8

const (
	Report Mode = iota
	Probe
)

// Engine composes the Classifier, the user-defined Resolver and the
// Applier over one type universe. It is safe for concurrent use once the
// universe is built; Reporter and Tracer must be as well.
type Engine struct {
	types      *types.Interner
	classifier *Classifier
	resolver   *Resolver
	applier    *Applier
	reporter   diag.Reporter
	tracer     trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracer routes query spans and rule events to t.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithReporter routes diagnostics to r.
func WithReporter(r diag.Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

func New(in *types.Interner, opts ...Option) *Engine {
	e := &Engine{
		types:    in,
		reporter: diag.NopReporter{},
		tracer:   trace.Nop,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.classifier = NewClassifier(in, e.tracer)
	e.resolver = NewResolver(e.classifier, e.reporter, e.tracer)
	e.applier = NewApplier(e.classifier)
	return e
}

func (e *Engine) Types() *types.Interner  { return e.types }
func (e *Engine) Classifier() *Classifier { return e.classifier }
func (e *Engine) Resolver() *Resolver     { return e.resolver }
func (e *Engine) Applier() *Applier       { return e.applier }

// ImplicitConversionExists is the overload-resolution predicate. It never
// reports and allocates nothing on the predefined path.
func (e *Engine) ImplicitConversionExists(src, dst types.TypeID, ctx Context) bool {
	ctx.Explicit = false
	return e.lookup(src, dst, nil, ctx, Probe, 0).Exists()
}

// ExplicitConversionExists is ImplicitConversionExists for casts.
func (e *Engine) ExplicitConversionExists(src, dst types.TypeID, ctx Context) bool {
	ctx.Explicit = true
	return e.lookup(src, dst, nil, ctx, Probe, 0).Exists()
}

// Lookup classifies src -> dst and falls back to user-defined operators.
func (e *Engine) Lookup(src, dst types.TypeID, ctx Context, mode Mode) Result {
	span := trace.Begin(e.tracer, trace.ScopeQuery, "lookup", 0)
	r := e.lookup(src, dst, nil, ctx, mode, span.ID())
	span.End(r.String())
	return r
}

// LookupValue is Lookup for an expression, admitting constant conversions.
func (e *Engine) LookupValue(v Value, dst types.TypeID, ctx Context, mode Mode) Result {
	span := trace.Begin(e.tracer, trace.ScopeQuery, "lookup-value", 0)
	var cst *Constant
	if c, ok := v.Constant(); ok {
		cst = &c
	}
	r := e.lookup(v.Type(), dst, cst, ctx, mode, span.ID())
	span.End(r.String())
	return r
}

func (e *Engine) lookup(src, dst types.TypeID, cst *Constant, ctx Context, mode Mode, span uint64) Result {
	r := e.classifier.classify(src, dst, cst, ctx, span)
	if r.Kind != None || r.Failure != FailNone {
		return r
	}
	restriction := Restriction(0)
	if !ctx.Explicit {
		restriction |= ImplicitOnly
	}
	if mode == Probe {
		restriction |= ProbeOnly
	}
	cands := e.Candidates(src, dst, ctx.Explicit)
	if len(cands) == 0 {
		return r
	}
	return e.resolver.resolve(src, dst, restriction, cands, ctx, span)
}

// Candidates collects the operators a conversion may use: those declared on
// the (unwrapped) source type and its base classes, and on the target type
// (and its bases for casts). Type parameters contribute their effective
// base class.
func (e *Engine) Candidates(src, dst types.TypeID, explicit bool) []types.ConversionOperator {
	in := e.types
	var decls []types.TypeID
	add := func(id types.TypeID, withBases bool) {
		id = in.Unwrap(id)
		if in.Kind(id) == types.KindTypeParam {
			id = in.EffectiveBaseClass(id)
		}
		for depth := 0; id != types.NoTypeID && depth < 64; depth++ {
			switch in.Kind(id) {
			case types.KindClass, types.KindStruct:
				if !containsID(decls, id) {
					decls = append(decls, id)
				}
			default:
				return
			}
			if !withBases || in.Kind(id) != types.KindClass {
				return
			}
			id = in.BaseClass(id)
		}
	}
	add(src, true)
	add(dst, explicit)

	var ops []types.ConversionOperator
	for _, d := range decls {
		ops = append(ops, in.ConversionOperators(d)...)
	}
	return ops
}

func containsID(ids []types.TypeID, id types.TypeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Convert looks up and applies the conversion of v to dst. In Report mode
// every failure is also reported.
func (e *Engine) Convert(v Value, dst types.TypeID, ctx Context, mode Mode) (*Operation, Result, error) {
	span := trace.Begin(e.tracer, trace.ScopeQuery, "convert", 0)
	defer span.End("")

	var cst *Constant
	if c, ok := v.Constant(); ok {
		cst = &c
	}
	src := v.Type()
	r := e.lookup(src, dst, cst, ctx, mode, span.ID())
	op, err := e.applier.Apply(r, v, ctx)
	if err != nil {
		if mode == Report {
			e.report(r, err, ctx)
		}
		return nil, r, fmt.Errorf("convert %s to %s: %w", e.types.Label(src), e.types.Label(dst), err)
	}
	return op, r, nil
}

func (e *Engine) report(r Result, err error, ctx Context) {
	in := e.types
	var cerr *Error
	if !errors.As(err, &cerr) {
		return
	}
	src, dst := in.Label(r.Source), in.Label(r.Target)
	switch cerr.Kind {
	case ErrAmbiguous:
		// the resolver already reported
	case ErrConstantOverflow:
		diag.ReportError(e.reporter, diag.ConvConstantOverflow, ctx.At,
			fmt.Sprintf("constant value cannot be converted to '%s' (use unchecked)", dst)).Emit()
	case ErrOverflowContext:
		diag.ReportError(e.reporter, diag.ConvConstantOverflow, ctx.At,
			fmt.Sprintf("constant conversion to '%s' requires a checked or unchecked context", dst)).Emit()
	case ErrInvalidPointer:
		diag.ReportError(e.reporter, diag.ConvInvalidPointer, ctx.At,
			fmt.Sprintf("cannot convert '%s' to '%s' outside an unsafe context or between incompatible pointer types", src, dst)).Emit()
	default:
		if ctx.Explicit {
			diag.ReportError(e.reporter, diag.ConvNoExplicit, ctx.At,
				fmt.Sprintf("cannot convert type '%s' to '%s'", src, dst)).Emit()
			return
		}
		b := diag.ReportError(e.reporter, diag.ConvNoImplicit, ctx.At,
			fmt.Sprintf("cannot implicitly convert type '%s' to '%s'", src, dst))
		if e.ExplicitConversionExists(r.Source, r.Target, ctx) {
			b.WithNote(ctx.At, "an explicit conversion exists (are you missing a cast?)")
		}
		b.Emit()
	}
}
