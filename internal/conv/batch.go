package conv

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"castor/internal/diag"
	"castor/internal/trace"
	"castor/internal/types"
)

// Query is one independent conversion request of a batch. Value, when
// set, supplies a constant and makes the batch apply the conversion too.
type Query struct {
	Source  types.TypeID
	Target  types.TypeID
	Context Context
	Value   Value
}

// Outcome is the answer to one Query. Bag holds the diagnostics the query
// produced; queries never share a bag.
type Outcome struct {
	Result Result
	Op     *Operation
	Err    error
	Bag    *diag.Bag
}

// ClassifyBatch answers queries concurrently, at most jobs at a time
// (GOMAXPROCS when jobs <= 0). Results come back in query order. The only
// error is cancellation of ctx; per-query failures land in Outcome. A sink
// attached with WithProgress sees every query start and finish.
func (e *Engine) ClassifyBatch(ctx context.Context, queries []Query, jobs, maxDiagnostics int) ([]Outcome, error) {
	if len(queries) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	if !tracer.Enabled() {
		tracer = e.tracer
	}
	span := trace.Begin(tracer, trace.ScopeBatch, "classify-batch", trace.CurrentSpan(ctx))
	defer span.End("")
	progress := progressFromContext(ctx)

	// Each index is written by exactly one goroutine.
	out := make([]Outcome, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(queries)))
	for i, q := range queries {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if progress != nil {
				progress.OnEvent(BatchEvent{Index: i, Status: BatchStarted})
			}
			bag := diag.NewBag(maxDiagnostics)
			qe := e.fork(diag.BagReporter{Bag: bag}, tracer)
			o := Outcome{Bag: bag}
			if q.Value != nil {
				o.Op, o.Result, o.Err = qe.Convert(q.Value, q.Target, q.Context, Report)
			} else {
				o.Result = qe.Lookup(q.Source, q.Target, q.Context, Report)
			}
			out[i] = o
			if progress != nil {
				progress.OnEvent(BatchEvent{Index: i, Status: BatchDone, Kind: o.Result.Kind, Err: o.Err})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// fork shares the classifier and applier of e but reports to r.
func (e *Engine) fork(r diag.Reporter, t trace.Tracer) *Engine {
	c := *e
	c.reporter = r
	c.tracer = t
	if t != e.tracer {
		c.classifier = NewClassifier(e.types, t)
		c.applier = NewApplier(c.classifier)
	}
	c.resolver = NewResolver(c.classifier, r, t)
	return &c
}
