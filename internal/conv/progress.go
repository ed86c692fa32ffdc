package conv

import "context"

// BatchStatus is the state of one query of a batch.
type BatchStatus uint8

const (
	BatchStarted BatchStatus = iota
	BatchDone
)

// BatchEvent reports progress of the query at Index. Kind is set once the
// query is done.
type BatchEvent struct {
	Index  int
	Status BatchStatus
	Kind   ResultKind
	Err    error
}

// ProgressSink consumes batch progress. OnEvent is called from the batch
// workers and must be safe for concurrent use.
type ProgressSink interface {
	OnEvent(BatchEvent)
}

// ChannelSink forwards events to Ch. A nil channel drops them.
type ChannelSink struct {
	Ch chan<- BatchEvent
}

func (s ChannelSink) OnEvent(evt BatchEvent) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type progressKey struct{}

// WithProgress attaches sink to ctx; ClassifyBatch reports to it.
func WithProgress(ctx context.Context, sink ProgressSink) context.Context {
	return context.WithValue(ctx, progressKey{}, sink)
}

func progressFromContext(ctx context.Context) ProgressSink {
	if sink, ok := ctx.Value(progressKey{}).(ProgressSink); ok && sink != nil {
		return sink
	}
	return nil
}
