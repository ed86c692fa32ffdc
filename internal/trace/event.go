package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event, e.g. a matched rule.
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower values are coarser.
type Scope uint8

const (
	// ScopeDriver covers a whole CLI command or library entry point.
	ScopeDriver Scope = iota + 1
	// ScopeBatch covers one ClassifyBatch run.
	ScopeBatch
	// ScopeQuery covers a single top-level conversion query.
	ScopeQuery
	// ScopeRule marks the classification step that decided a query.
	ScopeRule
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeBatch:
		return "batch"
	case ScopeQuery:
		return "query"
	case ScopeRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	Name     string            // e.g. "classify", "rule:numeric"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
