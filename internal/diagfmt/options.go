package diagfmt

import "castor/internal/source"

// Locator renders a span as a location prefix such as "fixtures.toml:types[3]".
// An empty result omits the location.
type Locator func(sp source.Span) string

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	Locate    Locator
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // truncates output, not the Bag
	IncludeNotes bool
	Locate       Locator
}
