// Package diagfmt renders diagnostics for humans (pretty text) and tools
// (JSON). It owns all formatting; internal/diag stays data-only.
package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	ShowFixes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool
	IncludeNotes     bool
	IncludeFixes     bool
	Max              int // truncate output, the Bag is untouched
}
