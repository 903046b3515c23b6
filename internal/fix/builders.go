// Package fix constructs structured fix suggestions attached to diagnostics.
package fix

import (
	"ownlint/internal/diag"
	"ownlint/internal/source"
)

// Option mutates a fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides the applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// Preferred marks the fix as the preferred suggestion.
func Preferred() Option {
	return func(f *diag.Fix) {
		f.IsPreferred = true
	}
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// InsertText creates a fix that inserts text at span (Start == End).
func InsertText(title string, at source.Span, text string, opts ...Option) diag.Fix {
	at.End = at.Start
	f := diag.Fix{
		Title:         title,
		Applicability: diag.FixSafeWithHeuristics,
		Edits:         []diag.TextEdit{{Span: at, NewText: text}},
	}
	return applyOptions(f, opts)
}

// ReplaceText creates a fix that replaces span with newText. oldText, when
// non-empty, guards the edit against stale source.
func ReplaceText(title string, span source.Span, newText, oldText string, opts ...Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Applicability: diag.FixSafeWithHeuristics,
		Edits:         []diag.TextEdit{{Span: span, NewText: newText, OldText: oldText}},
	}
	return applyOptions(f, opts)
}

// DeleteText creates a fix that removes span.
func DeleteText(title string, span source.Span, oldText string, opts ...Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Applicability: diag.FixSafeWithHeuristics,
		Edits:         []diag.TextEdit{{Span: span, OldText: oldText}},
	}
	return applyOptions(f, opts)
}

// Suggestion creates an edit-free fix: a one-line course of action the user
// applies by hand.
func Suggestion(title string, opts ...Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Applicability: diag.FixManualReview,
	}
	return applyOptions(f, opts)
}
