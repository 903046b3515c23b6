package diag

import (
	"ownlint/internal/source"
)

// Note attaches secondary context to a diagnostic (e.g. "borrow taken here").
type Note struct {
	Span source.Span
	Msg  string
}

// TextEdit is a single replacement in source coordinates. OldText, when set,
// guards the edit: it must match the current content of Span.
type TextEdit struct {
	Span    source.Span
	NewText string
	OldText string
}

// FixApplicability describes how safe a fix is to apply automatically.
type FixApplicability uint8

const (
	FixAlwaysSafe FixApplicability = iota
	FixSafeWithHeuristics
	FixManualReview
)

func (a FixApplicability) String() string {
	switch a {
	case FixAlwaysSafe:
		return "always-safe"
	case FixSafeWithHeuristics:
		return "safe-with-heuristics"
	case FixManualReview:
		return "manual-review"
	}
	return "unknown"
}

// Fix is a suggested correction: a short title plus concrete edits.
type Fix struct {
	Title         string
	Applicability FixApplicability
	IsPreferred   bool
	Edits         []TextEdit
}

// Diagnostic is the central finding record produced by all phases.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithFix(fix Fix) Diagnostic {
	d.Fixes = append(d.Fixes, fix)
	return d
}
