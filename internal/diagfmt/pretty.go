package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"ownlint/internal/diag"
	"ownlint/internal/source"
)

// Pretty renders diagnostics in a human-readable form, one block per entry:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	    <source line>
//	    ^~~~~
//	  note: ...
//	  fix: ...
//
// Call bag.Sort() beforehand for deterministic ordering.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	sevColors := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	for _, c := range sevColors {
		if !opts.Color {
			c.DisableColor()
		}
	}
	noteColor := color.New(color.FgBlue)
	fixColor := color.New(color.FgGreen)
	if !opts.Color {
		noteColor.DisableColor()
		fixColor.DisableColor()
	}

	for _, d := range bag.Items() {
		sev := sevColors[d.Severity]
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			location(fs, d.Primary),
			sev.Sprint(strings.ToLower(d.Severity.String())),
			sev.Sprint(d.Code.ID()),
			d.Message)
		writeContext(w, fs, d.Primary)

		if opts.ShowNotes {
			for _, note := range d.Notes {
				fmt.Fprintf(w, "  %s %s (%s)\n", noteColor.Sprint("note:"), note.Msg, location(fs, note.Span))
			}
		}
		if opts.ShowFixes {
			for _, f := range d.Fixes {
				marker := "fix:"
				if f.IsPreferred {
					marker = "fix(preferred):"
				}
				fmt.Fprintf(w, "  %s %s\n", fixColor.Sprint(marker), f.Title)
			}
		}
	}
}

func location(fs *source.FileSet, span source.Span) string {
	if fs == nil || int(span.File) >= fs.Len() {
		return "<unknown>"
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", fs.RelPath(fs.Get(span.File).Path), start.Line, start.Col)
}

// writeContext prints the offending source line with a caret underline.
func writeContext(w io.Writer, fs *source.FileSet, span source.Span) {
	if fs == nil || int(span.File) >= fs.Len() || span.Empty() {
		return
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)

	lineStart := uint32(0)
	if start.Line > 1 {
		lineStart = f.LineIdx[start.Line-2] + 1
	}
	lineEnd := uint32(len(f.Content))
	if int(start.Line-1) < len(f.LineIdx) {
		lineEnd = f.LineIdx[start.Line-1]
	}
	line := string(f.Content[lineStart:lineEnd])
	fmt.Fprintf(w, "    %s\n", line)

	caretLen := span.Len()
	if span.End > lineEnd {
		caretLen = lineEnd - span.Start
	}
	if caretLen == 0 {
		caretLen = 1
	}
	fmt.Fprintf(w, "    %s^%s\n",
		strings.Repeat(" ", int(start.Col-1)),
		strings.Repeat("~", int(caretLen-1)))
}
