package diag

import (
	"strings"
	"testing"

	"ownlint/internal/source"
)

func TestBagCapEnforced(t *testing.T) {
	bag := NewBag(2)
	for i := 0; i < 5; i++ {
		bag.Add(NewError(CheckUseAfterMove, source.Span{}, "x"))
	}
	if bag.Len() != 2 {
		t.Fatalf("expected cap of 2, got %d items", bag.Len())
	}
}

func TestBagSeverityQueries(t *testing.T) {
	bag := NewBag(8)
	bag.Add(New(SevWarning, CheckInfo, source.Span{}, "w"))
	if bag.HasErrors() {
		t.Fatalf("warning must not count as error")
	}
	if !bag.HasWarnings() {
		t.Fatalf("expected a warning")
	}
	bag.Add(NewError(CheckUseAfterMove, source.Span{}, "e"))
	if !bag.HasErrors() {
		t.Fatalf("expected an error")
	}
}

func TestBagSortOrdersBySpanThenCode(t *testing.T) {
	bag := NewBag(8)
	bag.Add(NewError(CheckUseAfterMove, source.Span{File: 0, Start: 20, End: 25}, "later"))
	bag.Add(NewError(CheckDanglingReturn, source.Span{File: 0, Start: 5, End: 10}, "earlier"))
	bag.Add(NewError(CheckConflictingBorrow, source.Span{File: 0, Start: 5, End: 10}, "same span, lower code"))
	bag.Sort()

	items := bag.Items()
	if items[0].Code != CheckConflictingBorrow || items[1].Code != CheckDanglingReturn {
		t.Fatalf("sort order wrong: %v, %v, %v", items[0].Code, items[1].Code, items[2].Code)
	}
	if items[2].Message != "later" {
		t.Fatalf("expected the later span last, got %q", items[2].Message)
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(8)
	span := source.Span{File: 0, Start: 5, End: 10}
	bag.Add(NewError(CheckUseAfterMove, span, "a"))
	bag.Add(NewError(CheckUseAfterMove, span, "a"))
	bag.Add(NewError(CheckUseAfterMove, source.Span{File: 0, Start: 7, End: 9}, "a"))
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 after dedup, got %d", bag.Len())
	}
}

func TestBagMerge(t *testing.T) {
	a := NewBag(8)
	a.Add(NewError(CheckUseAfterMove, source.Span{}, "one"))
	b := NewBag(8)
	b.Add(NewError(CheckDanglingReturn, source.Span{}, "two"))
	a.Merge(b)
	if a.Len() != 2 {
		t.Fatalf("expected 2 after merge, got %d", a.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(8)
	b := ReportError(BagReporter{Bag: bag}, CheckUseAfterMove, source.Span{}, "msg").
		WithNote(source.Span{}, "here").
		WithFix(Fix{Title: "do this"})
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected a single emission, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if len(d.Notes) != 1 || len(d.Fixes) != 1 {
		t.Fatalf("notes/fixes lost: %d notes, %d fixes", len(d.Notes), len(d.Fixes))
	}
}

func TestDedupReporterSuppressesRepeats(t *testing.T) {
	bag := NewBag(8)
	r := NewDedupReporter(BagReporter{Bag: bag})
	span := source.Span{File: 0, Start: 1, End: 2}
	r.Report(CheckUseAfterMove, SevError, span, "m", nil, nil)
	r.Report(CheckUseAfterMove, SevError, span, "m", nil, nil)
	r.Report(CheckUseAfterMove, SevError, span, "different", nil, nil)
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{ScriptUnknownDirective, "SCR1001"},
		{CheckConflictingBorrow, "CHK3001"},
		{CheckUseAfterMove, "CHK3002"},
		{IOLoadFileError, "IO4001"},
		{ProjectBadManifest, "PRJ5001"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Errorf("ID(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestFormatStableDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.own", []byte("bind x\nuse x\n"))

	diags := []Diagnostic{
		NewError(CheckUseAfterMove, source.Span{File: id, Start: 7, End: 12}, "use   of moved\nvalue"),
		NewError(CheckDuplicateBinding, source.Span{File: id, Start: 0, End: 6}, "dup"),
	}
	out := FormatStableDiagnostics(diags, fs, false)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if lines[0] != "error CHK3004 a.own:1:1 dup" {
		t.Fatalf("line order or format wrong: %q", lines[0])
	}
	if !strings.Contains(lines[1], "use of moved value") {
		t.Fatalf("message must be whitespace-sanitized: %q", lines[1])
	}
}

func TestFormatStableDiagnosticsWithNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.own", []byte("bind x\nuse x\n"))

	d := NewError(CheckUseAfterMove, source.Span{File: id, Start: 7, End: 12}, "use of moved value").
		WithNote(source.Span{File: id, Start: 0, End: 6}, "moved here")
	out := FormatStableDiagnostics([]Diagnostic{d}, fs, true)
	if !strings.Contains(out, "note CHK3002 a.own:1:1 moved here") {
		t.Fatalf("note line missing: %q", out)
	}
}
