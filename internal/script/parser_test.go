package script

import (
	"testing"

	"ownlint/internal/diag"
	"ownlint/internal/ops"
	"ownlint/internal/source"
)

func parseString(t *testing.T, content string) (*ops.Program, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.own", []byte(content))
	bag := diag.NewBag(64)
	prog := Parse(fs.Get(id), diag.BagReporter{Bag: bag})
	return prog, bag
}

func kinds(prog *ops.Program) []ops.Kind {
	out := make([]ops.Kind, 0, prog.Len())
	for _, op := range prog.Ops() {
		out = append(out, op.Kind)
	}
	return out
}

func bagCodes(bag *diag.Bag) []diag.Code {
	out := make([]diag.Code, 0, bag.Len())
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestParseFullScript(t *testing.T) {
	prog, bag := parseString(t, `# ownership demo
param input 'a
bind x = hello world
ref r = & x
ref m = &mut x
move d <- x
mutate x
use r
drop r
return d
scope {
bind y
}
`)
	if bag.Len() != 0 {
		t.Fatalf("expected clean parse, got %v", bagCodes(bag))
	}
	want := []ops.Kind{
		ops.KindParam, ops.KindBind, ops.KindTakeRef, ops.KindTakeRef,
		ops.KindMove, ops.KindMutate, ops.KindUse, ops.KindDrop,
		ops.KindReturn, ops.KindEnterScope, ops.KindBind, ops.KindExitScope,
	}
	got := kinds(prog)
	if len(got) != len(want) {
		t.Fatalf("expected %d ops, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestParseRefVariants(t *testing.T) {
	prog, bag := parseString(t, `bind x
param p 'a
ref a = & x
ref b = &mut x
ref c = &'a x
ref d = &'a mut x
`)
	if bag.Len() != 0 {
		t.Fatalf("expected clean parse, got %v", bagCodes(bag))
	}
	refs := make([]ops.Op, 0, 4)
	for _, op := range prog.Ops() {
		if op.Kind == ops.KindTakeRef {
			refs = append(refs, op)
		}
	}
	if len(refs) != 4 {
		t.Fatalf("expected 4 ref ops, got %d", len(refs))
	}
	if refs[0].Ref != ops.RefShared || refs[1].Ref != ops.RefMut {
		t.Fatalf("ref kinds wrong: %v, %v", refs[0].Ref, refs[1].Ref)
	}
	if refs[2].Life == source.NoStringID || refs[3].Life == source.NoStringID {
		t.Fatalf("lifetime labels lost on refs c and d")
	}
	if refs[3].Ref != ops.RefMut {
		t.Fatalf("lifetime + mut combination parsed wrong: %v", refs[3].Ref)
	}
	if prog.Name(refs[2].Target) != "x" {
		t.Fatalf("ref target wrong: %q", prog.Name(refs[2].Target))
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	prog, bag := parseString(t, "\n# comment only\n\n   # indented comment\nbind x\n\n")
	if bag.Len() != 0 {
		t.Fatalf("expected clean parse, got %v", bagCodes(bag))
	}
	if prog.Len() != 1 {
		t.Fatalf("expected 1 op, got %d", prog.Len())
	}
}

func TestParseUnknownDirective(t *testing.T) {
	_, bag := parseString(t, "borrow x\n")
	if !hasBagCode(bag, diag.ScriptUnknownDirective) {
		t.Fatalf("expected %v, got %v", diag.ScriptUnknownDirective, bagCodes(bag))
	}
}

func TestParseBadMoveSyntax(t *testing.T) {
	_, bag := parseString(t, "bind a\nmove a b\n")
	if !hasBagCode(bag, diag.ScriptBadOperand) {
		t.Fatalf("expected %v, got %v", diag.ScriptBadOperand, bagCodes(bag))
	}
}

func TestParseBadRefOperand(t *testing.T) {
	_, bag := parseString(t, "bind x\nref r = x\n")
	if !hasBagCode(bag, diag.ScriptBadRefKind) {
		t.Fatalf("expected %v, got %v", diag.ScriptBadRefKind, bagCodes(bag))
	}
}

func TestParseBadLifetime(t *testing.T) {
	_, bag := parseString(t, "param p a1\n")
	if !hasBagCode(bag, diag.ScriptBadLifetime) {
		t.Fatalf("expected %v, got %v", diag.ScriptBadLifetime, bagCodes(bag))
	}
}

func TestParseBadName(t *testing.T) {
	_, bag := parseString(t, "bind 1x\n")
	if !hasBagCode(bag, diag.ScriptBadName) {
		t.Fatalf("expected %v, got %v", diag.ScriptBadName, bagCodes(bag))
	}
}

func TestParseUnbalancedClosingBrace(t *testing.T) {
	_, bag := parseString(t, "}\n")
	if !hasBagCode(bag, diag.ScriptUnbalancedScope) {
		t.Fatalf("expected %v, got %v", diag.ScriptUnbalancedScope, bagCodes(bag))
	}
}

func TestParseUnclosedScope(t *testing.T) {
	prog, bag := parseString(t, "scope {\nbind x\n")
	if !hasBagCode(bag, diag.ScriptUnbalancedScope) {
		t.Fatalf("expected %v, got %v", diag.ScriptUnbalancedScope, bagCodes(bag))
	}
	// The ops up to the error are still usable.
	if prog.Len() != 2 {
		t.Fatalf("expected 2 ops, got %d", prog.Len())
	}
}

func TestParseSpansPointAtLines(t *testing.T) {
	fs := source.NewFileSet()
	content := "bind x\n  use x\n"
	id := fs.AddVirtual("test.own", []byte(content))
	prog := Parse(fs.Get(id), nil)

	if prog.Len() != 2 {
		t.Fatalf("expected 2 ops, got %d", prog.Len())
	}
	use := prog.Ops()[1]
	start, _ := fs.Resolve(use.Span)
	if start.Line != 2 || start.Col != 3 {
		t.Fatalf("use span resolves to %d:%d, want 2:3", start.Line, start.Col)
	}
}

func TestParseBindValueText(t *testing.T) {
	prog, bag := parseString(t, "bind x = a long value\n")
	if bag.Len() != 0 {
		t.Fatalf("expected clean parse, got %v", bagCodes(bag))
	}
	op := prog.Ops()[0]
	if got := prog.Name(op.Value); got != "a long value" {
		t.Fatalf("bind value text lost, got %q", got)
	}
}

func TestParseNormalizesIdentifiers(t *testing.T) {
	// café written precomposed (U+00E9) and decomposed (e + U+0301) must
	// intern to the same name.
	prog, bag := parseString(t, "bind café\nuse café\n")
	if bag.Len() != 0 {
		t.Fatalf("expected clean parse, got %v", bagCodes(bag))
	}
	opsList := prog.Ops()
	if opsList[0].Name != opsList[1].Name {
		t.Fatalf("NFC-equal names interned differently")
	}
}

func hasBagCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}
