package ops

import (
	"testing"

	"ownlint/internal/source"
)

func TestBuilderAppendsInOrder(t *testing.T) {
	b := NewBuilder()
	x, r := b.Intern("x"), b.Intern("r")

	if idx := b.Bind(source.Span{}, x, source.NoStringID); idx != 0 {
		t.Fatalf("first op got index %d", idx)
	}
	if idx := b.TakeRef(source.Span{}, r, x, RefMut, source.NoStringID); idx != 1 {
		t.Fatalf("second op got index %d", idx)
	}

	prog := b.Program()
	if prog.Len() != 2 {
		t.Fatalf("expected 2 ops, got %d", prog.Len())
	}
	got := prog.Ops()
	if got[0].Kind != KindBind || got[1].Kind != KindTakeRef {
		t.Fatalf("op kinds wrong: %v, %v", got[0].Kind, got[1].Kind)
	}
	if got[1].Ref != RefMut || got[1].Target != x {
		t.Fatalf("ref op fields wrong: %+v", got[1])
	}
}

func TestProgramNameFallback(t *testing.T) {
	b := NewBuilder()
	x := b.Intern("x")
	b.Bind(source.Span{}, x, source.NoStringID)
	prog := b.Program()

	if got := prog.Name(x); got != "x" {
		t.Fatalf("Name(%v) = %q", x, got)
	}
	if got := prog.Name(source.StringID(999)); got != "_" {
		t.Fatalf("invalid id must render as placeholder, got %q", got)
	}
}

func TestInternDeduplicates(t *testing.T) {
	b := NewBuilder()
	if b.Intern("x") != b.Intern("x") {
		t.Fatalf("same name interned to two ids")
	}
}

func TestSharedInterner(t *testing.T) {
	in := source.NewInterner()
	x := in.Intern("x")
	b := NewBuilderWith(in)
	if b.Intern("x") != x {
		t.Fatalf("builder must reuse the provided interner")
	}
}

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindBind:       "bind",
		KindParam:      "param",
		KindTakeRef:    "ref",
		KindMove:       "move",
		KindMutate:     "mutate",
		KindUse:        "use",
		KindDrop:       "drop",
		KindReturn:     "return",
		KindEnterScope: "scope",
		KindExitScope:  "end",
		KindInvalid:    "invalid",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
