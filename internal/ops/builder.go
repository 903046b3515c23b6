package ops

import (
	"ownlint/internal/source"
)

// Builder appends operations and interns their names. One builder produces
// one Program; the zero span is fine for ops constructed in memory.
type Builder struct {
	ops     []Op
	strings *Interner
}

// NewBuilder creates a Builder with a fresh interner.
func NewBuilder() *Builder {
	return &Builder{strings: source.NewInterner()}
}

// NewBuilderWith shares an existing interner (e.g. the parser's).
func NewBuilderWith(strings *Interner) *Builder {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{strings: strings}
}

// Intern returns the id for name within this builder's pool.
func (b *Builder) Intern(name string) source.StringID {
	return b.strings.Intern(name)
}

func (b *Builder) push(op Op) int {
	b.ops = append(b.ops, op)
	return len(b.ops) - 1
}

// Bind declares an owned local binding.
func (b *Builder) Bind(span source.Span, name, value source.StringID) int {
	return b.push(Op{Kind: KindBind, Name: name, Value: value, Span: span})
}

// Param declares a caller-supplied binding with an optional lifetime label.
func (b *Builder) Param(span source.Span, name, life source.StringID) int {
	return b.push(Op{Kind: KindParam, Name: name, Life: life, Span: span})
}

// TakeRef declares name as a reference to target.
func (b *Builder) TakeRef(span source.Span, name, target source.StringID, kind RefKind, life source.StringID) int {
	return b.push(Op{Kind: KindTakeRef, Name: name, Target: target, Ref: kind, Life: life, Span: span})
}

// Move transfers ownership from src into dest.
func (b *Builder) Move(span source.Span, dest, src source.StringID) int {
	return b.push(Op{Kind: KindMove, Name: dest, Target: src, Span: span})
}

// Mutate reassigns or modifies name.
func (b *Builder) Mutate(span source.Span, name source.StringID) int {
	return b.push(Op{Kind: KindMutate, Name: name, Span: span})
}

// Use reads name.
func (b *Builder) Use(span source.Span, name source.StringID) int {
	return b.push(Op{Kind: KindUse, Name: name, Span: span})
}

// Drop ends the borrow held by the reference binding name.
func (b *Builder) Drop(span source.Span, name source.StringID) int {
	return b.push(Op{Kind: KindDrop, Name: name, Span: span})
}

// Return returns name out of the function.
func (b *Builder) Return(span source.Span, name source.StringID) int {
	return b.push(Op{Kind: KindReturn, Name: name, Span: span})
}

// EnterScope opens a lexical scope.
func (b *Builder) EnterScope(span source.Span) int {
	return b.push(Op{Kind: KindEnterScope, Span: span})
}

// ExitScope closes the innermost scope.
func (b *Builder) ExitScope(span source.Span) int {
	return b.push(Op{Kind: KindExitScope, Span: span})
}

// Program seals the builder. The builder must not be used afterwards.
func (b *Builder) Program() *Program {
	return &Program{ops: b.ops, strings: b.strings}
}
