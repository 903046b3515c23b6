// Package ops defines the linear operation representation the ownership
// checker runs over: variable bindings, borrows, moves, mutations, uses and
// returns, in program order.
package ops

import (
	"ownlint/internal/source"
)

// Kind enumerates the operation forms.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindBind declares a function-local owned binding.
	KindBind
	// KindParam declares a caller-supplied binding, optionally carrying a
	// lifetime label that output references may be tied to.
	KindParam
	// KindTakeRef declares a reference binding borrowing Target. Borrowing a
	// reference binding forms a chain down to the owning base binding.
	KindTakeRef
	// KindMove transfers ownership from Src into Dest, consuming Src.
	KindMove
	// KindMutate reassigns or modifies a binding in place.
	KindMutate
	// KindUse reads a binding or reads through a reference chain.
	KindUse
	// KindDrop explicitly ends the borrow held by a reference binding.
	KindDrop
	// KindReturn returns a binding or reference out of the function.
	KindReturn
	// KindEnterScope opens a lexical scope.
	KindEnterScope
	// KindExitScope closes the innermost scope, ending its bindings and
	// borrows.
	KindExitScope
)

func (k Kind) String() string {
	switch k {
	case KindBind:
		return "bind"
	case KindParam:
		return "param"
	case KindTakeRef:
		return "ref"
	case KindMove:
		return "move"
	case KindMutate:
		return "mutate"
	case KindUse:
		return "use"
	case KindDrop:
		return "drop"
	case KindReturn:
		return "return"
	case KindEnterScope:
		return "scope"
	case KindExitScope:
		return "end"
	}
	return "invalid"
}

// RefKind differentiates shared and mutable references.
type RefKind uint8

const (
	RefShared RefKind = iota
	RefMut
)

func (k RefKind) String() string {
	if k == RefMut {
		return "&mut"
	}
	return "&"
}

// Op is a single operation. Operand meaning by kind:
//
//	Bind      Name = binding, Value = optional literal text
//	Param     Name = binding, Life = optional lifetime label
//	TakeRef   Name = new reference binding, Target = borrowed binding,
//	          Ref = shared/mut, Life = optional lifetime label
//	Move      Name = destination, Target = source
//	Mutate    Name = binding
//	Use       Name = binding
//	Drop      Name = reference binding
//	Return    Name = binding
type Op struct {
	Kind   Kind
	Name   source.StringID
	Target source.StringID
	Value  source.StringID
	Life   source.StringID
	Ref    RefKind
	Span   source.Span
}

// Program is an immutable ordered operation sequence plus the interner that
// owns its names. Index positions are the "operation indices" diagnostics
// refer to.
type Program struct {
	ops     []Op
	strings *Interner
}

// Interner aliases the source interner; names and lifetimes share one pool.
type Interner = source.Interner

// Ops returns the operation sequence. Callers must not modify it.
func (p *Program) Ops() []Op {
	return p.ops
}

func (p *Program) Len() int {
	return len(p.ops)
}

// Name resolves an interned string, returning "_" for the zero id.
func (p *Program) Name(id source.StringID) string {
	if id == source.NoStringID {
		return "_"
	}
	s, ok := p.strings.Lookup(id)
	if !ok {
		return "_"
	}
	return s
}

// Strings exposes the program's interner.
func (p *Program) Strings() *Interner {
	return p.strings
}
