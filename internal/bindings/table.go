// Package bindings tracks named storage locations, their lexical scopes and
// their ownership state (owned vs moved-out).
package bindings

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"ownlint/internal/source"
)

// BindingID identifies a binding within a Table.
type BindingID uint32

// NoBindingID marks the absence of a binding.
const NoBindingID BindingID = 0

func (id BindingID) IsValid() bool { return id != NoBindingID }

// ScopeID identifies a lexical scope within a Table.
type ScopeID uint32

// NoScopeID marks the absence of a scope.
const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

// Kind distinguishes function-local bindings from caller-supplied ones.
type Kind uint8

const (
	// Local is declared inside the analyzed function.
	Local Kind = iota
	// Param is supplied by the caller; its storage outlives the function.
	Param
)

// Sentinel errors for caller mistakes, wrapped with context by Table methods.
var (
	ErrDuplicateBinding = errors.New("duplicate binding")
	ErrUnknownBinding   = errors.New("unknown binding")
)

// Binding is a named storage location.
type Binding struct {
	ID       BindingID
	Name     source.StringID
	Kind     Kind
	Scope    ScopeID
	Life     source.StringID // lifetime label for Param bindings
	DeclSpan source.Span
	DeclOp   int
}

type scopeFrame struct {
	id    ScopeID
	names map[source.StringID]BindingID
	order []BindingID
}

// Table is the binding table: declaration, lookup through the scope stack,
// and move state. Index 0 of the arena is a sentinel.
type Table struct {
	bindings  []Binding
	scopes    []scopeFrame
	scopeSeq  uint32
	moved     map[BindingID]source.Span
	destroyed map[BindingID]struct{}
}

// NewTable creates a table with the function's root scope already open.
func NewTable() *Table {
	t := &Table{
		bindings: []Binding{{}},
		moved:    make(map[BindingID]source.Span),
	}
	t.PushScope()
	return t
}

// PushScope opens a nested lexical scope and returns its id.
func (t *Table) PushScope() ScopeID {
	t.scopeSeq++
	id := ScopeID(t.scopeSeq)
	t.scopes = append(t.scopes, scopeFrame{
		id:    id,
		names: make(map[source.StringID]BindingID),
	})
	return id
}

// PopScope closes the innermost scope and returns the bindings it destroyed,
// in declaration order. The root scope cannot be popped.
func (t *Table) PopScope() []BindingID {
	if len(t.scopes) <= 1 {
		return nil
	}
	frame := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]
	if t.destroyed == nil {
		t.destroyed = make(map[BindingID]struct{})
	}
	for _, id := range frame.order {
		t.destroyed[id] = struct{}{}
	}
	return frame.order
}

// CurrentScope returns the innermost open scope.
func (t *Table) CurrentScope() ScopeID {
	return t.scopes[len(t.scopes)-1].id
}

// ScopeDepth reports how many scopes are open, the root scope included.
func (t *Table) ScopeDepth() int {
	return len(t.scopes)
}

// Declare registers a binding in the current scope. Re-declaring a name the
// current scope already holds fails with ErrDuplicateBinding; shadowing an
// outer scope's name is allowed.
func (t *Table) Declare(name source.StringID, kind Kind, life source.StringID, span source.Span, opIdx int) (BindingID, error) {
	frame := &t.scopes[len(t.scopes)-1]
	if _, exists := frame.names[name]; exists {
		return NoBindingID, fmt.Errorf("binding already declared in this scope: %w", ErrDuplicateBinding)
	}
	n, err := safecast.Conv[uint32](len(t.bindings))
	if err != nil {
		panic(fmt.Errorf("binding table overflow: %w", err))
	}
	id := BindingID(n)
	t.bindings = append(t.bindings, Binding{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Scope:    frame.id,
		Life:     life,
		DeclSpan: span,
		DeclOp:   opIdx,
	})
	frame.names[name] = id
	frame.order = append(frame.order, id)
	return id, nil
}

// Lookup resolves name against the scope stack, innermost scope first.
func (t *Table) Lookup(name source.StringID) (BindingID, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if id, ok := t.scopes[i].names[name]; ok {
			return id, true
		}
	}
	return NoBindingID, false
}

// Get returns the binding for id or ErrUnknownBinding.
func (t *Table) Get(id BindingID) (*Binding, error) {
	if !id.IsValid() || int(id) >= len(t.bindings) {
		return nil, fmt.Errorf("binding id %d: %w", id, ErrUnknownBinding)
	}
	return &t.bindings[id], nil
}

// MarkMoved records that id was moved out at span. The first move wins so the
// diagnostic points at the original consuming operation.
func (t *Table) MarkMoved(id BindingID, span source.Span) error {
	if _, err := t.Get(id); err != nil {
		return err
	}
	if _, exists := t.moved[id]; !exists {
		t.moved[id] = span
	}
	return nil
}

// ClearMoved restores id to the owned state (e.g. after reassignment).
func (t *Table) ClearMoved(id BindingID) {
	delete(t.moved, id)
}

// IsMoved reports whether id was moved out.
func (t *Table) IsMoved(id BindingID) bool {
	_, moved := t.moved[id]
	return moved
}

// MovedAt returns the span of the operation that consumed id.
func (t *Table) MovedAt(id BindingID) (source.Span, bool) {
	span, ok := t.moved[id]
	return span, ok
}

// IsDestroyed reports whether id's scope has already been closed.
func (t *Table) IsDestroyed(id BindingID) bool {
	_, gone := t.destroyed[id]
	return gone
}
