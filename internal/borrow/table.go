// Package borrow records outstanding shared and mutable borrows per binding
// together with their validity windows in operation indices.
package borrow

import (
	"fmt"

	"fortio.org/safecast"

	"ownlint/internal/bindings"
	"ownlint/internal/source"
)

// BorrowID identifies an active borrow entry.
type BorrowID uint32

// NoBorrowID marks the absence of a borrow.
const NoBorrowID BorrowID = 0

func (id BorrowID) IsValid() bool { return id != NoBorrowID }

// Kind differentiates shared vs mutable borrows.
type Kind uint8

const (
	Shared Kind = iota
	Mut
)

func (k Kind) String() string {
	if k == Mut {
		return "mutable"
	}
	return "shared"
}

// IssueKind enumerates reasons a borrow-related action fails.
type IssueKind uint8

const (
	IssueNone IssueKind = iota
	// IssueConflictShared: a new mutable borrow collides with a shared one.
	IssueConflictShared
	// IssueConflictMut: a new borrow collides with an existing mutable one.
	IssueConflictMut
	// IssueFrozen: the binding cannot be mutated/moved, shared borrows exist.
	IssueFrozen
	// IssueTaken: the binding cannot be mutated/moved, a mutable borrow exists.
	IssueTaken
)

// Issue carries information about a conflict.
type Issue struct {
	Kind   IssueKind
	Borrow BorrowID
}

// Info stores metadata about each borrow. EndOp is -1 while the borrow is
// still live; otherwise the validity window is [FromOp, EndOp).
type Info struct {
	ID     BorrowID
	Kind   Kind
	Owner  bindings.BindingID // the borrowed binding
	Holder bindings.BindingID // the reference binding holding the borrow
	Scope  bindings.ScopeID
	Span   source.Span
	FromOp int
	EndOp  int
}

// Active reports whether the borrow is live at operation index atOp.
func (i *Info) Active(atOp int) bool {
	if i == nil || atOp < i.FromOp {
		return false
	}
	return i.EndOp < 0 || atOp < i.EndOp
}

type ownerState struct {
	shared []BorrowID
	mut    BorrowID
}

// Table tracks active borrows and per-binding borrow state.
type Table struct {
	infos        []Info
	state        map[bindings.BindingID]ownerState
	scopeBorrows map[bindings.ScopeID][]BorrowID
}

// NewTable builds an empty borrow table ready for tracking.
func NewTable() *Table {
	return &Table{
		infos:        []Info{{EndOp: -1}},
		state:        make(map[bindings.BindingID]ownerState),
		scopeBorrows: make(map[bindings.ScopeID][]BorrowID),
	}
}

// Begin registers a borrow of owner held by holder, starting at op fromOp
// within scope. A mutable borrow while any borrow is live, or any borrow
// while a mutable one is live, fails with a conflict issue and registers
// nothing.
func (t *Table) Begin(holder, owner bindings.BindingID, kind Kind, span source.Span, fromOp int, scope bindings.ScopeID) (BorrowID, Issue) {
	if t == nil || !owner.IsValid() || !scope.IsValid() {
		return NoBorrowID, Issue{}
	}
	state := t.state[owner]
	switch kind {
	case Shared:
		if state.mut != NoBorrowID {
			return NoBorrowID, Issue{Kind: IssueConflictMut, Borrow: state.mut}
		}
	case Mut:
		if len(state.shared) > 0 {
			return NoBorrowID, Issue{Kind: IssueConflictShared, Borrow: state.shared[0]}
		}
		if state.mut != NoBorrowID {
			return NoBorrowID, Issue{Kind: IssueConflictMut, Borrow: state.mut}
		}
	}
	n, err := safecast.Conv[uint32](len(t.infos))
	if err != nil {
		panic(fmt.Errorf("borrow table overflow: %w", err))
	}
	id := BorrowID(n)
	t.infos = append(t.infos, Info{
		ID:     id,
		Kind:   kind,
		Owner:  owner,
		Holder: holder,
		Scope:  scope,
		Span:   span,
		FromOp: fromOp,
		EndOp:  -1,
	})
	switch kind {
	case Shared:
		state.shared = append(state.shared, id)
	case Mut:
		state.mut = id
	}
	t.state[owner] = state
	t.scopeBorrows[scope] = append(t.scopeBorrows[scope], id)
	return id, Issue{}
}

// End closes the borrow's validity window at atOp.
func (t *Table) End(id BorrowID, atOp int) {
	info := t.Info(id)
	if info == nil || info.EndOp >= 0 {
		return
	}
	info.EndOp = atOp
	state := t.state[info.Owner]
	switch info.Kind {
	case Shared:
		state.shared = dropBorrowID(state.shared, id)
	case Mut:
		if state.mut == id {
			state.mut = NoBorrowID
		}
	}
	if len(state.shared) == 0 && state.mut == NoBorrowID {
		delete(t.state, info.Owner)
	} else {
		t.state[info.Owner] = state
	}
}

// EndScope expires all borrows whose lexical lifetime ends at scope.
func (t *Table) EndScope(scope bindings.ScopeID, atOp int) {
	if t == nil || !scope.IsValid() {
		return
	}
	for _, id := range t.scopeBorrows[scope] {
		t.End(id, atOp)
	}
	delete(t.scopeBorrows, scope)
}

// Active returns the borrows of owner that are live at operation index atOp.
func (t *Table) Active(owner bindings.BindingID, atOp int) []BorrowID {
	if t == nil {
		return nil
	}
	var out []BorrowID
	for i := 1; i < len(t.infos); i++ {
		info := &t.infos[i]
		if info.Owner == owner && info.Active(atOp) {
			out = append(out, info.ID)
		}
	}
	return out
}

// MutationAllowed verifies whether owner can be mutated right now.
func (t *Table) MutationAllowed(owner bindings.BindingID) Issue {
	return t.freezeIssue(owner)
}

// MoveAllowed verifies whether owner can be moved from right now.
func (t *Table) MoveAllowed(owner bindings.BindingID) Issue {
	return t.freezeIssue(owner)
}

func (t *Table) freezeIssue(owner bindings.BindingID) Issue {
	if t == nil || !owner.IsValid() {
		return Issue{}
	}
	state, ok := t.state[owner]
	if !ok {
		return Issue{}
	}
	if len(state.shared) > 0 {
		return Issue{Kind: IssueFrozen, Borrow: state.shared[0]}
	}
	if state.mut != NoBorrowID {
		return Issue{Kind: IssueTaken, Borrow: state.mut}
	}
	return Issue{}
}

// Info returns metadata for the borrow, or nil for an invalid id.
func (t *Table) Info(id BorrowID) *Info {
	if t == nil || id == NoBorrowID || int(id) >= len(t.infos) {
		return nil
	}
	return &t.infos[id]
}

// Infos returns a copy of the stored borrow infos (excluding the sentinel).
func (t *Table) Infos() []Info {
	if t == nil || len(t.infos) <= 1 {
		return nil
	}
	out := make([]Info, len(t.infos)-1)
	copy(out, t.infos[1:])
	return out
}

func dropBorrowID(ids []BorrowID, target BorrowID) []BorrowID {
	for i, id := range ids {
		if id == target {
			ids[i] = ids[len(ids)-1]
			return ids[:len(ids)-1]
		}
	}
	return ids
}
