package borrow

import (
	"testing"

	"ownlint/internal/bindings"
	"ownlint/internal/source"
)

const (
	ownerID   bindings.BindingID = 1
	holderA   bindings.BindingID = 2
	holderB   bindings.BindingID = 3
	rootScope bindings.ScopeID   = 1
)

func TestSharedBorrowsCoexist(t *testing.T) {
	tbl := NewTable()
	a, issue := tbl.Begin(holderA, ownerID, Shared, source.Span{}, 0, rootScope)
	if issue.Kind != IssueNone {
		t.Fatalf("first shared borrow rejected: %v", issue.Kind)
	}
	b, issue := tbl.Begin(holderB, ownerID, Shared, source.Span{}, 1, rootScope)
	if issue.Kind != IssueNone {
		t.Fatalf("second shared borrow rejected: %v", issue.Kind)
	}
	if a == b || a == NoBorrowID || b == NoBorrowID {
		t.Fatalf("expected two distinct borrow ids, got %v and %v", a, b)
	}
	if got := tbl.Active(ownerID, 1); len(got) != 2 {
		t.Fatalf("expected 2 active borrows, got %d", len(got))
	}
}

func TestMutableBorrowConflictsWithShared(t *testing.T) {
	tbl := NewTable()
	shared, _ := tbl.Begin(holderA, ownerID, Shared, source.Span{}, 0, rootScope)
	id, issue := tbl.Begin(holderB, ownerID, Mut, source.Span{}, 1, rootScope)
	if issue.Kind != IssueConflictShared {
		t.Fatalf("expected IssueConflictShared, got %v", issue.Kind)
	}
	if issue.Borrow != shared {
		t.Fatalf("issue must name the blocking borrow %v, got %v", shared, issue.Borrow)
	}
	if id != NoBorrowID {
		t.Fatalf("a rejected borrow must not be registered")
	}
}

func TestSharedBorrowConflictsWithMutable(t *testing.T) {
	tbl := NewTable()
	mut, _ := tbl.Begin(holderA, ownerID, Mut, source.Span{}, 0, rootScope)
	_, issue := tbl.Begin(holderB, ownerID, Shared, source.Span{}, 1, rootScope)
	if issue.Kind != IssueConflictMut || issue.Borrow != mut {
		t.Fatalf("expected IssueConflictMut at %v, got %v at %v", mut, issue.Kind, issue.Borrow)
	}
}

func TestSecondMutableBorrowRejected(t *testing.T) {
	tbl := NewTable()
	tbl.Begin(holderA, ownerID, Mut, source.Span{}, 0, rootScope)
	_, issue := tbl.Begin(holderB, ownerID, Mut, source.Span{}, 1, rootScope)
	if issue.Kind != IssueConflictMut {
		t.Fatalf("expected IssueConflictMut, got %v", issue.Kind)
	}
}

func TestFreezeWhileBorrowed(t *testing.T) {
	tbl := NewTable()
	shared, _ := tbl.Begin(holderA, ownerID, Shared, source.Span{}, 0, rootScope)

	if issue := tbl.MutationAllowed(ownerID); issue.Kind != IssueFrozen {
		t.Fatalf("expected IssueFrozen while shared borrow lives, got %v", issue.Kind)
	}
	if issue := tbl.MoveAllowed(ownerID); issue.Kind != IssueFrozen {
		t.Fatalf("expected IssueFrozen for move, got %v", issue.Kind)
	}

	tbl.End(shared, 1)
	if issue := tbl.MutationAllowed(ownerID); issue.Kind != IssueNone {
		t.Fatalf("ending the borrow must unfreeze the owner, got %v", issue.Kind)
	}
}

func TestTakenWhileMutablyBorrowed(t *testing.T) {
	tbl := NewTable()
	mut, _ := tbl.Begin(holderA, ownerID, Mut, source.Span{}, 0, rootScope)
	issue := tbl.MutationAllowed(ownerID)
	if issue.Kind != IssueTaken || issue.Borrow != mut {
		t.Fatalf("expected IssueTaken at %v, got %v at %v", mut, issue.Kind, issue.Borrow)
	}
}

func TestEndClosesValidityWindow(t *testing.T) {
	tbl := NewTable()
	id, _ := tbl.Begin(holderA, ownerID, Shared, source.Span{}, 2, rootScope)

	info := tbl.Info(id)
	if info == nil {
		t.Fatalf("expected info for borrow %v", id)
	}
	if info.Active(1) {
		t.Fatalf("borrow must not be active before FromOp")
	}
	if !info.Active(2) || !info.Active(100) {
		t.Fatalf("open borrow must be active from FromOp onward")
	}

	tbl.End(id, 5)
	if info.Active(5) {
		t.Fatalf("borrow must not be active at EndOp")
	}
	if !info.Active(4) {
		t.Fatalf("borrow must stay active up to EndOp")
	}

	// Ending twice keeps the original window.
	tbl.End(id, 9)
	if info.EndOp != 5 {
		t.Fatalf("second End must not move the window, got EndOp %d", info.EndOp)
	}
}

func TestEndScopeExpiresBorrows(t *testing.T) {
	tbl := NewTable()
	inner := bindings.ScopeID(2)
	kept, _ := tbl.Begin(holderA, ownerID, Shared, source.Span{}, 0, rootScope)
	gone, _ := tbl.Begin(holderB, ownerID, Shared, source.Span{}, 1, inner)

	tbl.EndScope(inner, 2)
	if tbl.Info(gone).Active(3) {
		t.Fatalf("scope-bound borrow must end with its scope")
	}
	if !tbl.Info(kept).Active(3) {
		t.Fatalf("outer borrow must survive inner scope exit")
	}
}

func TestInfosExcludesSentinel(t *testing.T) {
	tbl := NewTable()
	if got := tbl.Infos(); got != nil {
		t.Fatalf("empty table must report no infos, got %v", got)
	}
	tbl.Begin(holderA, ownerID, Shared, source.Span{}, 0, rootScope)
	if got := tbl.Infos(); len(got) != 1 {
		t.Fatalf("expected one info, got %d", len(got))
	}
}
