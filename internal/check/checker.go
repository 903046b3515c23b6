// Package check walks a linear operation sequence in program order and flags
// ownership and borrow violations: conflicting borrows, use after move and
// references escaping the function that owns their target.
package check

import (
	"fmt"

	"ownlint/internal/bindings"
	"ownlint/internal/borrow"
	"ownlint/internal/diag"
	"ownlint/internal/ops"
	"ownlint/internal/source"
)

// Violation is one detected rule violation.
type Violation struct {
	Code    diag.Code
	OpIndex int
	Names   []string
	Message string
	Span    source.Span
}

// Result collects everything a single pass produced. Violations appear in
// program order; at most one violation is reported per operation.
type Result struct {
	Violations []Violation
}

// Codes lists the violation codes in program order.
func (r *Result) Codes() []diag.Code {
	out := make([]diag.Code, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.Code
	}
	return out
}

// Options configures a run. Reporter receives one diagnostic per violation
// (with notes and fix suggestions) and may be nil.
type Options struct {
	Reporter diag.Reporter
}

type checker struct {
	prog     *ops.Program
	reporter diag.Reporter

	binds   *bindings.Table
	borrows *borrow.Table

	// holderBorrow maps a reference binding to the borrow it holds; a chain
	// of references is walked through this map down to the owning binding.
	holderBorrow map[bindings.BindingID]borrow.BorrowID
	refLife      map[bindings.BindingID]source.StringID
	paramLives   map[source.StringID]struct{}

	violations []Violation
	flagged    bool // violation already reported for the current op
	opIndex    int
}

// Run analyzes prog and returns all violations found. It is a pure function
// of prog: every call builds fresh tables and retains nothing, so concurrent
// runs over independent programs are safe.
//
// An operation naming an undeclared binding is a caller error, returned
// immediately as an error wrapping bindings.ErrUnknownBinding; rule
// violations are accumulated and the pass continues to the end.
func Run(prog *ops.Program, opts Options) (*Result, error) {
	binds := bindings.NewTable()
	c := &checker{
		prog:         prog,
		reporter:     opts.Reporter,
		binds:        binds,
		borrows:      borrow.NewTable(),
		holderBorrow: make(map[bindings.BindingID]borrow.BorrowID),
		refLife:      make(map[bindings.BindingID]source.StringID),
		paramLives:   make(map[source.StringID]struct{}),
	}
	for i, op := range prog.Ops() {
		c.opIndex = i
		c.flagged = false
		if err := c.step(op); err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.Kind, err)
		}
	}
	return &Result{Violations: c.violations}, nil
}

func (c *checker) step(op ops.Op) error {
	switch op.Kind {
	case ops.KindBind:
		return c.declare(op, bindings.Local)
	case ops.KindParam:
		if op.Life != source.NoStringID {
			c.paramLives[op.Life] = struct{}{}
		}
		return c.declare(op, bindings.Param)
	case ops.KindTakeRef:
		return c.takeRef(op)
	case ops.KindMove:
		return c.move(op)
	case ops.KindMutate:
		return c.mutate(op)
	case ops.KindUse:
		return c.use(op)
	case ops.KindDrop:
		return c.drop(op)
	case ops.KindReturn:
		return c.ret(op)
	case ops.KindEnterScope:
		c.binds.PushScope()
		return nil
	case ops.KindExitScope:
		c.exitScope()
		return nil
	}
	return fmt.Errorf("unsupported operation kind %d", op.Kind)
}

func (c *checker) declare(op ops.Op, kind bindings.Kind) error {
	if _, err := c.binds.Declare(op.Name, kind, op.Life, op.Span, c.opIndex); err != nil {
		c.reportDuplicate(op)
	}
	return nil
}

func (c *checker) takeRef(op ops.Op) error {
	target, err := c.resolve(op.Target)
	if err != nil {
		return err
	}
	if c.binds.IsMoved(target) {
		c.reportUseAfterMove(op, op.Target, target)
	}

	kind := borrow.Shared
	if op.Ref == ops.RefMut {
		kind = borrow.Mut
	}
	owner := c.chaseOwner(target)

	// Declare the reference binding even when the borrow is rejected, so
	// later operations on its name resolve instead of failing hard.
	holder, declErr := c.binds.Declare(op.Name, bindings.Local, source.NoStringID, op.Span, c.opIndex)
	if declErr != nil {
		c.reportDuplicate(op)
		return nil
	}

	bid, issue := c.borrows.Begin(holder, owner, kind, op.Span, c.opIndex, c.binds.CurrentScope())
	if issue.Kind != borrow.IssueNone {
		c.reportBorrowConflict(op, owner, issue, kind)
		return nil
	}
	c.holderBorrow[holder] = bid
	if op.Life != source.NoStringID {
		c.refLife[holder] = op.Life
	}
	return nil
}

func (c *checker) move(op ops.Op) error {
	src, err := c.resolve(op.Target)
	if err != nil {
		return err
	}
	switch {
	case c.binds.IsMoved(src):
		c.reportUseAfterMove(op, op.Target, src)
	default:
		owner := c.chaseOwner(src)
		if issue := c.borrows.MoveAllowed(owner); issue.Kind != borrow.IssueNone {
			c.reportMoveWhileBorrowed(op, owner, issue)
		} else {
			_ = c.binds.MarkMoved(src, op.Span)
		}
	}

	// The destination acquires ownership: declare it on first sight,
	// restore it if it had been moved out before.
	if dest, ok := c.binds.Lookup(op.Name); ok {
		if issue := c.borrows.MutationAllowed(c.chaseOwner(dest)); issue.Kind != borrow.IssueNone {
			c.reportMutateWhileBorrowed(op, dest, issue)
			return nil
		}
		c.binds.ClearMoved(dest)
		return nil
	}
	if _, err := c.binds.Declare(op.Name, bindings.Local, source.NoStringID, op.Span, c.opIndex); err != nil {
		return err
	}
	return nil
}

func (c *checker) mutate(op ops.Op) error {
	id, err := c.resolve(op.Name)
	if err != nil {
		return err
	}
	owner := c.chaseOwner(id)
	if issue := c.borrows.MutationAllowed(owner); issue.Kind != borrow.IssueNone {
		c.reportMutateWhileBorrowed(op, owner, issue)
		return nil
	}
	// Reassignment restores a moved-out binding to the owned state.
	c.binds.ClearMoved(id)
	return nil
}

func (c *checker) use(op ops.Op) error {
	id, err := c.resolve(op.Name)
	if err != nil {
		return err
	}
	if c.binds.IsMoved(id) {
		c.reportUseAfterMove(op, op.Name, id)
		return nil
	}
	// Reading through a reference chain reads the owning binding.
	owner := c.chaseOwner(id)
	if owner != id && c.binds.IsMoved(owner) {
		c.reportUseAfterMove(op, op.Name, owner)
	}
	return nil
}

func (c *checker) drop(op ops.Op) error {
	id, err := c.resolve(op.Name)
	if err != nil {
		return err
	}
	bid := c.holderBorrow[id]
	if bid == borrow.NoBorrowID {
		c.reportDropInvalid(op)
		return nil
	}
	c.borrows.End(bid, c.opIndex)
	delete(c.holderBorrow, id)
	return nil
}

func (c *checker) ret(op ops.Op) error {
	id, err := c.resolve(op.Name)
	if err != nil {
		return err
	}
	if c.binds.IsMoved(id) {
		c.reportUseAfterMove(op, op.Name, id)
		return nil
	}
	if bid := c.holderBorrow[id]; bid != borrow.NoBorrowID {
		owner := c.chaseOwner(id)
		if !c.escapeAllowed(id, owner) {
			c.reportDanglingReturn(op, id, owner)
		}
		// References are copied out, not moved.
		return nil
	}
	// Returning an owned value transfers ownership to the caller.
	_ = c.binds.MarkMoved(id, op.Span)
	return nil
}

// escapeAllowed reports whether returning the reference held by holder is
// sound: its transitive target is caller-supplied storage, or an explicit
// lifetime parameter ties it to one.
func (c *checker) escapeAllowed(holder, owner bindings.BindingID) bool {
	b, err := c.binds.Get(owner)
	if err != nil {
		return false
	}
	if b.Kind == bindings.Param {
		return true
	}
	life, ok := c.refLife[holder]
	if !ok {
		return false
	}
	_, tied := c.paramLives[life]
	return tied
}

func (c *checker) exitScope() {
	// Popping the function's root scope is a script error already reported
	// by the parser; the checker just ignores it.
	if c.binds.ScopeDepth() <= 1 {
		return
	}
	scope := c.binds.CurrentScope()
	destroyed := c.binds.PopScope()
	c.borrows.EndScope(scope, c.opIndex)
	for _, id := range destroyed {
		if bid, ok := c.holderBorrow[id]; ok {
			c.borrows.End(bid, c.opIndex)
			delete(c.holderBorrow, id)
		}
	}
}

// chaseOwner walks the reference chain from id down to the binding that owns
// the storage. Non-reference bindings are their own owner.
func (c *checker) chaseOwner(id bindings.BindingID) bindings.BindingID {
	visited := make(map[bindings.BindingID]struct{})
	for {
		if _, seen := visited[id]; seen {
			return id
		}
		visited[id] = struct{}{}
		bid, ok := c.holderBorrow[id]
		if !ok || bid == borrow.NoBorrowID {
			return id
		}
		info := c.borrows.Info(bid)
		if info == nil || !info.Owner.IsValid() {
			return id
		}
		id = info.Owner
	}
}

func (c *checker) resolve(name source.StringID) (bindings.BindingID, error) {
	id, ok := c.binds.Lookup(name)
	if !ok {
		return bindings.NoBindingID, fmt.Errorf("%q: %w", c.prog.Name(name), bindings.ErrUnknownBinding)
	}
	return id, nil
}
