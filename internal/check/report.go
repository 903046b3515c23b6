package check

import (
	"fmt"

	"ownlint/internal/bindings"
	"ownlint/internal/borrow"
	"ownlint/internal/diag"
	"ownlint/internal/fix"
	"ownlint/internal/ops"
	"ownlint/internal/source"
)

// emit records a violation and forwards it to the reporter. Only the first
// violation per operation is kept; the pass itself never stops.
func (c *checker) emit(code diag.Code, op ops.Op, msg string, names []string, notes []diag.Note, fixes []diag.Fix) {
	if c.flagged {
		return
	}
	c.flagged = true
	c.violations = append(c.violations, Violation{
		Code:    code,
		OpIndex: c.opIndex,
		Names:   names,
		Message: msg,
		Span:    op.Span,
	})
	if c.reporter != nil {
		c.reporter.Report(code, diag.SevError, op.Span, msg, notes, fixes)
	}
}

func (c *checker) name(id source.StringID) string {
	return c.prog.Name(id)
}

func (c *checker) bindingName(id bindings.BindingID) string {
	b, err := c.binds.Get(id)
	if err != nil {
		return "_"
	}
	return c.name(b.Name)
}

func (c *checker) borrowNote(issue borrow.Issue) []diag.Note {
	info := c.borrows.Info(issue.Borrow)
	if info == nil || info.Span.Empty() {
		return nil
	}
	label := "shared"
	if info.Kind == borrow.Mut {
		label = "mutable"
	}
	return []diag.Note{{
		Span: info.Span,
		Msg:  fmt.Sprintf("%s borrow of '%s' taken here", label, c.bindingName(info.Owner)),
	}}
}

func (c *checker) reportDuplicate(op ops.Op) {
	name := c.name(op.Name)
	c.emit(diag.CheckDuplicateBinding, op,
		fmt.Sprintf("binding '%s' is already declared in this scope; the original binding stays in force", name),
		[]string{name}, nil,
		[]diag.Fix{fix.Suggestion("rename the new binding or declare it in a nested scope")})
}

func (c *checker) reportUseAfterMove(op ops.Op, nameID source.StringID, moved bindings.BindingID) {
	name := c.name(nameID)
	var notes []diag.Note
	if span, ok := c.binds.MovedAt(moved); ok && !span.Empty() {
		notes = append(notes, diag.Note{Span: span, Msg: fmt.Sprintf("'%s' moved out here", c.bindingName(moved))})
	}
	c.emit(diag.CheckUseAfterMove, op,
		fmt.Sprintf("use of moved value '%s': a move transfers ownership and invalidates the source binding", name),
		[]string{name}, notes,
		[]diag.Fix{fix.Suggestion(
			fmt.Sprintf("borrow '%s' with a reference instead of moving it", c.bindingName(moved)),
			fix.Preferred())})
}

func (c *checker) reportBorrowConflict(op ops.Op, owner bindings.BindingID, issue borrow.Issue, kind borrow.Kind) {
	ownerName := c.bindingName(owner)
	var msg string
	if kind == borrow.Mut {
		msg = fmt.Sprintf("cannot take a mutable reference to '%s' while it is borrowed: a binding with an active reference may not be mutably aliased", ownerName)
	} else {
		msg = fmt.Sprintf("cannot take a reference to '%s' while it is mutably borrowed", ownerName)
	}
	c.emit(diag.CheckConflictingBorrow, op, msg,
		[]string{c.name(op.Name), ownerName}, c.borrowNote(issue),
		[]diag.Fix{c.dropBorrowFix(op, issue)})
}

func (c *checker) reportMutateWhileBorrowed(op ops.Op, owner bindings.BindingID, issue borrow.Issue) {
	ownerName := c.bindingName(owner)
	c.emit(diag.CheckConflictingBorrow, op,
		fmt.Sprintf("cannot mutate '%s' while it is borrowed: a binding with an active reference may not change until all references go out of use", ownerName),
		[]string{ownerName}, c.borrowNote(issue),
		[]diag.Fix{c.dropBorrowFix(op, issue)})
}

func (c *checker) reportMoveWhileBorrowed(op ops.Op, owner bindings.BindingID, issue borrow.Issue) {
	ownerName := c.bindingName(owner)
	c.emit(diag.CheckConflictingBorrow, op,
		fmt.Sprintf("cannot move out of '%s' while it is borrowed", ownerName),
		[]string{ownerName}, c.borrowNote(issue),
		[]diag.Fix{c.dropBorrowFix(op, issue)})
}

func (c *checker) reportDanglingReturn(op ops.Op, holder, owner bindings.BindingID) {
	ownerName := c.bindingName(owner)
	holderName := c.bindingName(holder)
	var notes []diag.Note
	if b, err := c.binds.Get(owner); err == nil && !b.DeclSpan.Empty() {
		notes = append(notes, diag.Note{Span: b.DeclSpan, Msg: fmt.Sprintf("'%s' declared here, destroyed at end of function", ownerName)})
	}
	c.emit(diag.CheckDanglingReturn, op,
		fmt.Sprintf("returning '%s', a reference to '%s' which is local to this function and destroyed when it returns", holderName, ownerName),
		[]string{holderName, ownerName}, notes,
		[]diag.Fix{
			fix.Suggestion("tie the returned reference to a caller-supplied input with a lifetime parameter", fix.Preferred()),
			fix.Suggestion(fmt.Sprintf("return the owned value '%s' instead of a reference", ownerName)),
		})
}

func (c *checker) reportDropInvalid(op ops.Op) {
	name := c.name(op.Name)
	c.emit(diag.CheckDropInvalid, op,
		fmt.Sprintf("'%s' holds no active borrow to drop", name),
		[]string{name}, nil, nil)
}

// dropBorrowFix suggests ending the blocking borrow before the offending
// operation; when the borrow's span is known the fix carries a concrete edit.
func (c *checker) dropBorrowFix(op ops.Op, issue borrow.Issue) diag.Fix {
	info := c.borrows.Info(issue.Borrow)
	if info == nil {
		return fix.Suggestion("drop the existing borrow before this operation")
	}
	holderName := c.bindingName(info.Holder)
	title := fmt.Sprintf("drop '%s' before this operation, or move this operation after the last use of '%s'", holderName, holderName)
	if op.Span.Empty() {
		return fix.Suggestion(title, fix.Preferred())
	}
	at := source.Span{File: op.Span.File, Start: op.Span.Start, End: op.Span.Start}
	return fix.InsertText(title, at, fmt.Sprintf("drop %s\n", holderName), fix.Preferred())
}
