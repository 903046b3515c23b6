// Package testkit holds invariant checks shared by parser tests and fuzzing.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"ownlint/internal/ops"
	"ownlint/internal/source"
)

// CheckProgramInvariants verifies the structural invariants of a parsed
// program against its source file:
// 1) every op span stays within file content bounds
// 2) op spans appear in non-decreasing start order (line-oriented source)
// 3) scope ops are balanced and never close below depth zero
func CheckProgramInvariants(prog *ops.Program, sf *source.File) error {
	if prog == nil || sf == nil {
		return fmt.Errorf("nil program or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	prevStart := uint32(0)
	depth := 0
	for i, op := range prog.Ops() {
		sp := op.Span
		if sp.End < sp.Start {
			return fmt.Errorf("op %d: inverted span %v", i, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("op %d: span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End > lenContent {
			return fmt.Errorf("op %d: span end beyond content: %d > %d", i, sp.End, lenContent)
		}
		if sp.Start < prevStart {
			return fmt.Errorf("op %d: span start %d before previous op at %d", i, sp.Start, prevStart)
		}
		prevStart = sp.Start

		switch op.Kind {
		case ops.KindEnterScope:
			depth++
		case ops.KindExitScope:
			depth--
			if depth < 0 {
				return fmt.Errorf("op %d: scope exit below depth zero", i)
			}
		}
	}
	return nil
}
