package diag

import (
	"fmt"
)

// Code is a compact numeric identifier with a stable string form.
type Code uint16

const (
	UnknownCode Code = 0

	// Script parsing.
	ScriptInfo             Code = 1000
	ScriptUnknownDirective Code = 1001
	ScriptBadOperand       Code = 1002
	ScriptBadRefKind       Code = 1003
	ScriptUnbalancedScope  Code = 1004
	ScriptBadLifetime      Code = 1005
	ScriptBadName          Code = 1006

	// Ownership checking.
	CheckInfo              Code = 3000
	CheckConflictingBorrow Code = 3001
	CheckUseAfterMove      Code = 3002
	CheckDanglingReturn    Code = 3003
	CheckDuplicateBinding  Code = 3004
	CheckUnknownBinding    Code = 3005
	CheckDropInvalid       Code = 3006

	// IO and environment.
	IOLoadFileError Code = 4001

	// Project manifest.
	ProjectBadManifest         Code = 5001
	ProjectTwoPhaseUnsupported Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	ScriptInfo:             "script info",
	ScriptUnknownDirective: "unknown directive",
	ScriptBadOperand:       "malformed operand",
	ScriptBadRefKind:       "malformed reference kind",
	ScriptUnbalancedScope:  "unbalanced scope braces",
	ScriptBadLifetime:      "malformed lifetime label",
	ScriptBadName:          "malformed binding name",

	CheckInfo:              "check info",
	CheckConflictingBorrow: "conflicting borrow",
	CheckUseAfterMove:      "use after move",
	CheckDanglingReturn:    "dangling reference escapes function",
	CheckDuplicateBinding:  "duplicate binding in scope",
	CheckUnknownBinding:    "unknown binding",
	CheckDropInvalid:       "no active borrow to drop",

	IOLoadFileError: "failed to load file",

	ProjectBadManifest:         "malformed project manifest",
	ProjectTwoPhaseUnsupported: "two-phase borrows are not supported",
}

// ID renders the stable external identifier, e.g. CHK3003.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SCR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CHK%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
