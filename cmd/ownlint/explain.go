package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ownlint/internal/diag"
)

var explainCmd = &cobra.Command{
	Use:   "explain <code>",
	Short: "Explain a diagnostic code",
	Long:  `Print the rule behind a diagnostic code, e.g. "ownlint explain CHK3002"`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExplain,
}

type ruleDoc struct {
	code    diag.Code
	summary string
	detail  string
	example string
}

var ruleDocs = []ruleDoc{
	{
		code:    diag.CheckConflictingBorrow,
		summary: "a borrow, mutation or move conflicts with an active borrow",
		detail: `A value may have any number of shared references or exactly one
mutable reference, never both at once. Mutating or moving a value
while any reference to it is alive invalidates that reference, so
the checker rejects the operation. Drop the reference first, or
delay the mutation until the reference is no longer needed.`,
		example: `bind data
ref r = & data
mutate data    # rejected: r is still alive
use r`,
	},
	{
		code:    diag.CheckUseAfterMove,
		summary: "a binding is used after its value was moved out",
		detail: `Moving a value transfers ownership to the destination; the source
binding becomes empty and stays empty until something moves a new
value back in. Reading, mutating, moving or returning an empty
binding is an error. Borrow instead of moving when the source is
still needed.`,
		example: `bind s
move t <- s
use s          # rejected: s was moved into t`,
	},
	{
		code:    diag.CheckDanglingReturn,
		summary: "a returned reference would outlive its owner",
		detail: `A reference returned from the script must point at a value that
survives the script: a parameter, or a value reachable from one.
Returning a reference to a local leaves the caller holding a
pointer to freed storage. Return the value itself, or tie the
reference to a parameter lifetime.`,
		example: `bind local
ref r = & local
return r       # rejected: local dies here, r would dangle`,
	},
	{
		code:    diag.CheckDuplicateBinding,
		summary: "two bindings share a name in the same scope",
		detail: `Within one scope every binding name must be unique. The first
binding stays in effect; the duplicate declaration is rejected.
An inner scope may shadow an outer name.`,
		example: `bind x
bind x         # rejected: x already bound in this scope`,
	},
	{
		code:    diag.CheckUnknownBinding,
		summary: "an operation names a binding that was never declared",
		detail: `Every operand must refer to a binding declared by a previous bind,
param or ref operation that is still in scope. This aborts the
whole check because later results would be meaningless.`,
		example: `use ghost      # rejected: ghost was never declared`,
	},
	{
		code:    diag.CheckDropInvalid,
		summary: "drop names a binding that holds no active borrow",
		detail: `Drop ends the borrow held by a reference binding. Dropping a
binding that is not a live reference has nothing to release.`,
		example: `bind x
drop x         # rejected: x holds no borrow`,
	},
}

func runExplain(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		fmt.Fprintln(out, "known diagnostic codes:")
		sorted := make([]ruleDoc, len(ruleDocs))
		copy(sorted, ruleDocs)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].code < sorted[j].code })
		for _, doc := range sorted {
			fmt.Fprintf(out, "  %s  %s\n", doc.code.ID(), doc.summary)
		}
		return nil
	}

	query := strings.ToUpper(strings.TrimSpace(args[0]))
	for _, doc := range ruleDocs {
		if doc.code.ID() == query {
			fmt.Fprintf(out, "%s: %s\n\n", doc.code.ID(), doc.code.Title())
			fmt.Fprintln(out, doc.detail)
			if doc.example != "" {
				fmt.Fprintln(out, "\nexample:")
				for _, line := range strings.Split(doc.example, "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
			}
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic code %q (try \"ownlint explain\" for the list)", args[0])
}
