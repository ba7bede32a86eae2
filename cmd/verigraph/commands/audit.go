package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/scholar"
	"github.com/verigraph/verigraph/sym"
)

// AuditCmd verifies the chain end to end.
var AuditCmd = &cobra.Command{
	Use:   "audit",
	Short: sym.AUDIT + " Verify chain integrity end to end",
	Long: sym.AUDIT + ` audit - Verify the full chain

Re-runs every commit-gate check over the stored chain: genesis correctness,
content hashes, graph binding, chain linkage, and temporal ordering. Also
reports rule anchors whose logic hash diverges across cells, and namespaces
defined without a defined parent.

Exits non-zero if any violation is found.`,
	RunE: runAuditCommand,
}

func runAuditCommand(cmd *cobra.Command, args []string) error {
	database, ch, err := openChain()
	if err != nil {
		return err
	}
	defer database.Close()

	violations := ch.Validate()

	if ok, reasons := cell.VerifyGenesis(ch.Cells()[0]); !ok {
		violations = append(violations, errors.Newf("genesis: %s", strings.Join(reasons, "; ")))
	}

	sch := scholar.BuildIndex(ch, nil, nil)
	mismatches := sch.FindRuleMismatches()
	orphans := sch.Registry().Orphans()

	fmt.Printf("%s Audited %d cells on graph %s\n", sym.AUDIT, ch.Len(), ch.GraphID())

	for _, m := range mismatches {
		fmt.Printf("  warning: rule %s has %d distinct logic hashes\n", m.RuleID, len(m.Cells))
	}
	for _, ns := range orphans {
		fmt.Printf("  warning: namespace %s is defined but its parent is not\n", ns)
	}

	if len(violations) == 0 {
		fmt.Println("  chain is intact")
		return nil
	}

	for _, v := range violations {
		fmt.Printf("  violation: %v\n", v)
	}
	return errors.Newf("audit found %d violation(s)", len(violations))
}
