package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verigraph/verigraph/namespace"
	"github.com/verigraph/verigraph/sym"
)

// VisibilityCmd shows what a principal can read.
var VisibilityCmd = &cobra.Command{
	Use:   "visibility PRINCIPAL",
	Short: sym.BRIDGE + " Show the namespaces a principal can read",
	Long: sym.BRIDGE + ` visibility - Inspect a principal's reach

Lists every defined namespace the principal can query: namespaces they hold,
descendants of those, and namespaces reachable through a currently valid
bridge. Bridge reach is never transitive.

Examples:
  verigraph visibility user:hr_admin
  verigraph visibility user:auditor --at 2026-03-01`,
	Args: cobra.ExactArgs(1),
	RunE: runVisibilityCommand,
}

func init() {
	VisibilityCmd.Flags().String("at", "", "Evaluate bridge windows at this time (default now)")
}

func runVisibilityCommand(cmd *cobra.Command, args []string) error {
	database, ch, err := openChain()
	if err != nil {
		return err
	}
	defer database.Close()

	at := time.Now().UTC()
	if t, err := parseTimeFlag(cmd, "at"); err != nil {
		return err
	} else if t != nil {
		at = *t
	}

	registry := namespace.BuildRegistry(ch, nil)
	principal := args[0]

	holdings := registry.Holdings(principal)
	if len(holdings) == 0 {
		fmt.Printf("%s %s holds no namespaces\n", sym.BRIDGE, principal)
		return nil
	}

	fmt.Printf("%s %s holds: %v\n", sym.BRIDGE, principal, holdings)
	visible := registry.Visible(principal, at)
	fmt.Printf("  visible namespaces (%d):\n", len(visible))
	for _, ns := range visible {
		basis, err := registry.Authorize(principal, ns, at)
		if err != nil {
			continue
		}
		fmt.Printf("    %-30s via %s", ns, basis.Kind)
		if basis.Kind == namespace.BasisBridge && basis.Bridge != nil {
			fmt.Printf(" (%s)", basis.Bridge.CellID.Short())
		}
		fmt.Println()
	}
	return nil
}
