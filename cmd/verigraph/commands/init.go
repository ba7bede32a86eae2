package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/db"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/ledger"
	"github.com/verigraph/verigraph/sym"
)

// InitCmd bootstraps a new ledger.
var InitCmd = &cobra.Command{
	Use:   "init GRAPH_NAME ROOT_NAMESPACE",
	Short: sym.SEED + " Bootstrap a new ledger with a genesis cell",
	Long: sym.SEED + ` init - Bootstrap a new ledger

Creates the genesis cell: a fresh graph identity bound to a root namespace.
Every later cell must chain back to this cell and carry its graph_id. The
root namespace is a single lowercase segment; sub-namespaces are introduced
by appending dot-separated segments on later cells.

Examples:
  verigraph init "Acme Corp" acme
  verigraph init "Acme Corp" acme --creator alice@acme`,
	Args: cobra.ExactArgs(2),
	RunE: runInitCommand,
}

func init() {
	InitCmd.Flags().String("creator", "", "Key id of the bootstrapping principal")
}

func runInitCommand(cmd *cobra.Command, args []string) error {
	creator, _ := cmd.Flags().GetString("creator")

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	// Refuse to bootstrap over an existing ledger
	if existing, err := db.LoadChain(database, nil); err == nil {
		return errors.Newf("ledger already initialized for graph %s (%d cells)",
			existing.GraphID(), existing.Len())
	} else if !errors.IsNotFoundError(err) {
		return err
	}

	genesis, err := cell.CreateGenesis(args[0], args[1], creator)
	if err != nil {
		return err
	}

	if ok, reasons := cell.VerifyGenesis(genesis); !ok {
		return errors.Newf("genesis failed verification: %s", strings.Join(reasons, "; "))
	}

	ch, err := ledger.FromGenesis(genesis, nil)
	if err != nil {
		return err
	}
	if err := db.SaveChain(database, ch, nil); err != nil {
		return err
	}

	fmt.Printf("%s Ledger initialized\n", sym.SEED)
	fmt.Printf("  Graph:     %s\n", args[0])
	fmt.Printf("  Graph ID:  %s\n", ch.GraphID())
	fmt.Printf("  Root:      %s\n", ch.RootNamespace())
	fmt.Printf("  Genesis:   %s\n", genesis.ID.Short())
	return nil
}
