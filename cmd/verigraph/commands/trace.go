package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/sym"
)

// TraceCmd walks a cell's lineage back to genesis.
var TraceCmd = &cobra.Command{
	Use:   "trace CELL_ID",
	Short: sym.CHAIN + " Walk a cell's lineage back to genesis",
	Long: sym.CHAIN + ` trace - Trace provenance

Follows prev_cell_hash links from the given cell back to the genesis cell,
printing each hop. A complete trace is the proof that the cell is anchored
in the ledger's tamper-evident history.`,
	Args: cobra.ExactArgs(1),
	RunE: runTraceCommand,
}

func runTraceCommand(cmd *cobra.Command, args []string) error {
	database, ch, err := openChain()
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := cell.ParseID(args[0])
	if err != nil {
		return err
	}

	path, err := ch.TraceToGenesis(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s %d hop(s) to genesis\n", sym.CHAIN, len(path)-1)
	for i, c := range path {
		marker := "├─"
		if i == len(path)-1 {
			marker = "└─"
		}
		fmt.Printf("  %s %s  %-18s %s  %s\n",
			marker, c.ID.Short(), c.Header.CellType,
			c.Header.SystemTime.Format("2006-01-02 15:04:05"),
			factLine(c))
	}
	return nil
}

func factLine(c *cell.Cell) string {
	if c.Fact.Object == "" {
		return fmt.Sprintf("%s %s", c.Fact.Subject, c.Fact.Predicate)
	}
	return fmt.Sprintf("%s %s %s", c.Fact.Subject, c.Fact.Predicate, c.Fact.Object)
}
