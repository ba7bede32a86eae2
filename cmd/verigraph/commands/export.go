package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verigraph/verigraph/db"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/ledger"
	"github.com/verigraph/verigraph/sym"
)

// ExportCmd writes the chain as JSON.
var ExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: sym.CHAIN + " Write the full chain as JSON",
	Long: sym.CHAIN + ` export - Export the chain

Serializes the complete chain, genesis first, as a JSON array of cells.
Writes to stdout when no file is given. The export carries everything
needed to verify and rebuild the ledger elsewhere.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExportCommand,
}

func runExportCommand(cmd *cobra.Command, args []string) error {
	database, ch, err := openChain()
	if err != nil {
		return err
	}
	defer database.Close()

	data, err := ch.Export()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", args[0])
	}
	fmt.Printf("%s Exported %d cells to %s\n", sym.CHAIN, ch.Len(), args[0])
	return nil
}

// ImportCmd rebuilds a ledger from exported JSON.
var ImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: sym.CHAIN + " Rebuild a ledger from exported JSON",
	Long: sym.CHAIN + ` import - Import a chain

Replays every cell in the export through the full commit gate, so a
tampered or reordered export is rejected, then persists the verified chain.
Refuses to overwrite an existing ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCommand,
}

func runImportCommand(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", args[0])
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	if existing, err := db.LoadChain(database, nil); err == nil {
		return errors.Newf("ledger already initialized for graph %s, refusing to import over it",
			existing.GraphID())
	} else if !errors.IsNotFoundError(err) {
		return err
	}

	ch, err := ledger.Import(data, nil)
	if err != nil {
		return err
	}
	if err := db.SaveChain(database, ch, nil); err != nil {
		return err
	}

	fmt.Printf("%s Imported %d cells for graph %s\n", sym.CHAIN, ch.Len(), ch.GraphID())
	return nil
}
