package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verigraph/verigraph/cmd/verigraph/commands"
	"github.com/verigraph/verigraph/config"
	"github.com/verigraph/verigraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "verigraph",
	Short: "verigraph - Tamper-evident bitemporal fact ledger",
	Long: `verigraph - Tamper-evident, namespace-isolated fact ledger.

Facts are stored as content-addressed cells on a hash-linked chain. Every
cell carries bitemporal coordinates (when it was true, when it was recorded),
namespaces isolate organizational boundaries, and queries resolve conflicting
claims deterministically.

Available commands:
  init       - Bootstrap a new ledger with a genesis cell
  append     - Record a fact on the chain
  query      - Resolve facts for a subject as a requester
  audit      - Verify chain integrity end to end
  trace      - Walk a cell's lineage back to genesis
  visibility - Show the namespaces a principal can read
  export     - Write the full chain as JSON
  import     - Rebuild a ledger from exported JSON

Examples:
  verigraph init "Acme Corp" acme --creator alice@acme
  verigraph append --namespace acme.hr --subject employee:jane \
      --predicate has_role --object Engineer --quality verified
  verigraph query acme.hr employee:jane has_role --requester user:hr_admin
  verigraph audit`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonLogs := false
		if cfg, err := config.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
		}
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.AppendCmd)
	rootCmd.AddCommand(commands.QueryCmd)
	rootCmd.AddCommand(commands.AuditCmd)
	rootCmd.AddCommand(commands.TraceCmd)
	rootCmd.AddCommand(commands.VisibilityCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
