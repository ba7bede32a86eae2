package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verigraph/verigraph/config"
	"github.com/verigraph/verigraph/scholar"
	"github.com/verigraph/verigraph/sym"
)

// QueryCmd resolves facts for a subject.
var QueryCmd = &cobra.Command{
	Use:   "query NAMESPACE SUBJECT [PREDICATE]",
	Short: sym.QUERY + " Resolve facts for a subject as a requester",
	Long: sym.QUERY + ` query - Resolve facts

Collects candidate cells for the given coordinates, applies the bitemporal
filter, and resolves conflicting claims to a single winner per (namespace,
subject, predicate). The requester must hold a namespace that grants
visibility into the target, directly, by ancestry, or through a bridge.

--at restricts to facts valid at a point in time; --as-of restricts to what
was known at a point in time (cells recorded later are invisible).

Examples:
  verigraph query acme.hr employee:jane --requester user:hr_admin
  verigraph query acme.hr employee:jane has_role --requester user:hr_admin
  verigraph query acme.hr employee:jane --requester user:hr_admin --at 2026-02-15
  verigraph query acme.hr employee:jane --requester user:audit --as-of 2026-01-31`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runQueryCommand,
}

func init() {
	QueryCmd.Flags().String("requester", "", "Principal making the query (required)")
	QueryCmd.Flags().String("at", "", "Valid-time point (RFC 3339 or YYYY-MM-DD)")
	QueryCmd.Flags().String("as-of", "", "System-time knowledge cut (RFC 3339 or YYYY-MM-DD)")
	QueryCmd.Flags().Int("limit", 0, "Candidate cap override (0 uses the configured limit)")
	QueryCmd.Flags().BoolP("json", "j", false, "Output the full result as JSON")
	QueryCmd.MarkFlagRequired("requester")
}

func runQueryCommand(cmd *cobra.Command, args []string) error {
	database, ch, err := openChain()
	if err != nil {
		return err
	}
	defer database.Close()

	requester, _ := cmd.Flags().GetString("requester")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	validTime, err := parseTimeFlag(cmd, "at")
	if err != nil {
		return err
	}
	systemTime, err := parseTimeFlag(cmd, "as-of")
	if err != nil {
		return err
	}

	params := scholar.Params{
		Namespace:  args[0],
		Subject:    args[1],
		ValidTime:  validTime,
		SystemTime: systemTime,
		Requester:  requester,
		Limit:      limit,
	}
	if len(args) == 3 {
		params.Predicate = args[2]
	}

	var scholarCfg *scholar.Config
	if cfg, err := config.Load(); err == nil && cfg.Query.CandidateLimit > 0 {
		scholarCfg = &scholar.Config{CandidateLimit: cfg.Query.CandidateLimit}
	}

	result, err := scholar.BuildIndex(ch, scholarCfg, nil).Query(params)
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if result.Authorization != nil {
		fmt.Printf("%s Access via %s (%s)\n", sym.BRIDGE, result.Authorization.HeldNamespace, result.Authorization.Kind)
	}
	if len(result.WinningFacts) == 0 {
		fmt.Printf("%s No facts match\n", sym.QUERY)
		return nil
	}

	fmt.Printf("%s %d winning fact(s) from %d candidate(s)\n", sym.QUERY, len(result.WinningFacts), len(result.Candidates))
	for _, c := range result.WinningFacts {
		fmt.Printf("  %s %s %s  [%s %.2f]  %s\n",
			c.Fact.Subject, c.Fact.Predicate, c.Fact.Object,
			c.Fact.SourceQuality, c.Fact.Confidence, c.ID.Short())
	}
	for _, ev := range result.ResolutionEvents {
		fmt.Printf("  resolved by %s: %s\n", ev.Rule, ev.Detail)
	}
	if result.Truncated {
		fmt.Println("  (candidate set truncated; narrow the query or raise --limit)")
	}
	return nil
}
