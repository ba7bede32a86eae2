package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/db"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/sym"
)

// AppendCmd records a fact on the chain.
var AppendCmd = &cobra.Command{
	Use:   "append",
	Short: sym.CELL + " Record a fact on the chain",
	Long: sym.CELL + ` append - Record a fact

Builds a cell chained onto the current head and commits it through the full
gate: integrity, graph binding, chain linkage, and temporal ordering. The
cell's content hash becomes its permanent identity.

Valid-time bounds take RFC 3339 timestamps or plain dates (2026-01-15).

Examples:
  verigraph append --namespace acme.hr --subject employee:jane \
      --predicate has_role --object Engineer --quality verified --confidence 1.0
  verigraph append --type access_rule --namespace acme.hr \
      --subject user:hr_admin --predicate holds --object acme.hr
  verigraph append --namespace acme.hr --subject employee:jane \
      --predicate has_role --object Manager --valid-from 2026-02-01`,
	RunE: runAppendCommand,
}

func init() {
	AppendCmd.Flags().String("type", "fact", "Cell type (fact, rule, decision, evidence, override, access_rule, bridge_rule, bridge_revocation, namespace_def, policy_head)")
	AppendCmd.Flags().String("namespace", "", "Namespace the fact belongs to (required)")
	AppendCmd.Flags().String("subject", "", "Entity the fact is about (required)")
	AppendCmd.Flags().String("predicate", "", "Relation being claimed (required)")
	AppendCmd.Flags().String("object", "", "Value of the claim")
	AppendCmd.Flags().String("quality", "self_reported", "Source quality (verified, self_reported, inferred)")
	// Full certainty is reserved for verified sources, so the default
	// confidence must pair with the default quality.
	AppendCmd.Flags().Float64("confidence", 0.9, "Confidence in [0, 1]; 1.0 requires --quality verified")
	AppendCmd.Flags().String("valid-from", "", "Start of the validity window")
	AppendCmd.Flags().String("valid-to", "", "End of the validity window (exclusive)")
	AppendCmd.Flags().String("rule-id", "manual.entry", "Rule that authorized this cell")
	AppendCmd.Flags().String("rule-logic", "operator-entered fact", "Rule logic text, hashed into the anchor")
	AppendCmd.Flags().StringSlice("evidence", nil, "Cell ids of supporting evidence")
	AppendCmd.MarkFlagRequired("namespace")
	AppendCmd.MarkFlagRequired("subject")
	AppendCmd.MarkFlagRequired("predicate")
}

func runAppendCommand(cmd *cobra.Command, args []string) error {
	database, ch, err := openChain()
	if err != nil {
		return err
	}
	defer database.Close()

	cellType, _ := cmd.Flags().GetString("type")
	namespace, _ := cmd.Flags().GetString("namespace")
	subject, _ := cmd.Flags().GetString("subject")
	predicate, _ := cmd.Flags().GetString("predicate")
	object, _ := cmd.Flags().GetString("object")
	quality, _ := cmd.Flags().GetString("quality")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	ruleID, _ := cmd.Flags().GetString("rule-id")
	ruleLogic, _ := cmd.Flags().GetString("rule-logic")
	evidence, _ := cmd.Flags().GetStringSlice("evidence")

	validFrom, err := parseTimeFlag(cmd, "valid-from")
	if err != nil {
		return err
	}
	validTo, err := parseTimeFlag(cmd, "valid-to")
	if err != nil {
		return err
	}

	c, err := cell.New(
		cell.Header{
			Version:      cell.SchemaVersion,
			GraphID:      ch.GraphID(),
			CellType:     cell.Type(cellType),
			SystemTime:   time.Now().UTC(),
			PrevCellHash: ch.Head().ID,
		},
		cell.Fact{
			Namespace:     namespace,
			Subject:       subject,
			Predicate:     predicate,
			Object:        object,
			SourceQuality: cell.SourceQuality(quality),
			Confidence:    confidence,
			ValidFrom:     validFrom,
			ValidTo:       validTo,
		},
		cell.LogicAnchor{
			RuleID:        ruleID,
			RuleLogicHash: cell.HashRuleLogic(ruleLogic),
		},
		evidence,
		nil,
	)
	if err != nil {
		return err
	}

	if err := ch.Append(c); err != nil {
		return err
	}
	if err := db.SaveChain(database, ch, nil); err != nil {
		return err
	}

	fmt.Printf("%s Committed cell %s\n", sym.CELL, c.ID.Short())
	fmt.Printf("  Type:       %s\n", c.Header.CellType)
	fmt.Printf("  Namespace:  %s\n", c.Fact.Namespace)
	fmt.Printf("  Fact:       %s %s %s\n", c.Fact.Subject, c.Fact.Predicate, c.Fact.Object)
	fmt.Printf("  Quality:    %s (%.2f)\n", c.Fact.SourceQuality, c.Fact.Confidence)
	fmt.Printf("  Chain:      %s position %d\n", sym.CHAIN, ch.Len()-1)
	return nil
}

// parseTimeFlag accepts RFC 3339 or a bare date, returning nil when unset.
func parseTimeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.NewValidationError("--%s %q is not RFC 3339 or YYYY-MM-DD", name, raw)
}
