package cell

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verigraph/verigraph/errors"
)

// GenesisRuleID anchors every genesis cell to the boot rule.
const GenesisRuleID = "genesis.boot"

// genesisRuleLogic is the canonical boot rule text. The genesis anchor hash
// is computed over its whitespace-normalized form.
const genesisRuleLogic = `
	on graph creation:
	establish graph identity and bind the root namespace;
	all later cells must chain to this cell and carry its graph_id
`

// GenesisRuleLogicHash returns the canonical boot-rule anchor hash.
func GenesisRuleLogicHash() string {
	return HashRuleLogic(genesisRuleLogic)
}

// CreateGenesis produces the unique bootstrap cell for a new ledger
// instance: a freshly generated graph_id, the reserved null predecessor, and
// the canonical boot-rule anchor. creator may be empty.
func CreateGenesis(graphName, rootNamespace, creator string) (*Cell, error) {
	return CreateGenesisAt(graphName, rootNamespace, creator, time.Now().UTC())
}

// CreateGenesisAt is CreateGenesis with an explicit system time, for replay
// and testing.
func CreateGenesisAt(graphName, rootNamespace, creator string, at time.Time) (*Cell, error) {
	if strings.TrimSpace(graphName) == "" {
		return nil, errors.NewValidationError("graph name is empty")
	}
	if err := ValidateNamespace(rootNamespace); err != nil {
		return nil, err
	}
	// The root namespace is the distinguished single-segment case.
	if strings.Contains(rootNamespace, ".") {
		return nil, errors.NewValidationError(
			"root namespace %q must be a single segment", rootNamespace)
	}

	header := Header{
		Version:      SchemaVersion,
		GraphID:      uuid.New().String(),
		CellType:     TypeGenesis,
		SystemTime:   at,
		PrevCellHash: NullHash,
	}
	fact := Fact{
		Namespace:     rootNamespace,
		Subject:       "graph:" + graphName,
		Predicate:     "establishes",
		Object:        rootNamespace,
		SourceQuality: QualityVerified,
		Confidence:    1.0,
	}
	anchor := LogicAnchor{
		RuleID:        GenesisRuleID,
		RuleLogicHash: GenesisRuleLogicHash(),
	}

	var proof *Proof
	if creator != "" {
		proof = &Proof{SignerKeyID: creator}
	}

	return New(header, fact, anchor, nil, proof)
}

// VerifyGenesis runs the exhaustive bootstrap checklist and reports every
// failure together, rather than stopping at the first, so a defective
// genesis can be diagnosed in one pass. ok is true iff reasons is empty.
func VerifyGenesis(c *Cell) (ok bool, reasons []string) {
	if c == nil {
		return false, []string{"cell is nil"}
	}

	if c.Header.CellType != TypeGenesis {
		reasons = append(reasons, fmt.Sprintf("cell_type is %q, want %q", c.Header.CellType, TypeGenesis))
	}
	if !c.Header.PrevCellHash.IsNull() {
		reasons = append(reasons, fmt.Sprintf(
			"prev_cell_hash is %s, genesis must use the null hash", c.Header.PrevCellHash))
	}
	if c.Header.Version == "" {
		reasons = append(reasons, "header version is empty")
	}
	if _, err := uuid.Parse(c.Header.GraphID); err != nil {
		reasons = append(reasons, fmt.Sprintf("graph_id %q is not a valid uuid: %v", c.Header.GraphID, err))
	}
	if c.Header.SystemTime.IsZero() {
		reasons = append(reasons, "system_time is zero")
	}

	if err := ValidateNamespace(c.Fact.Namespace); err != nil {
		reasons = append(reasons, fmt.Sprintf("root namespace: %v", err))
	} else if strings.Contains(c.Fact.Namespace, ".") {
		reasons = append(reasons, fmt.Sprintf("root namespace %q must be a single segment", c.Fact.Namespace))
	}
	if !strings.HasPrefix(c.Fact.Subject, "graph:") {
		reasons = append(reasons, fmt.Sprintf("subject %q missing graph: uniqueness marker", c.Fact.Subject))
	}
	if c.Fact.Predicate != "establishes" {
		reasons = append(reasons, fmt.Sprintf("predicate is %q, want %q", c.Fact.Predicate, "establishes"))
	}

	if c.LogicAnchor.RuleID != GenesisRuleID {
		reasons = append(reasons, fmt.Sprintf("rule_id is %q, want %q", c.LogicAnchor.RuleID, GenesisRuleID))
	}
	if want := GenesisRuleLogicHash(); c.LogicAnchor.RuleLogicHash != want {
		reasons = append(reasons, fmt.Sprintf(
			"boot-rule anchor mismatch: stored %s, want %s", c.LogicAnchor.RuleLogicHash, want))
	}

	if err := c.VerifyIntegrity(); err != nil {
		reasons = append(reasons, err.Error())
	}

	return len(reasons) == 0, reasons
}
