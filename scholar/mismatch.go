package scholar

import (
	"sort"

	"github.com/verigraph/verigraph/cell"
)

// RuleMismatch reports a rule_id whose cells disagree about the rule's
// canonical logic hash, the compliance signal that two versions of a rule
// produced facts under the same name.
type RuleMismatch struct {
	RuleID string                `json:"rule_id"`
	Cells  map[string][]cell.ID  `json:"cells"` // rule_logic_hash → cells anchored to it
}

// FindRuleMismatches scans every indexed cell and returns each rule_id
// anchored by more than one distinct rule_logic_hash, sorted by rule_id.
func (s *Scholar) FindRuleMismatches() []RuleMismatch {
	byRule := make(map[string]map[string][]cell.ID)
	for _, c := range s.byID {
		hashes, ok := byRule[c.LogicAnchor.RuleID]
		if !ok {
			hashes = make(map[string][]cell.ID)
			byRule[c.LogicAnchor.RuleID] = hashes
		}
		hashes[c.LogicAnchor.RuleLogicHash] = append(hashes[c.LogicAnchor.RuleLogicHash], c.ID)
	}

	var out []RuleMismatch
	for ruleID, hashes := range byRule {
		if len(hashes) < 2 {
			continue
		}
		for h := range hashes {
			sort.Slice(hashes[h], func(i, j int) bool { return hashes[h][i] < hashes[h][j] })
		}
		out = append(out, RuleMismatch{RuleID: ruleID, Cells: hashes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RuleID < out[j].RuleID })
	return out
}
