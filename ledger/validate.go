package ledger

import (
	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
)

// Validate re-runs the commit-gate checks over the entire committed
// sequence, plus the genesis uniqueness invariant. Unlike Append, which
// fails fast, Validate collects every violation before reporting, so an
// audit is actionable in one pass. An empty slice means the chain is sound.
func (ch *Chain) Validate() []error {
	var violations []error

	if len(ch.cells) == 0 {
		return []error{errors.Wrap(errors.ErrGenesis, "ledger is empty, no genesis cell")}
	}

	genesisCount := 0
	for i, c := range ch.cells {
		if c.IsGenesis() {
			genesisCount++
			if i != 0 {
				violations = append(violations, errors.Wrapf(errors.ErrGenesis,
					"genesis cell %s at position %d, must be first", c.ID.Short(), i))
			}
			if ok, reasons := cell.VerifyGenesis(c); !ok {
				violations = append(violations, errors.Wrapf(errors.ErrGenesis,
					"genesis cell %s malformed: %v", c.ID.Short(), reasons))
			}
			continue
		}

		if err := c.VerifyIntegrity(); err != nil {
			violations = append(violations, err)
		}

		if c.Header.GraphID != ch.graphID {
			violations = append(violations, errors.Wrapf(errors.ErrGraphMismatch,
				"cell %s at position %d carries graph_id %s, ledger expects %s",
				c.ID.Short(), i, c.Header.GraphID, ch.graphID))
		}

		if c.Header.PrevCellHash.IsNull() {
			violations = append(violations, errors.Wrapf(errors.ErrChainBreak,
				"cell %s at position %d uses the null predecessor hash", c.ID.Short(), i))
		} else if _, ok := ch.byID[c.Header.PrevCellHash]; !ok {
			violations = append(violations, errors.Wrapf(errors.ErrChainBreak,
				"cell %s at position %d references unknown predecessor %s",
				c.ID.Short(), i, c.Header.PrevCellHash))
		}

		if i > 0 {
			prev := ch.cells[i-1]
			if c.Header.SystemTime.Before(prev.Header.SystemTime) {
				violations = append(violations, errors.Wrapf(errors.ErrTemporal,
					"cell %s at position %d has system_time %s before predecessor's %s",
					c.ID.Short(), i,
					c.Header.SystemTime.Format(timeFormat),
					prev.Header.SystemTime.Format(timeFormat)))
			}
		}
	}

	if genesisCount == 0 {
		violations = append(violations, errors.Wrap(errors.ErrGenesis, "no genesis cell in ledger"))
	} else if genesisCount > 1 {
		violations = append(violations, errors.Wrapf(errors.ErrGenesis,
			"found %d genesis cells, exactly one allowed", genesisCount))
	}

	return violations
}
