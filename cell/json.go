package cell

import (
	"encoding/json"

	"github.com/verigraph/verigraph/errors"
)

// FromJSON reconstructs a cell from its serialized form. Tamper detection is
// a load-time contract, not optional validation: the content hash is always
// recomputed and compared against the stored cell_id, and any mismatch fails
// hard. Field validation is re-run so a hand-edited document cannot smuggle
// in values that construction would have rejected.
func FromJSON(data []byte) (*Cell, error) {
	var c Cell
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal cell")
	}

	if err := validateHeader(c.Header); err != nil {
		return nil, err
	}
	if err := validateFact(c.Fact); err != nil {
		return nil, err
	}
	if err := validateAnchor(c.LogicAnchor); err != nil {
		return nil, err
	}

	if _, err := ParseID(string(c.ID)); err != nil {
		return nil, errors.Wrap(err, "cell_id")
	}
	if err := c.VerifyIntegrity(); err != nil {
		return nil, err
	}

	return &c, nil
}

// ToJSON serializes the cell. The inverse of FromJSON.
func (c *Cell) ToJSON() ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal cell %s", c.ID.Short())
	}
	return b, nil
}
