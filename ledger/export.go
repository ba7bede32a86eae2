package ledger

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
)

// Export serializes the chain as a JSON array of cells in append order.
func (ch *Chain) Export() ([]byte, error) {
	return json.MarshalIndent(ch.cells, "", "  ")
}

// Import rebuilds a chain from an exported JSON array. Every cell is
// reconstructed through cell.FromJSON (hash recheck included) and replayed
// through the full commit gate; import is not a shortcut around validation.
func Import(data []byte, logger *zap.SugaredLogger) (*Chain, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal ledger export")
	}

	ch := NewChain(logger)
	for i, r := range raw {
		c, err := cell.FromJSON(r)
		if err != nil {
			return nil, errors.Wrapf(err, "cell at position %d", i)
		}
		if err := ch.Append(c); err != nil {
			return nil, errors.Wrapf(err, "replaying cell at position %d", i)
		}
	}
	return ch, nil
}
