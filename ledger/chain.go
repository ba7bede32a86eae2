// Package ledger implements the append-only chain of cells and its commit
// gate. A chain starts empty, is initialized by a verified genesis cell, and
// grows only through Append; there is no delete or update path. A failed
// append leaves the chain byte-for-byte unchanged.
package ledger

import (
	"go.uber.org/zap"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
)

// Chain is the ordered container of cells for one ledger instance, with an
// O(1) identity index. Not safe for concurrent mutation: callers that append
// and query concurrently must serialize appends externally and treat any
// scholar built from a chain as a point-in-time snapshot.
type Chain struct {
	graphID       string
	rootNamespace string
	cells         []*cell.Cell
	byID          map[cell.ID]*cell.Cell
	logger        *zap.SugaredLogger
}

// NewChain creates an empty chain. The first Append must be a genesis cell,
// which binds the chain's graph_id and root namespace.
func NewChain(logger *zap.SugaredLogger) *Chain {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Chain{
		byID:   make(map[cell.ID]*cell.Cell),
		logger: logger.Named("ledger"),
	}
}

// FromGenesis creates a chain and appends the given genesis cell through the
// commit gate.
func FromGenesis(genesis *cell.Cell, logger *zap.SugaredLogger) (*Chain, error) {
	ch := NewChain(logger)
	if err := ch.Append(genesis); err != nil {
		return nil, err
	}
	return ch, nil
}

// GraphID returns the ledger-instance identifier, or "" while empty.
func (ch *Chain) GraphID() string {
	return ch.graphID
}

// RootNamespace returns the namespace established at genesis, or "" while empty.
func (ch *Chain) RootNamespace() string {
	return ch.rootNamespace
}

// Len returns the number of committed cells.
func (ch *Chain) Len() int {
	return len(ch.cells)
}

// Get looks up a cell by identity.
func (ch *Chain) Get(id cell.ID) (*cell.Cell, bool) {
	c, ok := ch.byID[id]
	return c, ok
}

// Head returns the most recently committed cell, or nil while empty.
func (ch *Chain) Head() *cell.Cell {
	if len(ch.cells) == 0 {
		return nil
	}
	return ch.cells[len(ch.cells)-1]
}

// Cells returns the committed sequence in append order. The returned slice
// is a copy; the cells themselves are shared and must not be mutated.
func (ch *Chain) Cells() []*cell.Cell {
	out := make([]*cell.Cell, len(ch.cells))
	copy(out, ch.cells)
	return out
}

// Append runs the commit gate and either accepts the cell into the ordered
// sequence or rejects it with a specific error. Checks run in a fixed order
// and the first failure aborts with no partial mutation:
//
//  1. empty chain accepts only genesis; non-empty rejects genesis
//  2. content hash recomputation (tamper detection)
//  3. graph binding (cross-ledger contamination)
//  4. predecessor link resolution
//  5. system_time monotonicity
func (ch *Chain) Append(c *cell.Cell) error {
	if c == nil {
		return errors.NewValidationError("cannot append nil cell")
	}

	if len(ch.cells) == 0 {
		if !c.IsGenesis() {
			return errors.Wrapf(errors.ErrGenesis,
				"empty ledger accepts only genesis cells, got %q", c.Header.CellType)
		}
		if ok, reasons := cell.VerifyGenesis(c); !ok {
			return errors.Wrapf(errors.ErrGenesis, "genesis verification failed: %v", reasons)
		}
		ch.graphID = c.Header.GraphID
		ch.rootNamespace = c.Fact.Namespace
		ch.commit(c)
		ch.logger.Infow("Ledger initialized",
			"graph_id", ch.graphID,
			"root_namespace", ch.rootNamespace,
			"genesis", c.ID.Short(),
		)
		return nil
	}

	// No reinitialization: a second genesis is always rejected.
	if c.IsGenesis() {
		return errors.Wrapf(errors.ErrGenesis,
			"ledger %s already has a genesis cell, cannot append a second", ch.graphID)
	}

	if err := c.VerifyIntegrity(); err != nil {
		return err
	}

	// The single most safety-critical check: the cell must be bound to this
	// ledger instance, not merely be structurally valid.
	if c.Header.GraphID != ch.graphID {
		return errors.Wrapf(errors.ErrGraphMismatch,
			"cell %s carries graph_id %s, ledger expects %s",
			c.ID.Short(), c.Header.GraphID, ch.graphID)
	}

	if c.Header.PrevCellHash.IsNull() {
		return errors.Wrapf(errors.ErrChainBreak,
			"cell %s uses the null predecessor hash, reserved for genesis", c.ID.Short())
	}
	if _, ok := ch.byID[c.Header.PrevCellHash]; !ok {
		return errors.Wrapf(errors.ErrChainBreak,
			"cell %s references unknown predecessor %s", c.ID.Short(), c.Header.PrevCellHash)
	}

	if prev := ch.Head(); c.Header.SystemTime.Before(prev.Header.SystemTime) {
		return errors.Wrapf(errors.ErrTemporal,
			"cell %s system_time %s is before predecessor's %s",
			c.ID.Short(),
			c.Header.SystemTime.Format(timeFormat),
			prev.Header.SystemTime.Format(timeFormat))
	}

	if _, ok := ch.byID[c.ID]; ok {
		return errors.NewIntegrityError(
			"cell %s already committed, duplicate cell_id", c.ID.Short())
	}

	ch.commit(c)
	ch.logger.Debugw("Cell committed",
		"cell", c.ID.Short(),
		"type", c.Header.CellType,
		"namespace", c.Fact.Namespace,
		"seq", len(ch.cells)-1,
	)
	return nil
}

// commit is the only mutation path.
func (ch *Chain) commit(c *cell.Cell) {
	ch.cells = append(ch.cells, c)
	ch.byID[c.ID] = c
}

// TraceToGenesis walks prev_cell_hash links from id back to the null hash,
// producing the full provenance path, target first. The walk is defensive
// against dangling links since chains may be loaded from untrusted input.
func (ch *Chain) TraceToGenesis(id cell.ID) ([]*cell.Cell, error) {
	c, ok := ch.byID[id]
	if !ok {
		return nil, errors.NewNotFoundError("cell %s not in ledger %s", id, ch.graphID)
	}

	var path []*cell.Cell
	seen := make(map[cell.ID]bool)
	for {
		if seen[c.ID] {
			return nil, errors.Wrapf(errors.ErrChainBreak,
				"provenance cycle detected at cell %s", c.ID.Short())
		}
		seen[c.ID] = true
		path = append(path, c)

		if c.Header.PrevCellHash.IsNull() {
			return path, nil
		}
		next, ok := ch.byID[c.Header.PrevCellHash]
		if !ok {
			return nil, errors.Wrapf(errors.ErrChainBreak,
				"cell %s references unknown predecessor %s during trace",
				c.ID.Short(), c.Header.PrevCellHash)
		}
		c = next
	}
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"
