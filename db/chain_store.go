package db

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/ledger"
	"github.com/verigraph/verigraph/sym"
)

// SaveChain persists the full chain in a single transaction. Cells already
// present (by cell_id) are left untouched, so repeated saves after appends
// only write the new tail.
func SaveChain(db *sql.DB, ch *ledger.Chain, logger *zap.SugaredLogger) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin save transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO cells
			(cell_id, graph_id, cell_type, system_time, prev_cell_hash, namespace, subject, predicate, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare cell insert")
	}
	defer stmt.Close()

	saved := 0
	for _, c := range ch.Cells() {
		body, err := c.ToJSON()
		if err != nil {
			return err
		}
		res, err := stmt.Exec(
			string(c.ID),
			c.Header.GraphID,
			string(c.Header.CellType),
			c.Header.SystemTime.UnixMilli(),
			string(c.Header.PrevCellHash),
			c.Fact.Namespace,
			c.Fact.Subject,
			c.Fact.Predicate,
			string(body),
		)
		if err != nil {
			return errors.Wrapf(err, "insert cell %s", c.ID.Short())
		}
		if n, _ := res.RowsAffected(); n > 0 {
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit save transaction")
	}

	if logger != nil {
		logger.Infow("Chain saved",
			"symbol", sym.DB,
			"graph_id", ch.GraphID(),
			"cells_written", saved,
			"chain_length", ch.Len(),
		)
	}
	return nil
}

// LoadChain rebuilds a chain from storage by replaying every stored cell
// through the full commit gate in insertion order. A row that fails
// integrity, linkage, or ordering checks aborts the load: a database that
// does not replay cleanly is evidence of tampering or corruption, not
// something to skip past.
func LoadChain(db *sql.DB, logger *zap.SugaredLogger) (*ledger.Chain, error) {
	rows, err := db.Query("SELECT body FROM cells ORDER BY seq ASC")
	if err != nil {
		return nil, errors.Wrap(err, "query cells")
	}
	defer rows.Close()

	ch := ledger.NewChain(logger)
	loaded := 0
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, errors.Wrap(err, "scan cell row")
		}
		c, err := cell.FromJSON([]byte(body))
		if err != nil {
			return nil, errors.Wrapf(err, "stored cell at position %d failed verification", loaded)
		}
		if err := ch.Append(c); err != nil {
			return nil, errors.Wrapf(err, "stored cell %s rejected on replay", c.ID.Short())
		}
		loaded++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate cells")
	}

	if loaded == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "no cells in database")
	}

	if logger != nil {
		logger.Infow("Chain loaded",
			"symbol", sym.DB,
			"graph_id", ch.GraphID(),
			"chain_length", ch.Len(),
		)
	}
	return ch, nil
}
