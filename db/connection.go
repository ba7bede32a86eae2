package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/sym"
)

// Pragmas applied to every connection. WAL lets audits and queries read
// while an append is committing; the busy timeout makes concurrent CLI
// invocations queue instead of failing with SQLITE_BUSY.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Open opens the ledger database at path. A nil logger is accepted and
// silences connection logging.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	if logger != nil {
		logger.Debugw("Opening ledger database", "path", path, "symbol", sym.DB)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to apply %q", p)
		}
	}

	if logger != nil {
		logger.Infow("Ledger database ready",
			"path", path,
			"symbol", sym.DB,
		)
	}

	return db, nil
}
