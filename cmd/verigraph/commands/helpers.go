package commands

import (
	"database/sql"

	"github.com/verigraph/verigraph/config"
	"github.com/verigraph/verigraph/db"
	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/ledger"
)

// openDatabase opens the configured database with migrations applied.
func openDatabase() (*sql.DB, error) {
	path, err := config.GetDatabasePath()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	database, err := db.Open(path, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database, nil); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// openChain loads the persisted chain, replaying every cell through the
// commit gate. Caller closes the returned database.
func openChain() (*sql.DB, *ledger.Chain, error) {
	database, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}
	ch, err := db.LoadChain(database, nil)
	if err != nil {
		database.Close()
		if errors.IsNotFoundError(err) {
			return nil, nil, errors.Wrap(err, "no ledger found, run 'verigraph init' first")
		}
		return nil, nil, err
	}
	return database, ch, nil
}
