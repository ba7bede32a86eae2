package db

import (
	"database/sql"
	"embed"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/verigraph/verigraph/errors"
	"github.com/verigraph/verigraph/sym"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

// Migrate brings the schema up to date. Migrations are embedded .sql files
// named NNN_description.sql and applied in lexical order; each runs inside
// its own transaction together with the row that records it, so a failed
// migration leaves no half-applied schema. Applied versions are skipped,
// which makes Migrate safe to call on every startup.
func Migrate(db *sql.DB, logger *zap.SugaredLogger) error {
	entries, err := migrations.ReadDir("sqlite/migrations")
	if err != nil {
		return errors.Wrap(err, "read migrations")
	}

	var pending []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			pending = append(pending, entry.Name())
		}
	}
	sort.Strings(pending)

	applied := 0
	for _, filename := range pending {
		version := strings.SplitN(filename, "_", 2)[0]

		var exists bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version).Scan(&exists)
		switch {
		case err != nil && version != "000":
			// Only 000 may run before the bookkeeping table exists
			return errors.Newf("schema_migrations table missing before %s", filename)
		case err == nil && exists:
			continue
		}

		sqlBytes, err := migrations.ReadFile(filepath.Join("sqlite/migrations", filename))
		if err != nil {
			return errors.Wrapf(err, "read %s", filename)
		}

		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(err, "begin tx for %s", filename)
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "execute %s", filename)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record %s", filename)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "commit %s", filename)
		}

		applied++
		if logger != nil {
			logger.Infow("Applied schema migration",
				"migration", filename,
				"symbol", sym.DB,
			)
		}
	}

	if logger != nil && applied > 0 {
		logger.Infow("Schema up to date",
			"symbol", sym.DB,
			"applied", applied,
			"total", len(pending),
		)
	}

	return nil
}
