package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrateUp applies every .up.sql migration in lexical order. Statements are
// written to be re-runnable, so calling this on an up-to-date database is a
// no-op.
func MigrateUp(db *sql.DB) error {
	return applyMigrations(db, ".up.sql")
}

func MigrateDown(db *sql.DB) error {
	return applyMigrations(db, ".down.sql")
}

func applyMigrations(db *sql.DB, suffix string) error {
	entries, err := fs.Glob(migrationFiles, "migrations/*"+suffix)
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	if len(entries) == 0 {
		return errors.New("storage: no embedded migrations found")
	}
	sort.Strings(entries)
	for _, name := range entries {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if _, execErr := db.Exec(string(sqlBytes)); execErr != nil {
			return fmt.Errorf("apply migration %s: %w", name, execErr)
		}
	}
	return nil
}
