package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/papapumpkin/foundry/internal/assetdb"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema is executed on every open. The position column keeps insertion
// order independent of IDs, which are reused.
const schema = `
CREATE TABLE IF NOT EXISTS catalog_entries (
    position    INTEGER PRIMARY KEY,
    id          INTEGER NOT NULL UNIQUE,
    name        TEXT    NOT NULL UNIQUE,
    price       INTEGER NOT NULL CHECK (price >= 0),
    icon_guid   TEXT    NOT NULL DEFAULT '',
    icon_path   TEXT    NOT NULL DEFAULT '',
    icon_sub    TEXT    NOT NULL DEFAULT '',
    prefab_guid TEXT    NOT NULL DEFAULT '',
    prefab_path TEXT    NOT NULL DEFAULT '',
    prefab_sub  TEXT    NOT NULL DEFAULT ''
);
`

// SQLiteBackend stores the catalog in a SQLite database in WAL mode.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at path and creates the
// schema if needed.
func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Load returns every row ordered by position.
func (b *SQLiteBackend) Load(ctx context.Context) ([]Entry, error) {
	const q = `
		SELECT id, name, price, icon_guid, icon_path, icon_sub, prefab_guid, prefab_path, prefab_sub
		FROM catalog_entries ORDER BY position`
	rows, err := b.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e            Entry
			icon, prefab assetdb.Handle
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Price,
			&icon.GUID, &icon.Path, &icon.Sub,
			&prefab.GUID, &prefab.Path, &prefab.Sub); err != nil {
			return nil, fmt.Errorf("catalog: scan entry: %w", err)
		}
		e.Icon, e.Prefab = icon, prefab
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	return entries, nil
}

// Save replaces all rows in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, entries []Entry) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM catalog_entries"); err != nil {
		return fmt.Errorf("catalog: clear entries: %w", err)
	}

	const ins = `
		INSERT INTO catalog_entries
			(position, id, name, price, icon_guid, icon_path, icon_sub, prefab_guid, prefab_path, prefab_sub)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, ins)
	if err != nil {
		return fmt.Errorf("catalog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, i, e.ID, e.Name, e.Price,
			e.Icon.GUID, e.Icon.Path, e.Icon.Sub,
			e.Prefab.GUID, e.Prefab.Path, e.Prefab.Sub); err != nil {
			return fmt.Errorf("catalog: insert %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
