package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Backend persists catalog entries.
type Backend interface {
	// Load returns the stored entries in catalog order.
	Load(ctx context.Context) ([]Entry, error)
	// Save replaces the stored entries with entries.
	Save(ctx context.Context, entries []Entry) error
	// Close releases any resources held by the backend.
	Close() error
}

// OpenBackend picks a backend by file extension: SQLite for .db, .sqlite
// and .sqlite3, TOML for everything else.
func OpenBackend(ctx context.Context, path string) (Backend, error) {
	if path == "" {
		return nil, errors.New("catalog: no catalog path configured")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteBackend(ctx, path)
	default:
		return NewTOMLBackend(path), nil
	}
}

// catalogFile is the TOML document layout.
type catalogFile struct {
	Entries []Entry `toml:"entry"`
}

// TOMLBackend stores the catalog as a single TOML file.
type TOMLBackend struct {
	path string
}

// NewTOMLBackend returns a backend for the file at path. The file is created
// on the first Save.
func NewTOMLBackend(path string) *TOMLBackend {
	return &TOMLBackend{path: path}
}

// Load reads the catalog file. A missing file is an empty catalog.
func (b *TOMLBackend) Load(_ context.Context) ([]Entry, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: reading %s: %w", b.path, err)
	}
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parsing %s: %w", b.path, err)
	}
	return f.Entries, nil
}

// Save writes the catalog file atomically (write temp + rename).
func (b *TOMLBackend) Save(_ context.Context, entries []Entry) error {
	if dir := filepath.Dir(b.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("catalog: creating directory %s: %w", dir, err)
		}
	}
	data, err := toml.Marshal(catalogFile{Entries: entries})
	if err != nil {
		return fmt.Errorf("catalog: marshaling: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("catalog: writing temp file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("catalog: renaming catalog file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (b *TOMLBackend) Close() error { return nil }
