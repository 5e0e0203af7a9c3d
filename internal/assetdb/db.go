// Package assetdb is a filesystem-backed asset database. Assets are files
// under a project root; each has a TOML .meta sidecar carrying its GUID and,
// for textures, importer settings. The in-memory index maps project-relative
// paths to records and is rebuilt by Refresh.
package assetdb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/papapumpkin/foundry/internal/logging"
)

// Record is the index entry for one asset.
type Record struct {
	Path string
	Kind Kind
	GUID string
}

// Handle returns a handle referencing the record's asset.
func (r Record) Handle() Handle {
	return Handle{GUID: r.GUID, Path: r.Path}
}

// DB is the asset database rooted at a project directory. It assumes
// exclusive access to the project for the duration of a pipeline run and is
// not safe for concurrent use.
type DB struct {
	root  string
	log   *zap.Logger
	index map[string]Record
}

// Open indexes the project at root. A nil logger disables logging.
func Open(root string, log *zap.Logger) (*DB, error) {
	log = logging.OrNop(log)
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("assetdb: resolving root %s: %w", root, err)
	}
	db := &DB{root: abs, log: log, index: make(map[string]Record)}
	if err := db.Refresh(); err != nil {
		return nil, err
	}
	return db, nil
}

// Root returns the absolute project root.
func (db *DB) Root() string { return db.root }

// Refresh rescans the project and rebuilds the index. Assets without a
// sidecar are assigned a fresh GUID and get one written, the way an editor
// imports newly dropped files.
func (db *DB) Refresh() error {
	index := make(map[string]Record)
	err := filepath.WalkDir(db.root, func(full string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if full != db.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		kind := KindOf(full)
		if kind == KindUnknown {
			return nil
		}
		rel, err := filepath.Rel(db.root, full)
		if err != nil {
			return err
		}
		rec, err := db.indexFile(CleanPath(rel), full, kind)
		if err != nil {
			return err
		}
		index[rec.Path] = rec
		return nil
	})
	if err != nil {
		return fmt.Errorf("assetdb: refresh: %w", err)
	}
	db.index = index
	db.log.Debug("asset index refreshed", zap.Int("assets", len(index)))
	return nil
}

func (db *DB) indexFile(rel, full string, kind Kind) (Record, error) {
	meta, err := readMeta(full)
	if errors.Is(err, os.ErrNotExist) {
		meta = newMeta(kind)
		if err := writeMeta(full, meta); err != nil {
			return Record{}, err
		}
		db.log.Debug("imported asset", zap.String("path", rel), zap.String("guid", meta.GUID))
	} else if err != nil {
		return Record{}, err
	}
	return Record{Path: rel, Kind: kind, GUID: meta.GUID}, nil
}

// Lookup returns the index record for path.
func (db *DB) Lookup(p string) (Record, bool) {
	rec, ok := db.index[CleanPath(p)]
	return rec, ok
}

// Exists reports whether an asset is indexed at path.
func (db *DB) Exists(p string) bool {
	_, ok := db.Lookup(p)
	return ok
}

// Resolve returns the handle of the asset at path.
func (db *DB) Resolve(p string) (Handle, error) {
	rec, ok := db.Lookup(p)
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return rec.Handle(), nil
}

// List returns the indexed records of the given kind sorted by path. An
// empty kind lists everything.
func (db *DB) List(kind Kind) []Record {
	var out []Record
	for _, rec := range db.index {
		if kind == KindUnknown || rec.Kind == kind {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (db *DB) abs(rel string) string {
	return filepath.Join(db.root, filepath.FromSlash(rel))
}

// Create writes doc as a new asset at path with a fresh GUID. It fails with
// ErrExists when the path is already taken.
func (db *DB) Create(p string, doc any) (Handle, error) {
	rel := CleanPath(p)
	full := db.abs(rel)
	if db.Exists(rel) {
		return Handle{}, fmt.Errorf("assetdb: create %s: %w", rel, ErrExists)
	}
	if _, err := os.Stat(full); err == nil {
		return Handle{}, fmt.Errorf("assetdb: create %s: %w", rel, ErrExists)
	}
	return db.write(rel, newMeta(KindOf(rel)), doc)
}

// Save overwrites the asset at path with doc, keeping its GUID. A path that
// holds no asset yet is created.
func (db *DB) Save(p string, doc any) (Handle, error) {
	rel := CleanPath(p)
	meta, err := readMeta(db.abs(rel))
	if errors.Is(err, os.ErrNotExist) {
		meta = newMeta(KindOf(rel))
	} else if err != nil {
		return Handle{}, fmt.Errorf("assetdb: save %s: %w", rel, err)
	}
	return db.write(rel, meta, doc)
}

func (db *DB) write(rel string, meta Meta, doc any) (Handle, error) {
	kind := KindOf(rel)
	if kind == KindUnknown || kind == KindTexture {
		return Handle{}, fmt.Errorf("assetdb: write %s: %w", rel, ErrWrongKind)
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return Handle{}, fmt.Errorf("assetdb: marshaling %s: %w", rel, err)
	}
	full := db.abs(rel)
	if err := writeFileAtomic(full, data); err != nil {
		return Handle{}, fmt.Errorf("assetdb: write %s: %w", rel, err)
	}
	if err := writeMeta(full, meta); err != nil {
		return Handle{}, fmt.Errorf("assetdb: write %s: %w", rel, err)
	}
	rec := Record{Path: rel, Kind: kind, GUID: meta.GUID}
	db.index[rel] = rec
	db.log.Debug("asset written", zap.String("path", rel), zap.String("guid", meta.GUID))
	return rec.Handle(), nil
}

// Delete removes the asset at path together with its sidecar.
func (db *DB) Delete(p string) error {
	rel := CleanPath(p)
	if !db.Exists(rel) {
		return fmt.Errorf("assetdb: delete %s: %w", rel, ErrNotFound)
	}
	full := db.abs(rel)
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("assetdb: delete %s: %w", rel, err)
	}
	if err := os.Remove(full + metaExt); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("assetdb: delete %s meta: %w", rel, err)
	}
	delete(db.index, rel)
	db.log.Debug("asset deleted", zap.String("path", rel))
	return nil
}

// decode loads the document at path into v after checking its kind against
// the accepted kinds.
func (db *DB) decode(p string, v any, accept ...Kind) (Record, error) {
	rec, ok := db.Lookup(p)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if !kindIn(rec.Kind, accept) {
		return Record{}, fmt.Errorf("%w: %s is a %s", ErrWrongKind, rec.Path, rec.Kind)
	}
	data, err := os.ReadFile(db.abs(rec.Path))
	if err != nil {
		return Record{}, fmt.Errorf("assetdb: reading %s: %w", rec.Path, err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return Record{}, fmt.Errorf("assetdb: parsing %s: %w", rec.Path, err)
	}
	return rec, nil
}

func kindIn(k Kind, accept []Kind) bool {
	for _, a := range accept {
		if k == a {
			return true
		}
	}
	return false
}

// LoadObject loads a model or prefab document.
func (db *DB) LoadObject(p string) (*GameObject, Handle, error) {
	var g GameObject
	rec, err := db.decode(p, &g, KindModel, KindPrefab)
	if err != nil {
		return nil, Handle{}, err
	}
	return &g, rec.Handle(), nil
}

// LoadMaterial loads a material document.
func (db *DB) LoadMaterial(p string) (*Material, Handle, error) {
	var m Material
	rec, err := db.decode(p, &m, KindMaterial)
	if err != nil {
		return nil, Handle{}, err
	}
	return &m, rec.Handle(), nil
}

// LoadShader loads a shader document.
func (db *DB) LoadShader(p string) (*Shader, Handle, error) {
	var s Shader
	rec, err := db.decode(p, &s, KindShader)
	if err != nil {
		return nil, Handle{}, err
	}
	return &s, rec.Handle(), nil
}

// LoadAnimator loads an animator controller document.
func (db *DB) LoadAnimator(p string) (*AnimatorController, Handle, error) {
	var a AnimatorController
	rec, err := db.decode(p, &a, KindAnimator)
	if err != nil {
		return nil, Handle{}, err
	}
	return &a, rec.Handle(), nil
}
