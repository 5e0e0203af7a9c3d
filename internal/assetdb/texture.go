package assetdb

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG for DecodeConfig.
	_ "image/png"  // Register PNG for DecodeConfig.
	"os"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Importer returns the import settings of the texture at path.
func (db *DB) Importer(p string) (TextureImporter, error) {
	rec, err := db.texture(p)
	if err != nil {
		return TextureImporter{}, err
	}
	meta, err := readMeta(db.abs(rec.Path))
	if err != nil {
		return TextureImporter{}, fmt.Errorf("assetdb: importer for %s: %w", rec.Path, err)
	}
	if meta.Texture == nil {
		return TextureImporter{TextureType: TextureDefault, MaxSize: DefaultMaxTextureSize}, nil
	}
	return *meta.Texture, nil
}

// SaveAndReimport stores imp as the texture's import settings and imports
// the image again. The imported size is the source size scaled down to fit
// MaxSize with the aspect ratio kept; sprite textures publish a sprite
// sub-asset. When the settings match the last import and the image is
// unchanged the sidecar is left as is.
func (db *DB) SaveAndReimport(p string, imp TextureImporter) error {
	rec, err := db.texture(p)
	if err != nil {
		return err
	}
	full := db.abs(rec.Path)
	meta, err := readMeta(full)
	if err != nil {
		return fmt.Errorf("assetdb: reimport %s: %w", rec.Path, err)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("assetdb: reimport %s: %w", rec.Path, err)
	}
	hash := fmt.Sprintf("%016x", xxhash.Sum64(data))
	if upToDate(meta.Texture, imp, hash) {
		db.log.Debug("texture unchanged", zap.String("path", rec.Path))
		return nil
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("assetdb: decoding %s: %w", rec.Path, err)
	}

	imp.Width, imp.Height = fitWithin(cfg.Width, cfg.Height, imp.MaxSize)
	imp.SubAssets = nil
	if imp.TextureType == TextureSprite {
		imp.SubAssets = []string{SubSprite}
	}
	imp.Dirty = false
	imp.SourceHash = hash
	meta.Texture = &imp
	if err := writeMeta(full, meta); err != nil {
		return fmt.Errorf("assetdb: reimport %s: %w", rec.Path, err)
	}
	db.log.Debug("texture reimported",
		zap.String("path", rec.Path),
		zap.String("type", string(imp.TextureType)),
		zap.Int("width", imp.Width),
		zap.Int("height", imp.Height))
	return nil
}

// upToDate reports whether the last import used the same settings on the
// same image bytes.
func upToDate(last *TextureImporter, want TextureImporter, hash string) bool {
	return last != nil && !last.Dirty && last.SourceHash == hash &&
		last.TextureType == want.TextureType && last.MaxSize == want.MaxSize
}

// Sprite resolves the sprite sub-asset of the texture at path. It returns
// ErrNotSprite when the texture is not imported as a sprite.
func (db *DB) Sprite(p string) (Handle, error) {
	rec, err := db.texture(p)
	if err != nil {
		return Handle{}, err
	}
	imp, err := db.Importer(rec.Path)
	if err != nil {
		return Handle{}, err
	}
	if !imp.HasSubAsset(SubSprite) {
		return Handle{}, fmt.Errorf("%w: %s", ErrNotSprite, rec.Path)
	}
	return Handle{GUID: rec.GUID, Path: rec.Path, Sub: SubSprite}, nil
}

func (db *DB) texture(p string) (Record, error) {
	rec, ok := db.Lookup(p)
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if rec.Kind != KindTexture {
		return Record{}, fmt.Errorf("%w: %s is a %s", ErrWrongKind, rec.Path, rec.Kind)
	}
	return rec, nil
}

// fitWithin scales w x h down so neither side exceeds limit. A non-positive
// limit leaves the size unchanged.
func fitWithin(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
