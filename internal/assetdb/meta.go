package assetdb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
)

// TextureType selects how a texture is imported.
type TextureType string

const (
	TextureDefault TextureType = "default" // plain 2D texture
	TextureSprite  TextureType = "sprite"  // UI sprite with a sprite sub-asset
)

// DefaultMaxTextureSize is the import size cap for textures that have never
// been configured.
const DefaultMaxTextureSize = 2048

// TextureImporter holds the import settings of a texture together with the
// results of its last import. SourceHash is hex so it survives TOML's signed
// integers.
type TextureImporter struct {
	TextureType TextureType `toml:"texture_type"`
	MaxSize     int         `toml:"max_size"`
	Dirty       bool        `toml:"dirty,omitempty"`
	Width       int         `toml:"width"`
	Height      int         `toml:"height"`
	SubAssets   []string    `toml:"sub_assets,omitempty"`
	SourceHash  string      `toml:"source_hash,omitempty"` // xxhash of the imported image
}

// HasSubAsset reports whether the last import published the named sub-asset.
func (t *TextureImporter) HasSubAsset(name string) bool {
	for _, s := range t.SubAssets {
		if s == name {
			return true
		}
	}
	return false
}

// Meta is the sidecar stored next to every asset as <asset>.meta.
type Meta struct {
	GUID    string           `toml:"guid"`
	Texture *TextureImporter `toml:"texture,omitempty"`
}

func newMeta(kind Kind) Meta {
	m := Meta{GUID: uuid.NewString()}
	if kind == KindTexture {
		m.Texture = &TextureImporter{
			TextureType: TextureDefault,
			MaxSize:     DefaultMaxTextureSize,
		}
	}
	return m
}

// readMeta loads the sidecar for the asset at full. A missing sidecar is
// reported with os.ErrNotExist.
func readMeta(full string) (Meta, error) {
	data, err := os.ReadFile(full + metaExt)
	if err != nil {
		return Meta{}, err
	}
	var m Meta
	if err := toml.Unmarshal(data, &m); err != nil {
		return Meta{}, fmt.Errorf("parsing %s: %w", filepath.Base(full)+metaExt, err)
	}
	if _, err := uuid.Parse(m.GUID); err != nil {
		return Meta{}, fmt.Errorf("%s: invalid guid %q: %w", filepath.Base(full)+metaExt, m.GUID, err)
	}
	return m, nil
}

func writeMeta(full string, m Meta) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	return writeFileAtomic(full+metaExt, data)
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, creating parent directories as needed.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}
