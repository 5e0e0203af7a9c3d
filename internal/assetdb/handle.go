package assetdb

import (
	"path"
	"path/filepath"
	"strings"
)

// Kind identifies what an asset file holds. It is derived from the file
// extension.
type Kind string

const (
	KindUnknown  Kind = ""         // not an asset
	KindModel    Kind = "model"    // raw model produced by an external importer
	KindPrefab   Kind = "prefab"   // configured entity template
	KindMaterial Kind = "material" // material with shader, color and textures
	KindShader   Kind = "shader"   // shader with declared properties
	KindAnimator Kind = "animator" // animator controller
	KindTexture  Kind = "texture"  // 2D image with importer settings in its meta
)

// SubSprite names the sprite sub-asset a texture publishes once it is
// imported as a sprite.
const SubSprite = "sprite"

// metaExt is appended to an asset path to locate its sidecar.
const metaExt = ".meta"

var kindByExt = map[string]Kind{
	".model":      KindModel,
	".prefab":     KindPrefab,
	".mat":        KindMaterial,
	".shader":     KindShader,
	".controller": KindAnimator,
	".png":        KindTexture,
	".jpg":        KindTexture,
	".jpeg":       KindTexture,
}

// KindOf returns the asset kind for a path based on its extension.
func KindOf(p string) Kind {
	return kindByExt[strings.ToLower(path.Ext(p))]
}

// Handle is an opaque reference to an asset or one of its sub-assets.
// The zero Handle means "no asset".
type Handle struct {
	GUID string `toml:"guid"`
	Path string `toml:"path"`
	Sub  string `toml:"sub,omitempty"`
}

// IsZero reports whether h references nothing.
func (h Handle) IsZero() bool {
	return h.GUID == "" && h.Path == ""
}

// String renders the handle as path[:sub].
func (h Handle) String() string {
	if h.IsZero() {
		return "<none>"
	}
	if h.Sub != "" {
		return h.Path + ":" + h.Sub
	}
	return h.Path
}

// CleanPath normalises a project-relative asset path to the slash-separated
// form used as the index key.
func CleanPath(p string) string {
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return path.Clean(p)
}
