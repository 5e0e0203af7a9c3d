package assetdb

import "errors"

// Sentinel errors returned by the asset database.
var (
	// ErrNotFound indicates no asset is indexed at the requested path.
	ErrNotFound = errors.New("asset not found")
	// ErrExists indicates an asset already occupies the target path.
	ErrExists = errors.New("asset already exists")
	// ErrWrongKind indicates the asset at a path is not of the expected kind.
	ErrWrongKind = errors.New("asset has unexpected kind")
	// ErrNotSprite indicates a texture has no sprite sub-asset.
	ErrNotSprite = errors.New("texture has no sprite sub-asset")
)
