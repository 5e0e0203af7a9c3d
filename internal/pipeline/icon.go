package pipeline

import (
	"context"
	"fmt"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"go.uber.org/zap"
)

// NormalizeForCatalog imports the texture at texturePath as a sprite capped
// at the icon size limit and reimports it synchronously. Running it on an
// already normalised texture changes nothing.
func (p *Pipeline) NormalizeForCatalog(_ context.Context, texturePath string) (assetdb.Handle, error) {
	imp, err := p.db.Importer(texturePath)
	if err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: normalize %s: %w", texturePath, err)
	}
	imp.TextureType = assetdb.TextureSprite
	imp.MaxSize = p.iconMaxSize
	imp.Dirty = true
	if err := p.db.SaveAndReimport(texturePath, imp); err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: normalize %s: %w", texturePath, err)
	}
	h, err := p.db.Sprite(texturePath)
	if err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: normalize %s: %w", texturePath, err)
	}
	p.log.Debug("icon normalized", zap.String("path", h.Path), zap.Int("max_size", p.iconMaxSize))
	return h, nil
}
