package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"go.uber.org/zap"
)

// MaterialSpec describes a material to create. TextureSlots holds one key
// per texture property the shader declares; a zero handle leaves the slot
// unbound.
type MaterialSpec struct {
	Color        assetdb.Color
	Shader       assetdb.Handle
	TextureSlots map[string]assetdb.Handle
}

// NewMaterialSpec returns a white material spec for the shader at
// shaderPath with every texture slot the shader declares, all unbound.
func (p *Pipeline) NewMaterialSpec(shaderPath string) (MaterialSpec, error) {
	sh, h, err := p.db.LoadShader(shaderPath)
	if err != nil {
		return MaterialSpec{}, fmt.Errorf("pipeline: material spec: %w", err)
	}
	spec := MaterialSpec{
		Color:        assetdb.White(),
		Shader:       h,
		TextureSlots: make(map[string]assetdb.Handle),
	}
	for _, slot := range sh.TextureSlots() {
		spec.TextureSlots[slot] = assetdb.Handle{}
	}
	return spec, nil
}

// Bind sets the texture for slot.
func (s *MaterialSpec) Bind(slot string, tex assetdb.Handle) {
	if s.TextureSlots == nil {
		s.TextureSlots = make(map[string]assetdb.Handle)
	}
	s.TextureSlots[slot] = tex
}

// CreateOrGetMaterial creates the material named name from spec. When a
// material with that name exists the policy decides: Overwrite replaces
// it with a fresh asset, Cancel returns a zero handle and no error.
func (p *Pipeline) CreateOrGetMaterial(ctx context.Context, spec MaterialSpec, name string) (assetdb.Handle, error) {
	target := p.paths.MaterialPath(name)
	ok, err := p.claim(ctx, "material", target)
	if err != nil || !ok {
		return assetdb.Handle{}, err
	}

	mat := &assetdb.Material{
		Name:     name,
		Shader:   spec.Shader,
		Color:    spec.Color,
		Textures: bindings(spec.TextureSlots),
	}
	h, err := p.persist(target, mat)
	if err != nil {
		return assetdb.Handle{}, err
	}
	p.log.Info("material created",
		zap.String("path", h.Path),
		zap.Int("slots", len(mat.Textures)),
		zap.Int("bound", mat.BoundSlots()))
	return h, nil
}

// bindings turns the slot map into bindings ordered by slot name.
func bindings(slots map[string]assetdb.Handle) []assetdb.TextureBinding {
	names := make([]string, 0, len(slots))
	for slot := range slots {
		names = append(names, slot)
	}
	sort.Strings(names)

	out := make([]assetdb.TextureBinding, 0, len(names))
	for _, slot := range names {
		b := assetdb.TextureBinding{Slot: slot}
		if tex := slots[slot]; !tex.IsZero() {
			b.Texture = &tex
		}
		out = append(out, b)
	}
	return out
}
