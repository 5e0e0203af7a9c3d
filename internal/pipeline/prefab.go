package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"go.uber.org/zap"
)

// PrefabConfig describes a prefab built from a raw model. Materials are
// assigned to the primary renderer's slots in order and must match the
// slot count; when Materials is empty, Material is assigned to every existing slot.
type PrefabConfig struct {
	SourceModel    string
	Materials      []assetdb.Handle
	Material       assetdb.Handle
	Animator       assetdb.Handle
	ColliderRadius float64
	ColliderHeight float64
}

// IsRawModel reports whether p is an indexed model asset rather than a
// prefab or other kind.
func (p *Pipeline) IsRawModel(assetPath string) bool {
	rec, ok := p.db.Lookup(assetPath)
	return ok && rec.Kind == assetdb.KindModel
}

// MaterialSlotCount returns the number of render surfaces on the model's
// primary renderer.
func (p *Pipeline) MaterialSlotCount(modelPath string) (int, error) {
	obj, err := p.loadModel(modelPath)
	if err != nil {
		return 0, err
	}
	r := obj.PrimaryRenderer()
	if r == nil {
		return 0, fmt.Errorf("pipeline: %s: %w", modelPath, ErrNoRenderer)
	}
	return len(r.Materials), nil
}

func (p *Pipeline) loadModel(modelPath string) (*assetdb.GameObject, error) {
	if !p.IsRawModel(modelPath) {
		return nil, fmt.Errorf("pipeline: %s: %w", modelPath, ErrNotModel)
	}
	obj, _, err := p.db.LoadObject(modelPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return obj, nil
}

// CreateOrConfigurePrefab builds the prefab named name from cfg. The source
// model is never modified: the prefab is configured on a deep copy. When a
// prefab with that name exists the policy decides whether to replace it.
func (p *Pipeline) CreateOrConfigurePrefab(ctx context.Context, cfg PrefabConfig, name string) (assetdb.Handle, error) {
	if cfg.ColliderRadius <= 0 || cfg.ColliderHeight <= 0 {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w: r=%v h=%v", ErrBadCollider, cfg.ColliderRadius, cfg.ColliderHeight)
	}
	model, err := p.loadModel(cfg.SourceModel)
	if err != nil {
		return assetdb.Handle{}, err
	}
	src, err := p.db.Resolve(cfg.SourceModel)
	if err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w", err)
	}

	work := model.Clone()
	work.Name = name
	work.Source = &src
	if err := configure(work, cfg.Materials, cfg.Material, cfg.Animator, cfg.ColliderRadius, cfg.ColliderHeight); err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %s: %w", cfg.SourceModel, err)
	}

	// An existing prefab is only removed once the replacement is built.
	target := p.paths.PrefabPath(name)
	ok, err := p.claim(ctx, "prefab", target)
	if err != nil || !ok {
		return assetdb.Handle{}, err
	}

	h, err := p.persist(target, work)
	if err != nil {
		return assetdb.Handle{}, err
	}
	p.log.Info("prefab created", zap.String("path", h.Path), zap.String("source", src.Path))
	return h, nil
}

// ConfigurePrefab applies a material, animator and collider to an existing
// prefab in place, keeping its path and GUID. It never prompts.
func (p *Pipeline) ConfigurePrefab(_ context.Context, prefabPath string, material, animator assetdb.Handle, radius, height float64) (assetdb.Handle, error) {
	if radius <= 0 || height <= 0 {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w: r=%v h=%v", ErrBadCollider, radius, height)
	}
	rec, ok := p.db.Lookup(prefabPath)
	if !ok {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w: %s", assetdb.ErrNotFound, prefabPath)
	}
	if rec.Kind != assetdb.KindPrefab {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w: %s is a %s", assetdb.ErrWrongKind, rec.Path, rec.Kind)
	}
	obj, _, err := p.db.LoadObject(rec.Path)
	if err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w", err)
	}
	if err := configure(obj, nil, material, animator, radius, height); err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %s: %w", rec.Path, err)
	}
	h, err := p.db.Save(rec.Path, obj)
	if err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w", err)
	}
	p.log.Info("prefab configured", zap.String("path", h.Path))
	return h, nil
}

// CreatePrefabFromModel saves a plain copy of the model as a prefab named
// after the model's file.
func (p *Pipeline) CreatePrefabFromModel(ctx context.Context, modelPath string) (assetdb.Handle, error) {
	model, err := p.loadModel(modelPath)
	if err != nil {
		return assetdb.Handle{}, err
	}
	src, err := p.db.Resolve(modelPath)
	if err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w", err)
	}
	base := path.Base(assetdb.CleanPath(modelPath))
	name := strings.TrimSuffix(base, path.Ext(base))

	target := p.paths.PrefabPath(name)
	ok, err := p.claim(ctx, "prefab", target)
	if err != nil || !ok {
		return assetdb.Handle{}, err
	}
	work := model.Clone()
	work.Name = name
	work.Source = &src
	return p.persist(target, work)
}

// configure sets the animator, collider and materials on obj.
func configure(obj *assetdb.GameObject, materials []assetdb.Handle, single, animator assetdb.Handle, radius, height float64) error {
	if !animator.IsZero() {
		obj.Animator = &assetdb.Animator{Controller: animator}
	}

	if obj.Collider == nil {
		obj.Collider = &assetdb.CapsuleCollider{}
	}
	obj.Collider.Radius = radius
	obj.Collider.Height = height
	obj.Collider.Center = assetdb.Up().Scale(height / 2)

	if len(materials) == 0 && single.IsZero() {
		return nil
	}
	r := obj.PrimaryRenderer()
	if r == nil {
		return ErrNoRenderer
	}
	if len(materials) > 0 {
		if len(materials) != len(r.Materials) {
			return fmt.Errorf("%w: %d slots, %d materials", ErrSlotMismatch, len(r.Materials), len(materials))
		}
		r.Materials = append([]assetdb.Handle(nil), materials...)
		return nil
	}
	for i := range r.Materials {
		r.Materials[i] = single
	}
	return nil
}
