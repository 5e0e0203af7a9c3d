// Package pipeline produces the artifacts a catalog entry points at:
// materials, configured prefabs and sprite icons. Every producer that would
// replace an existing asset asks a conflict.Policy first; a Cancel answer
// returns a zero handle and leaves the filesystem untouched.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/config"
	"github.com/papapumpkin/foundry/internal/conflict"
	"github.com/papapumpkin/foundry/internal/logging"
	"go.uber.org/zap"
)

// Sentinel errors for pipeline preconditions.
var (
	// ErrNotModel indicates a source that is not a raw model asset.
	ErrNotModel = errors.New("source is not a raw model")
	// ErrNoRenderer indicates an object without a renderer to assign materials to.
	ErrNoRenderer = errors.New("object has no renderer")
	// ErrBadCollider indicates a non-positive collider radius or height.
	ErrBadCollider = errors.New("collider radius and height must be positive")
	// ErrSlotMismatch indicates a material list that does not cover the
	// renderer's slots one to one.
	ErrSlotMismatch = errors.New("material count does not match render slots")
)

// DefaultIconMaxSize is the largest side of a normalised catalog icon.
const DefaultIconMaxSize = 512

// PathPolicy maps artifact names to project-relative asset paths.
type PathPolicy struct {
	MaterialsDir string
	PrefabsDir   string
}

// PathPolicyFrom builds a PathPolicy from the configured directories.
func PathPolicyFrom(cfg config.Config) PathPolicy {
	return PathPolicy{MaterialsDir: cfg.MaterialsPath, PrefabsDir: cfg.PrefabsPath}
}

// MaterialPath returns the path of the material named name.
func (p PathPolicy) MaterialPath(name string) string {
	return assetdb.CleanPath(path.Join(p.MaterialsDir, name+".mat"))
}

// PrefabPath returns the path of the prefab named name.
func (p PathPolicy) PrefabPath(name string) string {
	return assetdb.CleanPath(path.Join(p.PrefabsDir, name+".prefab"))
}

// Pipeline creates artifacts in an asset database.
type Pipeline struct {
	db          *assetdb.DB
	paths       PathPolicy
	policy      conflict.Policy
	iconMaxSize int
	log         *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithIconMaxSize sets the size cap NormalizeForCatalog applies.
func WithIconMaxSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.iconMaxSize = n
		}
	}
}

// New returns a pipeline writing to db. A nil policy answers Cancel.
func New(db *assetdb.DB, paths PathPolicy, policy conflict.Policy, log *zap.Logger, opts ...Option) *Pipeline {
	log = logging.OrNop(log)
	if policy == nil {
		policy = conflict.Always(conflict.Cancel)
	}
	p := &Pipeline{
		db:          db,
		paths:       paths,
		policy:      policy,
		iconMaxSize: DefaultIconMaxSize,
		log:         log,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Paths returns the pipeline's path policy.
func (p *Pipeline) Paths() PathPolicy { return p.paths }

// claim makes target free for a new asset. When an asset already exists
// there the policy is asked once; Overwrite deletes it, Cancel reports
// false and changes nothing.
func (p *Pipeline) claim(ctx context.Context, kind, target string) (bool, error) {
	if !p.db.Exists(target) {
		return true, nil
	}
	d, err := p.policy.ConfirmOverwrite(ctx, fmt.Sprintf("%s %s", kind, target))
	if err != nil {
		return false, fmt.Errorf("pipeline: confirming overwrite of %s: %w", target, err)
	}
	if d != conflict.Overwrite {
		p.log.Info("overwrite declined", zap.String("kind", kind), zap.String("path", target))
		return false, nil
	}
	if err := p.db.Delete(target); err != nil {
		return false, fmt.Errorf("pipeline: replacing %s: %w", target, err)
	}
	return true, nil
}

// persist writes a new asset and refreshes the index.
func (p *Pipeline) persist(target string, doc any) (assetdb.Handle, error) {
	h, err := p.db.Create(target, doc)
	if err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: %w", err)
	}
	if err := p.db.Refresh(); err != nil {
		return assetdb.Handle{}, fmt.Errorf("pipeline: refreshing after %s: %w", target, err)
	}
	return h, nil
}
