package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/catalog"
	"github.com/papapumpkin/foundry/internal/config"
	"github.com/papapumpkin/foundry/internal/conflict"
	"github.com/papapumpkin/foundry/internal/logging"
	"github.com/papapumpkin/foundry/internal/pipeline"
	"go.uber.org/zap"
)

// ErrNotReady is returned by Commit when a stage is still blocked.
var ErrNotReady = errors.New("wizard is not ready to commit")

// Result describes what a commit produced. When a prompt was declined,
// DeclinedAt names the step and the handles of later steps are zero.
type Result struct {
	Materials  []assetdb.Handle
	Prefab     assetdb.Handle
	Icon       assetdb.Handle
	Entry      catalog.Entry
	Outcome    catalog.Outcome
	DeclinedAt string
}

// Declined reports whether the run stopped at a declined prompt.
func (r Result) Declined() bool { return r.DeclinedAt != "" }

// Orchestrator holds the current inputs and runs the pipeline on commit.
type Orchestrator struct {
	Inputs Inputs

	env             Env
	cfg             config.Config
	pipe            *pipeline.Pipeline
	policy          conflict.Policy
	slotsFor        string
	colliderApplied bool
	log             *zap.Logger
}

// New returns an orchestrator over env. cfg supplies the artifact paths,
// icon size and collider defaults; policy answers every overwrite prompt.
func New(env Env, cfg config.Config, policy conflict.Policy, log *zap.Logger) *Orchestrator {
	log = logging.OrNop(log)
	if policy == nil {
		policy = conflict.Always(conflict.Cancel)
	}
	pipe := pipeline.New(env.DB, pipeline.PathPolicyFrom(cfg), policy, log,
		pipeline.WithIconMaxSize(cfg.Icon.MaxSize))
	return &Orchestrator{env: env, cfg: cfg, pipe: pipe, policy: policy, log: log}
}

// Pipeline returns the pipeline the orchestrator commits through.
func (o *Orchestrator) Pipeline() *pipeline.Pipeline { return o.pipe }

// Cycle applies one-time defaults, then evaluates stages in order and
// stops at the first blocked one. It returns every verdict evaluated.
func (o *Orchestrator) Cycle() []Verdict {
	var out []Verdict
	for _, s := range Stages {
		o.applyDefaults(s)
		v := Evaluate(s, o.Inputs, o.env)
		out = append(out, v)
		if !v.Ready {
			break
		}
	}
	return out
}

// applyDefaults fills inputs the first time stage s is reached. The slot
// count is detected once per model and missing slots are padded; collider
// defaults are applied once.
func (o *Orchestrator) applyDefaults(s Stage) {
	switch s {
	case StageModelMaterials:
		in := &o.Inputs
		if in.Model == "" || in.Model == o.slotsFor || !o.pipe.IsRawModel(in.Model) {
			return
		}
		n, err := o.pipe.MaterialSlotCount(in.Model)
		if err != nil {
			o.log.Debug("slot count unavailable", zap.String("model", in.Model), zap.Error(err))
			return
		}
		o.slotsFor = in.Model
		in.SlotCount = n
		// Extra materials stay so stage 1 reports the mismatch.
		if len(in.Materials) < n {
			in.Materials = append(in.Materials, make([]MaterialInput, n-len(in.Materials))...)
		}

	case StageAnimatorCollider:
		if o.colliderApplied {
			return
		}
		o.colliderApplied = true
		if o.Inputs.ColliderRadius == 0 {
			o.Inputs.ColliderRadius = o.cfg.Collider.DefaultRadius
		}
		if o.Inputs.ColliderHeight == 0 {
			o.Inputs.ColliderHeight = o.cfg.Collider.DefaultHeight
		}
	}
}

// Ready reports whether every stage passes.
func (o *Orchestrator) Ready() bool {
	vs := o.Cycle()
	return len(vs) == len(Stages) && vs[len(vs)-1].Ready
}

// Commit runs material creation, prefab creation, icon normalisation and
// the catalog upsert, then saves the catalog. A declined prompt stops the
// run with a nil error; artifacts written by earlier steps are kept.
func (o *Orchestrator) Commit(ctx context.Context) (Result, error) {
	for _, v := range o.Cycle() {
		if !v.Ready {
			return Result{}, fmt.Errorf("%w: %s: %s", ErrNotReady, v.Stage, v.Reason)
		}
	}
	in := o.Inputs
	var res Result

	for i, m := range in.Materials {
		h, err := o.material(ctx, m)
		if err != nil {
			return res, fmt.Errorf("wizard: material slot %d: %w", i, err)
		}
		if h.IsZero() {
			return o.decline(res, "material "+m.Name), nil
		}
		res.Materials = append(res.Materials, h)
	}

	anim, err := o.env.DB.Resolve(in.Animator)
	if err != nil {
		return res, fmt.Errorf("wizard: %w", err)
	}
	res.Prefab, err = o.pipe.CreateOrConfigurePrefab(ctx, pipeline.PrefabConfig{
		SourceModel:    in.Model,
		Materials:      res.Materials,
		Animator:       anim,
		ColliderRadius: in.ColliderRadius,
		ColliderHeight: in.ColliderHeight,
	}, in.Row)
	if err != nil {
		return res, fmt.Errorf("wizard: %w", err)
	}
	if res.Prefab.IsZero() {
		return o.decline(res, "prefab "+in.Row), nil
	}

	res.Icon, err = o.pipe.NormalizeForCatalog(ctx, in.Icon)
	if err != nil {
		return res, fmt.Errorf("wizard: %w", err)
	}

	row, err := o.env.Source.Row(o.env.Source.IndexOf(in.Row))
	if err != nil {
		return res, fmt.Errorf("wizard: %w", err)
	}
	res.Entry, res.Outcome, err = o.env.Catalog.Upsert(ctx, row.Name, row.Price, res.Icon, res.Prefab, o.policy)
	if err != nil {
		return res, fmt.Errorf("wizard: %w", err)
	}
	if res.Outcome == catalog.Declined {
		res.DeclinedAt = "catalog entry " + row.Name
		o.log.Info("commit stopped", zap.String("declined", res.DeclinedAt))
		return res, nil
	}
	if err := o.env.Catalog.Save(ctx); err != nil {
		return res, fmt.Errorf("wizard: saving catalog: %w", err)
	}

	o.log.Info("commit finished",
		zap.String("entry", res.Entry.Name),
		zap.Int("id", res.Entry.ID),
		zap.String("outcome", string(res.Outcome)))
	return res, nil
}

func (o *Orchestrator) material(ctx context.Context, m MaterialInput) (assetdb.Handle, error) {
	if m.Create == nil {
		return o.env.DB.Resolve(m.Asset)
	}
	return o.pipe.CreateOrGetMaterial(ctx, *m.Create, m.Name)
}

func (o *Orchestrator) decline(res Result, step string) Result {
	res.DeclinedAt = step
	res.Outcome = catalog.Declined
	o.log.Info("commit stopped", zap.String("declined", step))
	return res
}
