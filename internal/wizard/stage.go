// Package wizard gates a pipeline run behind four ordered stages and
// commits it once every stage is satisfied. Stages are never stored: each
// cycle re-derives them from the current inputs.
package wizard

import (
	"fmt"
	"slices"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/catalog"
	"github.com/papapumpkin/foundry/internal/pipeline"
	"github.com/papapumpkin/foundry/internal/tabular"
)

// Stage is one step of the wizard.
type Stage int

const (
	StageModelMaterials   Stage = iota // source model and material slots
	StageAnimatorCollider              // animator and capsule collider
	StageStoreInfo                     // tabular row, catalog and icon
	StageCommit                        // icon sprite check before running
)

// Stages lists every stage in evaluation order.
var Stages = []Stage{StageModelMaterials, StageAnimatorCollider, StageStoreInfo, StageCommit}

// String returns the stage's display name.
func (s Stage) String() string {
	switch s {
	case StageModelMaterials:
		return "Model & Materials"
	case StageAnimatorCollider:
		return "Animator & Collider"
	case StageStoreInfo:
		return "Store Info"
	case StageCommit:
		return "Commit"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Severity classifies why a stage is blocked.
type Severity int

const (
	SeverityNone  Severity = iota // stage is ready
	SeverityInfo                  // input not provided yet
	SeverityError                 // input provided but invalid
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInfo:
		return "info"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Verdict is the result of evaluating one stage.
type Verdict struct {
	Stage    Stage
	Ready    bool
	Severity Severity
	Reason   string
}

func ready(s Stage) Verdict { return Verdict{Stage: s, Ready: true} }

func blocked(s Stage, sev Severity, format string, args ...any) Verdict {
	return Verdict{Stage: s, Severity: sev, Reason: fmt.Sprintf(format, args...)}
}

// MaterialInput fills one material slot, either with an existing material
// asset or with a material to create.
type MaterialInput struct {
	Asset  string
	Create *pipeline.MaterialSpec
	Name   string
}

// IsSet reports whether the slot has been filled in.
func (m MaterialInput) IsSet() bool {
	return m.Asset != "" || m.Create != nil
}

// Inputs is everything the user has entered so far. Asset references are
// project-relative paths.
type Inputs struct {
	Model          string
	SlotCount      int
	Materials      []MaterialInput
	Animator       string
	ColliderRadius float64
	ColliderHeight float64
	ShowExisting   bool
	Row            string
	Icon           string
}

// Env holds the collaborators stages are evaluated against. Source and
// Catalog may be nil when not configured.
type Env struct {
	DB      *assetdb.DB
	Catalog *catalog.Store
	Source  *tabular.Source
}

// Evaluate checks one stage against the inputs. It reads but never changes
// the environment.
func Evaluate(stage Stage, in Inputs, env Env) Verdict {
	switch stage {
	case StageModelMaterials:
		return evalModelMaterials(in, env)
	case StageAnimatorCollider:
		return evalAnimatorCollider(in, env)
	case StageStoreInfo:
		return evalStoreInfo(in, env)
	case StageCommit:
		return evalCommit(in, env)
	default:
		return blocked(stage, SeverityError, "unknown stage")
	}
}

func evalModelMaterials(in Inputs, env Env) Verdict {
	const s = StageModelMaterials
	if in.Model == "" {
		return blocked(s, SeverityInfo, "select a source model")
	}
	rec, ok := env.DB.Lookup(in.Model)
	switch {
	case !ok:
		return blocked(s, SeverityError, "model %s not found", in.Model)
	case rec.Kind == assetdb.KindPrefab:
		return blocked(s, SeverityError, "%s is already a prefab; select the raw model", rec.Path)
	case rec.Kind != assetdb.KindModel:
		return blocked(s, SeverityError, "%s is a %s, not a model", rec.Path, rec.Kind)
	}
	if in.SlotCount <= 0 {
		return blocked(s, SeverityError, "model %s has no material slots", rec.Path)
	}
	if len(in.Materials) != in.SlotCount {
		return blocked(s, SeverityInfo, "model has %d material slots, %d given", in.SlotCount, len(in.Materials))
	}
	for i, m := range in.Materials {
		if !m.IsSet() {
			return blocked(s, SeverityInfo, "material slot %d is empty", i)
		}
		if m.Create != nil {
			if m.Name == "" {
				return blocked(s, SeverityInfo, "material slot %d needs a name", i)
			}
			continue
		}
		if r, ok := env.DB.Lookup(m.Asset); !ok || r.Kind != assetdb.KindMaterial {
			return blocked(s, SeverityError, "material slot %d: %s is not a material", i, m.Asset)
		}
	}
	return ready(s)
}

func evalAnimatorCollider(in Inputs, env Env) Verdict {
	const s = StageAnimatorCollider
	if in.Animator == "" {
		return blocked(s, SeverityInfo, "select an animator controller")
	}
	if r, ok := env.DB.Lookup(in.Animator); !ok || r.Kind != assetdb.KindAnimator {
		return blocked(s, SeverityError, "%s is not an animator controller", in.Animator)
	}
	if in.ColliderRadius <= 0 || in.ColliderHeight <= 0 {
		return blocked(s, SeverityError, "collider radius and height must be positive (r=%g h=%g)", in.ColliderRadius, in.ColliderHeight)
	}
	return ready(s)
}

func evalStoreInfo(in Inputs, env Env) Verdict {
	const s = StageStoreInfo
	if env.Source == nil {
		return blocked(s, SeverityError, "no tabular source configured")
	}
	if env.Catalog == nil {
		return blocked(s, SeverityError, "no catalog configured")
	}
	if in.Row == "" {
		return blocked(s, SeverityInfo, "select a row")
	}
	if !slices.Contains(Choices(in, env), in.Row) {
		if env.Source.IndexOf(in.Row) >= 0 {
			return blocked(s, SeverityError, "%q is already in the catalog; show existing rows to overwrite it", in.Row)
		}
		return blocked(s, SeverityError, "no row named %q", in.Row)
	}
	if in.Icon == "" {
		return blocked(s, SeverityInfo, "select an icon")
	}
	return ready(s)
}

func evalCommit(in Inputs, env Env) Verdict {
	const s = StageCommit
	if _, err := env.DB.Sprite(in.Icon); err != nil {
		return blocked(s, SeverityError, "icon: %v", err)
	}
	return ready(s)
}

// Choices returns the row names that can be selected: every name in the
// source, minus those already in the catalog unless ShowExisting is set.
func Choices(in Inputs, env Env) []string {
	if env.Source == nil {
		return nil
	}
	names := env.Source.NamesProjection()
	if in.ShowExisting || env.Catalog == nil {
		return slices.Clone(names)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !env.Catalog.Has(n) {
			out = append(out, n)
		}
	}
	return out
}
