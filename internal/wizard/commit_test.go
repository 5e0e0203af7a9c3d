package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/catalog"
	"github.com/papapumpkin/foundry/internal/conflict"
)

// failingBackend loads an empty catalog and refuses every save.
type failingBackend struct{ err error }

func (b failingBackend) Load(context.Context) ([]catalog.Entry, error) { return nil, nil }
func (b failingBackend) Save(context.Context, []catalog.Entry) error { return b.err }
func (b failingBackend) Close() error { return nil }

func TestCommit_NotReady(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	o := h.orchestrator(t, nil)
	o.Inputs = heroInputs(t, o)

	if _, err := o.Commit(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Commit() error = %v, want ErrNotReady", err)
	}
	if h.env.DB.Exists("Assets/2_Prefabs/Hero.prefab") || h.env.Catalog.Len() != 0 {
		t.Error("blocked commit produced artifacts")
	}
}

func TestCommit_HeroScenario(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	o := h.orchestrator(t, nil)
	o.Inputs = heroInputs(t, o)
	prepareIcon(t, o)

	res, err := o.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if res.Declined() || res.Outcome != catalog.Created {
		t.Fatalf("result = %+v", res)
	}

	db := h.env.DB
	prefab, _, err := db.LoadObject(res.Prefab.Path)
	if err != nil {
		t.Fatal(err)
	}
	wantCollider := &assetdb.CapsuleCollider{Radius: 0.2, Height: 1.1, Center: assetdb.Vec3{Y: 0.55}}
	if diff := cmp.Diff(wantCollider, prefab.Collider); diff != "" {
		t.Errorf("collider (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(res.Materials, prefab.PrimaryRenderer().Materials); diff != "" {
		t.Errorf("render slots (-want +got):\n%s", diff)
	}
	if res.Materials[0].Path != "Assets/1_Graphics/Materials/A.mat" || res.Materials[1].Path != "Assets/1_Graphics/Materials/B.mat" {
		t.Errorf("materials = %v", res.Materials)
	}

	sprite, err := db.Sprite(iconPath)
	if err != nil {
		t.Fatal(err)
	}
	want := catalog.Entry{ID: 0, Name: "Hero", Price: 100, Icon: sprite, Prefab: res.Prefab}
	if diff := cmp.Diff(want, res.Entry); diff != "" {
		t.Errorf("entry (-want +got):\n%s", diff)
	}
	if h.env.Catalog.Dirty() {
		t.Error("catalog not saved after commit")
	}

	// Re-run: overwrite both materials and the prefab, cancel the entry.
	script := conflict.NewScript(conflict.Overwrite, conflict.Overwrite, conflict.Overwrite, conflict.Cancel)
	again := h.orchestrator(t, script)
	again.Inputs = heroInputs(t, again)
	again.Inputs.ShowExisting = true

	res2, err := again.Commit(ctx)
	if err != nil {
		t.Fatalf("second Commit: %v", err)
	}
	if res2.Outcome != catalog.Declined || res2.DeclinedAt != "catalog entry Hero" {
		t.Errorf("second result outcome %s at %q", res2.Outcome, res2.DeclinedAt)
	}
	if n := len(script.Prompts()); n != 4 {
		t.Errorf("prompted %d times, want 4: %v", n, script.Prompts())
	}
	if h.env.Catalog.Len() != 1 {
		t.Errorf("catalog Len() = %d, want 1", h.env.Catalog.Len())
	}
	if stored, _ := h.env.Catalog.FindByName("Hero"); stored != res.Entry {
		t.Errorf("entry changed after cancel: %+v", stored)
	}
	if res2.Prefab.GUID == res.Prefab.GUID {
		t.Error("prefab was not recreated")
	}
	for i := range res2.Materials {
		if res2.Materials[i].GUID == res.Materials[i].GUID {
			t.Errorf("material %d was not recreated", i)
		}
	}
}

func TestCommit_DeclinedMaterialStopsRun(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	first := h.orchestrator(t, nil)
	first.Inputs = heroInputs(t, first)
	prepareIcon(t, first)
	if _, err := first.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	prefabBefore, err := h.env.DB.Resolve("Assets/2_Prefabs/Hero.prefab")
	if err != nil {
		t.Fatal(err)
	}

	o := h.orchestrator(t, conflict.NewScript(conflict.Cancel))
	o.Inputs = heroInputs(t, o)
	o.Inputs.ShowExisting = true
	res, err := o.Commit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.DeclinedAt != "material A" || res.Outcome != catalog.Declined {
		t.Errorf("result = %+v", res)
	}
	prefabAfter, err := h.env.DB.Resolve("Assets/2_Prefabs/Hero.prefab")
	if err != nil {
		t.Fatal(err)
	}
	if prefabAfter != prefabBefore {
		t.Error("prefab changed after material was declined")
	}
}

func TestCommit_SaveFailurePropagates(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	diskFull := errors.New("disk full")
	store, err := catalog.Open(ctx, failingBackend{err: diskFull}, nil)
	if err != nil {
		t.Fatal(err)
	}
	h.env.Catalog = store

	o := h.orchestrator(t, nil)
	o.Inputs = heroInputs(t, o)
	prepareIcon(t, o)

	if _, err := o.Commit(ctx); !errors.Is(err, diskFull) {
		t.Fatalf("Commit() error = %v, want wrapped %v", err, diskFull)
	}
	if !store.Dirty() || !store.Has("Hero") {
		t.Errorf("after failed save: dirty=%v has=%v, want unsaved entry kept", store.Dirty(), store.Has("Hero"))
	}
}
