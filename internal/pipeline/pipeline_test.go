package pipeline

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/conflict"
	"go.uber.org/zap/zaptest"
)

const (
	modelPath    = "Assets/Models/Hero.model"
	shaderPath   = "Assets/Shaders/Toon.shader"
	animatorPath = "Assets/Anim/Hero.controller"
	iconPath     = "Assets/Icons/hero.png"
)

var testPaths = PathPolicy{MaterialsDir: "Assets/1_Graphics/Materials/", PrefabsDir: "Assets/2_Prefabs/"}

// fixture seeds a project with a two-surface model, a three-slot shader, an
// animator controller and a 1024x256 icon.
func fixture(t *testing.T) *assetdb.DB {
	t.Helper()
	root := t.TempDir()

	full := filepath.Join(root, filepath.FromSlash(iconPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(full)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1024, 256))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	db, err := assetdb.Open(root, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	docs := []struct {
		path string
		doc  any
	}{
		{modelPath, &assetdb.GameObject{
			Name:      "Hero",
			Renderers: []assetdb.Renderer{{Name: "Body", Materials: make([]assetdb.Handle, 2)}},
		}},
		{shaderPath, &assetdb.Shader{
			Name: "Toon",
			Properties: []assetdb.ShaderProperty{
				{Name: "_MainTex", Type: assetdb.PropertyTexture},
				{Name: "_Tint", Type: "color"},
				{Name: "_NormalMap", Type: assetdb.PropertyTexture},
				{Name: "_Emission", Type: assetdb.PropertyTexture},
			},
		}},
		{animatorPath, &assetdb.AnimatorController{Name: "Hero", States: []string{"Idle", "Run"}}},
	}
	for _, d := range docs {
		if _, err := db.Create(d.path, d.doc); err != nil {
			t.Fatalf("seeding %s: %v", d.path, err)
		}
	}
	return db
}

func newPipeline(t *testing.T, db *assetdb.DB, policy conflict.Policy) *Pipeline {
	t.Helper()
	return New(db, testPaths, policy, zaptest.NewLogger(t))
}

func TestPathPolicy(t *testing.T) {
	t.Parallel()
	if got := testPaths.MaterialPath("Body"); got != "Assets/1_Graphics/Materials/Body.mat" {
		t.Errorf("MaterialPath = %q", got)
	}
	if got := testPaths.PrefabPath("Hero"); got != "Assets/2_Prefabs/Hero.prefab" {
		t.Errorf("PrefabPath = %q", got)
	}
}

func TestNewMaterialSpec_SlotsFromShader(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, fixture(t), nil)
	spec, err := p.NewMaterialSpec(shaderPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.TextureSlots) != 3 {
		t.Fatalf("got %d slots, want 3: %v", len(spec.TextureSlots), spec.TextureSlots)
	}
	for slot, h := range spec.TextureSlots {
		if !h.IsZero() {
			t.Errorf("slot %s starts bound to %v", slot, h)
		}
	}
	if spec.Color != assetdb.White() {
		t.Errorf("Color = %+v, want white", spec.Color)
	}
}

func TestCreateOrGetMaterial_BoundAndUnboundSlots(t *testing.T) {
	t.Parallel()
	db := fixture(t)
	p := newPipeline(t, db, nil)
	icon, err := db.Resolve(iconPath)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		mat   string
		bind  []string
		bound int
	}{
		{"none bound", "Plain", nil, 0},
		{"one bound", "Albedo", []string{"_MainTex"}, 1},
		{"all bound", "Full", []string{"_MainTex", "_NormalMap", "_Emission"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := p.NewMaterialSpec(shaderPath)
			if err != nil {
				t.Fatal(err)
			}
			for _, slot := range tt.bind {
				spec.Bind(slot, icon)
			}
			h, err := p.CreateOrGetMaterial(context.Background(), spec, tt.mat)
			if err != nil {
				t.Fatal(err)
			}
			mat, _, err := db.LoadMaterial(h.Path)
			if err != nil {
				t.Fatal(err)
			}
			if len(mat.Textures) != 3 {
				t.Errorf("bindings = %d, want 3", len(mat.Textures))
			}
			if got := mat.BoundSlots(); got != tt.bound {
				t.Errorf("bound = %d, want %d", got, tt.bound)
			}
			for _, slot := range tt.bind {
				if got, ok := mat.Texture(slot); !ok || got != icon {
					t.Errorf("slot %s = %v, %v", slot, got, ok)
				}
			}
		})
	}
}

func TestCreateOrGetMaterial_Conflict(t *testing.T) {
	t.Parallel()
	db := fixture(t)
	ctx := context.Background()
	script := conflict.NewScript(conflict.Cancel, conflict.Overwrite)
	p := newPipeline(t, db, script)

	spec, err := p.NewMaterialSpec(shaderPath)
	if err != nil {
		t.Fatal(err)
	}
	first, err := p.CreateOrGetMaterial(ctx, spec, "Body")
	if err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(db.Root(), filepath.FromSlash(first.Path))
	before, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}

	spec.Color = assetdb.Color{R: 1, A: 1}
	declined, err := p.CreateOrGetMaterial(ctx, spec, "Body")
	if err != nil {
		t.Fatal(err)
	}
	if !declined.IsZero() {
		t.Errorf("declined create returned %v, want zero handle", declined)
	}
	after, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(before), string(after)); diff != "" {
		t.Errorf("declined create touched the file (-before +after):\n%s", diff)
	}

	replaced, err := p.CreateOrGetMaterial(ctx, spec, "Body")
	if err != nil {
		t.Fatal(err)
	}
	if replaced.GUID == first.GUID {
		t.Error("overwrite kept the old GUID")
	}
	if n := len(script.Prompts()); n != 2 {
		t.Errorf("prompted %d times, want 2", n)
	}
}

func TestCreateOrConfigurePrefab(t *testing.T) {
	t.Parallel()
	db := fixture(t)
	ctx := context.Background()
	p := newPipeline(t, db, nil)

	spec, err := p.NewMaterialSpec(shaderPath)
	if err != nil {
		t.Fatal(err)
	}
	a, err := p.CreateOrGetMaterial(ctx, spec, "A")
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.CreateOrGetMaterial(ctx, spec, "B")
	if err != nil {
		t.Fatal(err)
	}
	anim, err := db.Resolve(animatorPath)
	if err != nil {
		t.Fatal(err)
	}

	h, err := p.CreateOrConfigurePrefab(ctx, PrefabConfig{
		SourceModel:    modelPath,
		Materials:      []assetdb.Handle{a, b},
		Animator:       anim,
		ColliderRadius: 0.2,
		ColliderHeight: 1.1,
	}, "Hero")
	if err != nil {
		t.Fatalf("CreateOrConfigurePrefab: %v", err)
	}
	if h.Path != "Assets/2_Prefabs/Hero.prefab" {
		t.Errorf("prefab path = %q", h.Path)
	}

	obj, _, err := db.LoadObject(h.Path)
	if err != nil {
		t.Fatal(err)
	}
	wantCollider := &assetdb.CapsuleCollider{Radius: 0.2, Height: 1.1, Center: assetdb.Vec3{Y: 0.55}}
	if diff := cmp.Diff(wantCollider, obj.Collider); diff != "" {
		t.Errorf("collider mismatch (-want +got):\n%s", diff)
	}
	if obj.Animator == nil || obj.Animator.Controller != anim {
		t.Errorf("animator = %+v, want %v", obj.Animator, anim)
	}
	if diff := cmp.Diff([]assetdb.Handle{a, b}, obj.PrimaryRenderer().Materials); diff != "" {
		t.Errorf("materials mismatch (-want +got):\n%s", diff)
	}

	// The source model is untouched.
	model, _, err := db.LoadObject(modelPath)
	if err != nil {
		t.Fatal(err)
	}
	if model.Collider != nil || model.Animator != nil {
		t.Error("source model was modified")
	}
	for _, m := range model.PrimaryRenderer().Materials {
		if !m.IsZero() {
			t.Errorf("source model slot assigned %v", m)
		}
	}
}

func TestCreateOrConfigurePrefab_Preconditions(t *testing.T) {
	t.Parallel()
	db := fixture(t)
	p := newPipeline(t, db, nil)
	ctx := context.Background()

	if _, err := p.CreateOrConfigurePrefab(ctx, PrefabConfig{SourceModel: shaderPath, ColliderRadius: 1, ColliderHeight: 1}, "X"); !errors.Is(err, ErrNotModel) {
		t.Errorf("shader as source: error = %v, want ErrNotModel", err)
	}
	if _, err := p.CreateOrConfigurePrefab(ctx, PrefabConfig{SourceModel: modelPath, ColliderHeight: 1}, "X"); !errors.Is(err, ErrBadCollider) {
		t.Errorf("zero radius: error = %v, want ErrBadCollider", err)
	}
	if db.Exists(testPaths.PrefabPath("X")) {
		t.Error("failed precondition still wrote a prefab")
	}
}

func TestConfigurePrefab_InPlaceBroadcast(t *testing.T) {
	t.Parallel()
	db := fixture(t)
	ctx := context.Background()
	p := newPipeline(t, db, nil)

	h, err := p.CreatePrefabFromModel(ctx, modelPath)
	if err != nil {
		t.Fatal(err)
	}
	if h.Path != "Assets/2_Prefabs/Hero.prefab" {
		t.Fatalf("CreatePrefabFromModel path = %q", h.Path)
	}
	spec, err := p.NewMaterialSpec(shaderPath)
	if err != nil {
		t.Fatal(err)
	}
	mat, err := p.CreateOrGetMaterial(ctx, spec, "Skin")
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.ConfigurePrefab(ctx, h.Path, mat, assetdb.Handle{}, 0.4, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got.GUID != h.GUID {
		t.Errorf("in-place configure changed GUID %s -> %s", h.GUID, got.GUID)
	}
	obj, _, err := db.LoadObject(h.Path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]assetdb.Handle{mat, mat}, obj.PrimaryRenderer().Materials); diff != "" {
		t.Errorf("broadcast mismatch (-want +got):\n%s", diff)
	}
	if obj.Collider.Center != (assetdb.Vec3{Y: 1}) {
		t.Errorf("center = %+v, want (0,1,0)", obj.Collider.Center)
	}
	if _, err := p.ConfigurePrefab(ctx, modelPath, mat, assetdb.Handle{}, 1, 1); !errors.Is(err, assetdb.ErrWrongKind) {
		t.Errorf("configuring a model: error = %v, want ErrWrongKind", err)
	}
}

func TestMaterialSlotCount(t *testing.T) {
	t.Parallel()
	p := newPipeline(t, fixture(t), nil)
	n, err := p.MaterialSlotCount(modelPath)
	if err != nil || n != 2 {
		t.Errorf("MaterialSlotCount = %d, %v; want 2", n, err)
	}
	if p.IsRawModel(shaderPath) {
		t.Error("IsRawModel(shader) = true")
	}
}

func TestNormalizeForCatalog(t *testing.T) {
	t.Parallel()
	db := fixture(t)
	p := New(db, testPaths, nil, nil, WithIconMaxSize(256))
	ctx := context.Background()

	h, err := p.NormalizeForCatalog(ctx, iconPath)
	if err != nil {
		t.Fatal(err)
	}
	if h.Sub != assetdb.SubSprite {
		t.Errorf("handle sub = %q, want sprite", h.Sub)
	}
	imp, err := db.Importer(iconPath)
	if err != nil {
		t.Fatal(err)
	}
	want := assetdb.TextureImporter{
		TextureType: assetdb.TextureSprite,
		MaxSize:     256,
		Width:       256,
		Height:      64,
		SubAssets:   []string{assetdb.SubSprite},
	}
	if diff := cmp.Diff(want, imp); diff != "" {
		t.Errorf("importer mismatch (-want +got):\n%s", diff)
	}

	if _, err := p.NormalizeForCatalog(ctx, iconPath); err != nil {
		t.Fatal(err)
	}
	again, err := db.Importer(iconPath)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(imp, again); diff != "" {
		t.Errorf("second normalize changed importer (-first +second):\n%s", diff)
	}
}
