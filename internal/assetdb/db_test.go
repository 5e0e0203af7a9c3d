package assetdb

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return db
}

// writePNG drops a w x h PNG into the project without a sidecar, the way a
// user copies an image into the asset tree.
func writePNG(t *testing.T, root, rel string, w, h int) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(full)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path string
		want Kind
	}{
		{"Assets/Models/Hero.model", KindModel},
		{"Assets/2_Prefabs/Hero.prefab", KindPrefab},
		{"Assets/1_Graphics/Materials/Body.mat", KindMaterial},
		{"Assets/Shaders/Toon.shader", KindShader},
		{"Assets/Anim/Hero.controller", KindAnimator},
		{"Assets/Icons/hero.PNG", KindTexture},
		{"Assets/Icons/hero.jpeg", KindTexture},
		{"Assets/Icons/hero.png.meta", KindUnknown},
		{"README.md", KindUnknown},
	}
	for _, tt := range tests {
		if got := KindOf(tt.path); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCreateAndLoadObject(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	model := &GameObject{
		Name: "Hero",
		Renderers: []Renderer{
			{Name: "Body", Materials: make([]Handle, 2)},
		},
	}
	h, err := db.Create("Assets/Models/Hero.model", model)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.GUID == "" || h.Path != "Assets/Models/Hero.model" {
		t.Fatalf("unexpected handle %+v", h)
	}

	got, gotHandle, err := db.LoadObject("./Assets/Models/Hero.model")
	if err != nil {
		t.Fatalf("LoadObject: %v", err)
	}
	if gotHandle != h {
		t.Errorf("handle = %+v, want %+v", gotHandle, h)
	}
	if diff := cmp.Diff(model, got); diff != "" {
		t.Errorf("loaded object mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate_ExistingPath(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	if _, err := db.Create("Assets/M.mat", &Material{Name: "M"}); err != nil {
		t.Fatal(err)
	}
	_, err := db.Create("Assets/M.mat", &Material{Name: "M"})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("second Create error = %v, want ErrExists", err)
	}
}

func TestSave_KeepsGUID(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	first, err := db.Create("Assets/P.prefab", &GameObject{Name: "P"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := db.Save("Assets/P.prefab", &GameObject{Name: "P2"})
	if err != nil {
		t.Fatal(err)
	}
	if first.GUID != second.GUID {
		t.Errorf("Save changed GUID from %s to %s", first.GUID, second.GUID)
	}
	g, _, err := db.LoadObject("Assets/P.prefab")
	if err != nil {
		t.Fatal(err)
	}
	if g.Name != "P2" {
		t.Errorf("Name = %q, want P2", g.Name)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	if _, err := db.Create("Assets/M.mat", &Material{Name: "M"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Delete("Assets/M.mat"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if db.Exists("Assets/M.mat") {
		t.Error("asset still indexed after Delete")
	}
	full := filepath.Join(db.Root(), "Assets", "M.mat")
	for _, p := range []string{full, full + metaExt} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still on disk (stat err %v)", p, err)
		}
	}
	if err := db.Delete("Assets/M.mat"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete of missing asset = %v, want ErrNotFound", err)
	}
}

func TestRefresh_ImportsNewFiles(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	writePNG(t, db.Root(), "Assets/Icons/hero.png", 4, 4)

	if db.Exists("Assets/Icons/hero.png") {
		t.Fatal("texture indexed before Refresh")
	}
	if err := db.Refresh(); err != nil {
		t.Fatal(err)
	}
	rec, ok := db.Lookup("Assets/Icons/hero.png")
	if !ok {
		t.Fatal("texture not indexed after Refresh")
	}
	if rec.Kind != KindTexture || rec.GUID == "" {
		t.Errorf("unexpected record %+v", rec)
	}

	if err := db.Refresh(); err != nil {
		t.Fatal(err)
	}
	again, _ := db.Lookup("Assets/Icons/hero.png")
	if again.GUID != rec.GUID {
		t.Errorf("GUID changed across refreshes: %s -> %s", rec.GUID, again.GUID)
	}
}

func TestLoad_WrongKind(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)

	if _, err := db.Create("Assets/M.mat", &Material{Name: "M"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := db.LoadObject("Assets/M.mat"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("LoadObject on material = %v, want ErrWrongKind", err)
	}
	if _, _, err := db.LoadShader("Assets/None.shader"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadShader on missing path = %v, want ErrNotFound", err)
	}
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()
	orig := &GameObject{
		Name:     "Hero",
		Collider: &CapsuleCollider{Radius: 1, Height: 2},
		Renderers: []Renderer{
			{Name: "Body", Materials: []Handle{{Path: "a.mat"}}},
		},
	}
	c := orig.Clone()
	c.Collider.Radius = 5
	c.Renderers[0].Materials[0] = Handle{Path: "b.mat"}

	if orig.Collider.Radius != 1 {
		t.Error("Clone shares collider with original")
	}
	if orig.Renderers[0].Materials[0].Path != "a.mat" {
		t.Error("Clone shares material slots with original")
	}
}
