// Package recipe reads YAML descriptions of a wizard run, so a character
// can be committed from the command line without an interactive session.
package recipe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/papapumpkin/foundry/internal/assetdb"
	"github.com/papapumpkin/foundry/internal/pipeline"
	"github.com/papapumpkin/foundry/internal/wizard"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for recipe decoding.
var (
	// ErrBadColor indicates a color that is not #RRGGBB or #RRGGBBAA.
	ErrBadColor = errors.New("color must be #RRGGBB or #RRGGBBAA")
	// ErrUnknownSlot indicates a texture slot the shader does not declare.
	ErrUnknownSlot = errors.New("shader has no such texture slot")
	// ErrMaterial indicates a material entry that is neither an asset nor a
	// material to create.
	ErrMaterial = errors.New("material needs either asset or name")
)

// Material is one material slot in a recipe. Asset references an existing
// material; otherwise Name, Shader, Color and Textures describe one to create.
type Material struct {
	Asset    string            `yaml:"asset,omitempty"`
	Name     string            `yaml:"name,omitempty"`
	Shader   string            `yaml:"shader,omitempty"`
	Color    string            `yaml:"color,omitempty"`
	Textures map[string]string `yaml:"textures,omitempty"`
}

// Collider holds optional collider dimensions. Zero values fall back to the
// configured defaults.
type Collider struct {
	Radius float64 `yaml:"radius,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// Recipe is the file layout.
type Recipe struct {
	Model        string     `yaml:"model"`
	Materials    []Material `yaml:"materials"`
	Animator     string     `yaml:"animator"`
	Collider     Collider   `yaml:"collider"`
	Row          string     `yaml:"row"`
	ShowExisting bool       `yaml:"show_existing,omitempty"`
	Icon         string     `yaml:"icon"`
}

// Decode reads a recipe. Unknown keys are rejected.
func Decode(r io.Reader) (*Recipe, error) {
	var rc Recipe
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rc); err != nil {
		if errors.Is(err, io.EOF) {
			return &rc, nil
		}
		return nil, fmt.Errorf("recipe: %w", err)
	}
	return &rc, nil
}

// Load reads the recipe file at path.
func Load(path string) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recipe: %w", err)
	}
	defer f.Close()
	rc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rc, nil
}

// Inputs converts the recipe into wizard inputs. Materials to create get a
// spec from their shader, or from defaultShader when none is given.
func (rc *Recipe) Inputs(p *pipeline.Pipeline, db *assetdb.DB, defaultShader string) (wizard.Inputs, error) {
	in := wizard.Inputs{
		Model:          rc.Model,
		Animator:       rc.Animator,
		ColliderRadius: rc.Collider.Radius,
		ColliderHeight: rc.Collider.Height,
		ShowExisting:   rc.ShowExisting,
		Row:            rc.Row,
		Icon:           rc.Icon,
	}
	for i, m := range rc.Materials {
		mi, err := m.input(p, db, defaultShader)
		if err != nil {
			return wizard.Inputs{}, fmt.Errorf("recipe: material %d: %w", i, err)
		}
		in.Materials = append(in.Materials, mi)
	}
	return in, nil
}

func (m Material) input(p *pipeline.Pipeline, db *assetdb.DB, defaultShader string) (wizard.MaterialInput, error) {
	if m.Asset != "" {
		return wizard.MaterialInput{Asset: m.Asset}, nil
	}
	if m.Name == "" {
		return wizard.MaterialInput{}, ErrMaterial
	}
	shader := m.Shader
	if shader == "" {
		shader = defaultShader
	}
	spec, err := p.NewMaterialSpec(shader)
	if err != nil {
		return wizard.MaterialInput{}, err
	}
	if m.Color != "" {
		if spec.Color, err = ParseColor(m.Color); err != nil {
			return wizard.MaterialInput{}, err
		}
	}
	if err := BindTextures(&spec, db, m.Textures); err != nil {
		return wizard.MaterialInput{}, err
	}
	return wizard.MaterialInput{Create: &spec, Name: m.Name}, nil
}

// BindTextures resolves each slot's texture path and binds it on spec.
// Every slot must be one the shader declares.
func BindTextures(spec *pipeline.MaterialSpec, db *assetdb.DB, textures map[string]string) error {
	slots := make([]string, 0, len(textures))
	for slot := range textures {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		if _, ok := spec.TextureSlots[slot]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSlot, slot)
		}
		h, err := db.Resolve(textures[slot])
		if err != nil {
			return fmt.Errorf("slot %s: %w", slot, err)
		}
		spec.Bind(slot, h)
	}
	return nil
}

// ParseColor parses #RRGGBB or #RRGGBBAA into a color. Alpha defaults to 1.
func ParseColor(s string) (assetdb.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return assetdb.Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return assetdb.Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	channel := func(shift uint) float64 { return float64((v>>shift)&0xff) / 255 }
	return assetdb.Color{R: channel(24), G: channel(16), B: channel(8), A: channel(0)}, nil
}
