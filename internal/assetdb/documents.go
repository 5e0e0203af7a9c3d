package assetdb

// Vec3 is a point or direction in local object space.
type Vec3 struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
	Z float64 `toml:"z"`
}

// Up is the unit vector along the object's vertical axis.
func Up() Vec3 { return Vec3{Y: 1} }

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R float64 `toml:"r"`
	G float64 `toml:"g"`
	B float64 `toml:"b"`
	A float64 `toml:"a"`
}

// White is the default base color for new materials.
func White() Color { return Color{R: 1, G: 1, B: 1, A: 1} }

// Animator binds an animator controller to an object.
type Animator struct {
	Controller Handle `toml:"controller"`
}

// CapsuleCollider is a capsule-shaped collision volume aligned with the
// object's vertical axis.
type CapsuleCollider struct {
	Radius float64 `toml:"radius"`
	Height float64 `toml:"height"`
	Center Vec3    `toml:"center"`
}

// Renderer is one render component. Each entry in Materials is a render
// surface slot.
type Renderer struct {
	Name      string   `toml:"name"`
	Materials []Handle `toml:"materials"`
}

// GameObject is the document stored for both raw models and prefabs.
type GameObject struct {
	Name      string           `toml:"name"`
	Source    *Handle          `toml:"source,omitempty"`
	Animator  *Animator        `toml:"animator,omitempty"`
	Collider  *CapsuleCollider `toml:"collider,omitempty"`
	Renderers []Renderer       `toml:"renderers"`
}

// PrimaryRenderer returns the first renderer on the object, or nil when the
// object has none.
func (g *GameObject) PrimaryRenderer() *Renderer {
	if len(g.Renderers) == 0 {
		return nil
	}
	return &g.Renderers[0]
}

// Clone returns a deep copy of g, so a working instance can be configured
// without touching the document it was loaded from.
func (g *GameObject) Clone() *GameObject {
	c := &GameObject{Name: g.Name}
	if g.Source != nil {
		src := *g.Source
		c.Source = &src
	}
	if g.Animator != nil {
		a := *g.Animator
		c.Animator = &a
	}
	if g.Collider != nil {
		col := *g.Collider
		c.Collider = &col
	}
	c.Renderers = make([]Renderer, len(g.Renderers))
	for i, r := range g.Renderers {
		c.Renderers[i] = Renderer{
			Name:      r.Name,
			Materials: append([]Handle(nil), r.Materials...),
		}
	}
	return c
}

// TextureBinding binds one named shader texture slot. A nil Texture leaves
// the slot unbound.
type TextureBinding struct {
	Slot    string  `toml:"slot"`
	Texture *Handle `toml:"texture,omitempty"`
}

// Material is the document stored for material assets.
type Material struct {
	Name     string           `toml:"name"`
	Shader   Handle           `toml:"shader"`
	Color    Color            `toml:"color"`
	Textures []TextureBinding `toml:"textures"`
}

// Texture returns the texture bound to slot and whether the slot is bound.
func (m *Material) Texture(slot string) (Handle, bool) {
	for _, b := range m.Textures {
		if b.Slot == slot && b.Texture != nil {
			return *b.Texture, true
		}
	}
	return Handle{}, false
}

// BoundSlots counts the texture slots that have a texture.
func (m *Material) BoundSlots() int {
	n := 0
	for _, b := range m.Textures {
		if b.Texture != nil {
			n++
		}
	}
	return n
}

// PropertyTexture is the ShaderProperty type for texture inputs.
const PropertyTexture = "texture"

// ShaderProperty is one declared shader input.
type ShaderProperty struct {
	Name        string `toml:"name"`
	Type        string `toml:"type"`
	Description string `toml:"description,omitempty"`
}

// Shader is the document stored for shader assets. Only the declared
// properties are modelled.
type Shader struct {
	Name       string           `toml:"name"`
	Properties []ShaderProperty `toml:"properties"`
}

// TextureSlots returns the names of the texture properties in declaration
// order.
func (s *Shader) TextureSlots() []string {
	var slots []string
	for _, p := range s.Properties {
		if p.Type == PropertyTexture {
			slots = append(slots, p.Name)
		}
	}
	return slots
}

// AnimatorController is the document stored for animator controller assets.
type AnimatorController struct {
	Name   string   `toml:"name"`
	States []string `toml:"states,omitempty"`
}
