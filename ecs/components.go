package ecs

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/bramble"
	"github.com/yohamta/donburi"
)

// Transform places an entity in the world. Set Dirty after changing any
// field so cached sprite geometry is rebuilt.
type Transform struct {
	Position mgl32.Vec2
	// Scale multiplies the sprite size. A zero Scale is treated as (1, 1).
	Scale mgl32.Vec2
	// Rotation is in radians, clockwise on screen.
	Rotation float32
	Dirty    bool
}

// Sprite draws a texture, a sub-region of one, or with a nil Texture a
// solid quad of Size pixels.
type Sprite struct {
	Texture   *bramble.Texture
	SubRegion *bramble.Rect
	// Size is used only for untextured sprites.
	Size    mgl32.Vec2
	Color   bramble.Color
	FlipX   bool
	FlipY   bool
	Visible bool
	Origin  bramble.QuadOrigin
	Layer   int

	cache spriteCache
}

// spriteKey is everything besides the transform that shapes a sprite's
// geometry.
type spriteKey struct {
	texture     *bramble.Texture
	textureSize mgl32.Vec2
	region      bramble.Rect
	hasRegion   bool
	size        mgl32.Vec2
	flipX       bool
	flipY       bool
	origin      bramble.QuadOrigin
}

type spriteCache struct {
	valid     bool
	key       spriteKey
	positions [bramble.QuadVertexCount]mgl32.Vec3
	uvs       [bramble.QuadVertexCount]mgl32.Vec2
}

// Label draws a line (or lines) of bitmap text at the entity's position.
// Rotation and scale of the transform do not apply to labels.
type Label struct {
	Text    string
	Font    *bramble.BitmapFont
	Size    float32
	Color   bramble.Color
	Visible bool
	Layer   int

	cache labelCache
}

type labelKey struct {
	text     string
	font     *bramble.BitmapFont
	size     float32
	position mgl32.Vec2
}

type glyphQuad struct {
	texture   *bramble.Texture
	positions [bramble.QuadVertexCount]mgl32.Vec3
	uvs       [bramble.QuadVertexCount]mgl32.Vec2
}

type labelCache struct {
	valid  bool
	key    labelKey
	glyphs []glyphQuad
}

var (
	TransformComponent = donburi.NewComponentType[Transform]()
	SpriteComponent    = donburi.NewComponentType[Sprite]()
	LabelComponent     = donburi.NewComponentType[Label]()
	TweenComponent     = donburi.NewComponentType[Tween]()
)

// NewSpriteEntity creates a visible textured sprite at position.
func NewSpriteEntity(w donburi.World, tex *bramble.Texture, position mgl32.Vec2) donburi.Entity {
	e := w.Create(TransformComponent, SpriteComponent)
	entry := w.Entry(e)
	TransformComponent.SetValue(entry, Transform{Position: position, Dirty: true})
	SpriteComponent.SetValue(entry, Sprite{Texture: tex, Visible: true})
	return e
}

// NewLabelEntity creates a visible label at position.
func NewLabelEntity(w donburi.World, font *bramble.BitmapFont, text string, size float32, position mgl32.Vec2) donburi.Entity {
	e := w.Create(TransformComponent, LabelComponent)
	entry := w.Entry(e)
	TransformComponent.SetValue(entry, Transform{Position: position, Dirty: true})
	LabelComponent.SetValue(entry, Label{Text: text, Font: font, Size: size, Visible: true})
	return e
}
