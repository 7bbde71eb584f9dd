package ecs

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/phanxgames/bramble"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

type drawKind uint8

const (
	drawSprite drawKind = iota
	drawLabel
)

type drawItem struct {
	layer int
	kind  drawKind
	entry *donburi.Entry
}

// DrawSystem submits every visible sprite and label in a world to a
// renderer, lowest layer first. Within a layer, sprites precede labels and
// entities keep query order.
type DrawSystem struct {
	sprites *donburi.Query
	labels  *donburi.Query
	items   []drawItem
	rebuilt int
}

// NewDrawSystem creates a draw system.
func NewDrawSystem() *DrawSystem {
	return &DrawSystem{
		sprites: donburi.NewQuery(filter.Contains(TransformComponent, SpriteComponent)),
		labels:  donburi.NewQuery(filter.Contains(TransformComponent, LabelComponent)),
	}
}

// Rebuilt returns how many sprites had their geometry recomputed during the
// last Draw.
func (s *DrawSystem) Rebuilt() int { return s.rebuilt }

// Draw submits the world's sprites and labels. It must be called between the
// renderer's BeginDraw and EndDraw.
func (s *DrawSystem) Draw(w donburi.World, r bramble.Renderer2D) {
	s.items = s.items[:0]
	s.rebuilt = 0

	s.sprites.Each(w, func(entry *donburi.Entry) {
		sp := SpriteComponent.Get(entry)
		if !sp.Visible {
			return
		}
		s.items = append(s.items, drawItem{layer: sp.Layer, kind: drawSprite, entry: entry})
	})
	s.labels.Each(w, func(entry *donburi.Entry) {
		lb := LabelComponent.Get(entry)
		if !lb.Visible || lb.Font == nil || lb.Text == "" {
			return
		}
		s.items = append(s.items, drawItem{layer: lb.Layer, kind: drawLabel, entry: entry})
	})

	slices.SortStableFunc(s.items, func(a, b drawItem) int {
		if a.layer != b.layer {
			return a.layer - b.layer
		}
		return int(a.kind) - int(b.kind)
	})

	for _, it := range s.items {
		tr := TransformComponent.Get(it.entry)
		switch it.kind {
		case drawSprite:
			s.drawSprite(r, tr, SpriteComponent.Get(it.entry))
		case drawLabel:
			drawLabelGlyphs(r, tr, LabelComponent.Get(it.entry))
		}
	}

	// Transforms are clean once every sprite has seen them.
	for _, it := range s.items {
		TransformComponent.Get(it.entry).Dirty = false
	}
}

func (s *DrawSystem) drawSprite(r bramble.Renderer2D, tr *Transform, sp *Sprite) {
	key := sp.key()
	if tr.Dirty || !sp.cache.valid || sp.cache.key != key {
		sp.rebuild(tr, key)
		s.rebuilt++
	}
	r.DrawVertices(bramble.VerticesRequest{
		Texture:   sp.Texture,
		Positions: sp.cache.positions,
		TexCoords: sp.cache.uvs,
		Color:     sp.Color,
	})
}

func (sp *Sprite) key() spriteKey {
	k := spriteKey{
		texture: sp.Texture,
		size:    sp.Size,
		flipX:   sp.FlipX,
		flipY:   sp.FlipY,
		origin:  sp.Origin,
	}
	if sp.Texture != nil {
		k.textureSize = sp.Texture.Size()
	}
	if sp.SubRegion != nil {
		k.region = *sp.SubRegion
		k.hasRegion = true
	}
	return k
}

func (sp *Sprite) rebuild(tr *Transform, key spriteKey) {
	size := key.size
	if key.texture != nil {
		size = key.textureSize
		if key.hasRegion {
			size = key.region.Size()
		}
	}
	scale := tr.Scale
	if scale == (mgl32.Vec2{}) {
		scale = mgl32.Vec2{1, 1}
	}
	var region *bramble.Rect
	if key.hasRegion {
		region = &key.region
	}
	sp.cache = spriteCache{
		valid:     true,
		key:       key,
		positions: bramble.GeneratePositions(tr.Position, size, scale, tr.Rotation, key.origin),
		uvs:       bramble.GenerateUV(key.textureSize, region, key.flipX, key.flipY),
	}
}

func drawLabelGlyphs(r bramble.Renderer2D, tr *Transform, lb *Label) {
	key := labelKey{text: lb.Text, font: lb.Font, size: lb.Size, position: tr.Position}
	if !lb.cache.valid || lb.cache.key != key {
		glyphs := lb.cache.glyphs[:0]
		lb.Font.Shape(lb.Text, tr.Position, lb.Size, func(tex *bramble.Texture, positions [bramble.QuadVertexCount]mgl32.Vec3, uvs [bramble.QuadVertexCount]mgl32.Vec2) {
			glyphs = append(glyphs, glyphQuad{texture: tex, positions: positions, uvs: uvs})
		})
		lb.cache = labelCache{valid: true, key: key, glyphs: glyphs}
	}
	for i := range lb.cache.glyphs {
		g := &lb.cache.glyphs[i]
		r.DrawVertices(bramble.VerticesRequest{
			Texture:   g.texture,
			Positions: g.positions,
			TexCoords: g.uvs,
			Color:     lb.Color,
		})
	}
}
