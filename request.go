package bramble

import "github.com/go-gl/mathgl/mgl32"

// DrawRequest is one quad to be batched: QuadRequest, TextureRequest or
// VerticesRequest.
type DrawRequest interface {
	// texture returns the texture the quad samples, nil for the white texture.
	texture() *Texture
	// geometry resolves the quad's corners, texture coordinates and color.
	geometry() (positions [QuadVertexCount]mgl32.Vec3, uvs [QuadVertexCount]mgl32.Vec2, color mgl32.Vec4)
}

// QuadRequest draws an untextured, solid-colored quad.
//
// In every request type a zero Color means opaque white.
type QuadRequest struct {
	Position mgl32.Vec2
	Size     mgl32.Vec2
	// Scale multiplies Size. A zero Scale is treated as (1, 1).
	Scale    mgl32.Vec2
	Rotation float32
	Color    Color
	Origin   QuadOrigin
}

func (q QuadRequest) texture() *Texture { return nil }

func (q QuadRequest) geometry() ([QuadVertexCount]mgl32.Vec3, [QuadVertexCount]mgl32.Vec2, mgl32.Vec4) {
	return GeneratePositions(q.Position, q.Size, unitScale(q.Scale), q.Rotation, q.Origin), fullUV, q.Color.orWhite().Vec4()
}

// TextureRequest draws a texture, or a sub-region of it, at its native pixel
// size multiplied by Scale.
type TextureRequest struct {
	Texture   *Texture
	SubRegion *Rect
	Position  mgl32.Vec2
	// Scale multiplies the texture (or sub-region) size. A zero Scale is
	// treated as (1, 1).
	Scale    mgl32.Vec2
	Rotation float32
	Color    Color
	Origin   QuadOrigin
	FlipX    bool
	FlipY    bool
}

func (q TextureRequest) texture() *Texture { return q.Texture }

func (q TextureRequest) geometry() ([QuadVertexCount]mgl32.Vec3, [QuadVertexCount]mgl32.Vec2, mgl32.Vec4) {
	var texSize mgl32.Vec2
	if q.Texture != nil {
		texSize = q.Texture.Size()
	}
	size := texSize
	if q.SubRegion != nil {
		size = q.SubRegion.Size()
	}
	positions := GeneratePositions(q.Position, size, unitScale(q.Scale), q.Rotation, q.Origin)
	return positions, GenerateUV(texSize, q.SubRegion, q.FlipX, q.FlipY), q.Color.orWhite().Vec4()
}

// VerticesRequest draws a quad whose corners and texture coordinates were
// computed by the caller, typically a text shaper emitting glyphs.
// Corners are in TR, TL, BL, BR order.
type VerticesRequest struct {
	Texture   *Texture
	Positions [QuadVertexCount]mgl32.Vec3
	TexCoords [QuadVertexCount]mgl32.Vec2
	Color     Color
}

func (q VerticesRequest) texture() *Texture { return q.Texture }

func (q VerticesRequest) geometry() ([QuadVertexCount]mgl32.Vec3, [QuadVertexCount]mgl32.Vec2, mgl32.Vec4) {
	return q.Positions, q.TexCoords, q.Color.orWhite().Vec4()
}

func unitScale(s mgl32.Vec2) mgl32.Vec2 {
	if s == (mgl32.Vec2{}) {
		return mgl32.Vec2{1, 1}
	}
	return s
}
