package bramble

import "github.com/go-gl/mathgl/mgl32"

// Unit quads in corner order TR, TL, BL, BR.
var (
	// TopLeftQuad has its top-left corner at the origin.
	TopLeftQuad = [QuadVertexCount]mgl32.Vec4{
		{1, 0, 0, 1},
		{0, 0, 0, 1},
		{0, 1, 0, 1},
		{1, 1, 0, 1},
	}
	// CenterQuad is centered on the origin.
	CenterQuad = [QuadVertexCount]mgl32.Vec4{
		{0.5, -0.5, 0, 1},
		{-0.5, -0.5, 0, 1},
		{-0.5, 0.5, 0, 1},
		{0.5, 0.5, 0, 1},
	}
)

// unitQuad returns the constant quad for the origin mode.
func unitQuad(origin QuadOrigin) *[QuadVertexCount]mgl32.Vec4 {
	if origin == OriginCenter {
		return &CenterQuad
	}
	return &TopLeftQuad
}

// GeneratePositions returns the four world-space corners (TR, TL, BL, BR) of a
// quad of the given size and scale placed at position. rotation is in radians,
// clockwise on screen.
//
// Unrotated quads skip the matrix multiply; both paths agree at rotation 0.
func GeneratePositions(position, size, scale mgl32.Vec2, rotation float32, origin QuadOrigin) [QuadVertexCount]mgl32.Vec3 {
	if rotation == 0 {
		return generateAxisAligned(position, size, scale, origin)
	}
	return generateTransformed(position, size, scale, rotation, origin)
}

func generateAxisAligned(position, size, scale mgl32.Vec2, origin QuadOrigin) [QuadVertexCount]mgl32.Vec3 {
	w := size.X() * scale.X()
	h := size.Y() * scale.Y()
	q := unitQuad(origin)
	var out [QuadVertexCount]mgl32.Vec3
	for i := range q {
		out[i] = mgl32.Vec3{
			position.X() + q[i].X()*w,
			position.Y() + q[i].Y()*h,
			0,
		}
	}
	return out
}

func generateTransformed(position, size, scale mgl32.Vec2, rotation float32, origin QuadOrigin) [QuadVertexCount]mgl32.Vec3 {
	m := QuadTransform(position, size, scale, rotation)
	q := unitQuad(origin)
	var out [QuadVertexCount]mgl32.Vec3
	for i := range q {
		out[i] = m.Mul4x1(q[i]).Vec3()
	}
	return out
}

// QuadTransform builds the scale-then-rotate-then-translate matrix that maps a
// unit quad into world space.
func QuadTransform(position, size, scale mgl32.Vec2, rotation float32) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), 0)
	r := mgl32.HomogRotate3DZ(rotation)
	s := mgl32.Scale3D(size.X()*scale.X(), size.Y()*scale.Y(), 1)
	return t.Mul4(r).Mul4(s)
}

// fullUV covers the whole texture, in corner order TR, TL, BL, BR.
var fullUV = [QuadVertexCount]mgl32.Vec2{
	{1, 0},
	{0, 0},
	{0, 1},
	{1, 1},
}

// GenerateUV returns texture coordinates (TR, TL, BL, BR) for a texture of
// textureSize pixels. A nil subRegion spans the whole texture; otherwise the
// region is normalized by textureSize. flipX mirrors horizontally and flipY
// vertically.
func GenerateUV(textureSize mgl32.Vec2, subRegion *Rect, flipX, flipY bool) [QuadVertexCount]mgl32.Vec2 {
	uv := fullUV
	if subRegion != nil && textureSize.X() > 0 && textureSize.Y() > 0 {
		u0 := subRegion.X / textureSize.X()
		v0 := subRegion.Y / textureSize.Y()
		u1 := (subRegion.X + subRegion.Width) / textureSize.X()
		v1 := (subRegion.Y + subRegion.Height) / textureSize.Y()
		uv = [QuadVertexCount]mgl32.Vec2{
			{u1, v0},
			{u0, v0},
			{u0, v1},
			{u1, v1},
		}
	}
	if flipX {
		uv = flipUVX(uv)
	}
	if flipY {
		uv = flipUVY(uv)
	}
	return uv
}

// flipUVX swaps the right and left corner pairs: TR<->TL, BR<->BL.
func flipUVX(uv [QuadVertexCount]mgl32.Vec2) [QuadVertexCount]mgl32.Vec2 {
	return [QuadVertexCount]mgl32.Vec2{uv[1], uv[0], uv[3], uv[2]}
}

// flipUVY swaps the top and bottom corner pairs: TR<->BR, TL<->BL.
func flipUVY(uv [QuadVertexCount]mgl32.Vec2) [QuadVertexCount]mgl32.Vec2 {
	return [QuadVertexCount]mgl32.Vec2{uv[3], uv[2], uv[1], uv[0]}
}
