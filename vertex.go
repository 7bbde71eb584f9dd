package bramble

import "github.com/go-gl/mathgl/mgl32"

// Vertex is one corner of a quad as uploaded to the GPU.
// TexSlot indexes the texture bound for the batch the vertex belongs to;
// slot 0 is always the white texture.
type Vertex struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec4
	TexCoords mgl32.Vec2
	TexSlot   uint32
}

const (
	// QuadVertexCount is the number of vertices emitted per draw request.
	QuadVertexCount = 4
	// QuadIndexCount is the number of indices emitted per draw request.
	QuadIndexCount = 6
)

// quadIndexPattern triangulates the corners TR, TL, BL, BR as (TR, TL, BL)
// and (TR, BL, BR).
var quadIndexPattern = [QuadIndexCount]uint32{0, 1, 2, 0, 2, 3}

// GenerateQuadIndices returns the shared index buffer for maxQuads quads:
// quadIndexPattern repeated with a +4 vertex offset per quad. It is built once
// at renderer initialization and never changes.
func GenerateQuadIndices(maxQuads int) []uint32 {
	indices := make([]uint32, maxQuads*QuadIndexCount)
	for q := 0; q < maxQuads; q++ {
		base := uint32(q * QuadVertexCount)
		for i, idx := range quadIndexPattern {
			indices[q*QuadIndexCount+i] = base + idx
		}
	}
	return indices
}
