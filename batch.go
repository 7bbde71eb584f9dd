package bramble

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultMaxQuadsPerBatch is the software cap on quads per draw call.
	DefaultMaxQuadsPerBatch = 10000
	// MaxTextureSlotsCap bounds slot storage. The effective slot count is the
	// smaller of this and the backend's reported limit.
	MaxTextureSlotsCap = 32
	// whiteSlot is reserved for the white texture used by untextured quads.
	whiteSlot = 0
)

// Batch accumulates quads for a single draw call. It tracks the textures the
// quads reference and refuses work that would exceed either the quad cap or
// the texture slot limit; the caller flushes and calls Begin before retrying.
//
// Only Begin mutates the slot table and counters back to empty.
type Batch struct {
	vertices []Vertex
	slots    [MaxTextureSlotsCap]*Texture
	used     int
	quads    int

	maxQuads int
	maxSlots int
}

// NewBatch creates a batch whose slot 0 is permanently bound to white.
// maxSlots is clamped to [2, MaxTextureSlotsCap] so at least one slot remains
// for textured quads.
func NewBatch(white *Texture, maxQuads, maxSlots int) *Batch {
	if white == nil {
		panic("bramble: NewBatch requires a white texture")
	}
	if maxQuads <= 0 {
		maxQuads = DefaultMaxQuadsPerBatch
	}
	maxSlots = min(max(maxSlots, 2), MaxTextureSlotsCap)
	b := &Batch{
		vertices: make([]Vertex, 0, maxQuads*QuadVertexCount),
		maxQuads: maxQuads,
		maxSlots: maxSlots,
	}
	b.slots[whiteSlot] = white
	b.Begin()
	return b
}

// Begin empties the batch: zero quads and only the white slot bound.
func (b *Batch) Begin() {
	b.vertices = b.vertices[:0]
	for i := whiteSlot + 1; i < b.used; i++ {
		b.slots[i] = nil
	}
	b.used = whiteSlot + 1
	b.quads = 0
}

// slotOf returns the slot tex is bound to, or -1. A nil tex is white.
func (b *Batch) slotOf(tex *Texture) int {
	if tex == nil {
		return whiteSlot
	}
	for i := 0; i < b.used; i++ {
		if b.slots[i] == tex {
			return i
		}
	}
	return -1
}

// CanAccept reports whether one more quad sampling tex fits in this batch.
func (b *Batch) CanAccept(tex *Texture) bool {
	if b.quads >= b.maxQuads {
		return false
	}
	return b.slotOf(tex) >= 0 || b.used < b.maxSlots
}

// Submit appends the four vertices of req. The caller must have checked
// CanAccept; submitting into a full batch panics because the flush contract
// was broken and the quad would otherwise be lost.
func (b *Batch) Submit(req DrawRequest) {
	tex := req.texture()
	if !b.CanAccept(tex) {
		panic(fmt.Sprintf("bramble: Batch.Submit without capacity (quads %d/%d, slots %d/%d)",
			b.quads, b.maxQuads, b.used, b.maxSlots))
	}
	slot := b.slotOf(tex)
	if slot < 0 {
		slot = b.used
		b.slots[slot] = tex
		b.used++
	}

	positions, uvs, color := req.geometry()
	b.appendQuad(&positions, &uvs, color, uint32(slot))
}

func (b *Batch) appendQuad(positions *[QuadVertexCount]mgl32.Vec3, uvs *[QuadVertexCount]mgl32.Vec2, color mgl32.Vec4, slot uint32) {
	for i := 0; i < QuadVertexCount; i++ {
		b.vertices = append(b.vertices, Vertex{
			Position:  positions[i],
			Color:     color,
			TexCoords: uvs[i],
			TexSlot:   slot,
		})
	}
	b.quads++
}

// Drain returns the accumulated vertices and the bound textures indexed by
// slot. Both slices alias internal storage and stay valid until Begin.
func (b *Batch) Drain() ([]Vertex, []*Texture) {
	return b.vertices, b.slots[:b.used]
}

// QuadCount returns the number of quads in the batch.
func (b *Batch) QuadCount() int { return b.quads }

// SlotsUsed returns the number of bound slots, including white.
func (b *Batch) SlotsUsed() int { return b.used }

// MaxQuads returns the batch's quad cap.
func (b *Batch) MaxQuads() int { return b.maxQuads }

// MaxSlots returns the effective texture slot limit.
func (b *Batch) MaxSlots() int { return b.maxSlots }

// Empty reports whether the batch holds no quads.
func (b *Batch) Empty() bool { return b.quads == 0 }
