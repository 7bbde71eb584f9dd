package bramble

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// Limits are device limits a backend reports once, at renderer creation.
type Limits struct {
	// MaxTextureSlots is the number of textures one draw call can sample.
	MaxTextureSlots int
}

// Pass describes the render pass a frame's flushes belong to.
type Pass struct {
	Projection mgl32.Mat4
	ClearColor Color
	Blend      BlendMode
}

// Backend turns drained batches into GPU work. Renderer owns the batching;
// a backend only uploads vertices, binds textures and issues draws.
type Backend interface {
	// Limits reports the device limits. Called once by NewRenderer.
	Limits() Limits
	// Init allocates fixed-capacity buffers for batches of up to maxQuads.
	Init(maxQuads int) error
	// BeginPass clears the target and stores the pass state.
	BeginPass(pass Pass) error
	// SetBlend changes the blend mode for subsequent flushes.
	SetBlend(mode BlendMode)
	// Flush draws vertices, len(vertices)/4 quads, sampling textures by slot.
	Flush(vertices []Vertex, textures []*Texture) error
	// EndPass finishes the pass. Presentation is up to the host loop.
	EndPass() error
}

// DrawCounter is implemented by backends that may split one flush into
// several draw calls. The count covers the current pass.
type DrawCounter interface {
	DrawCalls() int
}

// ebitenTextureSlots is the slot count reported by EbitenBackend. Ebitengine
// exposes no sampler-unit query and binds one source image per
// DrawTriangles32 call, so the value is the common GL fragment-sampler floor.
const ebitenTextureSlots = 16

// EbitenBackend submits batches with ebiten.Image.DrawTriangles32.
//
// A batch is split into runs of consecutive quads sharing a slot; each run is
// one DrawTriangles32 call over a prefix of the shared index buffer. Ebitengine
// merges consecutive calls whose images share an internal atlas page into a
// single GPU draw.
type EbitenBackend struct {
	target   *ebiten.Image
	verts    []ebiten.Vertex
	indices  []uint32
	pass     Pass
	blend    BlendMode
	drawOpts ebiten.DrawTrianglesOptions

	drawCalls int
}

// NewEbitenBackend returns a backend with no target. Call SetTarget each frame
// with the image to draw into, usually the screen passed to ebiten.Game.Draw.
func NewEbitenBackend() *EbitenBackend {
	return &EbitenBackend{}
}

// SetTarget sets the image subsequent passes draw into.
func (b *EbitenBackend) SetTarget(target *ebiten.Image) {
	b.target = target
}

// Target returns the current render target.
func (b *EbitenBackend) Target() *ebiten.Image {
	return b.target
}

// Limits implements Backend.
func (b *EbitenBackend) Limits() Limits {
	return Limits{MaxTextureSlots: ebitenTextureSlots}
}

// Init implements Backend.
func (b *EbitenBackend) Init(maxQuads int) error {
	if maxQuads <= 0 {
		return fmt.Errorf("bramble: backend init: invalid quad capacity %d", maxQuads)
	}
	b.verts = make([]ebiten.Vertex, maxQuads*QuadVertexCount)
	b.indices = GenerateQuadIndices(maxQuads)
	return nil
}

// BeginPass implements Backend.
func (b *EbitenBackend) BeginPass(pass Pass) error {
	if b.target == nil {
		return ErrNoTarget
	}
	b.pass = pass
	b.drawCalls = 0
	b.SetBlend(pass.Blend)
	b.target.Fill(pass.ClearColor)
	return nil
}

// SetBlend implements Backend.
func (b *EbitenBackend) SetBlend(mode BlendMode) {
	b.blend = mode
	b.drawOpts.Blend = mode.EbitenBlend()
	b.drawOpts.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
}

// Flush implements Backend.
func (b *EbitenBackend) Flush(vertices []Vertex, textures []*Texture) error {
	if b.target == nil {
		return ErrNoTarget
	}
	quads := len(vertices) / QuadVertexCount
	if quads*QuadVertexCount > len(b.verts) {
		return fmt.Errorf("bramble: flush of %d quads exceeds backend capacity %d",
			quads, len(b.verts)/QuadVertexCount)
	}

	bounds := b.target.Bounds()
	tw, th := float32(bounds.Dx()), float32(bounds.Dy())
	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)

	for start := 0; start < quads; {
		slot := vertices[start*QuadVertexCount].TexSlot
		end := start + 1
		for end < quads && vertices[end*QuadVertexCount].TexSlot == slot {
			end++
		}
		if int(slot) >= len(textures) {
			return fmt.Errorf("bramble: vertex references unbound slot %d", slot)
		}
		tex := textures[slot]
		if tex == nil || tex.Released() {
			return ErrTextureReleased
		}

		src := vertices[start*QuadVertexCount : end*QuadVertexCount]
		dst := b.verts[:len(src)]
		b.uploadRun(src, dst, tex, tw, th, ox, oy)

		n := end - start
		b.target.DrawTriangles32(dst, b.indices[:n*QuadIndexCount], tex.image, &b.drawOpts)
		b.drawCalls++
		start = end
	}
	return nil
}

// uploadRun converts vertices to Ebitengine vertices: clip-space projection to
// target pixels, normalized UVs to source pixels, premultiplied color. Both
// sides are offset by their image's bounds origin, so sub-images work as
// targets and as textures.
func (b *EbitenBackend) uploadRun(src []Vertex, dst []ebiten.Vertex, tex *Texture, tw, th, ox, oy float32) {
	sw, sh := float32(tex.width), float32(tex.height)
	srcMin := tex.image.Bounds().Min
	sx, sy := float32(srcMin.X), float32(srcMin.Y)
	proj := b.pass.Projection
	for i := range src {
		v := &src[i]
		clip := proj.Mul4x1(v.Position.Vec4(1))
		if clip.W() != 0 && clip.W() != 1 {
			clip = clip.Mul(1 / clip.W())
		}
		a := v.Color.W()
		dst[i] = ebiten.Vertex{
			DstX:   ox + (clip.X()+1)*0.5*tw,
			DstY:   oy + (1-clip.Y())*0.5*th,
			SrcX:   sx + v.TexCoords.X()*sw,
			SrcY:   sy + v.TexCoords.Y()*sh,
			ColorR: v.Color.X() * a,
			ColorG: v.Color.Y() * a,
			ColorB: v.Color.Z() * a,
			ColorA: a,
		}
	}
}

// DrawCalls returns the number of DrawTriangles32 calls issued this pass.
func (b *EbitenBackend) DrawCalls() int {
	return b.drawCalls
}

// EndPass implements Backend.
func (b *EbitenBackend) EndPass() error {
	if b.target == nil {
		return ErrNoTarget
	}
	return nil
}
