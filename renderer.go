package bramble

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Renderer2D is the drawing surface handed to games and systems.
type Renderer2D interface {
	BeginDraw(camera *mgl32.Mat4) error
	DrawQuad(req QuadRequest)
	DrawTexture(req TextureRequest)
	DrawVertices(req VerticesRequest)
	EndDraw() error
	ClearColor(c Color)
	Resize(width, height int)
	SetCamera(cam *Camera)
}

// RendererState is the renderer's position in the frame state machine.
type RendererState uint8

const (
	StateIdle     RendererState = iota // between frames
	StateBatching                      // accepting draw requests
	StateFlushing                      // submitting a full batch mid-frame
)

func (s RendererState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBatching:
		return "batching"
	case StateFlushing:
		return "flushing"
	default:
		return fmt.Sprintf("RendererState(%d)", uint8(s))
	}
}

// FrameStats counts the work done by the most recent frame.
type FrameStats struct {
	Quads   int
	Flushes int
	// MaxSlotsUsed is the largest number of bound slots in any flush,
	// including the white slot.
	MaxSlotsUsed int
	// DrawCalls is the number of backend draw calls. Backends that do not
	// implement DrawCounter issue one per flush.
	DrawCalls int
	// FrameTime is the time spent between BeginDraw and EndDraw.
	FrameTime time.Duration
}

// RendererOptions configures NewRenderer.
type RendererOptions struct {
	// MaxQuadsPerBatch caps quads per draw call. Zero means DefaultMaxQuadsPerBatch.
	MaxQuadsPerBatch int
	// MaxTextureSlots further restricts the backend's slot limit. Zero means
	// no extra restriction.
	MaxTextureSlots int
	// Width and Height are the initial viewport size in pixels.
	Width, Height int
}

// Renderer batches quads and hands full batches to a Backend.
// It is single-threaded: one goroutine owns it for the whole frame.
type Renderer struct {
	backend Backend
	batch   *Batch
	white   *Texture

	state      RendererState
	projection mgl32.Mat4
	defaultPrj mgl32.Mat4
	camera     *Camera
	clear      Color
	blend      BlendMode

	width, height int

	stats      FrameStats
	frameStart time.Time
	frameErr   error
}

var _ Renderer2D = (*Renderer)(nil)

const whiteTextureName = "bramble/white"

// NewRenderer creates a renderer drawing through backend. The reserved white
// texture is created in textures. The slot limit is the smallest of the
// backend's reported limit, opts.MaxTextureSlots and MaxTextureSlotsCap.
func NewRenderer(backend Backend, textures *TextureRegistry, opts RendererOptions) (*Renderer, error) {
	limits := backend.Limits()
	slots := limits.MaxTextureSlots
	if opts.MaxTextureSlots > 0 && opts.MaxTextureSlots < slots {
		slots = opts.MaxTextureSlots
	}
	if slots > MaxTextureSlotsCap {
		slots = MaxTextureSlotsCap
	}
	if slots < 2 {
		return nil, fmt.Errorf("bramble: backend reports %d texture slots, need at least 2", limits.MaxTextureSlots)
	}
	maxQuads := opts.MaxQuadsPerBatch
	if maxQuads <= 0 {
		maxQuads = DefaultMaxQuadsPerBatch
	}
	if err := backend.Init(maxQuads); err != nil {
		return nil, err
	}

	// Renderers sharing a registry share the white texture.
	white, err := textures.Get(whiteTextureName)
	if err != nil {
		white = textures.FromColor(whiteTextureName, ColorWhite)
	}
	r := &Renderer{
		backend: backend,
		batch:   NewBatch(white, maxQuads, slots),
		white:   white,
		clear:   Color{0, 0, 0, 1},
	}
	r.Resize(opts.Width, opts.Height)
	logger.Debug("renderer ready", "max_quads", maxQuads, "texture_slots", slots,
		"device_slots", limits.MaxTextureSlots)
	return r, nil
}

// State returns the frame state.
func (r *Renderer) State() RendererState { return r.state }

// Stats returns counters for the last completed or current frame.
func (r *Renderer) Stats() FrameStats { return r.stats }

// Batch exposes the accumulator, mainly for diagnostics.
func (r *Renderer) Batch() *Batch { return r.batch }

// WhiteTexture returns the texture bound to slot 0.
func (r *Renderer) WhiteTexture() *Texture { return r.white }

// Projection returns the projection of the open frame, or the default one.
func (r *Renderer) Projection() mgl32.Mat4 {
	if r.state == StateIdle {
		return r.defaultProjection()
	}
	return r.projection
}

// Size returns the viewport size in pixels.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// BeginDraw opens a frame. camera, if non-nil, is the projection matrix for
// the frame; otherwise the SetCamera camera or the viewport ortho is used.
func (r *Renderer) BeginDraw(camera *mgl32.Mat4) error {
	if r.state != StateIdle {
		r.misuse("BeginDraw")
		return ErrAlreadyDrawing
	}
	if camera != nil {
		r.projection = *camera
	} else {
		r.projection = r.defaultProjection()
	}
	r.stats = FrameStats{}
	r.frameStart = time.Now()
	r.frameErr = nil

	err := r.backend.BeginPass(Pass{
		Projection: r.projection,
		ClearColor: r.clear,
		Blend:      r.blend,
	})
	if err != nil {
		return fmt.Errorf("bramble: begin pass: %w", err)
	}
	r.batch.Begin()
	r.state = StateBatching
	return nil
}

// DrawQuad batches an untextured quad.
func (r *Renderer) DrawQuad(req QuadRequest) {
	r.submit(req, "DrawQuad")
}

// DrawTexture batches a textured quad.
func (r *Renderer) DrawTexture(req TextureRequest) {
	r.submit(req, "DrawTexture")
}

// DrawVertices batches a quad with precomputed corners.
func (r *Renderer) DrawVertices(req VerticesRequest) {
	r.submit(req, "DrawVertices")
}

func (r *Renderer) submit(req DrawRequest, op string) {
	if r.state != StateBatching {
		r.misuse(op)
		return
	}
	if r.frameErr != nil {
		// The frame is already lost; EndDraw reports why.
		return
	}
	if !r.batch.CanAccept(req.texture()) {
		r.flush()
		if r.frameErr != nil {
			return
		}
	}
	r.batch.Submit(req)
	r.stats.Quads++
}

// flush submits the batch and begins a new one. The first error is kept for
// EndDraw.
func (r *Renderer) flush() {
	if r.batch.Empty() {
		return
	}
	prev := r.state
	r.state = StateFlushing
	vertices, textures := r.batch.Drain()
	if len(textures) > r.stats.MaxSlotsUsed {
		r.stats.MaxSlotsUsed = len(textures)
	}
	if err := r.backend.Flush(vertices, textures); err != nil && r.frameErr == nil {
		r.frameErr = fmt.Errorf("bramble: flush %d quads: %w", r.batch.QuadCount(), err)
	}
	r.stats.Flushes++
	r.batch.Begin()
	r.state = prev
}

// SetBlendMode switches blending for subsequent quads. Quads already batched
// are flushed with the previous mode.
func (r *Renderer) SetBlendMode(mode BlendMode) {
	if mode == r.blend {
		return
	}
	if r.state == StateBatching {
		r.flush()
	}
	r.blend = mode
	r.backend.SetBlend(mode)
}

// BlendMode returns the current blend mode.
func (r *Renderer) BlendMode() BlendMode { return r.blend }

// EndDraw flushes the remaining quads and closes the frame. A non-nil error
// means the frame was dropped; the renderer is idle either way.
func (r *Renderer) EndDraw() error {
	if r.state != StateBatching {
		r.misuse("EndDraw")
		return ErrNotDrawing
	}
	if r.frameErr == nil {
		r.flush()
	}
	endErr := r.backend.EndPass()
	r.state = StateIdle
	if dc, ok := r.backend.(DrawCounter); ok {
		r.stats.DrawCalls = dc.DrawCalls()
	} else {
		r.stats.DrawCalls = r.stats.Flushes
	}
	r.stats.FrameTime = time.Since(r.frameStart)

	if debugMode {
		logFrameStats(r.stats)
	}
	if r.frameErr != nil {
		return r.frameErr
	}
	if endErr != nil {
		return fmt.Errorf("bramble: end pass: %w", endErr)
	}
	return nil
}

// ClearColor sets the background used when the next frame's pass begins.
func (r *Renderer) ClearColor(c Color) {
	r.clear = c
}

// Resize updates the viewport and the default projection. It must not be
// called between BeginDraw and EndDraw.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
	r.defaultPrj = ComputeProjection(Rect{Width: float32(width), Height: float32(height)})
	if r.camera != nil {
		r.camera.SetWindowSize(width, height)
	}
}

// SetCamera makes cam the source of the default projection. nil restores the
// plain viewport projection.
func (r *Renderer) SetCamera(cam *Camera) {
	r.camera = cam
	if cam != nil {
		cam.SetWindowSize(r.width, r.height)
	}
}

// Camera returns the camera set with SetCamera.
func (r *Renderer) Camera() *Camera { return r.camera }

func (r *Renderer) defaultProjection() mgl32.Mat4 {
	if r.camera != nil {
		return r.camera.Projection()
	}
	return r.defaultPrj
}

// misuse reports a frame state violation: a panic in debug mode, an error
// log otherwise. The batch is never touched.
func (r *Renderer) misuse(op string) {
	if debugMode {
		panic(fmt.Sprintf("bramble debug: %s called while renderer is %s", op, r.state))
	}
	logger.Error("renderer misuse, request dropped", "op", op, "state", r.state)
}
