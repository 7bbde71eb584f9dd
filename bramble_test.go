package bramble

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// --- Shared test helpers ---

const epsilon = 1e-4

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func assertVec3Near(t *testing.T, label string, got, want mgl32.Vec3) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if !approxEqual(got[i], want[i]) {
			t.Errorf("%s = %v, want %v", label, got, want)
			return
		}
	}
}

// writePNG writes an opaque w x h PNG to path.
func writePNG(t testing.TB, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// flushRecord is a copy of one Backend.Flush call.
type flushRecord struct {
	vertices []Vertex
	textures []*Texture
	blend    BlendMode
}

func (f flushRecord) quads() int { return len(f.vertices) / QuadVertexCount }

// recordingBackend is a Backend that copies every flush for inspection.
type recordingBackend struct {
	limits   Limits
	maxQuads int
	passes   []Pass
	flushes  []flushRecord
	blend    BlendMode
	ended    int

	flushErr error
	beginErr error
}

func newRecordingBackend(slots int) *recordingBackend {
	return &recordingBackend{limits: Limits{MaxTextureSlots: slots}}
}

func (b *recordingBackend) Limits() Limits { return b.limits }

func (b *recordingBackend) Init(maxQuads int) error {
	b.maxQuads = maxQuads
	return nil
}

func (b *recordingBackend) BeginPass(pass Pass) error {
	if b.beginErr != nil {
		return b.beginErr
	}
	b.passes = append(b.passes, pass)
	b.blend = pass.Blend
	return nil
}

func (b *recordingBackend) SetBlend(mode BlendMode) { b.blend = mode }

func (b *recordingBackend) Flush(vertices []Vertex, textures []*Texture) error {
	b.flushes = append(b.flushes, flushRecord{
		vertices: append([]Vertex(nil), vertices...),
		textures: append([]*Texture(nil), textures...),
		blend:    b.blend,
	})
	return b.flushErr
}

func (b *recordingBackend) EndPass() error {
	b.ended++
	return nil
}

// recordingRenderer is a Renderer2D that hands requests to callbacks.
type recordingRenderer struct {
	onQuad     func(QuadRequest)
	onTexture  func(TextureRequest)
	onVertices func(VerticesRequest)
}

func (r *recordingRenderer) BeginDraw(*mgl32.Mat4) error { return nil }
func (r *recordingRenderer) EndDraw() error              { return nil }
func (r *recordingRenderer) ClearColor(Color)            {}
func (r *recordingRenderer) Resize(int, int)             {}
func (r *recordingRenderer) SetCamera(*Camera)           {}

func (r *recordingRenderer) DrawQuad(req QuadRequest) {
	if r.onQuad != nil {
		r.onQuad(req)
	}
}

func (r *recordingRenderer) DrawTexture(req TextureRequest) {
	if r.onTexture != nil {
		r.onTexture(req)
	}
}

func (r *recordingRenderer) DrawVertices(req VerticesRequest) {
	if r.onVertices != nil {
		r.onVertices(req)
	}
}

// --- Rect ---

func TestRectContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	tests := []struct {
		name   string
		x, y   float32
		expect bool
	}{
		{"inside", 50, 40, true},
		{"top-left corner", 10, 20, true},
		{"bottom-right corner", 110, 70, true},
		{"outside left", 9, 40, false},
		{"outside right", 111, 40, false},
		{"outside above", 50, 19, false},
		{"outside below", 50, 71, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.expect {
				t.Errorf("Rect%v.Contains(%v, %v) = %v, want %v", r, tt.x, tt.y, got, tt.expect)
			}
		})
	}
}

func TestRectIntersects(t *testing.T) {
	base := Rect{10, 10, 100, 100}
	tests := []struct {
		name   string
		other  Rect
		expect bool
	}{
		{"overlapping", Rect{50, 50, 100, 100}, true},
		{"fully contained", Rect{20, 20, 10, 10}, true},
		{"adjacent right", Rect{110, 10, 50, 50}, true},
		{"disjoint right", Rect{111, 10, 50, 50}, false},
		{"disjoint above", Rect{10, -100, 50, 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.expect {
				t.Errorf("Rect%v.Intersects(%v) = %v, want %v", base, tt.other, got, tt.expect)
			}
		})
	}
}

// --- Color ---

func TestColorWhite(t *testing.T) {
	if ColorWhite != (Color{1, 1, 1, 1}) {
		t.Errorf("ColorWhite = %v, want {1,1,1,1}", ColorWhite)
	}
	if (Color{}).orWhite() != ColorWhite {
		t.Error("zero color does not map to white")
	}
	c := Color{0.5, 0, 0, 0.5}
	if c.orWhite() != c {
		t.Error("non-zero color was replaced")
	}
}

func TestColorRGBA_Premultiplied(t *testing.T) {
	r, g, b, a := Color{1, 0.5, 0, 0.5}.RGBA()
	if a != 0x7fff || r != 0x7fff || g != 0x3fff || b != 0 {
		t.Errorf("RGBA = %x %x %x %x, want 7fff 3fff 0 7fff", r, g, b, a)
	}
	var _ color.Color = ColorWhite
}

// --- BlendMode ---

func TestBlendModeEbitenBlend(t *testing.T) {
	modes := []struct {
		mode   BlendMode
		name   string
		expect ebiten.Blend
	}{
		{BlendNormal, "BlendNormal", ebiten.BlendSourceOver},
		{BlendAdd, "BlendAdd", ebiten.BlendLighter},
		{BlendErase, "BlendErase", ebiten.BlendDestinationOut},
		{BlendNone, "BlendNone", ebiten.BlendCopy},
	}
	for _, tt := range modes {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.EbitenBlend(); got != tt.expect {
				t.Errorf("%s.EbitenBlend() = %v, want %v", tt.name, got, tt.expect)
			}
		})
	}

	zero := ebiten.Blend{}
	for _, mode := range []BlendMode{BlendMultiply, BlendScreen} {
		if mode.EbitenBlend() == zero {
			t.Errorf("%d.EbitenBlend() returned zero blend", mode)
		}
	}
}

func TestEnumValues(t *testing.T) {
	if BlendNormal != 0 || BlendNone != 5 {
		t.Errorf("BlendNormal/BlendNone = %d/%d, want 0/5", BlendNormal, BlendNone)
	}
	if OriginTopLeft != 0 || OriginCenter != 1 {
		t.Errorf("OriginTopLeft/OriginCenter = %d/%d, want 0/1", OriginTopLeft, OriginCenter)
	}
	if ScaleKeep != 0 || ScaleExpand != 3 {
		t.Errorf("ScaleKeep/ScaleExpand = %d/%d, want 0/3", ScaleKeep, ScaleExpand)
	}
	if StateIdle != 0 || StateFlushing != 2 {
		t.Errorf("StateIdle/StateFlushing = %d/%d, want 0/2", StateIdle, StateFlushing)
	}
}

func BenchmarkRectContains(b *testing.B) {
	r := Rect{10, 20, 100, 50}
	for i := 0; i < b.N; i++ {
		_ = r.Contains(50, 40)
	}
}
