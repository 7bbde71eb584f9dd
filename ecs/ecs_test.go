package ecs

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/bramble"
	"github.com/yohamta/donburi"
)

const epsilon = 1e-4

func approxEqual(a, b float32) bool {
	d := a - b
	return d < epsilon && d > -epsilon
}

// recordingRenderer captures DrawVertices calls.
type recordingRenderer struct {
	vertices []bramble.VerticesRequest
	quads    int
}

func (r *recordingRenderer) BeginDraw(*mgl32.Mat4) error        { return nil }
func (r *recordingRenderer) EndDraw() error                     { return nil }
func (r *recordingRenderer) ClearColor(bramble.Color)           {}
func (r *recordingRenderer) Resize(int, int)                    {}
func (r *recordingRenderer) SetCamera(*bramble.Camera)          {}
func (r *recordingRenderer) DrawQuad(bramble.QuadRequest)       { r.quads++ }
func (r *recordingRenderer) DrawTexture(bramble.TextureRequest) {}

func (r *recordingRenderer) DrawVertices(req bramble.VerticesRequest) {
	r.vertices = append(r.vertices, req)
}

func newTexture(t *testing.T, reg *bramble.TextureRegistry, name string, w, h int) *bramble.Texture {
	t.Helper()
	return reg.FromImage(name, ebiten.NewImage(w, h))
}

func TestDrawSystem_SpriteGeometry(t *testing.T) {
	w := donburi.NewWorld()
	reg := bramble.NewTextureRegistry()
	tex := newTexture(t, reg, "hero", 32, 16)
	NewSpriteEntity(w, tex, mgl32.Vec2{10, 20})

	r := &recordingRenderer{}
	NewDrawSystem().Draw(w, r)

	if len(r.vertices) != 1 {
		t.Fatalf("DrawVertices calls = %d, want 1", len(r.vertices))
	}
	got := r.vertices[0]
	if got.Texture != tex {
		t.Error("sprite texture not passed through")
	}
	want := bramble.GeneratePositions(mgl32.Vec2{10, 20}, mgl32.Vec2{32, 16}, mgl32.Vec2{1, 1}, 0, bramble.OriginTopLeft)
	if got.Positions != want {
		t.Errorf("positions = %v, want %v", got.Positions, want)
	}
	// TR corner of a top-left quad sits at x+w, y.
	if !approxEqual(got.Positions[0].X(), 42) || !approxEqual(got.Positions[0].Y(), 20) {
		t.Errorf("TR = %v, want (42, 20)", got.Positions[0])
	}
}

func TestDrawSystem_CachesUntilDirty(t *testing.T) {
	w := donburi.NewWorld()
	reg := bramble.NewTextureRegistry()
	e := NewSpriteEntity(w, newTexture(t, reg, "hero", 8, 8), mgl32.Vec2{})
	sys := NewDrawSystem()
	r := &recordingRenderer{}

	sys.Draw(w, r)
	if sys.Rebuilt() != 1 {
		t.Fatalf("first draw rebuilt %d, want 1", sys.Rebuilt())
	}

	// Moving without marking dirty keeps the cached corners.
	tr := TransformComponent.Get(w.Entry(e))
	if tr.Dirty {
		t.Fatal("Dirty not cleared after draw")
	}
	tr.Position = mgl32.Vec2{100, 0}
	sys.Draw(w, r)
	if sys.Rebuilt() != 0 {
		t.Errorf("clean draw rebuilt %d, want 0", sys.Rebuilt())
	}
	if r.vertices[1].Positions != r.vertices[0].Positions {
		t.Error("cached geometry changed without Dirty")
	}

	tr = TransformComponent.Get(w.Entry(e))
	tr.Dirty = true
	sys.Draw(w, r)
	if sys.Rebuilt() != 1 {
		t.Errorf("dirty draw rebuilt %d, want 1", sys.Rebuilt())
	}
	if !approxEqual(r.vertices[2].Positions[1].X(), 100) {
		t.Errorf("TL.x = %v, want 100", r.vertices[2].Positions[1].X())
	}
}

func TestDrawSystem_SpriteChangeRebuilds(t *testing.T) {
	w := donburi.NewWorld()
	reg := bramble.NewTextureRegistry()
	e := NewSpriteEntity(w, newTexture(t, reg, "hero", 8, 8), mgl32.Vec2{})
	sys := NewDrawSystem()
	r := &recordingRenderer{}
	sys.Draw(w, r)

	sp := SpriteComponent.Get(w.Entry(e))
	sp.FlipX = true
	sys.Draw(w, r)
	if sys.Rebuilt() != 1 {
		t.Fatalf("flip rebuilt %d, want 1", sys.Rebuilt())
	}
	if r.vertices[1].TexCoords[0] != r.vertices[0].TexCoords[1] {
		t.Error("FlipX did not swap TR and TL texture coordinates")
	}

	sp = SpriteComponent.Get(w.Entry(e))
	sp.SubRegion = &bramble.Rect{X: 0, Y: 0, Width: 4, Height: 4}
	sys.Draw(w, r)
	if sys.Rebuilt() != 1 {
		t.Fatalf("region rebuilt %d, want 1", sys.Rebuilt())
	}
	if !approxEqual(r.vertices[2].Positions[0].X(), 4) {
		t.Errorf("sub-region width: TR.x = %v, want 4", r.vertices[2].Positions[0].X())
	}
}

func TestDrawSystem_UntexturedSprite(t *testing.T) {
	w := donburi.NewWorld()
	e := w.Create(TransformComponent, SpriteComponent)
	entry := w.Entry(e)
	TransformComponent.SetValue(entry, Transform{Position: mgl32.Vec2{5, 5}, Scale: mgl32.Vec2{2, 2}})
	SpriteComponent.SetValue(entry, Sprite{Size: mgl32.Vec2{10, 4}, Visible: true, Color: bramble.Color{R: 1, A: 1}})

	r := &recordingRenderer{}
	NewDrawSystem().Draw(w, r)
	if len(r.vertices) != 1 {
		t.Fatalf("calls = %d, want 1", len(r.vertices))
	}
	got := r.vertices[0]
	if got.Texture != nil {
		t.Error("untextured sprite should submit a nil texture")
	}
	// BR corner: 5 + 10*2, 5 + 4*2.
	if !approxEqual(got.Positions[3].X(), 25) || !approxEqual(got.Positions[3].Y(), 13) {
		t.Errorf("BR = %v, want (25, 13)", got.Positions[3])
	}
	if got.Color.R != 1 {
		t.Errorf("color = %+v", got.Color)
	}
}

func TestDrawSystem_HiddenSpritesSkipped(t *testing.T) {
	w := donburi.NewWorld()
	reg := bramble.NewTextureRegistry()
	e := NewSpriteEntity(w, newTexture(t, reg, "hero", 8, 8), mgl32.Vec2{})
	SpriteComponent.Get(w.Entry(e)).Visible = false

	r := &recordingRenderer{}
	NewDrawSystem().Draw(w, r)
	if len(r.vertices) != 0 {
		t.Errorf("hidden sprite drawn %d times", len(r.vertices))
	}
}

func TestDrawSystem_LayerOrder(t *testing.T) {
	w := donburi.NewWorld()
	reg := bramble.NewTextureRegistry()
	top := newTexture(t, reg, "top", 4, 4)
	mid := newTexture(t, reg, "mid", 4, 4)
	bottom := newTexture(t, reg, "bottom", 4, 4)

	for _, s := range []struct {
		tex   *bramble.Texture
		layer int
	}{{top, 10}, {bottom, -1}, {mid, 3}} {
		e := NewSpriteEntity(w, s.tex, mgl32.Vec2{})
		SpriteComponent.Get(w.Entry(e)).Layer = s.layer
	}

	r := &recordingRenderer{}
	NewDrawSystem().Draw(w, r)
	if len(r.vertices) != 3 {
		t.Fatalf("calls = %d, want 3", len(r.vertices))
	}
	want := []*bramble.Texture{bottom, mid, top}
	for i, tex := range want {
		if r.vertices[i].Texture != tex {
			t.Errorf("draw %d = %s, want %s", i, r.vertices[i].Texture.Name(), tex.Name())
		}
	}
}

func TestDrawSystem_ThroughRenderer(t *testing.T) {
	w := donburi.NewWorld()
	reg := bramble.NewTextureRegistry()
	tex := newTexture(t, reg, "hero", 8, 8)
	for i := 0; i < 5; i++ {
		NewSpriteEntity(w, tex, mgl32.Vec2{float32(i) * 10, 0})
	}

	backend := &countingBackend{}
	rend, err := bramble.NewRenderer(backend, reg, bramble.RendererOptions{Width: 100, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	if err := rend.BeginDraw(nil); err != nil {
		t.Fatal(err)
	}
	NewDrawSystem().Draw(w, rend)
	if err := rend.EndDraw(); err != nil {
		t.Fatal(err)
	}
	if got := rend.Stats(); got.Quads != 5 || got.Flushes != 1 {
		t.Errorf("stats = %+v, want 5 quads in 1 flush", got)
	}
	if backend.vertices != 5*bramble.QuadVertexCount {
		t.Errorf("backend vertices = %d, want %d", backend.vertices, 5*bramble.QuadVertexCount)
	}
}

// countingBackend accepts every flush.
type countingBackend struct {
	vertices int
}

func (b *countingBackend) Limits() bramble.Limits       { return bramble.Limits{MaxTextureSlots: 16} }
func (b *countingBackend) Init(int) error               { return nil }
func (b *countingBackend) BeginPass(bramble.Pass) error { return nil }
func (b *countingBackend) SetBlend(bramble.BlendMode)   {}
func (b *countingBackend) EndPass() error               { return nil }

func (b *countingBackend) Flush(vertices []bramble.Vertex, _ []*bramble.Texture) error {
	b.vertices += len(vertices)
	return nil
}

const testFnt = `info face="Tiny" size=16 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=0,0 outline=0
common lineHeight=20 base=16 scaleW=64 scaleH=64 pages=1 packed=0 alphaChnl=0 redChnl=0 greenChnl=0 blueChnl=0
page id=0 file="tiny.png"
chars count=3
char id=32  x=0  y=0 width=0  height=0  xoffset=0 yoffset=0 xadvance=6  page=0 chnl=15
char id=72  x=0  y=0 width=10 height=14 xoffset=0 yoffset=2 xadvance=11 page=0 chnl=15
char id=105 x=10 y=0 width=4  height=14 xoffset=0 yoffset=2 xadvance=5  page=0 chnl=15
kernings count=0
`

func loadTinyFont(t *testing.T, reg *bramble.TextureRegistry) *bramble.BitmapFont {
	t.Helper()
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "tiny.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 64, 64))); err != nil {
		t.Fatal(err)
	}
	f.Close()
	path := filepath.Join(dir, "tiny.fnt")
	if err := os.WriteFile(path, []byte(testFnt), 0o644); err != nil {
		t.Fatal(err)
	}
	font, err := bramble.LoadBitmapFont(path, reg)
	if err != nil {
		t.Fatalf("LoadBitmapFont: %v", err)
	}
	return font
}

func TestDrawSystem_Label(t *testing.T) {
	w := donburi.NewWorld()
	reg := bramble.NewTextureRegistry()
	font := loadTinyFont(t, reg)
	e := NewLabelEntity(w, font, "Hi Hi", 16, mgl32.Vec2{100, 50})
	LabelComponent.Get(w.Entry(e)).Color = bramble.Color{G: 1, A: 1}

	r := &recordingRenderer{}
	sys := NewDrawSystem()
	sys.Draw(w, r)

	// The space has no quad.
	if len(r.vertices) != 4 {
		t.Fatalf("glyph quads = %d, want 4", len(r.vertices))
	}
	for i, v := range r.vertices {
		if v.Texture != font.Pages()[0] {
			t.Errorf("glyph %d texture = %v, want font page", i, v.Texture)
		}
		if v.Color.G != 1 {
			t.Errorf("glyph %d color = %+v", i, v.Color)
		}
	}
	// The first glyph's TL corner is at the label position plus its offsets.
	if tl := r.vertices[0].Positions[1]; !approxEqual(tl.X(), 100) || !approxEqual(tl.Y(), 52) {
		t.Errorf("first glyph TL = %v, want (100, 52)", tl)
	}

	// Labels follow their transform without Dirty.
	TransformComponent.Get(w.Entry(e)).Position = mgl32.Vec2{0, 0}
	r.vertices = nil
	sys.Draw(w, r)
	if tl := r.vertices[0].Positions[1]; !approxEqual(tl.X(), 0) || !approxEqual(tl.Y(), 2) {
		t.Errorf("moved glyph TL = %v, want (0, 2)", tl)
	}
}

func TestDrawSystem_LabelsAfterSpritesInLayer(t *testing.T) {
	w := donburi.NewWorld()
	reg := bramble.NewTextureRegistry()
	font := loadTinyFont(t, reg)
	NewLabelEntity(w, font, "H", 16, mgl32.Vec2{})
	tex := newTexture(t, reg, "hero", 4, 4)
	NewSpriteEntity(w, tex, mgl32.Vec2{})

	r := &recordingRenderer{}
	NewDrawSystem().Draw(w, r)
	if len(r.vertices) != 2 {
		t.Fatalf("calls = %d, want 2", len(r.vertices))
	}
	if r.vertices[0].Texture != tex {
		t.Error("sprite should draw before label on the same layer")
	}
}
