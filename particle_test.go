package bramble

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func fixedEmitterConfig() EmitterConfig {
	return EmitterConfig{
		MaxParticles: 10,
		EmitRate:     10,
		Lifetime:     Range{1, 1},
		Speed:        Range{100, 100},
		Angle:        Range{0, 0},
		StartScale:   Range{1, 1},
		EndScale:     Range{3, 3},
		StartAlpha:   Range{1, 1},
		EndAlpha:     Range{0, 0},
		StartColor:   Color{R: 1, G: 0, B: 0, A: 1},
		EndColor:     Color{R: 0, G: 0, B: 1, A: 1},
		Size:         mgl32.Vec2{4, 4},
		Seed:         7,
	}
}

func TestRange_Random(t *testing.T) {
	e := NewParticleEmitter(EmitterConfig{Seed: 1})
	if got := (Range{3, 3}).Random(e.rng); got != 3 {
		t.Errorf("degenerate range = %v, want 3", got)
	}
	for i := 0; i < 100; i++ {
		v := (Range{-2, 5}).Random(e.rng)
		if v < -2 || v > 5 {
			t.Fatalf("sample %v outside [-2, 5]", v)
		}
	}
}

func TestParticleEmitter_DefaultPool(t *testing.T) {
	e := NewParticleEmitter(EmitterConfig{})
	if len(e.particles) != 128 {
		t.Errorf("pool = %d, want 128", len(e.particles))
	}
	if e.Active() {
		t.Error("new emitter should be inactive")
	}
}

func TestParticleEmitter_EmitRate(t *testing.T) {
	e := NewParticleEmitter(fixedEmitterConfig())
	e.Update(0.5)
	if e.AliveCount() != 0 {
		t.Fatalf("inactive emitter spawned %d", e.AliveCount())
	}
	e.Start()
	e.Update(0.35)
	if e.AliveCount() != 3 {
		t.Errorf("alive = %d, want 3 after 0.35s at 10/s", e.AliveCount())
	}
}

func TestParticleEmitter_PoolLimit(t *testing.T) {
	e := NewParticleEmitter(fixedEmitterConfig())
	e.Burst(25)
	if e.AliveCount() != 10 {
		t.Errorf("alive = %d, want pool size 10", e.AliveCount())
	}
}

func TestParticleEmitter_MotionAndInterpolation(t *testing.T) {
	cfg := fixedEmitterConfig()
	cfg.MaxParticles = 1
	e := NewParticleEmitter(cfg)
	e.Position = mgl32.Vec2{10, 20}
	e.Burst(1)

	e.Update(0.5)
	p := e.particles[0]
	if !approxEqual(p.pos.X(), 60) || !approxEqual(p.pos.Y(), 20) {
		t.Errorf("pos = %v, want (60, 20)", p.pos)
	}
	if !approxEqual(p.scale, 2) {
		t.Errorf("scale = %v, want 2", p.scale)
	}
	if !approxEqual(p.color.R, 0.5) || !approxEqual(p.color.B, 0.5) || !approxEqual(p.color.A, 0.5) {
		t.Errorf("color = %+v, want halfway", p.color)
	}
}

func TestParticleEmitter_Gravity(t *testing.T) {
	cfg := fixedEmitterConfig()
	cfg.Speed = Range{}
	cfg.Gravity = mgl32.Vec2{0, 100}
	e := NewParticleEmitter(cfg)
	e.Burst(1)
	e.Update(0.1)
	p := e.particles[0]
	if !approxEqual(p.vel.Y(), 10) || !approxEqual(p.pos.Y(), 1) {
		t.Errorf("vel = %v pos = %v, want vy 10 y 1", p.vel, p.pos)
	}
}

func TestParticleEmitter_Expiry(t *testing.T) {
	e := NewParticleEmitter(fixedEmitterConfig())
	e.Burst(4)
	e.Update(1.01)
	if e.AliveCount() != 0 {
		t.Errorf("alive = %d after lifetime", e.AliveCount())
	}
}

func TestParticleEmitter_SpawnsAtCurrentPosition(t *testing.T) {
	cfg := fixedEmitterConfig()
	cfg.Speed = Range{}
	e := NewParticleEmitter(cfg)
	e.Burst(1)
	e.Position = mgl32.Vec2{500, 500}
	e.Burst(1)
	e.Update(0.01)
	if e.particles[0].pos == e.particles[1].pos {
		t.Error("particles should keep their spawn position")
	}
}

func TestParticleEmitter_Reset(t *testing.T) {
	e := NewParticleEmitter(fixedEmitterConfig())
	e.Start()
	e.Burst(5)
	e.Reset()
	if e.AliveCount() != 0 || e.Active() {
		t.Errorf("after Reset alive=%d active=%v", e.AliveCount(), e.Active())
	}
}

func TestParticleEmitter_DrawQuads(t *testing.T) {
	e := NewParticleEmitter(fixedEmitterConfig())
	e.Burst(3)
	e.Update(0.1)

	var quads []QuadRequest
	e.Draw(&recordingRenderer{onQuad: func(q QuadRequest) { quads = append(quads, q) }})
	if len(quads) != 3 {
		t.Fatalf("quads = %d, want 3", len(quads))
	}
	for _, q := range quads {
		if q.Origin != OriginCenter || q.Size != (mgl32.Vec2{4, 4}) {
			t.Errorf("quad = %+v", q)
		}
	}
}

func TestParticleEmitter_DrawTextured(t *testing.T) {
	reg := NewTextureRegistry()
	tex := reg.FromColor("spark", Color{R: 1, G: 1, B: 1, A: 1})
	cfg := fixedEmitterConfig()
	cfg.Texture = tex
	e := NewParticleEmitter(cfg)
	e.Burst(2)

	var got []TextureRequest
	e.Draw(&recordingRenderer{onTexture: func(q TextureRequest) { got = append(got, q) }})
	if len(got) != 2 || got[0].Texture != tex {
		t.Fatalf("texture requests = %+v", got)
	}
}

func TestParticleEmitter_DrawAppliesBlendMode(t *testing.T) {
	be := newRecordingBackend(16)
	r, _ := newTestRenderer(t, be, RendererOptions{})
	cfg := fixedEmitterConfig()
	cfg.BlendMode = BlendAdd
	e := NewParticleEmitter(cfg)
	e.Burst(2)

	mustBegin(t, r)
	r.DrawQuad(QuadRequest{Size: mgl32.Vec2{1, 1}})
	e.Draw(r)
	r.DrawQuad(QuadRequest{Size: mgl32.Vec2{1, 1}})
	mustEnd(t, r)

	if len(be.flushes) != 3 {
		t.Fatalf("flushes = %d, want 3", len(be.flushes))
	}
	if be.flushes[1].blend != BlendAdd || be.flushes[1].quads() != 2 {
		t.Errorf("particle flush = blend %v quads %d", be.flushes[1].blend, be.flushes[1].quads())
	}
	if r.BlendMode() != BlendNormal {
		t.Errorf("blend mode not restored: %v", r.BlendMode())
	}
}
