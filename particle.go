package bramble

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// Range is a closed interval sampled uniformly.
type Range struct {
	Min, Max float32
}

// Random returns a value in [Min, Max].
func (r Range) Random(rng *rand.Rand) float32 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + rng.Float32()*(r.Max-r.Min)
}

type particle struct {
	pos     mgl32.Vec2
	vel     mgl32.Vec2
	life    float32 // remaining seconds
	maxLife float32

	startScale, endScale float32
	startAlpha, endAlpha float32
	scale                float32
	color                Color
}

// EmitterConfig controls how particles spawn and evolve.
type EmitterConfig struct {
	// MaxParticles is the pool size. Spawns beyond it are dropped. Zero
	// means 128.
	MaxParticles int
	// EmitRate is particles per second while the emitter is active.
	EmitRate float32
	// Lifetime is in seconds. Non-positive samples become 1s.
	Lifetime Range
	// Speed is in pixels per second.
	Speed Range
	// Angle is in radians, clockwise from +x on screen.
	Angle      Range
	StartScale Range
	EndScale   Range
	StartAlpha Range
	EndAlpha   Range
	// Gravity is added to every particle's velocity, in pixels per second
	// squared.
	Gravity    mgl32.Vec2
	StartColor Color
	EndColor   Color
	// Texture, optionally cut by SubRegion, is drawn centered on each
	// particle. A nil Texture draws solid quads of Size pixels.
	Texture   *Texture
	SubRegion *Rect
	Size      mgl32.Vec2
	BlendMode BlendMode
	// Seed fixes the random sequence. Zero picks a random seed.
	Seed uint64
}

// ParticleEmitter simulates a pool of particles on the CPU and draws them as
// quads. Particles live in world space: moving the emitter does not move
// particles already spawned.
type ParticleEmitter struct {
	// Position is where new particles spawn.
	Position mgl32.Vec2

	config    EmitterConfig
	particles []particle
	alive     int
	emitAccum float32
	active    bool
	rng       *rand.Rand
}

// NewParticleEmitter creates an inactive emitter with a preallocated pool.
func NewParticleEmitter(cfg EmitterConfig) *ParticleEmitter {
	n := cfg.MaxParticles
	if n <= 0 {
		n = 128
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &ParticleEmitter{
		config:    cfg,
		particles: make([]particle, n),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Start begins continuous emission.
func (e *ParticleEmitter) Start() { e.active = true }

// Stop ends emission. Live particles run out their lifetime.
func (e *ParticleEmitter) Stop() { e.active = false }

// Reset stops emission and kills every particle.
func (e *ParticleEmitter) Reset() {
	e.active = false
	e.alive = 0
	e.emitAccum = 0
}

// Active reports whether the emitter is emitting.
func (e *ParticleEmitter) Active() bool { return e.active }

// AliveCount returns the number of live particles.
func (e *ParticleEmitter) AliveCount() int { return e.alive }

// Config returns the emitter's config for live tuning. MaxParticles and Seed
// are read only at creation.
func (e *ParticleEmitter) Config() *EmitterConfig { return &e.config }

// Burst spawns up to n particles immediately, regardless of Start.
func (e *ParticleEmitter) Burst(n int) {
	for i := 0; i < n && e.alive < len(e.particles); i++ {
		e.spawn()
	}
}

// Update advances the simulation by dt seconds.
func (e *ParticleEmitter) Update(dt float32) {
	g := e.config.Gravity.Mul(dt)

	// Swap-remove dead particles.
	i := 0
	for i < e.alive {
		p := &e.particles[i]
		p.life -= dt
		if p.life <= 0 {
			e.alive--
			e.particles[i] = e.particles[e.alive]
			continue
		}
		p.vel = p.vel.Add(g)
		p.pos = p.pos.Add(p.vel.Mul(dt))

		t := 1 - p.life/p.maxLife
		p.scale = lerp32(p.startScale, p.endScale, t)
		p.color = Color{
			R: lerp32(e.config.StartColor.R, e.config.EndColor.R, t),
			G: lerp32(e.config.StartColor.G, e.config.EndColor.G, t),
			B: lerp32(e.config.StartColor.B, e.config.EndColor.B, t),
			A: lerp32(p.startAlpha, p.endAlpha, t),
		}
		i++
	}

	if e.active && e.config.EmitRate > 0 {
		e.emitAccum += e.config.EmitRate * dt
		for e.emitAccum >= 1 {
			e.emitAccum--
			if e.alive < len(e.particles) {
				e.spawn()
			}
		}
	}
}

func (e *ParticleEmitter) spawn() {
	p := &e.particles[e.alive]
	cfg := &e.config

	angle := float64(cfg.Angle.Random(e.rng))
	speed := cfg.Speed.Random(e.rng)
	p.pos = e.Position
	p.vel = mgl32.Vec2{float32(math.Cos(angle)) * speed, float32(math.Sin(angle)) * speed}

	p.life = cfg.Lifetime.Random(e.rng)
	if p.life <= 0 {
		p.life = 1
	}
	p.maxLife = p.life

	p.startScale = cfg.StartScale.Random(e.rng)
	p.endScale = cfg.EndScale.Random(e.rng)
	p.scale = p.startScale
	p.startAlpha = cfg.StartAlpha.Random(e.rng)
	p.endAlpha = cfg.EndAlpha.Random(e.rng)
	p.color = Color{R: cfg.StartColor.R, G: cfg.StartColor.G, B: cfg.StartColor.B, A: p.startAlpha}

	e.alive++
}

// blender is implemented by renderers with a switchable blend mode.
type blender interface {
	BlendMode() BlendMode
	SetBlendMode(BlendMode)
}

// Draw submits one quad per live particle. When r supports blend modes the
// emitter's mode is applied for its particles and restored afterwards.
func (e *ParticleEmitter) Draw(r Renderer2D) {
	if e.alive == 0 {
		return
	}
	if b, ok := r.(blender); ok && b.BlendMode() != e.config.BlendMode {
		prev := b.BlendMode()
		b.SetBlendMode(e.config.BlendMode)
		defer b.SetBlendMode(prev)
	}
	for i := 0; i < e.alive; i++ {
		p := &e.particles[i]
		// Zero Color and zero Scale mean white and unscaled in requests.
		c := p.color
		if c == (Color{}) || p.scale == 0 {
			continue
		}
		scale := mgl32.Vec2{p.scale, p.scale}
		if e.config.Texture == nil {
			r.DrawQuad(QuadRequest{Position: p.pos, Size: e.config.Size, Scale: scale, Color: c, Origin: OriginCenter})
			continue
		}
		r.DrawTexture(TextureRequest{
			Texture:   e.config.Texture,
			SubRegion: e.config.SubRegion,
			Position:  p.pos,
			Scale:     scale,
			Color:     c,
			Origin:    OriginCenter,
		})
	}
}

func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}
