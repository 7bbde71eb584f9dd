// sprites10k spawns 10,000 sprites that rotate, scale, fade and bounce
// around the screen simultaneously. A stress test for the batched renderer:
// with the default batch size the whole field costs a handful of flushes.
// Pass -script with a frame script to automate captures, e.g.
//
//	{"steps": [{"action": "wait", "frames": 30},
//	           {"action": "screenshot", "label": "thumbnail"},
//	           {"action": "quit"}]}
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/bramble"
)

const (
	screenW    = 1280
	screenH    = 720
	count      = 10_000
	spriteSize = 64
)

type sprite struct {
	pos        mgl32.Vec2
	vel        mgl32.Vec2
	rotation   float32
	rotSpeed   float32
	scale      float32
	scaleBase  float32
	scaleAmp   float32
	scaleSpeed float32
	alphaSpeed float32
	phase      float32
	tint       bramble.Color
}

type demo struct {
	tex        *bramble.Texture
	sprites    []sprite
	t          float64
	scriptPath string
}

// disc renders a soft-edged circle so the demo needs no asset files.
func disc(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-r, float64(y)+0.5-r) / r
			if d > 1 {
				continue
			}
			a := uint8(255 * math.Min(1, (1-d)*4))
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: a})
		}
	}
	return img
}

func (d *demo) Load(e *bramble.Engine) error {
	if d.scriptPath != "" {
		script, err := bramble.LoadScriptFile(d.scriptPath)
		if err != nil {
			return err
		}
		e.ScreenshotDir = "docs/demos/sprites10k"
		e.SetScript(script)
	}
	d.tex = e.Textures().FromImage("disc", ebiten.NewImageFromImage(disc(spriteSize)))

	d.sprites = make([]sprite, count)
	for i := range d.sprites {
		base := 0.15 + rand.Float32()*0.4
		d.sprites[i] = sprite{
			pos:        mgl32.Vec2{rand.Float32() * screenW, rand.Float32() * screenH},
			vel:        mgl32.Vec2{(rand.Float32() - 0.5) * 240, (rand.Float32() - 0.5) * 240},
			rotSpeed:   (rand.Float32() - 0.5) * 5,
			scale:      base,
			scaleBase:  base,
			scaleAmp:   0.03 + rand.Float32()*0.07,
			scaleSpeed: 1 + rand.Float32()*2,
			alphaSpeed: 0.5 + rand.Float32()*2,
			phase:      rand.Float32() * math.Pi * 2,
			tint: bramble.Color{
				R: 0.5 + rand.Float32()*0.5,
				G: 0.5 + rand.Float32()*0.5,
				B: 0.5 + rand.Float32()*0.5,
				A: 1,
			},
		}
	}
	return nil
}

func (d *demo) Update(dt float64) error {
	d.t += dt

	t := float32(d.t)
	fdt := float32(dt)
	for i := range d.sprites {
		s := &d.sprites[i]
		s.pos = s.pos.Add(s.vel.Mul(fdt))

		half := s.scale * spriteSize / 2
		if s.pos.X() < half || s.pos.X() > screenW-half {
			s.vel[0] = -s.vel[0]
			s.pos[0] = mgl32.Clamp(s.pos.X(), half, screenW-half)
		}
		if s.pos.Y() < half || s.pos.Y() > screenH-half {
			s.vel[1] = -s.vel[1]
			s.pos[1] = mgl32.Clamp(s.pos.Y(), half, screenH-half)
		}

		s.rotation += s.rotSpeed * fdt
		s.scale = s.scaleBase + s.scaleAmp*float32(math.Sin(float64(t*s.scaleSpeed+s.phase)))
		s.tint.A = 0.5 + 0.5*float32(math.Sin(float64(t*s.alphaSpeed+s.phase)))
	}
	return nil
}

func (d *demo) Draw(r *bramble.Renderer) {
	for i := range d.sprites {
		s := &d.sprites[i]
		r.DrawTexture(bramble.TextureRequest{
			Texture:  d.tex,
			Position: s.pos,
			Scale:    mgl32.Vec2{s.scale, s.scale},
			Rotation: s.rotation,
			Color:    s.tint,
			Origin:   bramble.OriginCenter,
		})
	}
}

func main() {
	scriptPath := flag.String("script", "", "JSON frame script for automated captures")
	flag.Parse()

	cfg := bramble.DefaultConfig()
	cfg.Window.Title = "Bramble - 10k Sprites"
	cfg.Window.Width = screenW
	cfg.Window.Height = screenH
	cfg.Render.ClearColor = [4]float32{0.06, 0.06, 0.09, 1}
	cfg.Render.ShowFPS = true

	if err := bramble.Run(&demo{scriptPath: *scriptPath}, cfg); err != nil {
		log.Fatal(err)
	}
}
