package bramble

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// RenderTexture is an offscreen canvas with its own renderer. What it
// renders becomes the contents of a registered Texture that can then be
// drawn like any other, e.g. a minimap or a pre-composed background.
type RenderTexture struct {
	tex      *Texture
	registry *TextureRegistry
	backend  *EbitenBackend
	renderer *Renderer
}

// NewRenderTexture creates a width x height canvas registered under name.
// opts.Width and opts.Height are ignored.
func NewRenderTexture(registry *TextureRegistry, name string, width, height int, opts RendererOptions) (*RenderTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bramble: render texture %q size %dx%d must be positive", name, width, height)
	}
	img := ebiten.NewImage(width, height)
	backend := NewEbitenBackend()
	backend.SetTarget(img)

	opts.Width, opts.Height = width, height
	r, err := NewRenderer(backend, registry, opts)
	if err != nil {
		img.Deallocate()
		return nil, err
	}
	// Canvases start transparent, not black.
	r.ClearColor(Color{})
	return &RenderTexture{
		tex:      registry.FromImage(name, img),
		registry: registry,
		backend:  backend,
		renderer: r,
	}, nil
}

// Texture returns the texture holding the canvas.
func (rt *RenderTexture) Texture() *Texture { return rt.tex }

// Renderer returns the canvas renderer, e.g. to set a camera or clear color.
func (rt *RenderTexture) Renderer() *Renderer { return rt.renderer }

// Render clears the canvas and runs draw between BeginDraw and EndDraw.
// camera may be nil for the default pixel projection.
func (rt *RenderTexture) Render(camera *mgl32.Mat4, draw func(r *Renderer)) error {
	if rt.tex.Released() {
		return fmt.Errorf("bramble: render texture %q: %w", rt.tex.Name(), ErrTextureReleased)
	}
	if err := rt.renderer.BeginDraw(camera); err != nil {
		return err
	}
	if draw != nil {
		draw(rt.renderer)
	}
	return rt.renderer.EndDraw()
}

// Resize reallocates the canvas. The Texture keeps its identity; its
// contents are lost until the next Render.
func (rt *RenderTexture) Resize(width, height int) {
	if width <= 0 || height <= 0 || rt.tex.Released() {
		return
	}
	if width == rt.tex.width && height == rt.tex.height {
		return
	}
	img := ebiten.NewImage(width, height)
	rt.tex.image.Deallocate()
	rt.tex.image = img
	rt.tex.width, rt.tex.height = width, height
	rt.backend.SetTarget(img)
	rt.renderer.Resize(width, height)
}

// Dispose releases the canvas texture.
func (rt *RenderTexture) Dispose() {
	rt.registry.Release(rt.tex)
	rt.backend.SetTarget(nil)
}
