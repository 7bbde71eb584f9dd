// Package bramble is a small 2D game engine for [Ebitengine] built around a
// batched quad renderer.
//
// Every draw call in bramble is a quad: a solid-colored rectangle, a texture
// or texture sub-region, or four caller-supplied corners such as a glyph.
// The [Renderer] accumulates quads into a [Batch] and submits them to a
// [Backend] one flush at a time, so thousands of sprites cost a handful of
// GPU draw calls.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and drives
// the game loop:
//
//	type game struct{ hero *bramble.Texture }
//
//	func (g *game) Load(e *bramble.Engine) error {
//		var err error
//		g.hero, err = e.Textures().Load("assets/hero.png")
//		return err
//	}
//
//	func (g *game) Update(dt float64) error { return nil }
//
//	func (g *game) Draw(r *bramble.Renderer) {
//		r.DrawTexture(bramble.TextureRequest{
//			Texture:  g.hero,
//			Position: mgl32.Vec2{100, 50},
//		})
//	}
//
//	func main() {
//		if err := bramble.Run(&game{}, bramble.DefaultConfig()); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// Games that implement [Loader] get a Load call once the engine is built and
// before the first frame.
//
// # Frames
//
// A frame is bracketed by [Renderer.BeginDraw] and [Renderer.EndDraw]. Draw
// requests outside that bracket are misuse: they panic in debug mode
// ([SetDebugMode]) and are logged and dropped otherwise. The batch flushes
// automatically when it runs out of quad capacity, when a new texture would
// exceed the texture slot limit, when the blend mode changes, and at
// EndDraw. A failed flush drops the rest of the frame; EndDraw returns the
// error.
//
// Corners are ordered top-right, top-left, bottom-left, bottom-right in a
// y-down world, and every quad is triangulated as (0, 1, 2) and (0, 2, 3).
//
// # Cameras
//
// A [Camera] maps a fixed render resolution onto the window according to its
// [ScaleMode] and [Anchor], and produces the orthographic projection the
// renderer uses. Cameras scroll and zoom with [gween] easing.
//
// # Assets
//
// [TextureRegistry] decodes PNG, JPEG, BMP and WebP images, deduplicates
// loads by path and, with [TextureRegistry.Watch], hot-reloads changed files
// in place. TexturePacker atlases load with [LoadAtlas] and AngelCode bitmap
// fonts with [LoadBitmapFont].
//
// # ECS
//
// The bramble/ecs package provides [Donburi] components and systems that draw
// sprites and labels through the same renderer.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package bramble
