package bramble

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps a logical render size onto the window and produces the
// orthographic projection the renderer draws with.
type Camera struct {
	// Position is the world-space point placed at the view's anchor.
	Position mgl32.Vec2
	// Offset is added to Position, e.g. for screen shake.
	Offset mgl32.Vec2
	// Scale multiplies the view size per axis. (1, 1) shows exactly
	// RenderSize world units in ScaleKeep mode; larger values show more.
	Scale mgl32.Vec2
	// RenderSize is the logical resolution the game is authored for.
	RenderSize mgl32.Vec2
	// ScaleMode decides how the view reacts to the window size.
	ScaleMode ScaleMode
	// Anchor decides whether Position is the view's top-left or center.
	Anchor Anchor

	// BoundsEnabled clamps Position so the view stays within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the view is clamped to.
	Bounds Rect

	windowSize mgl32.Vec2

	scrollTween *scrollAnim
	zoomTween   *gween.Tween
}

// NewCamera creates a camera for a renderWidth x renderHeight logical
// resolution. The window size starts equal to the render size until the
// renderer reports the real one.
func NewCamera(renderWidth, renderHeight int, mode ScaleMode, anchor Anchor) *Camera {
	size := mgl32.Vec2{float32(renderWidth), float32(renderHeight)}
	return &Camera{
		Scale:      mgl32.Vec2{1, 1},
		RenderSize: size,
		ScaleMode:  mode,
		Anchor:     anchor,
		windowSize: size,
	}
}

// SetWindowSize records the window size in pixels. Renderer.Resize and
// Renderer.SetCamera call it.
func (c *Camera) SetWindowSize(width, height int) {
	c.windowSize = mgl32.Vec2{float32(width), float32(height)}
}

// WindowSize returns the last window size recorded.
func (c *Camera) WindowSize() mgl32.Vec2 {
	return c.windowSize
}

// ViewRect returns the world-space rectangle currently visible.
func (c *Camera) ViewRect() Rect {
	return ComputeViewRect(c.RenderSize, c.windowSize, c.Position, c.Offset, c.Scale, c.ScaleMode, c.Anchor)
}

// Projection returns the orthographic projection for ViewRect.
func (c *Camera) Projection() mgl32.Mat4 {
	return ComputeProjection(c.ViewRect())
}

// ComputeViewRect computes the visible world rectangle.
//
//	ScaleKeep:       scale * renderSize
//	ScaleKeepWidth:  w = scale.x * render.x, h = window.y * w / window.x
//	ScaleKeepHeight: h = scale.y * render.y, w = window.x * h / window.y
//	ScaleExpand:     scale * windowSize
//
// The origin is position + offset, moved up-left by half the size for
// AnchorCenter. A window axis of zero falls back to the render size.
func ComputeViewRect(renderSize, windowSize, position, offset, scale mgl32.Vec2, mode ScaleMode, anchor Anchor) Rect {
	if windowSize.X() <= 0 || windowSize.Y() <= 0 {
		windowSize = renderSize
	}

	var w, h float32
	switch mode {
	case ScaleKeepWidth:
		w = scale.X() * renderSize.X()
		h = windowSize.Y() * (w / windowSize.X())
	case ScaleKeepHeight:
		h = scale.Y() * renderSize.Y()
		w = windowSize.X() * (h / windowSize.Y())
	case ScaleExpand:
		w = scale.X() * windowSize.X()
		h = scale.Y() * windowSize.Y()
	default:
		w = scale.X() * renderSize.X()
		h = scale.Y() * renderSize.Y()
	}

	origin := position.Add(offset)
	if anchor == AnchorCenter {
		origin = origin.Sub(mgl32.Vec2{w / 2, h / 2})
	}
	return Rect{X: origin.X(), Y: origin.Y(), Width: w, Height: h}
}

// ComputeProjection returns a GL-style orthographic projection of rect:
// left/right = X/X+Width, top/bottom = Y/Y+Height, near/far = -1/1.
// Y grows downward in world space and upward in clip space.
func ComputeProjection(rect Rect) mgl32.Mat4 {
	if rect.Width == 0 || rect.Height == 0 {
		return mgl32.Ident4()
	}
	return mgl32.Ortho(rect.X, rect.X+rect.Width, rect.Y+rect.Height, rect.Y, -1, 1)
}

// ScreenToWorld converts window pixel coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) mgl32.Vec2 {
	ws := c.effectiveWindow()
	ndc := mgl32.Vec4{sx/ws.X()*2 - 1, 1 - sy/ws.Y()*2, 0, 1}
	world := c.Projection().Inv().Mul4x1(ndc)
	return mgl32.Vec2{world.X(), world.Y()}
}

// WorldToScreen converts world coordinates to window pixel coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) mgl32.Vec2 {
	ws := c.effectiveWindow()
	clip := c.Projection().Mul4x1(mgl32.Vec4{wx, wy, 0, 1})
	return mgl32.Vec2{(clip.X() + 1) * 0.5 * ws.X(), (1 - clip.Y()) * 0.5 * ws.Y()}
}

func (c *Camera) effectiveWindow() mgl32.Vec2 {
	if c.windowSize.X() <= 0 || c.windowSize.Y() <= 0 {
		return c.RenderSize
	}
	return c.windowSize
}

// ScrollTo animates Position to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float32, duration float32, easeFn ease.TweenFunc) {
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(c.Position.X(), x, duration, easeFn),
		tweenY: gween.New(c.Position.Y(), y, duration, easeFn),
	}
}

// ZoomTo animates both Scale axes to scale over duration seconds.
func (c *Camera) ZoomTo(scale float32, duration float32, easeFn ease.TweenFunc) {
	c.zoomTween = gween.New(c.Scale.X(), scale, duration, easeFn)
}

// Scrolling reports whether a ScrollTo or ZoomTo animation is running.
func (c *Camera) Scrolling() bool {
	return c.scrollTween != nil || c.zoomTween != nil
}

// SetBounds enables bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// Update advances scroll and zoom animations and applies bounds clamping.
// The engine calls it once per tick with the tick's delta in seconds.
func (c *Camera) Update(dt float32) {
	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.Position[0] = val
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Position[1] = val
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.zoomTween != nil {
		val, done := c.zoomTween.Update(dt)
		c.Scale = mgl32.Vec2{val, val}
		if done {
			c.zoomTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts Position so the view rectangle stays within
// Bounds. A view larger than Bounds is centered on it.
func (c *Camera) clampToBounds() {
	view := c.ViewRect()
	// Shift between Position and the view origin, independent of Position.
	dx := view.X - c.Position.X()
	dy := view.Y - c.Position.Y()

	minX := c.Bounds.X - dx
	maxX := c.Bounds.X + c.Bounds.Width - view.Width - dx
	minY := c.Bounds.Y - dy
	maxY := c.Bounds.Y + c.Bounds.Height - view.Height - dy

	if minX > maxX {
		c.Position[0] = (minX + maxX) / 2
	} else {
		c.Position[0] = mgl32.Clamp(c.Position.X(), minX, maxX)
	}
	if minY > maxY {
		c.Position[1] = (minY + maxY) / 2
	} else {
		c.Position[1] = mgl32.Clamp(c.Position.Y(), minY, maxY)
	}
}
