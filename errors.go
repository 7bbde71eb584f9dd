package bramble

import "errors"

var (
	// ErrNotDrawing is returned when a frame operation runs outside BeginDraw/EndDraw.
	ErrNotDrawing = errors.New("bramble: not between BeginDraw and EndDraw")
	// ErrAlreadyDrawing is returned by BeginDraw when a frame is already open.
	ErrAlreadyDrawing = errors.New("bramble: BeginDraw called twice without EndDraw")
	// ErrNoTarget is returned by a backend asked to draw without a render target.
	ErrNoTarget = errors.New("bramble: backend has no render target")
	// ErrTextureReleased is returned when a released texture reaches draw submission.
	ErrTextureReleased = errors.New("bramble: texture has been released")
	// ErrUnsupportedFormat is returned for image data no decoder accepts.
	ErrUnsupportedFormat = errors.New("bramble: unsupported image format")
	// ErrUnknownTexture is returned when a texture name is not registered.
	ErrUnknownTexture = errors.New("bramble: unknown texture")
)
