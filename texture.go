package bramble

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// TextureID is a registry-local texture identifier. IDs are handed out in
// increasing order and never reused by the same registry.
type TextureID uint32

// Texture is a GPU image owned by a TextureRegistry. The pointer is the
// texture's identity: the batcher compares *Texture values, and a hot reload
// swaps the underlying image without changing the pointer.
type Texture struct {
	id     TextureID
	name   string
	path   string
	image  *ebiten.Image
	width  int
	height int
}

// ID returns the registry-assigned identifier.
func (t *Texture) ID() TextureID { return t.id }

// Name returns the name the texture was registered under.
func (t *Texture) Name() string { return t.name }

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Size returns the texture dimensions as a vector.
func (t *Texture) Size() mgl32.Vec2 {
	return mgl32.Vec2{float32(t.width), float32(t.height)}
}

// Image returns the backing Ebitengine image, or nil once released.
func (t *Texture) Image() *ebiten.Image { return t.image }

// Released reports whether the texture's image has been freed.
func (t *Texture) Released() bool { return t.image == nil }

// ImageFormat names an encoded image format accepted by GenerateTexture.
type ImageFormat uint8

const (
	FormatAuto ImageFormat = iota // sniff the format from the data
	FormatPNG
	FormatJPEG
	FormatBMP
	FormatWebP
)

func (f ImageFormat) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatBMP:
		return "bmp"
	case FormatWebP:
		return "webp"
	default:
		return "auto"
	}
}

// formatFromExt maps a file extension to an ImageFormat.
func formatFromExt(path string) ImageFormat {
	switch filepath.Ext(path) {
	case ".png", ".PNG":
		return FormatPNG
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return FormatJPEG
	case ".bmp", ".BMP":
		return FormatBMP
	case ".webp", ".WEBP":
		return FormatWebP
	default:
		return FormatAuto
	}
}

// TextureRegistry creates, names and releases textures and optionally
// reloads them when their source files change on disk.
//
// All methods except the fsnotify event loop run on the game goroutine.
type TextureRegistry struct {
	nextID TextureID
	byName map[string]*Texture
	byPath map[string]*Texture

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewTextureRegistry returns an empty registry.
func NewTextureRegistry() *TextureRegistry {
	return &TextureRegistry{
		byName:  make(map[string]*Texture),
		byPath:  make(map[string]*Texture),
		pending: make(map[string]struct{}),
	}
}

func (r *TextureRegistry) register(name string, img *ebiten.Image) *Texture {
	r.nextID++
	b := img.Bounds()
	t := &Texture{
		id:     r.nextID,
		name:   name,
		image:  img,
		width:  b.Dx(),
		height: b.Dy(),
	}
	if old, ok := r.byName[name]; ok {
		logger.Warn("texture name reused, previous texture is no longer reachable by name",
			"name", name, "old_id", old.id, "new_id", t.id)
	}
	r.byName[name] = t
	return t
}

// GenerateTexture decodes data in the given format and uploads it as a new
// texture registered under name.
func (r *TextureRegistry) GenerateTexture(name string, data []byte, format ImageFormat) (*Texture, error) {
	img, err := decodeImage(data, format)
	if err != nil {
		return nil, fmt.Errorf("bramble: generate texture %q: %w", name, err)
	}
	return r.register(name, ebiten.NewImageFromImage(img)), nil
}

// FromColor creates a 1x1 texture filled with c.
func (r *TextureRegistry) FromColor(name string, c Color) *Texture {
	img := ebiten.NewImage(1, 1)
	img.Fill(c)
	return r.register(name, img)
}

// FromImage registers an existing Ebitengine image. The registry takes
// ownership and deallocates it on Release.
func (r *TextureRegistry) FromImage(name string, img *ebiten.Image) *Texture {
	return r.register(name, img)
}

// Load reads and decodes an image file. The texture is registered under the
// path as given and becomes eligible for hot reload once Watch covers its
// directory. Loading the same path twice returns the existing texture.
func (r *TextureRegistry) Load(path string) (*Texture, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("bramble: load %s: %w", path, err)
	}
	if t, ok := r.byPath[abs]; ok && !t.Released() {
		return t, nil
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("bramble: load %s: %w", path, err)
	}
	t, err := r.GenerateTexture(path, data, formatFromExt(abs))
	if err != nil {
		return nil, err
	}
	t.path = abs
	r.byPath[abs] = t
	logger.Debug("texture loaded", "path", path, "id", t.id, "w", t.width, "h", t.height)
	return t, nil
}

// Get returns the texture registered under name.
func (r *TextureRegistry) Get(name string) (*Texture, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTexture, name)
	}
	return t, nil
}

// Len returns the number of registered textures.
func (r *TextureRegistry) Len() int {
	return len(r.byName)
}

// Release frees the texture's image and unregisters it. Drawing a released
// texture makes the backend report ErrTextureReleased.
func (r *TextureRegistry) Release(t *Texture) {
	if t == nil || t.Released() {
		return
	}
	t.image.Deallocate()
	t.image = nil
	if r.byName[t.name] == t {
		delete(r.byName, t.name)
	}
	if t.path != "" && r.byPath[t.path] == t {
		delete(r.byPath, t.path)
	}
}

// decodeImage decodes data with the decoder for format, or sniffs the format
// when format is FormatAuto.
func decodeImage(data []byte, format ImageFormat) (image.Image, error) {
	rd := bytes.NewReader(data)
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatPNG:
		img, err = png.Decode(rd)
	case FormatJPEG:
		img, err = jpeg.Decode(rd)
	case FormatBMP:
		img, err = bmp.Decode(rd)
	case FormatWebP:
		img, err = webp.Decode(rd)
	case FormatAuto:
		img, _, err = image.Decode(rd)
		if err == image.ErrFormat {
			return nil, ErrUnsupportedFormat
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}
	return img, nil
}
