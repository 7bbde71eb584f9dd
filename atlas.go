package bramble

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
)

// Region is a named sub-rectangle of an atlas page.
type Region struct {
	Texture *Texture
	// Rect is the region in page pixels as it appears in the page image.
	// For rotated regions the width and height are those of the stored,
	// rotated pixels.
	Rect Rect
	// Original is the untrimmed sprite size as authored.
	Original mgl32.Vec2
	// Offset is the trim offset within Original.
	Offset mgl32.Vec2
	// Rotated is true if the region is stored 90 degrees clockwise.
	Rotated bool
}

// Size returns the displayed size of the region, undoing rotation.
func (r Region) Size() mgl32.Vec2 {
	if r.Rotated {
		return mgl32.Vec2{r.Rect.Height, r.Rect.Width}
	}
	return mgl32.Vec2{r.Rect.Width, r.Rect.Height}
}

// UV returns the region's texture coordinates in quad corner order,
// unrotating regions the packer stored sideways.
func (r Region) UV(flipX, flipY bool) [QuadVertexCount]mgl32.Vec2 {
	rect := r.Rect
	uv := GenerateUV(r.Texture.Size(), &rect, false, false)
	if r.Rotated {
		// Stored clockwise: sprite TR, TL, BL, BR sit at page BR, TR, TL, BL.
		uv = [QuadVertexCount]mgl32.Vec2{uv[3], uv[0], uv[1], uv[2]}
	}
	if flipX {
		uv = flipUVX(uv)
	}
	if flipY {
		uv = flipUVY(uv)
	}
	return uv
}

// Request builds a draw request for the region with its top-left corner at
// position.
func (r Region) Request(position, scale mgl32.Vec2, color Color) VerticesRequest {
	return VerticesRequest{
		Texture:   r.Texture,
		Positions: GeneratePositions(position, r.Size(), unitScale(scale), 0, OriginTopLeft),
		TexCoords: r.UV(false, false),
		Color:     color,
	}
}

// Atlas holds one or more page textures and a map of named regions.
type Atlas struct {
	Pages    []*Texture
	regions  map[string]Region
	registry *TextureRegistry
	missing  *Texture
}

const missingTextureName = "bramble/missing"

// Region returns the region registered under name. Unknown names log a
// warning and return a 1x1 magenta placeholder.
func (a *Atlas) Region(name string) Region {
	if r, ok := a.regions[name]; ok {
		return r
	}
	logger.Warn("atlas region not found, using placeholder", "region", name)
	return a.placeholder()
}

// Lookup returns the region registered under name and whether it exists.
func (a *Atlas) Lookup(name string) (Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of regions.
func (a *Atlas) Len() int { return len(a.regions) }

// Names returns the region names in no particular order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.regions))
	for name := range a.regions {
		names = append(names, name)
	}
	return names
}

func (a *Atlas) placeholder() Region {
	if a.missing == nil || a.missing.Released() {
		if t, err := a.registry.Get(missingTextureName); err == nil && !t.Released() {
			a.missing = t
		} else {
			a.missing = a.registry.FromColor(missingTextureName, Color{1, 0, 1, 1})
		}
	}
	return Region{
		Texture:  a.missing,
		Rect:     Rect{Width: 1, Height: 1},
		Original: mgl32.Vec2{1, 1},
	}
}

// LoadAtlas parses TexturePacker JSON data and binds its regions to the
// given page textures. Both the hash format (a single "frames" object) and
// the array format ("textures" with per-page frame lists) are accepted.
func LoadAtlas(registry *TextureRegistry, jsonData []byte, pages []*Texture) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("bramble: parse atlas: %w", err)
	}

	atlas := &Atlas{
		Pages:    pages,
		regions:  make(map[string]Region),
		registry: registry,
	}

	var err error
	switch {
	case probe.Textures != nil:
		err = atlas.parseArray(probe.Textures)
	case probe.Frames != nil:
		err = atlas.parseHash(probe.Frames, 0)
	default:
		err = errors.New(`bramble: atlas has neither "frames" nor "textures"`)
	}
	if err != nil {
		return nil, err
	}
	return atlas, nil
}

// LoadAtlasFile reads a TexturePacker JSON file and loads its page images,
// resolved relative to the JSON file, through the registry.
func LoadAtlasFile(registry *TextureRegistry, path string) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bramble: load atlas: %w", err)
	}
	images, err := atlasImages(data)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	pages := make([]*Texture, 0, len(images))
	for _, name := range images {
		tex, err := registry.Load(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("bramble: load atlas page: %w", err)
		}
		pages = append(pages, tex)
	}
	return LoadAtlas(registry, data, pages)
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonPage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

// atlasImages lists the page image files named by the atlas JSON.
func atlasImages(data []byte) ([]string, error) {
	var doc struct {
		Meta struct {
			Image string `json:"image"`
		} `json:"meta"`
		Textures []jsonPage `json:"textures"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("bramble: parse atlas: %w", err)
	}
	if len(doc.Textures) > 0 {
		images := make([]string, len(doc.Textures))
		for i, p := range doc.Textures {
			images[i] = p.Image
		}
		return images, nil
	}
	if doc.Meta.Image == "" {
		return nil, errors.New("bramble: atlas names no page image")
	}
	return []string{doc.Meta.Image}, nil
}

func (a *Atlas) parseHash(raw json.RawMessage, page int) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("bramble: parse atlas frames: %w", err)
	}
	return a.addFrames(frames, page)
}

func (a *Atlas) parseArray(raw json.RawMessage) error {
	var pages []jsonPage
	if err := json.Unmarshal(raw, &pages); err != nil {
		return fmt.Errorf("bramble: parse atlas textures: %w", err)
	}
	for i, p := range pages {
		if err := a.addFrames(p.Frames, i); err != nil {
			return err
		}
	}
	return nil
}

func (a *Atlas) addFrames(frames map[string]jsonFrame, page int) error {
	if page >= len(a.Pages) || a.Pages[page] == nil {
		return fmt.Errorf("bramble: atlas references page %d but %d pages were given", page, len(a.Pages))
	}
	tex := a.Pages[page]
	for name, f := range frames {
		a.regions[name] = Region{
			Texture:  tex,
			Rect:     Rect{X: float32(f.Frame.X), Y: float32(f.Frame.Y), Width: float32(f.Frame.W), Height: float32(f.Frame.H)},
			Original: mgl32.Vec2{float32(f.SourceSize.W), float32(f.SourceSize.H)},
			Offset:   mgl32.Vec2{float32(f.SpriteSourceSize.X), float32(f.SpriteSourceSize.Y)},
			Rotated:  f.Rotated,
		}
	}
	return nil
}
