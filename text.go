package bramble

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/fzipp/bmfont"
	"github.com/go-gl/mathgl/mgl32"
)

// asciiGlyphCount is the size of the fixed glyph table for ASCII runes.
const asciiGlyphCount = 128

type glyph struct {
	region   Rect
	xOffset  float32
	yOffset  float32
	xAdvance float32
	page     int
}

// BitmapFont is an AngelCode BMFont whose pages live in a TextureRegistry.
// Glyph metrics are in font pixels at the font's native size.
type BitmapFont struct {
	face       string
	size       float32
	lineHeight float32
	base       float32
	pages      []*Texture

	asciiGlyphs [asciiGlyphCount]glyph
	asciiSet    [asciiGlyphCount]bool
	extGlyphs   map[rune]*glyph

	kernings map[[2]rune]float32
}

// GlyphEmitter receives one glyph quad: its page texture, corners in
// TR, TL, BL, BR order and matching texture coordinates.
type GlyphEmitter func(tex *Texture, positions [QuadVertexCount]mgl32.Vec3, uvs [QuadVertexCount]mgl32.Vec2)

// LoadBitmapFont reads a .fnt descriptor and loads its page images,
// resolved relative to the descriptor, through the registry.
func LoadBitmapFont(path string, registry *TextureRegistry) (*BitmapFont, error) {
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("bramble: load font %s: %w", path, err)
	}
	d := font.Descriptor

	f := &BitmapFont{
		face:       d.Info.Face,
		size:       float32(d.Info.Size),
		lineHeight: float32(d.Common.LineHeight),
		base:       float32(d.Common.Base),
	}
	if f.size < 0 {
		// Negative sizes mean the size matches cell height rather than char height.
		f.size = -f.size
	}
	if f.lineHeight <= 0 {
		return nil, fmt.Errorf("bramble: font %s has no line height", path)
	}
	if len(d.Chars) == 0 {
		return nil, fmt.Errorf("bramble: font %s has no chars", path)
	}

	dir := filepath.Dir(path)
	for _, p := range d.Pages {
		id := int(p.ID)
		for len(f.pages) <= id {
			f.pages = append(f.pages, nil)
		}
		tex, err := registry.Load(filepath.Join(dir, p.File))
		if err != nil {
			return nil, fmt.Errorf("bramble: load font page %d: %w", id, err)
		}
		f.pages[id] = tex
	}

	for _, c := range d.Chars {
		g := glyph{
			region:   Rect{X: float32(c.X), Y: float32(c.Y), Width: float32(c.Width), Height: float32(c.Height)},
			xOffset:  float32(c.XOffset),
			yOffset:  float32(c.YOffset),
			xAdvance: float32(c.XAdvance),
			page:     int(c.Page),
		}
		if g.page >= len(f.pages) || f.pages[g.page] == nil {
			return nil, fmt.Errorf("bramble: font %s: char %d references missing page %d", path, c.ID, g.page)
		}
		f.setGlyph(rune(c.ID), g)
	}

	for pair, k := range d.Kerning {
		if f.kernings == nil {
			f.kernings = make(map[[2]rune]float32)
		}
		f.kernings[[2]rune{rune(pair.First), rune(pair.Second)}] = float32(k.Amount)
	}

	logger.Debug("font loaded", "face", f.face, "size", f.size, "glyphs", len(d.Chars), "pages", len(f.pages))
	return f, nil
}

func (f *BitmapFont) setGlyph(r rune, g glyph) {
	if r >= 0 && r < asciiGlyphCount {
		f.asciiGlyphs[r] = g
		f.asciiSet[r] = true
		return
	}
	if f.extGlyphs == nil {
		f.extGlyphs = make(map[rune]*glyph)
	}
	f.extGlyphs[r] = &g
}

func (f *BitmapFont) glyph(r rune) *glyph {
	if r >= 0 && r < asciiGlyphCount {
		if f.asciiSet[r] {
			return &f.asciiGlyphs[r]
		}
		return nil
	}
	return f.extGlyphs[r]
}

func (f *BitmapFont) kern(first, second rune) float32 {
	if f.kernings == nil {
		return 0
	}
	return f.kernings[[2]rune{first, second}]
}

// Face returns the font face name.
func (f *BitmapFont) Face() string { return f.face }

// Size returns the native font size in pixels.
func (f *BitmapFont) Size() float32 { return f.size }

// LineHeight returns the distance between baselines at the native size.
func (f *BitmapFont) LineHeight() float32 { return f.lineHeight }

// Base returns the distance from the top of a line to the baseline.
func (f *BitmapFont) Base() float32 { return f.base }

// Pages returns the font's page textures indexed by page ID.
func (f *BitmapFont) Pages() []*Texture { return f.pages }

// HasGlyph reports whether the font defines r.
func (f *BitmapFont) HasGlyph(r rune) bool { return f.glyph(r) != nil }

func (f *BitmapFont) scaleFor(size float32) float32 {
	if size <= 0 || f.size == 0 {
		return 1
	}
	return size / f.size
}

// Shape lays out text with its first line's top-left corner at position,
// scaled so the font renders at size pixels (zero means native size), and
// calls emit once per visible glyph. Newlines start a new line; runes the
// font lacks are skipped.
func (f *BitmapFont) Shape(text string, position mgl32.Vec2, size float32, emit GlyphEmitter) {
	scale := f.scaleFor(size)
	cursorX := position.X()
	lineY := position.Y()
	var prev rune
	hasPrev := false

	for i := 0; i < len(text); {
		r, n := utf8.DecodeRuneInString(text[i:])
		i += n

		if r == '\n' {
			cursorX = position.X()
			lineY += f.lineHeight * scale
			hasPrev = false
			continue
		}

		g := f.glyph(r)
		if g == nil {
			hasPrev = false
			continue
		}
		if hasPrev {
			cursorX += f.kern(prev, r) * scale
		}

		if g.region.Width > 0 && g.region.Height > 0 {
			x := cursorX + g.xOffset*scale
			y := lineY + g.yOffset*scale
			w := g.region.Width * scale
			h := g.region.Height * scale
			positions := [QuadVertexCount]mgl32.Vec3{
				{x + w, y, 0},
				{x, y, 0},
				{x, y + h, 0},
				{x + w, y + h, 0},
			}
			page := f.pages[g.page]
			region := g.region
			emit(page, positions, GenerateUV(page.Size(), &region, false, false))
		}

		cursorX += g.xAdvance * scale
		prev = r
		hasPrev = true
	}
}

// MeasureString returns the width of the widest line and the total height
// of text rendered at size pixels.
func (f *BitmapFont) MeasureString(text string, size float32) (width, height float32) {
	scale := f.scaleFor(size)
	var cursorX float32
	var prev rune
	hasPrev := false
	lines := 1

	for i := 0; i < len(text); {
		r, n := utf8.DecodeRuneInString(text[i:])
		i += n

		if r == '\n' {
			width = max(width, cursorX)
			cursorX = 0
			lines++
			hasPrev = false
			continue
		}

		g := f.glyph(r)
		if g == nil {
			hasPrev = false
			continue
		}
		if hasPrev {
			cursorX += f.kern(prev, r)
		}
		cursorX += g.xAdvance
		prev = r
		hasPrev = true
	}

	width = max(width, cursorX)
	return width * scale, float32(lines) * f.lineHeight * scale
}

// DrawText shapes text with font and submits every glyph to r.
func DrawText(r Renderer2D, font *BitmapFont, text string, position mgl32.Vec2, size float32, color Color) {
	font.Shape(text, position, size, func(tex *Texture, positions [QuadVertexCount]mgl32.Vec3, uvs [QuadVertexCount]mgl32.Vec2) {
		r.DrawVertices(VerticesRequest{
			Texture:   tex,
			Positions: positions,
			TexCoords: uvs,
			Color:     color,
		})
	})
}
