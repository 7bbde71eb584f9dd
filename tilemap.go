package bramble

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GID flag bits, following the Tiled map format.
const (
	TileFlipH    uint32 = 1 << 31
	TileFlipV    uint32 = 1 << 30
	TileFlipD    uint32 = 1 << 29 // swap x and y, applied before H and V
	tileFlagMask        = TileFlipH | TileFlipV | TileFlipD
)

// AnimFrame is one frame of a tile animation.
type AnimFrame struct {
	GID      uint32 // no flag bits
	Duration int    // milliseconds
}

// tileUVOrder[flags][i] is the source corner whose uv lands on corner i.
// Indexed by (flipH << 2) | (flipV << 1) | flipD, corners TR, TL, BL, BR.
var tileUVOrder = [8][QuadVertexCount]int{
	{0, 1, 2, 3}, // none
	{2, 1, 0, 3}, // D
	{3, 2, 1, 0}, // V
	{3, 0, 1, 2}, // V+D
	{1, 0, 3, 2}, // H
	{1, 2, 3, 0}, // H+D
	{2, 3, 0, 1}, // H+V
	{0, 3, 2, 1}, // H+V+D
}

// TileLayer is a grid of tile GIDs drawn as one quad per visible, non-empty
// tile. GID 0 is empty; regions is indexed by GID with flag bits masked off.
type TileLayer struct {
	// Position is the world position of the layer's top-left corner.
	Position mgl32.Vec2
	Color    Color

	tileW, tileH float32
	width        int
	height       int
	data         []uint32
	regions      []Region

	anims       map[uint32][]AnimFrame
	animElapsed int
}

// NewTileLayer creates a width x height layer. data is row-major and must
// hold exactly width*height GIDs; the layer keeps it without copying.
func NewTileLayer(width, height int, tileW, tileH float32, data []uint32, regions []Region) (*TileLayer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bramble: tile layer size %dx%d must be positive", width, height)
	}
	if !(tileW > 0) || !(tileH > 0) {
		return nil, fmt.Errorf("bramble: tile size %vx%v must be positive", tileW, tileH)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("bramble: tile layer has %d tiles, want %d", len(data), width*height)
	}
	return &TileLayer{
		tileW:   tileW,
		tileH:   tileH,
		width:   width,
		height:  height,
		data:    data,
		regions: regions,
	}, nil
}

// Size returns the layer size in tiles.
func (l *TileLayer) Size() (width, height int) { return l.width, l.height }

// Tile returns the GID at (col, row), or 0 outside the layer.
func (l *TileLayer) Tile(col, row int) uint32 {
	if col < 0 || col >= l.width || row < 0 || row >= l.height {
		return 0
	}
	return l.data[row*l.width+col]
}

// SetTile replaces the GID at (col, row). Out-of-range cells are ignored.
func (l *TileLayer) SetTile(col, row int, gid uint32) {
	if col < 0 || col >= l.width || row < 0 || row >= l.height {
		return
	}
	l.data[row*l.width+col] = gid
}

// SetAnimations sets animations keyed by base GID.
func (l *TileLayer) SetAnimations(anims map[uint32][]AnimFrame) {
	l.anims = anims
}

// Update advances tile animations by dt seconds.
func (l *TileLayer) Update(dt float64) {
	l.animElapsed += int(dt * 1000)
}

// VisibleRange returns the inclusive tile range overlapping view, clamped to
// the layer. ok is false when nothing overlaps.
func (l *TileLayer) VisibleRange(view Rect) (col0, row0, col1, row1 int, ok bool) {
	x := view.X - l.Position.X()
	y := view.Y - l.Position.Y()
	col0 = max(int(math.Floor(float64(x/l.tileW))), 0)
	row0 = max(int(math.Floor(float64(y/l.tileH))), 0)
	col1 = min(int(math.Ceil(float64((x+view.Width)/l.tileW)))-1, l.width-1)
	row1 = min(int(math.Ceil(float64((y+view.Height)/l.tileH)))-1, l.height-1)
	return col0, row0, col1, row1, col0 <= col1 && row0 <= row1
}

// Draw submits the tiles overlapping view, typically the camera's ViewRect,
// and returns how many quads it drew.
func (l *TileLayer) Draw(r Renderer2D, view Rect) int {
	col0, row0, col1, row1, ok := l.VisibleRange(view)
	if !ok {
		return 0
	}
	drawn := 0
	for row := row0; row <= row1; row++ {
		for col := col0; col <= col1; col++ {
			gid := l.data[row*l.width+col]
			if gid == 0 {
				continue
			}
			flags := gid & tileFlagMask
			id := l.resolve(gid &^ tileFlagMask)
			if int(id) >= len(l.regions) || l.regions[id].Texture == nil {
				continue
			}
			region := l.regions[id]

			x := l.Position.X() + float32(col)*l.tileW
			y := l.Position.Y() + float32(row)*l.tileH
			r.DrawVertices(VerticesRequest{
				Texture: region.Texture,
				Positions: [QuadVertexCount]mgl32.Vec3{
					{x + l.tileW, y, 0},
					{x, y, 0},
					{x, y + l.tileH, 0},
					{x + l.tileW, y + l.tileH, 0},
				},
				TexCoords: tileUV(region, flags),
				Color:     l.Color,
			})
			drawn++
		}
	}
	return drawn
}

// resolve maps an animated base GID to its current frame.
func (l *TileLayer) resolve(id uint32) uint32 {
	frames, ok := l.anims[id]
	if !ok || len(frames) == 0 {
		return id
	}
	total := 0
	for _, f := range frames {
		total += f.Duration
	}
	if total <= 0 {
		return id
	}
	elapsed := l.animElapsed % total
	acc := 0
	for _, f := range frames {
		acc += f.Duration
		if elapsed < acc {
			return f.GID
		}
	}
	return frames[0].GID
}

func tileUV(region Region, flags uint32) [QuadVertexCount]mgl32.Vec2 {
	uv := region.UV(false, false)
	idx := 0
	if flags&TileFlipH != 0 {
		idx |= 4
	}
	if flags&TileFlipV != 0 {
		idx |= 2
	}
	if flags&TileFlipD != 0 {
		idx |= 1
	}
	order := tileUVOrder[idx]
	return [QuadVertexCount]mgl32.Vec2{uv[order[0]], uv[order[1]], uv[order[2]], uv[order[3]]}
}
