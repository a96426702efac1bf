package mapgpu

import (
	"time"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/mapgpu/clip"
	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/tile"
)

// RenderTile is one tile of a source as it is drawn this frame.
type RenderTile struct {
	ID tile.UnwrappedID
	// Matrix maps tile units to device coordinates. Sources fill it in
	// StartRender.
	Matrix f32.Mat4
	// Clip is assigned by the clip generator in StartRender.
	Clip clip.ID

	// Complete is false while the tile is still loading; it shows in
	// ParseStatus labels.
	Complete bool
	Modified time.Time
	Expires  time.Time
}

var _ clip.Renderable = (*RenderTile)(nil)

func (t *RenderTile) TileID() tile.UnwrappedID { return t.ID }

func (t *RenderTile) SetClip(id clip.ID) { t.Clip = id }

// Bucket is the drawable geometry of one layer in one tile.
type Bucket interface {
	NeedsUpload() bool
	Upload(ctx *gfx.Context) error
	// NeedsClipping reports whether draws must be limited to the tile's
	// own stencil region.
	NeedsClipping() bool
	Render(p *Painter, params *PaintParameters, layer Layer, tile *RenderTile) error
}

// RenderItem is one entry of the frame's draw order. Tile and Bucket are
// nil for background and custom layers.
type RenderItem struct {
	Layer  Layer
	Tile   *RenderTile
	Bucket Bucket
}

// Source is a tile source taking part in clipping.
type Source interface {
	ID() string
	// StartRender computes tile matrices and registers the source's tiles
	// with the clip generator.
	StartRender(gen *clip.Generator, proj f32.Mat4, view ViewState)
	// FinishRender runs after both passes, for per-tile debug output.
	FinishRender(p *Painter) error
}

// Uploader is a shared GPU resource, such as a sprite or glyph atlas,
// uploaded at the start of each frame.
type Uploader interface {
	Upload(ctx *gfx.Context) error
}

// RenderData is the frame snapshot. It is not modified during Render.
type RenderData struct {
	// Order lists items bottom to top.
	Order           []RenderItem
	Sources         []Source
	BackgroundColor gfx.Color
	View            ViewState
}

// TileSet is a Source backed by a fixed list of tiles.
type TileSet struct {
	Name  string
	Tiles []*RenderTile
}

var _ Source = (*TileSet)(nil)

func (s *TileSet) ID() string { return s.Name }

func (s *TileSet) StartRender(gen *clip.Generator, proj f32.Mat4, view ViewState) {
	rs := make([]clip.Renderable, len(s.Tiles))
	for i, t := range s.Tiles {
		t.Matrix = Multiply(proj, view.TileMatrix(t.ID))
		rs[i] = t
	}
	gen.Update(rs)
}

func (s *TileSet) FinishRender(p *Painter) error {
	for _, t := range s.Tiles {
		if err := p.RenderTileDebug(t); err != nil {
			return err
		}
	}
	return nil
}
