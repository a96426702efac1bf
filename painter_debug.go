package mapgpu

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/internal/debugdraw"
	"github.com/gogpu/mapgpu/tile"
)

// labelOffset is the distance of a tile label from the tile corner, in
// pixels.
const labelOffset = 4

type debugLabel struct {
	texture       gfx.TextureID
	width, height float32
	frame         uint64
}

// debugOverlay holds the lazily created assets of tile debug drawing.
type debugOverlay struct {
	palette *debugdraw.Palette
	labeler *debugdraw.Labeler
	labels  map[string]*debugLabel
	failed  bool
}

func (d *debugOverlay) init() error {
	if d.labeler != nil {
		return nil
	}
	pal, err := debugdraw.NewPalette(tile.MaxZoom + 1)
	if err != nil {
		// Borders fall back to a single color.
		pal = nil
	}
	l, err := debugdraw.NewLabeler(debugdraw.DefaultLabelSize)
	if err != nil {
		return err
	}
	d.palette, d.labeler = pal, l
	d.labels = make(map[string]*debugLabel)
	return nil
}

// label returns the texture of text, rasterising it on first use.
func (d *debugOverlay) label(ctx *gfx.Context, text string, frame uint64) (*debugLabel, error) {
	if l, ok := d.labels[text]; ok {
		l.frame = frame
		return l, nil
	}
	img, err := d.labeler.Render(text)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	tex, err := ctx.CreateTexture(&gfx.TextureDescriptor{
		Label:  "debug label",
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Format: debugdraw.LabelFormat,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.UploadTexture(tex, img.Pix); err != nil {
		ctx.AbandonTexture(tex)
		return nil, err
	}
	l := &debugLabel{texture: tex, width: float32(b.Dx()), height: float32(b.Dy()), frame: frame}
	d.labels[text] = l
	return l, nil
}

// evict releases labels not drawn in frame.
func (d *debugOverlay) evict(ctx *gfx.Context, frame uint64) {
	for text, l := range d.labels {
		if l.frame != frame {
			ctx.AbandonTexture(l.texture)
			delete(d.labels, text)
		}
	}
}

func (d *debugOverlay) close(ctx *gfx.Context) error {
	for _, l := range d.labels {
		ctx.AbandonTexture(l.texture)
	}
	d.labels = nil
	if d.labeler == nil {
		return nil
	}
	err := d.labeler.Close()
	d.labeler = nil
	return err
}

// tileLabel formats the debug label of t for flags.
func tileLabel(t *RenderTile, flags DebugFlags) string {
	var b strings.Builder
	b.WriteString(t.ID.String())
	if flags&ParseStatus != 0 && !t.Complete {
		b.WriteString(" (loading)")
	}
	if flags&Timestamps != 0 {
		if !t.Modified.IsZero() {
			fmt.Fprintf(&b, " modified %s", t.Modified.UTC().Format(time.RFC3339))
		}
		if !t.Expires.IsZero() {
			fmt.Fprintf(&b, " expires %s", t.Expires.UTC().Format(time.RFC3339))
		}
	}
	return b.String()
}

// RenderTileDebug draws the debug overlay of t as selected by the frame's
// debug flags: an outline in a per-zoom color and a label with the tile
// ID. It does nothing when no tile overlay is enabled.
func (p *Painter) RenderTileDebug(t *RenderTile) error {
	flags := p.frame.Debug
	if flags&(TileBorders|ParseStatus|Timestamps) == 0 {
		return nil
	}
	if p.debug.failed {
		return nil
	}
	if err := p.debug.init(); err != nil {
		// Debug output is optional; report once and stop trying.
		p.debug.failed = true
		p.logger.Warn("mapgpu: debug overlay unavailable", "err", err)
		return nil
	}

	prog := p.params.Shaders.Debug
	matrix, err := prog.Mat4("u_matrix")
	if err != nil {
		return err
	}
	color, err := prog.Color("u_color")
	if err != nil {
		return err
	}

	ctx := p.ctx
	ctx.Blend.Set(true)
	ctx.BlendFunc.Set(gfx.BlendFunc{Src: gputypes.BlendFactorOne, Dst: gputypes.BlendFactorOneMinusSrcAlpha})
	ctx.ColorMask.Set(gfx.ColorMaskAll)
	ctx.StencilMask.Set(0)
	ctx.DepthTest.Set(false)
	ctx.DepthMask.Set(false)
	p.setClipping(t.Clip)
	ctx.ActiveTexture.Set(0)

	if flags&(ParseStatus|Timestamps) != 0 {
		if err := p.renderTileLabel(t, flags); err != nil && !errors.Is(err, debugdraw.ErrEmptyLabel) {
			return err
		}
	}

	if flags&TileBorders != 0 {
		matrix.Set(t.Matrix)
		color.Set(p.debug.palette.At(int(t.ID.Canonical.Z)))
		prog.Bind(ctx)
		ctx.Texture[0].Set(p.buffers.white)
		ctx.VertexArray.Set(p.buffers.tileLineStrip)
		ctx.Draw(gputypes.PrimitiveTopologyLineStrip, 0, 5)
	}
	return nil
}

// renderTileLabel draws the label at the tile's top left corner with a
// constant on-screen size and a one pixel shadow.
func (p *Painter) renderTileLabel(t *RenderTile, flags DebugFlags) error {
	l, err := p.debug.label(p.ctx, tileLabel(t, flags), p.frames)
	if err != nil {
		return err
	}
	prog := p.params.Shaders.Debug
	matrix, err := prog.Mat4("u_matrix")
	if err != nil {
		return err
	}
	color, err := prog.Color("u_color")
	if err != nil {
		return err
	}

	// Tile units per pixel at the current zoom.
	tilePixels := TileSize * math.Exp2(p.view.Zoom()-float64(t.ID.Canonical.Z))
	upp := float32(Extent / tilePixels)

	ctx := p.ctx
	ctx.Texture[0].Set(l.texture)
	ctx.VertexArray.Set(p.buffers.unitQuad)
	for _, pass := range []struct {
		shift float32
		color gfx.Color
	}{
		{1, gfx.Black},
		{0, gfx.White},
	} {
		off := (labelOffset + pass.shift) * upp
		m := Multiply(t.Matrix, Multiply(Translate(off, off, 0), Scale(l.width*upp, l.height*upp, 1)))
		matrix.Set(m)
		color.Set(pass.color)
		prog.Bind(ctx)
		ctx.Draw(gputypes.PrimitiveTopologyTriangleList, 0, 6)
	}
	return nil
}
