package mapgpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/shader"
)

// vertexBytes packs float32 vertex components little-endian.
func vertexBytes(vs ...float32) []byte {
	b := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}

// quad returns two triangles covering (x0, y0)-(x1, y1). With texture
// coordinates, each vertex is followed by (u, v) spanning (u0, v0)-(u1, v1).
func quad(x0, y0, x1, y1 float32, tex bool, u0, v0, u1, v1 float32) []float32 {
	if !tex {
		return []float32{
			x0, y0, x1, y0, x0, y1,
			x1, y0, x0, y1, x1, y1,
		}
	}
	return []float32{
		x0, y0, u0, v0,
		x1, y0, u1, v0,
		x0, y1, u0, v1,
		x1, y0, u1, v0,
		x0, y1, u0, v1,
		x1, y1, u1, v1,
	}
}

// buffers are the painter-owned vertex arrays and textures shared by all
// layers.
type buffers struct {
	// tileTriangles covers one tile, in tile units.
	tileTriangles gfx.VertexArrayID
	// tileLineStrip outlines one tile, with texture coordinates of the
	// white texel.
	tileLineStrip gfx.VertexArrayID
	// viewportQuad covers the viewport in device coordinates.
	viewportQuad gfx.VertexArrayID
	// rasterBounds covers one tile with texture coordinates 0 to
	// rasterTexMax.
	rasterBounds gfx.VertexArrayID
	// unitQuad spans 0 to 1 in position and texture coordinates.
	unitQuad gfx.VertexArrayID
	white    gfx.TextureID
}

func (b *buffers) create(ctx *gfx.Context, s *shader.Set) error {
	vas := []struct {
		dst    *gfx.VertexArrayID
		label  string
		layout gputypes.VertexBufferLayout
		data   []float32
	}{
		{&b.tileTriangles, "tile triangles", s.ClippingMask.VertexLayout(), quad(0, 0, Extent, Extent, false, 0, 0, 0, 0)},
		{&b.tileLineStrip, "tile line strip", s.Debug.VertexLayout(), []float32{
			0, 0, 0, 0,
			Extent, 0, 0, 0,
			Extent, Extent, 0, 0,
			0, Extent, 0, 0,
			0, 0, 0, 0,
		}},
		{&b.viewportQuad, "viewport quad", s.Background.VertexLayout(), quad(-1, -1, 1, 1, false, 0, 0, 0, 0)},
		{&b.rasterBounds, "raster bounds", s.Raster.VertexLayout(), quad(0, 0, Extent, Extent, true, 0, 0, rasterTexMax, rasterTexMax)},
		{&b.unitQuad, "unit quad", s.Debug.VertexLayout(), quad(0, 0, 1, 1, true, 0, 0, 1, 1)},
	}
	for _, va := range vas {
		id, err := ctx.CreateVertexArray(&gfx.VertexArrayDescriptor{
			Label:  va.label,
			Layout: va.layout,
			Data:   vertexBytes(va.data...),
		})
		if err != nil {
			return err
		}
		*va.dst = id
	}

	white, err := ctx.CreateTexture(&gfx.TextureDescriptor{
		Label:  "white",
		Width:  1,
		Height: 1,
		Format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		return err
	}
	b.white = white
	return ctx.UploadTexture(white, []byte{0xFF, 0xFF, 0xFF, 0xFF})
}

func (b *buffers) release(ctx *gfx.Context) {
	for _, id := range []gfx.VertexArrayID{b.tileTriangles, b.tileLineStrip, b.viewportQuad, b.rasterBounds, b.unitQuad} {
		ctx.AbandonVertexArray(id)
	}
	ctx.AbandonTexture(b.white)
	*b = buffers{}
}

// rasterTexMax is the texture coordinate of the far tile edge in the
// raster program.
const rasterTexMax = 32767
