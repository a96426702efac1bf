package mapgpu

import (
	"errors"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/shader"
)

// ErrNotUploaded is returned when a bucket is rendered before Upload.
var ErrNotUploaded = errors.New("mapgpu: bucket not uploaded")

// uniforms sets several uniforms of one program, keeping the first
// lookup error.
type uniforms struct {
	prog *shader.Program
	err  error
}

func (u *uniforms) mat4(name string, m f32.Mat4) {
	if u.err != nil {
		return
	}
	h, err := u.prog.Mat4(name)
	if err != nil {
		u.err = err
		return
	}
	h.Set(m)
}

func (u *uniforms) float(name string, v float32) {
	if u.err != nil {
		return
	}
	h, err := u.prog.Float(name)
	if err != nil {
		u.err = err
		return
	}
	h.Set(v)
}

func (u *uniforms) vec2(name string, v [2]float32) {
	if u.err != nil {
		return
	}
	h, err := u.prog.Vec2(name)
	if err != nil {
		u.err = err
		return
	}
	h.Set(v)
}

func (u *uniforms) vec4(name string, v [4]float32) {
	if u.err != nil {
		return
	}
	h, err := u.prog.Color(name)
	if err != nil {
		u.err = err
		return
	}
	h.Vec4(v)
}

func (u *uniforms) color(name string, c gfx.Color) {
	u.vec4(name, [4]float32{c.R, c.G, c.B, c.A})
}

// FillBucket draws triangles of one solid color, in tile units.
type FillBucket struct {
	Color   gfx.Color
	Opacity float32

	vertices []float32
	vao      gfx.VertexArrayID
	count    uint32
}

var _ Bucket = (*FillBucket)(nil)

// NewFillBucket returns a bucket for a triangle list given as x, y pairs.
func NewFillBucket(triangles []float32, color gfx.Color, opacity float32) *FillBucket {
	return &FillBucket{Color: color, Opacity: opacity, vertices: triangles}
}

func (b *FillBucket) NeedsUpload() bool { return b.vao == 0 && len(b.vertices) >= 6 }

func (b *FillBucket) Upload(ctx *gfx.Context) error {
	layout, err := shader.VertexLayout(shader.Fill)
	if err != nil {
		return err
	}
	vao, err := ctx.CreateVertexArray(&gfx.VertexArrayDescriptor{
		Label:  "fill",
		Layout: layout,
		Data:   vertexBytes(b.vertices...),
	})
	if err != nil {
		return err
	}
	b.vao = vao
	b.count = uint32(len(b.vertices) / 2) //nolint:gosec // vertex counts fit in uint32
	b.vertices = nil
	return nil
}

func (b *FillBucket) NeedsClipping() bool { return true }

// Render draws the fill. Opaque fills write depth in the opaque pass.
func (b *FillBucket) Render(p *Painter, params *PaintParameters, _ Layer, t *RenderTile) error {
	if b.vao == 0 {
		if b.count == 0 && len(b.vertices) < 6 {
			return nil
		}
		return ErrNotUploaded
	}
	prog := params.Shaders.Fill
	u := uniforms{prog: prog}
	u.mat4("u_matrix", t.Matrix)
	u.color("u_color", b.Color)
	u.float("u_opacity", b.Opacity)
	if u.err != nil {
		return u.err
	}

	ctx := p.Context()
	ctx.DepthFunc.Set(gputypes.CompareFunctionLessEqual)
	ctx.DepthTest.Set(true)
	ctx.DepthMask.Set(p.Pass() == Opaque)
	p.SetDepthSublayer(1)
	prog.Bind(ctx)
	ctx.VertexArray.Set(b.vao)
	ctx.Draw(gputypes.PrimitiveTopologyTriangleList, 0, b.count)
	return nil
}

// Release queues the bucket's vertex array for deletion.
func (b *FillBucket) Release(ctx *gfx.Context) {
	ctx.AbandonVertexArray(b.vao)
	b.vao = 0
}

// RasterBucket draws one raster tile image, faded in by the frame history.
type RasterBucket struct {
	Opacity    float32
	Brightness [2]float32
	Saturation float32
	Contrast   float32
	HueRotate  float32

	img     *image.RGBA
	texture gfx.TextureID
}

var _ Bucket = (*RasterBucket)(nil)

// NewRasterBucket returns a bucket for img with neutral color adjustments.
func NewRasterBucket(img *image.RGBA) *RasterBucket {
	return &RasterBucket{Opacity: 1, Brightness: [2]float32{0, 1}, img: img}
}

func (b *RasterBucket) NeedsUpload() bool { return b.img != nil }

func (b *RasterBucket) Upload(ctx *gfx.Context) error {
	r := b.img.Bounds()
	if b.texture == 0 {
		tex, err := ctx.CreateTexture(&gfx.TextureDescriptor{
			Label:  "raster",
			Width:  uint32(r.Dx()), //nolint:gosec // image bounds are non-negative
			Height: uint32(r.Dy()), //nolint:gosec // image bounds are non-negative
			Format: gputypes.TextureFormatRGBA8Unorm,
		})
		if err != nil {
			return err
		}
		b.texture = tex
	}
	if err := ctx.UploadTexture(b.texture, packed(b.img)); err != nil {
		return err
	}
	b.img = nil
	return nil
}

// packed returns the pixels of img without row padding.
func packed(img *image.RGBA) []byte {
	r := img.Bounds()
	row := 4 * r.Dx()
	if img.Stride == row {
		return img.Pix[:row*r.Dy()]
	}
	out := make([]byte, 0, row*r.Dy())
	for y := range r.Dy() {
		off := y * img.Stride
		out = append(out, img.Pix[off:off+row]...)
	}
	return out
}

func (b *RasterBucket) NeedsClipping() bool { return true }

func (b *RasterBucket) Render(p *Painter, params *PaintParameters, _ Layer, t *RenderTile) error {
	if b.texture == 0 {
		return ErrNotUploaded
	}
	// The tile fades in with its zoom level.
	fade := float32(p.FrameHistory().Opacity(float64(t.ID.Canonical.Z))) / 255

	prog := params.Shaders.Raster
	u := uniforms{prog: prog}
	u.mat4("u_matrix", t.Matrix)
	u.vec4("u_spin_weights", spinWeights(b.HueRotate))
	u.vec2("u_tl_parent", [2]float32{0, 0})
	u.float("u_opacity0", b.Opacity*fade)
	u.float("u_opacity1", 0)
	u.float("u_buffer_scale", 1)
	u.float("u_scale_parent", 1)
	u.float("u_brightness_low", b.Brightness[0])
	u.float("u_brightness_high", b.Brightness[1])
	u.float("u_saturation_factor", saturationFactor(b.Saturation))
	u.float("u_contrast_factor", contrastFactor(b.Contrast))
	if u.err != nil {
		return u.err
	}

	ctx := p.Context()
	ctx.DepthFunc.Set(gputypes.CompareFunctionLessEqual)
	ctx.DepthTest.Set(true)
	ctx.DepthMask.Set(false)
	p.SetDepthSublayer(0)
	prog.Bind(ctx)
	ctx.ActiveTexture.Set(0)
	ctx.Texture[0].Set(b.texture)
	ctx.ActiveTexture.Set(1)
	ctx.Texture[1].Set(b.texture)
	ctx.VertexArray.Set(p.RasterBounds())
	ctx.Draw(gputypes.PrimitiveTopologyTriangleList, 0, 6)
	return nil
}

// Release queues the bucket's texture for deletion.
func (b *RasterBucket) Release(ctx *gfx.Context) {
	ctx.AbandonTexture(b.texture)
	b.texture = 0
}

// spinWeights returns the hue rotation weights for angle in radians.
func spinWeights(angle float32) [4]float32 {
	s, c := math.Sincos(float64(angle))
	return [4]float32{
		float32((2*c + 1) / 3),
		float32((-math.Sqrt(3)*s - c + 1) / 3),
		float32((math.Sqrt(3)*s - c + 1) / 3),
		0,
	}
}

func saturationFactor(s float32) float32 {
	if s > 0 {
		return 1 - 1/(1.001-s)
	}
	return -s
}

func contrastFactor(c float32) float32 {
	if c > 0 {
		return 1 / (1 - c)
	}
	return 1 + c
}
