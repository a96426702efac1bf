package mapgpu

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/mapgpu/animation"
	"github.com/gogpu/mapgpu/clip"
	"github.com/gogpu/mapgpu/gfx"
	"github.com/gogpu/mapgpu/shader"
	"github.com/gogpu/mapgpu/tile"
)

// PaintParameters is the per-frame bundle handed to buckets.
type PaintParameters struct {
	// Shaders is the normal set, or the overdraw set when the Overdraw
	// debug flag is active.
	Shaders *shader.Set
	// Projection maps pixels to device coordinates.
	Projection f32.Mat4
	// PixelsToGLUnits scales a pixel offset to device units.
	PixelsToGLUnits [2]float32
	Debug           DebugFlags
}

// Painter renders frames. It owns the graphics context, the shader sets
// and the frame history. A Painter is not safe for concurrent use.
type Painter struct {
	ctx    *gfx.Context
	logger *slog.Logger
	opts   painterOptions

	shaders         *shader.Set
	overdrawShaders *shader.Set
	history         *animation.FrameHistory
	buffers         buffers
	debug           debugOverlay

	frames         uint64
	frame          FrameData
	view           ViewState
	params         *PaintParameters
	pass           RenderPass
	currentLayer   int
	depthRangeSize float32
	closed         bool
}

// NewPainter creates a painter drawing through backend. It builds every
// shader program up front; a compile, link or uniform error is returned
// and nothing is retried.
func NewPainter(backend gfx.Backend, opts ...Option) (*Painter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}

	ctx, err := gfx.NewContext(backend, gfx.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("mapgpu: %w", err)
	}
	p := &Painter{
		ctx:     ctx,
		logger:  o.logger,
		opts:    o,
		history: animation.New(),
	}

	sopts := []shader.Option{shader.WithLogger(o.logger)}
	if o.compiler != nil {
		sopts = append(sopts, shader.WithCompiler(o.compiler))
	}
	if p.shaders, err = shader.New(ctx, shader.Normal, sopts...); err != nil {
		ctx.PerformCleanup()
		return nil, fmt.Errorf("mapgpu: %w", err)
	}
	if o.debugShaders {
		if p.overdrawShaders, err = shader.New(ctx, shader.Overdraw, sopts...); err != nil {
			p.shaders.Release(ctx)
			ctx.PerformCleanup()
			return nil, fmt.Errorf("mapgpu: %w", err)
		}
	}
	if err := p.buffers.create(ctx, p.shaders); err != nil {
		p.release()
		return nil, fmt.Errorf("mapgpu: %w", err)
	}

	// Nothing is known about the backend yet.
	ctx.SetDirtyState()

	p.logger.Info("mapgpu: painter created",
		"strict", o.strict, "fade", o.fade, "debugShaders", o.debugShaders)
	return p, nil
}

// Context returns the graphics context. Buckets draw through it.
func (p *Painter) Context() *gfx.Context { return p.ctx }

// Pass returns the pass being rendered.
func (p *Painter) Pass() RenderPass { return p.pass }

// CurrentLayer returns the traversal position of the item being drawn.
// The topmost item has position 0.
func (p *Painter) CurrentLayer() int { return p.currentLayer }

// Frame returns the data of the current or last frame.
func (p *Painter) Frame() FrameData { return p.frame }

// View returns the camera of the current or last frame.
func (p *Painter) View() ViewState { return p.view }

// FrameHistory returns the raster fade history.
func (p *Painter) FrameHistory() *animation.FrameHistory { return p.history }

// TileTriangles returns a vertex array covering one tile in tile units,
// laid out for single-position programs.
func (p *Painter) TileTriangles() gfx.VertexArrayID { return p.buffers.tileTriangles }

// RasterBounds returns a vertex array covering one tile with texture
// coordinates, laid out for the raster program.
func (p *Painter) RasterBounds() gfx.VertexArrayID { return p.buffers.rasterBounds }

// overdraw reports whether the current frame visualises overdraw.
func (p *Painter) overdraw() bool {
	return p.frame.Debug&Overdraw != 0 && p.overdrawShaders != nil
}

// fade returns the fade window for the current map mode.
func (p *Painter) fade() time.Duration {
	if p.frame.MapMode == Static {
		return 0
	}
	return p.opts.fade
}

// NeedsAnimation reports whether a raster fade is still running, so that
// the host should schedule another frame.
func (p *Painter) NeedsAnimation() bool {
	return p.history.NeedsAnimation(p.opts.clock(), p.fade())
}

// Cleanup deletes GPU objects released since the last call.
func (p *Painter) Cleanup() {
	p.ctx.PerformCleanup()
}

// Close releases every GPU object owned by the painter. Render fails
// afterwards.
func (p *Painter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	err := p.debug.close(p.ctx)
	p.release()
	return err
}

func (p *Painter) release() {
	p.buffers.release(p.ctx)
	p.history.Release(p.ctx)
	if p.overdrawShaders != nil {
		p.overdrawShaders.Release(p.ctx)
	}
	if p.shaders != nil {
		p.shaders.Release(p.ctx)
	}
	p.ctx.PerformCleanup()
}

// MatrixForTile returns the matrix mapping tile units of id to device
// coordinates for the current frame.
func (p *Painter) MatrixForTile(id tile.UnwrappedID) f32.Mat4 {
	return Multiply(p.params.Projection, p.view.TileMatrix(id))
}

// Render draws one frame. Phases run in a fixed order: upload, clear,
// clip, opaque, translucent, finalize and cleanup. Any error aborts the
// frame; the context is then resynchronised before the next one.
func (p *Painter) Render(data *RenderData, frame FrameData) error {
	switch {
	case p.closed:
		return ErrClosed
	case data == nil:
		return ErrNoRenderData
	case data.View == nil:
		return ErrNoView
	}
	if frame.Time.IsZero() {
		frame.Time = p.opts.clock()
	}
	if p.frames == 0 || frame.Size != p.frame.Size {
		p.ctx.Viewport.SetDefault(gfx.Viewport{
			Width:  uint32(frame.Size[0]),
			Height: uint32(frame.Size[1]),
		})
	}
	p.frames++
	p.frame = frame
	p.view = data.View

	if err := p.render(data); err != nil {
		p.ctx.SetDirtyState()
		return err
	}
	return nil
}

func (p *Painter) render(data *RenderData) error {
	frame := p.frame
	params := &PaintParameters{
		Shaders:    p.shaders,
		Projection: p.view.ProjectionMatrix(),
		Debug:      frame.Debug,
	}
	if p.overdraw() {
		params.Shaders = p.overdrawShaders
	}
	if size := p.view.Size(); size[0] > 0 && size[1] > 0 {
		params.PixelsToGLUnits = [2]float32{2 / float32(size[0]), -2 / float32(size[1])}
		if p.view.FlippedY() {
			params.PixelsToGLUnits[1] *= -1
		}
	}
	p.params = params

	p.history.Record(frame.Time, p.view.Zoom(), p.fade())

	if err := p.upload(data); err != nil {
		return err
	}
	if err := p.check("upload"); err != nil {
		return err
	}

	p.clear(data)
	if err := p.check("clear"); err != nil {
		return err
	}

	if err := p.renderClip(params, data.Sources); err != nil {
		return err
	}
	if err := p.check("clip"); err != nil {
		return err
	}

	p.depthRangeSize = depthRangeSize(len(data.Order))
	p.logger.Debug("mapgpu: render tree", "items", len(data.Order), "sources", len(data.Sources))

	if err := p.renderPass(params, Opaque, newSequence(data.Order, true)); err != nil {
		return err
	}
	if err := p.renderPass(params, Translucent, newSequence(data.Order, false)); err != nil {
		return err
	}

	if err := p.finalize(data.Sources); err != nil {
		return err
	}
	if err := p.check("finalize"); err != nil {
		return err
	}

	p.cleanup()
	return p.check("cleanup")
}

// check consumes the context's sticky error. Strict painters return it,
// lenient ones log it.
func (p *Painter) check(phase string) error {
	err := p.ctx.TakeErr()
	if err == nil {
		return nil
	}
	if p.opts.strict {
		return fmt.Errorf("mapgpu: %s: %w", phase, err)
	}
	p.logger.Warn("mapgpu: gpu error", "phase", phase, "err", err)
	return nil
}

func (p *Painter) upload(data *RenderData) error {
	for _, a := range p.opts.atlases {
		if err := a.Upload(p.ctx); err != nil {
			return fmt.Errorf("mapgpu: upload atlas: %w", err)
		}
	}
	if err := p.history.Upload(p.ctx); err != nil {
		return fmt.Errorf("mapgpu: upload frame history: %w", err)
	}
	for _, item := range data.Order {
		if item.Bucket == nil || !item.Bucket.NeedsUpload() {
			continue
		}
		if err := item.Bucket.Upload(p.ctx); err != nil {
			return fmt.Errorf("mapgpu: upload bucket of layer %q: %w", layerID(item.Layer), err)
		}
	}
	return nil
}

// clear paints the backdrop, also where no tile covers the viewport.
func (p *Painter) clear(data *RenderData) {
	ctx := p.ctx
	ctx.Framebuffer.Reset()
	ctx.Viewport.Reset()
	ctx.StencilFunc.Reset()
	ctx.StencilTest.Set(true)
	ctx.StencilMask.Set(0xFF)
	ctx.DepthTest.Set(false)
	ctx.DepthMask.Set(true)
	ctx.ColorMask.Set(gfx.ColorMaskAll)

	color := data.BackgroundColor
	if p.overdraw() {
		ctx.Blend.Set(true)
		ctx.BlendFunc.Set(gfx.BlendFunc{Src: gputypes.BlendFactorConstant, Dst: gputypes.BlendFactorOne})
		ctx.BlendColor.Set(overdrawColor)
		color = gfx.Black
	}
	depth := float32(1)
	stencil := int32(0)
	ctx.Clear(&color, &depth, &stencil)
}

// overdrawColor is added once per draw covering a pixel.
var overdrawColor = gfx.Color{R: 1.0 / 8, G: 1.0 / 8, B: 1.0 / 8}

// finalize gives every source a last call, for per-tile debug output.
func (p *Painter) finalize(sources []Source) error {
	for _, s := range sources {
		if err := s.FinishRender(p); err != nil {
			return fmt.Errorf("mapgpu: finish source %q: %w", s.ID(), err)
		}
	}
	p.debug.evict(p.ctx, p.frames)
	return nil
}

func (p *Painter) cleanup() {
	ctx := p.ctx
	ctx.ActiveTexture.Set(1)
	ctx.Texture[1].Set(0)
	ctx.ActiveTexture.Set(0)
	ctx.Texture[0].Set(0)
	ctx.VertexArray.Set(0)
	ctx.Flush()

	if p.frame.ContextMode == Shared {
		ctx.SetDirtyState()
	}
}

// renderClip assigns clip IDs to every source's tiles and writes them to
// the stencil buffer.
func (p *Painter) renderClip(params *PaintParameters, sources []Source) error {
	gen := clip.NewGenerator(clip.WithLogger(p.logger))
	for _, s := range sources {
		s.StartRender(gen, params.Projection, p.view)
	}
	for _, st := range gen.Stencils() {
		if err := p.renderClippingMask(params, st); err != nil {
			return err
		}
	}
	return nil
}

func layerID(l Layer) string {
	if l == nil {
		return ""
	}
	return l.ID()
}
