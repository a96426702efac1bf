package mapgpu

import (
	"fmt"
	"iter"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/mapgpu/gfx"
)

// sequence is a view of the draw order with a direction. Both directions
// yield the same traversal position for an item: the topmost item is 0.
type sequence struct {
	order   []RenderItem
	reverse bool
}

func newSequence(order []RenderItem, reverse bool) sequence {
	return sequence{order: order, reverse: reverse}
}

// All yields (traversal position, item) pairs, top to bottom when reverse
// is set and bottom to top otherwise.
func (s sequence) All() iter.Seq2[int, RenderItem] {
	return func(yield func(int, RenderItem) bool) {
		n := len(s.order)
		for step := range n {
			idx := step
			if s.reverse {
				idx = n - 1 - step
			}
			if !yield(n-1-idx, s.order[idx]) {
				return
			}
		}
	}
}

func (p *Painter) renderPass(params *PaintParameters, pass RenderPass, seq sequence) error {
	p.pass = pass
	p.logger.Debug("mapgpu: pass", "pass", pass)

	for pos, item := range seq.All() {
		p.currentLayer = pos
		layer := item.Layer
		if layer == nil || !layer.HasRenderPass(pass) {
			continue
		}

		p.setColorForPass()
		p.ctx.ColorMask.Set(gfx.ColorMaskAll)
		p.ctx.StencilMask.Set(0)

		var err error
		switch l := layer.(type) {
		case *BackgroundLayer:
			p.logger.Debug("mapgpu: background", "layer", l.LayerID, "position", pos)
			err = p.renderBackground(params, l)
		case *CustomLayer:
			p.logger.Debug("mapgpu: custom", "layer", l.LayerID, "position", pos)
			err = p.renderCustom(l)
		case *TileLayer:
			if item.Tile == nil || item.Bucket == nil {
				err = ErrMissingBucket
				break
			}
			p.logger.Debug("mapgpu: tile", "layer", l.LayerID, "tile", item.Tile.ID, "position", pos)
			if item.Bucket.NeedsClipping() {
				p.setClipping(item.Tile.Clip)
			} else {
				p.ctx.StencilTest.Set(false)
			}
			err = item.Bucket.Render(p, params, l, item.Tile)
		default:
			err = fmt.Errorf("%w: %T", ErrUnknownLayer, layer)
		}
		if err != nil {
			return fmt.Errorf("mapgpu: %s layer %q: %w", pass, layer.ID(), err)
		}
		if err := p.check(pass.String()); err != nil {
			return err
		}
	}
	return nil
}

// setColorForPass sets blending: additive in overdraw mode, premultiplied
// alpha in the translucent pass, off in the opaque pass.
func (p *Painter) setColorForPass() {
	switch {
	case p.overdraw():
		p.ctx.Blend.Set(true)
	case p.pass == Translucent:
		p.ctx.Blend.Set(true)
		p.ctx.BlendFunc.Set(gfx.BlendFunc{Src: gputypes.BlendFactorOne, Dst: gputypes.BlendFactorOneMinusSrcAlpha})
	default:
		p.ctx.Blend.Set(false)
	}
}

func (p *Painter) renderBackground(params *PaintParameters, l *BackgroundLayer) error {
	prog := params.Shaders.Background
	matrix, err := prog.Mat4("u_matrix")
	if err != nil {
		return err
	}
	color, err := prog.Color("u_color")
	if err != nil {
		return err
	}
	opacity, err := prog.Float("u_opacity")
	if err != nil {
		return err
	}

	ctx := p.ctx
	ctx.StencilTest.Set(false)
	ctx.DepthFunc.Set(gputypes.CompareFunctionLessEqual)
	ctx.DepthTest.Set(true)
	ctx.DepthMask.Set(p.pass == Opaque)
	p.SetDepthSublayer(0)

	matrix.Set(Identity())
	color.Set(l.Color)
	opacity.Set(l.Opacity)
	prog.Bind(ctx)
	ctx.VertexArray.Set(p.buffers.viewportQuad)
	ctx.Draw(gputypes.PrimitiveTopologyTriangleList, 0, 6)
	return nil
}

// renderCustom hands the context to the layer. Everything it changed is
// unknown afterwards, so the whole state is resent on next use.
func (p *Painter) renderCustom(l *CustomLayer) error {
	ctx := p.ctx
	ctx.VertexArray.Set(0)
	ctx.DepthFunc.Set(gputypes.CompareFunctionLessEqual)
	ctx.DepthTest.Set(true)
	ctx.DepthMask.Set(false)
	ctx.StencilTest.Set(false)
	p.SetDepthSublayer(0)

	err := ctx.Lease(func(raw gfx.Backend) error {
		return l.Renderer.Render(p.view, raw)
	})
	ctx.Framebuffer.Reset()
	ctx.Viewport.Reset()
	return err
}
