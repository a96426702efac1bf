package mapgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mapgpu/clip"
	"github.com/gogpu/mapgpu/gfx"
)

// StencilForClipping returns the stencil test that passes only inside the
// region of id. A rejected id passes nowhere.
func (p *Painter) StencilForClipping(id clip.ID) gfx.StencilFunc {
	if id.Rejected() {
		return gfx.StencilFunc{Compare: gputypes.CompareFunctionNever}
	}
	return gfx.StencilFunc{Compare: gputypes.CompareFunctionEqual, Ref: id.Reference, Mask: id.Mask}
}

// setClipping limits the following draws to the region of id.
func (p *Painter) setClipping(id clip.ID) {
	p.ctx.StencilTest.Set(true)
	p.ctx.StencilFunc.Set(p.StencilForClipping(id))
}

// renderClippingMask writes one clip ID into the stencil buffer for every
// tile of the batch. Only the bits of the ID's mask are touched.
func (p *Painter) renderClippingMask(params *PaintParameters, st clip.Stencil) error {
	prog := params.Shaders.ClippingMask
	matrix, err := prog.Mat4("u_matrix")
	if err != nil {
		return err
	}

	ctx := p.ctx
	ctx.StencilTest.Set(true)
	ctx.DepthTest.Set(false)
	ctx.DepthMask.Set(false)
	ctx.ColorMask.Set(gfx.ColorMaskNone)
	ctx.StencilMask.Set(st.ID.Mask)
	ctx.StencilOp.Set(gfx.StencilOp{
		Fail:      hal.StencilOperationKeep,
		DepthFail: hal.StencilOperationKeep,
		Pass:      hal.StencilOperationReplace,
	})
	ctx.StencilFunc.Set(gfx.StencilFunc{
		Compare: gputypes.CompareFunctionAlways,
		Ref:     st.ID.Reference,
		Mask:    0xFF,
	})
	ctx.VertexArray.Set(p.buffers.tileTriangles)

	for _, id := range st.Tiles {
		p.logger.Debug("mapgpu: clipping mask", "clip", st.ID, "tile", id)
		matrix.Set(p.MatrixForTile(id))
		prog.Bind(ctx)
		ctx.Draw(gputypes.PrimitiveTopologyTriangleList, 0, 6)
	}
	return nil
}
