// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/mapgpu/gfx"
)

// state mirrors the fixed function state set through gfx.Backend. Draw
// snapshots it.
type state struct {
	blend       bool
	blendFunc   gfx.BlendFunc
	blendColor  gfx.Color
	colorMask   gfx.ColorMask
	depthTest   bool
	depthMask   bool
	depthFunc   gputypes.CompareFunction
	depthRange  gfx.DepthRange
	stencilTest bool
	stencilFunc gfx.StencilFunc
	stencilMask uint8
	stencilOp   gfx.StencilOp
	viewport    gfx.Viewport

	activeTexture uint8
	textures      [gfx.TextureUnits]gfx.TextureID
	framebuffer   gfx.FramebufferID
	vertexArray   gfx.VertexArrayID
	program       gfx.ProgramID
}

func defaultState() state {
	return state{
		blendFunc:   gfx.BlendFunc{Src: gputypes.BlendFactorOne, Dst: gputypes.BlendFactorZero},
		colorMask:   gfx.ColorMaskAll,
		depthMask:   true,
		depthFunc:   gputypes.CompareFunctionLess,
		depthRange:  gfx.DepthRange{Near: 0, Far: 1},
		stencilFunc: gfx.StencilFunc{Compare: gputypes.CompareFunctionAlways, Mask: 0xFF},
		stencilMask: 0xFF,
		stencilOp: gfx.StencilOp{
			Fail:      hal.StencilOperationKeep,
			DepthFail: hal.StencilOperationKeep,
			Pass:      hal.StencilOperationKeep,
		},
	}
}

func (b *Backend) SetBlend(enabled bool) error {
	b.st.blend = enabled
	return nil
}

func (b *Backend) SetBlendFunc(f gfx.BlendFunc) error {
	b.st.blendFunc = f
	return nil
}

func (b *Backend) SetBlendColor(c gfx.Color) error {
	b.st.blendColor = c
	return nil
}

func (b *Backend) SetColorMask(m gfx.ColorMask) error {
	b.st.colorMask = m
	return nil
}

func (b *Backend) SetDepthTest(enabled bool) error {
	b.st.depthTest = enabled
	return nil
}

func (b *Backend) SetDepthMask(write bool) error {
	b.st.depthMask = write
	return nil
}

func (b *Backend) SetDepthFunc(f gputypes.CompareFunction) error {
	b.st.depthFunc = f
	return nil
}

// SetDepthRange is applied through the viewport depth bounds of each draw.
func (b *Backend) SetDepthRange(r gfx.DepthRange) error {
	b.st.depthRange = r
	return nil
}

func (b *Backend) SetStencilTest(enabled bool) error {
	b.st.stencilTest = enabled
	return nil
}

// SetStencilFunc stores the compare function and read mask in the
// pipeline key; the reference is dynamic state of the render pass.
func (b *Backend) SetStencilFunc(f gfx.StencilFunc) error {
	b.st.stencilFunc = f
	return nil
}

func (b *Backend) SetStencilMask(mask uint8) error {
	b.st.stencilMask = mask
	return nil
}

func (b *Backend) SetStencilOp(op gfx.StencilOp) error {
	b.st.stencilOp = op
	return nil
}

func (b *Backend) SetViewport(v gfx.Viewport) error {
	b.st.viewport = v
	return nil
}

func (b *Backend) SetActiveTexture(unit uint8) error {
	if int(unit) >= gfx.TextureUnits {
		return ErrInvalidTextureUnit
	}
	b.st.activeTexture = unit
	return nil
}

func (b *Backend) BindTexture(unit uint8, id gfx.TextureID) error {
	if int(unit) >= gfx.TextureUnits {
		return ErrInvalidTextureUnit
	}
	if id != 0 {
		if _, ok := b.textures[id]; !ok {
			return ErrUnknownResource
		}
	}
	b.st.textures[unit] = id
	return nil
}

func (b *Backend) BindFramebuffer(id gfx.FramebufferID) error {
	if id != 0 {
		if _, ok := b.framebuffers[id]; !ok {
			return ErrUnknownResource
		}
	}
	b.st.framebuffer = id
	return nil
}

func (b *Backend) BindVertexArray(id gfx.VertexArrayID) error {
	if id != 0 {
		if _, ok := b.vertexArrays[id]; !ok {
			return ErrUnknownResource
		}
	}
	b.st.vertexArray = id
	return nil
}

func (b *Backend) UseProgram(id gfx.ProgramID) error {
	if id != 0 {
		if _, ok := b.programs[id]; !ok {
			return ErrUnknownResource
		}
	}
	b.st.program = id
	return nil
}

// target returns the bound framebuffer.
func (b *Backend) target() (*framebuffer, error) {
	if b.st.framebuffer == 0 {
		return b.window, nil
	}
	fb, ok := b.framebuffers[b.st.framebuffer]
	if !ok {
		return nil, ErrUnknownResource
	}
	return fb, nil
}
